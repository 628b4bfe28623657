package services

import (
	"context"
	"fmt"

	"github.com/anonto42/weabotalk/backend/internal/jobs"
	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/internal/repositories"
	"github.com/anonto42/weabotalk/backend/pkg/apperror"
	"github.com/anonto42/weabotalk/backend/pkg/sanitize"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CommentService manages comments and their one level of replies.
type CommentService struct {
	db            *gorm.DB
	comments      repositories.CommentRepository
	notifications repositories.NotificationRepository
	profiles      repositories.ProfileRepository
	posts         *PostService
	queue         jobs.Queue
	notifier      *Notifier
	validator     StructValidator
	log           *zap.Logger
}

// NewCommentService creates a CommentService
func NewCommentService(
	db *gorm.DB,
	comments repositories.CommentRepository,
	notifications repositories.NotificationRepository,
	profiles repositories.ProfileRepository,
	posts *PostService,
	queue jobs.Queue,
	notifier *Notifier,
	validator StructValidator,
	log *zap.Logger,
) *CommentService {
	return &CommentService{
		db:            db,
		comments:      comments,
		notifications: notifications,
		profiles:      profiles,
		posts:         posts,
		queue:         queue,
		notifier:      notifier,
		validator:     validator,
		log:           log,
	}
}

// Create adds a comment, or a reply when parentID is set, and queues the
// notification to the post's author.
func (s *CommentService) Create(ctx context.Context, userID, postID uint, content string, parentID *uint) (*models.Comment, error) {
	if _, err := s.posts.Get(userID, postID); err != nil {
		return nil, err
	}

	if parentID != nil {
		parent, err := s.comments.GetCommentByID(*parentID)
		switch {
		case isNotFound(err):
			return nil, apperror.Invalid("parent_comment_id", "parent comment does not exist")
		case err != nil:
			return nil, err
		case parent.PostID != postID:
			return nil, apperror.Invalid("parent_comment_id", "parent comment belongs to another post")
		case parent.IsReply():
			return nil, apperror.Invalid("parent_comment_id", "replies can't be replied to")
		}
	}

	comment := &models.Comment{
		PostID:          postID,
		UserID:          userID,
		ParentCommentID: parentID,
		Content:         sanitize.UserContent(content),
	}
	if err := s.validator.Validate(comment); err != nil {
		return nil, err
	}
	if err := s.comments.CreateComment(comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	job := jobs.Job{Kind: jobs.KindCommentNotification, RecordID: comment.ID}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.log.Warn("Failed to enqueue comment notification, notifying inline",
			zap.Uint("comment_id", comment.ID), zap.Error(err))
		if err := s.notifier.NotifyComment(ctx, comment.ID); err != nil {
			s.log.Error("Failed to notify comment", zap.Uint("comment_id", comment.ID), zap.Error(err))
		}
	}
	return comment, nil
}

// ForPost returns a post's root comments, oldest first, each with its replies.
func (s *CommentService) ForPost(viewerID, postID uint) ([]models.CommentThread, error) {
	if _, err := s.posts.Get(viewerID, postID); err != nil {
		return nil, err
	}

	roots, err := s.comments.GetRootCommentsByPostID(postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	rootIDs := make([]uint, 0, len(roots))
	authorIDs := make([]uint, 0, len(roots))
	for _, c := range roots {
		rootIDs = append(rootIDs, c.ID)
		authorIDs = append(authorIDs, c.UserID)
	}
	replies, err := s.comments.GetRepliesByParentIDs(rootIDs)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	for _, r := range replies {
		authorIDs = append(authorIDs, r.UserID)
	}
	authors, err := s.profiles.GetProfilesByUserIDs(authorIDs)
	if err != nil {
		return nil, fmt.Errorf("load comment authors: %w", err)
	}
	author := func(userID uint) models.UserCompact {
		if p, ok := authors[userID]; ok {
			return p.ToCompact()
		}
		return models.UserCompact{ID: userID}
	}

	byParent := make(map[uint][]models.CommentReply, len(roots))
	for _, r := range replies {
		byParent[*r.ParentCommentID] = append(byParent[*r.ParentCommentID], models.CommentReply{Comment: r, Author: author(r.UserID)})
	}

	threads := make([]models.CommentThread, 0, len(roots))
	for _, c := range roots {
		thread := models.CommentThread{Comment: c, Author: author(c.UserID), Replies: byParent[c.ID]}
		if thread.Replies == nil {
			thread.Replies = []models.CommentReply{}
		}
		threads = append(threads, thread)
	}
	return threads, nil
}

// Delete removes one of userID's comments with its replies and their notifications.
func (s *CommentService) Delete(ctx context.Context, userID, id uint) error {
	comment, err := s.comments.GetCommentByID(id)
	if err != nil {
		if isNotFound(err) {
			return apperror.NotFound("Comment not found")
		}
		return err
	}
	if comment.UserID != userID {
		return apperror.Forbidden("You are not allowed to delete this comment")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.notifications.WithTx(tx).DeleteForComment(comment.ID); err != nil {
			return fmt.Errorf("delete comment notifications: %w", err)
		}
		return s.comments.WithTx(tx).DeleteComment(comment.ID)
	})
}
