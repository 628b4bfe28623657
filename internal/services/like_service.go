package services

import (
	"context"
	"fmt"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/internal/repositories"
	"github.com/anonto42/weabotalk/backend/pkg/apperror"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LikeService manages post likes.
type LikeService struct {
	db            *gorm.DB
	likes         repositories.LikeRepository
	notifications repositories.NotificationRepository
	posts         *PostService
	notifier      *Notifier
	log           *zap.Logger
}

// NewLikeService creates a LikeService
func NewLikeService(
	db *gorm.DB,
	likes repositories.LikeRepository,
	notifications repositories.NotificationRepository,
	posts *PostService,
	notifier *Notifier,
	log *zap.Logger,
) *LikeService {
	return &LikeService{db: db, likes: likes, notifications: notifications, posts: posts, notifier: notifier, log: log}
}

// Like records userID's like on a post and notifies its author.
func (s *LikeService) Like(ctx context.Context, userID, postID uint) (*models.Like, error) {
	post, err := s.posts.Get(userID, postID)
	if err != nil {
		return nil, err
	}

	like := &models.Like{UserID: userID, PostID: postID}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.likes.WithTx(tx).CreateLike(like); err != nil {
			if isDuplicate(err) {
				return apperror.Invalid("post_id", "can like a post only once")
			}
			return fmt.Errorf("create like: %w", err)
		}
		_, err := s.notifier.Record(tx, likeEvent(like, post))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Push(ctx, likeEvent(like, post))
	return like, nil
}

// Unlike removes userID's like on a post and its notification.
func (s *LikeService) Unlike(ctx context.Context, userID, postID uint) error {
	like, err := s.likes.GetLike(postID, userID)
	if err != nil {
		if isNotFound(err) {
			return apperror.NotFound("Like not found")
		}
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.notifications.WithTx(tx).DeleteForNotifiable(models.NotifiableLike, like.ID); err != nil {
			return fmt.Errorf("delete like notifications: %w", err)
		}
		return s.likes.WithTx(tx).DeleteLike(like.ID)
	})
}

// Count returns the number of likes on a post the viewer may see.
func (s *LikeService) Count(viewerID, postID uint) (int64, error) {
	if _, err := s.posts.Get(viewerID, postID); err != nil {
		return 0, err
	}
	return s.likes.GetLikesCountByPostID(postID)
}

// HasLiked reports whether userID likes the post.
func (s *LikeService) HasLiked(userID, postID uint) (bool, error) {
	return s.likes.HasUserLikedPost(postID, userID)
}
