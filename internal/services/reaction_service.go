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

// ReactionService manages emoji reactions on posts.
type ReactionService struct {
	db            *gorm.DB
	reactions     repositories.ReactionRepository
	notifications repositories.NotificationRepository
	posts         *PostService
	notifier      *Notifier
	validator     StructValidator
	log           *zap.Logger
}

// NewReactionService creates a ReactionService
func NewReactionService(
	db *gorm.DB,
	reactions repositories.ReactionRepository,
	notifications repositories.NotificationRepository,
	posts *PostService,
	notifier *Notifier,
	validator StructValidator,
	log *zap.Logger,
) *ReactionService {
	return &ReactionService{
		db:            db,
		reactions:     reactions,
		notifications: notifications,
		posts:         posts,
		notifier:      notifier,
		validator:     validator,
		log:           log,
	}
}

// Add records a reaction and notifies the post's author. The same type twice
// on one post is rejected; different types are allowed.
func (s *ReactionService) Add(ctx context.Context, userID, postID uint, reactionType string) (*models.Reaction, error) {
	reaction := &models.Reaction{UserID: userID, PostID: postID, ReactionType: reactionType}
	if err := s.validator.Validate(reaction); err != nil {
		return nil, err
	}
	post, err := s.posts.Get(userID, postID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.reactions.WithTx(tx).CreateReaction(reaction); err != nil {
			if isDuplicate(err) {
				return apperror.Invalid("reaction_type", "has already been added to this post")
			}
			return fmt.Errorf("create reaction: %w", err)
		}
		_, err := s.notifier.Record(tx, reactionEvent(reaction, post))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Push(ctx, reactionEvent(reaction, post))
	return reaction, nil
}

// Toggle removes the reaction when userID already has it and adds it
// otherwise. The returned reaction is nil after a removal.
func (s *ReactionService) Toggle(ctx context.Context, userID, postID uint, reactionType string) (*models.Reaction, bool, error) {
	existing, err := s.reactions.GetReaction(postID, userID, reactionType)
	switch {
	case err == nil:
		if err := s.remove(ctx, existing); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	case !isNotFound(err):
		return nil, false, err
	}

	reaction, err := s.Add(ctx, userID, postID, reactionType)
	if err != nil {
		return nil, false, err
	}
	return reaction, true, nil
}

// Remove deletes one of userID's reactions.
func (s *ReactionService) Remove(ctx context.Context, userID, id uint) error {
	reaction, err := s.reactions.GetReactionByID(id)
	if err != nil {
		if isNotFound(err) {
			return apperror.NotFound("Reaction not found")
		}
		return err
	}
	if reaction.UserID != userID {
		return apperror.Forbidden("You are not allowed to remove this reaction")
	}
	return s.remove(ctx, reaction)
}

func (s *ReactionService) remove(ctx context.Context, reaction *models.Reaction) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.notifications.WithTx(tx).DeleteForNotifiable(models.NotifiableReaction, reaction.ID); err != nil {
			return fmt.Errorf("delete reaction notifications: %w", err)
		}
		return s.reactions.WithTx(tx).DeleteReaction(reaction.ID)
	})
}

// Summary counts the reactions on a post the viewer may see, by type.
func (s *ReactionService) Summary(viewerID, postID uint) ([]repositories.ReactionCount, error) {
	if _, err := s.posts.Get(viewerID, postID); err != nil {
		return nil, err
	}
	return s.reactions.CountByType(postID)
}
