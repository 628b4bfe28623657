package services

import (
	"context"
	"fmt"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/internal/repositories"
	"github.com/anonto42/weabotalk/backend/pkg/apperror"
)

var errDraftNotFound = apperror.NotFound("Draft not found")

// DraftService is the owner-only draft workflow. Publishing is one-way.
type DraftService struct {
	posts    repositories.PostRepository
	postsSvc *PostService
}

// NewDraftService creates a DraftService
func NewDraftService(posts repositories.PostRepository, postsSvc *PostService) *DraftService {
	return &DraftService{posts: posts, postsSvc: postsSvc}
}

// SaveDraft updates existingID when it is one of userID's drafts and creates
// a new draft otherwise. It never changes a post's status.
func (s *DraftService) SaveDraft(userID uint, fields models.PostFields, existingID *uint) (*models.Post, error) {
	if existingID != nil {
		draft, err := s.posts.GetOwnedDraft(userID, *existingID)
		switch {
		case err == nil:
			return s.postsSvc.save(draft, fields)
		case !isNotFound(err):
			return nil, fmt.Errorf("load draft %d: %w", *existingID, err)
		}
	}
	return s.postsSvc.create(userID, fields, models.PostStatusDraft)
}

// PublishDraft publishes one of userID's drafts. Anything else, including an
// already published post, is not found.
func (s *DraftService) PublishDraft(userID, id uint) (*models.Post, error) {
	published, err := s.posts.PublishDraft(userID, id)
	if err != nil {
		return nil, fmt.Errorf("publish draft %d: %w", id, err)
	}
	if !published {
		return nil, errDraftNotFound
	}
	return s.posts.GetPostByID(id)
}

// Drafts lists userID's drafts, most recently edited first.
func (s *DraftService) Drafts(userID uint) ([]models.Post, error) {
	return s.posts.GetDraftsByUserID(userID)
}

// DeleteDraft removes one of userID's drafts.
func (s *DraftService) DeleteDraft(ctx context.Context, userID, id uint) error {
	draft, err := s.posts.GetOwnedDraft(userID, id)
	if err != nil {
		if isNotFound(err) {
			return errDraftNotFound
		}
		return err
	}
	return s.postsSvc.remove(ctx, draft)
}
