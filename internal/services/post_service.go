package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/weabotalk/backend/internal/models"
	"github.com/anonto42/weabotalk/backend/internal/repositories"
	"github.com/anonto42/weabotalk/backend/pkg/apperror"
	"github.com/anonto42/weabotalk/backend/pkg/sanitize"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostsPerPage is the page size of the feed.
const PostsPerPage = 20

var errPostNotFound = apperror.NotFound("Post not found")

// StructValidator checks struct tags. *validators.Validator satisfies it.
type StructValidator interface {
	Validate(i interface{}) error
}

// PostService manages posts and their images.
type PostService struct {
	db            *gorm.DB
	posts         repositories.PostRepository
	images        repositories.PostImageRepository
	notifications repositories.NotificationRepository
	validator     StructValidator
	log           *zap.Logger
}

// NewPostService creates a PostService
func NewPostService(
	db *gorm.DB,
	posts repositories.PostRepository,
	images repositories.PostImageRepository,
	notifications repositories.NotificationRepository,
	validator StructValidator,
	log *zap.Logger,
) *PostService {
	return &PostService{
		db:            db,
		posts:         posts,
		images:        images,
		notifications: notifications,
		validator:     validator,
		log:           log,
	}
}

// Create publishes a new post.
func (s *PostService) Create(userID uint, fields models.PostFields) (*models.Post, error) {
	return s.create(userID, fields, models.PostStatusPublished)
}

func (s *PostService) create(userID uint, fields models.PostFields, status models.PostStatus) (*models.Post, error) {
	post := &models.Post{UserID: userID, Status: status}
	applyFields(post, fields)
	if err := s.validator.Validate(post); err != nil {
		return nil, err
	}
	if err := s.posts.CreatePost(post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// applyFields copies non-empty fields onto post, trimmed.
func applyFields(post *models.Post, fields models.PostFields) {
	if fields.Title != "" {
		post.Title = sanitize.UserContent(fields.Title)
	}
	if fields.Content != "" {
		post.Content = sanitize.UserContent(fields.Content)
	}
}

// Get returns a post the viewer may see. Someone else's draft is not found.
func (s *PostService) Get(viewerID, id uint) (*models.Post, error) {
	post, err := s.posts.GetPostByID(id)
	if err != nil {
		if isNotFound(err) {
			return nil, errPostNotFound
		}
		return nil, err
	}
	if !post.VisibleTo(viewerID) {
		return nil, errPostNotFound
	}
	return post, nil
}

// Feed returns a page of published posts, newest first, and the total.
func (s *PostService) Feed(page int) ([]models.Post, int64, error) {
	if page < 1 {
		page = 1
	}
	return s.posts.GetPublishedPosts((page-1)*PostsPerPage, PostsPerPage)
}

// ByUser lists userID's posts; the owner also sees their drafts.
func (s *PostService) ByUser(viewerID, userID uint) ([]models.Post, error) {
	return s.posts.GetPostsByUserID(userID, viewerID == userID)
}

// owned loads a post for a mutating call by userID.
func (s *PostService) owned(userID, id uint) (*models.Post, error) {
	post, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, apperror.Forbidden("You are not allowed to modify this post")
	}
	return post, nil
}

// Update edits a draft owned by userID. Published posts are read-only.
func (s *PostService) Update(userID, id uint, fields models.PostFields) (*models.Post, error) {
	post, err := s.owned(userID, id)
	if err != nil {
		return nil, err
	}
	if !post.IsDraft() {
		return nil, apperror.Invalid("status", "published posts can't be edited")
	}
	return s.save(post, fields)
}

func (s *PostService) save(post *models.Post, fields models.PostFields) (*models.Post, error) {
	applyFields(post, fields)
	if err := s.validator.Validate(post); err != nil {
		return nil, err
	}
	if err := s.posts.UpdatePost(post); err != nil {
		return nil, fmt.Errorf("update post %d: %w", post.ID, err)
	}
	return post, nil
}

// Delete removes a post owned by userID with its engagement, notifications and images.
func (s *PostService) Delete(ctx context.Context, userID, id uint) error {
	post, err := s.owned(userID, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, post)
}

func (s *PostService) remove(ctx context.Context, post *models.Post) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.notifications.WithTx(tx).DeleteForPost(post.ID); err != nil {
			return fmt.Errorf("delete post notifications: %w", err)
		}
		if err := s.posts.WithTx(tx).DeletePost(post.ID); err != nil {
			return fmt.Errorf("delete post %d: %w", post.ID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.images.DeleteImagesByPostID(ctx, post.ID); err != nil {
		s.log.Error("Failed to delete post images", zap.Uint("post_id", post.ID), zap.Error(err))
	}
	return nil
}

// AttachImage stores an image on a post owned by userID. The type is
// detected from the bytes, not the filename.
func (s *PostService) AttachImage(ctx context.Context, userID, postID uint, filename string, data []byte) (*models.PostImage, error) {
	post, err := s.owned(userID, postID)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, apperror.Invalid("image", "image is empty")
	}
	if len(data) > models.MaxImageBytes {
		return nil, apperror.Invalid("image", "image must be smaller than 10MB")
	}

	detected := mimetype.Detect(data)
	contentType := ""
	for _, allowed := range models.AllowedImageTypes {
		if detected.Is(allowed) {
			contentType = allowed
			break
		}
	}
	if contentType == "" {
		return nil, apperror.Invalid("image", "image must be a JPEG, PNG, GIF or WebP")
	}

	count, err := s.images.CountImages(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("count post images: %w", err)
	}
	if count >= models.MaxImagesPerPost {
		return nil, apperror.Invalid("image", fmt.Sprintf("a post can have at most %d images", models.MaxImagesPerPost))
	}

	image := &models.PostImage{
		PostID:      post.ID,
		UserID:      userID,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}
	if err := s.images.CreateImage(ctx, image); err != nil {
		return nil, fmt.Errorf("store post image: %w", err)
	}
	return image, nil
}

// Images lists the images of a post the viewer may see, without their bytes.
func (s *PostService) Images(ctx context.Context, viewerID, postID uint) ([]models.PostImage, error) {
	if _, err := s.Get(viewerID, postID); err != nil {
		return nil, err
	}
	return s.images.GetImagesByPostID(ctx, postID)
}

// Image returns one image of a post the viewer may see, with its bytes.
func (s *PostService) Image(ctx context.Context, viewerID, postID uint, imageID string) (*models.PostImage, error) {
	if _, err := s.Get(viewerID, postID); err != nil {
		return nil, err
	}
	image, err := s.images.GetImage(ctx, postID, imageID)
	if err != nil {
		if errors.Is(err, repositories.ErrImageNotFound) {
			return nil, apperror.NotFound("Image not found")
		}
		return nil, err
	}
	return image, nil
}
