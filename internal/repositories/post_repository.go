package repositories

import (
	"github.com/anonto42/weabotalk/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	WithTx(tx *gorm.DB) PostRepository
	CreatePost(post *models.Post) error
	GetPostByID(id uint) (*models.Post, error)
	GetOwnedDraft(userID, id uint) (*models.Post, error)
	GetPublishedPosts(offset, limit int) ([]models.Post, int64, error)
	GetPostsByUserID(userID uint, includeDrafts bool) ([]models.Post, error)
	GetDraftsByUserID(userID uint) ([]models.Post, error)
	UpdatePost(post *models.Post) error
	PublishDraft(userID, id uint) (bool, error)
	DeletePost(id uint) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *PostgresPostRepository) WithTx(tx *gorm.DB) PostRepository {
	return &PostgresPostRepository{db: tx}
}

// CreatePost inserts post. An empty status is stored as published.
func (r *PostgresPostRepository) CreatePost(post *models.Post) error {
	if post.Status == "" {
		post.Status = models.PostStatusPublished
	}
	return r.db.Create(post).Error
}

// GetPostByID retrieves a post by ID regardless of status
func (r *PostgresPostRepository) GetPostByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// GetOwnedDraft finds a draft by id that belongs to userID
func (r *PostgresPostRepository) GetOwnedDraft(userID, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.Where("id = ? AND user_id = ? AND status = ?", id, userID, models.PostStatusDraft).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPublishedPosts returns a page of published posts, newest first, and the total
func (r *PostgresPostRepository) GetPublishedPosts(offset, limit int) ([]models.Post, int64, error) {
	var posts []models.Post
	var total int64

	published := r.db.Model(&models.Post{}).Where("status = ?", models.PostStatusPublished)
	if err := published.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("status = ?", models.PostStatusPublished).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

// GetPostsByUserID retrieves a user's posts, newest first
func (r *PostgresPostRepository) GetPostsByUserID(userID uint, includeDrafts bool) ([]models.Post, error) {
	var posts []models.Post
	q := r.db.Where("user_id = ?", userID)
	if !includeDrafts {
		q = q.Where("status = ?", models.PostStatusPublished)
	}
	err := q.Order("created_at DESC, id DESC").Find(&posts).Error
	return posts, err
}

// GetDraftsByUserID retrieves a user's drafts, most recently edited first
func (r *PostgresPostRepository) GetDraftsByUserID(userID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Where("user_id = ? AND status = ?", userID, models.PostStatusDraft).
		Order("updated_at DESC, id DESC").
		Find(&posts).Error
	return posts, err
}

// UpdatePost saves title and content of an existing post
func (r *PostgresPostRepository) UpdatePost(post *models.Post) error {
	return r.db.Model(post).Select("title", "content").Updates(post).Error
}

// PublishDraft flips an owned draft to published. It reports false when id
// is not a draft owned by userID, which covers a concurrent publish.
func (r *PostgresPostRepository) PublishDraft(userID, id uint) (bool, error) {
	res := r.db.Model(&models.Post{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, models.PostStatusDraft).
		Update("status", models.PostStatusPublished)
	return res.RowsAffected == 1, res.Error
}

// DeletePost deletes a post; comments, likes and reactions cascade
func (r *PostgresPostRepository) DeletePost(id uint) error {
	return r.db.Delete(&models.Post{}, id).Error
}
