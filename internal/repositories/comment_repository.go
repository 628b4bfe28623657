package repositories

import (
	"github.com/anonto42/weabotalk/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	WithTx(tx *gorm.DB) CommentRepository
	CreateComment(comment *models.Comment) error
	GetCommentByID(id uint) (*models.Comment, error)
	GetRootCommentsByPostID(postID uint) ([]models.Comment, error)
	GetRepliesByParentIDs(parentIDs []uint) ([]models.Comment, error)
	DeleteComment(id uint) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *PostgresCommentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &PostgresCommentRepository{db: tx}
}

// CreateComment creates a new comment in PostgreSQL
func (r *PostgresCommentRepository) CreateComment(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// GetCommentByID retrieves a comment by ID from PostgreSQL
func (r *PostgresCommentRepository) GetCommentByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetRootCommentsByPostID retrieves the top-level comments of a post, oldest first
func (r *PostgresCommentRepository) GetRootCommentsByPostID(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Where("post_id = ? AND parent_comment_id IS NULL", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

// GetRepliesByParentIDs retrieves replies to any of parentIDs, oldest first
func (r *PostgresCommentRepository) GetRepliesByParentIDs(parentIDs []uint) ([]models.Comment, error) {
	var replies []models.Comment
	if len(parentIDs) == 0 {
		return replies, nil
	}
	err := r.db.Where("parent_comment_id IN ?", parentIDs).
		Order("created_at ASC, id ASC").
		Find(&replies).Error
	return replies, err
}

// DeleteComment deletes a comment; its replies cascade
func (r *PostgresCommentRepository) DeleteComment(id uint) error {
	return r.db.Delete(&models.Comment{}, id).Error
}
