package repositories

import (
	"github.com/anonto42/weabotalk/backend/internal/models"
	"gorm.io/gorm"
)

// ReactionCount is the number of reactions of one type on a post.
type ReactionCount struct {
	ReactionType string `json:"reaction_type"`
	Count        int64  `json:"count"`
}

// ReactionRepository defines the interface for reaction data operations
type ReactionRepository interface {
	WithTx(tx *gorm.DB) ReactionRepository
	CreateReaction(reaction *models.Reaction) error
	GetReactionByID(id uint) (*models.Reaction, error)
	GetReaction(postID, userID uint, reactionType string) (*models.Reaction, error)
	CountByType(postID uint) ([]ReactionCount, error)
	DeleteReaction(id uint) error
}

// PostgresReactionRepository implements ReactionRepository for PostgreSQL
type PostgresReactionRepository struct {
	db *gorm.DB
}

// NewPostgresReactionRepository creates a new PostgresReactionRepository
func NewPostgresReactionRepository(db *gorm.DB) *PostgresReactionRepository {
	return &PostgresReactionRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *PostgresReactionRepository) WithTx(tx *gorm.DB) ReactionRepository {
	return &PostgresReactionRepository{db: tx}
}

func (r *PostgresReactionRepository) CreateReaction(reaction *models.Reaction) error {
	return r.db.Create(reaction).Error
}

func (r *PostgresReactionRepository) GetReactionByID(id uint) (*models.Reaction, error) {
	var reaction models.Reaction
	if err := r.db.First(&reaction, id).Error; err != nil {
		return nil, err
	}
	return &reaction, nil
}

// GetReaction retrieves a user's reaction of a given type on a post
func (r *PostgresReactionRepository) GetReaction(postID, userID uint, reactionType string) (*models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.Where("post_id = ? AND user_id = ? AND reaction_type = ?", postID, userID, reactionType).
		First(&reaction).Error
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

// CountByType groups a post's reactions by type
func (r *PostgresReactionRepository) CountByType(postID uint) ([]ReactionCount, error) {
	var counts []ReactionCount
	err := r.db.Model(&models.Reaction{}).
		Select("reaction_type, COUNT(*) AS count").
		Where("post_id = ?", postID).
		Group("reaction_type").
		Order("count DESC, reaction_type ASC").
		Scan(&counts).Error
	return counts, err
}

func (r *PostgresReactionRepository) DeleteReaction(id uint) error {
	return r.db.Delete(&models.Reaction{}, id).Error
}
