package repositories

import (
	"github.com/anonto42/weabotalk/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	CreateUser(user *models.User) error
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByConfirmationToken(token string) (*models.User, error)
	GetUserByResetPasswordToken(token string) (*models.User, error)
	GetUserByUnlockToken(token string) (*models.User, error)
	UpdateUser(user *models.User) error
	DeleteUser(id uint) error
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *PostgresUserRepository) WithTx(tx *gorm.DB) UserRepository {
	return &PostgresUserRepository{db: tx}
}

// CreateUser creates a new user in PostgreSQL
func (r *PostgresUserRepository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, compared case-insensitively
func (r *PostgresUserRepository) GetUserByEmail(email string) (*models.User, error) {
	return r.findBy("LOWER(email) = LOWER(?)", email)
}

func (r *PostgresUserRepository) GetUserByConfirmationToken(token string) (*models.User, error) {
	return r.findBy("confirmation_token = ?", token)
}

func (r *PostgresUserRepository) GetUserByResetPasswordToken(token string) (*models.User, error) {
	return r.findBy("reset_password_token = ?", token)
}

func (r *PostgresUserRepository) GetUserByUnlockToken(token string) (*models.User, error) {
	return r.findBy("unlock_token = ?", token)
}

func (r *PostgresUserRepository) findBy(query string, arg string) (*models.User, error) {
	if arg == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var user models.User
	if err := r.db.Where(query, arg).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser saves every column of user
func (r *PostgresUserRepository) UpdateUser(user *models.User) error {
	return r.db.Save(user).Error
}

// DeleteUser deletes a user; owned rows go with it through FK cascades
func (r *PostgresUserRepository) DeleteUser(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}
