package repositories

import (
	"github.com/moyustudio/teamup-board/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines the interface for account data operations
type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByHandle(handle string) (*models.User, error)
	UpdateUser(user *models.User) error
	DeleteUser(handle string) error
	// UpdateUserLocked loads the account row under a write lock, applies fn,
	// and persists the mutation even when fn reports a business error. The
	// login lockout machine runs through this so concurrent attempts
	// serialize on the row and failed-attempt bookkeeping survives the
	// rejected request.
	UpdateUserLocked(handle string, fn func(*models.User) error) error
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser creates a new account in PostgreSQL
func (r *PostgresUserRepository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

// GetUserByHandle retrieves an account by its unique handle
func (r *PostgresUserRepository) GetUserByHandle(handle string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("handle = ?", handle).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates an existing account in PostgreSQL
func (r *PostgresUserRepository) UpdateUser(user *models.User) error {
	return r.db.Save(user).Error
}

// DeleteUser deletes an account by handle from PostgreSQL
func (r *PostgresUserRepository) DeleteUser(handle string) error {
	res := r.db.Where("handle = ?", handle).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateUserLocked runs fn against the row selected FOR UPDATE and always
// commits the row state before surfacing fn's error.
func (r *PostgresUserRepository) UpdateUserLocked(handle string, fn func(*models.User) error) error {
	tx := r.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("handle = ?", handle).First(&user).Error; err != nil {
		tx.Rollback()
		return err
	}

	fnErr := fn(&user)

	if err := tx.Save(&user).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}
	return fnErr
}
