package repository

import (
	"context"
	"time"

	"github.com/aman-churiwal/devtools-profiler/internal/models"
	"github.com/aman-churiwal/devtools-profiler/internal/storage"
	"gorm.io/gorm"
)

type AuthRepository struct {
	db *storage.Database
}

func NewAuthRepository(db *storage.Database) *AuthRepository {
	return &AuthRepository{db: db}
}

// Inserts a new admin user
func (r *AuthRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.DB.WithContext(ctx).Create(user).Error
}

// Retrieves user by email, nil when missing
func (r *AuthRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.DB.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *AuthRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *AuthRepository) TouchLastLogin(ctx context.Context, user *models.User, at time.Time) error {
	return r.db.DB.WithContext(ctx).
		Model(user).
		Update("last_login_at", at).Error
}

// Retrieves all admin users, newest first
func (r *AuthRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.DB.WithContext(ctx).
		Order("created_at DESC").
		Find(&users).Error

	return users, err
}
