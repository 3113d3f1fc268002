package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/evalink-api/internal/models"
)

// ErrDuplicateUser reports a user identifier or email that is already registered.
var ErrDuplicateUser = errors.New("user already exists")

// UserListRow is a user joined with the name of their department.
type UserListRow struct {
	ID         uint
	Name       string
	Email      *string
	Year       *int
	Department *string
}

// UserRepository is the credential store.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (models.User, error)
	ListByRole(ctx context.Context, role string) ([]UserListRow, error)
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs the user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if IsDuplicateKey(err) {
		return ErrDuplicateUser
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role string) ([]UserListRow, error) {
	var rows []UserListRow
	err := r.db.WithContext(ctx).
		Table("users u").
		Select("u.id, u.name, u.email, u.year, d.name AS department").
		Joins("LEFT JOIN departments d ON d.id = u.department_id").
		Where("u.role = ?", role).
		Order("u.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
