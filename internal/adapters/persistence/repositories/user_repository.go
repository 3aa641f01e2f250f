package repositories

import (
	"context"
	"strings"

	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/core/domain"

	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.User{}).Scopes(models.Active(models.TableUsers))
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID gets an active user by ID
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.active(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail gets a user by email regardless of lifecycle, so login can
// tell an inactive account from an unknown one
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update saves every column of user
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// List lists users with pagination
func (r *userRepository) List(ctx context.Context, filter UserFilter, offset, limit int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	q := r.db.WithContext(ctx).Model(&models.User{})
	if !filter.IncludeInactive {
		q = q.Scopes(models.Active(models.TableUsers))
	}
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("registered_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ListActiveByRole lists every active user holding role
func (r *userRepository) ListActiveByRole(ctx context.Context, role domain.Role) ([]*models.User, error) {
	var users []*models.User
	err := r.active(ctx).Where("role = ?", role).Order("name ASC").Find(&users).Error
	return users, err
}

// CountActiveByRole counts active users holding role
func (r *userRepository) CountActiveByRole(ctx context.Context, role domain.Role) (int64, error) {
	var count int64
	err := r.active(ctx).Where("role = ?", role).Count(&count).Error
	return count, err
}

// ExistsByEmail checks if email exists
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", strings.ToLower(email)).Count(&count).Error
	return count > 0, err
}

// UpdateRole sets the role of an active user
func (r *userRepository) UpdateRole(ctx context.Context, id uint, role domain.Role) error {
	return r.active(ctx).Where("id = ?", id).Update("role", role).Error
}

// Deactivate retires the user. Reservations are left untouched.
func (r *userRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("is_active", false).Error
}
