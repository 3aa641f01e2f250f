package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/adapters/persistence/repositories"
	"washtech-rental/internal/core/domain"
	"washtech-rental/internal/pkg/pagination"
	"washtech-rental/internal/pkg/password"
	"washtech-rental/internal/pkg/validation"
)

// UserService handles user management business logic
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListUsersInput represents list users input
type ListUsersInput struct {
	Search          string
	Role            string
	IncludeInactive bool
}

// UpdateProfileInput represents update profile input (for self)
type UpdateProfileInput struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email   *string `json:"email" validate:"omitempty,email,max=120"`
	Phone   *string `json:"phone" validate:"omitempty,max=20"`
	Address *string `json:"address" validate:"omitempty,max=255"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ChangeRoleInput represents a role change request
type ChangeRoleInput struct {
	Role string `json:"role" validate:"required"`
}

// ListUsers lists users with pagination
func (s *UserService) ListUsers(ctx context.Context, input ListUsersInput, params pagination.Params) (*pagination.Page[*models.UserResponse], error) {
	filter := repositories.UserFilter{
		Search:          strings.TrimSpace(input.Search),
		IncludeInactive: input.IncludeInactive,
	}
	if input.Role != "" {
		role, ok := domain.ParseRole(input.Role)
		if !ok {
			return nil, domain.ErrInvalidRole
		}
		filter.Role = role
	}

	users, total, err := s.userRepo.List(ctx, filter, params.Offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]*models.UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}
	return pagination.NewPage(out, params, total), nil
}

// ListOperators lists the active operators available for assignment
func (s *UserService) ListOperators(ctx context.Context) ([]*models.UserResponse, error) {
	users, err := s.userRepo.ListActiveByRole(ctx, domain.RoleOperator)
	if err != nil {
		return nil, fmt.Errorf("list operators: %w", err)
	}
	out := make([]*models.UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}
	return out, nil
}

// GetUserByID gets an active user by ID
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, domain.ErrUserNotFound, "get user")
	}
	return user.ToResponse(), nil
}

// ChangeRole sets the role of another user. Only a superadmin may do it.
func (s *UserService) ChangeRole(ctx context.Context, actor domain.Actor, targetID uint, input *ChangeRoleInput) (*models.UserResponse, error) {
	// 1. Capability check
	if !domain.HasRole(actor.Role, domain.RoleSuperAdmin) {
		return nil, domain.ErrSuperAdminRequired
	}

	// 2. Validate role
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	role, ok := domain.ParseRole(input.Role)
	if !ok {
		return nil, domain.ErrInvalidRole
	}

	// 3. Prevent changing own role
	if actor.UserID == targetID {
		return nil, domain.ErrCannotChangeOwnRole
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, lookup(err, domain.ErrUserNotFound, "get user")
	}

	if err := s.userRepo.UpdateRole(ctx, user.ID, role); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	user.Role = role

	log.Printf("✅ Role of user #%d set to %s by user #%d", user.ID, role, actor.UserID)
	return user.ToResponse(), nil
}

// Deactivate retires a user. Their reservations stay as they are.
func (s *UserService) Deactivate(ctx context.Context, actor domain.Actor, targetID uint) error {
	if !actor.Role.IsAdmin() {
		return domain.ErrForbidden
	}
	if actor.UserID == targetID {
		return domain.ErrCannotDeactivateSelf
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return lookup(err, domain.ErrUserNotFound, "get user")
	}
	// Admins cannot retire a superadmin
	if target.Role == domain.RoleSuperAdmin && actor.Role != domain.RoleSuperAdmin {
		return domain.ErrSuperAdminRequired
	}

	if err := s.userRepo.Deactivate(ctx, targetID); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}

	log.Printf("✅ User #%d deactivated by user #%d", targetID, actor.UserID)
	return nil
}

// GetProfile gets own profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	return s.GetUserByID(ctx, userID)
}

// UpdateProfile updates own profile
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.UserResponse, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookup(err, domain.ErrUserNotFound, "get user")
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != user.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("check email: %w", err)
			}
			if exists {
				return nil, domain.ErrEmailAlreadyExists
			}
			user.Email = email
		}
	}
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Address != nil {
		user.Address = *input.Address
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user.ToResponse(), nil
}

// ChangePassword changes user's password
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	if err := validation.Struct(input); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return lookup(err, domain.ErrUserNotFound, "get user")
	}

	if !password.Verify(input.OldPassword, user.Password) {
		return domain.ErrOldPasswordWrong
	}
	if !password.ValidatePassword(input.NewPassword) {
		return domain.NewValidation("new_password", "must contain letters and digits")
	}

	hashedPassword, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashedPassword
	return s.userRepo.Update(ctx, user)
}
