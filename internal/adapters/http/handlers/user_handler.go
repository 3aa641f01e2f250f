package handlers

import (
	"washtech-rental/internal/adapters/http/middleware"
	"washtech-rental/internal/core/services"
	"washtech-rental/internal/pkg/pagination"
	"washtech-rental/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles profile and user directory endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ============================================================
// Admin — user directory
// ============================================================

// ListUsers handles listing users (Admin only)
// @Summary List users
// @Description Paginated user directory, filterable by search and role
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param search query string false "Name or email"
// @Param role query string false "client, operator, admin or superadmin"
// @Param include_inactive query bool false "Include deactivated accounts"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/usuarios [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	input := services.ListUsersInput{
		Search:          c.Query("search"),
		Role:            c.Query("role"),
		IncludeInactive: c.QueryBool("include_inactive"),
	}

	result, err := h.userService.ListUsers(c.UserContext(), input, pagination.GetParams(c))
	if err != nil {
		return response.FromError(c, err, redirectUsers)
	}

	return response.Success(c, "Users retrieved successfully", result)
}

// ListOperators lists the active operators available for assignment
// @Summary List operators
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/operadores [get]
func (h *UserHandler) ListOperators(c *fiber.Ctx) error {
	operators, err := h.userService.ListOperators(c.UserContext())
	if err != nil {
		return response.FromError(c, err, redirectPending)
	}

	return response.Success(c, "Operators retrieved successfully", operators)
}

// ChangeRole handles a role change (superadmin only)
// @Summary Change user role
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.ChangeRoleInput true "New role"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/usuarios/{id}/rol [post]
func (h *UserHandler) ChangeRole(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	var input services.ChangeRoleInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.ChangeRole(c.UserContext(), actor, id, &input)
	if err != nil {
		return response.FromError(c, err, redirectUsers)
	}

	return response.Success(c, "Role updated successfully", fiber.Map{
		"user": user,
	})
}

// Deactivate handles retiring a user account
// @Summary Deactivate user
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/usuarios/{id}/desactivar [post]
func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.userService.Deactivate(c.UserContext(), actor, id); err != nil {
		return response.FromError(c, err, redirectUsers)
	}

	return response.Success(c, "User deactivated successfully", nil)
}

// ============================================================
// Profile — own account
// ============================================================

// GetProfile returns the caller's profile
// @Summary Get own profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /perfil [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.userService.GetProfile(c.UserContext(), actor.UserID)
	if err != nil {
		return response.FromError(c, err, redirectDashboard)
	}

	return response.Success(c, "Profile retrieved successfully", fiber.Map{
		"user": user,
	})
}

// UpdateProfile updates the caller's profile
// @Summary Update own profile
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Profile fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /perfil [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.UpdateProfile(c.UserContext(), actor.UserID, &input)
	if err != nil {
		return response.FromError(c, err, redirectProfile)
	}

	return response.Success(c, "Profile updated successfully", fiber.Map{
		"user": user,
	})
}

// ChangePassword changes the caller's password
// @Summary Change own password
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Old and new password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /perfil/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.userService.ChangePassword(c.UserContext(), actor.UserID, &input); err != nil {
		return response.FromError(c, err, redirectProfile)
	}

	return response.Success(c, "Password changed successfully", nil)
}
