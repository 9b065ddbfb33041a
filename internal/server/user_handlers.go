package server

import (
	"clubhub/internal/models"
	"clubhub/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetMyProfile handles GET /api/users/me
// @Summary Get my profile
// @Description Fetch the authenticated user's profile.
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Security BearerAuth
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update my profile
// @Description Update username, bio, or avatar for the authenticated user.
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{username=string,bio=string,avatar=string} true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Username string `json:"username"`
		Bio      string `json:"bio"`
		Avatar   string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   userID,
		Username: req.Username,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(user)
}

// GetAllUsers handles GET /api/users
// @Summary List users
// @Description List users with pagination.
// @Tags users
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /users [get]
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	users, err := s.userService.ListUsers(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get user profile
// @Description Fetch a user's public profile.
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, svcErr := s.userService.GetUserByID(c.UserContext(), id)
	if svcErr != nil {
		return respondAppError(c, svcErr)
	}
	return c.JSON(user)
}

// GetUserCached handles GET /api/users/:id/cached
// @Summary Get user via cache
// @Description Fetch a user through the cache-aside path.
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/{id}/cached [get]
func (s *Server) GetUserCached(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, repoErr := s.userRepo.GetByID(c.UserContext(), id)
	if repoErr != nil {
		return respondAppError(c, repoErr)
	}
	return c.JSON(user)
}

// PromoteToAdmin handles POST /api/users/:id/promote-admin
// @Summary Promote user to admin
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/{id}/promote-admin [post]
func (s *Server) PromoteToAdmin(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, svcErr := s.userService.SetRole(c.UserContext(), id, models.UserRoleAdmin)
	if svcErr != nil {
		return respondAppError(c, svcErr)
	}
	return c.JSON(user)
}

// DemoteFromAdmin handles POST /api/users/:id/demote-admin
// @Summary Demote admin to their membership-derived role
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/{id}/demote-admin [post]
func (s *Server) DemoteFromAdmin(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, svcErr := s.userService.SetRole(c.UserContext(), id, models.UserRoleStudent)
	if svcErr != nil {
		return respondAppError(c, svcErr)
	}

	// The demoted account may still hold presidencies; restore the
	// projected role from the membership table.
	project := s.db.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		return recomputeGlobalRole(tx, id)
	})
	if project != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(project))
	}
	s.invalidateUserCache(c.UserContext(), id)

	refreshed, svcErr := s.userService.GetUserByID(c.UserContext(), user.ID)
	if svcErr != nil {
		return respondAppError(c, svcErr)
	}
	return c.JSON(refreshed)
}
