package server

import (
	"errors"
	"strings"

	"clubhub/internal/authz"
	"clubhub/internal/database"
	"clubhub/internal/models"
	"clubhub/internal/observability"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// JoinClub handles POST /api/clubs/:id/join
// @Summary Request to join a club
// @Description Creates a pending membership. One membership row per (club, user) pair; repeat requests conflict regardless of status.
// @Tags memberships
// @Produce json
// @Param id path int true "Club ID"
// @Success 201 {object} models.Membership
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /clubs/{id}/join [post]
func (s *Server) JoinClub(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)
	clubID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, findErr := s.findClub(ctx, clubID); findErr != nil {
		return respondAppError(c, findErr)
	}

	existing, memErr := s.getMembership(ctx, clubID, userID)
	if memErr != nil {
		return respondAppError(c, memErr)
	}
	if existing != nil {
		observability.GovernanceConflicts.WithLabelValues("join_club").Inc()
		return respondAppError(c, models.NewConflictError("A membership for this club already exists"))
	}

	membership := models.Membership{
		ClubID: clubID,
		UserID: userID,
		Role:   models.MembershipRoleMember,
		Status: models.MembershipStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&membership).Error; err != nil {
		if database.IsUniqueViolation(err) {
			observability.GovernanceConflicts.WithLabelValues("join_club").Inc()
			return respondAppError(c, models.NewConflictError("A membership for this club already exists"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(membership)
}

// GetMyMembership handles GET /api/clubs/:id/membership
// @Summary Get own membership in a club
// @Description Returns the caller's membership row, or a neutral payload when none exists.
// @Tags memberships
// @Produce json
// @Param id path int true "Club ID"
// @Success 200 {object} object{is_member=bool}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /clubs/{id}/membership [get]
func (s *Server) GetMyMembership(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)
	clubID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, findErr := s.findClub(ctx, clubID); findErr != nil {
		return respondAppError(c, findErr)
	}

	membership, memErr := s.getMembership(ctx, clubID, userID)
	if memErr != nil {
		return respondAppError(c, memErr)
	}
	if membership == nil {
		return c.JSON(fiber.Map{"is_member": false})
	}
	return c.JSON(fiber.Map{
		"is_member":  true,
		"membership": membership,
	})
}

// GetMyMemberships handles GET /api/memberships/me
// @Summary List own memberships
// @Tags memberships
// @Produce json
// @Success 200 {array} models.Membership
// @Security BearerAuth
// @Router /memberships/me [get]
func (s *Server) GetMyMemberships(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	var memberships []models.Membership
	if err := s.db.WithContext(ctx).
		Preload("Club").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&memberships).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(memberships)
}

// GetClubMembers handles GET /api/clubs/:id/members
// @Summary List club members
// @Description Full roster including pending rows. Requires club president or admin.
// @Tags memberships
// @Produce json
// @Param id path int true "Club ID"
// @Param status query string false "Status filter"
// @Success 200 {array} models.Membership
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /clubs/{id}/members [get]
func (s *Server) GetClubMembers(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)
	clubID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, findErr := s.findClub(ctx, clubID); findErr != nil {
		return respondAppError(c, findErr)
	}
	if _, authErr := s.authorizeClubAction(ctx, userID, clubID, authz.ActionManageClub); authErr != nil {
		return respondAppError(c, authErr)
	}

	query := s.db.WithContext(ctx).
		Preload("User").
		Where("club_id = ?", clubID).
		Order("created_at ASC")
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}

	var members []models.Membership
	if err := query.Find(&members).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(members)
}

// UpdateClubMember handles PUT /api/clubs/:id/members/:userId
// @Summary Decide a join request or change a member's role
// @Description With a status field, approves or rejects a pending request (idempotent per decision). With a role field, assigns an officer role to an approved member. President is never reachable this way.
// @Tags memberships
// @Accept json
// @Produce json
// @Param id path int true "Club ID"
// @Param userId path int true "User ID"
// @Param request body object{status=string,role=string} true "Decision or role change"
// @Success 200 {object} models.Membership
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /clubs/{id}/members/{userId} [put]
func (s *Server) UpdateClubMember(c *fiber.Ctx) error {
	ctx := c.UserContext()
	actorID := c.Locals("userID").(uint)
	clubID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if _, findErr := s.findClub(ctx, clubID); findErr != nil {
		return respondAppError(c, findErr)
	}
	if _, authErr := s.authorizeClubAction(ctx, actorID, clubID, authz.ActionManageClub); authErr != nil {
		return respondAppError(c, authErr)
	}

	var req struct {
		Status string `json:"status"`
		Role   string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	switch {
	case req.Status != "":
		return s.decideJoinRequest(c, clubID, targetID, req.Status)
	case req.Role != "":
		return s.changeMemberRole(c, clubID, targetID, req.Role)
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Either status or role is required"))
	}
}

func (s *Server) decideJoinRequest(c *fiber.Ctx, clubID, targetID uint, status string) error {
	ctx := c.UserContext()

	decision := models.MembershipStatus(status)
	if decision != models.MembershipStatusApproved && decision != models.MembershipStatusRejected {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Status must be approved or rejected"))
	}

	membership, memErr := s.getMembership(ctx, clubID, targetID)
	if memErr != nil {
		return respondAppError(c, memErr)
	}
	if membership == nil {
		return respondAppError(c, models.NewNotFoundError("Membership", targetID))
	}

	// Applying the same decision twice is a no-op rather than an error.
	if membership.Status != decision {
		if err := s.db.WithContext(ctx).Model(&models.Membership{}).
			Where("club_id = ? AND user_id = ?", clubID, targetID).
			Update("status", decision).Error; err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		membership.Status = decision
	}

	return c.JSON(membership)
}

func (s *Server) changeMemberRole(c *fiber.Ctx, clubID, targetID uint, role string) error {
	ctx := c.UserContext()

	newRole := models.MembershipRole(role)
	if _, ok := models.AssignableMembershipRoles[newRole]; !ok {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Role is not assignable"))
	}

	membership, memErr := s.getMembership(ctx, clubID, targetID)
	if memErr != nil {
		return respondAppError(c, memErr)
	}
	if membership == nil || !membership.IsApproved() {
		return respondAppError(c, models.NewNotFoundError("Approved membership", targetID))
	}
	if membership.Role == models.MembershipRolePresident {
		return respondAppError(c,
			models.NewForbiddenError("The president's role can only change through a presidency transfer"))
	}

	if err := s.db.WithContext(ctx).Model(&models.Membership{}).
		Where("club_id = ? AND user_id = ?", clubID, targetID).
		Update("role", newRole).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	membership.Role = newRole

	return c.JSON(membership)
}

// RemoveClubMember handles DELETE /api/clubs/:id/members/:userId
// @Summary Remove a club member
// @Description Removes a non-president membership. Requires club president or admin.
// @Tags memberships
// @Produce json
// @Param id path int true "Club ID"
// @Param userId path int true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /clubs/{id}/members/{userId} [delete]
func (s *Server) RemoveClubMember(c *fiber.Ctx) error {
	ctx := c.UserContext()
	actorID := c.Locals("userID").(uint)
	clubID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if _, findErr := s.findClub(ctx, clubID); findErr != nil {
		return respondAppError(c, findErr)
	}
	if _, authErr := s.authorizeClubAction(ctx, actorID, clubID, authz.ActionManageClub); authErr != nil {
		return respondAppError(c, authErr)
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var membership models.Membership
		err := tx.Where("club_id = ? AND user_id = ?", clubID, targetID).First(&membership).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Membership", targetID)
		}
		if err != nil {
			return err
		}
		if membership.Role == models.MembershipRolePresident {
			return models.NewForbiddenError("The president cannot be removed; transfer the presidency first")
		}

		if err := tx.Where("club_id = ? AND user_id = ?", clubID, targetID).
			Delete(&models.Membership{}).Error; err != nil {
			return err
		}
		return recomputeGlobalRole(tx, targetID)
	})
	if txErr != nil {
		return respondAppError(c, txErr)
	}

	s.invalidateUserCache(ctx, targetID)

	return c.JSON(fiber.Map{"message": "Member removed"})
}
