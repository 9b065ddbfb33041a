package server

import (
	"errors"
	"strings"

	"clubhub/internal/featureflags"
	"clubhub/internal/models"
	"clubhub/internal/observability"
	"clubhub/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// clubNameTaken reports whether the name collides with an existing club
// or another pending request. excludeRequestID lets an edit skip its
// own row.
func (s *Server) clubNameTaken(tx *gorm.DB, name string, excludeRequestID uint) (bool, error) {
	var count int64
	if err := tx.Model(&models.Club{}).
		Where("LOWER(name) = LOWER(?)", name).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	query := tx.Model(&models.ClubRequest{}).
		Where("LOWER(name) = LOWER(?) AND status = ?", name, models.ClubRequestStatusPending)
	if excludeRequestID != 0 {
		query = query.Where("id <> ?", excludeRequestID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateClubRequest handles POST /api/club-requests
// @Summary Submit a club creation request
// @Description Proposes a new club. The name must not collide with existing clubs or other pending requests.
// @Tags club-requests
// @Accept json
// @Produce json
// @Param request body object{name=string,description=string,category=string} true "Request"
// @Success 201 {object} models.ClubRequest
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /club-requests [post]
func (s *Server) CreateClubRequest(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	if s.featureFlags != nil && !s.featureFlags.Enabled(featureflags.FlagClubRequests, userID) {
		return respondAppError(c, models.NewForbiddenError("Club requests are currently disabled"))
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if err := validation.ValidateClubName(req.Name); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if req.Description == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Description is required"))
	}
	if err := validation.ValidateClubCategory(req.Category); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	taken, err := s.clubNameTaken(s.db.WithContext(ctx), req.Name, 0)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if taken {
		observability.GovernanceConflicts.WithLabelValues("club_request").Inc()
		return respondAppError(c, models.NewConflictError("This club name is already taken or requested"))
	}

	request := models.ClubRequest{
		Name:              req.Name,
		Description:       req.Description,
		Category:          strings.ToLower(strings.TrimSpace(req.Category)),
		RequestedByUserID: userID,
		Status:            models.ClubRequestStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&request).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

// GetMyClubRequests handles GET /api/club-requests/me
// @Summary List own club requests
// @Tags club-requests
// @Produce json
// @Success 200 {array} models.ClubRequest
// @Security BearerAuth
// @Router /club-requests/me [get]
func (s *Server) GetMyClubRequests(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	var requests []models.ClubRequest
	if err := s.db.WithContext(ctx).
		Where("requested_by_user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(requests)
}

// UpdateClubRequest handles PUT /api/club-requests/:id
// @Summary Edit a pending club request
// @Description Only the requester may edit, and only while the request is pending.
// @Tags club-requests
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param request body object{name=string,description=string,category=string} true "New content"
// @Success 200 {object} models.ClubRequest
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /club-requests/{id} [put]
func (s *Server) UpdateClubRequest(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var request models.ClubRequest
	if err := s.db.WithContext(ctx).First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondAppError(c, models.NewNotFoundError("Club request", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if request.RequestedByUserID != userID {
		return respondAppError(c, models.NewForbiddenError("You can only edit your own requests"))
	}
	if request.Status != models.ClubRequestStatusPending {
		return respondAppError(c, models.NewConflictError("Only pending requests can be edited"))
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if name := strings.TrimSpace(req.Name); name != "" && name != request.Name {
		if err := validation.ValidateClubName(name); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		taken, err := s.clubNameTaken(s.db.WithContext(ctx), name, request.ID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if taken {
			return respondAppError(c, models.NewConflictError("This club name is already taken or requested"))
		}
		request.Name = name
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		request.Description = desc
	}
	if category := strings.TrimSpace(req.Category); category != "" {
		if err := validation.ValidateClubCategory(category); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		request.Category = strings.ToLower(category)
	}

	if err := s.db.WithContext(ctx).Save(&request).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(request)
}

// DeleteClubRequest handles DELETE /api/club-requests/:id
// @Summary Withdraw a club request
// @Description The requester may withdraw while pending; admins may delete any request.
// @Tags club-requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /club-requests/{id} [delete]
func (s *Server) DeleteClubRequest(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var request models.ClubRequest
	if err := s.db.WithContext(ctx).First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondAppError(c, models.NewNotFoundError("Club request", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	isAdmin, err2 := s.isAdminByUserID(ctx, userID)
	if err2 != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err2)
	}
	if !isAdmin {
		if request.RequestedByUserID != userID {
			return respondAppError(c, models.NewForbiddenError("You can only withdraw your own requests"))
		}
		if request.Status != models.ClubRequestStatusPending {
			return respondAppError(c, models.NewConflictError("Only pending requests can be withdrawn"))
		}
	}

	if err := s.db.WithContext(ctx).Delete(&models.ClubRequest{}, id).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"message": "Club request deleted"})
}

// GetAdminClubRequests handles GET /api/admin/club-requests
// @Summary List club requests for review
// @Description Admin review queue, filterable by status. Defaults to pending.
// @Tags club-requests-admin
// @Produce json
// @Param status query string false "Status filter (pending, approved, rejected, all)"
// @Success 200 {array} models.ClubRequest
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/club-requests [get]
func (s *Server) GetAdminClubRequests(c *fiber.Ctx) error {
	ctx := c.UserContext()
	p := parsePagination(c, 50)

	query := s.db.WithContext(ctx).
		Preload("RequestedByUser").
		Order("created_at ASC").
		Limit(p.Limit).Offset(p.Offset)

	status := strings.TrimSpace(c.Query("status", string(models.ClubRequestStatusPending)))
	switch models.ClubRequestStatus(status) {
	case models.ClubRequestStatusPending, models.ClubRequestStatusApproved, models.ClubRequestStatusRejected:
		query = query.Where("status = ?", status)
	default:
		if status != "all" {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Status must be pending, approved, rejected or all"))
		}
	}

	var requests []models.ClubRequest
	if err := query.Find(&requests).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(requests)
}

// ProcessClubRequest handles POST /api/admin/club-requests/:id/process
// @Summary Approve or reject a club request
// @Description Terminal decision on a pending request. Approval atomically creates the club and installs the requester as its president.
// @Tags club-requests-admin
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param request body object{decision=string,feedback=string} true "Decision"
// @Success 200 {object} models.ClubRequest
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/club-requests/{id}/process [post]
func (s *Server) ProcessClubRequest(c *fiber.Ctx) error {
	ctx := c.UserContext()
	adminID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Decision string `json:"decision"`
		Feedback string `json:"feedback"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	decision := models.ClubRequestStatus(req.Decision)
	if decision != models.ClubRequestStatusApproved && decision != models.ClubRequestStatusRejected {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Decision must be approved or rejected"))
	}

	var request models.ClubRequest
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&request, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Club request", id)
			}
			return err
		}
		if request.Status != models.ClubRequestStatusPending {
			observability.GovernanceConflicts.WithLabelValues("process_club_request").Inc()
			return models.NewConflictError("Request has already been processed")
		}

		if decision == models.ClubRequestStatusApproved {
			// A club with this name may have appeared since the
			// request was submitted.
			taken, err := s.clubNameTaken(tx, request.Name, request.ID)
			if err != nil {
				return err
			}
			if taken {
				return models.NewConflictError("A club with this name already exists")
			}

			club := models.Club{
				Name:            request.Name,
				Description:     request.Description,
				Category:        request.Category,
				CreatedByUserID: &request.RequestedByUserID,
			}
			if err := tx.Create(&club).Error; err != nil {
				return err
			}
			membership := models.Membership{
				ClubID: club.ID,
				UserID: request.RequestedByUserID,
				Role:   models.MembershipRolePresident,
				Status: models.MembershipStatusApproved,
			}
			if err := tx.Create(&membership).Error; err != nil {
				return err
			}
			if err := recomputeGlobalRole(tx, request.RequestedByUserID); err != nil {
				return err
			}
		}

		request.Status = decision
		request.AdminFeedback = strings.TrimSpace(req.Feedback)
		request.ReviewedByUserID = &adminID
		return tx.Save(&request).Error
	})
	if txErr != nil {
		return respondAppError(c, txErr)
	}

	observability.ClubRequestsProcessed.WithLabelValues(string(decision)).Inc()
	if decision == models.ClubRequestStatusApproved {
		s.invalidateUserCache(ctx, request.RequestedByUserID)
	}

	return c.JSON(request)
}
