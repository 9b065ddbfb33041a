package server

import (
	"errors"
	"strings"

	"clubhub/internal/authz"
	"clubhub/internal/database"
	"clubhub/internal/featureflags"
	"clubhub/internal/models"
	"clubhub/internal/observability"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// requireApprovedMembership loads the user's membership in the
// election's club and rejects anything but an approved row.
func (s *Server) requireApprovedMembership(c *fiber.Ctx, election *models.Election, userID uint) (*models.Membership, error) {
	membership, memErr := s.getMembership(c.UserContext(), election.ClubID, userID)
	if memErr != nil {
		return nil, respondAppError(c, memErr)
	}
	if membership == nil || !membership.IsApproved() {
		return nil, respondAppError(c,
			models.NewForbiddenError("Approved club membership required"))
	}
	return membership, nil
}

// ApplyForCandidacy handles POST /api/elections/:id/applications
// @Summary Apply to stand for a role
// @Description Submits a candidacy application. Requires approved membership in the election's club; one application per role per user.
// @Tags candidacies
// @Accept json
// @Produce json
// @Param id path int true "Election ID"
// @Param request body object{role_id=int,statement=string} true "Application"
// @Success 201 {object} models.CandidateApplication
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /elections/{id}/applications [post]
func (s *Server) ApplyForCandidacy(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	election, findErr := s.loadElectionFromPath(c)
	if findErr != nil || election == nil {
		return findErr
	}
	if election.Status == models.ElectionStatusCompleted {
		observability.GovernanceConflicts.WithLabelValues("apply_candidacy").Inc()
		return respondAppError(c, models.NewConflictError("Election has already completed"))
	}

	var req struct {
		RoleID    uint   `json:"role_id"`
		Statement string `json:"statement"`
	}
	if err := c.BodyParser(&req); err != nil || req.RoleID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("role_id is required"))
	}

	var role models.ElectionRole
	if err := s.db.WithContext(ctx).
		Where("id = ? AND election_id = ?", req.RoleID, election.ID).
		First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondAppError(c, models.NewNotFoundError("Election role", req.RoleID))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if _, memErr := s.requireApprovedMembership(c, election, userID); memErr != nil {
		return memErr
	}

	application := models.CandidateApplication{
		ElectionID: election.ID,
		RoleID:     role.ID,
		UserID:     userID,
		Statement:  strings.TrimSpace(req.Statement),
		Status:     models.ApplicationStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&application).Error; err != nil {
		if database.IsUniqueViolation(err) {
			observability.GovernanceConflicts.WithLabelValues("apply_candidacy").Inc()
			return respondAppError(c, models.NewConflictError("You have already applied for this role"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(application)
}

// GetElectionApplications handles GET /api/elections/:id/applications
// @Summary List candidacy applications
// @Description Review queue for the election. Requires club president or admin.
// @Tags candidacies
// @Produce json
// @Param id path int true "Election ID"
// @Param status query string false "Status filter"
// @Success 200 {array} models.CandidateApplication
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /elections/{id}/applications [get]
func (s *Server) GetElectionApplications(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	election, findErr := s.loadElectionFromPath(c)
	if findErr != nil || election == nil {
		return findErr
	}
	if _, authErr := s.authorizeClubAction(ctx, userID, election.ClubID, authz.ActionManageElection); authErr != nil {
		return respondAppError(c, authErr)
	}

	query := s.db.WithContext(ctx).
		Preload("User").
		Preload("Role").
		Where("election_id = ?", election.ID).
		Order("created_at ASC")
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		query = query.Where("status = ?", status)
	}

	var applications []models.CandidateApplication
	if err := query.Find(&applications).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(applications)
}

// DecideApplication handles PUT /api/elections/:id/applications/:appId
// @Summary Approve or reject a candidacy application
// @Description Terminal decision on a pending application. Approval materializes the candidate; a user already standing in the election keeps their existing candidacy.
// @Tags candidacies
// @Accept json
// @Produce json
// @Param id path int true "Election ID"
// @Param appId path int true "Application ID"
// @Param request body object{status=string} true "Decision"
// @Success 200 {object} models.CandidateApplication
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /elections/{id}/applications/{appId} [put]
func (s *Server) DecideApplication(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	election, findErr := s.loadElectionFromPath(c)
	if findErr != nil || election == nil {
		return findErr
	}
	appID, err := s.parseID(c, "appId")
	if err != nil {
		return nil
	}
	if _, authErr := s.authorizeClubAction(ctx, userID, election.ClubID, authz.ActionManageElection); authErr != nil {
		return respondAppError(c, authErr)
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	decision := models.ApplicationStatus(req.Status)
	if decision != models.ApplicationStatusApproved && decision != models.ApplicationStatusRejected {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Status must be approved or rejected"))
	}

	var application models.CandidateApplication
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Role").
			Where("id = ? AND election_id = ?", appID, election.ID).
			First(&application).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Application", appID)
		}
		if err != nil {
			return err
		}
		if application.Status != models.ApplicationStatusPending {
			return models.NewConflictError("Application has already been decided")
		}

		if decision == models.ApplicationStatusApproved {
			// The user may already stand in this election through
			// another approved application; the application is still
			// marked approved without a second candidacy.
			var standing int64
			if err := tx.Model(&models.Candidate{}).
				Where("election_id = ? AND user_id = ?", election.ID, application.UserID).
				Count(&standing).Error; err != nil {
				return err
			}
			if standing == 0 {
				position := ""
				if application.Role != nil {
					position = application.Role.RoleName
				}
				candidate := models.Candidate{
					ElectionID: election.ID,
					UserID:     application.UserID,
					RoleID:     &application.RoleID,
					Position:   position,
					Statement:  application.Statement,
				}
				// Savepoint around the insert: on Postgres a
				// constraint error aborts the surrounding
				// transaction, and the approval below must still
				// commit when a concurrent decision won the
				// (election, user) race.
				err := tx.Transaction(func(tx *gorm.DB) error {
					return tx.Create(&candidate).Error
				})
				if err != nil && !database.IsUniqueViolation(err) {
					return err
				}
			}
		}

		application.Status = decision
		return tx.Save(&application).Error
	})
	if txErr != nil {
		return respondAppError(c, txErr)
	}

	return c.JSON(application)
}

// AddCandidateDirect handles POST /api/elections/:id/candidates
// @Summary Register a candidate directly
// @Description Skips the application workflow. Requires club president or admin and the direct_candidates feature flag.
// @Tags candidacies
// @Accept json
// @Produce json
// @Param id path int true "Election ID"
// @Param request body object{user_id=int,position=string,statement=string} true "Candidate"
// @Success 201 {object} models.Candidate
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /elections/{id}/candidates [post]
func (s *Server) AddCandidateDirect(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	if s.featureFlags != nil && !s.featureFlags.Enabled(featureflags.FlagDirectCandidates, userID) {
		return respondAppError(c, models.NewForbiddenError("Direct candidate registration is currently disabled"))
	}

	election, findErr := s.loadElectionFromPath(c)
	if findErr != nil || election == nil {
		return findErr
	}
	if election.Status == models.ElectionStatusCompleted {
		return respondAppError(c, models.NewConflictError("Election has already completed"))
	}
	if _, authErr := s.authorizeClubAction(ctx, userID, election.ClubID, authz.ActionManageElection); authErr != nil {
		return respondAppError(c, authErr)
	}

	var req struct {
		UserID    uint   `json:"user_id"`
		Position  string `json:"position"`
		Statement string `json:"statement"`
	}
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id is required"))
	}
	req.Position = strings.TrimSpace(req.Position)
	if req.Position == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Position is required"))
	}

	membership, memErr := s.getMembership(ctx, election.ClubID, req.UserID)
	if memErr != nil {
		return respondAppError(c, memErr)
	}
	if membership == nil || !membership.IsApproved() {
		return respondAppError(c,
			models.NewForbiddenError("Candidate must be an approved club member"))
	}

	candidate := models.Candidate{
		ElectionID: election.ID,
		UserID:     req.UserID,
		Position:   req.Position,
		Statement:  strings.TrimSpace(req.Statement),
	}
	if err := s.db.WithContext(ctx).Create(&candidate).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return respondAppError(c, models.NewConflictError("User is already a candidate in this election"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.Status(fiber.StatusCreated).JSON(candidate)
}

// GetElectionCandidates handles GET /api/elections/:id/candidates
// @Summary List candidates
// @Tags candidacies
// @Produce json
// @Param id path int true "Election ID"
// @Success 200 {array} models.Candidate
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /elections/{id}/candidates [get]
func (s *Server) GetElectionCandidates(c *fiber.Ctx) error {
	ctx := c.UserContext()

	election, findErr := s.loadElectionFromPath(c)
	if findErr != nil || election == nil {
		return findErr
	}

	var candidates []models.Candidate
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("election_id = ?", election.ID).
		Order("position ASC, created_at ASC").
		Find(&candidates).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(candidates)
}
