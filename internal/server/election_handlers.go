package server

import (
	"errors"
	"strings"
	"time"

	"clubhub/internal/authz"
	"clubhub/internal/database"
	"clubhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateElection handles POST /api/clubs/:id/elections
// @Summary Create an election
// @Description Schedules an officer election for the club. Requires club president or admin.
// @Tags elections
// @Accept json
// @Produce json
// @Param id path int true "Club ID"
// @Param request body object{title=string,description=string,start_date=string,end_date=string} true "Election"
// @Success 201 {object} models.Election
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /clubs/{id}/elections [post]
func (s *Server) CreateElection(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)
	clubID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, findErr := s.findClub(ctx, clubID); findErr != nil {
		return respondAppError(c, findErr)
	}
	if _, authErr := s.authorizeClubAction(ctx, userID, clubID, authz.ActionManageElection); authErr != nil {
		return respondAppError(c, authErr)
	}

	var req struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		StartDate   time.Time `json:"start_date"`
		EndDate     time.Time `json:"end_date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title is required"))
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Start and end dates are required"))
	}
	if !req.StartDate.Before(req.EndDate) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Election must start before it ends"))
	}

	election := models.Election{
		ClubID:          clubID,
		Title:           req.Title,
		Description:     strings.TrimSpace(req.Description),
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		CreatedByUserID: userID,
	}
	election.Status = election.StatusAt(time.Now())

	if err := s.db.WithContext(ctx).Create(&election).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.Status(fiber.StatusCreated).JSON(election)
}

// GetClubElections handles GET /api/clubs/:id/elections
// @Summary List a club's elections
// @Tags elections
// @Produce json
// @Param id path int true "Club ID"
// @Success 200 {array} models.Election
// @Failure 404 {object} models.ErrorResponse
// @Router /clubs/{id}/elections [get]
func (s *Server) GetClubElections(c *fiber.Ctx) error {
	ctx := c.UserContext()
	clubID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, findErr := s.findClub(ctx, clubID); findErr != nil {
		return respondAppError(c, findErr)
	}

	var elections []models.Election
	if err := s.db.WithContext(ctx).
		Where("club_id = ?", clubID).
		Order("start_date DESC").
		Find(&elections).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// The stored status is a cache; derive the display value so stale
	// rows never mislead list consumers. Persistence happens lazily on
	// single-election reads.
	now := time.Now()
	for i := range elections {
		elections[i].Status = elections[i].StatusAt(now)
	}
	return c.JSON(elections)
}

// GetElection handles GET /api/elections/:id
// @Summary Get an election
// @Tags elections
// @Produce json
// @Param id path int true "Election ID"
// @Success 200 {object} models.Election
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /elections/{id} [get]
func (s *Server) GetElection(c *fiber.Ctx) error {
	election, findErr := s.loadElectionFromPath(c)
	if findErr != nil {
		return findErr
	}
	if election == nil {
		return nil
	}
	return c.JSON(election)
}

// loadElectionFromPath parses :id and loads the election with a fresh
// status. Returns (nil, nil) when the handler response has already been
// written by parseID.
func (s *Server) loadElectionFromPath(c *fiber.Ctx) (*models.Election, error) {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil, nil
	}
	election, findErr := s.findElection(c.UserContext(), id)
	if findErr != nil {
		return nil, respondAppError(c, findErr)
	}
	return election, nil
}

// AddElectionRole handles POST /api/elections/:id/roles
// @Summary Add a contested role
// @Description Defines a position to be filled. Role names are unique within the election. Requires club president or admin.
// @Tags elections
// @Accept json
// @Produce json
// @Param id path int true "Election ID"
// @Param request body object{role_name=string,description=string} true "Role"
// @Success 201 {object} models.ElectionRole
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /elections/{id}/roles [post]
func (s *Server) AddElectionRole(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	election, findErr := s.loadElectionFromPath(c)
	if findErr != nil || election == nil {
		return findErr
	}
	if _, authErr := s.authorizeClubAction(ctx, userID, election.ClubID, authz.ActionManageElection); authErr != nil {
		return respondAppError(c, authErr)
	}

	var req struct {
		RoleName    string `json:"role_name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.RoleName = strings.TrimSpace(req.RoleName)
	if req.RoleName == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Role name is required"))
	}

	role := models.ElectionRole{
		ElectionID:  election.ID,
		RoleName:    req.RoleName,
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.db.WithContext(ctx).Create(&role).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return respondAppError(c, models.NewConflictError("This role already exists in the election"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.Status(fiber.StatusCreated).JSON(role)
}

// GetElectionRoles handles GET /api/elections/:id/roles
// @Summary List contested roles
// @Tags elections
// @Produce json
// @Param id path int true "Election ID"
// @Success 200 {array} models.ElectionRole
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /elections/{id}/roles [get]
func (s *Server) GetElectionRoles(c *fiber.Ctx) error {
	ctx := c.UserContext()

	election, findErr := s.loadElectionFromPath(c)
	if findErr != nil || election == nil {
		return findErr
	}

	var roles []models.ElectionRole
	if err := s.db.WithContext(ctx).
		Where("election_id = ?", election.ID).
		Order("role_name ASC").
		Find(&roles).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(roles)
}

// RemoveElectionRole handles DELETE /api/elections/:id/roles/:roleId
// @Summary Remove a contested role
// @Description Deletes the role and its pending applications. Requires club president or admin.
// @Tags elections
// @Produce json
// @Param id path int true "Election ID"
// @Param roleId path int true "Role ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /elections/{id}/roles/{roleId} [delete]
func (s *Server) RemoveElectionRole(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	election, findErr := s.loadElectionFromPath(c)
	if findErr != nil || election == nil {
		return findErr
	}
	roleID, err := s.parseID(c, "roleId")
	if err != nil {
		return nil
	}
	if _, authErr := s.authorizeClubAction(ctx, userID, election.ClubID, authz.ActionManageElection); authErr != nil {
		return respondAppError(c, authErr)
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.ElectionRole
		err := tx.Where("id = ? AND election_id = ?", roleID, election.ID).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Election role", roleID)
		}
		if err != nil {
			return err
		}

		if err := tx.Where("role_id = ?", role.ID).
			Delete(&models.CandidateApplication{}).Error; err != nil {
			return err
		}
		return tx.Delete(&role).Error
	})
	if txErr != nil {
		return respondAppError(c, txErr)
	}

	return c.JSON(fiber.Map{"message": "Election role removed"})
}
