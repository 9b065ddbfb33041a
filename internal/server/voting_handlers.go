package server

import (
	"errors"

	"clubhub/internal/database"
	"clubhub/internal/models"
	"clubhub/internal/observability"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CastVote handles POST /api/elections/:id/votes
// @Summary Cast a ballot
// @Description Records one ballot per voter per election. The election must be active and the voter an approved member of the owning club.
// @Tags votes
// @Accept json
// @Produce json
// @Param id path int true "Election ID"
// @Param request body object{candidate_id=int} true "Ballot"
// @Success 201 {object} models.Vote
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /elections/{id}/votes [post]
func (s *Server) CastVote(c *fiber.Ctx) error {
	ctx := c.UserContext()
	voterID := c.Locals("userID").(uint)

	election, findErr := s.loadElectionFromPath(c)
	if findErr != nil || election == nil {
		return findErr
	}
	if election.Status != models.ElectionStatusActive {
		observability.GovernanceConflicts.WithLabelValues("cast_vote").Inc()
		return respondAppError(c, models.NewConflictError("Election is not open for voting"))
	}

	if _, memErr := s.requireApprovedMembership(c, election, voterID); memErr != nil {
		return memErr
	}

	var req struct {
		CandidateID uint `json:"candidate_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.CandidateID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("candidate_id is required"))
	}

	var candidate models.Candidate
	if err := s.db.WithContext(ctx).
		Where("id = ? AND election_id = ?", req.CandidateID, election.ID).
		First(&candidate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondAppError(c, models.NewNotFoundError("Candidate", req.CandidateID))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Vote{}).
		Where("election_id = ? AND voter_id = ?", election.ID, voterID).
		Count(&existing).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing > 0 {
		observability.GovernanceConflicts.WithLabelValues("cast_vote").Inc()
		return respondAppError(c, models.NewConflictError("You have already voted in this election"))
	}

	vote := models.Vote{
		ElectionID:  election.ID,
		CandidateID: candidate.ID,
		VoterID:     voterID,
	}
	if err := s.db.WithContext(ctx).Create(&vote).Error; err != nil {
		// Concurrent double submit loses the race at the constraint.
		if database.IsUniqueViolation(err) {
			observability.GovernanceConflicts.WithLabelValues("cast_vote").Inc()
			return respondAppError(c, models.NewConflictError("You have already voted in this election"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	observability.BallotsCast.Inc()

	return c.Status(fiber.StatusCreated).JSON(vote)
}

// GetMyVoteStatus handles GET /api/elections/:id/votes/me
// @Summary Check whether the caller has voted
// @Description Reports participation only; the chosen candidate is never disclosed.
// @Tags votes
// @Produce json
// @Param id path int true "Election ID"
// @Success 200 {object} object{has_voted=bool}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /elections/{id}/votes/me [get]
func (s *Server) GetMyVoteStatus(c *fiber.Ctx) error {
	ctx := c.UserContext()
	voterID := c.Locals("userID").(uint)

	election, findErr := s.loadElectionFromPath(c)
	if findErr != nil || election == nil {
		return findErr
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Vote{}).
		Where("election_id = ? AND voter_id = ?", election.ID, voterID).
		Count(&count).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"has_voted": count > 0})
}

// candidateResult is one row of an election tally.
type candidateResult struct {
	CandidateID uint   `json:"candidate_id"`
	UserID      uint   `json:"user_id"`
	Position    string `json:"position"`
	Votes       int64  `json:"votes"`
}

// GetElectionResults handles GET /api/elections/:id/results
// @Summary Get election results
// @Description Per-candidate tallies grouped by position. Only available once the election has completed.
// @Tags votes
// @Produce json
// @Param id path int true "Election ID"
// @Success 200 {object} object{election_id=int,status=string,total_votes=int,results=[]candidateResult}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /elections/{id}/results [get]
func (s *Server) GetElectionResults(c *fiber.Ctx) error {
	ctx := c.UserContext()

	election, findErr := s.loadElectionFromPath(c)
	if findErr != nil || election == nil {
		return findErr
	}
	if election.Status != models.ElectionStatusCompleted {
		return respondAppError(c,
			models.NewForbiddenError("Results are only available after the election completes"))
	}

	var results []candidateResult
	if err := s.db.WithContext(ctx).
		Table("candidates").
		Select("candidates.id AS candidate_id, candidates.user_id, candidates.position, COUNT(votes.id) AS votes").
		Joins("LEFT JOIN votes ON votes.candidate_id = candidates.id").
		Where("candidates.election_id = ?", election.ID).
		Group("candidates.id, candidates.user_id, candidates.position").
		Order("candidates.position ASC, votes DESC").
		Scan(&results).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Vote{}).
		Where("election_id = ?", election.ID).
		Count(&total).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"election_id": election.ID,
		"status":      election.Status,
		"total_votes": total,
		"results":     results,
	})
}
