package server

import (
	"errors"
	"strings"
	"time"

	"clubhub/internal/authz"
	"clubhub/internal/database"
	"clubhub/internal/models"
	"clubhub/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetClubs handles GET /api/clubs
// @Summary List clubs
// @Description List clubs, optionally filtered by category.
// @Tags clubs
// @Produce json
// @Param category query string false "Category filter"
// @Success 200 {array} models.Club
// @Router /clubs [get]
func (s *Server) GetClubs(c *fiber.Ctx) error {
	ctx := c.UserContext()
	p := parsePagination(c, 50)

	query := s.db.WithContext(ctx).Order("name ASC").Limit(p.Limit).Offset(p.Offset)
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		if err := validation.ValidateClubCategory(category); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		query = query.Where("category = ?", strings.ToLower(category))
	}

	var clubs []models.Club
	if err := query.Find(&clubs).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(clubs)
}

// GetClub handles GET /api/clubs/:id
// @Summary Get club
// @Description Fetch club detail by id.
// @Tags clubs
// @Produce json
// @Param id path int true "Club ID"
// @Success 200 {object} models.Club
// @Failure 404 {object} models.ErrorResponse
// @Router /clubs/{id} [get]
func (s *Server) GetClub(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	club, findErr := s.findClub(c.UserContext(), id)
	if findErr != nil {
		return respondAppError(c, findErr)
	}
	return c.JSON(club)
}

// CreateClub handles POST /api/admin/clubs
// @Summary Create club directly
// @Description Admin-only direct club creation, optionally installing a founding president.
// @Tags clubs-admin
// @Accept json
// @Produce json
// @Param request body object{name=string,description=string,category=string,president_user_id=int} true "Club"
// @Success 201 {object} models.Club
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/clubs [post]
func (s *Server) CreateClub(c *fiber.Ctx) error {
	ctx := c.UserContext()
	adminID := c.Locals("userID").(uint)

	var req struct {
		Name            string `json:"name"`
		Description     string `json:"description"`
		Category        string `json:"category"`
		PresidentUserID uint   `json:"president_user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := validation.ValidateClubName(req.Name); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateClubCategory(req.Category); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	club := models.Club{
		Name:            req.Name,
		Description:     strings.TrimSpace(req.Description),
		Category:        strings.ToLower(strings.TrimSpace(req.Category)),
		CreatedByUserID: &adminID,
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&club).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return models.NewConflictError("A club with this name already exists")
			}
			return err
		}

		if req.PresidentUserID == 0 {
			return nil
		}

		var president models.User
		if err := tx.Select("id").First(&president, req.PresidentUserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", req.PresidentUserID)
			}
			return err
		}

		membership := models.Membership{
			ClubID: club.ID,
			UserID: president.ID,
			Role:   models.MembershipRolePresident,
			Status: models.MembershipStatusApproved,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}
		return recomputeGlobalRole(tx, president.ID)
	})
	if txErr != nil {
		return respondAppError(c, txErr)
	}

	if req.PresidentUserID != 0 {
		s.invalidateUserCache(ctx, req.PresidentUserID)
	}

	return c.Status(fiber.StatusCreated).JSON(club)
}

// DeleteClub handles DELETE /api/admin/clubs/:id
// @Summary Delete club
// @Description Admin-only club deletion. Memberships, events and elections cascade; affected presidents get their global role recomputed.
// @Tags clubs-admin
// @Produce json
// @Param id path int true "Club ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/clubs/{id} [delete]
func (s *Server) DeleteClub(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var presidentIDs []uint
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var club models.Club
		if err := tx.First(&club, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Club", id)
			}
			return err
		}

		if err := tx.Model(&models.Membership{}).
			Where("club_id = ? AND role = ? AND status = ?",
				id, models.MembershipRolePresident, models.MembershipStatusApproved).
			Pluck("user_id", &presidentIDs).Error; err != nil {
			return err
		}

		// sqlite test databases do not enforce the FK cascade, so the
		// dependent rows are removed explicitly.
		var electionIDs []uint
		if err := tx.Model(&models.Election{}).Where("club_id = ?", id).
			Pluck("id", &electionIDs).Error; err != nil {
			return err
		}
		if len(electionIDs) > 0 {
			for _, dependent := range []any{
				&models.Vote{}, &models.Candidate{}, &models.CandidateApplication{}, &models.ElectionRole{},
			} {
				if err := tx.Where("election_id IN ?", electionIDs).Delete(dependent).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("club_id = ?", id).Delete(&models.Election{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("club_id = ?", id).Delete(&models.Event{}).Error; err != nil {
			return err
		}
		if err := tx.Where("club_id = ?", id).Delete(&models.Membership{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Club{}, id).Error; err != nil {
			return err
		}

		for _, userID := range presidentIDs {
			if err := recomputeGlobalRole(tx, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return respondAppError(c, txErr)
	}

	for _, userID := range presidentIDs {
		s.invalidateUserCache(ctx, userID)
	}

	return c.JSON(fiber.Map{"message": "Club deleted"})
}

// ReplaceClubPresident handles PUT /api/admin/clubs/:id/president
// @Summary Replace club president
// @Description Admin-only presidency transfer. The current president is downgraded to member and the new one installed; both users' global roles are recomputed.
// @Tags clubs-admin
// @Accept json
// @Produce json
// @Param id path int true "Club ID"
// @Param request body object{user_id=int} true "New president"
// @Success 200 {object} models.Membership
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/clubs/{id}/president [put]
func (s *Server) ReplaceClubPresident(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("user_id is required"))
	}

	var touched []uint
	var installed models.Membership
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Club{}, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Club", id)
			}
			return err
		}
		if err := tx.Select("id").First(&models.User{}, req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", req.UserID)
			}
			return err
		}

		var current models.Membership
		err := tx.Where("club_id = ? AND role = ? AND status = ?",
			id, models.MembershipRolePresident, models.MembershipStatusApproved).
			First(&current).Error
		switch {
		case err == nil:
			if current.UserID == req.UserID {
				return models.NewConflictError("User is already the club president")
			}
			if err := tx.Model(&models.Membership{}).
				Where("club_id = ? AND user_id = ?", id, current.UserID).
				Update("role", models.MembershipRoleMember).Error; err != nil {
				return err
			}
			touched = append(touched, current.UserID)
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Club has no sitting president; just install the new one.
		default:
			return err
		}

		var existing models.Membership
		err = tx.Where("club_id = ? AND user_id = ?", id, req.UserID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Model(&models.Membership{}).
				Where("club_id = ? AND user_id = ?", id, req.UserID).
				Updates(map[string]interface{}{
					"role":   models.MembershipRolePresident,
					"status": models.MembershipStatusApproved,
				}).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.Membership{
				ClubID: id,
				UserID: req.UserID,
				Role:   models.MembershipRolePresident,
				Status: models.MembershipStatusApproved,
			}).Error; err != nil {
				return err
			}
		default:
			return err
		}
		touched = append(touched, req.UserID)

		for _, userID := range touched {
			if err := recomputeGlobalRole(tx, userID); err != nil {
				return err
			}
		}
		return tx.Where("club_id = ? AND user_id = ?", id, req.UserID).First(&installed).Error
	})
	if txErr != nil {
		return respondAppError(c, txErr)
	}

	for _, userID := range touched {
		s.invalidateUserCache(ctx, userID)
	}

	return c.JSON(installed)
}

// GetClubEvents handles GET /api/clubs/:id/events
// @Summary List club events
// @Tags clubs
// @Produce json
// @Param id path int true "Club ID"
// @Success 200 {array} models.Event
// @Failure 404 {object} models.ErrorResponse
// @Router /clubs/{id}/events [get]
func (s *Server) GetClubEvents(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, findErr := s.findClub(ctx, id); findErr != nil {
		return respondAppError(c, findErr)
	}

	var events []models.Event
	if err := s.db.WithContext(ctx).
		Where("club_id = ?", id).
		Order("starts_at ASC").
		Find(&events).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(events)
}

// CreateClubEvent handles POST /api/clubs/:id/events
// @Summary Create club event
// @Description Create an event for the club. Requires club president or admin.
// @Tags clubs
// @Accept json
// @Produce json
// @Param id path int true "Club ID"
// @Param request body object{title=string,description=string,location=string,starts_at=string,ends_at=string} true "Event"
// @Success 201 {object} models.Event
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /clubs/{id}/events [post]
func (s *Server) CreateClubEvent(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, findErr := s.findClub(ctx, id); findErr != nil {
		return respondAppError(c, findErr)
	}

	if _, authErr := s.authorizeClubAction(ctx, userID, id, authz.ActionManageClub); authErr != nil {
		return respondAppError(c, authErr)
	}

	var req struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Location    string    `json:"location"`
		StartsAt    time.Time `json:"starts_at"`
		EndsAt      time.Time `json:"ends_at"`
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
	if !req.EndsAt.IsZero() && req.EndsAt.Before(req.StartsAt) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Event cannot end before it starts"))
	}

	event := models.Event{
		ClubID:          id,
		Title:           req.Title,
		Description:     strings.TrimSpace(req.Description),
		Location:        strings.TrimSpace(req.Location),
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		CreatedByUserID: userID,
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}
