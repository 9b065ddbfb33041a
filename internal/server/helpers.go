package server

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"clubhub/internal/authz"
	"clubhub/internal/cache"
	"clubhub/internal/models"
	"clubhub/internal/observability"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "roleId" -> "role ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// respondAppError writes an error response with the status derived from
// the error's taxonomy code.
func respondAppError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.HTTPStatus(err), err)
}

// principal loads the acting user's id and global role for policy checks.
func (s *Server) principal(ctx context.Context, userID uint) (authz.Principal, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "role").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authz.Principal{}, models.NewUnauthorizedError("Unknown principal")
		}
		return authz.Principal{}, models.NewInternalError(err)
	}
	return authz.Principal{ID: user.ID, Role: user.Role}, nil
}

func (s *Server) isAdminByUserID(ctx context.Context, userID uint) (bool, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("role").First(&user, userID).Error; err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}

// getMembership returns the membership row for (club, user), or nil when
// the pair is unknown.
func (s *Server) getMembership(ctx context.Context, clubID, userID uint) (*models.Membership, error) {
	var membership models.Membership
	err := s.db.WithContext(ctx).
		Where("club_id = ? AND user_id = ?", clubID, userID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &membership, nil
}

// authorizeClubAction resolves the principal and their membership in the
// club and applies the policy for the action. Returns Forbidden when
// the policy denies.
func (s *Server) authorizeClubAction(ctx context.Context, userID, clubID uint, action authz.Action) (authz.Principal, error) {
	p, err := s.principal(ctx, userID)
	if err != nil {
		return authz.Principal{}, err
	}

	var membership *models.Membership
	if !p.IsAdmin() {
		membership, err = s.getMembership(ctx, clubID, userID)
		if err != nil {
			return authz.Principal{}, err
		}
	}

	if !authz.Allowed(p, membership, action) {
		return authz.Principal{}, models.NewForbiddenError("Club president or admin access required")
	}
	return p, nil
}

// findClub loads a club by id, mapping absence to NotFound.
func (s *Server) findClub(ctx context.Context, clubID uint) (*models.Club, error) {
	var club models.Club
	if err := s.db.WithContext(ctx).First(&club, clubID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Club", clubID)
		}
		return nil, models.NewInternalError(err)
	}
	return &club, nil
}

// findElection loads an election by id and refreshes its stored status
// from the time bounds. Gating paths must use the returned row, never
// the stored column alone; there is no background process advancing it.
func (s *Server) findElection(ctx context.Context, electionID uint) (*models.Election, error) {
	var election models.Election
	if err := s.db.WithContext(ctx).First(&election, electionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Election", electionID)
		}
		return nil, models.NewInternalError(err)
	}

	if err := s.refreshElectionStatus(ctx, &election); err != nil {
		return nil, err
	}
	return &election, nil
}

// refreshElectionStatus re-derives the status from the election's time
// bounds and persists it when stale.
func (s *Server) refreshElectionStatus(ctx context.Context, election *models.Election) error {
	derived := election.StatusAt(time.Now())
	if derived == election.Status {
		return nil
	}

	if err := s.db.WithContext(ctx).Model(&models.Election{}).
		Where("id = ?", election.ID).
		Update("status", derived).Error; err != nil {
		return models.NewInternalError(err)
	}
	election.Status = derived
	observability.ElectionStatusRefreshes.Inc()
	return nil
}

// recomputeGlobalRole recalculates the user's projected global role from
// their approved presidencies. Must run inside the same transaction as
// the membership mutation that triggered it. Admin accounts are never
// touched.
func recomputeGlobalRole(tx *gorm.DB, userID uint) error {
	var user models.User
	if err := tx.Select("id", "role").First(&user, userID).Error; err != nil {
		return err
	}
	if user.Role == models.UserRoleAdmin {
		return nil
	}

	var presidencies int64
	if err := tx.Model(&models.Membership{}).
		Where("user_id = ? AND role = ? AND status = ?",
			userID, models.MembershipRolePresident, models.MembershipStatusApproved).
		Count(&presidencies).Error; err != nil {
		return err
	}

	want := models.UserRoleStudent
	if presidencies > 0 {
		want = models.UserRoleClubPresident
	}
	if user.Role == want {
		return nil
	}
	return tx.Model(&models.User{}).Where("id = ?", userID).Update("role", want).Error
}

// invalidateUserCache drops the cached user row after a role mutation so
// stale roles never serve authorization decisions.
func (s *Server) invalidateUserCache(ctx context.Context, userID uint) {
	cache.InvalidateUser(ctx, userID)
}
