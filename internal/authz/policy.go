// Package authz implements the pure authorization policy for club and
// election administration. The policy is a function of the principal,
// the principal's membership row in the relevant club (if any) and the
// requested action; it performs no I/O.
package authz

import "clubhub/internal/models"

// Principal is the authenticated actor performing a request.
type Principal struct {
	ID   uint
	Role models.UserRole
}

// IsAdmin reports whether the principal holds the platform admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == models.UserRoleAdmin
}

// Action tags the operation being authorized.
type Action string

const (
	// ActionManageClub covers club-scoped administration: deciding join
	// requests, changing member roles, removing members, managing events.
	ActionManageClub Action = "club:manage"
	// ActionManageElection covers election administration within the
	// election's club: creating elections, defining roles, deciding
	// applications, adding candidates directly.
	ActionManageElection Action = "election:manage"
	// ActionReviewClubRequests covers processing club creation requests.
	ActionReviewClubRequests Action = "club_request:review"
	// ActionAdministerClubs covers direct club creation and deletion.
	ActionAdministerClubs Action = "club:administer"
)

// Allowed decides whether the principal may perform the action. The
// membership argument is the principal's row in the club that scopes
// the action, or nil when the principal has none.
//
// A global club_president role is never sufficient on its own: every
// club-scoped action additionally requires an approved president
// membership in that specific club. Admins pass unconditionally.
func Allowed(p Principal, membership *models.Membership, action Action) bool {
	if p.IsAdmin() {
		return true
	}

	switch action {
	case ActionManageClub, ActionManageElection:
		return membership != nil && membership.IsPresidency()
	case ActionReviewClubRequests, ActionAdministerClubs:
		return false
	default:
		return false
	}
}

// OwnsRequest reports whether the principal submitted the club request.
// Ownership allowances are action-specific and independent of role.
func OwnsRequest(p Principal, req *models.ClubRequest) bool {
	return req != nil && req.RequestedByUserID == p.ID
}

// IsSelf reports whether the principal is acting on their own account.
func IsSelf(p Principal, userID uint) bool {
	return p.ID == userID
}
