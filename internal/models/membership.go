package models

import "time"

// MembershipRole defines a member's role within a club.
type MembershipRole string

const (
	// MembershipRoleMember is the default role for an ordinary member.
	MembershipRoleMember MembershipRole = "member"
	// MembershipRolePresident is the club president role. At most one
	// approved membership per club may hold it; it is only assigned by
	// the request workflow or an admin action.
	MembershipRolePresident MembershipRole = "president"
	// MembershipRoleVicePresident is the vice president officer role.
	MembershipRoleVicePresident MembershipRole = "vice_president"
	// MembershipRoleSecretary is the secretary officer role.
	MembershipRoleSecretary MembershipRole = "secretary"
	// MembershipRoleTreasurer is the treasurer officer role.
	MembershipRoleTreasurer MembershipRole = "treasurer"
)

// AssignableMembershipRoles are the roles reachable through the
// ordinary role-change endpoint. President is deliberately absent.
var AssignableMembershipRoles = map[MembershipRole]struct{}{
	MembershipRoleMember:        {},
	MembershipRoleVicePresident: {},
	MembershipRoleSecretary:     {},
	MembershipRoleTreasurer:     {},
}

// MembershipStatus defines the approval state of a membership.
type MembershipStatus string

const (
	// MembershipStatusPending indicates a join request awaiting review.
	MembershipStatusPending MembershipStatus = "pending"
	// MembershipStatusApproved indicates an accepted membership. Only
	// approved memberships grant club-scoped rights.
	MembershipStatusApproved MembershipStatus = "approved"
	// MembershipStatusRejected indicates a declined join request.
	MembershipStatusRejected MembershipStatus = "rejected"
)

// Membership maps users to clubs and tracks role and approval status.
// The (club, user) pair is the primary key; the database enforces
// at-most-one row per pair.
type Membership struct {
	ClubID    uint             `gorm:"primaryKey;autoIncrement:false" json:"club_id"`
	Club      *Club            `gorm:"foreignKey:ClubID;constraint:OnDelete:CASCADE" json:"club,omitempty"`
	UserID    uint             `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User      *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      MembershipRole   `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	Status    MembershipStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// IsApproved reports whether the membership grants club-scoped rights.
func (m *Membership) IsApproved() bool {
	return m.Status == MembershipStatusApproved
}

// IsPresidency reports whether this is an approved president membership.
func (m *Membership) IsPresidency() bool {
	return m.Role == MembershipRolePresident && m.Status == MembershipStatusApproved
}
