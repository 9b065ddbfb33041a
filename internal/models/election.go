package models

import "time"

// ElectionStatus defines the lifecycle state of an election. The value
// is persisted for cheap list filtering but is a pure function of the
// election's time bounds; gating read paths re-derive it via StatusAt
// before trusting the stored column.
type ElectionStatus string

const (
	// ElectionStatusUpcoming indicates voting has not opened yet.
	ElectionStatusUpcoming ElectionStatus = "upcoming"
	// ElectionStatusActive indicates voting is open.
	ElectionStatusActive ElectionStatus = "active"
	// ElectionStatusCompleted indicates voting has closed. Terminal.
	ElectionStatusCompleted ElectionStatus = "completed"
)

// Election is a club-owned officer election. Roles, applications,
// candidates and votes all cascade-delete with the election.
type Election struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	ClubID          uint           `gorm:"not null;index" json:"club_id"`
	Club            *Club          `gorm:"foreignKey:ClubID;constraint:OnDelete:CASCADE" json:"club,omitempty"`
	Title           string         `gorm:"size:160;not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	StartDate       time.Time      `gorm:"not null" json:"start_date"`
	EndDate         time.Time      `gorm:"not null" json:"end_date"`
	Status          ElectionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedByUserID uint           `gorm:"not null" json:"created_by_user_id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// StatusAt derives the election status from its time bounds. This is
// the single source of truth for lifecycle transitions; the stored
// Status column is a cache of its value.
func (e *Election) StatusAt(now time.Time) ElectionStatus {
	switch {
	case now.Before(e.StartDate):
		return ElectionStatusUpcoming
	case now.After(e.EndDate):
		return ElectionStatusCompleted
	default:
		return ElectionStatusActive
	}
}

// ElectionRole defines a position to be filled in an election. Role
// names are unique within the election.
type ElectionRole struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ElectionID  uint      `gorm:"not null;uniqueIndex:idx_election_role_name" json:"election_id"`
	Election    *Election `gorm:"foreignKey:ElectionID;constraint:OnDelete:CASCADE" json:"election,omitempty"`
	RoleName    string    `gorm:"size:80;not null;uniqueIndex:idx_election_role_name" json:"role_name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ApplicationStatus defines lifecycle states for candidacy applications.
type ApplicationStatus string

const (
	// ApplicationStatusPending indicates the application awaits review.
	ApplicationStatusPending ApplicationStatus = "pending"
	// ApplicationStatusApproved indicates the application was accepted.
	ApplicationStatusApproved ApplicationStatus = "approved"
	// ApplicationStatusRejected indicates the application was declined.
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// CandidateApplication is a member's request to stand for a role. A
// user may apply once per role per election; approval is the only path
// that materializes a Candidate row.
type CandidateApplication struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ElectionID uint              `gorm:"not null;uniqueIndex:idx_application_slot" json:"election_id"`
	Election   *Election         `gorm:"foreignKey:ElectionID;constraint:OnDelete:CASCADE" json:"election,omitempty"`
	RoleID     uint              `gorm:"not null;uniqueIndex:idx_application_slot" json:"role_id"`
	Role       *ElectionRole     `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"role,omitempty"`
	UserID     uint              `gorm:"not null;uniqueIndex:idx_application_slot" json:"user_id"`
	User       *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Statement  string            `gorm:"type:text" json:"statement"`
	Status     ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Candidate is a user standing in an election. A user holds at most
// one candidacy per election regardless of how many roles they applied
// for; the database constraint on (election, user) is the guard.
type Candidate struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	ElectionID uint          `gorm:"not null;uniqueIndex:idx_candidate_slot" json:"election_id"`
	Election   *Election     `gorm:"foreignKey:ElectionID;constraint:OnDelete:CASCADE" json:"election,omitempty"`
	UserID     uint          `gorm:"not null;uniqueIndex:idx_candidate_slot" json:"user_id"`
	User       *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RoleID     *uint         `json:"role_id"`
	Role       *ElectionRole `gorm:"foreignKey:RoleID;constraint:OnDelete:SET NULL" json:"role,omitempty"`
	Position   string        `gorm:"size:80;not null" json:"position"`
	Statement  string        `gorm:"type:text" json:"statement"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Vote is one ballot. Exactly one per (election, voter) regardless of
// how many positions are contested.
type Vote struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ElectionID  uint       `gorm:"not null;uniqueIndex:idx_ballot_slot" json:"election_id"`
	Election    *Election  `gorm:"foreignKey:ElectionID;constraint:OnDelete:CASCADE" json:"election,omitempty"`
	CandidateID uint       `gorm:"not null;index" json:"candidate_id"`
	Candidate   *Candidate `gorm:"foreignKey:CandidateID;constraint:OnDelete:CASCADE" json:"candidate,omitempty"`
	VoterID     uint       `gorm:"not null;uniqueIndex:idx_ballot_slot" json:"voter_id"`
	Voter       *User      `gorm:"foreignKey:VoterID" json:"voter,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
