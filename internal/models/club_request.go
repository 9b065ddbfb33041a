package models

import "time"

// ClubRequestStatus defines lifecycle states for club creation requests.
type ClubRequestStatus string

const (
	// ClubRequestStatusPending indicates the request is awaiting review.
	ClubRequestStatusPending ClubRequestStatus = "pending"
	// ClubRequestStatusApproved indicates the request was accepted.
	ClubRequestStatusApproved ClubRequestStatus = "approved"
	// ClubRequestStatusRejected indicates the request was denied.
	ClubRequestStatusRejected ClubRequestStatus = "rejected"
)

// ClubRequest is a user-submitted request to found a club. Approval
// atomically creates the club and the requester's founding presidency;
// approved and rejected are terminal states.
type ClubRequest struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	Name              string            `gorm:"size:120;not null" json:"name"`
	Description       string            `gorm:"type:text;not null" json:"description"`
	Category          string            `gorm:"size:60" json:"category"`
	RequestedByUserID uint              `gorm:"not null;index" json:"requested_by_user_id"`
	RequestedByUser   *User             `gorm:"foreignKey:RequestedByUserID" json:"requested_by_user,omitempty"`
	Status            ClubRequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AdminFeedback     string            `gorm:"type:text" json:"admin_feedback"`
	ReviewedByUserID  *uint             `json:"reviewed_by_user_id"`
	ReviewedByUser    *User             `gorm:"foreignKey:ReviewedByUserID" json:"reviewed_by_user,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}
