package models

import "time"

// Club represents a student organization. Clubs are created through the
// club-request approval workflow or directly by an admin; deleting a
// club cascades to its memberships, events and elections.
type Club struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	Category        string    `gorm:"size:60" json:"category"`
	CreatedByUserID *uint     `json:"created_by_user_id"`
	CreatedByUser   *User     `gorm:"foreignKey:CreatedByUserID" json:"created_by_user,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Club) TableName() string {
	return "clubs"
}

// Event is a club-owned happening. Its lifetime is bounded by the
// club's lifetime.
type Event struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ClubID          uint      `gorm:"not null;index" json:"club_id"`
	Club            *Club     `gorm:"foreignKey:ClubID;constraint:OnDelete:CASCADE" json:"club,omitempty"`
	Title           string    `gorm:"size:160;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	Location        string    `gorm:"size:160" json:"location"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	CreatedByUserID uint      `gorm:"not null" json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
