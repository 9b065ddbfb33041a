package database

import "clubhub/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Club{},
		&models.Event{},
		&models.Membership{},
		&models.ClubRequest{},
		&models.Election{},
		&models.ElectionRole{},
		&models.CandidateApplication{},
		&models.Candidate{},
		&models.Vote{},
	}
}
