package seed

import (
	"fmt"
	"log"

	"clubhub/internal/models"

	"gorm.io/gorm"
)

// Seed populates the database with demo data: built-in clubs, a set of
// students, one presided club per few students, memberships, a pending
// crop of club requests, and an active election with candidates.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumStudents <= 0 {
		opts.NumStudents = 25
	}
	if opts.NumClubs <= 0 {
		opts.NumClubs = 5
	}
	log.Printf("Seeding database with %d students and %d clubs...", opts.NumStudents, opts.NumClubs)

	if err := Clubs(db); err != nil {
		return fmt.Errorf("seed built-in clubs: %w", err)
	}

	f := NewFactory(db, opts)

	students := make([]*models.User, 0, opts.NumStudents)
	for i := 0; i < opts.NumStudents; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		students = append(students, user)
	}
	log.Printf("Created %d students", len(students))

	clubs := make([]*models.Club, 0, opts.NumClubs)
	for i := 0; i < opts.NumClubs; i++ {
		president := students[i%len(students)]
		club, err := f.CreateClub(president)
		if err != nil {
			return fmt.Errorf("seed club: %w", err)
		}
		clubs = append(clubs, club)

		// Fill the roster with a handful of ordinary members.
		for j := 1; j <= 4 && i+j*opts.NumClubs < len(students); j++ {
			member := students[i+j*opts.NumClubs]
			if _, err := f.CreateMembership(club, member); err != nil {
				return fmt.Errorf("seed membership: %w", err)
			}
		}
	}
	log.Printf("Created %d clubs with rosters", len(clubs))

	// A couple of pending club requests for the admin queue.
	for i := 0; i < 3 && i < len(students); i++ {
		if _, err := f.CreateClubRequest(students[len(students)-1-i]); err != nil {
			return fmt.Errorf("seed club request: %w", err)
		}
	}

	// One active election with two candidates in the first club.
	if len(clubs) > 0 {
		club := clubs[0]
		election, err := f.CreateElection(club, *club.CreatedByUserID)
		if err != nil {
			return fmt.Errorf("seed election: %w", err)
		}

		var roles []models.ElectionRole
		if err := db.Where("election_id = ?", election.ID).Find(&roles).Error; err != nil {
			return fmt.Errorf("load election roles: %w", err)
		}

		var members []models.Membership
		if err := db.Where("club_id = ? AND status = ? AND role <> ?",
			club.ID, models.MembershipStatusApproved, models.MembershipRolePresident).
			Limit(2).Find(&members).Error; err != nil {
			return fmt.Errorf("load club members: %w", err)
		}
		for i, m := range members {
			var role *models.ElectionRole
			if len(roles) > 0 {
				role = &roles[i%len(roles)]
			}
			if _, err := f.CreateCandidate(election, &models.User{ID: m.UserID}, role); err != nil {
				return fmt.Errorf("seed candidate: %w", err)
			}
		}
	}

	log.Println("Seeding complete")
	return nil
}
