// Package seed provides helpers to create demo and test data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"clubhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumStudents int
	NumClubs    int
	// SkipBcrypt stores a plaintext demo password instead of a hash.
	// Dev-only shortcut for large seed runs.
	SkipBcrypt bool
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Role:     models.UserRoleStudent,
		Bio:      gofakeit.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}

	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateClub constructs and persists a club with its founding president
// membership. The president's global role projection is updated in the
// same transaction, mirroring the production approval path.
func (f *Factory) CreateClub(president *models.User, overrides ...func(*models.Club)) (*models.Club, error) {
	club := &models.Club{
		Name:            gofakeit.Company() + " Club",
		Description:     gofakeit.Paragraph(1, 2, 8, " "),
		Category:        randomCategory(f.rng),
		CreatedByUserID: &president.ID,
	}

	for _, override := range overrides {
		override(club)
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(club).Error; err != nil {
			return err
		}
		membership := &models.Membership{
			ClubID: club.ID,
			UserID: president.ID,
			Role:   models.MembershipRolePresident,
			Status: models.MembershipStatusApproved,
		}
		if err := tx.Create(membership).Error; err != nil {
			return err
		}
		if president.Role == models.UserRoleStudent {
			if err := tx.Model(&models.User{}).Where("id = ?", president.ID).
				Update("role", models.UserRoleClubPresident).Error; err != nil {
				return err
			}
			president.Role = models.UserRoleClubPresident
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return club, nil
}

// CreateMembership persists an approved ordinary membership.
func (f *Factory) CreateMembership(club *models.Club, user *models.User, overrides ...func(*models.Membership)) (*models.Membership, error) {
	membership := &models.Membership{
		ClubID: club.ID,
		UserID: user.ID,
		Role:   models.MembershipRoleMember,
		Status: models.MembershipStatusApproved,
	}

	for _, override := range overrides {
		override(membership)
	}

	if err := f.db.Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// CreateClubRequest persists a pending club creation request.
func (f *Factory) CreateClubRequest(requester *models.User, overrides ...func(*models.ClubRequest)) (*models.ClubRequest, error) {
	request := &models.ClubRequest{
		Name:              gofakeit.Company() + " Society",
		Description:       gofakeit.Paragraph(1, 2, 8, " "),
		Category:          randomCategory(f.rng),
		RequestedByUserID: requester.ID,
		Status:            models.ClubRequestStatusPending,
	}

	for _, override := range overrides {
		override(request)
	}

	if err := f.db.Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

// CreateElection persists an election with a spread of roles. The time
// window defaults to an active election.
func (f *Factory) CreateElection(club *models.Club, createdBy uint, overrides ...func(*models.Election)) (*models.Election, error) {
	now := time.Now()
	election := &models.Election{
		ClubID:          club.ID,
		Title:           fmt.Sprintf("%d Officer Election", now.Year()),
		Description:     gofakeit.Sentence(12),
		StartDate:       now.Add(-24 * time.Hour),
		EndDate:         now.Add(6 * 24 * time.Hour),
		CreatedByUserID: createdBy,
	}

	for _, override := range overrides {
		override(election)
	}
	election.Status = election.StatusAt(now)

	if err := f.db.Create(election).Error; err != nil {
		return nil, err
	}

	for _, roleName := range []string{"Vice President", "Secretary", "Treasurer"} {
		role := &models.ElectionRole{
			ElectionID:  election.ID,
			RoleName:    roleName,
			Description: gofakeit.Sentence(8),
		}
		if err := f.db.Create(role).Error; err != nil {
			return nil, err
		}
	}
	return election, nil
}

// CreateCandidate persists a candidate standing in an election.
func (f *Factory) CreateCandidate(election *models.Election, user *models.User, role *models.ElectionRole) (*models.Candidate, error) {
	candidate := &models.Candidate{
		ElectionID: election.ID,
		UserID:     user.ID,
		Statement:  gofakeit.Sentence(15),
	}
	if role != nil {
		candidate.RoleID = &role.ID
		candidate.Position = role.RoleName
	} else {
		candidate.Position = "Vice President"
	}

	if err := f.db.Create(candidate).Error; err != nil {
		return nil, err
	}
	return candidate, nil
}

var categoryPool = []string{
	"academic", "arts", "culture", "service", "social", "sports", "technical",
}

func randomCategory(rng *rand.Rand) string {
	return categoryPool[rng.Intn(len(categoryPool))]
}
