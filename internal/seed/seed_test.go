package seed

import (
	"testing"

	"clubhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Club{},
		&models.Membership{},
		&models.ClubRequest{},
		&models.Election{},
		&models.ElectionRole{},
		&models.CandidateApplication{},
		&models.Candidate{},
		&models.Vote{},
	))
	return db
}

func TestBuiltInClubsFixtures(t *testing.T) {
	fixtures, err := BuiltInClubs()
	require.NoError(t, err)
	require.NotEmpty(t, fixtures)

	seen := map[string]bool{}
	for _, club := range fixtures {
		assert.NotEmpty(t, club.Name)
		assert.False(t, seen[club.Name], "duplicate built-in club %q", club.Name)
		seen[club.Name] = true
	}
}

func TestClubsSeedIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Clubs(db))
	var first int64
	require.NoError(t, db.Model(&models.Club{}).Count(&first).Error)

	require.NoError(t, Clubs(db))
	var second int64
	require.NoError(t, db.Model(&models.Club{}).Count(&second).Error)

	assert.Equal(t, first, second, "re-seeding must not duplicate built-in clubs")
}

func TestSeedUpholdsPresidencyInvariants(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Seed(db, Options{NumStudents: 12, NumClubs: 3, SkipBcrypt: true}))

	// At most one approved president per club.
	var clubs []models.Club
	require.NoError(t, db.Find(&clubs).Error)
	for _, club := range clubs {
		var presidents int64
		require.NoError(t, db.Model(&models.Membership{}).
			Where("club_id = ? AND role = ? AND status = ?",
				club.ID, models.MembershipRolePresident, models.MembershipStatusApproved).
			Count(&presidents).Error)
		assert.LessOrEqual(t, presidents, int64(1), "club %q has multiple presidents", club.Name)
	}

	// Every user presiding somewhere carries the projected global role.
	var presidencies []models.Membership
	require.NoError(t, db.Where("role = ? AND status = ?",
		models.MembershipRolePresident, models.MembershipStatusApproved).
		Find(&presidencies).Error)
	require.NotEmpty(t, presidencies)

	for _, m := range presidencies {
		var user models.User
		require.NoError(t, db.First(&user, m.UserID).Error)
		assert.Equal(t, models.UserRoleClubPresident, user.Role,
			"user %d presides over club %d but has role %s", user.ID, m.ClubID, user.Role)
	}
}

func TestFactoryCreateClubSetsFoundingPresident(t *testing.T) {
	db := setupTestDB(t)
	f := NewFactory(db, Options{SkipBcrypt: true})

	president, err := f.CreateUser()
	require.NoError(t, err)
	club, err := f.CreateClub(president)
	require.NoError(t, err)

	var membership models.Membership
	require.NoError(t, db.Where("club_id = ? AND user_id = ?", club.ID, president.ID).
		First(&membership).Error)
	assert.True(t, membership.IsPresidency())

	var user models.User
	require.NoError(t, db.First(&user, president.ID).Error)
	assert.Equal(t, models.UserRoleClubPresident, user.Role)
}
