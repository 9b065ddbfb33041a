package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clubhub/internal/database"
	"clubhub/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &user
}

// createTestClub creates a club with an approved president membership
// and promotes the president's global role, matching what the request
// approval workflow produces.
func createTestClub(t *testing.T, db *gorm.DB, name string, president *models.User) *models.Club {
	t.Helper()
	club := models.Club{Name: name, Category: "academic"}
	if err := db.Create(&club).Error; err != nil {
		t.Fatalf("create club %s: %v", name, err)
	}
	membership := models.Membership{
		ClubID: club.ID,
		UserID: president.ID,
		Role:   models.MembershipRolePresident,
		Status: models.MembershipStatusApproved,
	}
	if err := db.Create(&membership).Error; err != nil {
		t.Fatalf("create president membership: %v", err)
	}
	if president.Role != models.UserRoleAdmin {
		if err := db.Model(&models.User{}).Where("id = ?", president.ID).
			Update("role", models.UserRoleClubPresident).Error; err != nil {
			t.Fatalf("promote president: %v", err)
		}
		president.Role = models.UserRoleClubPresident
	}
	return &club
}

func addTestMember(t *testing.T, db *gorm.DB, club *models.Club, user *models.User, status models.MembershipStatus) {
	t.Helper()
	membership := models.Membership{
		ClubID: club.ID,
		UserID: user.ID,
		Role:   models.MembershipRoleMember,
		Status: status,
	}
	if err := db.Create(&membership).Error; err != nil {
		t.Fatalf("create membership: %v", err)
	}
}

// authedApp returns a fiber app whose middleware injects the given user
// as the authenticated caller, standing in for the JWT middleware.
func authedApp(userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test %s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
