package server

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"clubhub/internal/models"

	"gorm.io/gorm"
)

func createTestElection(t *testing.T, db *gorm.DB, clubID, creatorID uint, start, end time.Time) *models.Election {
	t.Helper()
	election := models.Election{
		ClubID:          clubID,
		Title:           "Officer Election",
		StartDate:       start,
		EndDate:         end,
		CreatedByUserID: creatorID,
	}
	election.Status = election.StatusAt(time.Now())
	if err := db.Create(&election).Error; err != nil {
		t.Fatalf("create election: %v", err)
	}
	return &election
}

func TestCreateElectionValidation(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	s := &Server{db: db}

	president := createTestUser(t, db, "elec_president", models.UserRoleStudent)
	club := createTestClub(t, db, "Election Club", president)

	app := authedApp(president.ID)
	app.Post("/clubs/:id/elections", s.CreateElection)

	path := fmt.Sprintf("/clubs/%d/elections", club.ID)
	now := time.Now()

	resp := doJSON(t, app, http.MethodPost, path, map[string]any{
		"title":      "Spring Election",
		"start_date": now.Add(48 * time.Hour),
		"end_date":   now.Add(24 * time.Hour),
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted window, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodPost, path, map[string]any{
		"title":      "Spring Election",
		"start_date": now.Add(-time.Hour),
		"end_date":   now.Add(24 * time.Hour),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var election models.Election
	decodeBody(t, resp, &election)
	if election.Status != models.ElectionStatusActive {
		t.Fatalf("expected active status from window, got %s", election.Status)
	}
}

func TestCreateElectionRequiresPresidency(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	s := &Server{db: db}

	president := createTestUser(t, db, "elec_owner", models.UserRoleStudent)
	member := createTestUser(t, db, "elec_member", models.UserRoleStudent)
	club := createTestClub(t, db, "Members Only Club", president)
	addTestMember(t, db, club, member, models.MembershipStatusApproved)

	app := authedApp(member.ID)
	app.Post("/clubs/:id/elections", s.CreateElection)

	now := time.Now()
	resp := doJSON(t, app, http.MethodPost, fmt.Sprintf("/clubs/%d/elections", club.ID),
		map[string]any{
			"title":      "Coup Attempt",
			"start_date": now,
			"end_date":   now.Add(time.Hour),
		})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestElectionStatusLazyRefresh(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	s := &Server{db: db}

	president := createTestUser(t, db, "lazy_president", models.UserRoleStudent)
	club := createTestClub(t, db, "Lazy Status Club", president)

	// Stored as active, but the window has already closed.
	election := models.Election{
		ClubID:          club.ID,
		Title:           "Stale Election",
		StartDate:       time.Now().Add(-48 * time.Hour),
		EndDate:         time.Now().Add(-24 * time.Hour),
		Status:          models.ElectionStatusActive,
		CreatedByUserID: president.ID,
	}
	if err := db.Create(&election).Error; err != nil {
		t.Fatalf("create election: %v", err)
	}

	app := authedApp(president.ID)
	app.Get("/elections/:id", s.GetElection)

	resp := doJSON(t, app, http.MethodGet, fmt.Sprintf("/elections/%d", election.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var fetched models.Election
	decodeBody(t, resp, &fetched)
	if fetched.Status != models.ElectionStatusCompleted {
		t.Fatalf("expected completed after refresh, got %s", fetched.Status)
	}

	// The refresh persists.
	var stored models.Election
	if err := db.First(&stored, election.ID).Error; err != nil {
		t.Fatalf("reload election: %v", err)
	}
	if stored.Status != models.ElectionStatusCompleted {
		t.Fatalf("expected persisted completed, got %s", stored.Status)
	}
}

func TestElectionRoleLifecycle(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	s := &Server{db: db}

	president := createTestUser(t, db, "roles_president", models.UserRoleStudent)
	club := createTestClub(t, db, "Roles Club", president)
	election := createTestElection(t, db, club.ID, president.ID,
		time.Now().Add(24*time.Hour), time.Now().Add(48*time.Hour))

	app := authedApp(president.ID)
	app.Post("/elections/:id/roles", s.AddElectionRole)
	app.Get("/elections/:id/roles", s.GetElectionRoles)
	app.Delete("/elections/:id/roles/:roleId", s.RemoveElectionRole)

	rolesPath := fmt.Sprintf("/elections/%d/roles", election.ID)

	resp := doJSON(t, app, http.MethodPost, rolesPath, map[string]string{"role_name": "Treasurer"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var role models.ElectionRole
	decodeBody(t, resp, &role)

	// Role names are unique within the election.
	resp = doJSON(t, app, http.MethodPost, rolesPath, map[string]string{"role_name": "Treasurer"})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate role, got %d", resp.StatusCode)
	}

	// The same name is fine in a different election.
	other := createTestElection(t, db, club.ID, president.ID,
		time.Now().Add(72*time.Hour), time.Now().Add(96*time.Hour))
	resp = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/elections/%d/roles", other.ID), map[string]string{"role_name": "Treasurer"})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 in other election, got %d", resp.StatusCode)
	}

	// Removing a role through the wrong election is a miss.
	resp = doJSON(t, app, http.MethodDelete,
		fmt.Sprintf("/elections/%d/roles/%d", other.ID, role.ID), nil)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for cross-election removal, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodDelete,
		fmt.Sprintf("/elections/%d/roles/%d", election.ID, role.ID), nil)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 removing role, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, http.MethodGet, rolesPath, nil)
	var roles []models.ElectionRole
	decodeBody(t, resp, &roles)
	if len(roles) != 0 {
		t.Fatalf("expected no roles left, got %d", len(roles))
	}
}

func TestGetClubElectionsDerivedStatus(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	s := &Server{db: db}

	president := createTestUser(t, db, "list_president", models.UserRoleStudent)
	club := createTestClub(t, db, "Listing Club", president)

	stale := models.Election{
		ClubID:          club.ID,
		Title:           "Old Election",
		StartDate:       time.Now().Add(-48 * time.Hour),
		EndDate:         time.Now().Add(-24 * time.Hour),
		Status:          models.ElectionStatusUpcoming,
		CreatedByUserID: president.ID,
	}
	if err := db.Create(&stale).Error; err != nil {
		t.Fatalf("create election: %v", err)
	}

	app := authedApp(president.ID)
	app.Get("/clubs/:id/elections", s.GetClubElections)

	resp := doJSON(t, app, http.MethodGet, fmt.Sprintf("/clubs/%d/elections", club.ID), nil)
	var elections []models.Election
	decodeBody(t, resp, &elections)
	if len(elections) != 1 {
		t.Fatalf("expected 1 election, got %d", len(elections))
	}
	if elections[0].Status != models.ElectionStatusCompleted {
		t.Fatalf("expected derived completed status, got %s", elections[0].Status)
	}
}
