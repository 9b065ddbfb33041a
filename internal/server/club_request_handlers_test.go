package server

import (
	"fmt"
	"net/http"
	"testing"

	"clubhub/internal/models"
)

func TestClubRequestApprovalRoundTrip(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	s := &Server{db: db}

	requester := createTestUser(t, db, "founder", models.UserRoleStudent)
	admin := createTestUser(t, db, "req_admin", models.UserRoleAdmin)

	studentApp := authedApp(requester.ID)
	studentApp.Post("/club-requests", s.CreateClubRequest)

	payload := map[string]string{
		"name":        "Chess Club",
		"description": "Weekly games and tournaments",
		"category":    "academic",
	}
	resp := doJSON(t, studentApp, http.MethodPost, "/club-requests", payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var request models.ClubRequest
	decodeBody(t, resp, &request)
	if request.Status != models.ClubRequestStatusPending {
		t.Fatalf("expected pending, got %s", request.Status)
	}

	// Same name pending again conflicts.
	resp = doJSON(t, studentApp, http.MethodPost, "/club-requests", payload)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate name, got %d", resp.StatusCode)
	}

	adminApp := authedApp(admin.ID)
	adminApp.Post("/admin/club-requests/:id/process", s.ProcessClubRequest)

	processPath := fmt.Sprintf("/admin/club-requests/%d/process", request.ID)
	resp = doJSON(t, adminApp, http.MethodPost, processPath,
		map[string]string{"decision": "approved", "feedback": "welcome"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on approval, got %d", resp.StatusCode)
	}
	decodeBody(t, resp, &request)
	if request.Status != models.ClubRequestStatusApproved {
		t.Fatalf("expected approved, got %s", request.Status)
	}
	if request.ReviewedByUserID == nil || *request.ReviewedByUserID != admin.ID {
		t.Fatalf("expected reviewer %d", admin.ID)
	}

	var club models.Club
	if err := db.Where("name = ?", "Chess Club").First(&club).Error; err != nil {
		t.Fatalf("club missing after approval: %v", err)
	}

	var membership models.Membership
	if err := db.Where("club_id = ? AND user_id = ?", club.ID, requester.ID).
		First(&membership).Error; err != nil {
		t.Fatalf("founding membership missing: %v", err)
	}
	if membership.Role != models.MembershipRolePresident || membership.Status != models.MembershipStatusApproved {
		t.Fatalf("expected approved presidency, got %s/%s", membership.Role, membership.Status)
	}

	var founder models.User
	if err := db.First(&founder, requester.ID).Error; err != nil {
		t.Fatalf("reload founder: %v", err)
	}
	if founder.Role != models.UserRoleClubPresident {
		t.Fatalf("expected club_president projection, got %s", founder.Role)
	}

	// Terminal states reject reprocessing.
	resp = doJSON(t, adminApp, http.MethodPost, processPath,
		map[string]string{"decision": "rejected"})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on reprocess, got %d", resp.StatusCode)
	}

	// A new request for the now-existing club name conflicts too.
	resp = doJSON(t, studentApp, http.MethodPost, "/club-requests", payload)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 against existing club, got %d", resp.StatusCode)
	}
}

func TestProcessClubRequestRejection(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	s := &Server{db: db}

	requester := createTestUser(t, db, "rejected_founder", models.UserRoleStudent)
	admin := createTestUser(t, db, "rej_admin", models.UserRoleAdmin)

	request := models.ClubRequest{
		Name:              "Juggling Society",
		Description:       "Clubs, balls, rings",
		Category:          "arts",
		RequestedByUserID: requester.ID,
		Status:            models.ClubRequestStatusPending,
	}
	if err := db.Create(&request).Error; err != nil {
		t.Fatalf("create request: %v", err)
	}

	app := authedApp(admin.ID)
	app.Post("/admin/club-requests/:id/process", s.ProcessClubRequest)

	resp := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/admin/club-requests/%d/process", request.ID),
		map[string]string{"decision": "rejected", "feedback": "needs a faculty sponsor"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var processed models.ClubRequest
	decodeBody(t, resp, &processed)
	if processed.Status != models.ClubRequestStatusRejected {
		t.Fatalf("expected rejected, got %s", processed.Status)
	}
	if processed.AdminFeedback != "needs a faculty sponsor" {
		t.Fatalf("feedback not recorded: %q", processed.AdminFeedback)
	}

	// Rejection creates nothing.
	var clubCount int64
	if err := db.Model(&models.Club{}).Count(&clubCount).Error; err != nil {
		t.Fatalf("count clubs: %v", err)
	}
	if clubCount != 0 {
		t.Fatalf("expected no clubs, found %d", clubCount)
	}

	var requesterReloaded models.User
	if err := db.First(&requesterReloaded, requester.ID).Error; err != nil {
		t.Fatalf("reload requester: %v", err)
	}
	if requesterReloaded.Role != models.UserRoleStudent {
		t.Fatalf("expected student role unchanged, got %s", requesterReloaded.Role)
	}
}

func TestProcessClubRequestInvalidDecision(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	s := &Server{db: db}
	admin := createTestUser(t, db, "decision_admin", models.UserRoleAdmin)

	app := authedApp(admin.ID)
	app.Post("/admin/club-requests/:id/process", s.ProcessClubRequest)

	resp := doJSON(t, app, http.MethodPost, "/admin/club-requests/1/process",
		map[string]string{"decision": "maybe"})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUpdateClubRequestRules(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	s := &Server{db: db}

	owner := createTestUser(t, db, "edit_owner", models.UserRoleStudent)
	other := createTestUser(t, db, "edit_other", models.UserRoleStudent)

	request := models.ClubRequest{
		Name:              "Astronomy Club",
		Description:       "Stargazing nights",
		Category:          "academic",
		RequestedByUserID: owner.ID,
		Status:            models.ClubRequestStatusPending,
	}
	if err := db.Create(&request).Error; err != nil {
		t.Fatalf("create request: %v", err)
	}

	path := fmt.Sprintf("/club-requests/%d", request.ID)

	otherApp := authedApp(other.ID)
	otherApp.Put("/club-requests/:id", s.UpdateClubRequest)
	resp := doJSON(t, otherApp, http.MethodPut, path, map[string]string{"description": "hijacked"})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner edit, got %d", resp.StatusCode)
	}

	ownerApp := authedApp(owner.ID)
	ownerApp.Put("/club-requests/:id", s.UpdateClubRequest)
	resp = doJSON(t, ownerApp, http.MethodPut, path, map[string]string{"description": "Stargazing and telescope workshops"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for owner edit, got %d", resp.StatusCode)
	}
	var updated models.ClubRequest
	decodeBody(t, resp, &updated)
	if updated.Description != "Stargazing and telescope workshops" {
		t.Fatalf("description not updated: %q", updated.Description)
	}

	// Once processed the request is frozen.
	if err := db.Model(&models.ClubRequest{}).Where("id = ?", request.ID).
		Update("status", models.ClubRequestStatusRejected).Error; err != nil {
		t.Fatalf("mark rejected: %v", err)
	}
	resp = doJSON(t, ownerApp, http.MethodPut, path, map[string]string{"description": "try again"})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 editing terminal request, got %d", resp.StatusCode)
	}
}

func TestDeleteClubRequestRules(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	s := &Server{db: db}

	owner := createTestUser(t, db, "del_owner", models.UserRoleStudent)
	admin := createTestUser(t, db, "del_admin", models.UserRoleAdmin)

	pending := models.ClubRequest{
		Name: "Pending Club", Description: "d", Category: "social",
		RequestedByUserID: owner.ID, Status: models.ClubRequestStatusPending,
	}
	processed := models.ClubRequest{
		Name: "Processed Club", Description: "d", Category: "social",
		RequestedByUserID: owner.ID, Status: models.ClubRequestStatusRejected,
	}
	if err := db.Create(&pending).Error; err != nil {
		t.Fatalf("create pending: %v", err)
	}
	if err := db.Create(&processed).Error; err != nil {
		t.Fatalf("create processed: %v", err)
	}

	ownerApp := authedApp(owner.ID)
	ownerApp.Delete("/club-requests/:id", s.DeleteClubRequest)

	resp := doJSON(t, ownerApp, http.MethodDelete, fmt.Sprintf("/club-requests/%d", pending.ID), nil)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 withdrawing pending, got %d", resp.StatusCode)
	}

	resp = doJSON(t, ownerApp, http.MethodDelete, fmt.Sprintf("/club-requests/%d", processed.ID), nil)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 withdrawing processed, got %d", resp.StatusCode)
	}

	adminApp := authedApp(admin.ID)
	adminApp.Delete("/club-requests/:id", s.DeleteClubRequest)
	resp = doJSON(t, adminApp, http.MethodDelete, fmt.Sprintf("/club-requests/%d", processed.ID), nil)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for admin delete, got %d", resp.StatusCode)
	}
}

func TestGetAdminClubRequestsStatusFilter(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	s := &Server{db: db}

	owner := createTestUser(t, db, "filter_owner", models.UserRoleStudent)
	admin := createTestUser(t, db, "filter_admin", models.UserRoleAdmin)

	for i, status := range []models.ClubRequestStatus{
		models.ClubRequestStatusPending,
		models.ClubRequestStatusApproved,
		models.ClubRequestStatusRejected,
	} {
		req := models.ClubRequest{
			Name:              fmt.Sprintf("Filter Club %d", i),
			Description:       "d",
			Category:          "social",
			RequestedByUserID: owner.ID,
			Status:            status,
		}
		if err := db.Create(&req).Error; err != nil {
			t.Fatalf("create request: %v", err)
		}
	}

	app := authedApp(admin.ID)
	app.Get("/admin/club-requests", s.GetAdminClubRequests)

	var requests []models.ClubRequest

	// Defaults to the pending queue.
	resp := doJSON(t, app, http.MethodGet, "/admin/club-requests", nil)
	decodeBody(t, resp, &requests)
	if len(requests) != 1 || requests[0].Status != models.ClubRequestStatusPending {
		t.Fatalf("expected one pending request, got %+v", requests)
	}

	resp = doJSON(t, app, http.MethodGet, "/admin/club-requests?status=all", nil)
	decodeBody(t, resp, &requests)
	if len(requests) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(requests))
	}

	resp = doJSON(t, app, http.MethodGet, "/admin/club-requests?status=bogus", nil)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad status, got %d", resp.StatusCode)
	}
}
