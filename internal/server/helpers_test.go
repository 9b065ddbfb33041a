package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"clubhub/internal/featureflags"
	"clubhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

func TestHumanizeParam(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"roleId", "role ID"},
		{"appId", "app ID"},
		{"slug", "slug"},
	}
	for _, tc := range cases {
		if got := humanizeParam(tc.in); got != tc.want {
			t.Errorf("humanizeParam(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParsePagination(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = parsePagination(c, 20)
		return c.SendStatus(http.StatusOK)
	})

	cases := []struct {
		query string
		want  Pagination
	}{
		{"", Pagination{Limit: 20, Offset: 0}},
		{"?limit=5&offset=10", Pagination{Limit: 5, Offset: 10}},
		{"?limit=5000", Pagination{Limit: 100, Offset: 0}},
		{"?limit=-1&offset=-3", Pagination{Limit: 20, Offset: 0}},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+tc.query, nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		_ = resp.Body.Close()
		if got != tc.want {
			t.Errorf("query %q: got %+v, want %+v", tc.query, got, tc.want)
		}
	}
}

func TestParseIDWritesBadRequest(t *testing.T) {
	t.Parallel()

	s := &Server{}
	app := fiber.New()
	app.Get("/things/:userId", func(c *fiber.Ctx) error {
		if _, err := s.parseID(c, "userId"); err != nil {
			return nil
		}
		return c.SendStatus(http.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/things/banana", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestFeatureFlagGatesClubRequests(t *testing.T) {
	t.Parallel()

	db := setupHandlerTestDB(t)
	flags := featureflags.NewManager(featureflags.FlagClubRequests + "=off")
	s := &Server{db: db, featureFlags: flags}

	user := createTestUser(t, db, "flagged_user", models.UserRoleStudent)

	app := authedApp(user.ID)
	app.Post("/club-requests", s.CreateClubRequest)

	resp := doJSON(t, app, http.MethodPost, "/club-requests", map[string]string{
		"name":        "Blocked Club",
		"description": "should not pass",
		"category":    "social",
	})
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 with flag off, got %d", resp.StatusCode)
	}
}
