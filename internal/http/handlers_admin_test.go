package http

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"

	"fintrack/internal/auth"
	"fintrack/internal/config"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

func TestAdminGate(t *testing.T) {
	s := newTestServer(t)
	cookie, _ := signUp(t, s, "jordan", "jordan@example.com")

	rec, body := doRequest(t, s, http.MethodGet, "/api/v1/admin/users", nil, cookie)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin status = %d, want 403", rec.Code)
	}
	if body["message"] != "Access denied. Admins only." {
		t.Errorf("non-admin message = %v", body["message"])
	}

	rec, body = doRequest(t, s, http.MethodGet, "/api/v1/admin/users", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rec.Code)
	}
	if body["message"] != "Unauthorized No token provided" {
		t.Errorf("anonymous message = %v", body["message"])
	}
}

func TestAdminListUsers(t *testing.T) {
	s := newTestServer(t)
	_, adminID := signUp(t, s, "admin", "admin@example.com")
	admin := adminCookie(t, s, adminID)
	signUp(t, s, "jordan", "jordan@example.com")
	signUp(t, s, "casey", "casey@example.com")

	rec, body := doRequest(t, s, http.MethodGet, "/api/v1/admin/users", nil, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("list users status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body["message"] != "Users fetched successfully" {
		t.Errorf("list users message = %v", body["message"])
	}
	// No role given selects regular users only, so the admin is excluded.
	if body["numberOfUsers"] != 2.0 {
		t.Errorf("numberOfUsers = %v, want 2", body["numberOfUsers"])
	}

	rec, body = doRequest(t, s, http.MethodGet, "/api/v1/admin/users?role=admin", nil, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("list admins status = %d", rec.Code)
	}
	if body["numberOfUsers"] != 1.0 {
		t.Errorf("admin count = %v, want 1", body["numberOfUsers"])
	}

	rec, body = doRequest(t, s, http.MethodGet, "/api/v1/admin/users?page=9", nil, admin)
	if rec.Code != http.StatusNotFound {
		t.Errorf("overflow page status = %d, want 404", rec.Code)
	}
	if body["message"] != "No users found for this page" {
		t.Errorf("overflow message = %v", body["message"])
	}

	rec, body = doRequest(t, s, http.MethodGet, "/api/v1/admin/users?role=wizard", nil, admin)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad role status = %d, want 400", rec.Code)
	}
}

func TestAdminUserLifecycle(t *testing.T) {
	s := newTestServer(t)
	_, adminID := signUp(t, s, "admin", "admin@example.com")
	admin := adminCookie(t, s, adminID)
	_, userID := signUp(t, s, "jordan", "jordan@example.com")

	rec, body := doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/v1/admin/users/%d", userID), nil, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("get user status = %d", rec.Code)
	}
	if body["message"] != "User retrieved successfully" {
		t.Errorf("get user message = %v", body["message"])
	}

	rec, body = doRequest(t, s, http.MethodPut, fmt.Sprintf("/api/v1/admin/users/%d", userID), map[string]any{
		"username": "jordan-renamed",
		"email":    "jordan@example.com",
	}, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("update user status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body["user"].(map[string]any)["username"] != "jordan-renamed" {
		t.Errorf("updated user = %v", body["user"])
	}

	rec, body = doRequest(t, s, http.MethodPut, "/api/v1/admin/users/9999", map[string]any{
		"username": "ghost",
		"email":    "ghost@example.com",
	}, admin)
	if rec.Code != http.StatusNotFound {
		t.Errorf("update missing user status = %d, want 404", rec.Code)
	}
	if body["message"] != "The User don't exist " {
		t.Errorf("update missing user message = %q", body["message"])
	}

	rec, body = doRequest(t, s, http.MethodPut, fmt.Sprintf("/api/v1/admin/users/%d/role", userID), nil, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle role status = %d", rec.Code)
	}
	if body["user"].(map[string]any)["isAdmin"] != true {
		t.Errorf("toggled user = %v", body["user"])
	}

	rec, body = doRequest(t, s, http.MethodDelete, fmt.Sprintf("/api/v1/admin/users/%d", userID), nil, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete user status = %d", rec.Code)
	}
	if body["message"] != "The user deleted successfully" {
		t.Errorf("delete user message = %v", body["message"])
	}

	rec, body = doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/v1/admin/users/%d", userID), nil, admin)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get deleted user status = %d, want 404", rec.Code)
	}
	if body["message"] != "User not found" {
		t.Errorf("get deleted user message = %v", body["message"])
	}
}

func TestAdminSearchUsers(t *testing.T) {
	s := newTestServer(t)
	_, adminID := signUp(t, s, "admin", "admin@example.com")
	admin := adminCookie(t, s, adminID)
	signUp(t, s, "jordan", "jordan@example.com")

	rec, body := doRequest(t, s, http.MethodGet, "/api/v1/admin/users/search?role=wizard&q=a", nil, admin)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad role status = %d, want 400", rec.Code)
	}
	if body["message"] != "the role must be one of the following admin, user" {
		t.Errorf("bad role message = %q", body["message"])
	}

	rec, body = doRequest(t, s, http.MethodGet, "/api/v1/admin/users/search", nil, admin)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing q status = %d, want 400", rec.Code)
	}

	rec, body = doRequest(t, s, http.MethodGet, "/api/v1/admin/users/search?q=jordan", nil, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("search status = %d", rec.Code)
	}
	if body["numberOfUsers"] != 1.0 {
		t.Errorf("numberOfUsers = %v", body["numberOfUsers"])
	}

	rec, body = doRequest(t, s, http.MethodGet, "/api/v1/admin/users/search?q=nobody", nil, admin)
	if rec.Code != http.StatusNotFound {
		t.Errorf("no match status = %d, want 404", rec.Code)
	}
	if body["message"] != "your search term nobody doesn't exist in the users" {
		t.Errorf("no match message = %q", body["message"])
	}
}

func TestAdminStats(t *testing.T) {
	s := newTestServer(t)
	_, adminID := signUp(t, s, "admin", "admin@example.com")
	admin := adminCookie(t, s, adminID)
	cookie, _ := signUp(t, s, "jordan", "jordan@example.com")
	createExpense(t, s, cookie, expensePayload("groceries", 42.5))

	rec, body := doRequest(t, s, http.MethodGet, "/api/v1/admin/stats", nil, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body["totalUsers"] != 2.0 || body["totalAdmins"] != 1.0 {
		t.Errorf("user counts = %v/%v", body["totalUsers"], body["totalAdmins"])
	}
	if body["totalExpenses"] != 1.0 || body["totalAmountSpent"] != 42.5 {
		t.Errorf("expense counts = %v/%v", body["totalExpenses"], body["totalAmountSpent"])
	}
	categories := body["mostUsedCategories"].(map[string]any)
	if categories["Food"] != 1.0 {
		t.Errorf("mostUsedCategories = %v", categories)
	}
	if _, present := body["success"]; present {
		t.Error("stats payload should not carry an envelope")
	}
}

func TestAdminStatsAPIKey(t *testing.T) {
	dir := t.TempDir()
	repo, err := storage.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	cfg := &config.Config{
		Port:               "8081",
		Env:                "test",
		BaseURL:            "http://localhost:8081",
		JWTSecret:          "test-secret",
		APIKey:             "stats-key",
		ExportBackend:      "xlsx",
		ExportDir:          filepath.Join(dir, "exports"),
		RateLimitPerMinute: 100000,
	}
	exporter, err := export.NewXLSXWriter(cfg.ExportDir, cfg.BaseURL)
	if err != nil {
		t.Fatalf("create export writer: %v", err)
	}
	s := NewServer(cfg, repo, auth.NewTokenManager(cfg.JWTSecret), exporter, nil, log.New(log.DefaultConfig()))
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	_, adminID := signUp(t, s, "admin", "admin@example.com")
	admin := adminCookie(t, s, adminID)

	rec, body := doRequest(t, s, http.MethodGet, "/api/v1/admin/stats", nil, admin)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing key status = %d, want 401", rec.Code)
	}
	if body["message"] != "API key is required" {
		t.Errorf("missing key message = %v", body["message"])
	}

	rec, body = doRequest(t, s, http.MethodGet, "/api/v1/admin/stats?key=wrong", nil, admin)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong key status = %d, want 401", rec.Code)
	}
	if body["message"] != "Invalid API key" {
		t.Errorf("wrong key message = %v", body["message"])
	}

	rec, _ = doRequest(t, s, http.MethodGet, "/api/v1/admin/stats?key=stats-key", nil, admin)
	if rec.Code != http.StatusOK {
		t.Errorf("valid key status = %d, want 200", rec.Code)
	}
}
