package handlers_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gabriel/starfield/internal/config"
	"github.com/gabriel/starfield/internal/database"
	apihttp "github.com/gabriel/starfield/internal/http"
	"github.com/gabriel/starfield/internal/notifications"
	"github.com/gofiber/fiber/v2"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []notifications.Message
	sent     chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sent: make(chan struct{}, 16)}
}

func (n *recordingNotifier) Notify(_ context.Context, message notifications.Message) error {
	n.mu.Lock()
	n.messages = append(n.messages, message)
	n.mu.Unlock()
	n.sent <- struct{}{}
	return nil
}

func (n *recordingNotifier) Messages() []notifications.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifications.Message(nil), n.messages...)
}

func setupTestApp(t *testing.T) (*sql.DB, *fiber.App, func()) {
	t.Helper()
	return setupTestAppWithDeps(t, apihttp.Deps{})
}

func setupTestAppWithDeps(t *testing.T, deps apihttp.Deps) (*sql.DB, *fiber.App, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.sqlite")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := database.ApplyMigrations(db, ""); err != nil {
		_ = db.Close()
		t.Fatalf("apply migrations: %v", err)
	}
	if err := database.SeedDefaults(db); err != nil {
		_ = db.Close()
		t.Fatalf("seed defaults: %v", err)
	}

	cfg := config.Config{AppName: "test-app"}
	app := apihttp.NewServerWithDeps(cfg, db, deps)

	cleanup := func() {
		_ = app.Shutdown()
		_ = db.Close()
	}

	return db, app, cleanup
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if len(raw) == 0 {
		return resp.StatusCode, nil
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode response %q: %v", string(raw), err)
	}
	return resp.StatusCode, payload
}

func doForm(t *testing.T, app *fiber.App, target, form string) (int, string, string) {
	t.Helper()

	req := httptest.NewRequest("POST", target, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("POST %s: %v", target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return resp.StatusCode, resp.Header.Get("Location"), string(raw)
}

func getPage(t *testing.T, app *fiber.App, target string) (int, string) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest("GET", target, nil), -1)
	if err != nil {
		t.Fatalf("GET %s: %v", target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return resp.StatusCode, string(raw)
}

func createEntry(t *testing.T, app *fiber.App, title string) int64 {
	t.Helper()

	status, payload := doJSON(t, app, "POST", "/v1/entries", `{"title":"`+title+`"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201 creating entry, got %d (%v)", status, payload)
	}
	return int64(payload["id"].(float64))
}

func toString(value int64) string {
	return strconv.FormatInt(value, 10)
}
