package handlers_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestFieldsCreateValidatesMaxStars(t *testing.T) {
	_, app, cleanup := setupTestApp(t)
	defer cleanup()

	status, payload := doJSON(t, app, "POST", "/v1/fields", `{"handle":"quality","name":"Quality","maxStars":4}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%v)", status, payload)
	}
	errors, ok := payload["errors"].(map[string]any)
	if !ok {
		t.Fatalf("expected field errors, got %v", payload)
	}
	if errors["maxStars"] != "must be one of: 1, 3, 5, 10" {
		t.Fatalf("unexpected maxStars message: %v", errors["maxStars"])
	}
}

func TestFieldsCreateDefaultsAndConflicts(t *testing.T) {
	_, app, cleanup := setupTestApp(t)
	defer cleanup()

	status, payload := doJSON(t, app, "POST", "/v1/fields", `{"handle":"quality"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", status, payload)
	}
	if payload["maxStars"] != float64(5) {
		t.Fatalf("expected default of 5 stars, got %v", payload["maxStars"])
	}
	if payload["name"] != "quality" {
		t.Fatalf("expected name to default to handle, got %v", payload["name"])
	}

	status, _ = doJSON(t, app, "POST", "/v1/fields", `{"handle":"quality","maxStars":3}`)
	if status != fiber.StatusConflict {
		t.Fatalf("expected 409 for duplicate handle, got %d", status)
	}
}

func TestFieldsRejectBadHandle(t *testing.T) {
	_, app, cleanup := setupTestApp(t)
	defer cleanup()

	status, payload := doJSON(t, app, "POST", "/v1/fields", `{"handle":"9lives","maxStars":5}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if _, ok := payload["errors"].(map[string]any)["handle"]; !ok {
		t.Fatalf("expected handle error, got %v", payload)
	}
}

func TestFieldsUpdateShrinksStoredRatingsOnRead(t *testing.T) {
	_, app, cleanup := setupTestApp(t)
	defer cleanup()

	status, _ := doJSON(t, app, "PUT", "/v1/fields/rating", `{"name":"Rating","maxStars":10}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 widening field, got %d", status)
	}

	id := createEntry(t, app, "Dune")
	_, payload := doJSON(t, app, "PUT", "/v1/entries/"+toString(id)+"/ratings/rating", `{"value":8}`)
	if payload["ratings"].(map[string]any)["rating"] != float64(8) {
		t.Fatalf("expected 8 on a 10-star field, got %v", payload["ratings"])
	}

	status, _ = doJSON(t, app, "PUT", "/v1/fields/rating", `{"name":"Rating","maxStars":5}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200 shrinking field, got %d", status)
	}

	_, payload = doJSON(t, app, "GET", "/v1/entries/"+toString(id), "")
	if payload["ratings"].(map[string]any)["rating"] != float64(5) {
		t.Fatalf("expected stored 8 to read back as 5, got %v", payload["ratings"])
	}
}

func searchHits(t *testing.T, app *fiber.App, query string) int {
	t.Helper()

	status, payload := doJSON(t, app, "GET", "/v1/search?q="+query, "")
	if status != fiber.StatusOK {
		t.Fatalf("q=%s: expected 200, got %d", query, status)
	}
	return len(payload["items"].([]any))
}

func TestFieldChangesReindexSearch(t *testing.T) {
	_, app, cleanup := setupTestApp(t)
	defer cleanup()

	if status, _ := doJSON(t, app, "PUT", "/v1/fields/rating", `{"name":"Rating","maxStars":10}`); status != fiber.StatusOK {
		t.Fatalf("expected 200 widening field, got %d", status)
	}
	id := createEntry(t, app, "Dune")
	if status, _ := doJSON(t, app, "PUT", "/v1/entries/"+toString(id)+"/ratings/rating", `{"value":8}`); status != fiber.StatusOK {
		t.Fatalf("expected 200 setting rating, got %d", status)
	}
	if hits := searchHits(t, app, "rating:8"); hits != 1 {
		t.Fatalf("expected rating:8 to match before shrinking, got %d", hits)
	}

	if status, _ := doJSON(t, app, "PUT", "/v1/fields/rating", `{"name":"Rating","maxStars":5}`); status != fiber.StatusOK {
		t.Fatalf("expected 200 shrinking field, got %d", status)
	}
	if hits := searchHits(t, app, "rating:8"); hits != 0 {
		t.Fatalf("expected rating:8 to stop matching after shrink, got %d", hits)
	}
	if hits := searchHits(t, app, "rating:5"); hits != 1 {
		t.Fatalf("expected clamped rating:5 to match after shrink, got %d", hits)
	}

	if status, _ := doJSON(t, app, "DELETE", "/v1/fields/rating", ""); status != fiber.StatusNoContent {
		t.Fatalf("expected 204 deleting field, got %d", status)
	}
	if hits := searchHits(t, app, "rating:5"); hits != 0 {
		t.Fatalf("expected deleted field to leave the index, got %d", hits)
	}
	if hits := searchHits(t, app, "dune"); hits != 1 {
		t.Fatalf("expected entry to stay searchable by title, got %d", hits)
	}
}

func TestFieldsGetUpdateDeleteMissing(t *testing.T) {
	_, app, cleanup := setupTestApp(t)
	defer cleanup()

	if status, _ := doJSON(t, app, "GET", "/v1/fields/missing", ""); status != fiber.StatusNotFound {
		t.Fatalf("expected 404 get, got %d", status)
	}
	if status, _ := doJSON(t, app, "PUT", "/v1/fields/missing", `{"maxStars":3}`); status != fiber.StatusNotFound {
		t.Fatalf("expected 404 update, got %d", status)
	}
	if status, _ := doJSON(t, app, "DELETE", "/v1/fields/missing", ""); status != fiber.StatusNotFound {
		t.Fatalf("expected 404 delete, got %d", status)
	}
}

func TestFieldsOptions(t *testing.T) {
	_, app, cleanup := setupTestApp(t)
	defer cleanup()

	status, payload := doJSON(t, app, "GET", "/v1/fields/options", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	items := payload["items"].([]any)
	labels := make([]string, 0, len(items))
	for _, item := range items {
		labels = append(labels, item.(map[string]any)["label"].(string))
	}
	want := []string{"1 star", "3 stars", "5 stars", "10 stars"}
	if len(labels) != len(want) {
		t.Fatalf("expected %v, got %v", want, labels)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, labels)
		}
	}
}
