package calculator

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"usercalc/internal/models"
	"usercalc/internal/storage"
)

// newTestApp wires the calculator routes behind a stub middleware that
// injects the given user id, standing in for the real JWT middleware.
func newTestApp(t *testing.T, userID int64) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if userID != 0 {
		u := models.User{Name: "Test", Email: "test@example.com", Age: 30}
		if err := db.Create(&u).Error; err != nil {
			t.Fatalf("failed to insert user: %v", err)
		}
		userID = u.ID
	}

	h := NewHandler(db, zap.NewNop())
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID != 0 {
			c.Locals("user_id", userID)
		}
		return c.Next()
	})
	app.Post("/api/calculate", h.Calculate)
	app.Post("/api/evaluate", h.Evaluate)
	app.Get("/api/history", h.History)
	return app, db
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestCalculateSavesHistory(t *testing.T) {
	app, db := newTestApp(t, 1)

	resp := postJSON(t, app, "/api/calculate", `{"operation":"multiply","a":3,"b":4}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body resultResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Result != "12" {
		t.Fatalf("expected result 12, got %q", body.Result)
	}

	var count int64
	if err := db.Model(&models.Calculation{}).Where("expression = ?", "3 * 4").Count(&count).Error; err != nil {
		t.Fatalf("failed to count calculations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 calculation saved, got %d", count)
	}
}

func TestCalculateDivideByZero(t *testing.T) {
	app, db := newTestApp(t, 1)

	resp := postJSON(t, app, "/api/calculate", `{"operation":"divide","a":5,"b":0}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for divide by zero, got %d", resp.StatusCode)
	}

	// Failed operations are not recorded.
	var count int64
	if err := db.Model(&models.Calculation{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count calculations: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no calculations saved, got %d", count)
	}
}

func TestEvaluateExpression(t *testing.T) {
	app, _ := newTestApp(t, 1)

	resp := postJSON(t, app, "/api/evaluate", `{"expression":"2+3*4"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body resultResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Result != "14" {
		t.Fatalf("expected result 14, got %q", body.Result)
	}
}

func TestEvaluateInvalidExpression(t *testing.T) {
	app, _ := newTestApp(t, 1)

	resp := postJSON(t, app, "/api/evaluate", `{"expression":"2++2"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid expression, got %d", resp.StatusCode)
	}
}

func TestUnauthenticatedRequests(t *testing.T) {
	app, _ := newTestApp(t, 0)

	resp := postJSON(t, app, "/api/calculate", `{"operation":"add","a":1,"b":2}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user in context, got %d", resp.StatusCode)
	}
}

func TestHistoryOrderAndLimit(t *testing.T) {
	app, _ := newTestApp(t, 1)

	for _, body := range []string{
		`{"operation":"add","a":1,"b":1}`,
		`{"operation":"add","a":2,"b":2}`,
		`{"operation":"add","a":3,"b":3}`,
	} {
		resp := postJSON(t, app, "/api/calculate", body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/history?limit=2", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var rows []models.Calculation
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// Newest first.
	if rows[0].Result != "6" {
		t.Fatalf("expected newest result 6 first, got %q", rows[0].Result)
	}
	if rows[0].PublicID == "" {
		t.Fatal("expected public id on history rows")
	}
}
