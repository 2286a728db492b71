package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/helpx-community/helpx-gateway/config"
	"github.com/helpx-community/helpx-gateway/models"
	"github.com/helpx-community/helpx-gateway/services"
	"github.com/helpx-community/helpx-gateway/state"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeBackend is a stateful stand-in for the remote HelpX API, serving
// the same routes and response shapes the real backend does.
type fakeBackend struct {
	mu           sync.Mutex
	skills       []services.SkillPayload
	bookings     []services.BookingPayload
	nextID       uint
	rejectWrites bool
}

func newFakeBackend() (*fakeBackend, *httptest.Server) {
	backend := &fakeBackend{nextID: 100}
	mux := http.NewServeMux()

	auth := func(w http.ResponseWriter) {
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "T",
			"token_type":   "bearer",
			"user":         map[string]any{"id": 1, "name": "Ann", "email": "user@example.com"},
		})
	}
	mux.HandleFunc("POST /register", func(w http.ResponseWriter, r *http.Request) { auth(w) })
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) { auth(w) })

	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"count":   1,
			"users":   []map[string]any{{"id": 2, "name": "Bob", "email": "bob@example.com"}},
		})
	})

	mux.HandleFunc("GET /skills", func(w http.ResponseWriter, r *http.Request) {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		listed := backend.skills
		if userID := r.URL.Query().Get("user_id"); userID != "" {
			listed = nil
			for _, s := range backend.skills {
				if userID == "1" && s.UserID == 1 {
					listed = append(listed, s)
				}
			}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"count":   len(listed),
			"skills":  listed,
		})
	})

	mux.HandleFunc("POST /add-skill", func(w http.ResponseWriter, r *http.Request) {
		backend.mu.Lock()
		rejected := backend.rejectWrites
		backend.mu.Unlock()
		if rejected || r.Header.Get("Authorization") != "Bearer T" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"})
			return
		}
		backend.mu.Lock()
		backend.nextID++
		backend.skills = append(backend.skills, services.SkillPayload{
			ID:          backend.nextID,
			Skill:       r.URL.Query().Get("skill"),
			Description: r.URL.Query().Get("description"),
			UserID:      1,
			UserName:    "Ann",
		})
		backend.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	})

	mux.HandleFunc("GET /bookings", func(w http.ResponseWriter, r *http.Request) {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{
			"success":  true,
			"bookings": backend.bookings,
		})
	})

	mux.HandleFunc("POST /bookings", func(w http.ResponseWriter, r *http.Request) {
		var req services.BookingRequest
		json.NewDecoder(r.Body).Decode(&req)

		backend.mu.Lock()
		backend.nextID++
		booking := services.BookingPayload{
			ID:            backend.nextID,
			ProviderID:    req.ProviderID,
			CustomerID:    1,
			Status:        "pending",
			DateTime:      req.DateTime,
			DurationHours: req.DurationHours,
			Notes:         req.Notes,
		}
		backend.bookings = append(backend.bookings, booking)
		backend.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "booking": booking})
	})

	mux.HandleFunc("PATCH /bookings/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status string `json:"status"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		backend.mu.Lock()
		defer backend.mu.Unlock()
		for i := range backend.bookings {
			if r.PathValue("id") == formatID(backend.bookings[i].ID) {
				backend.bookings[i].Status = req.Status
				json.NewEncoder(w).Encode(map[string]any{"success": true, "booking": backend.bookings[i]})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Booking not found"})
	})

	return backend, httptest.NewServer(mux)
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// newTestGateway builds the full gateway wired to the fake backend, with
// an in-memory local store.
func newTestGateway(t *testing.T, backendURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		APIBaseURL:     backendURL,
		Port:           "8080",
		GoEnv:          "test",
		SessionDB:      ":memory:",
		AllowedOrigins: []string{"*"},
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Session{}, &models.Message{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	api := services.NewAPIClient(cfg)
	manager := state.NewManager(api, services.NewGormSessionStore(db))
	return setupRouter(cfg, manager, services.NewGormMessageStore(db))
}

func request(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	return body
}

func TestHealthCheck(t *testing.T) {
	_, server := newFakeBackend()
	defer server.Close()
	router := newTestGateway(t, server.URL)

	w := request(router, "GET", "/api/v1/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "HelpX gateway is running", body["message"])
}

func TestGateway_FullMarketplaceFlow(t *testing.T) {
	backend, server := newFakeBackend()
	defer server.Close()
	backend.skills = []services.SkillPayload{
		{ID: 9, Skill: "Gardening", Description: "Garden care", UserID: 5, UserName: "Levi"},
	}
	router := newTestGateway(t, server.URL)

	// Anonymous browsing works
	w := request(router, "GET", "/api/v1/services", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Protected endpoints are closed
	w = request(router, "GET", "/api/v1/bookings", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Login
	w = request(router, "POST", "/api/v1/session/login", gin.H{
		"email":    "user@example.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Post a service
	w = request(router, "POST", "/api/v1/services", gin.H{
		"title":       "Dog Walking",
		"description": "Daily walks",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	// The list now holds both services
	w = request(router, "GET", "/api/v1/services", nil)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])

	// Select Levi's service and book it
	w = request(router, "POST", "/api/v1/services/9/select", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(router, "POST", "/api/v1/bookings", gin.H{
		"date":           "2026-09-12",
		"time":           "09:00",
		"duration_hours": 2,
		"notes":          "please bring tools",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	data = decode(t, w)["data"].(map[string]interface{})
	booking := data["booking"].(map[string]interface{})
	bookingID := booking["id"].(float64)
	assert.Equal(t, "pending", booking["status"])

	// Ann sent the booking, so it lands in the sent partition
	w = request(router, "GET", "/api/v1/bookings", nil)
	data = decode(t, w)["data"].(map[string]interface{})
	sent := data["sent"].([]interface{})
	assert.Len(t, sent, 1)
	assert.Len(t, data["received"].([]interface{}), 0)

	// The provider side accepts it (same backend record, so the gateway
	// only relays the transition)
	path := "/api/v1/bookings/" + formatID(uint(bookingID)) + "/status"
	w = request(router, "PATCH", path, gin.H{"status": "accepted"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(router, "GET", "/api/v1/bookings", nil)
	data = decode(t, w)["data"].(map[string]interface{})
	sent = data["sent"].([]interface{})
	assert.Equal(t, "accepted", sent[0].(map[string]interface{})["status"])

	// Logout closes the protected surface again
	w = request(router, "DELETE", "/api/v1/session", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = request(router, "GET", "/api/v1/bookings", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGateway_ExpiredTokenForcesLogout(t *testing.T) {
	backend, server := newFakeBackend()
	defer server.Close()
	router := newTestGateway(t, server.URL)

	w := request(router, "POST", "/api/v1/session/login", gin.H{
		"email":    "user@example.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// The token expires server-side: the next protected write comes back
	// 401 and the gateway must drop the session entirely.
	backend.mu.Lock()
	backend.rejectWrites = true
	backend.mu.Unlock()

	w = request(router, "POST", "/api/v1/services", gin.H{
		"title":       "Dog Walking",
		"description": "Daily walks",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	errObj := decode(t, w)["error"].(map[string]interface{})
	assert.Equal(t, "SESSION_EXPIRED", errObj["code"])

	// The session is gone
	w = request(router, "GET", "/api/v1/session", nil)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, false, data["authenticated"])
}

func TestGateway_BackendDown(t *testing.T) {
	router := newTestGateway(t, "http://localhost:1")

	w := request(router, "POST", "/api/v1/session/login", gin.H{
		"email":    "user@example.com",
		"password": "secret1",
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	errObj := decode(t, w)["error"].(map[string]interface{})
	assert.Equal(t, "BACKEND_UNREACHABLE", errObj["code"])
}
