package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/helpx-community/helpx-gateway/middleware"
	"github.com/helpx-community/helpx-gateway/services"
	"github.com/helpx-community/helpx-gateway/state"
	"github.com/stretchr/testify/assert"
)

func serviceRouter(manager *state.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	controller := NewServiceController(manager)
	router.GET("/api/v1/services", controller.List)

	protected := router.Group("/api/v1", middleware.RequireSession(manager))
	protected.POST("/services", controller.Create)
	protected.POST("/services/:id/select", controller.Select)
	return router
}

func loginAnn(t *testing.T, manager *state.Manager, api *services.MockHelpXAPI) {
	t.Helper()
	scriptedAuth(api)
	if err := manager.Login("user@example.com", "secret1"); err != nil {
		t.Fatalf("Failed to login test user: %v", err)
	}
}

func TestServiceList(t *testing.T) {
	manager, api, _ := newTestState()
	api.Skills = []services.SkillPayload{
		{ID: 1, Skill: "Gardening", Description: "Garden care", UserID: 7, UserName: "Levi"},
		{ID: 2, Skill: "Math Tutoring", Category: "education", UserID: 8, UserName: "Ida"},
	}
	router := serviceRouter(manager)

	w := performJSON(router, "GET", "/api/v1/services", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])

	listed := data["services"].([]interface{})
	first := listed[0].(map[string]interface{})
	assert.Equal(t, "Gardening", first["title"])
	assert.Equal(t, "tech", first["category"], "missing category falls back to the default")

	second := listed[1].(map[string]interface{})
	assert.Equal(t, "education", second["category"])
}

func TestServiceList_SearchAndCategory(t *testing.T) {
	manager, api, _ := newTestState()
	api.Skills = []services.SkillPayload{
		{ID: 1, Skill: "Gardening", UserID: 7, UserName: "Levi"},
		{ID: 2, Skill: "Math Tutoring", Category: "education", UserID: 8, UserName: "Ida"},
	}
	router := serviceRouter(manager)

	w := performJSON(router, "GET", "/api/v1/services?search=garden", nil)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])

	w = performJSON(router, "GET", "/api/v1/services?category=education", nil)
	data = decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])

	w = performJSON(router, "GET", "/api/v1/services?search=garden&category=education", nil)
	data = decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["count"])
}

func TestServiceList_BackendDown(t *testing.T) {
	manager, api, _ := newTestState()
	api.SkillsErr = assertTransportErr{}
	router := serviceRouter(manager)

	w := performJSON(router, "GET", "/api/v1/services", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "BACKEND_UNREACHABLE", errorCode(decodeBody(t, w)))
}

func TestServiceCreate_RequiresSession(t *testing.T) {
	manager, api, _ := newTestState()
	router := serviceRouter(manager)

	w := performJSON(router, "POST", "/api/v1/services", gin.H{
		"title":       "Dog Walking",
		"description": "Daily walks",
	})

	// Rejected by the middleware, never reaching the backend
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "NOT_AUTHENTICATED", errorCode(decodeBody(t, w)))
	assert.Zero(t, api.AddSkillCalls)
}

func TestServiceCreate_Success(t *testing.T) {
	manager, api, _ := newTestState()
	loginAnn(t, manager, api)
	router := serviceRouter(manager)

	w := performJSON(router, "POST", "/api/v1/services", gin.H{
		"title":       "Dog Walking",
		"description": "Daily walks",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, api.AddSkillCalls)
	assert.Equal(t, "T", api.LastToken)
}

func TestServiceCreate_ExpiredSession(t *testing.T) {
	manager, api, store := newTestState()
	loginAnn(t, manager, api)
	router := serviceRouter(manager)

	api.AddSkillErr = services.UnauthorizedError()
	w := performJSON(router, "POST", "/api/v1/services", gin.H{
		"title":       "Dog Walking",
		"description": "Daily walks",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "SESSION_EXPIRED", errorCode(decodeBody(t, w)))

	// The session is gone, in memory and on disk
	assert.False(t, manager.Authenticated())
	assert.Nil(t, store.Stored())
}

func TestServiceSelect(t *testing.T) {
	manager, api, _ := newTestState()
	loginAnn(t, manager, api)
	api.Skills = []services.SkillPayload{{ID: 9, Skill: "Gardening", UserID: 5, UserName: "Levi"}}
	router := serviceRouter(manager)

	// Load the list first so there is something to select
	performJSON(router, "GET", "/api/v1/services", nil)

	w := performJSON(router, "POST", "/api/v1/services/9/select", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	selected := data["service"].(map[string]interface{})
	assert.Equal(t, "Gardening", selected["title"])
}

func TestServiceSelect_NotFound(t *testing.T) {
	manager, api, _ := newTestState()
	loginAnn(t, manager, api)
	router := serviceRouter(manager)

	w := performJSON(router, "POST", "/api/v1/services/99/select", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SERVICE_NOT_FOUND", errorCode(decodeBody(t, w)))
}

func TestServiceSelect_BadID(t *testing.T) {
	manager, api, _ := newTestState()
	loginAnn(t, manager, api)
	router := serviceRouter(manager)

	tests := []struct {
		name string
		path string
	}{
		{name: "Non-numeric id", path: "/api/v1/services/abc/select"},
		{name: "Zero id", path: "/api/v1/services/0/select"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(router, "POST", tt.path, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_REQUEST", errorCode(decodeBody(t, w)))
		})
	}
}
