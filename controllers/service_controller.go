package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/helpx-community/helpx-gateway/state"
)

// ServiceController exposes the service list and service creation.
type ServiceController struct {
	State *state.Manager
}

// NewServiceController creates a service controller bound to the manager.
func NewServiceController(m *state.Manager) *ServiceController {
	return &ServiceController{State: m}
}

// PostServiceRequest represents the request body for posting a service
type PostServiceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// List handles GET /api/v1/services - refreshes the cache from the
// backend and returns it filtered by optional search and category.
func (sc *ServiceController) List(c *gin.Context) {
	if _, err := sc.State.LoadServices(); err != nil {
		respondError(c, err)
		return
	}

	filtered := sc.State.Services(c.Query("search"), c.Query("category"))
	respondOK(c, gin.H{
		"services": filtered,
		"count":    len(filtered),
	})
}

// Create handles POST /api/v1/services
func (sc *ServiceController) Create(c *gin.Context) {
	var req PostServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if err := sc.State.PostService(req.Title, req.Description); err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, gin.H{"message": "Service posted successfully!"})
}

// Select handles POST /api/v1/services/:id/select - marks a service as
// the target for the next booking request.
func (sc *ServiceController) Select(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := sc.State.SelectService(id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"service": sc.State.SelectedService()})
}
