package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/helpx-community/helpx-gateway/state"
)

// SessionController exposes authentication and the current-user view.
type SessionController struct {
	State *state.Manager
}

// NewSessionController creates a session controller bound to the manager.
func NewSessionController(m *state.Manager) *SessionController {
	return &SessionController{State: m}
}

// LoginRequest represents the request body for password login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents the request body for account creation
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// FirebaseLoginRequest represents the request body for federated login
type FirebaseLoginRequest struct {
	IDToken string `json:"id_token"`
}

// Login handles POST /api/v1/session/login
func (sc *SessionController) Login(c *gin.Context) {
	var req LoginRequest
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

	if err := sc.State.Login(req.Email, req.Password); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"session": sc.State.Session(),
		"user":    sc.State.CurrentUser(),
	})
}

// Register handles POST /api/v1/session/register
func (sc *SessionController) Register(c *gin.Context) {
	var req RegisterRequest
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

	if err := sc.State.Register(req.Name, req.Email, req.Password); err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, gin.H{
		"session": sc.State.Session(),
		"user":    sc.State.CurrentUser(),
	})
}

// FirebaseLogin handles POST /api/v1/session/firebase
func (sc *SessionController) FirebaseLogin(c *gin.Context) {
	var req FirebaseLoginRequest
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

	if err := sc.State.LoginWithFirebase(req.IDToken); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"session": sc.State.Session(),
		"user":    sc.State.CurrentUser(),
	})
}

// Logout handles DELETE /api/v1/session
func (sc *SessionController) Logout(c *gin.Context) {
	if err := sc.State.Logout(); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "You have been logged out"})
}

// Show handles GET /api/v1/session - reports whether a session is active
func (sc *SessionController) Show(c *gin.Context) {
	session := sc.State.Session()
	if session == nil {
		respondOK(c, gin.H{"authenticated": false})
		return
	}
	respondOK(c, gin.H{
		"authenticated": true,
		"user":          sc.State.CurrentUser(),
	})
}

// Profile handles GET /api/v1/profile - the current user's stats view,
// with the offered-services count refreshed from the backend.
func (sc *SessionController) Profile(c *gin.Context) {
	// A stale count is better than no profile, so a failed recount is
	// logged into the response rather than failing the request.
	refreshErr := sc.State.RefreshServicesOffered()

	payload := gin.H{"user": sc.State.CurrentUser()}
	if refreshErr != nil {
		payload["stale_stats"] = true
	}
	respondOK(c, payload)
}
