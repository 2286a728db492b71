package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/helpx-community/helpx-gateway/state"
)

// UserController exposes the community directory.
type UserController struct {
	State *state.Manager
}

// NewUserController creates a user controller bound to the manager.
func NewUserController(m *state.Manager) *UserController {
	return &UserController{State: m}
}

// List handles GET /api/v1/users - refreshes and returns the directory.
func (uc *UserController) List(c *gin.Context) {
	users, err := uc.State.LoadUsers()
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"users": users,
		"count": len(users),
	})
}
