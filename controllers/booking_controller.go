package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/helpx-community/helpx-gateway/models"
	"github.com/helpx-community/helpx-gateway/state"
)

// BookingController exposes booking listing, creation and transitions.
type BookingController struct {
	State *state.Manager
}

// NewBookingController creates a booking controller bound to the manager.
func NewBookingController(m *state.Manager) *BookingController {
	return &BookingController{State: m}
}

// CreateBookingRequest represents the request body for booking a service.
// Date and time arrive separately, like the old booking form sent them.
type CreateBookingRequest struct {
	Date          string `json:"date"`
	Time          string `json:"time"`
	DurationHours int    `json:"duration_hours"`
	Notes         string `json:"notes"`
}

// UpdateStatusRequest represents the request body for a status transition
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// List handles GET /api/v1/bookings - refreshes from the backend and
// returns the received/sent partition with per-booking action sets.
func (bc *BookingController) List(c *gin.Context) {
	if _, _, err := bc.State.LoadBookings(); err != nil {
		respondError(c, err)
		return
	}

	received, sent := bc.State.Bookings()
	respondOK(c, gin.H{
		"received": received,
		"sent":     sent,
	})
}

// Create handles POST /api/v1/bookings
func (bc *BookingController) Create(c *gin.Context) {
	var req CreateBookingRequest
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

	booking, err := bc.State.CreateBooking(req.Date, req.Time, req.DurationHours, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, gin.H{"booking": booking})
}

// UpdateStatus handles PATCH /api/v1/bookings/:id/status
func (bc *BookingController) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
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

	booking, err := bc.State.UpdateBookingStatus(id, models.BookingStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"booking": booking})
}

// parseID reads a positive integer URL parameter, writing the error
// response itself when the value is malformed.
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || value == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid id parameter",
			},
		})
		return 0, false
	}
	return uint(value), true
}
