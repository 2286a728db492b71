package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/helpx-community/helpx-gateway/config"
	"github.com/helpx-community/helpx-gateway/controllers"
	"github.com/helpx-community/helpx-gateway/middleware"
	"github.com/helpx-community/helpx-gateway/models"
	"github.com/helpx-community/helpx-gateway/services"
	"github.com/helpx-community/helpx-gateway/state"
)

func main() {
	// Basic logging
	log.Println("Starting HelpX gateway...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to the local session/message store
	if err := config.ConnectDatabase(cfg); err != nil {
		log.Fatalf("Failed to connect to session store: %v", err)
	}

	// Auto-migrate local store models
	db := config.GetDB()
	if err := db.AutoMigrate(&models.Session{}, &models.Message{}); err != nil {
		log.Fatalf("Failed to migrate session store: %v", err)
	}
	log.Println("Session store migration completed successfully")

	// Wire the remote API client and the session manager
	api := services.NewAPIClient(cfg)
	manager := state.NewManager(api, services.NewGormSessionStore(db))

	// Restore a persisted session, if one survives from a previous run
	restored, err := manager.Restore()
	if err != nil {
		log.Printf("Failed to restore persisted session: %v", err)
	} else if restored {
		log.Printf("Restored session for %s", manager.CurrentUser().Email)
	} else {
		log.Println("No persisted session; starting unauthenticated")
	}

	// Build the router and start serving
	router := setupRouter(cfg, manager, services.NewGormMessageStore(db))

	addr := ":" + cfg.Port
	log.Printf("Gateway is running on http://localhost%s (backend: %s)", addr, cfg.APIBaseURL)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the gin engine with all gateway routes registered.
func setupRouter(cfg *config.Config, manager *state.Manager, messages services.MessageStore) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.CORS(cfg))

	sessions := controllers.NewSessionController(manager)
	users := controllers.NewUserController(manager)
	svcs := controllers.NewServiceController(manager)
	bookings := controllers.NewBookingController(manager)
	msgs := controllers.NewMessageController(manager, messages)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)

		v1.POST("/session/register", sessions.Register)
		v1.POST("/session/login", sessions.Login)
		v1.POST("/session/firebase", sessions.FirebaseLogin)
		v1.GET("/session", sessions.Show)
		v1.DELETE("/session", sessions.Logout)

		v1.GET("/users", users.List)
		v1.GET("/services", svcs.List)

		protected := v1.Group("")
		protected.Use(middleware.RequireSession(manager))
		{
			protected.GET("/profile", sessions.Profile)
			protected.POST("/services", svcs.Create)
			protected.POST("/services/:id/select", svcs.Select)
			protected.GET("/bookings", bookings.List)
			protected.POST("/bookings", bookings.Create)
			protected.PATCH("/bookings/:id/status", bookings.UpdateStatus)
			protected.GET("/messages/:contact", msgs.List)
			protected.POST("/messages/:contact", msgs.Send)
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "HelpX gateway is running",
	})
}
