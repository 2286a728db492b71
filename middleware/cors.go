package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/helpx-community/helpx-gateway/config"
)

// CORS configures cross-origin access for the page the gateway serves.
// ALLOWED_ORIGINS=* keeps the permissive development behavior.
func CORS(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AddAllowMethods("PATCH", "DELETE")
	corsConfig.AddAllowHeaders("Authorization")

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}

	return cors.New(corsConfig)
}
