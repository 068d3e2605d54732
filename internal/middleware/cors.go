package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gatepass/backend/internal/config"
)

// CORSMiddleware admits the configured frontend origins. Origins come from a
// comma-split env var, so stray whitespace is trimmed here. An empty list
// falls back to allowing any origin without credentials, which suits local
// development against the kiosk and resident apps.
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	var origins []string
	for _, o := range cfg.Origins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	return cors.New(corsCfg)
}
