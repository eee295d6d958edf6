package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/proveit-app/proveit/app/cfg"
)

// NewServer creates the HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	// Reading analytics and portability endpoints (optionally authenticated)
	api := r.Group("/api")
	if apiAccessKey != "" {
		api.Use(authMiddleware(apiAccessKey))
		slog.Info("API authentication enabled")
	} else {
		slog.Warn("API authentication disabled (API_ACCESS_KEY not set)")
	}
	{
		api.POST("/track", handler.PostTrack)
		api.GET("/history", handler.GetHistory)
		api.DELETE("/history", handler.DeleteHistory)
		api.GET("/stats", handler.GetStats)
		api.GET("/preferences", handler.GetPreferences)
		api.PUT("/preferences", handler.PutPreferences)
		api.GET("/export", handler.GetExport)
		api.POST("/import", handler.PostImport)
		api.GET("/report", handler.GetReport)
		api.GET("/report/print", handler.GetReportPrint)
		api.GET("/session", handler.GetSession)
		api.POST("/session/report-sent", handler.PostReportSent)
		api.GET("/headlines", handler.GetHeadlines)
		api.POST("/verdict", handler.PostVerdict)
		api.GET("/sources", handler.GetSources)
	}

	// Health endpoint stays unauthenticated
	r.GET("/health", handler.GetHealth)

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "ProveIt",
			"version":     cfg.GetVersion(),
			"description": "Personal news bias tracker: reading analytics, bias statistics, and portability",
			"endpoints": map[string]string{
				"track":       "/api/track (POST)",
				"history":     "/api/history (GET, DELETE ?window=)",
				"stats":       "/api/stats",
				"preferences": "/api/preferences (GET, PUT)",
				"export":      "/api/export",
				"import":      "/api/import (POST)",
				"report":      "/api/report, /api/report/print",
				"session":     "/api/session, /api/session/report-sent (POST)",
				"headlines":   "/api/headlines?category=<name>",
				"verdict":     "/api/verdict (POST)",
				"sources":     "/api/sources",
				"health":      "/health",
			},
			"api_status": map[string]interface{}{
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for API endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
