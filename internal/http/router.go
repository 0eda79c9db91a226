package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/phrasebook/internal/auth"
)

const hstsMaxAge = 31536000

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.EnableHSTS {
		router.Use(auth.StrictTransportSecurityMiddleware(hstsMaxAge))
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	health := NewHealthController(cfg.Database, cfg.Index, cfg.Version)
	entries := NewEntriesController(cfg.Entries)
	sync := NewSyncController(cfg.Syncer)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Phrasebook API",
			"version": cfg.Version,
			"endpoints": gin.H{
				"create_entry": "POST /api/entries",
				"get_entries":  "GET /api/entries",
				"search":       "GET /api/entries/search?q=",
				"changes":      "GET /api/entries/changes?since=",
				"get_entry":    "GET /api/entries/{id}",
				"find_similar": "GET /api/entries/{id}/similar",
				"update_entry": "PATCH /api/entries/{id}",
				"delete_entry": "DELETE /api/entries/{id}",
				"sync":         "POST /api/sync",
			},
		})
	})

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	// Entries API endpoints
	api.POST("/entries", entries.Create)
	api.GET("/entries", entries.List)
	api.GET("/entries/search", entries.Search)
	api.GET("/entries/changes", entries.Changes)
	api.GET("/entries/:id", entries.Get)
	api.GET("/entries/:id/similar", entries.Similar)
	api.PATCH("/entries/:id", entries.Update)
	api.DELETE("/entries/:id", entries.Delete)

	// Multi-device sync
	api.POST("/sync", sync.Sync)

	if cfg.AuditEvents != nil {
		audit := NewAuditController(cfg.AuditEvents)
		api.GET("/audit", audit.GetAuditEvents)
	}

	// Task queue endpoints
	if cfg.TaskQueue != nil {
		tasks := NewTasksController(cfg.TaskQueue, cfg.AuditRetentionDays)
		api.GET("/tasks/types", tasks.ListTaskTypes)
		api.POST("/tasks/:type/run", tasks.RunTask)
		api.GET("/tasks/:id", tasks.GetTaskStatus)
	}

	return router
}
