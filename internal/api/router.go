package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterConfig holds what the router needs besides the handler
type RouterConfig struct {
	Sessions    map[string]Session
	CORSOrigins []string
	Log         zerolog.Logger
}

// NewRouter registers every route on a new gin engine
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: false,
		MaxAge:           time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 || slices.Contains(cfg.CORSOrigins, "*") {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
	}

	r := gin.New()
	r.Use(
		RequestID(),
		Logger(cfg.Log),
		Recovery(cfg.Log),
		cors.New(corsCfg),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1", Auth(cfg.Sessions))

	api.POST("/imports", h.Import)

	api.POST("/matching/run", h.RunMatching)
	api.GET("/matches", h.ListMatches)
	api.POST("/matches/manual", h.CreateManualMatch)
	api.POST("/matches/:id/confirm", h.ConfirmMatch)
	api.POST("/matches/:id/reject", h.RejectMatch)

	api.POST("/links", h.LinkTransactions)

	api.GET("/reconciliation/stats", h.Stats)

	return r
}
