// Package api exposes the crawl trigger and the read endpoints.
package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"media-monitor/internal/middleware/logger"
	"media-monitor/internal/monitor/model"
	"media-monitor/internal/monitor/orchestrator"
)

// Runner starts one crawl cycle on demand.
type Runner interface {
	Run(ctx context.Context) (orchestrator.RunSummary, error)
}

// TrackerLister reads the active trackers.
type TrackerLister interface {
	Active(ctx context.Context) ([]model.Tracker, error)
}

// SuggestionLister reads a page of suggestions.
type SuggestionLister interface {
	List(ctx context.Context, campaignID string, status model.SuggestionStatus, page, limit int64) ([]model.Suggestion, error)
}

type Server struct {
	Log         *zap.Logger
	AuthToken   string
	Runner      Runner
	Trackers    TrackerLister
	Suggestions SuggestionLister
}

func (s *Server) Router() *gin.Engine {
	if s.AuthToken == "" {
		s.Log.Warn("server auth token is empty, crawl and read endpoints accept unauthenticated requests")
	}

	r := gin.New()
	r.Use(logger.Gin(s.Log), gin.Recovery())

	r.GET("/healthz", s.health)

	protected := r.Group("/", s.auth)
	protected.POST("/crawl", s.triggerCrawl)
	protected.GET("/trackers", s.listTrackers)
	protected.GET("/suggestions", s.listSuggestions)
	return r
}

func (s *Server) auth(c *gin.Context) {
	if s.AuthToken == "" {
		c.Next()
		return
	}

	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.AuthToken)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) triggerCrawl(c *gin.Context) {
	summary, err := s.Runner.Run(c.Request.Context())
	if err != nil {
		s.Log.Error("manual crawl failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) listTrackers(c *gin.Context) {
	trackers, err := s.Trackers.Active(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": trackers, "total": len(trackers)})
}

func (s *Server) listSuggestions(c *gin.Context) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}

	status := model.SuggestionStatus(c.Query("status"))
	suggestions, err := s.Suggestions.List(c.Request.Context(), c.Query("campaignId"), status, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  suggestions,
		"page":  page,
		"limit": limit,
	})
}
