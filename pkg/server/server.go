package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/duynguyendang/digivolve/internal/manager"
	"github.com/duynguyendang/digivolve/pkg/ai"
)

// Server holds the state for the REST API server.
type Server struct {
	manager  *manager.Manager
	narrator *ai.Narrator
	router   *gin.Engine
}

// NewServer creates a new Server instance. narrator may be nil, in which
// case the narrative endpoint reports the AI service as unavailable.
func NewServer(mgr *manager.Manager, narrator *ai.Narrator) *Server {
	r := gin.Default()
	r.Use(corsConfig(), requestID())
	s := &Server{
		manager:  mgr,
		narrator: narrator,
		router:   r,
	}
	s.setupRoutes()
	return s
}

// Run starts the server on the specified address.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router so callers can wrap it in their own http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleRoot)
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/api/evolution/:name", s.handleEvolution)
	s.router.GET("/api/evolution/:name/next", s.handleNext)
	s.router.GET("/api/evolution/:name/previous", s.handlePrevious)
	s.router.GET("/api/evolution/:name/summary", s.handleLineSummary)
	s.router.GET("/api/evolution/:name/narrative", s.handleNarrative)
	s.router.GET("/api/can-evolve/:from/:to", s.handleCanEvolve)
	s.router.GET("/v1/names", s.handleNames)
	s.router.GET("/v1/graph", s.handleGraph)
	s.router.GET("/v1/graph/backbone", s.handleStageBackbone)
	s.router.GET("/v1/dataset", s.handleDataset)
	s.router.POST("/v1/reload", s.handleReload)
}

// corsConfig allows any origin; the API carries no credentials.
func corsConfig() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "X-Requested-With", "X-Request-ID"},
	})
}

// requestID echoes the caller's X-Request-ID header, minting one when absent.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Set("request_id", id)
		c.Next()
	}
}

// Health check
func (s *Server) healthCheck(c *gin.Context) {
	if !s.manager.Loaded() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "initializing"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "online"})
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Digimon Evolution API",
		"version": "1.0.0",
		"endpoints": gin.H{
			"search_evolution":    "/api/evolution/:name",
			"next_evolutions":     "/api/evolution/:name/next",
			"previous_evolutions": "/api/evolution/:name/previous",
			"evolution_summary":   "/api/evolution/:name/summary",
			"evolution_narrative": "/api/evolution/:name/narrative",
			"can_evolve":          "/api/can-evolve/:from/:to",
			"names":               "/v1/names",
			"graph":               "/v1/graph",
			"graph_backbone":      "/v1/graph/backbone",
			"dataset":             "/v1/dataset",
			"health":              "/health",
		},
	})
}
