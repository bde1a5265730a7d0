package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duynguyendang/digivolve/pkg/export"
)

// handleStageBackbone returns the stage-level condensation of the evolution
// graph: one node per stage, links weighted by how many evolution edges
// cross each stage pair.
func (s *Server) handleStageBackbone(c *gin.Context) {
	r, err := s.manager.Resolver()
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, export.BuildStageBackbone(r))
}
