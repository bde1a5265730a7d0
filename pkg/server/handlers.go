package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/duynguyendang/digivolve/pkg/common/errors"
	"github.com/duynguyendang/digivolve/pkg/evolution"
	"github.com/duynguyendang/digivolve/pkg/export"
)

// handleEvolution returns the full evolution line for a name.
// A unique match serializes as the entry object itself; duplicate names
// return the multi-result envelope; unknown names return 404 with the
// not-found body including suggestions.
func (s *Server) handleEvolution(c *gin.Context) {
	res, err := s.manager.Lookup(c.Param("name"))
	if err != nil {
		handleError(c, err)
		return
	}
	if _, ok := res.(evolution.NotFound); ok {
		c.JSON(http.StatusNotFound, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleNext returns the direct successors for a name.
func (s *Server) handleNext(c *gin.Context) {
	name := c.Param("name")
	res, err := s.manager.Lookup(name)
	if err != nil {
		handleError(c, err)
		return
	}
	entries, ok := lineages(res)
	if !ok {
		c.JSON(http.StatusNotFound, res)
		return
	}

	// Duplicate names contribute their successors in entry order.
	refs := make([]evolution.Ref, 0)
	for _, e := range entries {
		refs = append(refs, e.Successors...)
	}

	c.JSON(http.StatusOK, gin.H{
		"digimon":    name,
		"total":      len(refs),
		"evolutions": refs,
	})
}

// handlePrevious returns the direct predecessors for a name.
func (s *Server) handlePrevious(c *gin.Context) {
	name := c.Param("name")
	res, err := s.manager.Lookup(name)
	if err != nil {
		handleError(c, err)
		return
	}
	entries, ok := lineages(res)
	if !ok {
		c.JSON(http.StatusNotFound, res)
		return
	}

	refs := make([]evolution.Ref, 0)
	for _, e := range entries {
		refs = append(refs, e.Predecessors...)
	}

	c.JSON(http.StatusOK, gin.H{
		"digimon":    name,
		"total":      len(refs),
		"evolutions": refs,
	})
}

// handleLineSummary returns counts instead of the full line.
func (s *Server) handleLineSummary(c *gin.Context) {
	name := c.Param("name")
	res, err := s.manager.Lookup(name)
	if err != nil {
		handleError(c, err)
		return
	}
	entries, ok := lineages(res)
	if !ok {
		c.JSON(http.StatusNotFound, res)
		return
	}

	if len(entries) == 1 {
		c.JSON(http.StatusOK, summarize(entries[0]))
		return
	}

	results := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		results = append(results, summarize(e))
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Found %d results for: %s", len(entries), name),
		"results": results,
	})
}

// handleNarrative asks the AI narrator for a short description of the line.
func (s *Server) handleNarrative(c *gin.Context) {
	if s.narrator == nil {
		handleError(c, errors.NewAppError(http.StatusServiceUnavailable, "AI service not initialized", nil))
		return
	}

	name := c.Param("name")
	res, err := s.manager.Lookup(name)
	if err != nil {
		handleError(c, err)
		return
	}
	entries, ok := lineages(res)
	if !ok {
		c.JSON(http.StatusNotFound, res)
		return
	}

	text, err := s.narrator.Narrate(c.Request.Context(), entries)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"digimon":   name,
		"narrative": text,
	})
}

// handleCanEvolve reports whether from evolves directly into to.
func (s *Server) handleCanEvolve(c *gin.Context) {
	from := c.Param("from")
	to := c.Param("to")

	res, err := s.manager.Lookup(from)
	if err != nil {
		handleError(c, err)
		return
	}
	if _, ok := lineages(res); !ok {
		c.JSON(http.StatusNotFound, res)
		return
	}

	r, err := s.manager.Resolver()
	if err != nil {
		handleError(c, err)
		return
	}
	can := r.CanEvolve(from, to)

	verb := "cannot"
	if can {
		verb = "can"
	}
	c.JSON(http.StatusOK, gin.H{
		"from":       from,
		"to":         to,
		"can_evolve": can,
		"message":    fmt.Sprintf("%s %s evolve directly into %s", from, verb, to),
	})
}

// handleNames provides fast name search/autocomplete.
// GET /v1/names?q=agu&limit=20
func (s *Server) handleNames(c *gin.Context) {
	r, err := s.manager.Resolver()
	if err != nil {
		handleError(c, err)
		return
	}

	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50 // Cap results
	}

	query := c.Query("q")
	if query == "" {
		names := r.Names()
		if len(names) > limit {
			names = names[:limit]
		}
		c.JSON(http.StatusOK, gin.H{"names": names})
		return
	}

	matches := r.SearchNames(query, limit)
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Name
	}
	c.JSON(http.StatusOK, gin.H{
		"query": query,
		"names": names,
	})
}

// handleGraph exports the whole evolution graph in D3 format.
func (s *Server) handleGraph(c *gin.Context) {
	r, err := s.manager.Resolver()
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, export.BuildGraph(r))
}

// handleDataset returns dataset provenance and stats.
func (s *Server) handleDataset(c *gin.Context) {
	tbl, err := s.manager.Table()
	if err != nil {
		handleError(c, err)
		return
	}
	r, err := s.manager.Resolver()
	if err != nil {
		handleError(c, err)
		return
	}

	stats := tbl.Stats()
	c.JSON(http.StatusOK, gin.H{
		"source":     tbl.Source(),
		"loaded_at":  tbl.LoadedAt(),
		"rows":       stats.Rows,
		"stages":     stats.Stages,
		"attributes": stats.Attributes,
		"dangling":   len(r.Dangling()),
		"reloads":    s.manager.Reloads(),
		"failures":   s.manager.Failures(),
	})
}

// handleReload re-reads the dataset file and swaps the table in.
func (s *Server) handleReload(c *gin.Context) {
	tbl, err := s.manager.Reload()
	if err != nil {
		// Surface the load error so the caller sees which column or row broke.
		handleError(c, errors.NewAppError(http.StatusInternalServerError, err.Error(), err))
		return
	}
	slog.Info("dataset reloaded", "rows", tbl.Len(), "request_id", c.GetString("request_id"))
	c.JSON(http.StatusOK, gin.H{
		"status": "reloaded",
		"rows":   tbl.Len(),
	})
}

// handleError helper
func handleError(c *gin.Context, err error) {
	appErr := errors.MapError(err)
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}

// lineages flattens a resolve outcome into its entries. ok is false when the
// outcome is a miss.
func lineages(res evolution.Result) ([]evolution.Lineage, bool) {
	switch r := res.(type) {
	case evolution.Single:
		return []evolution.Lineage{r.Entry}, true
	case evolution.Multiple:
		return r.Entries, true
	default:
		return nil, false
	}
}

func summarize(e evolution.Lineage) gin.H {
	return gin.H{
		"digimon": gin.H{
			"name":      e.Current.Name,
			"stage":     e.Current.Stage,
			"attribute": e.Current.Attribute,
		},
		"summary": gin.H{
			"total_pre_evolutions":  len(e.Predecessors),
			"total_post_evolutions": len(e.Successors),
		},
	}
}
