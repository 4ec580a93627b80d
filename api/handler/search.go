package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/seeker/models"
)

// Searcher runs one engine search end to end.
type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error)
}

// Search returns a handler for POST /search.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Orchestrator.Search → answer text + links (+ images).
//  3. Return 200 with the result document.
//
// Error bodies are plain text: "Invalid engine" for an unknown engine,
// "Search failed: <reason>" for everything else.
func Search(s Searcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		// ── 1. Parse request ────────────────────────────────────────
		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, "Invalid request: %s", err.Error())
			return
		}
		req.Defaults()

		// ── 2. Search ───────────────────────────────────────────────
		result, err := s.Search(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}

		// ── 3. Respond ──────────────────────────────────────────────
		c.JSON(http.StatusOK, result)
	}
}

// respondError maps a SearchError to its HTTP status and writes the
// plain-text body the API contract promises.
func respondError(c *gin.Context, err error) {
	var searchErr *models.SearchError
	if !errors.As(err, &searchErr) {
		searchErr = models.NewSearchError(models.ErrCodeInternal, "search", err.Error(), err)
	}

	if searchErr.Code == models.ErrCodeInvalidEngine {
		c.String(http.StatusBadRequest, "Invalid engine")
		return
	}
	c.String(http.StatusInternalServerError, "Search failed: %s", searchErr.Message)
}
