// internal/server/handlers/match.go

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"mtc/internal/service/pipeline"
)

// MatchHandler handles trend-matching HTTP requests.
type MatchHandler struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(p *pipeline.Pipeline, logger *zap.Logger) *MatchHandler {
	return &MatchHandler{
		pipeline: p,
		logger:   logger,
	}
}

type matchRequest struct {
	Keywords []string `json:"keywords"`
}

// Match runs a ranking pass for the keywords in the request body.
func (h *MatchHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.match(w, r, req.Keywords)
}

// MatchQuery runs a ranking pass for comma-separated keywords in the "k"
// query parameter (dashboard deep-link form).
func (h *MatchHandler) MatchQuery(w http.ResponseWriter, r *http.Request) {
	var keywords []string
	for _, kw := range strings.Split(r.URL.Query().Get("k"), ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	h.match(w, r, keywords)
}

func (h *MatchHandler) match(w http.ResponseWriter, r *http.Request, keywords []string) {
	if len(keywords) == 0 {
		respondWithError(w, http.StatusBadRequest, "Keywords required")
		return
	}

	result, err := h.pipeline.Match(r.Context(), keywords)
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyCorpus) {
			respondWithError(w, http.StatusNotFound, "No trend data available right now, try again shortly")
			return
		}
		h.logger.Error("ranking pass failed", zap.Error(err))
		respondWithError(w, http.StatusBadGateway, "Failed to fetch trends")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"run_id":         result.RunID,
		"niche":          result.Niche,
		"trends":         result.Trends,
		"total_analyzed": result.TotalAnalyzed,
		"matched_count":  result.MatchedCount,
		"source":         result.Source,
	})
}
