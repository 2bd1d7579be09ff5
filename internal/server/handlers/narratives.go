// internal/server/handlers/narratives.go

package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"mtc/internal/adapter/anthropic"
	"mtc/internal/adapter/social"
)

// NarrativeHandler synthesizes the dominant comment narratives for one post.
type NarrativeHandler struct {
	reddit *social.RedditClient
	claude *anthropic.Client
	logger *zap.Logger
}

// NewNarrativeHandler creates a new narrative handler.
func NewNarrativeHandler(reddit *social.RedditClient, claude *anthropic.Client, logger *zap.Logger) *NarrativeHandler {
	return &NarrativeHandler{
		reddit: reddit,
		claude: claude,
		logger: logger,
	}
}

// Narratives fetches top comments for the post at ?url= and returns the top
// three narratives people are expressing in them.
func (h *NarrativeHandler) Narratives(w http.ResponseWriter, r *http.Request) {
	postURL := r.URL.Query().Get("url")
	if postURL == "" {
		respondWithError(w, http.StatusBadRequest, "url parameter required")
		return
	}
	title := r.URL.Query().Get("title")

	comments, err := h.reddit.GetComments(r.Context(), postURL, 20)
	if err != nil {
		h.logger.Error("comment fetch failed", zap.String("url", postURL), zap.Error(err))
		respondWithError(w, http.StatusBadGateway, "Failed to fetch comments")
		return
	}
	if len(comments) == 0 {
		respondWithError(w, http.StatusNotFound, "No comments found for this post")
		return
	}

	narratives, err := h.claude.Narratives(r.Context(), title, comments)
	if err != nil {
		h.logger.Error("narrative synthesis failed", zap.String("url", postURL), zap.Error(err))
		respondWithError(w, http.StatusBadGateway, "Failed to generate narratives")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"narratives":    narratives,
		"comment_count": len(comments),
	})
}
