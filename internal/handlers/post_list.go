package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/muddihilm/socapp/internal/logger"
	"github.com/muddihilm/socapp/internal/models"
)

// FeedLister defines the interface that the post service must implement.
type FeedLister interface {
	List(ctx context.Context, authorID *string) ([]models.Post, error)
}

// NewListPostsHandler returns an HTTP handler for the feed.
// @Summary List posts
// @Description Returns posts newest first, each annotated with likes_count and comments_count computed from relationships at read time. Optional user_id filters to one author.
// @Tags posts
// @Produce json
// @Param user_id query string false "Filter to one author"
// @Success 200 {array} models.Post "Feed"
// @Router /posts [get]
func NewListPostsHandler(svc FeedLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var authorID *string
		if uid := r.URL.Query().Get("user_id"); uid != "" {
			authorID = &uid
		}

		posts, err := svc.List(r.Context(), authorID)
		if err != nil {
			logger.Log.Errorw("internal server error", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "Internal server error",
			})
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(posts)
	}
}
