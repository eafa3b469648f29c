package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/muddihilm/socapp/internal/logger"
	"github.com/muddihilm/socapp/internal/models"
	"github.com/muddihilm/socapp/internal/services"
)

// PostGetter defines the interface that the post service must implement.
type PostGetter interface {
	Get(ctx context.Context, postID string) (*models.Post, error)
}

// NewGetPostHandler returns an HTTP handler for fetching one post with its
// aggregates.
// @Summary Get a post
// @Description Returns one post annotated with likes_count and comments_count.
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post "Post with aggregates"
// @Failure 404 {object} handlers.ErrorResponse "Post not found"
// @Router /posts/{id} [get]
func NewGetPostHandler(svc PostGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID := chi.URLParam(r, "id")

		post, err := svc.Get(r.Context(), postID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrPostNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "Post not found",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(post)
	}
}
