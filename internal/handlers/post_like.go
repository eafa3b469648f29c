package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/muddihilm/socapp/internal/logger"
	"github.com/muddihilm/socapp/internal/middlewares"
	"github.com/muddihilm/socapp/internal/models"
	"github.com/muddihilm/socapp/internal/services"
)

// PostLiker defines the interface that the post service must implement.
type PostLiker interface {
	Like(ctx context.Context, postID string, liker *models.User) (int64, error)
}

// LikePostResponse represents the like count after an idempotent like
// swagger:model LikePostResponse
type LikePostResponse struct {
	// ID of the liked post
	PostID string `json:"post_id"`

	// Distinct-liker count after the like
	Likes int64 `json:"likes"`
}

// NewLikePostHandler returns an HTTP handler for liking a post. Liking the
// same post twice does not change the count.
// @Summary Like a post
// @Description Idempotently upserts the caller's like and returns the distinct-liker count.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} handlers.LikePostResponse "Updated like count"
// @Failure 401 "Missing or invalid session token"
// @Failure 404 {object} handlers.ErrorResponse "Post not found"
// @Router /posts/{id}/like [post]
func NewLikePostHandler(svc PostLiker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.UserFromContext(r.Context())
		if user == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		postID := chi.URLParam(r, "id")

		likes, err := svc.Like(r.Context(), postID, user)
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
		json.NewEncoder(w).Encode(LikePostResponse{
			PostID: postID,
			Likes:  likes,
		})
	}
}
