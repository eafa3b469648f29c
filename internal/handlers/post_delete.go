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

// PostDeleter defines the interface that the post service must implement.
type PostDeleter interface {
	Delete(ctx context.Context, postID string, author *models.User) error
}

// DeletePostResponse represents a successful deletion response
// swagger:model DeletePostResponse
type DeletePostResponse struct {
	// Confirmation message
	// default: Post deleted
	Detail string `json:"detail"`
}

// NewDeletePostHandler returns an HTTP handler for deleting a post together
// with all its incident relationships.
// @Summary Delete a post
// @Description Deletes a post owned by the caller; LIKED and ON_POST edges are detached atomically.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} handlers.DeletePostResponse "Post deleted"
// @Failure 401 "Missing or invalid session token"
// @Failure 403 {object} handlers.ErrorResponse "Not the author"
// @Router /posts/{id} [delete]
func NewDeletePostHandler(svc PostDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.UserFromContext(r.Context())
		if user == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		postID := chi.URLParam(r, "id")

		if err := svc.Delete(r.Context(), postID, user); err != nil {
			switch {
			case errors.Is(err, services.ErrNotPostAuthor):
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "Not authorized",
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
		json.NewEncoder(w).Encode(DeletePostResponse{
			Detail: "Post deleted",
		})
	}
}
