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

// PostUpdater defines the interface that the post service must implement.
type PostUpdater interface {
	Update(ctx context.Context, postID string, author *models.User, patch models.PostPatch) (*models.Post, error)
}

// NewUpdatePostHandler returns an HTTP handler for partially updating a
// post. Only keys present in the body are applied; "image_url": null
// removes the image while an absent key leaves it unchanged.
// @Summary Update a post
// @Description Partial update by the post's author. Returns the post rehydrated with current aggregate counts.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post "Updated post"
// @Failure 400 {object} handlers.ErrorResponse "Invalid body"
// @Failure 401 "Missing or invalid session token"
// @Failure 403 {object} handlers.ErrorResponse "Not the author"
// @Router /posts/{id} [put]
func NewUpdatePostHandler(svc PostUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.UserFromContext(r.Context())
		if user == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		postID := chi.URLParam(r, "id")

		patch, ok := decodePostPatch(w, r)
		if !ok {
			return
		}

		post, err := svc.Update(r.Context(), postID, user, patch)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrNotPostAuthor):
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "Not authorized",
				})
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

// decodePostPatch decodes the body into a patch, distinguishing an absent
// image_url key from an explicit null. Writes the error response itself on
// a malformed body.
func decodePostPatch(w http.ResponseWriter, r *http.Request) (models.PostPatch, bool) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error: "invalid JSON payload",
		})
		return models.PostPatch{}, false
	}

	var patch models.PostPatch

	if rawContent, ok := raw["content"]; ok {
		var content string
		if err := json.Unmarshal(rawContent, &content); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "content must be a string",
			})
			return models.PostPatch{}, false
		}
		patch.Content = &content
	}

	if rawImageURL, ok := raw["image_url"]; ok {
		patch.ImageURLSet = true
		var imageURL *string
		if err := json.Unmarshal(rawImageURL, &imageURL); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "image_url must be a string or null",
			})
			return models.PostPatch{}, false
		}
		patch.ImageURL = imageURL
	}

	return patch, true
}
