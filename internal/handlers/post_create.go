package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/muddihilm/socapp/internal/logger"
	"github.com/muddihilm/socapp/internal/middlewares"
	"github.com/muddihilm/socapp/internal/models"
	"github.com/muddihilm/socapp/internal/services"
)

// maxUploadBytes bounds in-memory multipart parsing.
const maxUploadBytes = 32 << 20

// PostCreator defines the interface that the post service must implement.
type PostCreator interface {
	Create(ctx context.Context, author *models.User, in models.NewPost) (*models.Post, error)
}

// CreatePostRequest represents the JSON body for creating a post. The same
// endpoint also accepts a multipart form with "content" and an "image"
// file part.
// swagger:model CreatePostRequest
type CreatePostRequest struct {
	// Post text
	Content string `json:"content"`

	// Pre-hosted image URL
	ImageURL *string `json:"image_url"`
}

// NewCreatePostHandler returns an HTTP handler for creating a post. Both
// body shapes normalize into one canonical {content, image_url} value
// before the service runs.
// @Summary Create a post
// @Description Accepts application/json with a pre-hosted image_url, or multipart/form-data with raw file bytes that get stored and hosted.
// @Tags posts
// @Accept json
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param createPostRequest body handlers.CreatePostRequest true "New post"
// @Success 201 {object} models.Post "Created post"
// @Failure 400 {object} handlers.ErrorResponse "Content or image required / invalid body"
// @Failure 401 "Missing or invalid session token"
// @Failure 500 {object} handlers.ErrorResponse "Upload storage failure"
// @Router /posts [post]
func NewCreatePostHandler(svc PostCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.UserFromContext(r.Context())
		if user == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		in, ok := decodeNewPost(w, r)
		if !ok {
			return
		}

		post, err := svc.Create(r.Context(), user, in)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrEmptyPost):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "Content or image required",
				})
			case errors.Is(err, services.ErrStorage):
				logger.Log.Errorw("upload storage failed", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "Failed to save image",
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

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(post)
	}
}

// decodeNewPost normalizes either body shape into models.NewPost. On a
// malformed body it writes the error response itself and reports !ok.
func decodeNewPost(w http.ResponseWriter, r *http.Request) (models.NewPost, bool) {
	ct := strings.ToLower(r.Header.Get("Content-Type"))

	if strings.HasPrefix(ct, "application/json") {
		var req CreatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "invalid JSON payload",
			})
			return models.NewPost{}, false
		}
		return models.NewPost{Content: req.Content, ImageURL: req.ImageURL}, true
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error: "invalid form payload",
		})
		return models.NewPost{}, false
	}

	in := models.NewPost{Content: r.FormValue("content")}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "failed to read uploaded file",
			})
			return models.NewPost{}, false
		}
		in.File = &models.FileUpload{Data: data, Filename: header.Filename}
	case errors.Is(err, http.ErrMissingFile):
		// text-only form post
	default:
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error: "invalid image part",
		})
		return models.NewPost{}, false
	}

	return in, true
}
