package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/muddihilm/socapp/internal/logger"
	"github.com/muddihilm/socapp/internal/models"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrNotPostAuthor = errors.New("not the author of the post")
	ErrEmptyPost     = errors.New("post requires content or an image")
	ErrStorage       = errors.New("failed to store uploaded file")
)

// PostReader defines read operations for posts and their aggregates.
type PostReader interface {
	List(ctx context.Context, authorID *string) ([]models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Exists(ctx context.Context, id string) (bool, error)
	IsAuthor(ctx context.Context, userID, postID string) (bool, error)
}

// PostWriter defines write operations for posts.
type PostWriter interface {
	Save(ctx context.Context, author models.User, post models.Post) error
	Update(ctx context.Context, id string, patch models.PostPatch) error
	Delete(ctx context.Context, id string) error
	Like(ctx context.Context, userID, postID string) (int64, error)
}

// FileStore persists raw upload bytes and returns a hosted URL.
type FileStore interface {
	Store(ctx context.Context, data []byte, originalFilename string) (string, error)
}

// PostService owns post creation, ownership enforcement, likes and the
// feed. Both ingestion paths are normalized before it touches the store, so
// the persistence logic is path-agnostic.
type PostService struct {
	reader PostReader
	writer PostWriter
	files  FileStore
}

// NewPostService creates a new PostService instance.
func NewPostService(reader PostReader, writer PostWriter, files FileStore) *PostService {
	return &PostService{
		reader: reader,
		writer: writer,
		files:  files,
	}
}

// Create normalizes the new post into the canonical {content, image_url}
// pair and writes the node plus its AUTHORED edge. A raw file upload is
// handed to the file store first; its failure blocks creation.
func (svc *PostService) Create(ctx context.Context, author *models.User, in models.NewPost) (*models.Post, error) {
	imageURL := in.ImageURL
	if imageURL != nil && strings.TrimSpace(*imageURL) == "" {
		// A blank URL is no image.
		imageURL = nil
	}
	if in.File != nil {
		hostedURL, err := svc.files.Store(ctx, in.File.Data, in.File.Filename)
		if err != nil {
			logger.Log.Errorw("failed to store upload", "filename", in.File.Filename, "err", err)
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		imageURL = &hostedURL
	}

	if strings.TrimSpace(in.Content) == "" && imageURL == nil {
		return nil, ErrEmptyPost
	}

	post := models.Post{
		ID:        uuid.NewString(),
		Content:   in.Content,
		ImageURL:  imageURL,
		CreatedAt: time.Now().UTC(),
		User:      author.AsAuthor(),
	}

	if err := svc.writer.Save(ctx, *author, post); err != nil {
		logger.Log.Errorw("failed to save post", "post_id", post.ID, "err", err)
		return nil, err
	}

	return &post, nil
}

// Update applies a partial patch to an owned post and returns it
// rehydrated with current aggregate counts.
func (svc *PostService) Update(ctx context.Context, postID string, author *models.User, patch models.PostPatch) (*models.Post, error) {
	isAuthor, err := svc.reader.IsAuthor(ctx, author.ID, postID)
	if err != nil {
		return nil, err
	}
	if !isAuthor {
		return nil, ErrNotPostAuthor
	}

	if err := svc.writer.Update(ctx, postID, patch); err != nil {
		return nil, err
	}

	post, err := svc.reader.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// Delete removes an owned post together with all incident relationships.
func (svc *PostService) Delete(ctx context.Context, postID string, author *models.User) error {
	isAuthor, err := svc.reader.IsAuthor(ctx, author.ID, postID)
	if err != nil {
		return err
	}
	if !isAuthor {
		return ErrNotPostAuthor
	}

	return svc.writer.Delete(ctx, postID)
}

// Like upserts the LIKED edge and returns the resulting distinct-liker
// count. Liking twice converges on the same state.
func (svc *PostService) Like(ctx context.Context, postID string, liker *models.User) (int64, error) {
	exists, err := svc.reader.Exists(ctx, postID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrPostNotFound
	}

	return svc.writer.Like(ctx, liker.ID, postID)
}

// List returns the feed, newest first, optionally filtered by author.
func (svc *PostService) List(ctx context.Context, authorID *string) ([]models.Post, error) {
	return svc.reader.List(ctx, authorID)
}

// Get returns one post with its aggregates.
func (svc *PostService) Get(ctx context.Context, postID string) (*models.Post, error) {
	post, err := svc.reader.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}
