package models

import "time"

// Post represents a Post node annotated with its author and aggregate
// relationship counts. LikesCount and CommentsCount are never stored on the
// node; they are counted from LIKED and ON_POST edges at read time.
type Post struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	ImageURL      *string   `json:"image_url"`
	CreatedAt     time.Time `json:"created_at"`
	User          Author    `json:"user"`
	LikesCount    int64     `json:"likes_count"`
	CommentsCount int64     `json:"comments_count"`
}

// NewPost is the canonical shape both ingestion paths (JSON and multipart
// form) normalize into before any persistence call. At most one of ImageURL
// and File is set: ImageURL carries a pre-hosted URL, File carries raw bytes
// that still need to be stored.
type NewPost struct {
	Content  string
	ImageURL *string
	File     *FileUpload
}

// FileUpload carries the raw bytes of an uploaded image.
type FileUpload struct {
	Data     []byte
	Filename string
}

// PostPatch carries partial-update fields for a post. A nil Content means
// the field was absent from the request. ImageURLSet distinguishes
// "image_url": null (clear the image) from the key being absent entirely.
type PostPatch struct {
	Content     *string
	ImageURL    *string
	ImageURLSet bool
}

// Empty reports whether the patch changes nothing.
func (p PostPatch) Empty() bool {
	return p.Content == nil && !p.ImageURLSet
}
