package repositories

import (
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/muddihilm/socapp/internal/models"
)

// timestampLayout is the storage format for timestamps. Unlike RFC3339Nano
// it never trims fractional zeros, so every value is fixed-width and string
// ORDER BY sorts chronologically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// oneline collapses a multi-line Cypher statement for single-line logging.
func oneline(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

func stringProp(props map[string]any, key string) string {
	v, _ := props[key].(string)
	return v
}

func boolProp(props map[string]any, key string) bool {
	v, _ := props[key].(bool)
	return v
}

// timeProp parses a stored timestamp property. RFC3339Nano accepts any
// fractional width, so values written before the fixed-width layout still
// parse.
func timeProp(props map[string]any, key string) time.Time {
	s, ok := props[key].(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// userFromNode maps a User node onto the typed record consumed by the rest
// of the service. Call sites never see raw property maps.
func userFromNode(n dbtype.Node) *models.User {
	u := &models.User{
		ID:            stringProp(n.Props, "id"),
		Username:      stringProp(n.Props, "username"),
		Email:         stringProp(n.Props, "email"),
		PasswordHash:  stringProp(n.Props, "password_hash"),
		Bio:           stringProp(n.Props, "bio"),
		ProfilePic:    stringProp(n.Props, "profile_pic"),
		EmailVerified: boolProp(n.Props, "email_verified"),
		CreatedAt:     timeProp(n.Props, "created_at"),
	}
	if token, ok := n.Props["verification_token"].(string); ok && token != "" {
		u.VerificationToken = &token
	}
	if _, ok := n.Props["verified_at"]; ok {
		t := timeProp(n.Props, "verified_at")
		if !t.IsZero() {
			u.VerifiedAt = &t
		}
	}
	return u
}

// postFromRecord maps a (p, u, likes_count, comments_count) record row onto
// a typed post with its author and aggregates.
func postFromRecord(rec *neo4j.Record) (models.Post, bool) {
	rawPost, ok := rec.Get("p")
	if !ok {
		return models.Post{}, false
	}
	postNode, ok := rawPost.(dbtype.Node)
	if !ok {
		return models.Post{}, false
	}

	post := models.Post{
		ID:        stringProp(postNode.Props, "id"),
		Content:   stringProp(postNode.Props, "content"),
		CreatedAt: timeProp(postNode.Props, "created_at"),
	}
	if url, ok := postNode.Props["image_url"].(string); ok && url != "" {
		post.ImageURL = &url
	}

	if rawUser, ok := rec.Get("u"); ok {
		if userNode, ok := rawUser.(dbtype.Node); ok {
			post.User = models.Author{
				ID:         stringProp(userNode.Props, "id"),
				Username:   stringProp(userNode.Props, "username"),
				Bio:        stringProp(userNode.Props, "bio"),
				ProfilePic: stringProp(userNode.Props, "profile_pic"),
			}
		}
	}

	if likes, ok := rec.Get("likes_count"); ok {
		post.LikesCount, _ = likes.(int64)
	}
	if comments, ok := rec.Get("comments_count"); ok {
		post.CommentsCount, _ = comments.(int64)
	}

	return post, true
}
