package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/muddihilm/socapp/internal/graph"
	"github.com/muddihilm/socapp/internal/logger"
	"github.com/muddihilm/socapp/internal/models"
)

// postProjection is the shared tail of every post read: the authored post
// with its like and comment aggregates counted from edges at read time.
const postProjection = `
	OPTIONAL MATCH (p)<-[:LIKED]-(l:User)
	OPTIONAL MATCH (c:Comment)-[:ON_POST]->(p)
	RETURN p, u,
	       count(DISTINCT l) AS likes_count,
	       count(DISTINCT c) AS comments_count
`

// PostReadRepository reads Post nodes and their aggregates.
type PostReadRepository struct {
	store *graph.Store
}

func NewPostReadRepository(store *graph.Store) *PostReadRepository {
	return &PostReadRepository{store: store}
}

// List returns the feed, newest first, optionally filtered to one author.
func (r *PostReadRepository) List(ctx context.Context, authorID *string) ([]models.Post, error) {
	query := `MATCH (u:User)-[:AUTHORED]->(p:Post)` + postProjection + `ORDER BY p.created_at DESC`
	params := map[string]any{}
	if authorID != nil {
		query = `MATCH (u:User {id: $author_id})-[:AUTHORED]->(p:Post)` + postProjection + `ORDER BY p.created_at DESC`
		params["author_id"] = *authorID
	}

	res, err := r.store.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		posts := make([]models.Post, 0, len(records))
		for _, rec := range records {
			if post, ok := postFromRecord(rec); ok {
				posts = append(posts, post)
			}
		}
		return posts, nil
	})

	logger.Log.Infow("post list",
		"query", oneline(query),
		"args", params,
		"error", err,
	)

	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return res.([]models.Post), nil
}

// GetByID returns one post with aggregates, or nil when absent.
func (r *PostReadRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `MATCH (u:User)-[:AUTHORED]->(p:Post {id: $id})` + postProjection
	params := map[string]any{"id": id}

	res, err := r.store.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, nil
		}
		post, ok := postFromRecord(records[0])
		if !ok {
			return nil, errors.New("post column missing from result")
		}
		return &post, nil
	})

	logger.Log.Infow("post get",
		"query", oneline(query),
		"args", params,
		"error", err,
	)

	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if res == nil {
		return nil, nil
	}
	return res.(*models.Post), nil
}

// Exists reports whether a post node exists.
func (r *PostReadRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `MATCH (p:Post {id: $id}) RETURN p.id AS id`

	res, err := r.store.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		return len(records) > 0, nil
	})
	if err != nil {
		return false, fmt.Errorf("post exists: %w", err)
	}
	return res.(bool), nil
}

// IsAuthor reports whether an AUTHORED edge connects the user to the post.
func (r *PostReadRepository) IsAuthor(ctx context.Context, userID, postID string) (bool, error) {
	const query = `MATCH (u:User {id: $uid})-[:AUTHORED]->(p:Post {id: $pid}) RETURN p.id AS id`
	params := map[string]any{"uid": userID, "pid": postID}

	res, err := r.store.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		return len(records) > 0, nil
	})

	logger.Log.Infow("post ownership check",
		"query", oneline(query),
		"args", params,
		"error", err,
	)

	if err != nil {
		return false, fmt.Errorf("check post author: %w", err)
	}
	return res.(bool), nil
}

// PostWriteRepository mutates Post nodes and their relationships.
type PostWriteRepository struct {
	store *graph.Store
}

func NewPostWriteRepository(store *graph.Store) *PostWriteRepository {
	return &PostWriteRepository{store: store}
}

// Save writes the post node and its AUTHORED edge in one statement. The
// author node is matched-or-created so a user referenced before any profile
// sync still gets an anchor node.
func (r *PostWriteRepository) Save(ctx context.Context, author models.User, post models.Post) error {
	const query = `
		MERGE (u:User {id: $author_id})
		ON CREATE SET u.username = $username,
		              u.bio = $bio,
		              u.profile_pic = $profile_pic
		CREATE (p:Post {
			id: $id,
			content: $content,
			image_url: $image_url,
			created_at: $created_at
		})
		MERGE (u)-[:AUTHORED]->(p)
	`
	var imageURL any
	if post.ImageURL != nil {
		imageURL = *post.ImageURL
	}
	params := map[string]any{
		"author_id":   author.ID,
		"username":    author.Username,
		"bio":         author.Bio,
		"profile_pic": author.ProfilePic,
		"id":          post.ID,
		"content":     post.Content,
		"image_url":   imageURL,
		"created_at":  post.CreatedAt.Format(timestampLayout),
	}

	_, err := r.store.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		_, err = result.Consume(ctx)
		return nil, err
	})

	logger.Log.Infow("post save",
		"query", oneline(query),
		"post_id", post.ID,
		"author_id", author.ID,
		"error", err,
	)

	if err != nil {
		return fmt.Errorf("save post: %w", err)
	}
	return nil
}

// Update applies only the fields present in the patch. A null image_url in
// the updates map removes the property, which is exactly the "clear the
// image" semantics of SET p += $updates.
func (r *PostWriteRepository) Update(ctx context.Context, id string, patch models.PostPatch) error {
	if patch.Empty() {
		return nil
	}

	const query = `MATCH (p:Post {id: $id}) SET p += $updates`

	updates := map[string]any{}
	if patch.Content != nil {
		updates["content"] = *patch.Content
	}
	if patch.ImageURLSet {
		if patch.ImageURL != nil {
			updates["image_url"] = *patch.ImageURL
		} else {
			updates["image_url"] = nil
		}
	}
	params := map[string]any{"id": id, "updates": updates}

	_, err := r.store.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		_, err = result.Consume(ctx)
		return nil, err
	})

	logger.Log.Infow("post update",
		"query", oneline(query),
		"post_id", id,
		"error", err,
	)

	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes the node and all incident relationships atomically.
func (r *PostWriteRepository) Delete(ctx context.Context, id string) error {
	const query = `MATCH (p:Post {id: $id}) DETACH DELETE p`

	_, err := r.store.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		_, err = result.Consume(ctx)
		return nil, err
	})

	logger.Log.Infow("post delete",
		"query", oneline(query),
		"post_id", id,
		"error", err,
	)

	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// Like upserts the LIKED edge and counts distinct likers in the same
// transaction. MERGE makes the like idempotent; the count comes from the
// relationship set, never a stored counter.
func (r *PostWriteRepository) Like(ctx context.Context, userID, postID string) (int64, error) {
	const query = `
		MATCH (u:User {id: $uid}), (p:Post {id: $pid})
		MERGE (u)-[:LIKED]->(p)
		WITH p
		MATCH (liker:User)-[:LIKED]->(p)
		RETURN count(DISTINCT liker) AS likes
	`
	params := map[string]any{"uid": userID, "pid": postID}

	res, err := r.store.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return int64(0), errors.New("like count missing from result")
		}
		raw, _ := records[0].Get("likes")
		likes, _ := raw.(int64)
		return likes, nil
	})

	logger.Log.Infow("post like",
		"query", oneline(query),
		"args", params,
		"error", err,
	)

	if err != nil {
		return 0, fmt.Errorf("like post: %w", err)
	}
	return res.(int64), nil
}
