package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/muddihilm/socapp/internal/graph"
	"github.com/muddihilm/socapp/internal/logger"
	"github.com/muddihilm/socapp/internal/models"
)

// UserReadRepository reads User nodes from the graph.
type UserReadRepository struct {
	store *graph.Store
}

func NewUserReadRepository(store *graph.Store) *UserReadRepository {
	return &UserReadRepository{store: store}
}

// matchUser runs a Cypher query expected to return at most one user node
// bound to "u". Returns nil without error when nothing matched.
func (r *UserReadRepository) matchUser(ctx context.Context, query string, params map[string]any) (*models.User, error) {
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
		raw, ok := records[0].Get("u")
		if !ok {
			return nil, errors.New("user column missing from result")
		}
		node, ok := raw.(dbtype.Node)
		if !ok {
			return nil, errors.New("user column is not a node")
		}
		return userFromNode(node), nil
	})

	logger.Log.Infow("user query",
		"query", oneline(query),
		"args", params,
		"error", err,
	)

	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	if res == nil {
		return nil, nil
	}
	return res.(*models.User), nil
}

// GetByUsernameOrEmail returns a user matching either field. Used as the
// pre-registration duplicate check.
func (r *UserReadRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	const query = `
		MATCH (u:User)
		WHERE u.username = $username OR u.email = $email
		RETURN u
		LIMIT 1
	`
	return r.matchUser(ctx, query, map[string]any{"username": username, "email": email})
}

func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const query = `MATCH (u:User {username: $username}) RETURN u`
	return r.matchUser(ctx, query, map[string]any{"username": username})
}

func (r *UserReadRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `MATCH (u:User {email: $email}) RETURN u`
	return r.matchUser(ctx, query, map[string]any{"email": email})
}

func (r *UserReadRepository) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	const query = `MATCH (u:User {verification_token: $token}) RETURN u`
	return r.matchUser(ctx, query, map[string]any{"token": token})
}

// UserWriteRepository mutates User nodes.
type UserWriteRepository struct {
	store *graph.Store
}

func NewUserWriteRepository(store *graph.Store) *UserWriteRepository {
	return &UserWriteRepository{store: store}
}

// Save creates a new user node. The uniqueness constraints on username and
// email make a concurrent duplicate CREATE fail instead of racing.
func (r *UserWriteRepository) Save(ctx context.Context, user models.User) error {
	const query = `
		CREATE (u:User {
			id: $id,
			username: $username,
			email: $email,
			password_hash: $password_hash,
			bio: $bio,
			profile_pic: $profile_pic,
			email_verified: $email_verified,
			verification_token: $verification_token,
			created_at: $created_at
		})
	`
	var token any
	if user.VerificationToken != nil {
		token = *user.VerificationToken
	}
	params := map[string]any{
		"id":                 user.ID,
		"username":           user.Username,
		"email":              user.Email,
		"password_hash":      user.PasswordHash,
		"bio":                user.Bio,
		"profile_pic":        user.ProfilePic,
		"email_verified":     user.EmailVerified,
		"verification_token": token,
		"created_at":         user.CreatedAt.Format(timestampLayout),
	}

	_, err := r.store.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		_, err = result.Consume(ctx)
		return nil, err
	})

	logger.Log.Infow("user save",
		"query", oneline(query),
		"username", user.Username,
		"error", err,
	)

	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// MarkVerified consumes a verification token in a single atomic statement:
// it flips email_verified, clears the token and stamps verified_at. Returns
// false when no user holds the token (wrong or already consumed).
func (r *UserWriteRepository) MarkVerified(ctx context.Context, token string, verifiedAt time.Time) (bool, error) {
	const query = `
		MATCH (u:User {verification_token: $token})
		SET u.email_verified = true,
		    u.verification_token = null,
		    u.verified_at = $verified_at
		RETURN u.id AS id
	`
	params := map[string]any{
		"token":       token,
		"verified_at": verifiedAt.Format(timestampLayout),
	}

	res, err := r.store.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
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

	logger.Log.Infow("user verify",
		"query", oneline(query),
		"error", err,
	)

	if err != nil {
		return false, fmt.Errorf("mark user verified: %w", err)
	}
	return res.(bool), nil
}

// SetVerificationToken overwrites the active token for an email, keeping at
// most one active token per user.
func (r *UserWriteRepository) SetVerificationToken(ctx context.Context, email, token string) error {
	const query = `
		MATCH (u:User {email: $email})
		SET u.verification_token = $token
	`
	params := map[string]any{"email": email, "token": token}

	_, err := r.store.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		_, err = result.Consume(ctx)
		return nil, err
	})

	logger.Log.Infow("user token reissue",
		"query", oneline(query),
		"email", email,
		"error", err,
	)

	if err != nil {
		return fmt.Errorf("set verification token: %w", err)
	}
	return nil
}
