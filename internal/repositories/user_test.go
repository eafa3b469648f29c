package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/muddihilm/socapp/internal/graph"
	"github.com/muddihilm/socapp/internal/models"
)

const neo4jPassword = "password123"

// startGraph spins up a Neo4j container and returns a connected store with
// constraints applied. Shared by the user and post repository tests.
func startGraph(t *testing.T) *graph.Store {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "neo4j:5",
		ExposedPorts: []string{"7687/tcp"},
		Env: map[string]string{
			"NEO4J_AUTH": "neo4j/" + neo4jPassword,
		},
		WaitingFor: wait.ForListeningPort("7687/tcp"),
	}
	neoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	assert.NoError(t, err)
	t.Cleanup(func() { _ = neoC.Terminate(ctx) })

	host, err := neoC.Host(ctx)
	assert.NoError(t, err)
	port, err := neoC.MappedPort(ctx, "7687")
	assert.NoError(t, err)

	store, err := graph.New(ctx, fmt.Sprintf("bolt://%s:%s", host, port.Port()), "neo4j", neo4jPassword, "neo4j")
	assert.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(ctx) })

	assert.NoError(t, store.EnsureConstraints(ctx))

	return store
}

func newTestUser(suffix string) models.User {
	token := "token-" + suffix
	return models.User{
		ID:                uuid.NewString(),
		Username:          "user-" + suffix,
		Email:             suffix + "@example.com",
		PasswordHash:      "$2a$10$fakehash",
		EmailVerified:     false,
		VerificationToken: &token,
		CreatedAt:         time.Now().UTC(),
	}
}

func TestUserRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	store := startGraph(t)

	reader := NewUserReadRepository(store)
	writer := NewUserWriteRepository(store)

	t.Run("Save and read back", func(t *testing.T) {
		user := newTestUser("alice")
		assert.NoError(t, writer.Save(ctx, user))

		got, err := reader.GetByUsername(ctx, user.Username)
		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, user.Email, got.Email)
		assert.False(t, got.EmailVerified)
		assert.NotNil(t, got.VerificationToken)
		assert.Equal(t, *user.VerificationToken, *got.VerificationToken)

		byEmail, err := reader.GetByEmail(ctx, user.Email)
		assert.NoError(t, err)
		assert.NotNil(t, byEmail)
		assert.Equal(t, user.ID, byEmail.ID)

		either, err := reader.GetByUsernameOrEmail(ctx, user.Username, "nobody@example.com")
		assert.NoError(t, err)
		assert.NotNil(t, either)
		assert.Equal(t, user.ID, either.ID)
	})

	t.Run("Missing user returns nil without error", func(t *testing.T) {
		got, err := reader.GetByUsername(ctx, "nobody")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("MarkVerified consumes the token exactly once", func(t *testing.T) {
		user := newTestUser("bob")
		assert.NoError(t, writer.Save(ctx, user))

		matched, err := writer.MarkVerified(ctx, *user.VerificationToken, time.Now().UTC())
		assert.NoError(t, err)
		assert.True(t, matched)

		got, err := reader.GetByUsername(ctx, user.Username)
		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.True(t, got.EmailVerified)
		assert.Nil(t, got.VerificationToken)
		assert.NotNil(t, got.VerifiedAt)

		// A consumed token behaves exactly like a wrong one.
		matched, err = writer.MarkVerified(ctx, *user.VerificationToken, time.Now().UTC())
		assert.NoError(t, err)
		assert.False(t, matched)
	})

	t.Run("MarkVerified with unknown token", func(t *testing.T) {
		matched, err := writer.MarkVerified(ctx, "no-such-token", time.Now().UTC())
		assert.NoError(t, err)
		assert.False(t, matched)
	})

	t.Run("SetVerificationToken overwrites the previous token", func(t *testing.T) {
		user := newTestUser("carol")
		assert.NoError(t, writer.Save(ctx, user))

		oldToken := *user.VerificationToken
		assert.NoError(t, writer.SetVerificationToken(ctx, user.Email, "fresh-token"))

		got, err := reader.GetByVerificationToken(ctx, "fresh-token")
		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.Equal(t, user.ID, got.ID)

		stale, err := reader.GetByVerificationToken(ctx, oldToken)
		assert.NoError(t, err)
		assert.Nil(t, stale)

		matched, err := writer.MarkVerified(ctx, oldToken, time.Now().UTC())
		assert.NoError(t, err)
		assert.False(t, matched)
	})
}
