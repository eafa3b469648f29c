package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/muddihilm/socapp/internal/logger"
)

// ResendLimiterRepository throttles verification-email reissues per address
// using Redis. The first request inside the window wins SET NX; later ones
// are rejected until the key expires.
type ResendLimiterRepository struct {
	client   *redis.Client
	interval time.Duration
}

// NewResendLimiterRepository creates a limiter with the given minimum
// interval between resends for one email.
func NewResendLimiterRepository(client *redis.Client, interval time.Duration) *ResendLimiterRepository {
	return &ResendLimiterRepository{
		client:   client,
		interval: interval,
	}
}

// Allow reports whether a verification email may be sent for this address.
func (r *ResendLimiterRepository) Allow(ctx context.Context, email string) (bool, error) {
	key := fmt.Sprintf("resend_verification:%s", email)

	ok, err := r.client.SetNX(ctx, key, "1", r.interval).Result()

	logger.Log.Infow("resend limiter",
		"key", key,
		"result", ok,
		"error", err,
	)

	if err != nil {
		return false, fmt.Errorf("resend limiter: %w", err)
	}
	return ok, nil
}
