package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/muddihilm/socapp/internal/logger"
	"github.com/muddihilm/socapp/internal/models"
)

// Error variables
var (
	ErrUserAlreadyExists        = errors.New("username or email already exists")
	ErrInvalidCredentials       = errors.New("invalid username or password")
	ErrEmailNotVerified         = errors.New("email is not verified")
	ErrInvalidVerificationToken = errors.New("invalid verification token")
	ErrAlreadyVerified          = errors.New("email is already verified")
	ErrUserNotFound             = errors.New("user not found")
	ErrResendThrottled          = errors.New("verification email requested too recently")
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, user models.User) error
	MarkVerified(ctx context.Context, token string, verifiedAt time.Time) (bool, error)
	SetVerificationToken(ctx context.Context, email, token string) error
}

// TokenIssuer issues session tokens keyed on the username.
type TokenIssuer interface {
	Generate(ctx context.Context, username string) (string, error)
}

// EmailDispatcher schedules a verification email without blocking the
// caller. Delivery is at-most-once; failures are logged, never surfaced.
type EmailDispatcher interface {
	Dispatch(to, verificationURL string)
}

// ResendLimiter rate-limits verification reissues per email address.
type ResendLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
}

// AuthService handles registration, the email-verification lifecycle and
// login.
type AuthService struct {
	reader  UserReader
	writer  UserWriter
	jwt     TokenIssuer
	mail    EmailDispatcher
	limiter ResendLimiter
	baseURL string
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, jwt TokenIssuer, mail EmailDispatcher, limiter ResendLimiter, baseURL string) *AuthService {
	return &AuthService{
		reader:  reader,
		writer:  writer,
		jwt:     jwt,
		mail:    mail,
		limiter: limiter,
		baseURL: baseURL,
	}
}

// newVerificationToken returns a URL-safe single-use token with 32 bytes of
// randomness.
func newVerificationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate verification token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (svc *AuthService) verificationURL(token string) string {
	return fmt.Sprintf("%s/auth/verify-email?token=%s", svc.baseURL, token)
}

// Register creates an unverified user with a fresh verification token and
// schedules the verification email. The HTTP response does not wait for
// delivery.
func (svc *AuthService) Register(ctx context.Context, username, password, email string) (string, error) {
	existing, err := svc.reader.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return "", err
	}
	if existing != nil {
		logger.Log.Errorw("user already exists", "username", username, "email", email)
		return "", ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return "", err
	}

	token, err := newVerificationToken()
	if err != nil {
		logger.Log.Errorw("failed to generate verification token", "err", err)
		return "", err
	}

	user := models.User{
		ID:                uuid.NewString(),
		Username:          username,
		Email:             email,
		PasswordHash:      string(hashedPassword),
		EmailVerified:     false,
		VerificationToken: &token,
		CreatedAt:         time.Now().UTC(),
	}

	if err := svc.writer.Save(ctx, user); err != nil {
		logger.Log.Errorw("failed to save user", "err", err)
		return "", err
	}

	svc.mail.Dispatch(email, svc.verificationURL(token))

	return user.ID, nil
}

// VerifyEmail consumes a verification token. The transition is terminal: a
// consumed token never matches again, so a second call fails the same way a
// wrong token does.
func (svc *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidVerificationToken
	}

	verified, err := svc.writer.MarkVerified(ctx, token, time.Now().UTC())
	if err != nil {
		logger.Log.Errorw("failed to mark user verified", "err", err)
		return err
	}
	if !verified {
		return ErrInvalidVerificationToken
	}

	return nil
}

// ResendVerification reissues a token for an unverified email, overwriting
// any prior one, and schedules a new verification email.
func (svc *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user by email", "err", err)
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.EmailVerified {
		return ErrAlreadyVerified
	}

	if svc.limiter != nil {
		allowed, err := svc.limiter.Allow(ctx, email)
		if err != nil {
			// Throttling is best-effort: a limiter outage must not block resends.
			logger.Log.Errorw("resend limiter unavailable", "email", email, "err", err)
		} else if !allowed {
			return ErrResendThrottled
		}
	}

	token, err := newVerificationToken()
	if err != nil {
		logger.Log.Errorw("failed to generate verification token", "err", err)
		return err
	}

	if err := svc.writer.SetVerificationToken(ctx, email, token); err != nil {
		logger.Log.Errorw("failed to set verification token", "err", err)
		return err
	}

	svc.mail.Dispatch(email, svc.verificationURL(token))

	return nil
}

// Login authenticates a user and returns a session token. Unknown username
// and wrong password produce the same error so usernames cannot be
// enumerated; an unverified email is a distinct failure.
func (svc *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", err
	}
	if user == nil {
		logger.Log.Errorw("user does not exist", "username", username)
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Errorw("invalid credentials", "username", username)
		return "", ErrInvalidCredentials
	}

	if !user.EmailVerified {
		logger.Log.Errorw("login blocked, email not verified", "username", username)
		return "", ErrEmailNotVerified
	}

	token, err := svc.jwt.Generate(ctx, user.Username)
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "err", err)
		return "", err
	}

	return token, nil
}

// GetCurrentUser returns the profile for an authenticated username.
func (svc *AuthService) GetCurrentUser(ctx context.Context, username string) (*models.User, error) {
	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to get current user", "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
