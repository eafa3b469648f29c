package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/muddihilm/socapp/internal/models"
	"github.com/muddihilm/socapp/internal/services"
)

const baseURL = "http://localhost:8080"

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockJWT := services.NewMockTokenIssuer(ctrl)
	mockMail := services.NewMockEmailDispatcher(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockJWT, mockMail, nil, baseURL)

	tests := []struct {
		name         string
		username     string
		password     string
		email        string
		existingUser *models.User
		readerErr    error
		writerErr    error
		wantErr      error
	}{
		{
			name:     "successful registration",
			username: "alice",
			password: "pass123",
			email:    "alice@example.com",
		},
		{
			name:         "user already exists",
			username:     "bob",
			password:     "pass123",
			email:        "bob@example.com",
			existingUser: &models.User{ID: uuid.NewString(), Username: "bob"},
			wantErr:      services.ErrUserAlreadyExists,
		},
		{
			name:      "reader error",
			username:  "eve",
			password:  "pass123",
			email:     "eve@example.com",
			readerErr: errors.New("db error"),
			wantErr:   errors.New("db error"),
		},
		{
			name:      "writer error",
			username:  "carol",
			password:  "pass123",
			email:     "carol@example.com",
			writerErr: errors.New("save error"),
			wantErr:   errors.New("save error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader.EXPECT().
				GetByUsernameOrEmail(gomock.Any(), tt.username, tt.email).
				Return(tt.existingUser, tt.readerErr)

			var saved models.User
			if tt.existingUser == nil && tt.readerErr == nil {
				mockWriter.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, user models.User) error {
						saved = user
						return tt.writerErr
					})
			}
			if tt.wantErr == nil {
				mockMail.EXPECT().
					Dispatch(tt.email, gomock.Any()).
					Do(func(_, verificationURL string) {
						assert.True(t, strings.HasPrefix(verificationURL, baseURL+"/auth/verify-email?token="))
					})
			}

			userID, err := svc.Register(context.Background(), tt.username, tt.password, tt.email)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Empty(t, userID)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, saved.ID, userID)
			assert.False(t, saved.EmailVerified)
			assert.NotNil(t, saved.VerificationToken)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte(tt.password)))
		})
	}
}

func TestAuthService_VerifyEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockJWT := services.NewMockTokenIssuer(ctrl)
	mockMail := services.NewMockEmailDispatcher(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockJWT, mockMail, nil, baseURL)

	tests := []struct {
		name      string
		token     string
		matched   bool
		writerErr error
		skipCall  bool
		wantErr   error
	}{
		{
			name:    "successful verification",
			token:   "good-token",
			matched: true,
		},
		{
			name:     "empty token",
			token:    "",
			skipCall: true,
			wantErr:  services.ErrInvalidVerificationToken,
		},
		{
			name:    "unknown token",
			token:   "bad-token",
			matched: false,
			wantErr: services.ErrInvalidVerificationToken,
		},
		{
			name:    "already consumed token",
			token:   "used-token",
			matched: false,
			wantErr: services.ErrInvalidVerificationToken,
		},
		{
			name:      "writer error",
			token:     "good-token",
			writerErr: errors.New("db error"),
			wantErr:   errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.skipCall {
				mockWriter.EXPECT().
					MarkVerified(gomock.Any(), tt.token, gomock.Any()).
					Return(tt.matched, tt.writerErr)
			}

			err := svc.VerifyEmail(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthService_ResendVerification(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockJWT := services.NewMockTokenIssuer(ctrl)
	mockMail := services.NewMockEmailDispatcher(ctrl)
	mockLimiter := services.NewMockResendLimiter(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockJWT, mockMail, mockLimiter, baseURL)

	email := "alice@example.com"

	tests := []struct {
		name       string
		user       *models.User
		readerErr  error
		allowed    bool
		limiterErr error
		skipLimit  bool
		setErr     error
		skipSet    bool
		wantErr    error
	}{
		{
			name:    "successful resend",
			user:    &models.User{ID: uuid.NewString(), Email: email},
			allowed: true,
		},
		{
			name:      "user not found",
			user:      nil,
			skipLimit: true,
			skipSet:   true,
			wantErr:   services.ErrUserNotFound,
		},
		{
			name:      "already verified",
			user:      &models.User{ID: uuid.NewString(), Email: email, EmailVerified: true},
			skipLimit: true,
			skipSet:   true,
			wantErr:   services.ErrAlreadyVerified,
		},
		{
			name:    "throttled",
			user:    &models.User{ID: uuid.NewString(), Email: email},
			allowed: false,
			skipSet: true,
			wantErr: services.ErrResendThrottled,
		},
		{
			name:       "limiter outage does not block",
			user:       &models.User{ID: uuid.NewString(), Email: email},
			limiterErr: errors.New("redis down"),
		},
		{
			name:      "reader error",
			readerErr: errors.New("db error"),
			skipLimit: true,
			skipSet:   true,
			wantErr:   errors.New("db error"),
		},
		{
			name:    "set token error",
			user:    &models.User{ID: uuid.NewString(), Email: email},
			allowed: true,
			setErr:  errors.New("db error"),
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader.EXPECT().
				GetByEmail(gomock.Any(), email).
				Return(tt.user, tt.readerErr)

			if !tt.skipLimit {
				mockLimiter.EXPECT().
					Allow(gomock.Any(), email).
					Return(tt.allowed, tt.limiterErr)
			}
			if !tt.skipSet {
				mockWriter.EXPECT().
					SetVerificationToken(gomock.Any(), email, gomock.Any()).
					Return(tt.setErr)
			}
			if tt.wantErr == nil {
				mockMail.EXPECT().Dispatch(email, gomock.Any())
			}

			err := svc.ResendVerification(context.Background(), email)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockJWT := services.NewMockTokenIssuer(ctrl)
	mockMail := services.NewMockEmailDispatcher(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockJWT, mockMail, nil, baseURL)

	password := "secret"
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	tests := []struct {
		name      string
		username  string
		loginPass string
		user      *models.User
		readerErr error
		jwtToken  string
		jwtErr    error
		skipJWT   bool
		wantErr   error
	}{
		{
			name:      "successful login",
			username:  "alice",
			loginPass: password,
			user:      &models.User{Username: "alice", PasswordHash: string(hashed), EmailVerified: true},
			jwtToken:  "token123",
		},
		{
			name:      "unknown username",
			username:  "ghost",
			loginPass: password,
			user:      nil,
			skipJWT:   true,
			wantErr:   services.ErrInvalidCredentials,
		},
		{
			name:      "wrong password",
			username:  "alice",
			loginPass: "wrong",
			user:      &models.User{Username: "alice", PasswordHash: string(hashed), EmailVerified: true},
			skipJWT:   true,
			wantErr:   services.ErrInvalidCredentials,
		},
		{
			name:      "unverified email is a distinct error",
			username:  "alice",
			loginPass: password,
			user:      &models.User{Username: "alice", PasswordHash: string(hashed), EmailVerified: false},
			skipJWT:   true,
			wantErr:   services.ErrEmailNotVerified,
		},
		{
			name:      "reader error",
			username:  "alice",
			loginPass: password,
			readerErr: errors.New("db error"),
			skipJWT:   true,
			wantErr:   errors.New("db error"),
		},
		{
			name:      "jwt error",
			username:  "alice",
			loginPass: password,
			user:      &models.User{Username: "alice", PasswordHash: string(hashed), EmailVerified: true},
			jwtErr:    errors.New("sign error"),
			wantErr:   errors.New("sign error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader.EXPECT().
				GetByUsername(gomock.Any(), tt.username).
				Return(tt.user, tt.readerErr)

			if !tt.skipJWT {
				mockJWT.EXPECT().
					Generate(gomock.Any(), tt.username).
					Return(tt.jwtToken, tt.jwtErr)
			}

			token, err := svc.Login(context.Background(), tt.username, tt.loginPass)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.jwtToken, token)
			}
		})
	}
}

func TestAuthService_GetCurrentUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockJWT := services.NewMockTokenIssuer(ctrl)
	mockMail := services.NewMockEmailDispatcher(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockJWT, mockMail, nil, baseURL)

	now := time.Now().UTC()

	t.Run("successful lookup", func(t *testing.T) {
		user := &models.User{ID: uuid.NewString(), Username: "alice", EmailVerified: true, CreatedAt: now}
		mockReader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(user, nil)

		got, err := svc.GetCurrentUser(context.Background(), "alice")
		assert.NoError(t, err)
		assert.Equal(t, user, got)
	})

	t.Run("user not found", func(t *testing.T) {
		mockReader.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(nil, nil)

		got, err := svc.GetCurrentUser(context.Background(), "ghost")
		assert.ErrorIs(t, err, services.ErrUserNotFound)
		assert.Nil(t, got)
	})

	t.Run("reader error", func(t *testing.T) {
		mockReader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(nil, errors.New("db error"))

		got, err := svc.GetCurrentUser(context.Background(), "alice")
		assert.EqualError(t, err, "db error")
		assert.Nil(t, got)
	})
}
