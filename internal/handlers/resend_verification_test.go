package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/muddihilm/socapp/internal/services"
)

func TestResendVerificationHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name          string
		reqBody       ResendVerificationRequest
		mockSetup     func(m *MockVerificationResender)
		expectedCode  int
		expectedError string
		rawBody       string
	}{
		{
			name:    "success",
			reqBody: ResendVerificationRequest{Email: "john@example.com"},
			mockSetup: func(m *MockVerificationResender) {
				m.EXPECT().
					ResendVerification(gomock.Any(), "john@example.com").
					Return(nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:    "user not found",
			reqBody: ResendVerificationRequest{Email: "ghost@example.com"},
			mockSetup: func(m *MockVerificationResender) {
				m.EXPECT().
					ResendVerification(gomock.Any(), "ghost@example.com").
					Return(services.ErrUserNotFound)
			},
			expectedCode:  http.StatusNotFound,
			expectedError: "User not found",
		},
		{
			name:    "already verified",
			reqBody: ResendVerificationRequest{Email: "done@example.com"},
			mockSetup: func(m *MockVerificationResender) {
				m.EXPECT().
					ResendVerification(gomock.Any(), "done@example.com").
					Return(services.ErrAlreadyVerified)
			},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Email is already verified",
		},
		{
			name:    "throttled",
			reqBody: ResendVerificationRequest{Email: "eager@example.com"},
			mockSetup: func(m *MockVerificationResender) {
				m.EXPECT().
					ResendVerification(gomock.Any(), "eager@example.com").
					Return(services.ErrResendThrottled)
			},
			expectedCode:  http.StatusTooManyRequests,
			expectedError: "Verification email was requested too recently",
		},
		{
			name:    "internal server error",
			reqBody: ResendVerificationRequest{Email: "john@example.com"},
			mockSetup: func(m *MockVerificationResender) {
				m.EXPECT().
					ResendVerification(gomock.Any(), "john@example.com").
					Return(errors.New("database failure"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Internal server error",
		},
		{
			name:          "missing email",
			reqBody:       ResendVerificationRequest{},
			expectedCode:  http.StatusBadRequest,
			expectedError: "email is required",
		},
		{
			name:          "invalid json",
			rawBody:       "{invalid json}",
			expectedCode:  http.StatusBadRequest,
			expectedError: "email is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockVerificationResender(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			handler := NewResendVerificationHandler(mockSvc)

			var body *bytes.Buffer
			if tt.rawBody != "" {
				body = bytes.NewBufferString(tt.rawBody)
			} else {
				raw, _ := json.Marshal(tt.reqBody)
				body = bytes.NewBuffer(raw)
			}

			req := httptest.NewRequest(http.MethodPost, "/auth/resend-verification", body)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			if tt.expectedError != "" {
				var resp ErrorResponse
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Error)
			} else {
				var resp ResendVerificationResponse
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "Verification email sent successfully!", resp.Message)
			}
		})
	}
}
