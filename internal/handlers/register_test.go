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

func TestRegisterHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name          string
		reqBody       RegisterRequest
		mockSetup     func(m *MockRegisterer)
		expectedCode  int
		expectedError string
		rawBody       string // if set, sent as-is to simulate invalid JSON
	}{
		{
			name:    "success",
			reqBody: RegisterRequest{Username: "john", Password: "secret", Email: "john@example.com"},
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().
					Register(gomock.Any(), "john", "secret", "john@example.com").
					Return("user-id-1", nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:    "user already exists",
			reqBody: RegisterRequest{Username: "alice", Password: "pass", Email: "alice@example.com"},
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().
					Register(gomock.Any(), "alice", "pass", "alice@example.com").
					Return("", services.ErrUserAlreadyExists)
			},
			expectedCode:  http.StatusConflict,
			expectedError: "Username or email already exists",
		},
		{
			name:    "internal server error",
			reqBody: RegisterRequest{Username: "bob", Password: "pass", Email: "bob@example.com"},
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().
					Register(gomock.Any(), "bob", "pass", "bob@example.com").
					Return("", errors.New("database failure"))
			},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Internal server error",
		},
		{
			name:          "missing fields",
			reqBody:       RegisterRequest{Username: "john"},
			expectedCode:  http.StatusBadRequest,
			expectedError: "username, password and email are required",
		},
		{
			name:          "invalid json",
			rawBody:       "{invalid json}",
			expectedCode:  http.StatusBadRequest,
			expectedError: "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockRegisterer(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			handler := NewRegisterHandler(mockSvc)

			var body *bytes.Buffer
			if tt.rawBody != "" {
				body = bytes.NewBufferString(tt.rawBody)
			} else {
				raw, _ := json.Marshal(tt.reqBody)
				body = bytes.NewBuffer(raw)
			}

			req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			if tt.expectedError != "" {
				var resp ErrorResponse
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Error)
			} else {
				var resp RegisterResponse
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "user-id-1", resp.UserID)
				assert.Contains(t, resp.Message, "verify")
			}
		})
	}
}
