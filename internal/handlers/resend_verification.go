package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/muddihilm/socapp/internal/logger"
	"github.com/muddihilm/socapp/internal/services"
)

// VerificationResender defines the interface that the verification service
// must implement.
type VerificationResender interface {
	ResendVerification(ctx context.Context, email string) error
}

// ResendVerificationRequest represents the JSON body for reissuing a
// verification email
// swagger:model ResendVerificationRequest
type ResendVerificationRequest struct {
	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`
}

// ResendVerificationResponse represents a successful resend response
// swagger:model ResendVerificationResponse
type ResendVerificationResponse struct {
	// Success message
	// default: Verification email sent successfully!
	Message string `json:"message"`
}

// NewResendVerificationHandler returns an HTTP handler for reissuing a
// verification token.
// @Summary Resend verification email
// @Description Issues a fresh token for an unverified email, replacing any prior one, and schedules a new verification email.
// @Tags auth
// @Accept json
// @Produce json
// @Param resendRequest body handlers.ResendVerificationRequest true "Resend request"
// @Success 200 {object} handlers.ResendVerificationResponse "Verification email scheduled"
// @Failure 400 {object} handlers.ErrorResponse "Email already verified / invalid request"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Failure 429 {object} handlers.ErrorResponse "Requested too recently"
// @Router /auth/resend-verification [post]
func NewResendVerificationHandler(svc VerificationResender) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResendVerificationRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ErrorResponse{
				Error: "email is required",
			})
			return
		}

		if err := svc.ResendVerification(r.Context(), req.Email); err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "User not found",
				})
			case errors.Is(err, services.ErrAlreadyVerified):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "Email is already verified",
				})
			case errors.Is(err, services.ErrResendThrottled):
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "Verification email was requested too recently",
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ResendVerificationResponse{
			Message: "Verification email sent successfully!",
		})
	}
}
