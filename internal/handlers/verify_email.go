package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/muddihilm/socapp/internal/logger"
	"github.com/muddihilm/socapp/internal/services"
)

// EmailVerifier defines the interface that the verification service must
// implement.
type EmailVerifier interface {
	VerifyEmail(ctx context.Context, token string) error
}

// verifiedPage is served on success so the emailed link works directly in a
// browser.
const verifiedPage = `<!DOCTYPE html>
<html>
<head>
	<title>Email Verified</title>
	<style>
		body { font-family: Arial, sans-serif; text-align: center; padding: 50px; }
		.success { color: green; font-size: 24px; }
		.message { margin: 20px 0; }
	</style>
</head>
<body>
	<div class="success">Email Verified Successfully!</div>
	<div class="message">You can now log in to your account.</div>
	<a href="/">Return to Home</a>
</body>
</html>
`

// NewVerifyEmailHandler returns an HTTP handler for consuming a
// verification token.
// @Summary Verify email address
// @Description Consumes a one-time verification token from the emailed link. A consumed token cannot be reused.
// @Tags auth
// @Produce html
// @Param token query string true "Verification token"
// @Success 200 {string} string "HTML confirmation page"
// @Failure 400 {object} handlers.ErrorResponse "Invalid verification token"
// @Router /auth/verify-email [get]
func NewVerifyEmailHandler(svc EmailVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")

		if err := svc.VerifyEmail(r.Context(), token); err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidVerificationToken):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(ErrorResponse{
					Error: "Invalid verification token",
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

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(verifiedPage))
	}
}
