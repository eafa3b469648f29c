package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/muddihilm/socapp/internal/middlewares"
)

// NewMeHandler returns an HTTP handler for the caller's own profile. The
// password hash never serializes; the User model strips it.
// @Summary Current user profile
// @Description Returns the profile of the authenticated caller.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User "Caller profile"
// @Failure 401 "Missing or invalid session token"
// @Router /auth/users/me [get]
func NewMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middlewares.UserFromContext(r.Context())
		if user == nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(user)
	}
}
