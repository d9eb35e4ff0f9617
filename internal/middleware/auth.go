package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskdeck/taskdeck-backend/internal/models"
	"github.com/taskdeck/taskdeck-backend/internal/services"
	"github.com/taskdeck/taskdeck-backend/pkg/utils"
)

type contextKey int

const (
	userContextKey contextKey = iota
	tokenContextKey
)

// Authenticate resolves the request's bearer token to a user record and
// attaches the (user, token) pair to the request context. A token passes
// only when its signature verifies AND the exact string is still present in
// the user's token list, so logged-out tokens fail here. Every failure gets
// the same 401 body; callers can never tell a malformed token from a revoked
// one or a missing account.
func Authenticate(users services.UserStore, jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w)
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")

			userID, err := utils.VerifyToken(token, jwtSecret)
			if err != nil {
				unauthorized(w)
				return
			}

			id, err := primitive.ObjectIDFromHex(userID)
			if err != nil {
				unauthorized(w)
				return
			}

			user, err := users.FindByIDAndToken(r.Context(), id, token)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			ctx = context.WithValue(ctx, tokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user attached by Authenticate, or nil when the
// request did not pass the gate.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// TokenFromContext returns the raw bearer token attached by Authenticate.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "Please authenticate"})
}
