package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jheinrichs/remindme/model"
)

type contextKey int

const userContextKey contextKey = iota

// tokenAuth resolves "Authorization: Token <plaintext>" headers to a user
// and stores it on the request context.
func tokenAuth(tokens model.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const prefix = "Token "

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, prefix) {
				respondError(w, http.StatusUnauthorized, "authentication_required", "missing or malformed Authorization header")
				return
			}

			user, err := tokens.GetUserByToken(header[len(prefix):])
			if err != nil {
				if errors.Is(err, model.ErrNotFound) {
					respondError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
					return
				}
				respondError(w, http.StatusInternalServerError, "internal_error", "internal error")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
		})
	}
}

func userFrom(r *http.Request) model.User {
	user, _ := r.Context().Value(userContextKey).(model.User)
	return user
}
