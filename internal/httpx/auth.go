package httpx

import (
	"context"
	"net/http"
)

type ctxKey int

const userIDKey ctxKey = 0

// RequireUser trusts the opaque X-User-Id header set by the identity
// collaborator in front of this service. Requests without it get 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := r.Header.Get("X-User-Id")
		if uid == "" {
			writeJSON(w, http.StatusUnauthorized, errBody{Error: "not authenticated"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, uid)))
	})
}

func userID(r *http.Request) string {
	uid, _ := r.Context().Value(userIDKey).(string)
	return uid
}
