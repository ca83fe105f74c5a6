package auth

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
)

// SessionName is the cookie holding the signed-in user's session.
const SessionName = "bboard_session"

type contextKey string

const userIDKey contextKey = "userID"

// UserID returns the signed-in user's id from the request context.
func UserID(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDKey).(uint)
	return id, ok
}

// WithUserID is used by login handlers and tests to stamp the context.
func WithUserID(ctx context.Context, id uint) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// Middleware loads the session and, when a user id is present, puts it
// into the request context. When required is true, requests without a
// session are redirected to the login page.
func Middleware(store sessions.Store, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, SessionName)
			if err != nil {
				// a stale or tampered cookie reads as signed out
				session, _ = store.New(r, SessionName)
			}
			userID, ok := session.Values["user_id"].(uint)
			if !ok || userID == 0 {
				if required {
					http.Redirect(w, r, "/login", http.StatusFound)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
