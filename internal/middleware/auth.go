package middleware

import (
	"net/http"
)

// Auth hydrates the request context with the signed-in user from the session.
// The token stays opaque here; the backend rejects it if it has expired.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s := GetSession(r); s.SignedIn() {
			r = r.WithContext(WithUser(r.Context(), &User{ID: s.UserID, Token: s.Token}))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser redirects unauthenticated requests to the login page.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
