package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

const Realm = "Price List Admin"

// BasicAuth guards the price list admin area. An empty password disables
// access entirely.
func BasicAuth(username, password string) func(http.Handler) http.Handler {
	if password == "" {
		return func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Add("WWW-Authenticate", `Basic realm="`+Realm+`"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
			})
		}
	}

	return middleware.BasicAuth(Realm, map[string]string{username: password})
}
