package middleware

import (
	"net/http"
	"strings"

	"nsam.in/catalog-web/internal/catalog"
)

// Category stores a `category` query selection in the session. The selection persists
// across language switches and full-page reloads.
func Category(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query(); q.Has("category") {
			s := GetSession(r)
			c := strings.TrimSpace(q.Get("category"))
			if c == "" {
				c = catalog.AllCategories
			}
			if s.Category != c {
				s.Category = c
				s.MarkDirty()
			}
		}
		next.ServeHTTP(w, r)
	})
}

// SelectedCategory returns the active category, defaulting to All.
func SelectedCategory(r *http.Request) string {
	if s := GetSession(r); s.Category != "" {
		return s.Category
	}
	return catalog.AllCategories
}
