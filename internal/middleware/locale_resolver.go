package middleware

import (
    "context"
    "net/http"
    "strings"

    "nsam.in/catalog-web/internal/i18n"
)

// Locale stores the visitor's explicit language choice (`hl` query) in the session and
// cookie `hl`. Without a choice the bundle default applies; Accept-Language is ignored.
func Locale(bundle *i18n.Bundle) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            // make fallback available to request context for helpers
            ctx := context.WithValue(r.Context(), ctxKeyLocaleFB, bundle.Fallback())
            r = r.WithContext(ctx)
            s := GetSession(r)
            // query override
            if q := strings.TrimSpace(r.URL.Query().Get("hl")); q != "" {
                q = bundle.Normalize(q)
                if s.Locale != q {
                    s.Locale = q
                    s.MarkDirty()
                }
                http.SetCookie(w, &http.Cookie{Name: "hl", Value: q, Path: "/", SameSite: http.SameSiteLaxMode})
            } else if s.Locale == "" {
                // an earlier explicit choice, otherwise the default language
                if c, err := r.Cookie("hl"); err == nil && c.Value != "" {
                    s.Locale = bundle.Normalize(c.Value)
                } else {
                    s.Locale = bundle.Fallback()
                }
                s.MarkDirty()
            } else if n := bundle.Normalize(s.Locale); n != s.Locale {
                s.Locale = n
                s.MarkDirty()
            }
            // surface Content-Language
            if s.Locale != "" {
                w.Header().Set("Content-Language", s.Locale)
            }
            next.ServeHTTP(w, r)
        })
    }
}

// Lang returns current lang from session or default "en".
func Lang(r *http.Request) string {
    if s := GetSession(r); s != nil && s.Locale != "" {
        return s.Locale
    }
    if v := r.Context().Value(ctxKeyLocaleFB); v != nil {
        if fb, ok := v.(string); ok && fb != "" {
            return fb
        }
    }
    return i18n.English
}
