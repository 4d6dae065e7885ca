package main

import (
	"encoding/json"
	"net/http"

	handlersPkg "nsam.in/catalog-web/internal/handlers"
	"nsam.in/catalog-web/internal/lightbox"
	mw "nsam.in/catalog-web/internal/middleware"
)

type lightboxActionFunc func(v *lightbox.Viewer, r *http.Request) bool

func actionNext(v *lightbox.Viewer, _ *http.Request) bool {
	if !v.Visible() {
		return false
	}
	v.Next()
	return true
}

func actionPrev(v *lightbox.Viewer, _ *http.Request) bool {
	if !v.Visible() {
		return false
	}
	v.Prev()
	return true
}

func actionClose(v *lightbox.Viewer, _ *http.Request) bool {
	if !v.Visible() {
		return false
	}
	v.Close()
	return true
}

func actionKey(v *lightbox.Viewer, r *http.Request) bool {
	return v.HandleKey(r.FormValue("key"))
}

func actionClick(v *lightbox.Viewer, r *http.Request) bool {
	return v.HandleClick(lightbox.ParseTarget(r.FormValue("target")))
}

// LightboxFrag renders the overlay from the session state.
func LightboxFrag(w http.ResponseWriter, r *http.Request) {
	renderLightbox(w, r, mw.GetSession(r).Viewer())
}

// LightboxOpenHandler opens the overlay on a product's images at the requested index.
func LightboxOpenHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	p, ok := store.Lookup(r.FormValue("sku"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	s := mw.GetSession(r)
	v := s.Viewer()
	v.Open(p.ImageSequence(), atoiDefault(r.FormValue("img"), 0))
	s.SaveViewer(v)
	respondLightbox(w, r, v)
}

// lightboxAction applies fn to the session viewer. Unchanged state answers 204 so htmx
// leaves the overlay alone.
func lightboxAction(fn lightboxActionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		s := mw.GetSession(r)
		v := s.Viewer()
		if !fn(v, r) {
			if mw.IsHTMX(r.Context()) {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.SaveViewer(v)
		respondLightbox(w, r, v)
	}
}

// respondLightbox returns the overlay fragment to htmx, or redirects plain form posts
// back to the page.
func respondLightbox(w http.ResponseWriter, r *http.Request, v *lightbox.Viewer) {
	if !mw.IsHTMX(r.Context()) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	payload := map[string]any{"lightbox:toggle": map[string]bool{"open": v.Visible()}}
	if raw, err := json.Marshal(payload); err == nil {
		w.Header().Set("HX-Trigger", string(raw))
	}
	renderLightbox(w, r, v)
}

func renderLightbox(w http.ResponseWriter, r *http.Request, v *lightbox.Viewer) {
	view := handlersPkg.BuildLightboxView(v, i18nBundle.Page(mw.Lang(r)))
	view.CSRFToken = mw.CSRFToken(r)
	renderTemplate(w, r, "frag_lightbox", view)
}
