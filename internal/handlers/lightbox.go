package handlers

import (
	"strconv"

	"nsam.in/catalog-web/internal/i18n"
	"nsam.in/catalog-web/internal/lightbox"
)

// LightboxView describes the overlay for the template.
type LightboxView struct {
	Visible  bool
	Src      string
	Alt      string
	Index    int
	Count    int
	HasMany  bool
	Position string
	Close    string
	Next     string
	Prev     string

	CSRFToken string
}

// BuildLightboxView projects the viewer state. A closed viewer still renders the hidden
// overlay so key bindings and swaps have a stable target.
func BuildLightboxView(v *lightbox.Viewer, text i18n.PageText) LightboxView {
	view := LightboxView{
		Visible: v.State() == lightbox.Open,
		Index:   v.Index(),
		Count:   v.Len(),
		HasMany: v.Len() > 1,
		Close:   text.Close,
		Next:    text.Next,
		Prev:    text.Prev,
	}
	if src, ok := v.Current(); ok {
		view.Src = src
		view.Alt = text.Title
	}
	if view.Count > 0 {
		view.Position = strconv.Itoa(view.Index+1) + " / " + strconv.Itoa(view.Count)
	}
	return view
}
