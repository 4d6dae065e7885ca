package handlers

import (
	"nsam.in/catalog-web/internal/i18n"
	"nsam.in/catalog-web/internal/seo"
)

// PageData is the view model for the catalog page layout.
type PageData struct {
	Title     string
	Lang      string
	SEO       seo.Meta
	Path      string
	CSRFToken string

	Text      i18n.PageText
	Languages []i18n.LanguageOption
	Catalog   CatalogView
	Lightbox  LightboxView
	// NoScroll marks the body while the lightbox overlay is shown.
	NoScroll bool
}
