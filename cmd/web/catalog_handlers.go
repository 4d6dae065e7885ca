package main

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"nsam.in/catalog-web/internal/catalog"
	handlersPkg "nsam.in/catalog-web/internal/handlers"
	"nsam.in/catalog-web/internal/i18n"
	mw "nsam.in/catalog-web/internal/middleware"
	"nsam.in/catalog-web/internal/observability"
	"nsam.in/catalog-web/internal/seo"
)

// CatalogHandler renders the full catalog page.
func CatalogHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	text := i18nBundle.Page(lang)
	q := r.URL.Query()
	pick := handlersPkg.Pick{SKU: q.Get("pick"), Index: atoiDefault(q.Get("img"), 0)}
	view := buildCatalog(r, lang, text, pick)

	s := mw.GetSession(r)
	lb := handlersPkg.BuildLightboxView(s.Viewer(), text)
	lb.CSRFToken = mw.CSRFToken(r)

	vm := handlersPkg.PageData{
		Title:     text.Title,
		Lang:      lang,
		Path:      r.URL.Path,
		CSRFToken: mw.CSRFToken(r),
		Text:      text,
		Languages: i18nBundle.LanguageOptions(lang),
		Catalog:   view,
		Lightbox:  lb,
		NoScroll:  lb.Visible,
	}

	vm.SEO.Title = text.Title
	vm.SEO.Description = text.Subtitle
	vm.SEO.Canonical = canonicalURL(r, lang)
	vm.SEO.OG.URL = vm.SEO.Canonical
	vm.SEO.OG.SiteName = siteCfg.Shop
	vm.SEO.OG.Title = vm.SEO.Title
	vm.SEO.OG.Description = vm.SEO.Description
	vm.SEO.OG.Type = "website"
	vm.SEO.Alternates = buildAlternates(r)
	vm.SEO.JSONLD = append(vm.SEO.JSONLD, seo.JSON(seo.Store(siteCfg.Shop, siteCfg.BaseURL, i18nBundle.T(i18n.English, "store.address.plain"))))
	if view.JSONLD != "" {
		vm.SEO.JSONLD = append(vm.SEO.JSONLD, view.JSONLD)
	}

	renderPage(w, r, "catalog", vm)
}

// CatalogFrag renders the filters bar and grid regions for htmx swaps.
func CatalogFrag(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	view := buildCatalog(r, lang, i18nBundle.Page(lang), handlersPkg.Pick{})
	push := url.Values{}
	push.Set("category", view.Category)
	push.Set("hl", lang)
	w.Header().Set("HX-Push-Url", "/?"+push.Encode())
	renderTemplate(w, r, "frag_catalog", view)
}

// CardFrag re-renders one product card showing the image at ?img=i.
func CardFrag(w http.ResponseWriter, r *http.Request) {
	p, ok := store.Lookup(chi.URLParam(r, "sku"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	lang := mw.Lang(r)
	text := i18nBundle.Page(lang)
	card := handlersPkg.BuildCard(p, lang, mw.SelectedCategory(r), text, orders, atoiDefault(r.URL.Query().Get("img"), 0))
	card.CSRFToken = mw.CSRFToken(r)
	renderTemplate(w, r, "frag_card", card)
}

// OrderQRHandler serves the order deep link as a PNG QR code.
func OrderQRHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := store.Lookup(chi.URLParam(r, "sku"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	png, err := orders.QR(p, atoiDefault(r.URL.Query().Get("size"), 0))
	if err != nil {
		observability.FromContext(r.Context()).Error("order qr", zap.String("sku", p.SKU), zap.Error(err))
		http.Error(w, "qr unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(png)
}

func buildCatalog(r *http.Request, lang string, text i18n.PageText, pick handlersPkg.Pick) handlersPkg.CatalogView {
	return handlersPkg.BuildCatalogView(handlersPkg.CatalogInput{
		State: catalog.State{
			Products: store.Products(),
			Lang:     lang,
			Category: mw.SelectedCategory(r),
		},
		Loaded:    store.Loaded(),
		LoadErr:   store.Err(),
		Text:      text,
		Orders:    orders,
		Pick:      pick,
		CSRFToken: mw.CSRFToken(r),
	})
}

func buildAlternates(r *http.Request) []seo.Alternate {
	langs := i18nBundle.Supported()
	out := make([]seo.Alternate, 0, len(langs)+1)
	for _, l := range langs {
		out = append(out, seo.Alternate{Href: canonicalURL(r, l), Hreflang: l})
	}
	out = append(out, seo.Alternate{Href: canonicalURL(r, i18nBundle.Fallback()), Hreflang: "x-default"})
	return out
}

// canonicalURL prefers the configured base URL and falls back to the request host.
func canonicalURL(r *http.Request, lang string) string {
	base := siteCfg.BaseURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return base + "/?hl=" + url.QueryEscape(lang)
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
