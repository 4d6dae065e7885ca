package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"nsam.in/catalog-web/internal/catalog"
	"nsam.in/catalog-web/internal/config"
	"nsam.in/catalog-web/internal/i18n"
	mw "nsam.in/catalog-web/internal/middleware"
	"nsam.in/catalog-web/internal/order"
	"nsam.in/catalog-web/internal/thumbs"
)

func testProducts() []catalog.Product {
	return []catalog.Product{
		{SKU: "OIL-001", NameEN: "Groundnut Oil", NameTA: "கடலை எண்ணெய்", Category: "Oils", Price: 450, Unit: "1L",
			Images: catalog.ImageList{"images/oil-1.jpg", "images/oil-2.jpg"}},
		{SKU: "MAS-001", NameEN: "Sambar Powder", NameTA: "சாம்பார் பொடி", Category: "Masalas", Price: 1250, Unit: "1kg",
			Image: "images/sambar.jpg"},
		{SKU: "OIL-002", NameEN: "Sesame Oil", Category: "Oils", Price: 520, Unit: "1L"},
	}
}

// newTestServer builds a server like main(), with the store populated from products or failed with loadErr.
func newTestServer(t *testing.T, products []catalog.Product, loadErr error) *httptest.Server {
	t.Helper()
	// ensure templates reparse each request and set correct paths
	devMode = true
	templatesDir = "../../templates"
	publicDir = "../../public"
	_, err := parseTemplates()
	require.NoError(t, err, "parseTemplates")

	i18nBundle, err = i18n.Load("../../locales", "en", []string{"en", "ta"})
	require.NoError(t, err, "load i18n")

	logger = zap.NewNop()
	store = catalog.NewStore()
	if loadErr != nil {
		require.NoError(t, store.Fail(loadErr))
	} else {
		require.NoError(t, store.Set(products))
	}
	orders = order.NewBuilder("", "", "")
	thumbSvc = thumbs.New(publicDir, 0)
	siteCfg = config.SiteConfig{Shop: "NSAM", BaseURL: "https://nsam.example"}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.HTMX)
	r.Use(mw.Logger(logger))
	r.Use(chimw.Recoverer)
	mountRoutes(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

type testClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, ts *httptest.Server) *testClient {
	t.Helper()
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	require.NoError(t, err)
	return &testClient{
		t:    t,
		base: ts.URL,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *testClient) do(req *http.Request) (*http.Response, []byte) {
	c.t.Helper()
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, body
}

func (c *testClient) get(path string, htmx bool) (*http.Response, []byte) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.base+path, nil)
	require.NoError(c.t, err)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return c.do(req)
}

// post sends an htmx form post carrying the session's CSRF token.
func (c *testClient) post(path string, form url.Values) (*http.Response, []byte) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	req.Header.Set(mw.CSRFHeader, c.csrfToken())
	return c.do(req)
}

func (c *testClient) csrfToken() string {
	c.t.Helper()
	u, err := url.Parse(c.base)
	require.NoError(c.t, err)
	for _, ck := range c.http.Jar.Cookies(u) {
		if ck.Name == "csrf_token" {
			return ck.Value
		}
	}
	c.t.Fatalf("no csrf cookie; fetch a page first")
	return ""
}

func parseHTML(t *testing.T, body []byte) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestHealthzOK(t *testing.T) {
	ts := newTestServer(t, testProducts(), nil)
	resp, body := newClient(t, ts).get("/healthz", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", strings.TrimSpace(string(body)))
}

func TestCatalogPageRendersCards(t *testing.T) {
	ts := newTestServer(t, testProducts(), nil)
	resp, body := newClient(t, ts).get("/", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := parseHTML(t, body)
	require.Equal(t, 3, doc.Find("#grid .card").Length())
	require.Equal(t, "₹450.00 / 1L", strings.TrimSpace(doc.Find("#card-OIL-001 .card-price").Text()))
	require.Equal(t, "₹1,250.00 / 1kg", strings.TrimSpace(doc.Find("#card-MAS-001 .card-price").Text()))

	filters := doc.Find("#filters .filter")
	require.Equal(t, 3, filters.Length())
	require.Equal(t, "All", strings.TrimSpace(filters.First().Text()))
	require.True(t, filters.First().HasClass("active"))

	// only the multi-image product gets a thumbnail strip
	require.Equal(t, 2, doc.Find("#card-OIL-001 .thumb").Length())
	require.Equal(t, 0, doc.Find("#card-MAS-001 .thumbs").Length())
	require.Equal(t, 0, doc.Find("#card-OIL-002 .card-main").Length())

	orderLink := doc.Find("#card-OIL-001 a.order")
	href, _ := orderLink.Attr("href")
	require.True(t, strings.HasPrefix(href, "https://wa.me/919944291896?text=Hello%20NSAM"), href)
	target, _ := orderLink.Attr("target")
	require.Equal(t, "_blank", target)

	_, disabled := doc.Find("#lang-select").Attr("disabled")
	require.False(t, disabled, "language control should be enabled after load")

	hidden, _ := doc.Find("#lightbox").Attr("aria-hidden")
	require.Equal(t, "true", hidden)
	require.Equal(t, 2, doc.Find(`script[type="application/ld+json"]`).Length())
}

func TestLanguageSelectionPersists(t *testing.T) {
	ts := newTestServer(t, testProducts(), nil)
	c := newClient(t, ts)

	_, body := c.get("/?hl=ta", false)
	doc := parseHTML(t, body)
	require.Equal(t, "கடலை எண்ணெய்", strings.TrimSpace(doc.Find("#card-OIL-001 .card-name").Text()))
	// blank Tamil name falls back to English
	require.Equal(t, "Sesame Oil", strings.TrimSpace(doc.Find("#card-OIL-002 .card-name").Text()))
	lang, _ := doc.Find("html").Attr("lang")
	require.Equal(t, "ta", lang)

	_, body = c.get("/", false)
	doc = parseHTML(t, body)
	require.Equal(t, "சாம்பார் பொடி", strings.TrimSpace(doc.Find("#card-MAS-001 .card-name").Text()))
	selected, _ := doc.Find("#lang-select option[selected]").Attr("value")
	require.Equal(t, "ta", selected)

	_, body = c.get("/?hl=xx", false)
	doc = parseHTML(t, body)
	require.Equal(t, "Groundnut Oil", strings.TrimSpace(doc.Find("#card-OIL-001 .card-name").Text()))
}

func TestFirstVisitIgnoresAcceptLanguage(t *testing.T) {
	ts := newTestServer(t, testProducts(), nil)
	c := newClient(t, ts)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Language", "ta")
	resp, body := c.do(req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := parseHTML(t, body)
	lang, _ := doc.Find("html").Attr("lang")
	require.Equal(t, "en", lang)
	require.Equal(t, "Groundnut Oil", strings.TrimSpace(doc.Find("#card-OIL-001 .card-name").Text()))
}

func TestCategoryFragmentFiltersGrid(t *testing.T) {
	ts := newTestServer(t, testProducts(), nil)
	c := newClient(t, ts)

	resp, body := c.get("/fragments/catalog?category=Oils", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/?category=Oils&hl=en", resp.Header.Get("HX-Push-Url"))
	doc := parseHTML(t, body)
	require.Equal(t, 2, doc.Find(".card").Length())
	require.True(t, doc.Find(`.filter[data-category="Oils"]`).HasClass("active"))
	require.False(t, doc.Find(`.filter[data-category="All"]`).HasClass("active"))

	// selection survives a full reload and a language switch
	_, body = c.get("/?hl=ta", false)
	doc = parseHTML(t, body)
	require.Equal(t, 2, doc.Find("#grid .card").Length())
	require.True(t, doc.Find(`.filter[data-category="Oils"]`).HasClass("active"))

	_, body = c.get("/fragments/catalog?category=Spices", true)
	doc = parseHTML(t, body)
	require.Equal(t, 0, doc.Find(".card").Length())
	require.Equal(t, 1, doc.Find(".empty").Length())
	require.Equal(t, 0, doc.Find(".filter.active").Length())
}

func TestLoadFailureShowsNotice(t *testing.T) {
	ts := newTestServer(t, nil, &catalog.LoadFailure{Source: "products.json", Status: 404})
	resp, body := newClient(t, ts).get("/", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := parseHTML(t, body)
	require.Equal(t, 0, doc.Find(".card").Length())
	notice := doc.Find("#grid .notice")
	require.Equal(t, 1, notice.Length())
	require.Contains(t, notice.Text(), "Could not load products.")
	codes := notice.Find("code")
	require.Equal(t, 2, codes.Length())
	require.Equal(t, "products.json", codes.Eq(0).Text())
	require.Equal(t, "index.html", codes.Eq(1).Text())

	_, disabled := doc.Find("#lang-select").Attr("disabled")
	require.True(t, disabled, "language control should stay disabled")
	require.Equal(t, 1, doc.Find("#filters .filter").Length())
}

func TestLightboxFlow(t *testing.T) {
	ts := newTestServer(t, testProducts(), nil)
	c := newClient(t, ts)
	c.get("/", false)

	resp, body := c.post("/lightbox/open", url.Values{"sku": {"OIL-001"}, "img": {"1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("HX-Trigger"), `"open":true`)
	doc := parseHTML(t, body)
	hidden, _ := doc.Find("#lightbox").Attr("aria-hidden")
	require.Equal(t, "false", hidden)
	src, _ := doc.Find(".lightbox-image").Attr("src")
	require.Equal(t, "images/oil-2.jpg", src)

	// wraps to the first image
	_, body = c.post("/lightbox/next", nil)
	src, _ = parseHTML(t, body).Find(".lightbox-image").Attr("src")
	require.Equal(t, "images/oil-1.jpg", src)

	_, body = c.post("/lightbox/key", url.Values{"key": {"ArrowLeft"}})
	src, _ = parseHTML(t, body).Find(".lightbox-image").Attr("src")
	require.Equal(t, "images/oil-2.jpg", src)

	// clicks on the image itself are ignored
	resp, _ = c.post("/lightbox/click", url.Values{"target": {"image"}})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// the full page reflects the open overlay
	_, body = c.get("/", false)
	doc = parseHTML(t, body)
	require.True(t, doc.Find("body").HasClass("no-scroll"))

	resp, body = c.post("/lightbox/key", url.Values{"key": {"Escape"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("HX-Trigger"), `"open":false`)
	hidden, _ = parseHTML(t, body).Find("#lightbox").Attr("aria-hidden")
	require.Equal(t, "true", hidden)

	// keys are ignored while closed
	resp, _ = c.post("/lightbox/key", url.Values{"key": {"ArrowRight"}})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = c.post("/lightbox/next", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body = c.get("/", false)
	require.False(t, parseHTML(t, body).Find("body").HasClass("no-scroll"))
}

func TestLightboxOpenEmptyStaysClosed(t *testing.T) {
	ts := newTestServer(t, testProducts(), nil)
	c := newClient(t, ts)
	c.get("/", false)

	resp, body := c.post("/lightbox/open", url.Values{"sku": {"OIL-002"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	hidden, _ := parseHTML(t, body).Find("#lightbox").Attr("aria-hidden")
	require.Equal(t, "true", hidden)
}

func TestBackdropClickCloses(t *testing.T) {
	ts := newTestServer(t, testProducts(), nil)
	c := newClient(t, ts)
	c.get("/", false)
	c.post("/lightbox/open", url.Values{"sku": {"MAS-001"}})

	resp, body := c.post("/lightbox/click", url.Values{"target": {"backdrop"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	hidden, _ := parseHTML(t, body).Find("#lightbox").Attr("aria-hidden")
	require.Equal(t, "true", hidden)
}

func TestThumbnailClickLeavesLightboxAlone(t *testing.T) {
	ts := newTestServer(t, testProducts(), nil)
	c := newClient(t, ts)
	c.get("/", false)
	c.post("/lightbox/open", url.Values{"sku": {"OIL-001"}, "img": {"0"}})

	resp, body := c.get("/cards/OIL-001?img=1", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := parseHTML(t, body)
	src, _ := doc.Find(".card-main img").Attr("src")
	require.Equal(t, "images/oil-2.jpg", src)
	require.True(t, doc.Find(".thumb").Eq(1).HasClass("active"))
	img, _ := doc.Find(`.card-open input[name="img"]`).Attr("value")
	require.Equal(t, "1", img)

	_, body = c.get("/lightbox", true)
	src, _ = parseHTML(t, body).Find(".lightbox-image").Attr("src")
	require.Equal(t, "images/oil-1.jpg", src)
}

func TestCardFragmentUnknownSKU(t *testing.T) {
	ts := newTestServer(t, testProducts(), nil)
	resp, _ := newClient(t, ts).get("/cards/NOPE", true)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOrderQR(t *testing.T) {
	ts := newTestServer(t, testProducts(), nil)
	c := newClient(t, ts)

	resp, body := c.get("/order/OIL-001/qr.png", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	require.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))

	resp, _ = c.get("/order/NOPE/qr.png", false)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLightboxPostRequiresCSRF(t *testing.T) {
	ts := newTestServer(t, testProducts(), nil)
	c := newClient(t, ts)
	c.get("/", false)

	req, err := http.NewRequest(http.MethodPost, c.base+"/lightbox/open", strings.NewReader("sku=OIL-001"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, _ := c.do(req)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPlainFormPostRedirects(t *testing.T) {
	ts := newTestServer(t, testProducts(), nil)
	c := newClient(t, ts)
	c.get("/", false)

	form := url.Values{"sku": {"OIL-001"}, "img": {"1"}, "csrf_token": {c.csrfToken()}}
	req, err := http.NewRequest(http.MethodPost, c.base+"/lightbox/open", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, _ := c.do(req)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	_, body := c.get("/", false)
	src, _ := parseHTML(t, body).Find(".lightbox-image").Attr("src")
	require.Equal(t, "images/oil-2.jpg", src)
}

func TestLoadCatalogRecordsFailure(t *testing.T) {
	logger = zap.NewNop()
	store = catalog.NewStore()
	loadCatalog(context.Background(), catalog.NewLoader("testdata/missing.json"))
	require.False(t, store.Loaded())
	require.True(t, errors.Is(store.Err(), catalog.ErrLoadFailure))
}
