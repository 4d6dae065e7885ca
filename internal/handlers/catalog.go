package handlers

import (
	"html/template"
	"net/url"
	"strconv"

	"nsam.in/catalog-web/internal/catalog"
	"nsam.in/catalog-web/internal/format"
	"nsam.in/catalog-web/internal/i18n"
	"nsam.in/catalog-web/internal/nav"
	"nsam.in/catalog-web/internal/order"
	"nsam.in/catalog-web/internal/seo"
	"nsam.in/catalog-web/internal/thumbs"
)

// CatalogInput is everything the grid and filter bar are rendered from.
type CatalogInput struct {
	State  catalog.State
	Loaded bool
	// LoadErr is set when the catalog could not be loaded; the grid is replaced by a notice.
	LoadErr error
	Text    i18n.PageText
	Orders  order.Builder
	// Pick carries a card's remembered image index across a full-page render.
	Pick      Pick
	CSRFToken string
}

// Pick selects the displayed image of one card.
type Pick struct {
	SKU   string
	Index int
}

// CatalogView is the declarative description of the filters bar and the product grid.
type CatalogView struct {
	Lang            string
	Category        string
	Filters         []nav.FilterButton
	FilterLabel     string
	ActiveFilter    string
	Cards           []CardView
	Notice          template.HTML
	Empty           string
	LanguageEnabled bool
	JSONLD          string
}

// CardView is one product card.
type CardView struct {
	SKU        string
	Name       string
	Alt        string
	Category   string
	Images     []string
	Current    int
	Main       string
	Thumbs     []ThumbView
	Price      string
	OrderURL   string
	OrderLabel string
	QRURL      string
	QRLabel    string
	Lang       string
	// Filter is the active category, kept in card links.
	Filter    string
	CSRFToken string
}

// ThumbView is one entry of a card's thumbnail strip.
type ThumbView struct {
	Index    int
	Src      string
	ThumbSrc string
	Alt      string
	Active   bool
	Href     string
	FragHref string
}

// BuildCatalogView filters the products and projects each visible one into a card.
func BuildCatalogView(in CatalogInput) CatalogView {
	lang := in.State.Lang
	category := in.State.Category
	if category == "" {
		category = catalog.AllCategories
	}
	view := CatalogView{
		Lang:            lang,
		Category:        category,
		FilterLabel:     in.Text.FilterLabel,
		Filters:         nav.Filters(catalog.CategoryList(in.State.Products), category, lang),
		LanguageEnabled: in.Loaded && in.LoadErr == nil,
	}
	view.ActiveFilter = nav.ActiveLabel(view.Filters)
	if in.LoadErr != nil {
		view.Notice = in.Text.LoadError
		return view
	}
	visible := catalog.Filter(in.State.Products, category)
	view.Cards = make([]CardView, 0, len(visible))
	offers := make([]map[string]any, 0, len(visible))
	for _, p := range visible {
		current := 0
		if in.Pick.SKU != "" && in.Pick.SKU == p.SKU {
			current = in.Pick.Index
		}
		card := BuildCard(p, lang, category, in.Text, in.Orders, current)
		card.CSRFToken = in.CSRFToken
		view.Cards = append(view.Cards, card)
		offers = append(offers, seo.Product(seo.ProductOffer{
			Name:     p.NameEN,
			SKU:      p.SKU,
			Category: p.Category,
			Images:   card.Images,
			Price:    p.Price,
			Currency: "INR",
			OrderURL: card.OrderURL,
		}))
	}
	if len(view.Cards) == 0 && in.Loaded {
		view.Empty = in.Text.EmptyCategory
	}
	if len(offers) > 0 {
		view.JSONLD = seo.JSON(seo.ItemList(offers))
	}
	return view
}

// BuildCard renders one product card showing the image at current (clamped).
func BuildCard(p catalog.Product, lang, category string, text i18n.PageText, orders order.Builder, current int) CardView {
	images := p.ImageSequence()
	current = clampIndex(current, len(images))
	card := CardView{
		SKU:        p.SKU,
		Name:       p.Name(lang),
		Alt:        p.NameEN,
		Category:   p.Category,
		Images:     images,
		Current:    current,
		Price:      format.FormatPrice(p.Price, p.Unit),
		OrderURL:   orders.Link(p),
		OrderLabel: text.OrderLabel,
		QRURL:      "/order/" + url.PathEscape(p.SKU) + "/qr.png",
		QRLabel:    text.QRLabel,
		Lang:       lang,
		Filter:     category,
	}
	if len(images) > 0 {
		card.Main = images[current]
	}
	if len(images) > 1 {
		card.Thumbs = make([]ThumbView, 0, len(images))
		for i, src := range images {
			card.Thumbs = append(card.Thumbs, ThumbView{
				Index:    i,
				Src:      src,
				ThumbSrc: thumbs.URL(src),
				Alt:      p.NameEN + " " + strconv.Itoa(i+1),
				Active:   i == current,
				Href:     pickHref(p.SKU, i, lang, category),
				FragHref: cardHref(p.SKU, i, lang),
			})
		}
	}
	return card
}

func pickHref(sku string, i int, lang, category string) string {
	q := url.Values{}
	q.Set("pick", sku)
	q.Set("img", strconv.Itoa(i))
	if lang != "" {
		q.Set("hl", lang)
	}
	if category != "" {
		q.Set("category", category)
	}
	return "/?" + q.Encode()
}

func cardHref(sku string, i int, lang string) string {
	q := url.Values{}
	q.Set("img", strconv.Itoa(i))
	if lang != "" {
		q.Set("hl", lang)
	}
	return "/cards/" + url.PathEscape(sku) + "?" + q.Encode()
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
