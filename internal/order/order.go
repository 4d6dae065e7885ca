package order

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"nsam.in/catalog-web/internal/catalog"
)

const (
	// DefaultBaseURL is the WhatsApp click-to-chat endpoint.
	DefaultBaseURL = "https://wa.me/"
	// DefaultPhone is the shop's WhatsApp number in international format without "+".
	DefaultPhone = "919944291896"
	// DefaultShop is the greeting name used in order messages.
	DefaultShop = "NSAM"

	defaultQRSize = 256
)

// Builder formats order messages and WhatsApp deep links.
type Builder struct {
	BaseURL string
	Phone   string
	Shop    string
}

// NewBuilder returns a Builder, substituting defaults for blank fields.
func NewBuilder(baseURL, phone, shop string) Builder {
	b := Builder{
		BaseURL: strings.TrimSpace(baseURL),
		Phone:   strings.TrimPrefix(strings.TrimSpace(phone), "+"),
		Shop:    strings.TrimSpace(shop),
	}
	if b.BaseURL == "" {
		b.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(b.BaseURL, "/") {
		b.BaseURL += "/"
	}
	if b.Phone == "" {
		b.Phone = DefaultPhone
	}
	if b.Shop == "" {
		b.Shop = DefaultShop
	}
	return b
}

// Message renders the pre-filled order text for p.
func (b Builder) Message(p catalog.Product) string {
	return fmt.Sprintf("Hello %s, I want to order: %s – %s (%s). Price %s.",
		b.Shop, p.SKU, p.NameEN, p.Unit, strconv.FormatFloat(p.Price, 'f', -1, 64))
}

// Link returns the deep link that opens a chat with the message pre-filled.
func (b Builder) Link(p catalog.Product) string {
	return b.BaseURL + url.PathEscape(b.Phone) + "?text=" + Encode(b.Message(p))
}

// QR renders the order link as a PNG QR code. size <= 0 uses 256px.
func (b Builder) QR(p catalog.Product, size int) ([]byte, error) {
	if size <= 0 {
		size = defaultQRSize
	}
	png, err := qrcode.Encode(b.Link(p), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("order: qr for %s: %w", p.SKU, err)
	}
	return png, nil
}

// Encode percent-encodes s as a query value, encoding spaces as %20.
func Encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
