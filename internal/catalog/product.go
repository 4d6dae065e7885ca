package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// AllCategories is the pseudo-category meaning "no filter applied".
const AllCategories = "All"

// Product is a catalog entry as published in products.json.
type Product struct {
	SKU      string    `json:"sku"`
	NameEN   string    `json:"name_en"`
	NameTA   string    `json:"name_ta"`
	Category string    `json:"category"`
	Price    float64   `json:"price"`
	Unit     string    `json:"unit"`
	Images   ImageList `json:"images,omitempty"`
	// Image is the legacy single-image field, consulted only when Images is empty.
	Image string `json:"image,omitempty"`
}

// ImageList decodes either a JSON array of locators or a single bare locator.
type ImageList []string

// UnmarshalJSON accepts `["a.jpg","b.jpg"]`, `"a.jpg"` and `null`.
func (l *ImageList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*l = Normalize(single)
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("catalog: images must be a string or an array of strings: %w", err)
	}
	*l = Normalize(many...)
	return nil
}

// Normalize drops blank locators and always returns a non-nil slice.
func Normalize(images ...string) []string {
	out := make([]string, 0, len(images))
	for _, src := range images {
		if src = strings.TrimSpace(src); src != "" {
			out = append(out, src)
		}
	}
	return out
}

// ImageSequence resolves the images to display for p.
// Precedence: Images when non-empty, then the legacy Image, then nothing.
// The result is never nil.
func (p Product) ImageSequence() []string {
	if len(p.Images) > 0 {
		out := make([]string, len(p.Images))
		copy(out, p.Images)
		return out
	}
	return Normalize(p.Image)
}

// Name returns the display name for lang.
// Precedence: the requested language, then the other language, then the SKU.
func (p Product) Name(lang string) string {
	primary, secondary := p.NameEN, p.NameTA
	if lang == "ta" {
		primary, secondary = p.NameTA, p.NameEN
	}
	for _, v := range []string{primary, secondary, p.SKU} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Find returns the product with sku.
func Find(products []Product, sku string) (Product, bool) {
	for _, p := range products {
		if p.SKU == sku {
			return p, true
		}
	}
	return Product{}, false
}
