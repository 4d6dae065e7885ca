package catalog

// CategoryList returns AllCategories followed by each distinct category in order of
// first appearance.
func CategoryList(products []Product) []string {
	out := make([]string, 0, len(products)+1)
	out = append(out, AllCategories)
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// Filter returns the products in category, preserving order. AllCategories keeps every
// product. The input slice is never modified.
func Filter(products []Product, category string) []Product {
	if category == AllCategories {
		out := make([]Product, len(products))
		copy(out, products)
		return out
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// State is the catalog-level input to rendering: the loaded products plus the
// visitor's language and category selection.
type State struct {
	Products []Product
	Lang     string
	Category string
}

// Visible applies the category filter of s.
func (s State) Visible() []Product {
	category := s.Category
	if category == "" {
		category = AllCategories
	}
	return Filter(s.Products, category)
}
