package nav

import (
    "net/url"
)

// FilterButton is the view model for one category filter button.
type FilterButton struct {
    Label    string
    Category string
    Href     string // full-page URL, used without htmx
    FragHref string // regions fragment URL for htmx swaps
    Active   bool
}

// Filters renders one button per category with the active one marked. The hrefs keep
// the current language so a filter click never resets it.
func Filters(categories []string, active, lang string) []FilterButton {
    items := make([]FilterButton, 0, len(categories))
    for _, c := range categories {
        q := url.Values{}
        q.Set("category", c)
        if lang != "" {
            q.Set("hl", lang)
        }
        items = append(items, FilterButton{
            Label:    c,
            Category: c,
            Href:     "/?" + q.Encode(),
            FragHref: "/fragments/catalog?" + q.Encode(),
            Active:   c == active,
        })
    }
    return items
}

// ActiveLabel returns the label of the active button, or "" when none is active.
func ActiveLabel(items []FilterButton) string {
    for _, it := range items {
        if it.Active {
            return it.Label
        }
    }
    return ""
}
