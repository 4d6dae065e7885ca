package seo

import (
    "encoding/json"
    "strconv"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
    b, err := json.Marshal(v)
    if err != nil {
        return ""
    }
    return string(b)
}

// Store returns a minimal schema.org Store payload.
func Store(name, url, address string) map[string]any {
    m := map[string]any{
        "@context": "https://schema.org",
        "@type":    "Store",
        "name":     name,
    }
    if url != "" { m["url"] = url }
    if address != "" { m["address"] = address }
    return m
}

// ProductOffer describes one catalog entry for structured data.
type ProductOffer struct {
    Name     string
    SKU      string
    Category string
    Images   []string
    Price    float64
    Currency string
    OrderURL string
}

// Product returns a schema.org Product with a single Offer.
func Product(p ProductOffer) map[string]any {
    m := map[string]any{
        "@context": "https://schema.org",
        "@type":    "Product",
        "name":     p.Name,
    }
    if p.SKU != "" { m["sku"] = p.SKU }
    if p.Category != "" { m["category"] = p.Category }
    if len(p.Images) > 0 { m["image"] = p.Images }
    offer := map[string]any{
        "@type":         "Offer",
        "price":         strconv.FormatFloat(p.Price, 'f', 2, 64),
        "priceCurrency": p.Currency,
        "availability":  "https://schema.org/InStock",
    }
    if p.OrderURL != "" { offer["url"] = p.OrderURL }
    m["offers"] = offer
    return m
}

// ItemList wraps products into a schema.org ItemList in display order.
func ItemList(items []map[string]any) map[string]any {
    el := make([]map[string]any, 0, len(items))
    for i, it := range items {
        el = append(el, map[string]any{
            "@type":    "ListItem",
            "position": i + 1,
            "item":     it,
        })
    }
    return map[string]any{
        "@context":        "https://schema.org",
        "@type":           "ItemList",
        "itemListElement": el,
    }
}
