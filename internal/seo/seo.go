package seo

type OpenGraph struct {
    Title       string
    Description string
    Image       string
    Type        string
    URL         string
    SiteName    string
}

type Meta struct {
    Title       string
    Description string
    Canonical   string
    OG          OpenGraph
    Alternates  []Alternate
    JSONLD      []string
}

// Alternate links a language variant of the page.
type Alternate struct {
    Href     string
    Hreflang string
}
