package i18n

import (
    "encoding/json"
    "fmt"
    "html/template"
    "os"
    "path/filepath"
    "strings"

    "golang.org/x/text/language"

    "nsam.in/catalog-web/internal/markup"
)

// Supported locale codes.
const (
    English = "en"
    Tamil   = "ta"
)

type Bundle struct {
    dict      map[string]map[string]string
    fallback  string
    supported []string
    matcher   language.Matcher
}

func Load(dir string, fallback string, supported []string) (*Bundle, error) {
    if len(supported) == 0 {
        supported = []string{English, Tamil}
    }
    b := &Bundle{
        dict:     map[string]map[string]string{},
        fallback: fallback,
    }
    // the matcher prefers its first tag on ties, so the fallback goes first
    ordered := append([]string{fallback}, without(supported, fallback)...)
    tags := make([]language.Tag, 0, len(ordered))
    for _, l := range ordered {
        tag, err := language.Parse(l)
        if err != nil {
            return nil, fmt.Errorf("parse locale %s: %w", l, err)
        }
        tags = append(tags, tag)
        b.supported = append(b.supported, l)
        path := filepath.Join(dir, l+".json")
        raw, err := os.ReadFile(path)
        if err != nil {
            // allow missing file for non-default locales
            if l == fallback {
                return nil, fmt.Errorf("load locale %s: %w", l, err)
            }
            continue
        }
        var m map[string]string
        if err := json.Unmarshal(raw, &m); err != nil {
            return nil, fmt.Errorf("unmarshal %s: %w", l, err)
        }
        b.dict[l] = m
    }
    if _, ok := b.dict[fallback]; !ok {
        return nil, fmt.Errorf("fallback locale %s not loaded", fallback)
    }
    b.matcher = language.NewMatcher(tags)
    return b, nil
}

// Supported returns the locale codes in preference order, fallback first.
func (b *Bundle) Supported() []string {
    out := make([]string, len(b.supported))
    copy(out, b.supported)
    return out
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// Normalize maps an explicitly chosen lang onto a supported code. Regional tags such as
// "ta-IN" match their base language; anything else yields the fallback.
func (b *Bundle) Normalize(lang string) string {
    lang = strings.ToLower(strings.TrimSpace(lang))
    for _, l := range b.supported {
        if l == lang {
            return l
        }
    }
    if lang == "" {
        return b.fallback
    }
    return b.Resolve(lang)
}

// T returns translation for key in lang, falling back to default and finally key.
func (b *Bundle) T(lang, key string) string {
    if lang != "" {
        if m, ok := b.dict[lang]; ok {
            if v, ok := m[key]; ok {
                return v
            }
        }
    }
    if m, ok := b.dict[b.fallback]; ok {
        if v, ok := m[key]; ok {
            return v
        }
    }
    return key
}

// Resolve chooses the best supported language from a tag list in Accept-Language syntax.
func (b *Bundle) Resolve(acceptLang string) string {
    tags, _, err := language.ParseAcceptLanguage(acceptLang)
    if err != nil || len(tags) == 0 {
        return b.fallback
    }
    _, idx, conf := b.matcher.Match(tags...)
    if conf == language.No || idx < 0 || idx >= len(b.supported) {
        return b.fallback
    }
    return b.supported[idx]
}

// PageText is the fixed copy shown around the catalog for one language.
type PageText struct {
    Lang          string
    Title         string
    Subtitle      string
    Address       template.HTML
    OrderLabel    string
    LanguageLabel string
    FilterLabel   string
    LoadError     template.HTML
    EmptyCategory string
    Close         string
    Next          string
    Prev          string
    QRLabel       string
}

// Page collects the page copy for lang.
func (b *Bundle) Page(lang string) PageText {
    lang = b.Normalize(lang)
    return PageText{
        Lang:          lang,
        Title:         b.T(lang, "page.title"),
        Subtitle:      b.T(lang, "page.subtitle"),
        Address:       markup.Inline(b.T(lang, "store.address")),
        OrderLabel:    b.T(lang, "order.button"),
        LanguageLabel: b.T(lang, "language.label"),
        FilterLabel:   b.T(lang, "filters.label"),
        LoadError:     markup.Inline(b.T(lang, "catalog.load_error")),
        EmptyCategory: b.T(lang, "catalog.empty"),
        Close:         b.T(lang, "lightbox.close"),
        Next:          b.T(lang, "lightbox.next"),
        Prev:          b.T(lang, "lightbox.prev"),
        QRLabel:       b.T(lang, "order.qr"),
    }
}

// LanguageOption is an entry of the language selector.
type LanguageOption struct {
    Code     string
    Label    string
    Selected bool
}

// LanguageOptions lists the supported languages labelled in their own language.
func (b *Bundle) LanguageOptions(active string) []LanguageOption {
    active = b.Normalize(active)
    out := make([]LanguageOption, 0, len(b.supported))
    for _, l := range b.supported {
        out = append(out, LanguageOption{
            Code:     l,
            Label:    b.T(l, "language.name"),
            Selected: l == active,
        })
    }
    return out
}

func without(list []string, drop string) []string {
    out := make([]string, 0, len(list))
    for _, v := range list {
        if v != drop {
            out = append(out, v)
        }
    }
    return out
}
