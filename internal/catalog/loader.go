package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	defaultVersion = "6"
	// maxCatalogBytes caps the response body read from remote sources.
	maxCatalogBytes = 8 << 20
)

var (
	// ErrLoadFailure matches any *LoadFailure via errors.Is.
	ErrLoadFailure = errors.New("catalog: load failure")
	// ErrMalformedCatalog matches any *MalformedCatalog via errors.Is.
	ErrMalformedCatalog = errors.New("catalog: malformed catalog")
)

// LoadFailure reports that the catalog source could not be fetched.
type LoadFailure struct {
	Source string
	Status int // HTTP status when the server answered with a non-success code
	Err    error
}

func (e *LoadFailure) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("catalog: %s not found (%d)", e.Source, e.Status)
	}
	return fmt.Sprintf("catalog: fetch %s: %v", e.Source, e.Err)
}

func (e *LoadFailure) Unwrap() error { return e.Err }

// Is reports whether target is ErrLoadFailure.
func (e *LoadFailure) Is(target error) bool { return target == ErrLoadFailure }

// MalformedCatalog reports that the source was reachable but did not hold a JSON array
// of products.
type MalformedCatalog struct {
	Source string
	Kind   string // JSON kind found instead of an array, e.g. "object"
	Err    error
}

func (e *MalformedCatalog) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog: %s is not valid JSON: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("catalog: %s must be an array, got %s", e.Source, e.Kind)
}

func (e *MalformedCatalog) Unwrap() error { return e.Err }

// Is reports whether target is ErrMalformedCatalog.
func (e *MalformedCatalog) Is(target error) bool { return target == ErrMalformedCatalog }

// Loader fetches the catalog from an http(s) URL or a local file.
type Loader struct {
	source  string
	version string
	timeout time.Duration
	http    *http.Client
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithVersion sets the cache-busting version appended to remote sources.
func WithVersion(v string) LoaderOption {
	return func(l *Loader) {
		if v = strings.TrimSpace(v); v != "" {
			l.version = v
		}
	}
}

// WithTimeout bounds a single load.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithHTTPClient replaces the client used for remote sources.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) {
		if c != nil {
			l.http = c
		}
	}
}

// NewLoader builds a loader for source.
func NewLoader(source string, opts ...LoaderOption) *Loader {
	l := &Loader{
		source:  strings.TrimSpace(source),
		version: defaultVersion,
		timeout: defaultTimeout,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Source returns the configured source.
func (l *Loader) Source() string { return l.source }

// Load fetches and decodes the catalog. It performs exactly one fetch and never retries.
func (l *Loader) Load(ctx context.Context) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var (
		raw []byte
		err error
	)
	if isRemote(l.source) {
		raw, err = l.fetchRemote(ctx)
	} else {
		raw, err = os.ReadFile(l.source)
		if err != nil {
			err = &LoadFailure{Source: l.source, Err: err}
		}
	}
	if err != nil {
		return nil, err
	}
	return decodeProducts(l.source, raw)
}

func (l *Loader) fetchRemote(ctx context.Context) ([]byte, error) {
	endpoint, err := l.bustedURL()
	if err != nil {
		return nil, &LoadFailure{Source: l.source, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &LoadFailure{Source: l.source, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, &LoadFailure{Source: l.source, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &LoadFailure{
			Source: l.source,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, &LoadFailure{Source: l.source, Err: err}
	}
	return raw, nil
}

func (l *Loader) bustedURL() (string, error) {
	u, err := url.Parse(l.source)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("v", l.version)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func decodeProducts(source string, raw []byte) ([]Product, error) {
	trimmed := bytes.TrimSpace(raw)
	if !json.Valid(trimmed) {
		var discard any
		err := json.Unmarshal(trimmed, &discard)
		if err == nil {
			err = errors.New("invalid JSON")
		}
		return nil, &MalformedCatalog{Source: source, Err: err}
	}
	if trimmed[0] != '[' {
		return nil, &MalformedCatalog{Source: source, Kind: jsonKind(trimmed[0])}
	}
	var products []Product
	if err := json.Unmarshal(trimmed, &products); err != nil {
		return nil, &MalformedCatalog{Source: source, Err: err}
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

func jsonKind(first byte) string {
	switch first {
	case '{':
		return "object"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
