package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultEnvFile        = ".env"
	defaultSiteFile       = "site.yaml"
	defaultPort           = "8080"
	defaultTemplatesDir   = "templates"
	defaultPublicDir      = "public"
	defaultLocalesDir     = "locales"
	defaultLanguage       = "en"
	defaultCatalogSource  = "public/products.json"
	defaultCatalogVersion = "6"
	defaultCatalogTimeout = 10 * time.Second
	defaultWhatsAppURL    = "https://wa.me/"
	defaultWhatsAppPhone  = "919944291896"
	defaultShopName       = "NSAM"
	defaultThumbSize      = 160
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second
)

// Config captures runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Catalog  CatalogConfig
	Order    OrderConfig
	Site     SiteConfig
	Session  SessionConfig
	LogLevel string
}

// ServerConfig configures the HTTP listener and filesystem layout.
type ServerConfig struct {
	Addr         string
	TemplatesDir string
	PublicDir    string
	LocalesDir   string
	Dev          bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// CatalogConfig points at the product catalog.
type CatalogConfig struct {
	Source    string
	Version   string
	Timeout   time.Duration
	ThumbSize int
}

// OrderConfig holds the WhatsApp ordering channel.
type OrderConfig struct {
	BaseURL string
	Phone   string
}

// SiteConfig holds storefront identity.
type SiteConfig struct {
	Shop            string
	BaseURL         string
	DefaultLanguage string
	Languages       []string
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	SigningKey string
	Secure     bool
}

// siteFile is the optional YAML file with storefront copy.
type siteFile struct {
	Shop      string   `yaml:"shop"`
	BaseURL   string   `yaml:"base_url"`
	Language  string   `yaml:"default_language"`
	Languages []string `yaml:"languages"`
	WhatsApp  struct {
		Phone   string `yaml:"phone"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"whatsapp"`
	Catalog struct {
		Source  string `yaml:"source"`
		Version string `yaml:"version"`
	} `yaml:"catalog"`
}

// ValidationError is returned when configuration fields are invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	siteFile     string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides. Empty disables it.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// WithSiteFile overrides the YAML site file path. Empty disables it.
func WithSiteFile(path string) Option {
	return func(o *loaderOptions) { o.siteFile = path }
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over the process environment and the .env file.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) { o.envMap = values }
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) { o.useSystemEnv = false }
}

// Load resolves configuration from defaults, the site file, the .env file and NSAM_* variables,
// later sources winning.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		siteFile:     defaultSiteFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}
	site, err := loadSiteFile(options.siteFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	port := stringWithDefault(lookup, "NSAM_PORT", stringWithDefault(lookup, "PORT", defaultPort))
	env := strings.ToLower(stringWithDefault(lookup, "NSAM_ENV", ""))

	cfg := Config{
		Server: ServerConfig{
			Addr:         stringWithDefault(lookup, "NSAM_ADDR", ":"+port),
			TemplatesDir: stringWithDefault(lookup, "NSAM_TEMPLATES_DIR", defaultTemplatesDir),
			PublicDir:    stringWithDefault(lookup, "NSAM_PUBLIC_DIR", defaultPublicDir),
			LocalesDir:   stringWithDefault(lookup, "NSAM_LOCALES_DIR", defaultLocalesDir),
			Dev:          boolWithDefault(lookup, "NSAM_DEV", false),
			ReadTimeout:  durationWithDefault(lookup, "NSAM_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "NSAM_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "NSAM_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Catalog: CatalogConfig{
			Source:    stringWithDefault(lookup, "NSAM_CATALOG_SOURCE", firstNonEmpty(site.Catalog.Source, defaultCatalogSource)),
			Version:   stringWithDefault(lookup, "NSAM_CATALOG_VERSION", firstNonEmpty(site.Catalog.Version, defaultCatalogVersion)),
			Timeout:   durationWithDefault(lookup, "NSAM_CATALOG_TIMEOUT", defaultCatalogTimeout),
			ThumbSize: intWithDefault(lookup, "NSAM_THUMB_SIZE", defaultThumbSize),
		},
		Order: OrderConfig{
			BaseURL: stringWithDefault(lookup, "NSAM_WHATSAPP_URL", firstNonEmpty(site.WhatsApp.BaseURL, defaultWhatsAppURL)),
			Phone:   stringWithDefault(lookup, "NSAM_WHATSAPP_PHONE", firstNonEmpty(site.WhatsApp.Phone, defaultWhatsAppPhone)),
		},
		Site: SiteConfig{
			Shop:            stringWithDefault(lookup, "NSAM_SHOP_NAME", firstNonEmpty(site.Shop, defaultShopName)),
			BaseURL:         strings.TrimRight(stringWithDefault(lookup, "NSAM_BASE_URL", site.BaseURL), "/"),
			DefaultLanguage: strings.ToLower(stringWithDefault(lookup, "NSAM_DEFAULT_LANGUAGE", firstNonEmpty(site.Language, defaultLanguage))),
			Languages:       csvWithDefault(lookup, "NSAM_LANGUAGES", site.Languages),
		},
		Session: SessionConfig{
			SigningKey: stringWithDefault(lookup, "NSAM_SESSION_SIGNING_KEY", ""),
			Secure:     env == "prod",
		},
		LogLevel: stringWithDefault(lookup, "LOG_LEVEL", "info"),
	}
	if len(cfg.Site.Languages) == 0 {
		cfg.Site.Languages = []string{"en", "ta"}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var invalid []string
	if strings.TrimSpace(cfg.Catalog.Source) == "" {
		invalid = append(invalid, "Catalog.Source")
	}
	if cfg.Catalog.Timeout <= 0 {
		invalid = append(invalid, "Catalog.Timeout")
	}
	if strings.TrimSpace(cfg.Order.Phone) == "" {
		invalid = append(invalid, "Order.Phone")
	}
	found := false
	for _, l := range cfg.Site.Languages {
		if l == cfg.Site.DefaultLanguage {
			found = true
			break
		}
	}
	if !found {
		invalid = append(invalid, "Site.DefaultLanguage")
	}
	if cfg.Session.Secure && cfg.Session.SigningKey == "" {
		invalid = append(invalid, "Session.SigningKey")
	}
	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return values, nil
}

func loadSiteFile(path string) (siteFile, error) {
	var site siteFile
	if path == "" {
		return site, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return site, nil
		}
		return site, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &site); err != nil {
		return site, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return site, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string, fallback []string) []string {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		out := make([]string, 0, len(fallback))
		for _, v := range fallback {
			if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
				out = append(out, v)
			}
		}
		return out
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
