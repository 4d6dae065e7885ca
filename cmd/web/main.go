package main

import (
    "context"
    "errors"
    "flag"
    "fmt"
    "html/template"
    "io/fs"
    "net/http"
    "os"
    "path/filepath"
    "strings"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "go.uber.org/zap"

    "nsam.in/catalog-web/internal/catalog"
    "nsam.in/catalog-web/internal/config"
    "nsam.in/catalog-web/internal/i18n"
    mw "nsam.in/catalog-web/internal/middleware"
    "nsam.in/catalog-web/internal/observability"
    "nsam.in/catalog-web/internal/order"
    "nsam.in/catalog-web/internal/thumbs"
)

var (
    templatesDir = "templates"
    publicDir    = "public"
    devMode      bool
    tmplCache    *template.Template

    logger     = zap.NewNop()
    i18nBundle *i18n.Bundle
    store      = catalog.NewStore()
    orders     = order.NewBuilder("", "", "")
    thumbSvc   *thumbs.Service
    siteCfg    config.SiteConfig
)

func main() {
    cfg, err := config.Load()
    if err != nil {
        fmt.Fprintf(os.Stderr, "config: %v\n", err)
        os.Exit(1)
    }

    // Flags override environment
    var (
        addr     string
        tmplPath string
        pubPath  string
        source   string
    )
    flag.StringVar(&addr, "addr", cfg.Server.Addr, "HTTP listen address")
    flag.StringVar(&tmplPath, "templates", cfg.Server.TemplatesDir, "templates directory")
    flag.StringVar(&pubPath, "public", cfg.Server.PublicDir, "public assets directory")
    flag.StringVar(&source, "catalog", cfg.Catalog.Source, "catalog URL or file path")
    flag.BoolVar(&devMode, "dev", cfg.Server.Dev, "reparse templates on every request")
    flag.Parse()

    templatesDir = tmplPath
    publicDir = pubPath
    cfg.Catalog.Source = source

    logger, err = observability.NewLoggerWithLevel(cfg.LogLevel)
    if err != nil {
        fmt.Fprintf(os.Stderr, "logger: %v\n", err)
        os.Exit(1)
    }
    defer func() { _ = logger.Sync() }()

    if ephemeral := mw.ConfigureSession(cfg.Session.SigningKey, cfg.Session.Secure); ephemeral {
        logger.Warn("session: using ephemeral signing key; set NSAM_SESSION_SIGNING_KEY for production")
    }

    i18nBundle, err = i18n.Load(cfg.Server.LocalesDir, cfg.Site.DefaultLanguage, cfg.Site.Languages)
    if err != nil {
        logger.Fatal("load locales", zap.Error(err))
    }

    if !devMode {
        // Parse templates once in production
        tc, err := parseTemplates()
        if err != nil {
            logger.Fatal("parse templates", zap.Error(err))
        }
        tmplCache = tc
    }

    siteCfg = cfg.Site
    orders = order.NewBuilder(cfg.Order.BaseURL, cfg.Order.Phone, cfg.Site.Shop)
    thumbSvc = thumbs.New(publicDir, cfg.Catalog.ThumbSize)

    loader := catalog.NewLoader(cfg.Catalog.Source,
        catalog.WithVersion(cfg.Catalog.Version),
        catalog.WithTimeout(cfg.Catalog.Timeout),
    )
    loadCatalog(context.Background(), loader)

    r := chi.NewRouter()
    r.Use(middleware.RequestID)
    // If deployed behind a trusted reverse proxy/load balancer, RealIP will use
    // X-Forwarded-For to determine the client IP. Ensure only trusted proxies
    // can set these headers in production environments.
    r.Use(middleware.RealIP)
    r.Use(mw.HTMX)
    r.Use(mw.Logger(logger))
    r.Use(middleware.Recoverer)
    r.Use(middleware.Compress(5))
    r.Use(middleware.Timeout(30 * time.Second))
    mountRoutes(r)

    srv := &http.Server{
        Addr:              addr,
        Handler:           r,
        ReadHeaderTimeout: 10 * time.Second,
        ReadTimeout:       cfg.Server.ReadTimeout,
        WriteTimeout:      cfg.Server.WriteTimeout,
        IdleTimeout:       cfg.Server.IdleTimeout,
    }

    logger.Info("web listening",
        zap.String("addr", addr),
        zap.Bool("dev", devMode),
        zap.Int("products", len(store.Products())),
    )
    if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
        logger.Fatal("listen", zap.Error(err))
    }
}

// loadCatalog performs the single catalog fetch and records the outcome in the store.
func loadCatalog(ctx context.Context, loader *catalog.Loader) {
    products, err := loader.Load(ctx)
    if err != nil {
        fields := []zap.Field{zap.String("source", loader.Source()), zap.Error(err)}
        var lf *catalog.LoadFailure
        if errors.As(err, &lf) && lf.Status != 0 {
            fields = append(fields, zap.Int("status", lf.Status))
        }
        logger.Error("catalog load failed", fields...)
        _ = store.Fail(err)
        return
    }
    _ = store.Set(products)
    logger.Info("catalog loaded", zap.String("source", loader.Source()), zap.Int("products", len(products)))
}

// mountRoutes registers session-scoped pages, fragments and static handlers.
func mountRoutes(r chi.Router) {
    // Health check
    r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "text/plain; charset=utf-8")
        w.WriteHeader(http.StatusOK)
        _, _ = w.Write([]byte("ok"))
    })

    // Static assets and catalog images
    r.Handle("/assets/*", mw.AssetsWithCache(filepath.Join(publicDir, "assets"), "/assets", 0))
    r.Handle("/images/*", mw.AssetsWithCache(filepath.Join(publicDir, "images"), "/images", 86400))
    r.Handle(thumbs.Prefix+"*", thumbSvc)

    r.Group(func(r chi.Router) {
        r.Use(mw.Session)
        r.Use(mw.Locale(i18nBundle))
        r.Use(mw.Category)
        r.Use(mw.CSRF)
        r.Use(mw.VaryLocale)

        r.Get("/", CatalogHandler)
        r.Get("/fragments/catalog", CatalogFrag)
        r.Get("/cards/{sku}", CardFrag)
        r.Get("/order/{sku}/qr.png", OrderQRHandler)

        r.Get("/lightbox", LightboxFrag)
        r.Post("/lightbox/open", LightboxOpenHandler)
        r.Post("/lightbox/next", lightboxAction(actionNext))
        r.Post("/lightbox/prev", lightboxAction(actionPrev))
        r.Post("/lightbox/close", lightboxAction(actionClose))
        r.Post("/lightbox/key", lightboxAction(actionKey))
        r.Post("/lightbox/click", lightboxAction(actionClick))
    })
}

func parseTemplates() (*template.Template, error) {
    funcMap := template.FuncMap{
        "safeJS": func(s string) template.JS {
            // JSON-LD is produced by encoding/json, which escapes <, > and &
            return template.JS(s)
        },
    }
    // Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
    var files []string
    if err := filepath.WalkDir(templatesDir, func(path string, d fs.DirEntry, err error) error {
        if err != nil {
            return err
        }
        if d.IsDir() {
            return nil
        }
        if strings.HasSuffix(d.Name(), ".tmpl") {
            files = append(files, path)
        }
        return nil
    }); err != nil {
        return nil, err
    }
    if len(files) == 0 {
        return nil, fmt.Errorf("no templates found under %s", templatesDir)
    }
    return template.New("_root").Funcs(funcMap).ParseFiles(files...)
}

func templates() (*template.Template, error) {
    if devMode {
        return parseTemplates()
    }
    if tmplCache == nil {
        return nil, errors.New("template not initialized")
    }
    return tmplCache, nil
}

// renderTemplate executes a named template. In dev mode, templates are reparsed on each request.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
    t, err := templates()
    if err != nil {
        observability.FromContext(r.Context()).Error("templates", zap.Error(err))
        http.Error(w, fmt.Sprintf("template error: %v", err), http.StatusInternalServerError)
        return
    }
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    if err := t.ExecuteTemplate(w, name, data); err != nil {
        observability.FromContext(r.Context()).Error("template exec", zap.String("template", name), zap.Error(err))
        http.Error(w, fmt.Sprintf("template exec error: %v", err), http.StatusInternalServerError)
        return
    }
}

// renderPage executes the page template for the full layout.
func renderPage(w http.ResponseWriter, r *http.Request, page string, data any) {
    renderTemplate(w, r, "page_"+page, data)
}
