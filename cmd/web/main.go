package main

import (
	"context"
	"flag"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMid "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"motorline.org/motorline-web/internal/config"
	"motorline.org/motorline-web/internal/content"
	"motorline.org/motorline-web/internal/format"
	"motorline.org/motorline-web/internal/gallery"
	"motorline.org/motorline-web/internal/marketplace"
	mw "motorline.org/motorline-web/internal/middleware"
	"motorline.org/motorline-web/internal/observability"
	"motorline.org/motorline-web/internal/seo"
)

var (
	templatesDir = "templates"
	publicDir    = "public"
	// devMode reparses templates per request; set from config in main()
	devMode   bool
	tmplCache map[string]*template.Template
)

// app carries the shared dependencies of every handler.
type app struct {
	cfg config.Config
	log *zap.Logger
	svc marketplace.Service
}

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", os.Getenv("MOTORLINE_WEB_CONFIG"), "YAML config file path")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := observability.NewLogger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	templatesDir = cfg.TemplatesDir
	publicDir = cfg.PublicDir
	devMode = cfg.Dev

	var svc marketplace.Service
	if cfg.API.CarsBaseURL == "" {
		logger.Warn("no backend configured, serving seeded demo data")
		svc = marketplace.NewStaticService()
	} else {
		svc, err = marketplace.NewHTTPService(marketplace.Endpoints{
			CarsBaseURL:   cfg.API.CarsBaseURL,
			DrivesBaseURL: cfg.API.DrivesBaseURL,
			UsersBaseURL:  cfg.API.UsersBaseURL,
		}, nil)
		if err != nil {
			logger.Fatal("marketplace client", zap.Error(err))
		}
	}

	if !devMode {
		// Parse templates once in production
		tc, err := parseTemplates()
		if err != nil {
			logger.Fatal("parse templates", zap.Error(err))
		}
		tmplCache = tc
	}

	a := &app{cfg: cfg, log: logger, svc: svc}
	r := newRouter(a)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("web listening", zap.String("addr", cfg.Addr), zap.Bool("dev", devMode))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("listen", zap.Error(err))
	}
}

func newRouter(a *app) chi.Router {
	r := chi.NewRouter()
	r.Use(chiMid.RequestID)
	// If deployed behind a trusted reverse proxy, RealIP resolves the client
	// from X-Forwarded-For. Ensure only trusted proxies set these headers.
	r.Use(chiMid.RealIP)
	r.Use(mw.Logger(a.log))
	r.Use(chiMid.Recoverer)
	r.Use(chiMid.Compress(5))
	r.Use(chiMid.Timeout(30 * time.Second))
	r.Use(mw.Session)
	r.Use(mw.CSRF)
	r.Use(mw.Auth)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/assets/*", http.StripPrefix("/assets", mw.AssetsWithCache(filepath.Join(publicDir, "assets"))))

	r.Get("/", a.homeHandler)
	r.Get("/cars", a.carsHandler)
	r.Get("/cars/{id}", a.carDetailHandler)

	r.Get("/login", a.loginFormHandler)
	r.Post("/login", a.loginHandler)
	r.Get("/register", a.registerFormHandler)
	r.Post("/register", a.registerHandler)
	r.Post("/logout", a.logoutHandler)

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireUser)
		pr.Get("/cars/new", a.carNewFormHandler)
		pr.Post("/cars/new", a.carNewHandler)
		pr.Get("/cars/mine", a.sellerCarsHandler)
		pr.Post("/cars/{id}/images", a.carImageUploadHandler)
		pr.Get("/cars/{id}/testdrive", a.bookingFormHandler)
		pr.Post("/cars/{id}/testdrive", a.bookingHandler)
		pr.Get("/testdrives", a.testDrivesHandler)
		pr.Get("/testdrives/manage", a.manageDrivesFormHandler)
		pr.Post("/testdrives/manage", a.manageDrivesHandler)
	})

	return r
}

// newEnricher builds a per-request gallery enricher carrying the caller's
// bearer token into each image fetch.
func (a *app) newEnricher(token string) gallery.Enricher {
	return gallery.Enricher{
		Fetch: func(ctx context.Context, sellerID, carID int64) ([]string, error) {
			return a.svc.CarImages(ctx, token, sellerID, carID)
		},
		Concurrency: a.cfg.Gallery.Concurrency,
		Pause:       time.Duration(a.cfg.Gallery.PauseMS) * time.Millisecond,
	}
}

func parseTemplates() (map[string]*template.Template, error) {
	funcMap := template.FuncMap{
		"now":       time.Now,
		"price":     format.Price,
		"schedule":  format.Schedule,
		"slotLabel": format.SlotLabel,
		"markdown":  content.Description,
		"jsonld":    seo.JSON,
	}

	layouts, err := filepath.Glob(filepath.Join(templatesDir, "*.tmpl"))
	if err != nil {
		return nil, err
	}
	pages, err := filepath.Glob(filepath.Join(templatesDir, "pages", "*.tmpl"))
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no page templates found under %s", templatesDir)
	}

	// One template set per page: base + partials + the page's content block.
	cache := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		name := strings.TrimSuffix(filepath.Base(page), ".tmpl")
		files := append(append([]string{}, layouts...), page)
		t, err := template.New(name).Funcs(funcMap).ParseFiles(files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		cache[name] = t
	}
	return cache, nil
}

// renderPage executes the base layout with the named page's content block.
// In dev mode, templates are reparsed on each request.
func renderPage(w http.ResponseWriter, r *http.Request, name string, status int, data any) {
	cache := tmplCache
	if devMode {
		tc, err := parseTemplates()
		if err != nil {
			http.Error(w, fmt.Sprintf("template parse error: %v", err), http.StatusInternalServerError)
			return
		}
		cache = tc
	}
	t, ok := cache[name]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown page %q", name), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		http.Error(w, fmt.Sprintf("template exec error: %v", err), http.StatusInternalServerError)
		return
	}
}
