// Package spacetraveling is a server-rendered blog front end for content
// kept in a Prismic repository. It lists posts with cursor pagination,
// renders post pages with reading time and previous/next navigation, and
// supports draft previews, RSS and a sitemap.
//
// Templates are provided through ViewFuncs; DefaultViews returns the
// built-in ones.
package spacetraveling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/blog"
	"github.com/eringen/spacetraveling/localstore"
	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/views"
)

// ViewFuncs holds the templ components the handlers render.
type ViewFuncs struct {
	Home          func(data views.HomeData) templ.Component
	MorePosts     func(posts []blog.PostSummary, next blog.Cursor, site views.SiteConfig) templ.Component
	LoadMoreError func() templ.Component
	Post          func(data views.PostData) templ.Component
	NotFound      func(site views.SiteConfig, preview bool) templ.Component
	ServerError   func(site views.SiteConfig, preview bool) templ.Component
}

// DefaultViews returns the built-in templates.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:          views.Home,
		MorePosts:     views.MorePosts,
		LoadMoreError: views.LoadMoreError,
		Post:          views.Post,
		NotFound:      views.NotFound,
		ServerError:   views.ServerError,
	}
}

// App is the central spacetraveling application. It wires together the
// content fetcher, page caches, handlers, middleware and templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Fetcher *blog.Fetcher
	Views   ViewFuncs
	Logger  *slog.Logger

	site           views.SiteConfig
	homeCache      *PageCache[blog.Page]
	postCache      *PageCache[postProps]
	feedCache      *PageCache[[]blog.PostSummary]
	previewLimiter *Limiter
	customRoutes   []func(*App)
}

// New creates an App serving posts from src.
func New(cfg SiteConfig, src blog.Source, logger *slog.Logger, opts ...Option) (*App, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	}

	a := &App{
		Config:         cfg,
		Echo:           echo.New(),
		Fetcher:        blog.NewFetcher(src, cfg.DocumentType, cfg.PageSize),
		Views:          DefaultViews(),
		Logger:         logger,
		site:           cfg.ViewSite(),
		homeCache:      NewPageCache[blog.Page](cfg.HomeRevalidate),
		postCache:      NewPageCache[postProps](cfg.PostRevalidate),
		feedCache:      NewPageCache[[]blog.PostSummary](cfg.HomeRevalidate),
		previewLimiter: NewLimiter(cfg.PreviewMaxPerIP, cfg.PreviewLimitEvery),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}

	onStale := func(key string, err error) {
		a.Logger.Warn("serving stale page", "key", key, "err", err)
	}
	a.homeCache.OnStale = onStale
	a.postCache.OnStale = onStale
	a.feedCache.OnStale = onStale

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return a, nil
}

// Start listens on Config.Addr until the server is shut down.
func (a *App) Start() error {
	a.Logger.Info("listening", "addr", a.Config.Addr, "source", a.Config.Source, "env", a.Config.Env)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.StaticFS("/public", echo.MustSubFS(EmbeddedAssets, "embedded"))
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/healthz", handleHealthz)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/post/:slug/", a.handlePost)
	e.GET("/posts/more/", a.handleMorePosts)

	e.GET("/api/preview", a.handlePreview)
	e.GET("/api/exit-preview", a.handleExitPreview)
	e.POST("/api/revalidate", a.handleRevalidate)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	a.previewLimiter.Stop()
	return nil
}

// OpenSource opens the content source cfg selects. The returned close
// function releases it.
func OpenSource(cfg SiteConfig) (blog.Source, func() error, error) {
	cfg.setDefaults()
	switch cfg.Source {
	case SourcePrismic:
		var opts []prismic.Option
		if cfg.PrismicToken != "" {
			opts = append(opts, prismic.WithAccessToken(cfg.PrismicToken))
		}
		client, err := prismic.New(cfg.PrismicEndpoint, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("spacetraveling: prismic client: %w", err)
		}
		return client, func() error { return nil }, nil
	case SourceLocal:
		store, err := localstore.Open(cfg.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("spacetraveling: open local store: %w", err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("spacetraveling: unknown content source %q", cfg.Source)
	}
}
