package spacetraveling

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/eringen/spacetraveling/views"
)

// Content sources.
const (
	SourcePrismic = "prismic"
	SourceLocal   = "local"
)

// SiteConfig holds all configuration for a spacetraveling site.
type SiteConfig struct {
	Name        string // Site name (default "spacetraveling")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD
	TimeZone    string // Zone dates are displayed in (default "America/Sao_Paulo")

	Addr     string // Listen address (default ":3000")
	Env      string // "development" or "production" (default "development")
	LogLevel string // debug, info, warn or error (default "info")

	Source            string // "prismic" or "local" (default "local")
	PrismicEndpoint   string // e.g. https://repo.cdn.prismic.io/api/v2
	PrismicToken      string // Optional access token
	DatabasePath      string // Local store SQLite path (default "data/documents.db")
	DocumentType      string // Custom type of posts (default "posts")
	PageSize          int    // Posts per list page (default 2)
	SessionSecret     string // Required: session encryption secret
	CookieSecure      bool   // Set true for HTTPS
	RevalidateSecret  string // Enables POST /api/revalidate when set
	HomeRevalidate    time.Duration
	PostRevalidate    time.Duration
	PreviewMaxPerIP   int // Invalid preview tokens tolerated per window (default 10)
	PreviewLimitEvery time.Duration
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "spacetraveling"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.TimeZone == "" {
		c.TimeZone = "America/Sao_Paulo"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Source == "" {
		c.Source = SourceLocal
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/documents.db"
	}
	if c.DocumentType == "" {
		c.DocumentType = "posts"
	}
	if c.PageSize <= 0 {
		c.PageSize = 2
	}
	if c.HomeRevalidate == 0 {
		c.HomeRevalidate = 24 * time.Hour
	}
	if c.PostRevalidate == 0 {
		c.PostRevalidate = 30 * time.Minute
	}
	if c.PreviewMaxPerIP <= 0 {
		c.PreviewMaxPerIP = 10
	}
	if c.PreviewLimitEvery == 0 {
		c.PreviewLimitEvery = time.Minute
	}
}

func (c SiteConfig) validate() error {
	if c.SessionSecret == "" {
		return errors.New("spacetraveling: SessionSecret is required")
	}
	switch c.Source {
	case SourceLocal:
	case SourcePrismic:
		if c.PrismicEndpoint == "" {
			return errors.New("spacetraveling: PrismicEndpoint is required for the prismic source")
		}
	default:
		return fmt.Errorf("spacetraveling: unknown content source %q", c.Source)
	}
	return nil
}

// Development reports whether the site runs in development mode.
func (c SiteConfig) Development() bool {
	return c.Env != "production"
}

// ViewSite returns the settings templates need.
func (c SiteConfig) ViewSite() views.SiteConfig {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	return views.SiteConfig{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
		Location:    loc,
	}
}

// LoadConfig reads configuration from an optional .env file and the
// environment. Variables are the upper-case field names prefixed by their
// group, e.g. SITE_NAME, PRISMIC_ENDPOINT, SESSION_SECRET.
func LoadConfig(envFile string) (SiteConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return SiteConfig{}, fmt.Errorf("spacetraveling: load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", ":3000")
	v.SetDefault("app.env", "development")
	v.SetDefault("content.source", SourceLocal)
	v.SetDefault("page.size", 2)
	v.SetDefault("revalidate.home", "24h")
	v.SetDefault("revalidate.post", "30m")

	cfg := SiteConfig{
		Name:              v.GetString("site.name"),
		URL:               v.GetString("site.url"),
		Description:       v.GetString("site.description"),
		Author:            v.GetString("site.author"),
		TimeZone:          v.GetString("site.timezone"),
		Addr:              v.GetString("addr"),
		Env:               v.GetString("app.env"),
		LogLevel:          v.GetString("log.level"),
		Source:            v.GetString("content.source"),
		PrismicEndpoint:   v.GetString("prismic.endpoint"),
		PrismicToken:      v.GetString("prismic.token"),
		DatabasePath:      v.GetString("database.path"),
		DocumentType:      v.GetString("document.type"),
		PageSize:          v.GetInt("page.size"),
		SessionSecret:     v.GetString("session.secret"),
		CookieSecure:      v.GetBool("cookie.secure"),
		RevalidateSecret:  v.GetString("revalidate.secret"),
		HomeRevalidate:    v.GetDuration("revalidate.home"),
		PostRevalidate:    v.GetDuration("revalidate.post"),
		PreviewMaxPerIP:   v.GetInt("preview.max.per.ip"),
		PreviewLimitEvery: v.GetDuration("preview.limit.every"),
	}
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithViews replaces the built-in templates.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
