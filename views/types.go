package views

import (
	"time"

	"github.com/eringen/spacetraveling/blog"
)

// SiteConfig holds site-wide settings populated from configuration.
// Every handler passes this to templates so nothing is hardcoded.
type SiteConfig struct {
	Name        string // SITE_NAME  (default "spacetraveling")
	URL         string // SITE_URL   (default "http://localhost:3000")
	Description string // SITE_DESCRIPTION
	Author      string // SITE_AUTHOR
	// Location is the zone dates are shown in. Nil means UTC.
	Location *time.Location
}

func (s SiteConfig) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
	JSONLD      string
}

// HomeData is everything the post list page renders.
type HomeData struct {
	Site    SiteConfig
	Posts   []blog.PostSummary
	Next    blog.Cursor
	Preview bool
}

// PostData is everything a post page renders.
type PostData struct {
	Site      SiteConfig
	Post      blog.PostDetail
	Neighbors blog.Neighbors
	Preview   bool
}
