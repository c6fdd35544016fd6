package spacetraveling

import "embed"

// EmbeddedAssets contains the static assets served under /public/:
// loadmore.js, site.css and logo.svg.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
