package spacetraveling

import (
	"net/url"
	"path"
	"strings"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// AbsoluteURL resolves a site path such as "/feed.xml" against base as is.
func AbsoluteURL(base, p string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(p, "/")
}

// slugFromPath extracts the slug of a "/post/<slug>/" path.
func slugFromPath(p string) (string, bool) {
	rest, ok := strings.CutPrefix(p, "/post/")
	if !ok {
		return "", false
	}
	slug := strings.Trim(rest, "/")
	return slug, slug != "" && !strings.Contains(slug, "/")
}
