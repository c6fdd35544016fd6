package spacetraveling

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/blog"
	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/views"
)

const (
	homeKey = "home"
	feedKey = "all"
)

type postProps struct {
	Post      blog.PostDetail
	Neighbors blog.Neighbors
}

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	ref, preview := PreviewRef(c)

	var page blog.Page
	var err error
	if preview {
		noStore(c)
		page, err = a.Fetcher.FirstPage(ctx, ref)
	} else {
		page, err = a.homeCache.Get(ctx, homeKey, func(ctx context.Context) (blog.Page, error) {
			return a.Fetcher.FirstPage(ctx, "")
		})
	}
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(views.HomeData{
		Site:    a.site,
		Posts:   page.Results,
		Next:    page.Next,
		Preview: preview,
	}))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")
	ref, preview := PreviewRef(c)

	var props postProps
	var err error
	if preview {
		noStore(c)
		props, err = a.loadPost(ctx, ref, slug)
	} else {
		props, err = a.postCache.Get(ctx, slug, func(ctx context.Context) (postProps, error) {
			return a.loadPost(ctx, "", slug)
		})
	}
	if errors.Is(err, blog.ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.site, preview))
	}
	if err != nil {
		return err
	}
	return Render(c, a.Views.Post(views.PostData{
		Site:      a.site,
		Post:      props.Post,
		Neighbors: props.Neighbors,
		Preview:   preview,
	}))
}

// loadPost fetches a post and its neighbors from one content version.
// Neighbor lookups that fail leave the navigation empty instead of failing
// the page.
func (a *App) loadPost(ctx context.Context, ref, slug string) (postProps, error) {
	ref, err := a.Fetcher.ResolveRef(ctx, ref)
	if err != nil {
		return postProps{}, err
	}
	post, err := a.Fetcher.Post(ctx, ref, slug)
	if err != nil {
		return postProps{}, err
	}
	neighbors, err := a.Fetcher.Neighbors(ctx, ref, post)
	if err != nil {
		a.Logger.WarnContext(ctx, "post neighbors", "slug", slug, "err", err)
		neighbors = blog.Neighbors{}
	}
	return postProps{Post: post, Neighbors: neighbors}, nil
}

// handleMorePosts serves the next page of the post list as an HTML
// fragment. Failures answer with an error fragment and leave the client's
// list and cursor untouched.
func (a *App) handleMorePosts(c echo.Context) error {
	ctx := c.Request().Context()
	cursor := blog.Cursor(c.QueryParam("cursor"))
	if cursor == "" {
		noStore(c)
		return RenderStatus(c, http.StatusBadRequest, a.Views.LoadMoreError())
	}

	page, err := a.Fetcher.NextPage(ctx, cursor)
	if err != nil {
		noStore(c)
		if errors.Is(err, prismic.ErrForeignCursor) {
			a.Logger.WarnContext(ctx, "load more: rejected cursor", "err", err)
			return RenderStatus(c, http.StatusBadRequest, a.Views.LoadMoreError())
		}
		a.Logger.ErrorContext(ctx, "load more", "err", err)
		return RenderStatus(c, http.StatusBadGateway, a.Views.LoadMoreError())
	}
	if page.Next == cursor {
		page.Next = ""
	}
	if _, preview := PreviewRef(c); preview {
		noStore(c)
	}
	return Render(c, a.Views.MorePosts(page.Results, page.Next, a.site))
}

func (a *App) allPosts(ctx context.Context) ([]blog.PostSummary, error) {
	return a.feedCache.Get(ctx, feedKey, func(ctx context.Context) ([]blog.PostSummary, error) {
		return a.Fetcher.All(ctx, "")
	})
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.allPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.allPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, "User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: "+AbsoluteURL(a.Config.URL, "/sitemap.xml")+"\n")
}

func handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleRevalidate drops cached pages. Each ?path= names a page ("/" or
// "/post/<slug>/"); without one every page is dropped.
func (a *App) handleRevalidate(c echo.Context) error {
	if a.Config.RevalidateSecret == "" {
		return echo.ErrNotFound
	}
	ip := c.RealIP()
	if !a.previewLimiter.Check(ip) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many invalid attempts")
	}
	secret := c.Request().Header.Get("X-Revalidate-Secret")
	if secret == "" {
		secret = c.QueryParam("secret")
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(a.Config.RevalidateSecret)) != 1 {
		a.previewLimiter.Record(ip)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid secret")
	}

	paths := c.QueryParams()["path"]
	a.Revalidate(paths...)
	a.Logger.InfoContext(c.Request().Context(), "revalidated", "paths", paths)
	return c.JSON(http.StatusOK, map[string]any{"revalidated": true, "paths": paths})
}

// Revalidate drops the cached props of the given page paths, or of every
// page when none are given.
func (a *App) Revalidate(paths ...string) {
	if len(paths) == 0 {
		a.homeCache.Invalidate()
		a.postCache.Invalidate()
		a.feedCache.Invalidate()
		return
	}
	for _, p := range paths {
		if p == "/" {
			a.homeCache.Invalidate(homeKey)
			a.feedCache.Invalidate(feedKey)
			continue
		}
		if slug, ok := slugFromPath(p); ok {
			a.postCache.Invalidate(slug)
			a.feedCache.Invalidate(feedKey)
		}
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	_, preview := PreviewRef(c)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.site, preview))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.ErrorContext(c.Request().Context(), "server error", "uri", c.Request().RequestURI, "err", err)
		noStore(c)
		_ = RenderStatus(c, code, a.Views.ServerError(a.site, preview))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
