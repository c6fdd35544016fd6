package spacetraveling

import (
	"errors"
	"net/http"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/blog"
)

const previewRefKey = "preview_ref"

// PreviewRef returns the content ref stored by the preview entry point, if
// the session holds one.
func PreviewRef(c echo.Context) (string, bool) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return "", false
	}
	ref, ok := sess.Values[previewRefKey].(string)
	return ref, ok && ref != ""
}

func setPreviewRef(c echo.Context, ref string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[previewRefKey] = ref
	return sess.Save(c.Request(), c.Response())
}

func clearPreviewRef(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, previewRefKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// handlePreview enters preview mode with the ref in ?token= and redirects
// to the document in ?documentId=, or home when it cannot be resolved.
func (a *App) handlePreview(c echo.Context) error {
	ip := c.RealIP()
	if !a.previewLimiter.Check(ip) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many invalid preview attempts")
	}
	token := c.QueryParam("token")
	if token == "" {
		a.previewLimiter.Record(ip)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	ctx := c.Request().Context()
	redirect := "/"
	if id := c.QueryParam("documentId"); id != "" {
		post, err := a.Fetcher.PostByID(ctx, token, id)
		switch {
		case err == nil:
			redirect = post.Link()
		case errors.Is(err, blog.ErrNotFound):
		default:
			return a.rejectPreview(c, ip, err, "document_id", id)
		}
	} else if _, err := a.Fetcher.FirstPage(ctx, token); err != nil {
		return a.rejectPreview(c, ip, err)
	}

	if err := setPreviewRef(c, token); err != nil {
		return err
	}
	noStore(c)
	return c.Redirect(http.StatusTemporaryRedirect, redirect)
}

// rejectPreview answers a ref the CMS refused. Unknown or expired refs fail
// every query, so the ref is never stored.
func (a *App) rejectPreview(c echo.Context, ip string, err error, attrs ...any) error {
	a.previewLimiter.Record(ip)
	a.Logger.WarnContext(c.Request().Context(), "preview: rejected ref", append(attrs, "err", err)...)
	return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
}

// handleExitPreview leaves preview mode and returns home.
func (a *App) handleExitPreview(c echo.Context) error {
	if err := clearPreviewRef(c); err != nil {
		return err
	}
	noStore(c)
	return c.Redirect(http.StatusTemporaryRedirect, "/")
}
