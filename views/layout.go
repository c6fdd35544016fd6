package views

import (
	"github.com/a-h/templ"
)

// Layout wraps body in the document shell: head metadata, the site header
// and, while previewing drafts, the exit-preview button.
func Layout(site SiteConfig, meta PageMeta, preview bool, body templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		title := site.Name
		if meta.Title != "" {
			title = meta.Title + " | " + site.Name
		}
		description := meta.Description
		if description == "" {
			description = site.Description
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}

		h.raw(`<!DOCTYPE html><html lang="pt-BR"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title>`)
		if description != "" {
			h.raw(`<meta name="description" content="`)
			h.text(description)
			h.raw(`">`)
		}
		if meta.URL != "" {
			h.raw(`<link rel="canonical" href="`)
			h.url(meta.URL)
			h.raw(`"><meta property="og:url" content="`)
			h.url(meta.URL)
			h.raw(`">`)
		}
		h.raw(`<meta property="og:title" content="`)
		h.text(title)
		h.raw(`"><meta property="og:type" content="`)
		h.text(ogType)
		h.raw(`">`)
		if meta.Image != "" {
			h.raw(`<meta property="og:image" content="`)
			h.url(meta.Image)
			h.raw(`">`)
		}
		if meta.JSONLD != "" {
			h.raw(`<script type="application/ld+json">`)
			h.raw(meta.JSONLD)
			h.raw(`</script>`)
		}
		h.raw(`<link rel="alternate" type="application/rss+xml" title="`)
		h.text(site.Name)
		h.raw(`" href="/feed.xml">`)
		h.raw(`<link rel="stylesheet" href="/public/site.css">`)
		h.raw(`<script src="/public/loadmore.js" defer></script>`)
		h.raw(`</head><body>`)
		h.component(Header())
		h.raw(`<main class="container">`)
		h.component(body)
		if preview {
			h.component(PreviewButton())
		}
		h.raw(`</main></body></html>`)
	})
}

// Header renders the site logo linking home.
func Header() templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<header class="header"><a href="/" aria-label="Home"><img src="/public/logo.svg" alt="logo"></a></header>`)
	})
}

// PreviewButton links to the exit-preview action.
func PreviewButton() templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<aside class="preview-button"><a href="/api/exit-preview">Sair do modo Preview</a></aside>`)
	})
}

// NotFound is the page for unknown routes and post slugs.
func NotFound(site SiteConfig, preview bool) templ.Component {
	body := component(func(h *htmlWriter) {
		h.raw(`<section class="error-page"><h1>404</h1><p>Esse post não existe ou foi removido.</p><a href="/">Voltar para a home</a></section>`)
	})
	return Layout(site, PageMeta{Title: "Página não encontrada"}, preview, body)
}

// ServerError is the page for unexpected failures. A preview session keeps
// its exit button so a rejected ref can be dropped.
func ServerError(site SiteConfig, preview bool) templ.Component {
	body := component(func(h *htmlWriter) {
		h.raw(`<section class="error-page"><h1>Ops!</h1><p>Algo deu errado. Tente novamente em instantes.</p><a href="/">Voltar para a home</a></section>`)
	})
	return Layout(site, PageMeta{Title: "Erro"}, preview, body)
}
