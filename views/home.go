package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/blog"
)

// Home renders the post list with its load-more control.
func Home(data HomeData) templ.Component {
	body := component(func(h *htmlWriter) {
		h.raw(`<section class="posts" id="posts">`)
		for _, p := range data.Posts {
			h.component(PostItem(p, data.Site))
		}
		h.raw(`</section>`)
		h.component(LoadMoreButton(data.Next))
	})
	meta := PageMeta{
		Title:  "Home",
		URL:    buildURL(data.Site.URL),
		JSONLD: WebsiteJsonLD(data.Site),
	}
	return Layout(data.Site, meta, data.Preview, body)
}

// PostItem renders one entry of the post list.
func PostItem(p blog.PostSummary, site SiteConfig) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<a class="post-item" data-uid="`)
		h.text(p.UID)
		h.raw(`" href="`)
		h.url(p.Link())
		h.raw(`"><strong>`)
		h.text(p.Title)
		h.raw(`</strong><p>`)
		h.text(p.Subtitle)
		h.raw(`</p><div class="info"><time datetime="`)
		h.text(isoDate(p.FirstPublicationDate))
		h.raw(`">`)
		h.text(FormatDate(p.FirstPublicationDate, site.location()))
		h.raw(`</time><span class="author">`)
		h.text(p.Author)
		h.raw(`</span></div></a>`)
	})
}

// LoadMoreButton renders the load-more control, or nothing when the list
// is exhausted.
func LoadMoreButton(next blog.Cursor) templ.Component {
	return component(func(h *htmlWriter) {
		if next == "" {
			return
		}
		h.raw(`<div class="load-more" id="load-more"><button type="button" data-next="`)
		h.url(MoreURL(next))
		h.raw(`">Carregar mais posts</button><p class="load-more-error" role="alert" hidden></p></div>`)
	})
}

// MorePosts is the fragment the load-more action appends: the next items
// followed by a fresh control.
func MorePosts(posts []blog.PostSummary, next blog.Cursor, site SiteConfig) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<section class="posts">`)
		for _, p := range posts {
			h.component(PostItem(p, site))
		}
		h.raw(`</section>`)
		h.component(LoadMoreButton(next))
	})
}

// LoadMoreError is the fragment returned when the next page could not be
// fetched. The client keeps its list and cursor and shows the message.
func LoadMoreError() templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<p class="load-more-error" role="alert">Não foi possível carregar mais posts. Tente novamente.</p>`)
	})
}
