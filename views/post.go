package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/blog"
	"github.com/eringen/spacetraveling/richtext"
)

// Post renders a post page: banner, header info, content sections and
// links to the neighboring posts.
func Post(data PostData) templ.Component {
	p := data.Post
	loc := data.Site.location()
	body := component(func(h *htmlWriter) {
		if p.Banner.URL != "" {
			alt := p.Banner.Alt
			if alt == "" {
				alt = "banner"
			}
			h.raw(`<img class="banner" src="`)
			h.url(p.Banner.URL)
			h.raw(`" alt="`)
			h.text(alt)
			h.raw(`">`)
		}
		h.raw(`<article class="post"><h1>`)
		h.text(p.Title)
		h.raw(`</h1><div class="info"><time datetime="`)
		h.text(isoDate(p.FirstPublicationDate))
		h.raw(`">`)
		h.text(FormatDate(p.FirstPublicationDate, loc))
		h.raw(`</time><span class="author">`)
		h.text(p.Author)
		h.raw(`</span><span class="reading-time">`)
		h.text(p.ReadingTime())
		h.raw(`</span></div>`)
		if p.Edited() {
			h.raw(`<p class="edited">`)
			h.text(FormatEdited(p.LastPublicationDate, loc))
			h.raw(`</p>`)
		}
		for _, s := range p.Content {
			h.raw(`<section class="content"><h2>`)
			h.text(s.Heading)
			h.raw(`</h2>`)
			h.component(richtext.HTML(s.Body))
			h.raw(`</section>`)
		}
		h.raw(`</article>`)
		h.component(PostNavigation(data.Neighbors))
	})
	meta := PageMeta{
		Title:       p.Title,
		Description: p.Subtitle,
		URL:         buildURL(data.Site.URL, p.Link()),
		OGType:      "article",
		Image:       p.Banner.URL,
		JSONLD:      BlogPostingJsonLD(p, data.Site),
	}
	return Layout(data.Site, meta, data.Preview, body)
}

// PostNavigation renders the previous and next post links. It renders
// nothing when the post has no neighbors.
func PostNavigation(n blog.Neighbors) templ.Component {
	return component(func(h *htmlWriter) {
		if n.Previous == nil && n.Next == nil {
			return
		}
		h.raw(`<nav class="post-navigation">`)
		if n.Previous != nil {
			h.raw(`<a class="previous" href="`)
			h.url(n.Previous.Link())
			h.raw(`"><span>`)
			h.text(n.Previous.Title)
			h.raw(`</span><small>Post anterior</small></a>`)
		}
		if n.Next != nil {
			h.raw(`<a class="next" href="`)
			h.url(n.Next.Link())
			h.raw(`"><span>`)
			h.text(n.Next.Title)
			h.raw(`</span><small>Próximo post</small></a>`)
		}
		h.raw(`</nav>`)
	})
}
