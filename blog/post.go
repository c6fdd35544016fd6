// Package blog turns CMS documents into the post summaries, post details and
// navigation links the site renders, and holds the pagination state of a
// post list.
package blog

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/richtext"
)

// PostSummary is what the post list shows for one post.
type PostSummary struct {
	UID                  string
	FirstPublicationDate time.Time
	Title                string
	Subtitle             string
	Author               string
}

// Link returns the post page path.
func (p PostSummary) Link() string {
	return PostPath(p.UID)
}

// PostPath returns the page path of the post with uid.
func PostPath(uid string) string {
	return "/post/" + uid + "/"
}

// Banner is the post header image.
type Banner struct {
	URL string
	Alt string
}

// Section is one heading plus its rich-text body.
type Section struct {
	Heading string
	Body    richtext.RichText
}

// PostDetail is a full post as rendered on its own page.
type PostDetail struct {
	PostSummary
	// ID is the CMS document id, used to anchor neighbor queries.
	ID                  string
	LastPublicationDate time.Time
	Banner              Banner
	Content             []Section
}

// Edited reports whether the post was republished after its first publication.
func (p PostDetail) Edited() bool {
	return !p.LastPublicationDate.IsZero() && !p.LastPublicationDate.Equal(p.FirstPublicationDate)
}

// ReadingTime estimates how long the post takes to read.
func (p PostDetail) ReadingTime() string {
	return ReadingTime(p.Content)
}

// NeighborReference links to the chronologically adjacent post.
type NeighborReference struct {
	UID   string
	Title string
}

// Link returns the neighbor's page path.
func (n NeighborReference) Link() string {
	return PostPath(n.UID)
}

// Neighbors holds the previous (older) and next (newer) posts. A nil entry
// means the current post is at that end of the sequence.
type Neighbors struct {
	Previous *NeighborReference
	Next     *NeighborReference
}

type postData struct {
	Title    richtext.Text `json:"title"`
	Subtitle richtext.Text `json:"subtitle"`
	Author   richtext.Text `json:"author"`
	Banner   struct {
		URL string `json:"url"`
		Alt string `json:"alt"`
	} `json:"banner"`
	Content []struct {
		Heading richtext.Text     `json:"heading"`
		Body    richtext.RichText `json:"body"`
	} `json:"content"`
}

func decodeData(doc prismic.Document) (postData, error) {
	var data postData
	if len(doc.Data) == 0 || string(doc.Data) == "null" {
		return data, nil
	}
	if err := json.Unmarshal(doc.Data, &data); err != nil {
		return data, fmt.Errorf("blog: decode document %s: %w", doc.ID, err)
	}
	return data, nil
}

// SummaryFromDocument maps a search result to a PostSummary.
func SummaryFromDocument(doc prismic.Document) (PostSummary, error) {
	data, err := decodeData(doc)
	if err != nil {
		return PostSummary{}, err
	}
	return summary(doc, data), nil
}

func summary(doc prismic.Document, data postData) PostSummary {
	return PostSummary{
		UID:                  doc.UID,
		FirstPublicationDate: doc.FirstPublicationDate.Time,
		Title:                data.Title.String(),
		Subtitle:             data.Subtitle.String(),
		Author:               data.Author.String(),
	}
}

// DetailFromDocument maps a full document to a PostDetail.
func DetailFromDocument(doc prismic.Document) (PostDetail, error) {
	data, err := decodeData(doc)
	if err != nil {
		return PostDetail{}, err
	}
	content := make([]Section, 0, len(data.Content))
	for _, c := range data.Content {
		content = append(content, Section{Heading: c.Heading.String(), Body: c.Body})
	}
	return PostDetail{
		PostSummary:         summary(doc, data),
		ID:                  doc.ID,
		LastPublicationDate: doc.LastPublicationDate.Time,
		Banner:              Banner{URL: data.Banner.URL, Alt: data.Banner.Alt},
		Content:             content,
	}, nil
}
