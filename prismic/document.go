package prismic

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DateLayout is the timestamp layout the API uses for publication dates.
const DateLayout = "2006-01-02T15:04:05-0700"

// Date is a publication timestamp. The zero value encodes as null.
type Date struct {
	time.Time
}

// UnmarshalJSON accepts the API layout, RFC3339 and null.
func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
	}
	d.Time = t
	return nil
}

// MarshalJSON writes the API layout.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

// Document is a single search result.
type Document struct {
	ID                   string          `json:"id"`
	UID                  string          `json:"uid,omitempty"`
	Type                 string          `json:"type"`
	Href                 string          `json:"href,omitempty"`
	Tags                 []string        `json:"tags"`
	FirstPublicationDate Date            `json:"first_publication_date"`
	LastPublicationDate  Date            `json:"last_publication_date"`
	Lang                 string          `json:"lang,omitempty"`
	Data                 json.RawMessage `json:"data"`
}

// Response is one page of search results.
type Response struct {
	Page             int        `json:"page"`
	ResultsPerPage   int        `json:"results_per_page"`
	ResultsSize      int        `json:"results_size"`
	TotalResultsSize int        `json:"total_results_size"`
	TotalPages       int        `json:"total_pages"`
	NextPage         string     `json:"next_page"`
	PrevPage         string     `json:"prev_page"`
	Results          []Document `json:"results"`
}

// Ref is a content version published by the repository.
type Ref struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

// API is the repository description returned by the API root.
type API struct {
	Refs      []Ref             `json:"refs"`
	Types     map[string]string `json:"types"`
	Languages []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"languages"`
}

// Master returns the master ref, or false when the repository lists none.
func (a *API) Master() (Ref, bool) {
	for _, r := range a.Refs {
		if r.IsMasterRef {
			return r, true
		}
	}
	return Ref{}, false
}
