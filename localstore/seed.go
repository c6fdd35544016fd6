package localstore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/eringen/spacetraveling/prismic"
)

// Fixtures is the YAML seed file layout.
type Fixtures struct {
	Documents []Fixture `yaml:"documents"`
}

// Fixture is one document in a seed file. Data holds the document fields
// exactly as the API would return them.
type Fixture struct {
	ID                   string                 `yaml:"id"`
	UID                  string                 `yaml:"uid"`
	Type                 string                 `yaml:"type"`
	Lang                 string                 `yaml:"lang"`
	Tags                 []string               `yaml:"tags"`
	FirstPublicationDate string                 `yaml:"first_publication_date"`
	LastPublicationDate  string                 `yaml:"last_publication_date"`
	Published            *bool                  `yaml:"published"`
	Data                 map[string]interface{} `yaml:"data"`
}

// LoadFixtures decodes a YAML seed file into documents. Missing ids get a
// random uuid and missing publication state defaults to published.
func LoadFixtures(r io.Reader) ([]Document, error) {
	var f Fixtures
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("localstore: decode fixtures: %w", err)
	}
	docs := make([]Document, 0, len(f.Documents))
	for i, fx := range f.Documents {
		d, err := fx.document()
		if err != nil {
			return nil, fmt.Errorf("localstore: fixture %d (%s): %w", i, fx.UID, err)
		}
		docs = append(docs, d)
	}
	return docs, nil
}

func (fx Fixture) document() (Document, error) {
	if fx.Type == "" {
		fx.Type = "posts"
	}
	if fx.ID == "" {
		fx.ID = uuid.NewString()
	}
	first, err := fixtureDate(fx.FirstPublicationDate)
	if err != nil {
		return Document{}, err
	}
	last, err := fixtureDate(fx.LastPublicationDate)
	if err != nil {
		return Document{}, err
	}
	if fx.Data == nil {
		fx.Data = map[string]interface{}{}
	}
	data, err := json.Marshal(fx.Data)
	if err != nil {
		return Document{}, err
	}
	published := fx.Published == nil || *fx.Published
	return Document{
		Document: prismic.Document{
			ID:                   fx.ID,
			UID:                  fx.UID,
			Type:                 fx.Type,
			Lang:                 fx.Lang,
			Tags:                 fx.Tags,
			FirstPublicationDate: prismic.Date{Time: first},
			LastPublicationDate:  prismic.Date{Time: last},
			Data:                 data,
		},
		Published: published,
	}, nil
}

func fixtureDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, prismic.DateLayout, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// Seed saves docs in one transaction and returns how many were written.
func (s *Store) Seed(ctx context.Context, docs []Document) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, d := range docs {
		if err := save(ctx, tx, d); err != nil {
			return 0, fmt.Errorf("localstore: seed %s: %w", d.UID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(docs), nil
}
