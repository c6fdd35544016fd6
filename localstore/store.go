// Package localstore keeps CMS documents in SQLite and answers the same
// document queries as the Prismic API. It backs local development and tests.
package localstore

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/eringen/spacetraveling/prismic"
)

// MasterRef is the ref of published content. Any other ref also sees drafts.
const MasterRef = "master"

const (
	defaultPageSize = 20
	maxPageSize     = 100
	dateLayout      = "2006-01-02T15:04:05Z"
	cursorPrefix    = "localstore:"
)

// ErrUnsupportedPredicate is returned for predicates the store cannot evaluate.
var ErrUnsupportedPredicate = errors.New("localstore: unsupported predicate")

// Document is a stored CMS document plus its publication state.
type Document struct {
	prismic.Document
	Published bool
}

// Store wraps a SQLite database of documents.
type Store struct {
	db        *sql.DB
	// cursorKey signs page cursors. Cursors do not survive a restart.
	cursorKey []byte
}

// Open opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		db.Close()
		return nil, fmt.Errorf("localstore: cursor key: %w", err)
	}
	s := &Store{db: db, cursorKey: key}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    uid TEXT NOT NULL,
    type TEXT NOT NULL,
    lang TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '',
    first_publication_date TEXT NOT NULL,
    last_publication_date TEXT NOT NULL,
    published INTEGER NOT NULL DEFAULT 1,
    data TEXT NOT NULL DEFAULT '{}'
);
CREATE UNIQUE INDEX IF NOT EXISTS documents_type_uid ON documents (type, uid);
CREATE INDEX IF NOT EXISTS documents_first_pub ON documents (first_publication_date);
`)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Save upserts a document. Tags are normalized to lowercase.
func (s *Store) Save(ctx context.Context, d Document) error {
	return save(ctx, s.db, d)
}

func save(ctx context.Context, ex execer, d Document) error {
	if d.ID == "" || d.Type == "" {
		return errors.New("localstore: document id and type are required")
	}
	data := string(d.Data)
	if data == "" {
		data = "{}"
	}
	first := d.FirstPublicationDate.Time
	if first.IsZero() {
		first = time.Now()
	}
	last := d.LastPublicationDate.Time
	if last.IsZero() {
		last = first
	}
	published := 0
	if d.Published {
		published = 1
	}
	query, args, err := sq.Insert("documents").
		Options("OR REPLACE").
		Columns("id", "uid", "type", "lang", "tags", "first_publication_date", "last_publication_date", "published", "data").
		Values(d.ID, d.UID, d.Type, d.Lang, formatTags(d.Tags), formatDate(first), formatDate(last), published, data).
		ToSql()
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, query, args...)
	return err
}

// Delete removes a document by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	query, args, err := sq.Delete("documents").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// Query runs a document search.
func (s *Store) Query(ctx context.Context, q prismic.Query) (*prismic.Response, error) {
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	conds, err := s.conditions(ctx, q)
	if err != nil {
		return nil, err
	}

	count := sq.Select("COUNT(*)").From("documents")
	for _, c := range conds {
		count = count.Where(c)
	}
	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, err
	}
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("localstore: count: %w", err)
	}

	sel := sq.Select("id", "uid", "type", "lang", "tags", "first_publication_date", "last_publication_date", "data").
		From("documents").
		OrderBy(orderBy(q.Orderings)...).
		Limit(uint64(q.PageSize)).
		Offset(uint64((q.Page - 1) * q.PageSize))
	for _, c := range conds {
		sel = sel.Where(c)
	}
	selSQL, selArgs, err := sel.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, selSQL, selArgs...)
	if err != nil {
		return nil, fmt.Errorf("localstore: query: %w", err)
	}
	defer rows.Close()

	resp := &prismic.Response{
		Page:             q.Page,
		ResultsPerPage:   q.PageSize,
		TotalResultsSize: total,
		TotalPages:       (total + q.PageSize - 1) / q.PageSize,
		Results:          []prismic.Document{},
	}
	for rows.Next() {
		var doc prismic.Document
		var tags, first, last, data string
		if err := rows.Scan(&doc.ID, &doc.UID, &doc.Type, &doc.Lang, &tags, &first, &last, &data); err != nil {
			return nil, err
		}
		doc.Tags = ParseTags(tags)
		doc.FirstPublicationDate = prismic.Date{Time: parseDate(first)}
		doc.LastPublicationDate = prismic.Date{Time: parseDate(last)}
		doc.Data, err = project(json.RawMessage(data), doc.Type, q.Fetch)
		if err != nil {
			return nil, fmt.Errorf("localstore: project %s: %w", doc.ID, err)
		}
		resp.Results = append(resp.Results, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	resp.ResultsSize = len(resp.Results)

	if q.Page > 1 {
		prev := q
		prev.Page--
		resp.PrevPage = s.encodeCursor(prev)
	}
	if q.Page < resp.TotalPages {
		next := q
		next.Page++
		resp.NextPage = s.encodeCursor(next)
	}
	return resp, nil
}

// Next runs the query a cursor from a previous Query encodes.
func (s *Store) Next(ctx context.Context, cursor string) (*prismic.Response, error) {
	q, err := s.decodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	return s.Query(ctx, q)
}

func (s *Store) conditions(ctx context.Context, q prismic.Query) ([]sq.Sqlizer, error) {
	var conds []sq.Sqlizer
	if q.Ref == "" || q.Ref == MasterRef {
		conds = append(conds, sq.Eq{"published": 1})
	}
	if q.Lang != "" && q.Lang != "*" {
		conds = append(conds, sq.Eq{"lang": q.Lang})
	}
	for _, p := range q.Predicates {
		c, err := predicate(p)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	if q.After != "" {
		c, err := s.after(ctx, q)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}

func predicate(p prismic.Predicate) (sq.Sqlizer, error) {
	if len(p.Values) == 0 {
		return nil, fmt.Errorf("%w: %s without values", ErrUnsupportedPredicate, p.Name)
	}
	if p.Path == prismic.PathTags {
		var or sq.Or
		for _, v := range p.Values {
			or = append(or, sq.Like{"tags": "%," + normalizeTag(v) + ",%"})
		}
		if p.Name == "at" && len(or) == 1 {
			return or[0], nil
		}
		if p.Name == "any" {
			return or, nil
		}
		return nil, fmt.Errorf("%w: %s on tags", ErrUnsupportedPredicate, p.Name)
	}

	var cond sq.Sqlizer
	col, docType, ok := column(p.Path)
	if !ok {
		return nil, fmt.Errorf("%w: path %s", ErrUnsupportedPredicate, p.Path)
	}
	switch p.Name {
	case "at":
		if len(p.Values) != 1 {
			return nil, fmt.Errorf("%w: at with %d values", ErrUnsupportedPredicate, len(p.Values))
		}
		cond = sq.Eq{col: p.Values[0]}
	case "any":
		cond = sq.Eq{col: p.Values}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPredicate, p.Name)
	}
	if docType != "" {
		return sq.And{sq.Eq{"type": docType}, cond}, nil
	}
	return cond, nil
}

// column maps a predicate path to a column, plus the type a my.<type>.uid
// path implies.
func column(path string) (string, string, bool) {
	switch path {
	case prismic.PathType:
		return "type", "", true
	case prismic.PathID:
		return "id", "", true
	case prismic.PathFirstPublicationDate, prismic.PathLastPublicationDate:
		return strings.TrimPrefix(path, "document."), "", true
	}
	if strings.HasPrefix(path, "my.") && strings.HasSuffix(path, ".uid") {
		docType := strings.TrimSuffix(strings.TrimPrefix(path, "my."), ".uid")
		if docType != "" && !strings.Contains(docType, ".") {
			return "uid", docType, true
		}
	}
	return "", "", false
}

func orderColumn(o prismic.Ordering) string {
	switch o.Field {
	case prismic.PathLastPublicationDate:
		return "last_publication_date"
	default:
		return "first_publication_date"
	}
}

func orderBy(orderings []prismic.Ordering) []string {
	if len(orderings) == 0 {
		orderings = []prismic.Ordering{{Field: prismic.PathFirstPublicationDate, Desc: true}}
	}
	dir := func(desc bool) string {
		if desc {
			return " DESC"
		}
		return " ASC"
	}
	out := make([]string, 0, len(orderings)+1)
	for _, o := range orderings {
		out = append(out, orderColumn(o)+dir(o.Desc))
	}
	// id breaks ties in the direction of the primary ordering
	return append(out, "id"+dir(orderings[0].Desc))
}

// after restricts results to rows past the anchor document in the primary
// ordering. An unknown anchor matches nothing.
func (s *Store) after(ctx context.Context, q prismic.Query) (sq.Sqlizer, error) {
	o := prismic.Ordering{Field: prismic.PathFirstPublicationDate, Desc: true}
	if len(q.Orderings) > 0 {
		o = q.Orderings[0]
	}
	col := orderColumn(o)
	query, args, err := sq.Select(col).From("documents").Where(sq.Eq{"id": q.After}).ToSql()
	if err != nil {
		return nil, err
	}
	var anchor string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&anchor)
	if errors.Is(err, sql.ErrNoRows) {
		return sq.Expr("1 = 0"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("localstore: after anchor: %w", err)
	}
	if o.Desc {
		return sq.Or{sq.Lt{col: anchor}, sq.And{sq.Eq{col: anchor}, sq.Lt{"id": q.After}}}, nil
	}
	return sq.Or{sq.Gt{col: anchor}, sq.And{sq.Eq{col: anchor}, sq.Gt{"id": q.After}}}, nil
}

// project keeps only the data fields listed in fetch ("<type>.<field>").
func project(data json.RawMessage, docType string, fetch []string) (json.RawMessage, error) {
	if len(fetch) == 0 {
		return data, nil
	}
	keep := make(map[string]struct{}, len(fetch))
	for _, f := range fetch {
		t, field, ok := strings.Cut(f, ".")
		if ok && t == docType {
			keep[field] = struct{}{}
		}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for k := range fields {
		if _, ok := keep[k]; !ok {
			delete(fields, k)
		}
	}
	return json.Marshal(fields)
}

// Cursors are cursorPrefix + base64url(JSON query) + "." + base64url(HMAC).
// A visitor cannot widen a query, or switch its ref, without the key.
func (s *Store) encodeCursor(q prismic.Query) string {
	b, err := json.Marshal(q)
	if err != nil {
		return ""
	}
	payload := base64.RawURLEncoding.EncodeToString(b)
	return cursorPrefix + payload + "." + base64.RawURLEncoding.EncodeToString(s.sign(payload))
}

func (s *Store) decodeCursor(cursor string) (prismic.Query, error) {
	var q prismic.Query
	raw, ok := strings.CutPrefix(cursor, cursorPrefix)
	if !ok {
		return q, prismic.ErrForeignCursor
	}
	payload, sig, ok := strings.Cut(raw, ".")
	if !ok {
		return q, fmt.Errorf("%w: unsigned", prismic.ErrForeignCursor)
	}
	mac, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(mac, s.sign(payload)) {
		return q, fmt.Errorf("%w: bad signature", prismic.ErrForeignCursor)
	}
	b, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return q, fmt.Errorf("%w: %v", prismic.ErrForeignCursor, err)
	}
	if err := json.Unmarshal(b, &q); err != nil {
		return q, fmt.Errorf("%w: %v", prismic.ErrForeignCursor, err)
	}
	return q, nil
}

func (s *Store) sign(payload string) []byte {
	h := hmac.New(sha256.New, s.cursorKey)
	h.Write([]byte(payload))
	return h.Sum(nil)
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func parseDate(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

func formatTags(tags []string) string {
	normalized := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = normalizeTag(t); t != "" {
			normalized = append(normalized, t)
		}
	}
	if len(normalized) == 0 {
		return ""
	}
	return "," + strings.Join(normalized, ",") + ","
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
