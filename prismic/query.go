package prismic

import (
	"net/url"
	"strconv"
	"strings"
)

// Common document paths used in predicates and orderings.
const (
	PathType                 = "document.type"
	PathID                   = "document.id"
	PathTags                 = "document.tags"
	PathFirstPublicationDate = "document.first_publication_date"
	PathLastPublicationDate  = "document.last_publication_date"
)

// UIDPath returns the predicate path of the uid field of a custom type,
// e.g. "my.posts.uid".
func UIDPath(docType string) string {
	return "my." + docType + ".uid"
}

// Predicate is a single search condition such as at(document.type, "posts").
type Predicate struct {
	Name   string
	Path   string
	Values []string
}

// At matches documents whose path equals value.
func At(path, value string) Predicate {
	return Predicate{Name: "at", Path: path, Values: []string{value}}
}

// Any matches documents whose path equals one of values.
func Any(path string, values ...string) Predicate {
	return Predicate{Name: "any", Path: path, Values: values}
}

// String encodes the predicate in the API query syntax.
func (p Predicate) String() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(p.Name)
	b.WriteString("(")
	b.WriteString(p.Path)
	b.WriteString(", ")
	if p.Name == "at" && len(p.Values) == 1 {
		b.WriteString(strconv.Quote(p.Values[0]))
	} else {
		b.WriteString("[")
		for i, v := range p.Values {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(v))
		}
		b.WriteString("]")
	}
	b.WriteString(")]")
	return b.String()
}

// Ordering sorts results by a document or data field.
type Ordering struct {
	Field string
	Desc  bool
}

// Query describes one call to the document search endpoint.
type Query struct {
	// Ref selects the content version. Empty means the master ref.
	Ref        string
	Predicates []Predicate
	// Fetch restricts the returned data fields, e.g. "posts.title".
	Fetch     []string
	PageSize  int
	Page      int
	Orderings []Ordering
	// After returns only documents positioned after the given document id
	// in the requested ordering.
	After string
	Lang  string
}

// EncodePredicates renders a predicate list as the q parameter value.
func EncodePredicates(preds []Predicate) string {
	var b strings.Builder
	b.WriteString("[")
	for _, p := range preds {
		b.WriteString(p.String())
	}
	b.WriteString("]")
	return b.String()
}

// EncodeOrderings renders orderings as the orderings parameter value.
func EncodeOrderings(orderings []Ordering) string {
	parts := make([]string, 0, len(orderings))
	for _, o := range orderings {
		if o.Desc {
			parts = append(parts, o.Field+" desc")
		} else {
			parts = append(parts, o.Field)
		}
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Values encodes the query as URL parameters. The ref parameter is
// included as-is so callers must resolve an empty ref first.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Ref != "" {
		v.Set("ref", q.Ref)
	}
	if len(q.Predicates) > 0 {
		v.Set("q", EncodePredicates(q.Predicates))
	}
	if len(q.Fetch) > 0 {
		v.Set("fetch", strings.Join(q.Fetch, ","))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if len(q.Orderings) > 0 {
		v.Set("orderings", EncodeOrderings(q.Orderings))
	}
	if q.After != "" {
		v.Set("after", q.After)
	}
	if q.Lang != "" {
		v.Set("lang", q.Lang)
	}
	return v
}
