// Package extract implements the selector fallback extraction engine:
// given a page accessor (rendered or static) and the wanted fields, walk
// each field's candidate chain in order until a non-empty value turns up.
package extract

import (
	"strings"

	"github.com/DecLeMec/price-scraper/catalog"
)

// PageAccessor is the read surface the engine needs from a page.
type PageAccessor interface {
	// QueryText returns the trimmed text content of the first element
	// matching the DOM query, or "" when nothing matches.
	QueryText(query string) (string, error)

	// MetaContent returns the content attribute of the named meta tag,
	// or "" when the tag is absent.
	MetaContent(property string) (string, error)
}

// Result is the outcome of one extraction: raw strings plus their
// normalized counterparts. Every requested field is present in both maps,
// defaulting to the empty string when no chain candidate matched.
type Result struct {
	Raw    map[string]string
	Values map[string]any
}

// Fields produces the raw value for every requested field. First match
// wins within a chain; order is priority, never "best match". An accessor
// error on one candidate means that candidate produced nothing and the
// walk continues down the chain.
func Fields(acc PageAccessor, fam catalog.Family, fields []string) map[string]string {
	raw := make(map[string]string, len(fields))
	for _, field := range fields {
		raw[field] = firstMatch(acc, fam.Chain(field))
	}
	return raw
}

func firstMatch(acc PageAccessor, chain catalog.Chain) string {
	for _, d := range chain {
		var v string
		var err error
		switch d.Kind {
		case catalog.KindDOM:
			v, err = acc.QueryText(d.Query)
		case catalog.KindMeta:
			v, err = acc.MetaContent(d.Query)
		}
		if err != nil {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Finalize builds the Result for a request: every requested field present
// in Raw (empty string for misses) and normalized into Values.
func Finalize(fields []string, raw map[string]string) *Result {
	res := &Result{
		Raw:    make(map[string]string, len(fields)),
		Values: make(map[string]any, len(fields)),
	}
	for _, field := range fields {
		v := raw[field]
		res.Raw[field] = v
		res.Values[field] = Normalize(field, v)
	}
	return res
}
