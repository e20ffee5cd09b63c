// Package catalog maps product field names to ordered selector fallback
// chains, grouped into site families. The catalog is pure data: it is built
// once at startup (optionally merged with a YAML file) and only read after
// that, so no locking is needed.
package catalog

import "strings"

// Kind tags how a Descriptor locates its value.
type Kind string

const (
	// KindDOM queries the document and reads the first match's text.
	KindDOM Kind = "dom"
	// KindMeta reads a named meta tag's content attribute.
	KindMeta Kind = "meta"
)

// Descriptor is one extraction candidate for a field.
type Descriptor struct {
	Kind  Kind   `yaml:"kind"`
	Query string `yaml:"query"`
}

// Chain is the ordered candidate list for one field. Order encodes
// priority: the first descriptor producing a non-empty value wins.
type Chain []Descriptor

// Family groups the chains for one class of sites.
type Family struct {
	Name string `yaml:"name"`

	// HostPatterns are substrings matched against the request host,
	// e.g. "amazon." matches amazon.com and amazon.ca.
	HostPatterns []string `yaml:"host_patterns"`

	// StaticFriendly marks hosts known to expose the required data in
	// unrendered HTML meta tags, making them candidates for the static
	// fetch path.
	StaticFriendly bool `yaml:"static_friendly"`

	Fields map[string]Chain `yaml:"fields"`
}

// Chain returns the fallback chain for field, or nil when the field is
// unknown. An empty chain extracts nothing; it is not an error.
func (f Family) Chain(field string) Chain {
	return f.Fields[field]
}

// MetaSatisfiable reports whether every requested field's chain contains a
// meta descriptor among the supported properties, i.e. whether a meta-only
// extractor could answer the whole request.
func (f Family) MetaSatisfiable(fields, supported []string) bool {
	for _, field := range fields {
		if !chainHasMeta(f.Chain(field), supported) {
			return false
		}
	}
	return len(fields) > 0
}

func chainHasMeta(chain Chain, supported []string) bool {
	for _, d := range chain {
		if d.Kind != KindMeta {
			continue
		}
		for _, s := range supported {
			if d.Query == s {
				return true
			}
		}
	}
	return false
}

// Catalog holds all families. Matching walks families in order; the
// fallback family answers hosts nothing else claims.
type Catalog struct {
	families []Family
	fallback Family
}

// ForHost returns the family whose host pattern matches host, else the
// fallback family. Matching is case-insensitive substring containment.
func (c *Catalog) ForHost(host string) Family {
	host = strings.ToLower(host)
	for _, f := range c.families {
		for _, p := range f.HostPatterns {
			if p != "" && strings.Contains(host, strings.ToLower(p)) {
				return f
			}
		}
	}
	return c.fallback
}

// Default builds the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		families: []Family{
			{
				Name:         "amazon",
				HostPatterns: []string{"amazon."},
				Fields: map[string]Chain{
					"title": {
						{Kind: KindDOM, Query: "#productTitle"},
						{Kind: KindDOM, Query: "#title"},
						{Kind: KindMeta, Query: "og:title"},
					},
					"price": {
						{Kind: KindDOM, Query: ".a-price .a-offscreen"},
						{Kind: KindDOM, Query: "#priceblock_ourprice"},
						{Kind: KindDOM, Query: "#priceblock_dealprice"},
						{Kind: KindDOM, Query: ".a-price-whole"},
					},
					"rating": {
						{Kind: KindDOM, Query: "span[data-hook=rating-out-of-text]"},
						{Kind: KindDOM, Query: "#acrPopover .a-icon-alt"},
						{Kind: KindDOM, Query: ".a-icon-star .a-icon-alt"},
					},
				},
			},
			{
				Name:           "shopify",
				HostPatterns:   []string{".myshopify.com", "shopify."},
				StaticFriendly: true,
				Fields: map[string]Chain{
					"title": {
						{Kind: KindMeta, Query: "og:title"},
						{Kind: KindDOM, Query: ".product__title h1"},
						{Kind: KindDOM, Query: "h1.product-single__title"},
					},
					"price": {
						{Kind: KindMeta, Query: "product:price:amount"},
						{Kind: KindDOM, Query: ".price__regular .price-item"},
						{Kind: KindDOM, Query: ".product__price"},
					},
					"rating": {
						{Kind: KindDOM, Query: ".spr-badge-caption"},
						{Kind: KindDOM, Query: "[itemprop=ratingValue]"},
					},
				},
			},
		},
		fallback: Family{
			Name: "default",
			Fields: map[string]Chain{
				"title": {
					{Kind: KindMeta, Query: "og:title"},
					{Kind: KindDOM, Query: "h1"},
					{Kind: KindDOM, Query: "[itemprop=name]"},
				},
				"price": {
					{Kind: KindMeta, Query: "product:price:amount"},
					{Kind: KindDOM, Query: "[itemprop=price]"},
					{Kind: KindDOM, Query: ".price"},
					{Kind: KindDOM, Query: ".product-price"},
				},
				"rating": {
					{Kind: KindDOM, Query: "[itemprop=ratingValue]"},
					{Kind: KindDOM, Query: ".rating"},
				},
			},
		},
	}
}
