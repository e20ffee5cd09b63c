package extract

import (
	"errors"
	"testing"

	"github.com/DecLeMec/price-scraper/catalog"
)

// fakeAccessor answers queries from fixed maps and records what was asked.
type fakeAccessor struct {
	dom     map[string]string
	meta    map[string]string
	failDOM map[string]bool
	queried []string
}

func (f *fakeAccessor) QueryText(query string) (string, error) {
	f.queried = append(f.queried, query)
	if f.failDOM[query] {
		return "", errors.New("evaluation failed")
	}
	return f.dom[query], nil
}

func (f *fakeAccessor) MetaContent(property string) (string, error) {
	f.queried = append(f.queried, "meta:"+property)
	return f.meta[property], nil
}

func testFamily() catalog.Family {
	return catalog.Family{
		Name: "test",
		Fields: map[string]catalog.Chain{
			"title": {
				{Kind: catalog.KindMeta, Query: "og:title"},
				{Kind: catalog.KindDOM, Query: "h1"},
			},
			"price": {
				{Kind: catalog.KindDOM, Query: ".sale"},
				{Kind: catalog.KindDOM, Query: ".price"},
			},
		},
	}
}

func TestFields_FirstMatchWins(t *testing.T) {
	acc := &fakeAccessor{
		meta: map[string]string{"og:title": "Widget Pro"},
		dom:  map[string]string{"h1": "Widget Pro (rendered)", ".price": "$9.99"},
	}

	raw := Fields(acc, testFamily(), []string{"title", "price"})

	if raw["title"] != "Widget Pro" {
		t.Errorf("title = %q, want the meta candidate to win", raw["title"])
	}
	if raw["price"] != "$9.99" {
		t.Errorf("price = %q, want %q", raw["price"], "$9.99")
	}
	// The winning candidate must stop the walk.
	for _, q := range acc.queried {
		if q == "h1" {
			t.Error("chain walk should stop at the first match, but h1 was queried")
		}
	}
}

func TestFields_FallsThroughEmptyAndFailedCandidates(t *testing.T) {
	acc := &fakeAccessor{
		dom:     map[string]string{".price": "  $19.99  "},
		failDOM: map[string]bool{".sale": true},
	}

	raw := Fields(acc, testFamily(), []string{"price"})

	if raw["price"] != "$19.99" {
		t.Errorf("price = %q, want trimmed fallback value", raw["price"])
	}
}

func TestFields_UnknownFieldYieldsEmptyString(t *testing.T) {
	acc := &fakeAccessor{}

	raw := Fields(acc, testFamily(), []string{"upc", "title"})

	if v, ok := raw["upc"]; !ok || v != "" {
		t.Errorf("unknown field should be present and empty, got %q (present=%v)", v, ok)
	}
	if len(acc.queried) == 0 {
		t.Error("known fields should still be queried")
	}
}

func TestFields_MissesAreEmptyNotAbsent(t *testing.T) {
	acc := &fakeAccessor{}

	raw := Fields(acc, testFamily(), []string{"title", "price"})

	for _, field := range []string{"title", "price"} {
		if v, ok := raw[field]; !ok || v != "" {
			t.Errorf("field %q: want present empty string, got %q (present=%v)", field, v, ok)
		}
	}
}

func TestFinalize_EveryFieldPresentAndNormalized(t *testing.T) {
	raw := map[string]string{"price": "$1,234.56", "title": "Widget"}
	res := Finalize([]string{"price", "title", "rating"}, raw)

	if got := res.Values["price"]; got != 1234.56 {
		t.Errorf("price = %v, want 1234.56", got)
	}
	if got := res.Values["title"]; got != "Widget" {
		t.Errorf("title = %v, want Widget", got)
	}
	if v, ok := res.Raw["rating"]; !ok || v != "" {
		t.Errorf("missing field should finalize to empty string, got %q (present=%v)", v, ok)
	}
	if v, ok := res.Values["rating"]; !ok || v != "" {
		t.Errorf("missing field value should be empty string, got %v (present=%v)", v, ok)
	}
}

const fixtureHTML = `<!DOCTYPE html>
<html><head>
<title>Store</title>
<meta property="og:title" content="Widget Pro"/>
<meta property="product:price:amount" content="24.99"/>
<meta name="twitter:title" content="Widget Pro on Twitter"/>
</head><body>
<h1> Widget Pro Deluxe </h1>
<div class="price"><span>$</span>24.99</div>
<span itemprop="ratingValue">4.7</span>
</body></html>`

func TestHTMLDoc_QueryText(t *testing.T) {
	doc, err := ParseHTML(fixtureHTML)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}

	tests := []struct {
		query string
		want  string
	}{
		{"h1", "Widget Pro Deluxe"},
		{".price", "$24.99"},
		{"[itemprop=ratingValue]", "4.7"},
		{".does-not-exist", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := doc.QueryText(tt.query)
			if err != nil {
				t.Fatalf("QueryText(%q): %v", tt.query, err)
			}
			if got != tt.want {
				t.Errorf("QueryText(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestHTMLDoc_MetaContent(t *testing.T) {
	doc, err := ParseHTML(fixtureHTML)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}

	if got, _ := doc.MetaContent("og:title"); got != "Widget Pro" {
		t.Errorf("og:title = %q, want Widget Pro", got)
	}
	if got, _ := doc.MetaContent("product:price:amount"); got != "24.99" {
		t.Errorf("product:price:amount = %q, want 24.99", got)
	}
	if got, _ := doc.MetaContent("twitter:title"); got != "Widget Pro on Twitter" {
		t.Errorf("name= convention should be read as fallback, got %q", got)
	}
	if got, _ := doc.MetaContent("og:image"); got != "" {
		t.Errorf("absent meta should be empty, got %q", got)
	}
}

func TestHTMLDoc_DrivesTheEngine(t *testing.T) {
	doc, err := ParseHTML(fixtureHTML)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}

	raw := Fields(doc, catalog.Default().ForHost("shop.example.org"), []string{"title", "price", "rating"})

	if raw["title"] != "Widget Pro" {
		t.Errorf("title = %q, want the og:title value", raw["title"])
	}
	if raw["price"] != "24.99" {
		t.Errorf("price = %q, want the meta price", raw["price"])
	}
	if raw["rating"] != "4.7" {
		t.Errorf("rating = %q, want 4.7", raw["rating"])
	}
}
