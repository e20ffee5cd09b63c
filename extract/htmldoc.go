package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLDoc is a PageAccessor over parsed static HTML, for callers that hold
// a raw document instead of a live browser page.
type HTMLDoc struct {
	doc *goquery.Document
}

// ParseHTML builds an HTMLDoc from a raw HTML document.
func ParseHTML(html string) (*HTMLDoc, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &HTMLDoc{doc: doc}, nil
}

func (h *HTMLDoc) QueryText(query string) (string, error) {
	sel := h.doc.Find(query).First()
	if sel.Length() == 0 {
		return "", nil
	}
	return strings.TrimSpace(sel.Text()), nil
}

// MetaContent looks the property up under both attribute conventions:
// property= (Open Graph) first, then name=.
func (h *HTMLDoc) MetaContent(property string) (string, error) {
	sel := h.doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First()
	if sel.Length() == 0 {
		sel = h.doc.Find(fmt.Sprintf(`meta[name=%q]`, property)).First()
	}
	if sel.Length() == 0 {
		return "", nil
	}
	content, _ := sel.Attr("content")
	return strings.TrimSpace(content), nil
}
