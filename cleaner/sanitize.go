package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// chromeSelectors matches page furniture that never belongs in a product
// description: scripts and styles first, then navigation bands, cookie
// walls and other overlay noise.
var chromeSelectors = []string{
	"script", "style", "noscript", "iframe", "svg",
	"nav", "header", "footer", "aside", "form",
	"[role=navigation]", "[role=banner]", "[role=contentinfo]",
	"[aria-hidden=true]",
	".cookie-banner", "#cookie-banner", ".newsletter-signup",
}

// Sanitize strips page chrome before content extraction. If the document
// cannot be parsed or re-serialised, the input is returned unchanged so the
// pipeline still has something to work with.
func Sanitize(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	for _, selector := range chromeSelectors {
		doc.Find(selector).Remove()
	}

	out, err := doc.Html()
	if err != nil {
		return rawHTML
	}
	return out
}
