// Package cleaner turns a product page into a compact Markdown description:
// strip the page chrome, isolate the main content, convert what remains.
package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"

	"github.com/DecLeMec/price-scraper/models"
)

// minContentLength is the minimum extracted text length (in characters) for
// a page to count as described. Below it the main-content pass is assumed to
// have missed, usually because the interesting parts were not in the fetched
// HTML at all.
const minContentLength = 50

// Cleaner runs the describe pipeline. The Markdown converter is created once
// and reused across requests; it is goroutine safe.
type Cleaner struct {
	mdConverter *converter.Converter
}

// NewCleaner initialises the Cleaner with a pre-configured Markdown converter.
func NewCleaner() *Cleaner {
	return &Cleaner{
		mdConverter: newMarkdownConverter(),
	}
}

// Describe extracts the page's main content and renders it as Markdown.
// It fails when the document yields no usable content, which typically means
// the caller fetched an unrendered shell and should retry with a full render.
func (c *Cleaner) Describe(pageURL string, rawHTML string) (*models.Description, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "empty document", nil)
	}

	sanitized := Sanitize(rawHTML)

	article, ok := extractArticle(sanitized, pageURL)
	if !ok {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "no extractable content", nil)
	}

	markdown, err := c.mdConverter.ConvertString(article.Content, converter.WithDomain(pageURL))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "markdown conversion failed", err)
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "no extractable content", nil)
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = DocumentTitle(rawHTML)
	}

	return &models.Description{
		URL:      pageURL,
		Title:    title,
		Markdown: markdown,
	}, nil
}

// extractArticle runs the Mozilla Readability algorithm on rawHTML. The
// second return reports whether the result is usable; callers decide what a
// miss means, the pipeline never substitutes raw HTML.
func extractArticle(rawHTML string, sourceURL string) (readability.Article, bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("describe: invalid source URL", "url", sourceURL, "error", err)
		return readability.Article{}, false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("describe: content extraction failed", "url", sourceURL, "error", err)
		return readability.Article{}, false
	}

	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		slog.Warn("describe: extracted content too short",
			"url", sourceURL, "length", len(article.TextContent),
		)
		return readability.Article{}, false
	}

	return article, true
}
