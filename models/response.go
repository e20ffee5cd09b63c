package models

// ScrapeResponse is the response for GET /api/scrape.
//
// Headers and Values are positionally aligned with the field order of the
// request; Raw carries the untyped extracted text keyed by field name.
type ScrapeResponse struct {
	Headers []string          `json:"headers"`
	Values  []any             `json:"values"`
	Raw     map[string]string `json:"raw"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Fetch paths reported in responses and metrics.
const (
	SourceStatic  = "static"
	SourceBrowser = "browser"
)

// Description is the response for GET /api/describe: the page's main
// content converted to markdown.
type Description struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Markdown string `json:"markdown"`

	// Source names the fetch path that produced the HTML, "static" or
	// "browser".
	Source string `json:"source"`
}
