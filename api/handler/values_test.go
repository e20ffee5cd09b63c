package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/DecLeMec/price-scraper/extract"
	"github.com/DecLeMec/price-scraper/models"
)

func newValuesRouter(s ProductScraper) *gin.Engine {
	r := gin.New()
	r.GET("/values", Values(s))
	return r
}

func TestValues_SingleQuotedRecord(t *testing.T) {
	s := &fakeScraper{res: widgetResult()}
	r := newValuesRouter(s)

	w := performRequest(r, "/values?url=https://example.com/p/1&fields=price,title")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	want := "\"19.99\",\"Blue Widget\"\n"
	if got := w.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestValues_QuotesAreEscaped(t *testing.T) {
	s := &fakeScraper{res: &extract.Result{
		Raw: map[string]string{"title": `The "Best" Widget, Mk II`},
		Values: map[string]any{
			"title": `The "Best" Widget, Mk II`,
		},
	}}
	r := newValuesRouter(s)

	w := performRequest(r, "/values?url=https://example.com&fields=title")
	want := "\"The \"\"Best\"\" Widget, Mk II\"\n"
	if got := w.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestValues_EmptyValueStaysQuoted(t *testing.T) {
	s := &fakeScraper{res: &extract.Result{
		Raw:    map[string]string{"price": "", "title": "Blue Widget"},
		Values: map[string]any{"price": "", "title": "Blue Widget"},
	}}
	r := newValuesRouter(s)

	w := performRequest(r, "/values?url=https://example.com&fields=price,title")
	want := "\"\",\"Blue Widget\"\n"
	if got := w.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestValues_MissingParams(t *testing.T) {
	r := newValuesRouter(&fakeScraper{res: widgetResult()})

	for _, path := range []string{"/values", "/values?url=https://example.com", "/values?fields=price"} {
		w := performRequest(r, path)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, w.Code)
		}
		if w.Body.Len() != 0 {
			t.Errorf("%s: body = %q, want empty", path, w.Body.String())
		}
	}
}

func TestValues_ScrapeFailureIsEmptyBody(t *testing.T) {
	s := &fakeScraper{err: models.NewScrapeError(models.ErrCodeTimeout, "navigation timed out", nil)}
	r := newValuesRouter(s)

	w := performRequest(r, "/values?url=https://example.com&fields=price")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
}
