package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/DecLeMec/price-scraper/cleaner"
	"github.com/DecLeMec/price-scraper/models"
)

const richPage = `<!DOCTYPE html><html>
<head><title>Meridian Chef Knife | Halstead Kitchen</title></head>
<body>
<nav><a href="/cart">Cart</a></nav>
<div class="product-description">
<h1>Meridian Chef Knife</h1>
<p>The Meridian is an eight-inch chef knife forged from a single billet of
high-carbon stainless steel, hardened to 61 HRC, and finished with a hand
polished convex edge that glides through dense vegetables without wedging.</p>
<p>Its handle is cut from stabilised birch, shaped for a pinch grip, and
sealed against kitchen moisture. The bolster is ground flush so the whole
edge reaches the board, and the spine is rounded for comfortable choking up.</p>
<p>Every knife ships with a saya, a care guide, and a lifetime sharpening
service. The steel takes a keen edge quickly and holds it through weeks of
daily prep work before needing a touch-up on a fine stone.</p>
</div>
</body></html>`

const shellPage = `<html><head><title>Loading…</title>
<script src="/bundle.js"></script></head>
<body><div id="app"></div></body></html>`

type fakePageFetcher struct {
	html      string
	source    string
	fetchErr  error
	rendered  string
	renderErr error
	renders   int
}

func (f *fakePageFetcher) PageHTML(_ context.Context, _ string) (string, string, error) {
	if f.fetchErr != nil {
		return "", "", f.fetchErr
	}
	return f.html, f.source, nil
}

func (f *fakePageFetcher) RenderHTML(_ context.Context, _ string) (string, error) {
	f.renders++
	if f.renderErr != nil {
		return "", f.renderErr
	}
	return f.rendered, nil
}

func newDescribeRouter(p PageFetcher) *gin.Engine {
	r := gin.New()
	r.GET("/api/describe", Describe(p, cleaner.NewCleaner(), 900))
	return r
}

func TestDescribe_StaticContentNoRetry(t *testing.T) {
	f := &fakePageFetcher{html: richPage, source: models.SourceStatic}
	r := newDescribeRouter(f)

	w := performRequest(r, "/api/describe?url=https://halstead.example/p/meridian")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
	if f.renders != 0 {
		t.Errorf("renders = %d, want 0", f.renders)
	}

	var desc models.Description
	if err := json.Unmarshal(w.Body.Bytes(), &desc); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if desc.Source != models.SourceStatic {
		t.Errorf("source = %q, want %q", desc.Source, models.SourceStatic)
	}
	if desc.Markdown == "" {
		t.Error("markdown is empty")
	}
}

func TestDescribe_StaticShellRetriesWithRender(t *testing.T) {
	f := &fakePageFetcher{
		html:     shellPage,
		source:   models.SourceStatic,
		rendered: richPage,
	}
	r := newDescribeRouter(f)

	w := performRequest(r, "/api/describe?url=https://halstead.example/p/meridian")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
	if f.renders != 1 {
		t.Errorf("renders = %d, want 1", f.renders)
	}

	var desc models.Description
	if err := json.Unmarshal(w.Body.Bytes(), &desc); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if desc.Source != models.SourceBrowser {
		t.Errorf("source = %q, want %q", desc.Source, models.SourceBrowser)
	}
}

func TestDescribe_BrowserShellFails(t *testing.T) {
	// A shell straight from the browser has no cheaper path left to try.
	f := &fakePageFetcher{html: shellPage, source: models.SourceBrowser}
	r := newDescribeRouter(f)

	w := performRequest(r, "/api/describe?url=https://spa.example/p/1")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if f.renders != 0 {
		t.Errorf("renders = %d, want 0", f.renders)
	}
}

func TestDescribe_FetchErrorPropagates(t *testing.T) {
	f := &fakePageFetcher{fetchErr: models.NewScrapeError(models.ErrCodeTimeout, "navigation timed out", errors.New("deadline"))}
	r := newDescribeRouter(f)

	w := performRequest(r, "/api/describe?url=https://example.com")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if got := w.Body.String(); got != `{"error":"navigation timed out"}` {
		t.Errorf("body = %s", got)
	}
}

func TestDescribe_MissingURL(t *testing.T) {
	r := newDescribeRouter(&fakePageFetcher{html: richPage, source: models.SourceStatic})

	w := performRequest(r, "/api/describe")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := w.Body.String(); got != `{"error":"Missing url"}` {
		t.Errorf("body = %s, want missing url error", got)
	}
}
