package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestForHost(t *testing.T) {
	c := Default()

	tests := []struct {
		name string
		host string
		want string
	}{
		{"amazon com", "www.amazon.com", "amazon"},
		{"amazon ca", "amazon.ca", "amazon"},
		{"shopify store", "gadgets.myshopify.com", "shopify"},
		{"unknown host", "shop.example.org", "default"},
		{"empty host", "", "default"},
		{"case insensitive", "WWW.AMAZON.COM", "amazon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.ForHost(tt.host)
			if got.Name != tt.want {
				t.Errorf("ForHost(%q) = %q, want %q", tt.host, got.Name, tt.want)
			}
		})
	}
}

func TestChain_UnknownFieldIsEmpty(t *testing.T) {
	fam := Default().ForHost("shop.example.org")
	if chain := fam.Chain("upc"); chain != nil {
		t.Errorf("unknown field should yield nil chain, got %v", chain)
	}
}

func TestChain_OrderEncodesPriority(t *testing.T) {
	fam := Default().ForHost("shop.example.org")
	chain := fam.Chain("price")
	if len(chain) == 0 {
		t.Fatal("default price chain should not be empty")
	}
	if chain[0].Kind != KindMeta || chain[0].Query != "product:price:amount" {
		t.Errorf("default price chain should lead with the price meta tag, got %+v", chain[0])
	}
}

func TestMetaSatisfiable(t *testing.T) {
	supported := []string{"og:title", "product:price:amount"}
	fam := Default().ForHost("gadgets.myshopify.com")

	tests := []struct {
		name   string
		fields []string
		want   bool
	}{
		{"title and price", []string{"title", "price"}, true},
		{"price only", []string{"price"}, true},
		{"rating needs the dom", []string{"title", "rating"}, false},
		{"unknown field", []string{"upc"}, false},
		{"no fields", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fam.MetaSatisfiable(tt.fields, supported)
			if got != tt.want {
				t.Errorf("MetaSatisfiable(%v) = %v, want %v", tt.fields, got, tt.want)
			}
		})
	}
}

func TestLoadFile_MergeAndPrecedence(t *testing.T) {
	path := writeCatalogFile(t, `
families:
  - name: bestbuy
    host_patterns: ["bestbuy.ca", "bestbuy.com"]
    static_friendly: true
    fields:
      price:
        - {kind: meta, query: "product:price:amount"}
        - {kind: dom, query: "[data-automation=product-price]"}
  - name: amazon
    host_patterns: ["amazon."]
    fields:
      price:
        - {kind: dom, query: "#corePrice"}
`)

	c := Default()
	if err := c.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	fam := c.ForHost("www.bestbuy.ca")
	if fam.Name != "bestbuy" {
		t.Fatalf("ForHost(bestbuy.ca) = %q, want bestbuy", fam.Name)
	}
	if !fam.StaticFriendly {
		t.Error("bestbuy should be static friendly")
	}

	// The file's amazon family replaces the built-in one.
	amazon := c.ForHost("amazon.com")
	chain := amazon.Chain("price")
	if len(chain) != 1 || chain[0].Query != "#corePrice" {
		t.Errorf("file family should replace built-in, got chain %v", chain)
	}
}

func TestLoadFile_RejectsInvalidSelector(t *testing.T) {
	path := writeCatalogFile(t, `
families:
  - name: broken
    host_patterns: ["broken.example"]
    fields:
      price:
        - {kind: dom, query: "[[["}
`)

	c := Default()
	if err := c.LoadFile(path); err == nil {
		t.Fatal("expected error for invalid selector")
	}
	// A failed load must not half-apply.
	if c.ForHost("broken.example").Name != "default" {
		t.Error("failed load should not register any family")
	}
}

func TestLoadFile_RejectsUnknownKind(t *testing.T) {
	path := writeCatalogFile(t, `
families:
  - name: odd
    fields:
      price:
        - {kind: xpath, query: "//span"}
`)

	if err := Default().LoadFile(path); err == nil {
		t.Fatal("expected error for unknown descriptor kind")
	}
}

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp catalog: %v", err)
	}
	return path
}
