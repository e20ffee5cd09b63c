package extract

import "testing"

func TestNormalize_PriceParsing(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"grouped thousands", "$1,234.56", 1234.56},
		{"currency prefix", "CDN$ 19.99", 19.99},
		{"plain number", "42", 42},
		{"euro decimal comma", "19,99 €", 19.99},
		{"whitespace padding", "  $ 5.00  ", 5},
		{"multiple groups", "$1,234,567.89", 1234567.89},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize("price", tt.raw)
			f, ok := got.(float64)
			if !ok {
				t.Fatalf("Normalize(price, %q) = %v (%T), want float64", tt.raw, got, got)
			}
			if f != tt.want {
				t.Errorf("Normalize(price, %q) = %v, want %v", tt.raw, f, tt.want)
			}
		})
	}
}

func TestNormalize_UnparseablePriceKeepsRaw(t *testing.T) {
	tests := []string{"Free", "Call for price", "N/A", "$-"}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			got := Normalize("price", raw)
			s, ok := got.(string)
			if !ok {
				t.Fatalf("Normalize(price, %q) = %v (%T), want string", raw, got, got)
			}
			if s != raw {
				t.Errorf("Normalize(price, %q) = %q, want the raw string back", raw, s)
			}
		})
	}
}

func TestNormalize_PriceSubstringMatch(t *testing.T) {
	if got := Normalize("sale_price", "$9.99"); got != 9.99 {
		t.Errorf("sale_price should normalize numerically, got %v", got)
	}
	if got := Normalize("ListPrice", "$12.00"); got != 12.0 {
		t.Errorf("field match should be case-insensitive, got %v", got)
	}
}

func TestNormalize_NonPriceFields(t *testing.T) {
	if got := Normalize("title", "  Widget Pro  "); got != "Widget Pro" {
		t.Errorf("title should pass through trimmed, got %q", got)
	}
	if got := Normalize("rating", "4.5"); got != "4.5" {
		t.Errorf("non-price numerics stay strings, got %v (%T)", got, got)
	}
	if got := Normalize("title", ""); got != "" {
		t.Errorf("empty raw should stay empty, got %q", got)
	}
}

func TestNormalize_EmptyPriceStaysEmptyString(t *testing.T) {
	got := Normalize("price", "")
	if s, ok := got.(string); !ok || s != "" {
		t.Errorf("empty price should stay the empty string, got %v (%T)", got, got)
	}
}
