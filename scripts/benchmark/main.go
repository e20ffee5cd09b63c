package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:8080", "scraper API base URL")
	fields = flag.String("fields", "price,title", "comma-separated fields to request")
	runs   = flag.Int("runs", 3, "number of runs per URL; runs after the first hit the cache")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Test URLs covering the main site types the scraper sees.
var testURLs = []struct {
	Label string
	URL   string
}{
	{"Static", "https://books.toscrape.com/catalogue/a-light-in-the-attic_1000/index.html"},
	{"Marketplace", "https://www.amazon.com/dp/B0BSHF7WHW"},
	{"Storefront", "https://www.allbirds.com/products/mens-tree-runners"},
	{"Rendered", "https://www.bestbuy.com/site/6525421.p"},
}

// --- Response types (mirrors models package) ---

type scrapeResponse struct {
	Headers []string          `json:"headers"`
	Values  []any             `json:"values"`
	Raw     map[string]string `json:"raw"`
	Error   string            `json:"error,omitempty"`
}

// --- Benchmark result types ---

type runResult struct {
	Run         int    `json:"run"`
	TotalMs     int64  `json:"total_ms"`
	StatusCode  int    `json:"status_code"`
	FieldsFound int    `json:"fields_found"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}

type urlAverages struct {
	ColdMs      int64   `json:"cold_ms"`
	WarmMs      float64 `json:"warm_ms"`
	FieldsFound float64 `json:"fields_found"`
}

type urlResult struct {
	URL      string       `json:"url"`
	Label    string       `json:"label"`
	Runs     []runResult  `json:"runs"`
	Averages *urlAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	Fields     string      `json:"fields"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== price-scraper benchmark ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Fields:    %s\n", *fields)
	fmt.Printf("Runs/URL:  %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure the scraper is running\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		Fields:     *fields,
		RunsPerURL: *runs,
	}

	for _, t := range testURLs {
		fmt.Printf("Benchmarking [%s] %s ...\n", t.Label, t.URL)
		ur := urlResult{URL: t.URL, Label: t.Label}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkURL(t.URL, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %d field(s)\n", rr.TotalMs, rr.FieldsFound)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			ur.Runs = append(ur.Runs, rr)
		}

		ur.Averages = computeAverages(ur.Runs)
		report.Results = append(report.Results, ur)
		fmt.Println()
	}

	// Print summary table.
	printTable(report.Results)

	// Write JSON report.
	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkURL(pageURL string, run int) runResult {
	rr := runResult{Run: run}

	params := url.Values{}
	params.Set("url", pageURL)
	params.Set("fields", *fields)

	client := &http.Client{Timeout: 90 * time.Second}
	start := time.Now()
	resp, err := client.Get(*apiURL + "/api/scrape?" + params.Encode())
	rr.TotalMs = time.Since(start).Milliseconds()
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()
	rr.StatusCode = resp.StatusCode

	var sr scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	if resp.StatusCode != http.StatusOK {
		rr.Error = sr.Error
		return rr
	}

	rr.Success = true
	for _, v := range sr.Values {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		rr.FieldsFound++
	}
	return rr
}

// computeAverages splits the first (cold) run from the rest: everything
// after run 1 should be answered from the response cache.
func computeAverages(runs []runResult) *urlAverages {
	var avg urlAverages
	var warmCount, foundCount int

	for _, r := range runs {
		if !r.Success {
			continue
		}
		if r.Run == 1 {
			avg.ColdMs = r.TotalMs
		} else {
			warmCount++
			avg.WarmMs += float64(r.TotalMs)
		}
		foundCount++
		avg.FieldsFound += float64(r.FieldsFound)
	}

	if foundCount == 0 {
		return nil
	}
	if warmCount > 0 {
		avg.WarmMs /= float64(warmCount)
	}
	avg.FieldsFound /= float64(foundCount)
	return &avg
}

func printTable(results []urlResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "URL\tCold\tWarm (cached)\tFields Found\n")
	fmt.Fprintf(w, "───\t────\t─────────────\t────────────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\n", truncateURL(r.URL, 40))
			continue
		}

		fmt.Fprintf(w, "%s\t%dms\t%.0fms\t%.1f\n",
			truncateURL(r.URL, 40),
			r.Averages.ColdMs,
			r.Averages.WarmMs,
			r.Averages.FieldsFound,
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func truncateURL(u string, max int) string {
	if len(u) <= max {
		return u
	}
	return u[:max-3] + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
