package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:8080", "Seeker API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	runs   = flag.Int("runs", 3, "Number of runs per query for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Test queries covering both engines, factual and open-ended queries, and
// the image sub-search path.
var testQueries = []struct {
	Label         string
	Engine        string
	Query         string
	IncludeImages bool
}{
	{"Factual", "google", "capital of france", false},
	{"Entity", "google", "go programming language", false},
	{"GoogleImages", "google", "eiffel tower", true},
	{"DDG", "duckduckgo", "golang concurrency patterns", false},
	{"DDGImages", "duckduckgo", "golang gopher", true},
}

// --- Request / Response types (mirrors models package) ---

type searchRequest struct {
	Engine        string `json:"engine"`
	Query         string `json:"query"`
	IncludeImages bool   `json:"include_images,omitempty"`
	MaxLinks      int    `json:"max_links,omitempty"`
}

type searchResponse struct {
	Results string   `json:"results"`
	Links   []string `json:"links"`
	Images  []string `json:"images"`
}

// --- Benchmark result types ---

type runResult struct {
	Run           int    `json:"run"`
	LatencyMs     int64  `json:"latency_ms"`
	ResultsLength int    `json:"results_length"`
	LinkCount     int    `json:"link_count"`
	ImageCount    int    `json:"image_count"`
	HasAnswer     bool   `json:"has_answer"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}

type queryAverages struct {
	LatencyMs     float64 `json:"latency_ms"`
	ResultsLength float64 `json:"results_length"`
	LinkCount     float64 `json:"link_count"`
	ImageCount    float64 `json:"image_count"`
}

type queryResult struct {
	Label    string         `json:"label"`
	Engine   string         `json:"engine"`
	Query    string         `json:"query"`
	Runs     []runResult    `json:"runs"`
	Averages *queryAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp    string        `json:"timestamp"`
	APIURL       string        `json:"api_url"`
	RunsPerQuery int           `json:"runs_per_query"`
	Results      []queryResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== Seeker Benchmark Suite ===")
	fmt.Printf("API URL:    %s\n", *apiURL)
	fmt.Printf("Runs/query: %d\n", *runs)
	fmt.Printf("Output:     %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure Seeker is running (e.g. make run)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		APIURL:       *apiURL,
		RunsPerQuery: *runs,
	}

	for _, t := range testQueries {
		fmt.Printf("Benchmarking [%s] %q on %s ...\n", t.Label, t.Query, t.Engine)
		qr := queryResult{Label: t.Label, Engine: t.Engine, Query: t.Query}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkQuery(t.Engine, t.Query, t.IncludeImages, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %d links  %d images\n", rr.LatencyMs, rr.LinkCount, rr.ImageCount)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			qr.Runs = append(qr.Runs, rr)
		}

		qr.Averages = computeAverages(qr.Runs)
		report.Results = append(report.Results, qr)
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

func benchmarkQuery(engine, query string, includeImages bool, run int) runResult {
	rr := runResult{Run: run}

	reqBody := searchRequest{
		Engine:        engine,
		Query:         query,
		IncludeImages: includeImages,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest("POST", *apiURL+"/search", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	// Each search launches a browser and may spend five scroll probes plus
	// an image sub-search, so the client budget is generous.
	client := &http.Client{Timeout: 180 * time.Second}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()
	rr.LatencyMs = time.Since(start).Milliseconds()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		rr.Error = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return rr
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Success = true
	rr.ResultsLength = len(sr.Results)
	rr.LinkCount = len(sr.Links)
	rr.ImageCount = len(sr.Images)
	rr.HasAnswer = sr.Results != ""

	return rr
}

func computeAverages(runs []runResult) *queryAverages {
	var successCount int
	var avg queryAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.LatencyMs += float64(r.LatencyMs)
		avg.ResultsLength += float64(r.ResultsLength)
		avg.LinkCount += float64(r.LinkCount)
		avg.ImageCount += float64(r.ImageCount)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.LatencyMs /= n
	avg.ResultsLength /= n
	avg.LinkCount /= n
	avg.ImageCount /= n
	return &avg
}

func printTable(results []queryResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Query\tEngine\tAvg Latency\tLinks\tImages\tText Len\n")
	fmt.Fprintf(w, "─────\t──────\t───────────\t─────\t──────\t────────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\t%s\tFAILED\t-\t-\t-\n", truncateQuery(r.Query, 30), r.Engine)
			continue
		}

		fmt.Fprintf(w, "%s\t%s\t%dms\t%.1f\t%.1f\t%s\n",
			truncateQuery(r.Query, 30),
			r.Engine,
			int64(r.Averages.LatencyMs),
			r.Averages.LinkCount,
			r.Averages.ImageCount,
			formatInt(int(r.Averages.ResultsLength)),
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func truncateQuery(q string, max int) string {
	if len(q) <= max {
		return q
	}
	return q[:max-3] + "..."
}

func formatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
