package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/use-agent/filmreview/models"
)

var (
	apiURL = flag.String("api-url", "http://localhost:8080", "filmreview API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	runs   = flag.Int("runs", 3, "Extractions per film")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Films with reviews of different ages and page layouts.
var testFilms = []struct {
	Title string
	Year  int
}{
	{"Oppenheimer", 2023},
	{"La grande bellezza", 2013},
	{"C'è ancora domani", 2023},
	{"Il buono, il brutto, il cattivo", 1966},
	{"Io capitano", 2023},
}

type runResult struct {
	Run              int    `json:"run"`
	WallMs           int64  `json:"wall_ms"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
	Method           string `json:"method,omitempty"`
	ContentLength    int    `json:"content_length"`
	HasAuthor        bool   `json:"has_author"`
	HasDate          bool   `json:"has_date"`
	Success          bool   `json:"success"`
	ErrorCode        string `json:"error_code,omitempty"`
	Error            string `json:"error,omitempty"`
}

type filmAverages struct {
	WallMs           float64 `json:"wall_ms"`
	ProcessingTimeMs float64 `json:"processing_time_ms"`
	ContentLength    float64 `json:"content_length"`
}

type filmResult struct {
	Title    string        `json:"title"`
	Year     int           `json:"year"`
	Runs     []runResult   `json:"runs"`
	Averages *filmAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp   string       `json:"timestamp"`
	APIURL      string       `json:"api_url"`
	RunsPerFilm int          `json:"runs_per_film"`
	Results     []filmResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== filmreview extraction benchmark ===")
	fmt.Printf("API URL:    %s\n", *apiURL)
	fmt.Printf("Runs/film:  %d\n", *runs)
	fmt.Printf("Output:     %s\n", *output)
	fmt.Println()

	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure filmreviewd is running\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		APIURL:      *apiURL,
		RunsPerFilm: *runs,
	}

	client := &http.Client{Timeout: 120 * time.Second}
	for _, f := range testFilms {
		fmt.Printf("Benchmarking %s (%d) ...\n", f.Title, f.Year)
		fr := filmResult{Title: f.Title, Year: f.Year}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkFilm(client, f.Title, f.Year, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %s  %d chars\n", rr.ProcessingTimeMs, rr.Method, rr.ContentLength)
			} else {
				fmt.Printf("FAILED [%s]: %s\n", rr.ErrorCode, rr.Error)
			}
			fr.Runs = append(fr.Runs, rr)
		}

		fr.Averages = computeAverages(fr.Runs)
		report.Results = append(report.Results, fr)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// benchmarkFilm runs one extraction without persisting. The API cache is
// keyed by film, so every run after the first of a film measures a cache
// hit unless the server runs with a zero TTL.
func benchmarkFilm(client *http.Client, title string, year, run int) runResult {
	rr := runResult{Run: run}

	bodyBytes, err := json.Marshal(models.ExtractionRequest{
		Title:   title,
		Year:    year,
		Options: models.ExtractionOptions{SkipPersist: true},
	})
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest(http.MethodPost, *apiURL+"/api/v1/extract", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()
	rr.WallMs = time.Since(start).Milliseconds()

	var result models.ExtractionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Success = result.Success
	rr.ProcessingTimeMs = result.Metadata.ProcessingTimeMs
	rr.Method = string(result.Metadata.ExtractionMethod)
	rr.ContentLength = result.Metadata.ContentLength
	rr.HasAuthor = result.Review.Author != nil
	rr.HasDate = result.Review.Date != nil
	rr.ErrorCode = result.ErrorCode
	if result.Error != nil {
		rr.Error = *result.Error
	}
	return rr
}

func computeAverages(runs []runResult) *filmAverages {
	var successCount int
	var avg filmAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.WallMs += float64(r.WallMs)
		avg.ProcessingTimeMs += float64(r.ProcessingTimeMs)
		avg.ContentLength += float64(r.ContentLength)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.WallMs /= n
	avg.ProcessingTimeMs /= n
	avg.ContentLength /= n
	return &avg
}

func printTable(results []filmResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Film\tAvg Wall\tAvg Extraction\tContent Len\tMethods\n")
	fmt.Fprintf(w, "────\t────────\t──────────────\t───────────\t───────\n")

	for _, r := range results {
		name := fmt.Sprintf("%s (%d)", r.Title, r.Year)
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t-\n", truncate(name, 40))
			continue
		}
		fmt.Fprintf(w, "%s\t%dms\t%dms\t%d\t%s\n",
			truncate(name, 40),
			int64(r.Averages.WallMs),
			int64(r.Averages.ProcessingTimeMs),
			int(r.Averages.ContentLength),
			methods(r.Runs),
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

// methods lists the extraction tiers that succeeded, most frequent first.
func methods(runs []runResult) string {
	counts := map[string]int{}
	for _, r := range runs {
		if r.Success {
			counts[r.Method]++
		}
	}
	names := make([]string, 0, len(counts))
	for m := range counts {
		names = append(names, m)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	return strings.Join(names, ",")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
