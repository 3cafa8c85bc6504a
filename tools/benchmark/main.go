package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/remixhub/registry/internal/adapter"
	"github.com/remixhub/registry/internal/api/rest/dto"
	"github.com/remixhub/registry/internal/domain"
)

const (
	defaultAPIURL     = "http://localhost:8080"
	defaultBatchSize  = 50
	batchLookupPath   = "/api/v1/registrations/lookup/batch"
	maxConcurrency    = 50
	maxErrorsReported = 10
)

type Config struct {
	APIURL      string
	CIDFile     string        // Optional file of cids or cid hashes, one per line
	Requests    int           // Total batch lookup requests to send
	BatchSize   int           // Hashes per request
	Concurrency int           // Number of concurrent workers
	Timeout     time.Duration // Timeout for each request
	OutputFile  string        // Output markdown file path (optional)
	Debug       bool
}

type BenchmarkStats struct {
	APIURL        string
	BatchSize     int
	Concurrency   int
	StartTime     time.Time
	EndTime       time.Time
	Requests      int
	Succeeded     int
	Failed        int
	HashesQueried int
	HashesFound   int
	Latencies     []time.Duration
	Min           time.Duration
	Max           time.Duration
	Mean          time.Duration
	P50           time.Duration
	P90           time.Duration
	P99           time.Duration
	Errors        map[string]int
}

func main() {
	cfg := parseFlags()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	hashes, err := loadHashes(cfg.CIDFile, cfg.BatchSize)
	if err != nil {
		fmt.Printf("Error loading hashes: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Benchmarking batch lookup at %s\n", cfg.APIURL)
	fmt.Printf("Requests: %d, batch size: %d, concurrency: %d, distinct hashes: %d\n",
		cfg.Requests, cfg.BatchSize, cfg.Concurrency, len(hashes))

	stats := runBenchmark(ctx, adapter.NewHTTPClient(cfg.Timeout), cfg, hashes)

	title := "BENCHMARK RESULTS"
	if ctx.Err() != nil {
		title = "INTERRUPTED - PARTIAL RESULTS"
	}
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", 80))
	printStats(stats)

	// Write to markdown file if specified
	if cfg.OutputFile != "" {
		if err := writeMarkdownReport(cfg.OutputFile, stats); err != nil {
			fmt.Printf("\n⚠️  Warning: Failed to write markdown file: %v\n", err)
		} else {
			fmt.Printf("\n✓ Report written to: %s\n", cfg.OutputFile)
		}
	}

	if stats.Failed > 0 {
		os.Exit(1)
	}
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.APIURL, "api-url", defaultAPIURL, "Registry API base URL")
	flag.StringVar(&cfg.CIDFile, "cids", "", "File with one cid or cid hash per line (optional, random hashes otherwise)")
	flag.IntVar(&cfg.Requests, "requests", 100, "Number of batch lookup requests to send")
	flag.IntVar(&cfg.BatchSize, "batch-size", defaultBatchSize, "Hashes per batch lookup request")
	flag.IntVar(&cfg.Concurrency, "concurrency", 5, "Number of concurrent workers (default: 5)")
	flag.StringVar(&cfg.OutputFile, "output", "", "Output markdown file path (optional)")
	flag.BoolVar(&cfg.Debug, "debug", false, "Print every failed request")

	var timeoutSeconds int
	flag.IntVar(&timeoutSeconds, "timeout", 30, "Timeout for each request in seconds (default: 30)")

	configFile := flag.String("config", "", "Path to config file (optional)")
	saveConfig := flag.Bool("save-config", false, "Save api-url and batch-size to the config file")

	flag.Parse()

	cfg.Timeout = time.Duration(timeoutSeconds) * time.Second

	if cfg.Requests <= 0 {
		cfg.Requests = 1
	}

	// Validate concurrency
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.Concurrency > maxConcurrency {
		cfg.Concurrency = maxConcurrency
	}

	// Flags win over the config file. Without -config the default path is used if present.
	path := *configFile
	if path == "" {
		if _, err := os.Stat(GetDefaultConfigPath()); err == nil {
			path = GetDefaultConfigPath()
		}
	}
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			fmt.Printf("Warning: failed to load config file: %v\n", err)
		} else {
			fileCfg.Apply(cfg)
		}
	}

	if *saveConfig {
		target := *configFile
		if target == "" {
			target = GetDefaultConfigPath()
		}
		if err := SaveConfig(target, &BenchmarkConfig{APIURL: cfg.APIURL, BatchSize: cfg.BatchSize}); err != nil {
			fmt.Printf("Warning: failed to save config file: %v\n", err)
		}
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}

	return cfg
}

// loadHashes reads cids or cid hashes from path, hashing cids the way the registry does.
// With no path it generates count random hashes, which exercises the miss path.
func loadHashes(path string, count int) ([]string, error) {
	if path == "" {
		hashes := make([]string, 0, count)
		buf := make([]byte, 32)
		for i := 0; i < count; i++ {
			if _, err := rand.Read(buf); err != nil {
				return nil, fmt.Errorf("failed to generate random hash: %w", err)
			}
			hashes = append(hashes, strings.ToLower(crypto.Keccak256Hash(buf).Hex()))
		}
		return hashes, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	var hashes []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if hash := domain.NormalizeHash(line); domain.IsValidHash(hash) {
			hashes = append(hashes, hash)
			continue
		}
		hashes = append(hashes, domain.CIDHash(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(hashes) == 0 {
		return nil, fmt.Errorf("no cids found in %s", path)
	}

	return hashes, nil
}

// buildBatch returns the hashes for request i, cycling through the input
func buildBatch(hashes []string, batchSize, i int) []string {
	batch := make([]string, 0, batchSize)
	start := i * batchSize
	for j := 0; j < batchSize; j++ {
		batch = append(batch, hashes[(start+j)%len(hashes)])
	}
	return batch
}

// runBenchmark sends cfg.Requests batch lookups through a worker pool and aggregates the results
func runBenchmark(ctx context.Context, httpClient adapter.HTTPClient, cfg *Config, hashes []string) *BenchmarkStats {
	stats := &BenchmarkStats{
		APIURL:      cfg.APIURL,
		BatchSize:   cfg.BatchSize,
		Concurrency: cfg.Concurrency,
		StartTime:   time.Now(),
		Errors:      make(map[string]int),
	}

	url := strings.TrimRight(cfg.APIURL, "/") + batchLookupPath
	headers := map[string]string{"Content-Type": "application/json"}

	var mu sync.Mutex
	pool := pond.NewPool(cfg.Concurrency, pond.WithContext(ctx))
	for i := 0; i < cfg.Requests; i++ {
		batch := buildBatch(hashes, cfg.BatchSize, i)
		pool.Submit(func() {
			body, err := json.Marshal(dto.BatchLookupRequest{CIDHashes: batch})
			if err != nil {
				mu.Lock()
				stats.recordFailure(err, cfg.Debug)
				mu.Unlock()
				return
			}

			start := time.Now()
			respBody, err := httpClient.Post(ctx, url, headers, body)
			latency := time.Since(start)

			var resp dto.BatchLookupResponse
			if err == nil {
				err = json.Unmarshal(respBody, &resp)
			}

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				stats.recordFailure(err, cfg.Debug)
				return
			}

			stats.Requests++
			stats.Succeeded++
			stats.HashesQueried += len(batch)
			stats.Latencies = append(stats.Latencies, latency)
			for _, entry := range resp.Map {
				if entry != nil {
					stats.HashesFound++
				}
			}
		})
	}
	pool.StopAndWait()

	stats.EndTime = time.Now()
	stats.computeLatencies()

	return stats
}

func (s *BenchmarkStats) recordFailure(err error, debug bool) {
	s.Requests++
	s.Failed++
	s.Errors[err.Error()]++
	if debug {
		fmt.Printf("\nRequest failed: %v\n", err)
	}
}

// computeLatencies fills the latency summary from the recorded samples
func (s *BenchmarkStats) computeLatencies() {
	if len(s.Latencies) == 0 {
		return
	}

	sort.Slice(s.Latencies, func(i, j int) bool {
		return s.Latencies[i] < s.Latencies[j]
	})

	var total time.Duration
	for _, l := range s.Latencies {
		total += l
	}

	s.Min = s.Latencies[0]
	s.Max = s.Latencies[len(s.Latencies)-1]
	s.Mean = total / time.Duration(len(s.Latencies))
	s.P50 = percentile(s.Latencies, 50)
	s.P90 = percentile(s.Latencies, 90)
	s.P99 = percentile(s.Latencies, 99)
}

// sortedErrors returns error messages ordered by count, most frequent first
func (s *BenchmarkStats) sortedErrors() []string {
	messages := make([]string, 0, len(s.Errors))
	for msg := range s.Errors {
		messages = append(messages, msg)
	}
	sort.Slice(messages, func(i, j int) bool {
		if s.Errors[messages[i]] != s.Errors[messages[j]] {
			return s.Errors[messages[i]] > s.Errors[messages[j]]
		}
		return messages[i] < messages[j]
	})
	if len(messages) > maxErrorsReported {
		messages = messages[:maxErrorsReported]
	}
	return messages
}

func printStats(stats *BenchmarkStats) {
	elapsed := stats.EndTime.Sub(stats.StartTime)

	fmt.Println(strings.Repeat("-", 80))
	fmt.Printf("%s Batch Lookup: %s\n", statusEmoji(stats.Succeeded, stats.Failed), stats.APIURL)
	fmt.Printf("  Batch Size:  %d\n", stats.BatchSize)
	fmt.Printf("  Concurrency: %d\n", stats.Concurrency)
	fmt.Printf("  Start Time:  %s\n", stats.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Duration:    %s\n", formatDuration(elapsed))
	fmt.Println()

	fmt.Printf("Requests:\n")
	fmt.Printf("  Total:       %d\n", stats.Requests)
	fmt.Printf("  Succeeded:   %d (%s)\n", stats.Succeeded, percentageString(stats.Succeeded, stats.Requests))
	if stats.Failed > 0 {
		fmt.Printf("  Failed:      %d (%s)\n", stats.Failed, percentageString(stats.Failed, stats.Requests))
	}
	fmt.Printf("  Throughput:  %s\n", formatRate(stats.Succeeded, elapsed))
	fmt.Printf("  Hashes:      %d queried, %d found (%s)\n",
		stats.HashesQueried, stats.HashesFound, percentageString(stats.HashesFound, stats.HashesQueried))
	fmt.Println()

	if len(stats.Latencies) > 0 {
		fmt.Printf("Latency:\n")
		fmt.Printf("  Min:         %s\n", formatDuration(stats.Min))
		fmt.Printf("  Mean:        %s\n", formatDuration(stats.Mean))
		fmt.Printf("  P50:         %s\n", formatDuration(stats.P50))
		fmt.Printf("  P90:         %s\n", formatDuration(stats.P90))
		fmt.Printf("  P99:         %s\n", formatDuration(stats.P99))
		fmt.Printf("  Max:         %s\n", formatDuration(stats.Max))
		fmt.Println()
	}

	if len(stats.Errors) > 0 {
		fmt.Println("Errors:")
		for _, msg := range stats.sortedErrors() {
			fmt.Printf("  %4d  %s\n", stats.Errors[msg], msg)
		}
		fmt.Println()
	}

	fmt.Println(strings.Repeat("-", 80))
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	if d < time.Hour {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// writeMarkdownReport writes a markdown report of the benchmark stats
func writeMarkdownReport(filepath string, stats *BenchmarkStats) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer func() {
		_ = file.Close()
	}()

	elapsed := stats.EndTime.Sub(stats.StartTime)

	// Write header
	_, _ = fmt.Fprintf(file, "# Batch Lookup Benchmark Report\n\n")
	_, _ = fmt.Fprintf(file, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	_, _ = fmt.Fprintf(file, "## Run\n\n")
	_, _ = fmt.Fprintf(file, "| Property | Value |\n")
	_, _ = fmt.Fprintf(file, "|----------|-------|\n")
	_, _ = fmt.Fprintf(file, "| **API URL** | `%s` |\n", stats.APIURL)
	_, _ = fmt.Fprintf(file, "| **Status** | %s |\n", statusEmoji(stats.Succeeded, stats.Failed))
	_, _ = fmt.Fprintf(file, "| **Batch Size** | %d |\n", stats.BatchSize)
	_, _ = fmt.Fprintf(file, "| **Concurrency** | %d |\n", stats.Concurrency)
	_, _ = fmt.Fprintf(file, "| **Start Time** | %s |\n", stats.StartTime.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(file, "| **Duration** | %s |\n", formatDuration(elapsed))
	_, _ = fmt.Fprintf(file, "\n")

	_, _ = fmt.Fprintf(file, "## Requests\n\n")
	_, _ = fmt.Fprintf(file, "| Metric | Value |\n")
	_, _ = fmt.Fprintf(file, "|--------|-------|\n")
	_, _ = fmt.Fprintf(file, "| **Total** | %d |\n", stats.Requests)
	_, _ = fmt.Fprintf(file, "| **Succeeded** | %d (%s) |\n", stats.Succeeded, percentageString(stats.Succeeded, stats.Requests))
	if stats.Failed > 0 {
		_, _ = fmt.Fprintf(file, "| **Failed** | %d (%s) |\n", stats.Failed, percentageString(stats.Failed, stats.Requests))
	}
	_, _ = fmt.Fprintf(file, "| **Throughput** | %s |\n", formatRate(stats.Succeeded, elapsed))
	_, _ = fmt.Fprintf(file, "| **Hashes Queried** | %d |\n", stats.HashesQueried)
	_, _ = fmt.Fprintf(file, "| **Hashes Found** | %d (%s) |\n", stats.HashesFound, percentageString(stats.HashesFound, stats.HashesQueried))
	_, _ = fmt.Fprintf(file, "\n")

	if len(stats.Latencies) > 0 {
		_, _ = fmt.Fprintf(file, "## Latency\n\n")
		_, _ = fmt.Fprintf(file, "| Percentile | Value |\n")
		_, _ = fmt.Fprintf(file, "|------------|-------|\n")
		_, _ = fmt.Fprintf(file, "| **Min** | %s |\n", formatDuration(stats.Min))
		_, _ = fmt.Fprintf(file, "| **Mean** | %s |\n", formatDuration(stats.Mean))
		_, _ = fmt.Fprintf(file, "| **P50** | %s |\n", formatDuration(stats.P50))
		_, _ = fmt.Fprintf(file, "| **P90** | %s |\n", formatDuration(stats.P90))
		_, _ = fmt.Fprintf(file, "| **P99** | %s |\n", formatDuration(stats.P99))
		_, _ = fmt.Fprintf(file, "| **Max** | %s |\n", formatDuration(stats.Max))
		_, _ = fmt.Fprintf(file, "\n")
	}

	if len(stats.Errors) > 0 {
		_, _ = fmt.Fprintf(file, "## Errors\n\n")
		_, _ = fmt.Fprintf(file, "| Count | Message |\n")
		_, _ = fmt.Fprintf(file, "|-------|---------|\n")
		for _, msg := range stats.sortedErrors() {
			_, _ = fmt.Fprintf(file, "| %d | `%s` |\n", stats.Errors[msg], strings.ReplaceAll(msg, "|", "\\|"))
		}
		_, _ = fmt.Fprintf(file, "\n")
	}

	return nil
}
