package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remixhub/registry/internal/api/rest/dto"
	"github.com/remixhub/registry/internal/domain"
	"github.com/remixhub/registry/internal/mocks"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{
			name:     "milliseconds",
			duration: 500 * time.Millisecond,
			want:     "500ms",
		},
		{
			name:     "seconds",
			duration: 5 * time.Second,
			want:     "5.00s",
		},
		{
			name:     "minutes",
			duration: 2*time.Minute + 30*time.Second,
			want:     "2m 30s",
		},
		{
			name:     "hours",
			duration: 1*time.Hour + 15*time.Minute,
			want:     "1h 15m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatDuration(tt.duration)
			if got != tt.want {
				t.Errorf("formatDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusEmoji(t *testing.T) {
	tests := []struct {
		name   string
		passed int
		failed int
		want   string
	}{
		{name: "all passed", passed: 3, want: "✅"},
		{name: "all failed", failed: 3, want: "❌"},
		{name: "mixed", passed: 2, failed: 1, want: "🟡"},
		{name: "nothing ran", want: "⚪"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := statusEmoji(tt.passed, tt.failed)
			if got != tt.want {
				t.Errorf("statusEmoji() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPercentile(t *testing.T) {
	latencies := make([]time.Duration, 0, 100)
	for i := 1; i <= 100; i++ {
		latencies = append(latencies, time.Duration(i)*time.Millisecond)
	}

	assert.Equal(t, 50*time.Millisecond, percentile(latencies, 50))
	assert.Equal(t, 90*time.Millisecond, percentile(latencies, 90))
	assert.Equal(t, 99*time.Millisecond, percentile(latencies, 99))
	assert.Equal(t, 100*time.Millisecond, percentile(latencies, 100))
	assert.Equal(t, time.Millisecond, percentile(latencies, 0))
	assert.Equal(t, time.Duration(0), percentile(nil, 50))
}

func TestPercentageString(t *testing.T) {
	assert.Equal(t, "50.00%", percentageString(1, 2))
	assert.Equal(t, "0.00%", percentageString(1, 0))
}

func TestBuildBatch(t *testing.T) {
	hashes := []string{"a", "b", "c"}

	assert.Equal(t, []string{"a", "b"}, buildBatch(hashes, 2, 0))
	assert.Equal(t, []string{"c", "a"}, buildBatch(hashes, 2, 1))
	assert.Equal(t, []string{"a", "b", "c", "a"}, buildBatch(hashes, 4, 0))
}

func TestLoadHashes_Random(t *testing.T) {
	hashes, err := loadHashes("", 5)
	require.NoError(t, err)

	assert.Len(t, hashes, 5)
	for _, h := range hashes {
		assert.True(t, domain.IsValidHash(h), h)
	}
}

func TestLoadHashes_File(t *testing.T) {
	cid := "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
	hash := domain.CIDHash("bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi")

	path := filepath.Join(t.TempDir(), "cids.txt")
	content := "# designs\n" + cid + "\n\n" + "  " + hash + "  \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	hashes, err := loadHashes(path, 10)
	require.NoError(t, err)

	assert.Equal(t, []string{domain.CIDHash(cid), hash}, hashes)
}

func TestLoadHashes_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cids.txt")
	require.NoError(t, os.WriteFile(path, []byte("# nothing\n"), 0600))

	_, err := loadHashes(path, 10)
	assert.Error(t, err)
}

func TestRunBenchmark(t *testing.T) {
	ctrl := gomock.NewController(t)
	httpClient := mocks.NewMockHTTPClient(ctrl)

	hashes := []string{
		domain.CIDHash("QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"),
		domain.CIDHash("bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"),
	}
	cfg := &Config{
		APIURL:      "http://registry.test/",
		Requests:    4,
		BatchSize:   2,
		Concurrency: 2,
	}

	httpClient.EXPECT().
		Post(gomock.Any(), "http://registry.test/api/v1/registrations/lookup/batch", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, headers map[string]string, body []byte) ([]byte, error) {
			assert.Equal(t, "application/json", headers["Content-Type"])

			var req dto.BatchLookupRequest
			require.NoError(t, json.Unmarshal(body, &req))
			assert.Len(t, req.CIDHashes, 2)

			// first hash is cached, second is not
			resp := dto.BatchLookupResponse{
				Success: true,
				Map: map[string]*domain.LookupEntry{
					hashes[0]: {CID: "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"},
					hashes[1]: nil,
				},
			}
			return json.Marshal(resp)
		}).
		Times(3)
	httpClient.EXPECT().
		Post(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("unexpected status code 503")).
		Times(1)

	stats := runBenchmark(context.Background(), httpClient, cfg, hashes)

	assert.Equal(t, 4, stats.Requests)
	assert.Equal(t, 3, stats.Succeeded)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 6, stats.HashesQueried)
	assert.Equal(t, 3, stats.HashesFound)
	assert.Len(t, stats.Latencies, 3)
	assert.Equal(t, 1, stats.Errors["unexpected status code 503"])
	assert.LessOrEqual(t, stats.Min, stats.P50)
	assert.LessOrEqual(t, stats.P50, stats.Max)
}

func TestWriteMarkdownReport(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	stats := &BenchmarkStats{
		APIURL:        "http://registry.test",
		BatchSize:     50,
		Concurrency:   5,
		StartTime:     start,
		EndTime:       start.Add(2 * time.Second),
		Requests:      10,
		Succeeded:     9,
		Failed:        1,
		HashesQueried: 450,
		HashesFound:   45,
		Latencies:     []time.Duration{10 * time.Millisecond, 20 * time.Millisecond},
		Errors:        map[string]int{"unexpected status code 503": 1},
	}
	stats.computeLatencies()

	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, writeMarkdownReport(path, stats))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(data)

	assert.Contains(t, report, "# Batch Lookup Benchmark Report")
	assert.Contains(t, report, "| **Succeeded** | 9 (90.00%) |")
	assert.Contains(t, report, "| **Hashes Found** | 45 (10.00%) |")
	assert.Contains(t, report, "| **P50** | 10ms |")
	assert.Contains(t, report, "`unexpected status code 503`")
}

func TestBenchmarkConfig_SaveLoadApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "benchmark.json")
	require.NoError(t, SaveConfig(path, &BenchmarkConfig{APIURL: "https://registry.example", BatchSize: 200}))

	fileCfg, err := LoadConfig(path)
	require.NoError(t, err)

	// flag defaults are replaced
	cfg := &Config{APIURL: defaultAPIURL, BatchSize: defaultBatchSize}
	fileCfg.Apply(cfg)
	assert.Equal(t, "https://registry.example", cfg.APIURL)
	assert.Equal(t, 200, cfg.BatchSize)

	// explicit flags win
	cfg = &Config{APIURL: "http://other:9090", BatchSize: 10}
	fileCfg.Apply(cfg)
	assert.Equal(t, "http://other:9090", cfg.APIURL)
	assert.Equal(t, 10, cfg.BatchSize)
}
