// Command benchmark measures response caching and request deduplication
// against the live feature service (or the one named by -url).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/olgasafonova/volcano-mcp-server/internal/base"
	"github.com/olgasafonova/volcano-mcp-server/internal/config"
	"github.com/olgasafonova/volcano-mcp-server/internal/volcano"
	"github.com/olgasafonova/volcano-mcp-server/internal/wfs"
)

func newClients(cfg *config.Config, cacheTTL time.Duration) (*wfs.Client, *volcano.Client) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	features := wfs.NewClient(wfs.Config{
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
		CacheTTL:  cacheTTL,
	},
		base.WithTimeout(cfg.Timeout),
		base.WithMaxAttempts(cfg.MaxAttempts()),
		base.WithLogger(logger),
	)
	return features, volcano.NewClient(features)
}

// measureCachePerformance repeats one search to compare network and cache
func measureCachePerformance(cfg *config.Config) {
	features, client := newClients(cfg, wfs.DefaultCacheTTL)
	defer features.Close()
	ctx := context.Background()
	args := volcano.SearchVolcanoesArgs{Country: "Japan", Limit: 50}

	fmt.Println("=== Cache Performance Test ===")
	fmt.Println()
	fmt.Println("1. search-volcanoes (country=Japan):")

	start := time.Now()
	resp, err := client.SearchVolcanoes(ctx, args)
	if err != nil {
		fmt.Printf("   Error: %v\n", err)
		return
	}
	firstCall := time.Since(start)
	fmt.Printf("   First call (network):  %v (%d features)\n", firstCall, resp.Count())

	start = time.Now()
	_, _ = client.SearchVolcanoes(ctx, args)
	secondCall := time.Since(start)
	fmt.Printf("   Second call (cached):  %v\n", secondCall)
	if secondCall > 0 {
		fmt.Printf("   Speedup: %.0fx faster\n", float64(firstCall)/float64(secondCall))
	}

	stats := features.Cache.Stats()
	fmt.Printf("   Cache: %d entries, %d hits, %d misses\n", stats.Entries, stats.Hits, stats.Misses)
	fmt.Println()
}

// measureDeduplication fires identical requests at once with caching off,
// so only deduplication can collapse them
func measureDeduplication(cfg *config.Config, concurrency int) {
	features, client := newClients(cfg, 0)
	defer features.Close()
	ctx := context.Background()
	args := volcano.FindLargeEruptionsArgs{}

	fmt.Println("=== Request Deduplication ===")
	fmt.Println()
	fmt.Printf("2. %d concurrent find-large-eruptions calls:\n", concurrency)

	start := time.Now()
	if _, err := client.FindLargeEruptions(ctx, args); err != nil {
		fmt.Printf("   Error: %v\n", err)
		return
	}
	single := time.Since(start)
	fmt.Printf("   Single call:    %v\n", single)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	start = time.Now()
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.FindLargeEruptions(ctx, args); err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	fmt.Printf("   Concurrent run: %v (%d failed)\n", elapsed, failed)
	fmt.Printf("   Sequential estimate: %v\n", single*time.Duration(concurrency))
	fmt.Println()
}

// measureDetails shows the cost of the two-request details lookup
func measureDetails(cfg *config.Config, name string) {
	features, client := newClients(cfg, wfs.DefaultCacheTTL)
	defer features.Close()
	ctx := context.Background()

	fmt.Println("=== Volcano Details ===")
	fmt.Println()
	fmt.Printf("3. get-volcano-details (%s):\n", name)

	for _, include := range []bool{false, true} {
		start := time.Now()
		result, err := client.GetVolcanoDetails(ctx, volcano.GetVolcanoDetailsArgs{
			VolcanoName:      name,
			IncludeEruptions: &include,
		})
		if err != nil {
			fmt.Printf("   Error: %v\n", err)
			return
		}
		eruptions := 0
		if result.EruptionHistory != nil {
			eruptions = result.EruptionHistory.Count()
		}
		fmt.Printf("   include_eruptions=%-5v %v (%d eruptions)\n", include, time.Since(start), eruptions)
	}
	fmt.Println()
}

func main() {
	url := flag.String("url", "", "Feature service endpoint (default: configured WFS URL)")
	concurrency := flag.Int("concurrency", 10, "Concurrent identical requests for the deduplication run")
	name := flag.String("volcano", "Etna", "Volcano used for the details run")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *url != "" {
		cfg.BaseURL = *url
	}

	fmt.Println("Volcano MCP Server - Performance Measurements")
	fmt.Println("=============================================")
	fmt.Printf("Endpoint: %s\n\n", cfg.BaseURL)

	measureCachePerformance(cfg)
	measureDeduplication(cfg, *concurrency)
	measureDetails(cfg, *name)
}
