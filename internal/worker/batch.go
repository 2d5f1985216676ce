// Package worker runs scan-only actions over lists of URLs with bounded
// concurrency. Each URL is one independent guard action; the single-flight
// rule applies per interactive session, not across batch workers.
package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pageguard/pageguard/internal/firewall"
)

// ScanFunc performs one scan-only action for a URL.
type ScanFunc func(ctx context.Context, url string) (*firewall.Verdict, error)

// Outcome is the terminal result of one batch entry: a verdict or an error,
// never both.
type Outcome struct {
	URL     string
	Verdict *firewall.Verdict
	Err     error
}

// Batch fans scan jobs out over a fixed worker count.
type Batch struct {
	scan    ScanFunc
	workers int
	limiter *Limiter
}

// NewBatch creates a batch runner. A nil limiter disables rate limiting.
func NewBatch(scan ScanFunc, workers int, limiter *Limiter) *Batch {
	if workers <= 0 {
		workers = 1
	}
	return &Batch{scan: scan, workers: workers, limiter: limiter}
}

// Run scans every URL and returns outcomes in input order.
func (b *Batch) Run(ctx context.Context, urls []string) []Outcome {
	outcomes := make([]Outcome, len(urls))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = b.one(ctx, urls[i])
			}
		}()
	}

	for i := range urls {
		select {
		case <-ctx.Done():
			outcomes[i] = Outcome{URL: urls[i], Err: ctx.Err()}
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

func (b *Batch) one(ctx context.Context, rawURL string) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{URL: rawURL, Err: err}
	}
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx, rawURL); err != nil {
			return Outcome{URL: rawURL, Err: err}
		}
	}

	v, err := b.scan(ctx, rawURL)
	return Outcome{URL: rawURL, Verdict: v, Err: err}
}

// RunFile scans the URLs listed in a file, one per line.
func (b *Batch) RunFile(ctx context.Context, path string) ([]Outcome, error) {
	urls, err := ReadURLs(path)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}
	return b.Run(ctx, urls), nil
}

// ReadURLs reads one URL per line, skipping blanks, comments and duplicates.
func ReadURLs(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || seen[line] {
			continue
		}
		seen[line] = true
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}
