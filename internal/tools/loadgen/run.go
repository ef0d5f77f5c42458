// Package loadgen drives synthetic browser traffic against the web
// frontend so rate limiting and guard behavior can be observed under
// load.
package loadgen

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type Config struct {
	BaseURL     string
	Profile     string
	Duration    time.Duration
	RPS         int
	Concurrency int
	Seed        int64
}

type Result struct {
	TotalRequests int64
	Failures      int64
	StatusCounts  map[string]int64
}

type request struct {
	method string
	path   string
	form   url.Values
}

var authRequests = []request{
	{method: http.MethodGet, path: "/login"},
	{method: http.MethodGet, path: "/register"},
	{method: http.MethodPost, path: "/login", form: url.Values{"email": {"probe@example.com"}, "password": {"wrong"}}},
}

var catalogRequests = []request{
	{method: http.MethodGet, path: "/"},
	{method: http.MethodGet, path: "/movies"},
	{method: http.MethodGet, path: "/genres"},
	{method: http.MethodGet, path: "/actors"},
}

func normalizeProfile(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	switch p {
	case "auth", "catalog", "mixed":
		return p
	}
	return "mixed"
}

func classifyStatusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return "other"
}

func requestsForProfile(profile string) []request {
	switch normalizeProfile(profile) {
	case "auth":
		return authRequests
	case "catalog":
		return catalogRequests
	}
	return append(append([]request{}, authRequests...), catalogRequests...)
}

// Run fires cfg.RPS requests per second for cfg.Duration. Redirects are
// not followed: a guard 303 is a meaningful outcome here, not a hop.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("loadgen: base url is required")
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 10
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	client := &http.Client{
		Timeout: 10 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	pool := requestsForProfile(cfg.Profile)
	rng := rand.New(rand.NewSource(cfg.Seed))

	var mu sync.Mutex
	var total, failures atomic.Int64
	counts := make(map[string]int64)

	jobs := make(chan request)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				status, err := fire(ctx, client, cfg.BaseURL, job)
				total.Add(1)
				if err != nil {
					failures.Add(1)
					continue
				}
				mu.Lock()
				counts[classifyStatusClass(status)]++
				mu.Unlock()
			}
		}()
	}

	ticker := time.NewTicker(time.Second / time.Duration(cfg.RPS))
	defer ticker.Stop()

feed:
	for {
		select {
		case <-ctx.Done():
			break feed
		case <-ticker.C:
			select {
			case jobs <- pool[rng.Intn(len(pool))]:
			case <-ctx.Done():
				break feed
			}
		}
	}
	close(jobs)
	wg.Wait()

	return &Result{
		TotalRequests: total.Load(),
		Failures:      failures.Load(),
		StatusCounts:  counts,
	}, nil
}

func fire(ctx context.Context, client *http.Client, base string, job request) (int, error) {
	var req *http.Request
	var err error
	if job.form != nil {
		req, err = http.NewRequestWithContext(ctx, job.method, base+job.path, strings.NewReader(job.form.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, job.method, base+job.path, nil)
	}
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}
