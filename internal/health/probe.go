package health

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// Probe is a single readiness check against a downstream dependency.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

type Result struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ProbeRunner evaluates all probes with a shared deadline. One slow
// dependency must not hold the readiness endpoint past the timeout.
type ProbeRunner struct {
	probes  []Probe
	timeout time.Duration
}

func NewProbeRunner(timeout time.Duration, probes ...Probe) *ProbeRunner {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &ProbeRunner{probes: probes, timeout: timeout}
}

func (pr *ProbeRunner) Ready(ctx context.Context) (bool, []Result) {
	ctx, cancel := context.WithTimeout(ctx, pr.timeout)
	defer cancel()

	ready := true
	results := make([]Result, 0, len(pr.probes))
	for _, p := range pr.probes {
		res := Result{Name: p.Name, Status: "ok"}
		if err := p.Check(ctx); err != nil {
			ready = false
			res.Status = "error"
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return ready, results
}

// RedisProbe pings the session token backend. A nil client means redis is
// not configured and the probe always passes.
func RedisProbe(client redis.UniversalClient) Probe {
	return Probe{
		Name: "redis",
		Check: func(ctx context.Context) error {
			if client == nil {
				return nil
			}
			return client.Ping(ctx).Err()
		},
	}
}

// HTTPProbe checks that a downstream API answers at all. Any response,
// including 4xx, counts as reachable.
func HTTPProbe(name, baseURL string) Probe {
	client := &http.Client{}
	return Probe{
		Name: name,
		Check: func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			return resp.Body.Close()
		},
	}
}
