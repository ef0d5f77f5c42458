package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestReadyAllProbesPass(t *testing.T) {
	pr := NewProbeRunner(time.Second,
		Probe{Name: "a", Check: func(context.Context) error { return nil }},
		Probe{Name: "b", Check: func(context.Context) error { return nil }},
	)
	ready, results := pr.Ready(context.Background())
	if !ready {
		t.Fatal("expected ready")
	}
	if len(results) != 2 || results[0].Status != "ok" {
		t.Fatalf("results=%+v", results)
	}
}

func TestReadyReportsFailingProbe(t *testing.T) {
	pr := NewProbeRunner(time.Second,
		Probe{Name: "a", Check: func(context.Context) error { return nil }},
		Probe{Name: "b", Check: func(context.Context) error { return errors.New("down") }},
	)
	ready, results := pr.Ready(context.Background())
	if ready {
		t.Fatal("expected not ready")
	}
	if results[1].Status != "error" || results[1].Error != "down" {
		t.Fatalf("results=%+v", results)
	}
}

func TestRedisProbe(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	if err := RedisProbe(client).Check(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	mr.Close()
	if err := RedisProbe(client).Check(context.Background()); err == nil {
		t.Fatal("expected error after redis shutdown")
	}

	if err := RedisProbe(nil).Check(context.Background()); err != nil {
		t.Fatalf("nil client must pass: %v", err)
	}
}

func TestHTTPProbeCountsAnyResponseAsReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if err := HTTPProbe("auth-api", srv.URL).Check(context.Background()); err != nil {
		t.Fatalf("reachable 404: %v", err)
	}

	srv.Close()
	if err := HTTPProbe("auth-api", srv.URL).Check(context.Background()); err == nil {
		t.Fatal("expected error for closed server")
	}
}
