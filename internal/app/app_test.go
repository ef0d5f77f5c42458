package app

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/fragansa/movies-web/internal/audit"
	"github.com/fragansa/movies-web/internal/config"
)

func TestNewAssignsDependencies(t *testing.T) {
	cfg := &config.Config{ListenAddr: ":8080"}
	logger := slog.New(slog.DiscardHandler)
	server := &http.Server{Addr: cfg.ListenAddr}

	a := New(cfg, logger, server, nil, nil, nil, nil)
	if a.Config != cfg || a.Logger != logger || a.Server != server {
		t.Fatal("expected app dependencies to be assigned")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	server := &http.Server{Addr: "127.0.0.1:0"}
	a := New(&config.Config{}, logger, server, nil, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}

func TestShutdownReleasesBackendHandles(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	trail, err := audit.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("audit store: %v", err)
	}

	a := New(&config.Config{}, slog.New(slog.DiscardHandler), &http.Server{}, nil, trail, rdb, nil)
	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if err := rdb.Ping(context.Background()).Err(); err == nil {
		t.Fatal("redis client must be closed after shutdown")
	}
	if err := trail.Record(context.Background(), audit.Event{Action: "login", Outcome: "success"}); err == nil {
		t.Fatal("audit db must be closed after shutdown")
	}
}

func TestShutdownToleratesAbsentBackends(t *testing.T) {
	a := New(&config.Config{}, slog.New(slog.DiscardHandler), &http.Server{}, nil, nil, nil, nil)
	if err := a.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown with nothing to release: %v", err)
	}
}

func TestNewRedisClientDisabledWithoutAddr(t *testing.T) {
	if c := NewRedisClient(&config.Config{}); c != nil {
		t.Fatal("expected nil client when redis is not configured")
	}
	c := NewRedisClient(&config.Config{RedisAddr: "localhost:6379"})
	if c == nil {
		t.Fatal("expected client")
	}
	_ = c.Close()
}

func TestNewDefaultLangFallsBackToEnglish(t *testing.T) {
	if got := NewDefaultLang(&config.Config{DefaultLang: "es"}); got != "es" {
		t.Fatalf("lang=%q", got)
	}
	if got := NewDefaultLang(&config.Config{DefaultLang: "xx"}); got != "en" {
		t.Fatalf("lang=%q", got)
	}
}
