package token

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisClientForTest(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})
	return server, client
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newGuardedRequest(cookies ...*http.Cookie) (*http.Request, *httptest.ResponseRecorder) {
	r := httptest.NewRequest(http.MethodGet, "/movies", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r, httptest.NewRecorder()
}

func TestTTLFloor(t *testing.T) {
	cases := []struct {
		name   string
		expiry time.Time
	}{
		{name: "near future", expiry: time.Now().Add(10 * time.Second)},
		{name: "already past", expiry: time.Now().Add(-time.Hour)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TTL(tc.expiry); got != MinTTL {
				t.Fatalf("TTL()=%v want %v", got, MinTTL)
			}
		})
	}
}

func TestTTLDefault(t *testing.T) {
	if got := TTL(time.Time{}); got != DefaultTTL {
		t.Fatalf("TTL(zero)=%v want %v", got, DefaultTTL)
	}
}

func TestTTLWholeSeconds(t *testing.T) {
	got := TTL(time.Now().Add(30 * time.Minute))
	if got < 29*time.Minute || got > 30*time.Minute {
		t.Fatalf("TTL()=%v outside expected range", got)
	}
	if got%time.Second != 0 {
		t.Fatalf("TTL()=%v not whole seconds", got)
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	_, client := newRedisClientForTest(t)
	r, w := newGuardedRequest(&http.Cookie{Name: DeviceCookieName, Value: "dev-1"})
	store := ForRequest(r, w, client, true, testLogger())
	ctx := context.Background()

	store.Write(ctx, "tok-abc", time.Now().Add(time.Hour))
	if got := store.Read(ctx); got != "tok-abc" {
		t.Fatalf("Read()=%q want tok-abc", got)
	}

	v, err := client.Get(ctx, "accessToken:dev-1").Result()
	if err != nil {
		t.Fatalf("canonical key missing: %v", err)
	}
	if v != "tok-abc" {
		t.Fatalf("canonical value=%q", v)
	}
}

func TestWriteSkipsLegacyKey(t *testing.T) {
	server, client := newRedisClientForTest(t)
	r, w := newGuardedRequest(&http.Cookie{Name: DeviceCookieName, Value: "dev-1"})
	store := ForRequest(r, w, client, true, testLogger())

	store.Write(context.Background(), "tok-abc", time.Time{})
	if server.Exists("access_token:dev-1") {
		t.Fatal("legacy key must not be written")
	}
}

func TestReadPrefersCookieOverRedis(t *testing.T) {
	server, client := newRedisClientForTest(t)
	server.Set("accessToken:dev-1", "from-redis")

	r, w := newGuardedRequest(
		&http.Cookie{Name: DeviceCookieName, Value: "dev-1"},
		&http.Cookie{Name: CookieName, Value: "from-cookie"},
	)
	store := ForRequest(r, w, client, true, testLogger())
	if got := store.Read(context.Background()); got != "from-cookie" {
		t.Fatalf("Read()=%q want from-cookie", got)
	}
}

func TestReadFallsBackToCanonicalThenLegacy(t *testing.T) {
	server, client := newRedisClientForTest(t)
	r, w := newGuardedRequest(&http.Cookie{Name: DeviceCookieName, Value: "dev-1"})
	store := ForRequest(r, w, client, true, testLogger())
	ctx := context.Background()

	if got := store.Read(ctx); got != "" {
		t.Fatalf("Read() on empty store=%q", got)
	}

	server.Set("access_token:dev-1", "legacy-tok")
	if got := store.Read(ctx); got != "legacy-tok" {
		t.Fatalf("Read()=%q want legacy-tok", got)
	}

	server.Set("accessToken:dev-1", "canonical-tok")
	if got := store.Read(ctx); got != "canonical-tok" {
		t.Fatalf("Read()=%q want canonical-tok", got)
	}
}

func TestClearIdempotent(t *testing.T) {
	server, client := newRedisClientForTest(t)
	server.Set("accessToken:dev-1", "tok")
	server.Set("access_token:dev-1", "tok-legacy")

	r, w := newGuardedRequest(
		&http.Cookie{Name: DeviceCookieName, Value: "dev-1"},
		&http.Cookie{Name: CookieName, Value: "tok"},
	)
	store := ForRequest(r, w, client, true, testLogger())
	ctx := context.Background()

	store.Clear(ctx)
	store.Clear(ctx)

	if got := store.Read(ctx); got != "" {
		t.Fatalf("Read() after clear=%q", got)
	}
	if server.Exists("accessToken:dev-1") || server.Exists("access_token:dev-1") {
		t.Fatal("redis records must be removed")
	}

	var cleared bool
	for _, h := range w.Result().Header.Values("Set-Cookie") {
		if strings.HasPrefix(h, CookieName+"=") && strings.Contains(h, "Max-Age=0") {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("expected an expiring Set-Cookie for the access token")
	}
}

func TestStorageFailureDegradesToAbsent(t *testing.T) {
	server, client := newRedisClientForTest(t)
	server.Close()

	r, w := newGuardedRequest(&http.Cookie{Name: DeviceCookieName, Value: "dev-1"})
	store := ForRequest(r, w, client, true, testLogger())
	ctx := context.Background()

	if got := store.Read(ctx); got != "" {
		t.Fatalf("Read() with dead redis=%q", got)
	}
	// Write and clear must stay non-fatal; the cookie medium still works.
	store.Write(ctx, "tok", time.Time{})
	if got := store.Read(ctx); got != "tok" {
		t.Fatalf("Read() after cookie-only write=%q", got)
	}
	store.Clear(ctx)
}

func TestEnsureDeviceIDMintsOnce(t *testing.T) {
	r, w := newGuardedRequest()
	id := EnsureDeviceID(r, w, true)
	if id == "" {
		t.Fatal("expected a minted device id")
	}

	r2, w2 := newGuardedRequest(&http.Cookie{Name: DeviceCookieName, Value: id})
	if got := EnsureDeviceID(r2, w2, true); got != id {
		t.Fatalf("device id changed: %q != %q", got, id)
	}
	if len(w2.Result().Header.Values("Set-Cookie")) != 0 {
		t.Fatal("existing device id must not be re-set")
	}
}
