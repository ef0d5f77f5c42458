package audit

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func newStoreForTest(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	store, err := Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := newStoreForTest(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ev := Event{
			Action:   "login",
			Outcome:  "success",
			Email:    fmt.Sprintf("user%d@example.com", i),
			DeviceID: "dev-1",
		}
		if err := store.Record(ctx, ev); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	events, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Email != "user2@example.com" {
		t.Fatalf("expected newest first, got %q", events[0].Email)
	}
}

func TestNilStoreTolerated(t *testing.T) {
	var store *Store
	if err := store.Record(context.Background(), Event{Action: "login"}); err != nil {
		t.Fatalf("nil record: %v", err)
	}
	events, err := store.Recent(context.Background(), 10)
	if err != nil || events != nil {
		t.Fatalf("nil recent: %v %v", events, err)
	}
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := Open("mysql", "dsn"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestFingerprintStableAndOpaque(t *testing.T) {
	a := Fingerprint("tok-1")
	b := Fingerprint("tok-1")
	c := Fingerprint("tok-2")
	if a == "" || a != b {
		t.Fatalf("fingerprint not stable: %q vs %q", a, b)
	}
	if a == c {
		t.Fatal("distinct tokens must not collide")
	}
	if strings.Contains(a, "tok") {
		t.Fatalf("fingerprint leaks token: %q", a)
	}
	if Fingerprint("") != "" {
		t.Fatal("empty token must fingerprint to empty string")
	}
}
