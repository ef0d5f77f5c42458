package config

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifyConfigLoadErrorBucketsRealFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "clean load", err: nil, want: "none"},
		{name: "bad bool", err: fmt.Errorf("parse SECURE_COOKIES: %w", errors.New(`strconv.ParseBool: parsing "yep": invalid syntax`)), want: "parse"},
		{name: "bad duration", err: errors.New("parse AUTH_API_TIMEOUT: time: invalid duration \"soon\""), want: "parse"},
		{name: "auth url unset", err: errors.New("validate config: AUTH_API_BASE_URL is required"), want: "missing"},
		{name: "audit dsn unset", err: errors.New("validate config: AUDIT_DB_DSN is required when AUDIT_DB_DRIVER is set"), want: "missing"},
		{name: "bad lang", err: errors.New("validate config: DEFAULT_LANG must be en or es"), want: "invalid"},
		{name: "bad audit driver", err: errors.New("validate config: AUDIT_DB_DRIVER must be postgres or sqlite"), want: "invalid"},
		{name: "anything else", err: errors.New("dial tcp: connection refused"), want: "load"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyConfigLoadError(tc.err); got != tc.want {
				t.Fatalf("classifyConfigLoadError(%v)=%q want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestProfileAttrBoundsCardinality(t *testing.T) {
	cases := map[string]string{
		"dev":       "dev",
		"  PROD  ":  "prod",
		"staging":   "staging",
		"":          "unknown",
		"   ":       "unknown",
		"Ana's box": "other",
		"prod2":     "other",
	}
	for in, want := range cases {
		if got := profileAttr(in); got != want {
			t.Errorf("profileAttr(%q)=%q want %q", in, got, want)
		}
	}
}

func FuzzClassifyConfigLoadError(f *testing.F) {
	f.Add("parse LOGIN_RATE_LIMIT_RPM: invalid syntax")
	f.Add("validate config: CATALOG_API_BASE_URL is required")
	f.Add("validate config: DEFAULT_LANG must be en or es")
	f.Add("")
	f.Add("PARSE uppercase prefix")

	known := map[string]bool{"parse": true, "missing": true, "invalid": true, "load": true}
	f.Fuzz(func(t *testing.T, msg string) {
		got := classifyConfigLoadError(errors.New(msg))
		if !known[got] {
			t.Fatalf("unknown error class %q for %q", got, msg)
		}
		if again := classifyConfigLoadError(errors.New(msg)); again != got {
			t.Fatalf("classification not deterministic: %q then %q", got, again)
		}
	})
}
