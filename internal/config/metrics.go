package config

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Config loads are counted through the global meter so a boot loop on a
// bad environment shows up in telemetry even though the full OTel
// runtime comes up after Load.
var loadCounter = sync.OnceValue(func() metric.Int64Counter {
	c, err := otel.Meter("fragansa-movies-web").Int64Counter(
		"config.load.outcomes",
		metric.WithDescription("Environment config load outcomes by error class"),
	)
	if err != nil {
		return nil
	}
	return c
})

func recordConfigValidationEvent(ctx context.Context, profile, outcome, errorClass string) {
	c := loadCounter()
	if c == nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(
		attribute.String("profile", profileAttr(profile)),
		attribute.String("outcome", outcome),
		attribute.String("error_class", errorClass),
	))
}

// profileAttr bounds attribute cardinality: only the profiles we deploy
// are reported verbatim.
func profileAttr(profile string) string {
	switch p := strings.ToLower(strings.TrimSpace(profile)); p {
	case "dev", "staging", "prod":
		return p
	case "":
		return "unknown"
	default:
		return "other"
	}
}

// classifyConfigLoadError buckets Load failures by the shapes this
// package actually produces: env coercion ("parse KEY:"), a required
// key left unset, or a set key with a rejected value.
func classifyConfigLoadError(err error) string {
	if err == nil {
		return "none"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.HasPrefix(msg, "parse "):
		return "parse"
	case strings.Contains(msg, "is required"):
		return "missing"
	case strings.HasPrefix(msg, "validate config:"):
		return "invalid"
	default:
		return "load"
	}
}
