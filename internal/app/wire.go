//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"github.com/fragansa/movies-web/internal/config"
	"github.com/fragansa/movies-web/internal/http/handler"
)

func InitializeApp(ctx context.Context) (*App, error) {
	wire.Build(
		config.Load,
		NewLogging,
		NewObservabilityRuntime,
		NewRedisClient,
		NewAuthAPIClient,
		NewCatalogClient,
		NewAuditStore,
		NewSessionManager,
		NewRenderer,
		NewDefaultLang,
		NewReadiness,
		NewLoginRateLimiter,
		handler.NewAuthHandler,
		handler.NewCatalogHandler,
		NewHTTPHandler,
		NewHTTPServer,
		wire.FieldsOf(new(*Logging), "Logger"),
		New,
	)
	return nil, nil
}
