//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/surfai/internal/bootstrap"
	"github.com/yanqian/surfai/internal/domain/prediction"
	"github.com/yanqian/surfai/internal/domain/sessions"
	"github.com/yanqian/surfai/internal/domain/spots"
	"github.com/yanqian/surfai/internal/infra/config"
	httpiface "github.com/yanqian/surfai/internal/interface/http"
	"github.com/yanqian/surfai/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		providePredictionConfig,
		provideSpotCatalog,
		provideForecaster,
		provideProfileStore,
		provideSessionRepository,
		sessions.NewService,
		prediction.NewService,
		wire.Bind(new(prediction.SpotCatalog), new(*spots.Catalog)),
		wire.Bind(new(prediction.SessionSource), new(sessions.Service)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
