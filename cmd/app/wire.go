//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/content-interlinker/internal/bootstrap"
	"github.com/yanqian/content-interlinker/internal/domain/gencache"
	"github.com/yanqian/content-interlinker/internal/domain/interlink"
	"github.com/yanqian/content-interlinker/internal/infra/config"
	httpiface "github.com/yanqian/content-interlinker/internal/interface/http"
	"github.com/yanqian/content-interlinker/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideInterlinkConfig,
		provideGenerator,
		provideCacheStore,
		provideContentRepository,
		gencache.New,
		interlink.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
