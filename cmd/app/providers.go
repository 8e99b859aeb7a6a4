package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/content-interlinker/internal/domain/gencache"
	"github.com/yanqian/content-interlinker/internal/domain/generation"
	"github.com/yanqian/content-interlinker/internal/domain/interlink"
	"github.com/yanqian/content-interlinker/internal/infra/config"
	"github.com/yanqian/content-interlinker/internal/infra/contentrepo"
	"github.com/yanqian/content-interlinker/internal/infra/gencachestore"
	"github.com/yanqian/content-interlinker/internal/infra/llm/chatgpt"
	"github.com/yanqian/content-interlinker/internal/infra/llm/generator"
)

func provideInterlinkConfig(cfg *config.Config) interlink.Config {
	return interlink.Config{
		Temperature:             cfg.LLM.Temperature,
		MaxTokens:               cfg.LLM.MaxTokens,
		ExcerptLength:           cfg.Interlink.ExcerptLength,
		DefaultLimit:            cfg.Interlink.DefaultLimit,
		BidirectionalMaxPerItem: cfg.Interlink.BidirectionalMaxPerItem,
		LegacyLimit:             cfg.Interlink.LegacyLimit,
	}
}

func provideGenerator(cfg *config.Config, logger *slog.Logger) generation.Generator {
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		logger.Warn("llm api key not set, suggestions will be empty")
		return generator.Disabled{}
	}
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
	if err != nil {
		logger.Error("failed to build chatgpt client, suggestions will be empty", "error", err)
		return generator.Disabled{}
	}
	return generator.NewChatGPT(client, cfg.LLM.Model, logger)
}

func provideCacheStore(cfg *config.Config, logger *slog.Logger) (gencache.Store, func()) {
	memory := func() (gencache.Store, func()) {
		return gencachestore.NewMemoryStore(gencachestore.WithMaxEntries(cfg.Cache.MaxEntries)), func() {}
	}
	if !cfg.Cache.Valkey.Enabled {
		return memory()
	}
	opt, err := buildValkeyOptions(cfg.Cache.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return memory()
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return memory()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return memory()
	}
	logger.Info("generation cache valkey store enabled", "addr", cfg.Cache.Valkey.Addr)
	return gencachestore.NewValkeyStore(client, cfg.Cache.Valkey.Prefix), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideContentRepository(cfg *config.Config, logger *slog.Logger) (interlink.ContentRepository, func(), error) {
	dsn := strings.TrimSpace(cfg.Content.Postgres.DSN)
	if dsn == "" {
		return provideMemoryContent(cfg, logger)
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("parse content postgres dsn: %w", err)
	}
	if cfg.Content.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Content.Postgres.MaxConns
	}
	if cfg.Content.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Content.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("create content postgres pool: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping content postgres: %w", err)
	}
	logger.Info("content postgres repository enabled")
	return contentrepo.NewPostgresRepository(pool), pool.Close, nil
}

func provideMemoryContent(cfg *config.Config, logger *slog.Logger) (interlink.ContentRepository, func(), error) {
	if cfg.Content.SeedFile == "" {
		logger.Info("content postgres dsn not set, using empty memory repository")
		return contentrepo.NewMemoryRepository(), func() {}, nil
	}
	items, err := contentrepo.LoadSeedFile(cfg.Content.SeedFile)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("content memory repository seeded", "path", cfg.Content.SeedFile, "items", len(items))
	return contentrepo.NewMemoryRepository(items...), func() {}, nil
}
