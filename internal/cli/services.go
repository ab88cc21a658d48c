package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ppiankov/celestial/internal/cache"
	"github.com/ppiankov/celestial/internal/llm"
	"github.com/ppiankov/celestial/internal/model"
	"github.com/ppiankov/celestial/internal/pipeline"
	"github.com/ppiankov/celestial/internal/source"
	"github.com/ppiankov/celestial/internal/worker"
	"go.uber.org/zap"
)

// llmRateKey is the limiter key shared by all AI calls
const llmRateKey = "llm"

// app holds the wired components for one command run
type app struct {
	cfg       *model.Config
	service   *pipeline.Service
	fetcher   *source.Fetcher
	generator *llm.Generator
	cache     cache.Cache
	closers   []func() error
}

// Close releases resources opened by newApp
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}
}

// newApp builds the batch store, remote fetcher and AI generator from cfg
func newApp(ctx context.Context, cfg *model.Config) (*app, error) {
	a := &app{cfg: cfg}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	limiter.SetRate(llmRateKey, cfg.RateLimiting.APIPerSecond, 1)

	opts := pipeline.Options{
		Store:           store,
		Limiter:         limiter,
		Logger:          logger,
		DefaultLanguage: cfg.Defaults.Language,
	}

	if cfg.Storage.Enabled && cfg.Storage.BaseURL != "" {
		a.fetcher = source.NewFetcher(source.Options{
			BaseURL:       cfg.Storage.BaseURL,
			Timeout:       cfg.HTTP.Timeout,
			UserAgent:     cfg.HTTP.UserAgent,
			MaxBytes:      cfg.HTTP.MaxBodyBytes,
			RespectRobots: cfg.HTTP.RespectRobots,
			HTTPProxy:     cfg.HTTP.HTTPProxy,
			HTTPSProxy:    cfg.HTTP.HTTPSProxy,
			NoProxy:       cfg.HTTP.NoProxy,
			Limiter:       limiter,
		}, logger)
		opts.Remote = a.fetcher
	}

	if cfg.LLM.Provider != "" {
		llmConfig := llm.ConfigFromModel(cfg.LLM, cfg.HTTP)
		if llmConfig.APIKey == "" {
			llmConfig.APIKey = llm.APIKeyFromEnv(llmConfig.Provider)
		}
		g, err := llm.NewGenerator(llmConfig, logger)
		if err != nil {
			logger.Warn("AI provider unavailable", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
		} else {
			a.generator = g
			opts.Generator = g
		}
	}

	a.service = pipeline.NewService(opts)
	return a, nil
}

// openStore builds the (date, language) batch store from the cache config
func (a *app) openStore(ctx context.Context) (cache.BatchStore, error) {
	cfg := a.cfg.Cache
	memory := cache.NewMemoryCache(cfg.MemoryTTL, cfg.MemoryTTL/2)

	if !cfg.Enabled {
		a.cache = memory
		return cache.NewStore(memory, 0), nil
	}

	dir := cfg.Dir
	if dir == "" {
		base, err := configDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "cache")
	}

	var persistent cache.Cache
	switch strings.ToLower(cfg.Backend) {
	case "", "disk":
		persistent = cache.NewDiskCache(dir, cfg.DiskTTL)
	case "sqlite":
		db, err := cache.OpenSQLiteCache(ctx, filepath.Join(dir, "batches.db"), cfg.DiskTTL)
		if err != nil {
			return nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		persistent = db
	default:
		return nil, fmt.Errorf("unknown cache backend: %s (supported: disk, sqlite)", cfg.Backend)
	}

	a.cache = cache.NewLayeredCache(memory, persistent)
	return cache.NewStore(a.cache, 0), nil
}
