// Package app assembles the chat pipeline from configuration. Both the
// server and the CLI build their router through it.
package app

import (
	"context"
	"fmt"
	"time"

	"youthunion-chat/internal/activitycache"
	"youthunion-chat/internal/clients/dataapi"
	"youthunion-chat/internal/clients/genai"
	"youthunion-chat/internal/common/config"
	"youthunion-chat/internal/common/database"
	"youthunion-chat/internal/common/logger"
	"youthunion-chat/internal/intent"
	"youthunion-chat/internal/lexicon"
	"youthunion-chat/internal/queryrouter"
	"youthunion-chat/internal/transcript"
)

const (
	snapshotTTL      = 24 * time.Hour
	postgresAttempts = 5
)

// App holds the wired components. Transcripts is nil when transcript
// storage is disabled.
type App struct {
	Lexicon     *lexicon.Lexicon
	Analyzer    *intent.Analyzer
	DataAPI     *dataapi.Client
	Cache       *activitycache.Cache
	Router      *queryrouter.Router
	Transcripts *transcript.Store

	closers []func() error
	logger  logger.Logger
}

// LoadLexicon returns the registry at cfg.Path, or the built-in lexicon.
func LoadLexicon(cfg config.LexiconConfig) (*lexicon.Lexicon, error) {
	if cfg.Path == "" {
		return lexicon.Default(), nil
	}
	return lexicon.Load(cfg.Path)
}

// New connects every collaborator named in cfg. Optional stores (Redis
// snapshot, Postgres transcript) are only dialed when enabled.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	lex, err := LoadLexicon(cfg.Lexicon)
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}

	a := &App{
		Lexicon:  lex,
		Analyzer: intent.NewAnalyzer(lex),
		DataAPI:  dataapi.New(cfg.DataAPI, log),
		logger:   log,
	}

	var cacheOpts []activitycache.Option
	if cfg.Cache.RedisSnapshot {
		redis, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, redis.Close)
		cacheOpts = append(cacheOpts, activitycache.WithSnapshotStore(
			activitycache.NewRedisStore(redis, cfg.Cache.SnapshotKey, snapshotTTL)))
	}
	a.Cache = activitycache.New(a.DataAPI, cfg.Cache, log, cacheOpts...)

	generator, err := genai.New(ctx, cfg.GenAI, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create generator: %w", err)
	}

	routerOpts := []queryrouter.Option{
		queryrouter.WithTimeouts(
			attemptsTimeout(cfg.DataAPI.Timeout, cfg.DataAPI.MaxRetries),
			attemptsTimeout(cfg.GenAI.Timeout, cfg.GenAI.MaxRetries),
		),
	}

	if cfg.Transcript.Enabled {
		pg, err := database.ConnectPostgres(ctx, cfg.Database.Postgres, postgresAttempts, time.Second)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, pg.Close)
		a.Transcripts = transcript.NewStore(pg.DB, cfg.Transcript, log)
		if err := a.Transcripts.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure transcript schema: %w", err)
		}
		routerOpts = append(routerOpts, queryrouter.WithRecorder(a.Transcripts))
	}

	a.Router = queryrouter.New(a.Analyzer, a.DataAPI, a.Cache, generator, log, routerOpts...)
	return a, nil
}

// Close releases the store connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.WithError(err).Warn("close failed", nil)
		}
	}
	a.closers = nil
}

// attemptsTimeout bounds a call that may be retried maxRetries times.
func attemptsTimeout(timeoutMS, maxRetries int) time.Duration {
	if timeoutMS <= 0 {
		return 0
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return config.GetDuration(timeoutMS) * time.Duration(maxRetries+1)
}
