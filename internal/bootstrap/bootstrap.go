// Package bootstrap wires configuration into a ready session controller.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jwebster45206/npc-engine/internal/avatar"
	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/internal/services"
	"github.com/jwebster45206/npc-engine/pkg/dialog"
	"github.com/jwebster45206/npc-engine/pkg/roster"
	"github.com/jwebster45206/npc-engine/pkg/session"
)

// Engine holds the long-lived pieces built from a Config.
type Engine struct {
	LLM        services.LLMService
	Cache      services.Cache
	Avatars    *avatar.Generator
	Controller *session.Controller
}

// NewLLMService picks the completion client for cfg.LLMProvider. A missing
// key is not fatal: turns fail with a dialog error until it is set.
func NewLLMService(cfg *config.Config, log *slog.Logger) (services.LLMService, error) {
	switch strings.ToLower(cfg.LLMProvider) {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Warn("OPENAI_API_KEY is not configured")
		}
		log.Info("Using OpenAI LLM provider", "base_url", cfg.OpenAIBaseURL)
		return services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ModelName, log), nil
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Warn("ANTHROPIC_API_KEY is not configured")
		}
		log.Info("Using Anthropic LLM provider")
		return services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log), nil
	case "mock":
		log.Info("Using mock LLM provider")
		return services.NewMockLLMAPI(), nil
	default:
		return nil, fmt.Errorf("invalid LLM provider %q (supported: openai, anthropic, mock)", cfg.LLMProvider)
	}
}

// NewCache connects to Redis when configured, otherwise returns an
// in-process cache.
func NewCache(ctx context.Context, cfg *config.Config, log *slog.Logger) (services.Cache, error) {
	if cfg.RedisURL == "" {
		log.Info("REDIS_URL not set, using in-memory cache")
		return services.NewMemoryCache(), nil
	}

	redisCache, err := services.NewRedisCache(cfg.RedisURL, log)
	if err != nil {
		return nil, err
	}
	if err := redisCache.WaitForConnection(ctx, 10, time.Second); err != nil {
		_ = redisCache.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return redisCache, nil
}

// Build assembles the engine: completion client, cache, avatars, roster
// world and the session controller.
func Build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Engine, error) {
	llm, err := NewLLMService(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := llm.InitModel(ctx, cfg.ModelName); err != nil {
		return nil, fmt.Errorf("failed to initialize model %s: %w", cfg.ModelName, err)
	}

	cache, err := NewCache(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	spec := roster.Default()
	if cfg.RosterFile != "" {
		spec, err = roster.Load(cfg.RosterFile)
		if err != nil {
			_ = cache.Close()
			return nil, err
		}
		log.Info("Loaded roster", "file", cfg.RosterFile, "npcs", len(spec.NPCs))
	}

	avatars := avatar.NewGenerator(cfg.AvatarDir, cache, log)
	world, err := spec.Build(ctx, cfg.HistoryLimit, avatars)
	if err != nil {
		_ = cache.Close()
		return nil, err
	}

	orchestrator := dialog.NewOrchestrator(llm, cfg.CompletionTimeout, log)
	controller := session.NewController(world, orchestrator, cfg.AffectionThreshold, log)

	log.Info("World ready",
		"session_id", world.ID.String(),
		"npcs", world.Len(),
		"history_limit", cfg.HistoryLimit,
		"affection_threshold", cfg.AffectionThreshold)

	return &Engine{
		LLM:        llm,
		Cache:      cache,
		Avatars:    avatars,
		Controller: controller,
	}, nil
}

// Close releases the cache connection.
func (e *Engine) Close() error {
	return e.Cache.Close()
}
