package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ekaya-inc/profile-engine/pkg/config"
	"github.com/ekaya-inc/profile-engine/pkg/llm"
	"github.com/ekaya-inc/profile-engine/pkg/profiler"
	"github.com/ekaya-inc/profile-engine/pkg/sources"
	"github.com/ekaya-inc/profile-engine/pkg/truncate"
	"github.com/ekaya-inc/profile-engine/pkg/workspace"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg.Env)
	defer logger.Sync()

	logger.Info("starting profile-engine",
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env),
		zap.Int("sources", len(cfg.Sources)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := workspace.NewStore(cfg.Workspace, logger)
	toolTruncator := truncate.New(cfg.Truncation.Budget, cfg.Truncation.AutoSave, store, logger)
	longTruncator := truncate.New(cfg.Truncation.LongBudget, cfg.Truncation.AutoSave, store, logger)

	var p *profiler.Profiler
	if cfg.LLM.IsAvailable() {
		gateway, err := newGateway(cfg.LLM, logger)
		if err != nil {
			logger.Fatal("failed to create LLM gateway", zap.Error(err))
		}
		p = profiler.New(gateway, cfg.LLM, logger)
	} else {
		logger.Warn("no LLM gateway configured; sources will be prepared but not profiled")
	}

	manager := sources.NewManager(cfg, store, p, toolTruncator, longTruncator, logger)
	defer manager.Close()

	for _, endpoint := range cfg.Sources {
		if err := manager.AddSource(endpoint); err != nil {
			logger.Error("failed to register source",
				zap.String("endpoint", endpoint),
				zap.Error(err))
		}
	}

	manager.PrepareAll(ctx)
	fmt.Println(manager.Describe())
}

func newLogger(env string) *zap.Logger {
	if env == "local" {
		logger, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("Failed to create logger: %v", err)
		}
		return logger
	}
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	return logger
}

func newGateway(cfg config.LLMConfig, logger *zap.Logger) (llm.Gateway, error) {
	gwCfg := &llm.GatewayConfig{
		Endpoint: cfg.Endpoint,
		APIKey:   cfg.APIKey,
	}
	switch cfg.Provider {
	case "anthropic":
		return llm.NewAnthropicGateway(gwCfg, logger)
	default:
		return llm.NewOpenAIGateway(gwCfg, logger)
	}
}
