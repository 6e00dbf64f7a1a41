package main

import (
	"context"

	"github.com/kalambet/devfolio/internal/config"
	"github.com/kalambet/devfolio/internal/generator"
	"github.com/kalambet/devfolio/internal/github"
	"github.com/kalambet/devfolio/internal/openai"
	"github.com/kalambet/devfolio/internal/pipeline"
	"github.com/kalambet/devfolio/internal/vercel"
)

// Swapped out in tests.
var (
	loadConfig = config.Load

	newBuilder = func(cfg config.Config) *pipeline.Builder {
		return pipeline.NewBuilder(
			github.NewClient(cfg.GitHub.BaseURL, cfg.GitHub.Token),
			generator.New(openai.NewClientWithBaseURL(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL), cfg.OpenAI.Model),
			vercel.NewPublisher(cfg.Vercel.Binary, cfg.Vercel.Token, cfg.Workspace.BaseDir),
		)
	}

	newModelLister = func(cfg config.Config) modelLister {
		return openai.NewClientWithBaseURL(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	}
)

type modelLister interface {
	ListModels(ctx context.Context) ([]openai.Model, error)
}

// configure loads configuration for req and applies its log level unless
// --verbose already chose one.
func configure(req config.Requirement) (config.Config, error) {
	cfg, err := loadConfig(req)
	if err != nil {
		return config.Config{}, err
	}
	if !verbose {
		logLevel.Set(cfg.LogLevel())
	}
	return cfg, nil
}
