package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

// Credential variable names match what the Vercel and OpenAI tooling already
// read, so an existing shell or .env works unchanged.
const (
	envVercelToken  = "VERCEL_TOKEN"
	envOpenAIAPIKey = "OPENAI_API_KEY"
	envGitHubToken  = "GITHUB_TOKEN"
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "github.base_url", typ: kString, env: "DEVFOLIO_GITHUB_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.GitHub.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.GitHub.BaseURL },
	},
	{
		key: "github.token", typ: kString, env: envGitHubToken,
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.GitHub.Token = v.(string) },
		extract: func(cfg Config) any { return cfg.GitHub.Token },
	},
	{
		key: "openai.base_url", typ: kString, env: "DEVFOLIO_OPENAI_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.OpenAI.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.OpenAI.BaseURL },
	},
	{
		key: "openai.model", typ: kString, env: "DEVFOLIO_OPENAI_MODEL",
		apply:   func(cfg *Config, v any) { cfg.OpenAI.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.OpenAI.Model },
	},
	{
		key: "openai.api_key", typ: kString, env: envOpenAIAPIKey,
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.OpenAI.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.OpenAI.APIKey },
	},
	{
		key: "vercel.binary", typ: kString, env: "DEVFOLIO_VERCEL_BINARY",
		apply:   func(cfg *Config, v any) { cfg.Vercel.Binary = v.(string) },
		extract: func(cfg Config) any { return cfg.Vercel.Binary },
	},
	{
		key: "vercel.token", typ: kString, env: envVercelToken,
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Vercel.Token = v.(string) },
		extract: func(cfg Config) any { return cfg.Vercel.Token },
	},
	{
		key: "workspace.base_dir", typ: kString, env: "DEVFOLIO_WORKSPACE_BASE_DIR",
		apply:   func(cfg *Config, v any) { cfg.Workspace.BaseDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Workspace.BaseDir },
	},
	{
		key: "preview.port", typ: kInt, env: "DEVFOLIO_PREVIEW_PORT",
		apply:   func(cfg *Config, v any) { cfg.Preview.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Preview.Port },
	},
	{
		key: "log.level", typ: kString, env: "DEVFOLIO_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		// Secrets never come from the config file.
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				slog.Warn("ignoring non-integer environment value", slog.String("var", s.env), slog.String("value", raw), slog.Any("error", err))
			}
		}
	}
}
