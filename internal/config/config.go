package config

import (
	"log/slog"
	"strings"

	"github.com/kalambet/devfolio/internal/errors"
)

type Config struct {
	GitHub    GitHubConfig
	OpenAI    OpenAIConfig
	Vercel    VercelConfig
	Workspace WorkspaceConfig
	Preview   PreviewConfig
	Log       LogConfig
}

type GitHubConfig struct {
	BaseURL string
	Token   string
}

type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type VercelConfig struct {
	Binary string
	Token  string
}

type WorkspaceConfig struct {
	// BaseDir is where scoped project directories are created. Empty means
	// os.TempDir().
	BaseDir string
}

type PreviewConfig struct {
	Port int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		GitHub: GitHubConfig{
			BaseURL: "https://api.github.com",
		},
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-3.5-turbo",
		},
		Vercel: VercelConfig{
			Binary: "vercel",
		},
		Preview: PreviewConfig{
			Port: 4173,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Requirement selects which credentials a command needs before it may run.
type Requirement int

const (
	RequireGeneration Requirement = 1 << iota
	RequireDeployment

	RequireAll = RequireGeneration | RequireDeployment
)

// Load reads configuration: defaults, the YAML config file at
// $XDG_CONFIG_HOME/devfolio/config.yaml, .env files in the working directory,
// then environment variables. The credentials named by req must be present;
// a zero req checks nothing.
func Load(req Requirement) (Config, error) {
	loadDotEnv(dotEnvFiles...)
	cfg, err := loadWith(newPlatformBackend())
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(req); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, errors.Wrap(err, errors.CategoryConfig, "reading config file")
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Validate checks that the credentials named by req are set. All missing
// variables are reported together.
func (c Config) Validate(req Requirement) error {
	var missing []string
	if req&RequireDeployment != 0 && c.Vercel.Token == "" {
		missing = append(missing, envVercelToken)
	}
	if req&RequireGeneration != 0 && c.OpenAI.APIKey == "" {
		missing = append(missing, envOpenAIAPIKey)
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.Newf(errors.CategoryConfig,
		"missing required config: %s. Set it in the environment or in a .env file",
		strings.Join(missing, ", ")).
		WithContext("missing", missing)
}

// LogLevel maps Log.Level onto a slog level, defaulting to info.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
