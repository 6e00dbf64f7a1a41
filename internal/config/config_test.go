package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/devfolio/internal/errors"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// clearEnv blanks every variable the loader reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
}

// TestDefaults verifies all default values are applied when loading an empty config file.
func TestDefaults(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, "")

	cfg, err := loadWith(newFileBackend(path))
	require.NoError(t, err)

	assert.Equal(t, "https://api.github.com", cfg.GitHub.BaseURL)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAI.Model)
	assert.Equal(t, "vercel", cfg.Vercel.Binary)
	assert.Equal(t, 4173, cfg.Preview.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Workspace.BaseDir)
}

// TestYAMLParsing verifies that all non-secret fields are read from the file.
func TestYAMLParsing(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `
github.base_url: http://ghe.local/api/v3
openai.base_url: http://llm.local/v1
openai.model: gpt-4o
vercel.binary: /opt/bin/vercel
workspace.base_dir: /tmp/devfolio-test
preview.port: 9000
log.level: debug
`)

	cfg, err := loadWith(newFileBackend(path))
	require.NoError(t, err)

	assert.Equal(t, "http://ghe.local/api/v3", cfg.GitHub.BaseURL)
	assert.Equal(t, "http://llm.local/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, "/opt/bin/vercel", cfg.Vercel.Binary)
	assert.Equal(t, "/tmp/devfolio-test", cfg.Workspace.BaseDir)
	assert.Equal(t, 9000, cfg.Preview.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

// TestSecretsIgnoredInFile verifies credentials are only taken from the environment.
func TestSecretsIgnoredInFile(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `
vercel.token: file-token
openai.api_key: file-key
`)

	cfg, err := loadWith(newFileBackend(path))
	require.NoError(t, err)
	assert.Empty(t, cfg.Vercel.Token)
	assert.Empty(t, cfg.OpenAI.APIKey)
}

// TestEnvOverride verifies that environment variables override config file values.
func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, "openai.model: file-model\npreview.port: 9000\n")

	t.Setenv("DEVFOLIO_OPENAI_MODEL", "env-model")
	t.Setenv("DEVFOLIO_PREVIEW_PORT", "9100")
	t.Setenv("VERCEL_TOKEN", "vt")
	t.Setenv("OPENAI_API_KEY", "ok")
	t.Setenv("GITHUB_TOKEN", "gt")

	cfg, err := loadWith(newFileBackend(path))
	require.NoError(t, err)

	assert.Equal(t, "env-model", cfg.OpenAI.Model)
	assert.Equal(t, 9100, cfg.Preview.Port)
	assert.Equal(t, "vt", cfg.Vercel.Token)
	assert.Equal(t, "ok", cfg.OpenAI.APIKey)
	assert.Equal(t, "gt", cfg.GitHub.Token)
}

func TestEnvOverride_BadInt(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, "")
	t.Setenv("DEVFOLIO_PREVIEW_PORT", "not-a-port")

	cfg, err := loadWith(newFileBackend(path))
	require.NoError(t, err)
	assert.Equal(t, 4173, cfg.Preview.Port)
}

func TestBadIntInFile(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, "preview.port: lots\n")

	_, err := loadWith(newFileBackend(path))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfig))
}

// TestValidate_MissingBoth verifies both credentials are reported at once.
func TestValidate_MissingBoth(t *testing.T) {
	err := defaults().Validate(RequireAll)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfig))
	assert.Contains(t, err.Error(), "missing required config")
	assert.Contains(t, err.Error(), "VERCEL_TOKEN")
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestValidate_Requirements(t *testing.T) {
	cfg := defaults()
	cfg.OpenAI.APIKey = "key"

	assert.NoError(t, cfg.Validate(RequireGeneration))
	assert.NoError(t, cfg.Validate(0))

	err := cfg.Validate(RequireAll)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VERCEL_TOKEN")
	assert.NotContains(t, err.Error(), "OPENAI_API_KEY")

	cfg.Vercel.Token = "token"
	assert.NoError(t, cfg.Validate(RequireAll))
}

// TestDotEnv verifies .env values are loaded without overriding the process env.
func TestDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("VERCEL_TOKEN=from-file\nOPENAI_API_KEY=\"quoted-key\"\n"), 0o600))

	t.Setenv("OPENAI_API_KEY", "from-shell")
	// godotenv treats a present-but-empty variable as already set.
	os.Unsetenv("VERCEL_TOKEN")

	loadDotEnv(envPath, filepath.Join(dir, ".env.local"))

	assert.Equal(t, "from-file", os.Getenv("VERCEL_TOKEN"))
	assert.Equal(t, "from-shell", os.Getenv("OPENAI_API_KEY"))
}

func TestLogLevel(t *testing.T) {
	cfg := defaults()
	assert.Equal(t, "INFO", cfg.LogLevel().String())
	cfg.Log.Level = "DEBUG"
	assert.Equal(t, "DEBUG", cfg.LogLevel().String())
	cfg.Log.Level = "warning"
	assert.Equal(t, "WARN", cfg.LogLevel().String())
	cfg.Log.Level = "nonsense"
	assert.Equal(t, "INFO", cfg.LogLevel().String())
}

func TestSetKeyAndShowAll(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "devfolio", "config.yaml")
	b := newFileBackend(path)

	require.NoError(t, setKeyWith(b, "openai.model", "gpt-4o"))
	require.NoError(t, setKeyWith(b, "preview.port", "8080"))
	assert.Error(t, setKeyWith(b, "preview.port", "eighty"))
	assert.Error(t, setKeyWith(b, "vercel.token", "nope"))
	assert.Error(t, setKeyWith(b, "no.such.key", "x"))

	cfg, err := loadWith(newFileBackend(path))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 8080, cfg.Preview.Port)

	cfg.Vercel.Token = "secret"
	shown := map[string]string{}
	for _, k := range ShowAll(cfg) {
		shown[k.Key] = k.Value
	}
	assert.Equal(t, "gpt-4o", shown["openai.model"])
	assert.Equal(t, "(set)", shown["vercel.token"])
	assert.Equal(t, "(unset)", shown["openai.api_key"])
	assert.NotContains(t, ValidKeys(), "vercel.token")
}

func TestUnsetKey(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "devfolio", "config.yaml")
	b := newFileBackend(path)

	require.NoError(t, setKeyWith(b, "openai.model", "gpt-4o"))
	require.NoError(t, setKeyWith(b, "preview.port", "8080"))
	require.NoError(t, unsetKeyWith(b, "openai.model"))
	require.NoError(t, unsetKeyWith(b, "openai.model"), "unsetting twice is fine")
	assert.Error(t, unsetKeyWith(b, "vercel.token"))
	assert.Error(t, unsetKeyWith(b, "no.such.key"))

	cfg, err := loadWith(newFileBackend(path))
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAI.Model)
	assert.Equal(t, 8080, cfg.Preview.Port)
}

func TestFileBackend_MalformedFileIsEmpty(t *testing.T) {
	path := writeTempConfig(t, "openai.model: [unclosed\n")
	b := newFileBackend(path)

	_, ok, err := b.GetString("openai.model")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.SetString("openai.model", "gpt-4o"))
	_, statErr := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(statErr))
}

func TestLoad_FromEnvironmentAndFile(t *testing.T) {
	clearEnv(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "devfolio"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(xdg, "devfolio", "config.yaml"), []byte("openai.model: gpt-4o\n"), 0o600))
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(RequireGeneration)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)

	_, err = Load(RequireAll)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfig))
	assert.Contains(t, err.Error(), "VERCEL_TOKEN")
	assert.NotContains(t, err.Error(), "OPENAI_API_KEY")

	_, err = Load(0)
	assert.NoError(t, err)
}
