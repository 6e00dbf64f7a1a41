package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kalambet/devfolio/internal/logfields"
)

const configFileName = "config.yaml"

// yamlBackend keeps settings as a flat mapping of dotted keys:
//
//	openai.model: gpt-4o
//	preview.port: 8080
//
// An unreadable or malformed file is treated as empty.
type yamlBackend struct {
	path   string
	values map[string]any
}

func newPlatformBackend() ConfigBackend {
	return newFileBackend(configFilePath())
}

func newFileBackend(path string) *yamlBackend {
	return &yamlBackend{path: path, values: readValues(path)}
}

// configFilePath follows XDG: $XDG_CONFIG_HOME/devfolio, else ~/.config/devfolio.
func configFilePath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join("devfolio", configFileName)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "devfolio", configFileName)
}

func readValues(path string) map[string]any {
	values := map[string]any{}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return values
	}
	if err != nil {
		slog.Warn("config file unreadable, using defaults", logfields.Path(path), logfields.Error(err))
		return values
	}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		slog.Warn("config file is not valid YAML, using defaults", logfields.Path(path), logfields.Error(err))
		return map[string]any{}
	}
	if values == nil {
		values = map[string]any{}
	}
	return values
}

// flush replaces the file via a sibling temp file so a failed write never
// leaves it truncated.
func (b *yamlBackend) flush() error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	out, err := yaml.Marshal(b.values)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing config: %w", err)
	}
	return nil
}

func (b *yamlBackend) GetString(key string) (string, bool, error) {
	v, ok := b.values[key]
	if !ok {
		return "", false, nil
	}
	if s, isString := v.(string); isString {
		return s, true, nil
	}
	// Unquoted scalars such as `openai.model: 4` decode as numbers.
	return fmt.Sprint(v), true, nil
}

func (b *yamlBackend) GetInt(key string) (int, bool, error) {
	v, ok := b.values[key]
	if !ok {
		return 0, false, nil
	}
	switch n := v.(type) {
	case int:
		return n, true, nil
	case float64:
		if n != math.Trunc(n) || n < math.MinInt || n > math.MaxInt {
			return 0, true, fmt.Errorf("%s: %v is not a whole number", key, n)
		}
		return int(n), true, nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, true, fmt.Errorf("%s: %w", key, err)
		}
		return i, true, nil
	}
	return 0, true, fmt.Errorf("%s: expected an integer, got %T", key, v)
}

func (b *yamlBackend) SetString(key, val string) error {
	b.values[key] = val
	return b.flush()
}

func (b *yamlBackend) SetInt(key string, val int) error {
	b.values[key] = val
	return b.flush()
}

// Delete removes key. Removing an absent key is not an error and does not
// touch the file.
func (b *yamlBackend) Delete(key string) error {
	if _, ok := b.values[key]; !ok {
		return nil
	}
	delete(b.values, key)
	return b.flush()
}
