package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

var dotEnvFiles = []string{".env", ".env.local"}

// loadDotEnv loads each existing file into the process environment.
// Variables already set in the environment are never overwritten.
func loadDotEnv(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("could not load env file", "path", p, "error", err)
			continue
		}
		slog.Debug("loaded env file", "path", p)
	}
}
