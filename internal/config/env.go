package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// envFiles are loaded in order; earlier files and the process environment win.
var envFiles = []string{".env", ".env.local"}

// LoadEnv loads dotenv files from dir and the working directory without
// overriding variables that are already set. Missing files are ignored.
func LoadEnv(dir string) {
	seen := map[string]bool{}
	for _, base := range []string{dir, "."} {
		for _, name := range envFiles {
			p, err := filepath.Abs(filepath.Join(base, name))
			if err != nil || seen[p] {
				continue
			}
			seen[p] = true
			if _, err := os.Stat(p); err != nil {
				continue
			}
			if err := godotenv.Load(p); err != nil {
				slog.Warn("Failed to load env file", slog.String("path", p), slog.String("error", err.Error()))
				continue
			}
			slog.Debug("Loaded environment file", slog.String("path", p))
		}
	}
}
