package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/nbpublish/internal/logfields"
)

var errNoEnvFile = errors.New("no .env file found")

// fromEnvFile records the variables set by loadEnvFile so a later load can
// replace them after the file changes. Variables present in the process
// environment before the first load are never touched.
var (
	envMu       sync.Mutex
	fromEnvFile = map[string]bool{}
)

// loadEnvFile loads the first of .env / .env.local found in dir.
func loadEnvFile(dir string) error {
	for _, name := range []string{".env", ".env.local"} {
		envPath := filepath.Join(dir, name)
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		values, err := godotenv.Read(envPath)
		if err != nil {
			return err
		}
		applyEnv(values)
		slog.Info("Loaded environment variables", logfields.Path(envPath), logfields.Count(len(values)))
		return nil
	}
	return errNoEnvFile
}

func applyEnv(values map[string]string) {
	envMu.Lock()
	defer envMu.Unlock()
	for key, value := range values {
		if _, set := os.LookupEnv(key); set && !fromEnvFile[key] {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			slog.Warn("Failed to set environment variable", slog.String("key", key), logfields.Error(err))
			continue
		}
		fromEnvFile[key] = true
	}
}

// expandEnv resolves $VAR and ${VAR} in the fields that name repository
// coordinates and paths. Undefined variables are left as written.
func (c *Config) expandEnv() {
	for _, field := range []*string{&c.GitHubRepo, &c.GitHubBranch, &c.OutputDir} {
		*field = expandDefined(*field)
	}
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

func expandDefined(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		m := envRef.FindStringSubmatch(ref)
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return ref
	})
}
