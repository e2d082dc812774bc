package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file, expands ${VAR} references and applies
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// LoadEnvFiles loads optional dotenv files from dir in increasing
// precedence: .env, .env.<env>, .env.local. The environment name comes from
// FILEBRIDGE_ENV, falling back to ENV. Variables already present in the
// process environment are not overridden by .env; later files override
// earlier ones.
func LoadEnvFiles(dir string) error {
	if err := loadIfExists(filepath.Join(dir, ".env"), godotenv.Load); err != nil {
		return err
	}

	env := os.Getenv("FILEBRIDGE_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env != "" {
		if err := loadIfExists(filepath.Join(dir, ".env."+env), godotenv.Overload); err != nil {
			return err
		}
	}

	return loadIfExists(filepath.Join(dir, ".env.local"), godotenv.Overload)
}

func loadIfExists(path string, load func(...string) error) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
