package testenv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const envFile = ".env.test"

var errEnvFileNotFound = errors.New("env file not found: " + envFile)

// Load finds .env.test in the working directory or any parent and applies it.
func Load() error {
	path, err := findUp(envFile)
	if err != nil {
		return err
	}
	return LoadFile(path)
}

// LoadIfPresent is Load that reports a missing .env.test as false instead of
// an error, so integration suites can skip.
func LoadIfPresent() (bool, error) {
	if err := Load(); err != nil {
		if errors.Is(err, errEnvFileNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read env file: %w", err)
	}
	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if key == "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("set env %s: %w", key, err)
		}
	}
	return nil
}

func findUp(filename string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	for {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errEnvFileNotFound
		}
		dir = parent
	}
}
