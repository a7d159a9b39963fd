// Package env applies LOCGATE_* settings from a .env file.
package env

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Prefix selects the variables Apply will export.
const Prefix = "LOCGATE_"

// Parse reads KEY=VALUE pairs from path. Blank lines, comments and malformed
// lines are skipped; a leading "export " is accepted. A missing file yields an
// empty map.
func Parse(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	vars := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		vars[key] = strings.Trim(strings.TrimSpace(val), `"'`)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return vars, nil
}

// ApplyFromDir loads dir/.env and exports its LOCGATE_* variables that are not
// already set. It returns the keys it exported.
func ApplyFromDir(dir string) ([]string, error) {
	return Apply(filepath.Join(dir, ".env"))
}

func Apply(path string) ([]string, error) {
	vars, err := Parse(path)
	if err != nil {
		return nil, err
	}
	var applied []string
	for key, val := range vars {
		if !strings.HasPrefix(key, Prefix) {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, val); err != nil {
			return applied, fmt.Errorf("set %s: %w", key, err)
		}
		applied = append(applied, key)
	}
	return applied, nil
}
