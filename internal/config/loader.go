package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the file name looked for when no --config flag
// is given.
const DefaultConfigFile = ".navfep-gopher"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile reads per-host crawl settings from a YAML file. A
// missing file reports ErrConfigNotFound so callers can tell an absent
// optional config from a broken one the user asked for by path.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user's own flag
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	// A file without a sites block unmarshals to a nil map.
	if file.Sites == nil {
		file.Sites = make(map[string]SiteConfig)
	}

	return &file, nil
}

// FindConfigFile resolves the configuration file to load. An explicit
// path wins when it exists; otherwise the current directory and then
// the home directory are checked for DefaultConfigFile. The empty
// string means no file was found anywhere.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var dirs []string
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	for _, dir := range dirs {
		candidate := filepath.Join(dir, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
