package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSettingsFile is looked up in the working directory when no settings path is given.
const DefaultSettingsFile = "readytest.yaml"

// Settings represents the project-level configuration of a test run
type Settings struct {
	APIPaths string   `json:"apiPaths" yaml:"apiPaths"`
	Queries  string   `json:"queries" yaml:"queries"`
	Schemas  string   `json:"schemas,omitempty" yaml:"schemas,omitempty"`
	Features []string `json:"features,omitempty" yaml:"features,omitempty"`
	Tags     string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	Format   string   `json:"format,omitempty" yaml:"format,omitempty"`
	Timeout  string   `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	EnvFile  string   `json:"envFile,omitempty" yaml:"envFile,omitempty"`
}

// DefaultSettings returns the layout used by a freshly generated project
func DefaultSettings() Settings {
	return Settings{
		APIPaths: filepath.Join("resources", "apiPaths", "apiPaths.yaml"),
		Queries:  filepath.Join("resources", "databaseQueries", "databaseQueries.yaml"),
		Schemas:  filepath.Join("resources", "schemas"),
		Features: []string{filepath.Join("resources", "features")},
		Format:   "pretty",
		Timeout:  "30s",
	}
}

// LoadSettings loads a settings file.
//
// The file format is determined by extension:
//   - .yaml, .yml -> YAML
//   - .json -> JSON
//
// Fields missing from the file keep their DefaultSettings values.
func LoadSettings(path string) (*Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("settings file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading settings file: %w", err)
	}

	return ParseSettings(data, path)
}

// ParseSettings parses settings data, picking the format from path's extension.
// Relative table and schema paths are resolved against the settings file's directory.
func ParseSettings(data []byte, path string) (*Settings, error) {
	settings := DefaultSettings()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &settings); err != nil {
			return nil, fmt.Errorf("error parsing settings file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return nil, fmt.Errorf("error parsing settings file: %w", err)
		}
	}

	dir := GetConfigDir(path)
	settings.APIPaths = relativeTo(dir, settings.APIPaths)
	settings.Queries = relativeTo(dir, settings.Queries)
	settings.Schemas = relativeTo(dir, settings.Schemas)
	settings.EnvFile = relativeTo(dir, settings.EnvFile)
	for i, feature := range settings.Features {
		settings.Features[i] = relativeTo(dir, feature)
	}

	if errs := ValidateSettings(&settings); len(errs) > 0 {
		return nil, fmt.Errorf("invalid settings: %w", errs[0])
	}

	return &settings, nil
}

// TimeoutDuration returns the configured HTTP timeout.
func (s *Settings) TimeoutDuration() time.Duration {
	d, err := ParseDurationString(s.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

func relativeTo(dir, p string) string {
	if p == "" || filepath.IsAbs(p) || dir == "." {
		return p
	}
	return filepath.Join(dir, p)
}

// ParseDurationString parses duration strings like "30s", "5m", "1h",
// "1 minute" or a bare number of seconds.
func ParseDurationString(duration string) (time.Duration, error) {
	duration = strings.TrimSpace(duration)
	if duration == "" {
		return 0, fmt.Errorf("duration cannot be empty")
	}

	if d, err := time.ParseDuration(duration); err == nil {
		return d, nil
	}

	// Integer seconds
	var seconds int
	if _, err := fmt.Sscanf(duration, "%d", &seconds); err == nil && fmt.Sprint(seconds) == duration {
		return time.Duration(seconds) * time.Second, nil
	}

	duration = strings.ToLower(duration)
	duration = strings.ReplaceAll(duration, " ", "")

	// Longest words first so "seconds" is not left as "s" + "s"
	replacements := []struct{ word, abbrev string }{
		{"milliseconds", "ms"},
		{"millisecond", "ms"},
		{"seconds", "s"},
		{"second", "s"},
		{"minutes", "m"},
		{"minute", "m"},
		{"hours", "h"},
		{"hour", "h"},
	}

	for _, r := range replacements {
		duration = strings.ReplaceAll(duration, r.word, r.abbrev)
	}

	return time.ParseDuration(duration)
}

// ExpandEnvironment replaces ${VAR} and $VAR references with values from the process environment.
func ExpandEnvironment(input string) string {
	return os.ExpandEnv(input)
}

// GetConfigDir returns the directory containing the config file
func GetConfigDir(configPath string) string {
	return filepath.Dir(configPath)
}
