package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/matheuskafuri/folio/internal/classify"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// Source describes one content catalog: a local JSON/YAML file or a feed.
type Source struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"` // json, yaml, rss or atom
	Kind    string `yaml:"kind"` // case-study, project or article
	Path    string `yaml:"path,omitempty"`
	URL     string `yaml:"url,omitempty"`
	Enabled bool   `yaml:"enabled"`
}

// IsFile reports whether the source is read from disk.
func (s Source) IsFile() bool {
	return s.Type == "json" || s.Type == "yaml"
}

type Config struct {
	SiteURL        string          `yaml:"site_url"`
	ImportInterval string          `yaml:"import_interval"`
	Retention      string          `yaml:"retention"`
	FeaturedCount  int             `yaml:"featured_count,omitempty"`
	Pinned         []string        `yaml:"pinned"`
	Highlights     *classify.Quota `yaml:"highlights,omitempty"`
	LogLevel       string          `yaml:"log_level,omitempty"`
	LogFormat      string          `yaml:"log_format,omitempty"`
	Sources        []Source        `yaml:"sources"`
}

func (c *Config) ImportDuration() time.Duration {
	d, err := time.ParseDuration(c.ImportInterval)
	if err != nil {
		return time.Hour
	}
	return d
}

// RetentionDuration is how long selection history is kept. Accepts "Nd".
func (c *Config) RetentionDuration() time.Duration {
	if c.Retention == "" {
		return 90 * 24 * time.Hour
	}
	d, err := ParseDays(c.Retention)
	if err != nil {
		return 90 * 24 * time.Hour
	}
	return d
}

// ParseDays is time.ParseDuration plus a "Nd" day suffix.
func ParseDays(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func (c *Config) EnabledSources() []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// WatchPaths returns the local files of enabled file sources.
func (c *Config) WatchPaths() []string {
	var paths []string
	for _, s := range c.EnabledSources() {
		if s.IsFile() {
			paths = append(paths, s.Path)
		}
	}
	return paths
}

// GetFeaturedCount returns the daily featured size, defaulting to 4.
func (c *Config) GetFeaturedCount() int {
	if c.FeaturedCount <= 0 {
		return 4
	}
	return c.FeaturedCount
}

// GetQuota returns the highlights split, defaulting to 1 frontend + 3 fullstack.
func (c *Config) GetQuota() classify.Quota {
	if c.Highlights == nil || c.Highlights.Total() <= 0 {
		return classify.DefaultQuota
	}
	return *c.Highlights
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "folio", "config.yaml")
}

func StorePath() string {
	return filepath.Join(xdg.CacheHome, "folio", "folio.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: embedded defaults still apply
			_ = writeDefaults(path)
			resolvePaths(defaults, filepath.Dir(path))
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Pinned == nil {
		cfg.Pinned = defaults.Pinned
	}
	resolvePaths(&cfg, filepath.Dir(path))

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolvePaths makes relative source paths relative to the config file.
func resolvePaths(cfg *Config, dir string) {
	for i, s := range cfg.Sources {
		if s.Path != "" && !filepath.IsAbs(s.Path) {
			cfg.Sources[i].Path = filepath.Join(dir, s.Path)
		}
	}
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	validTypes := map[string]bool{"json": true, "yaml": true, "rss": true, "atom": true}
	validKinds := map[string]bool{"case-study": true, "project": true, "article": true}
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if !validTypes[s.Type] {
			return fmt.Errorf("source %q: unknown type %q (valid: json, yaml, rss, atom)", s.Name, s.Type)
		}
		if !validKinds[s.Kind] {
			return fmt.Errorf("source %q: unknown kind %q (valid: case-study, project, article)", s.Name, s.Kind)
		}
		if s.IsFile() {
			if s.Path == "" {
				return fmt.Errorf("source %q: path is required", s.Name)
			}
			continue
		}
		if s.URL == "" {
			return fmt.Errorf("source %q: url is required", s.Name)
		}
		u, err := url.Parse(s.URL)
		if err != nil {
			return fmt.Errorf("source %q: invalid url: %w", s.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("source %q: url scheme must be http or https, got %q", s.Name, u.Scheme)
		}
	}
	if cfg.Highlights != nil && (cfg.Highlights.Frontend < 0 || cfg.Highlights.Fullstack < 0) {
		return fmt.Errorf("highlights: quotas must not be negative")
	}
	return nil
}
