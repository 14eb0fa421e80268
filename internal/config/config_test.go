package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matheuskafuri/folio/internal/classify"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loadDefaults: %v", err)
	}
	if len(cfg.Sources) == 0 {
		t.Error("expected at least one default source")
	}
	if len(cfg.Pinned) != 3 || cfg.Pinned[0] != "nestfi" {
		t.Errorf("unexpected default pinned keys: %v", cfg.Pinned)
	}
	if err := validate(cfg); err != nil {
		t.Errorf("embedded defaults should validate: %v", err)
	}
}

func TestImportDuration(t *testing.T) {
	cfg := &Config{ImportInterval: "30m"}
	if d := cfg.ImportDuration(); d.Minutes() != 30 {
		t.Errorf("expected 30m, got %v", d)
	}

	cfg.ImportInterval = "invalid"
	if d := cfg.ImportDuration(); d.Hours() != 1 {
		t.Errorf("expected 1h default for invalid interval, got %v", d)
	}
}

func TestRetentionDuration(t *testing.T) {
	tests := []struct {
		input    string
		wantDays int
	}{
		{"90d", 90},
		{"30d", 30},
		{"720h", 30},
		{"", 90},
		{"invalid", 90},
	}
	for _, tt := range tests {
		cfg := &Config{Retention: tt.input}
		got := cfg.RetentionDuration()
		if got.Hours() != float64(tt.wantDays*24) {
			t.Errorf("RetentionDuration(%q) = %v, want %dd", tt.input, got, tt.wantDays)
		}
	}
}

func TestEnabledSourcesAndWatchPaths(t *testing.T) {
	cfg := &Config{
		Sources: []Source{
			{Name: "A", Type: "json", Path: "/a.json", Enabled: true},
			{Name: "B", Type: "json", Path: "/b.json", Enabled: false},
			{Name: "C", Type: "rss", URL: "https://c.dev/rss", Enabled: true},
		},
	}
	enabled := cfg.EnabledSources()
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled sources, got %d", len(enabled))
	}
	paths := cfg.WatchPaths()
	if len(paths) != 1 || paths[0] != "/a.json" {
		t.Errorf("unexpected watch paths: %v", paths)
	}
}

func TestGetQuota(t *testing.T) {
	cfg := &Config{}
	if q := cfg.GetQuota(); q.Frontend != 1 || q.Fullstack != 3 {
		t.Errorf("expected default 1+3, got %+v", q)
	}
	cfg.Highlights = &classify.Quota{Frontend: 2, Fullstack: 4}
	if q := cfg.GetQuota(); q.Total() != 6 {
		t.Errorf("expected total 6, got %d", q.Total())
	}
}

func TestGetFeaturedCount(t *testing.T) {
	if got := (&Config{}).GetFeaturedCount(); got != 4 {
		t.Errorf("expected default 4, got %d", got)
	}
	if got := (&Config{FeaturedCount: 6}).GetFeaturedCount(); got != 6 {
		t.Errorf("expected 6, got %d", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := `site_url: https://me.dev
sources:
  - name: Work
    type: json
    kind: case-study
    path: data/work.json
    enabled: true
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SiteURL != "https://me.dev" {
		t.Errorf("expected site url, got %s", cfg.SiteURL)
	}
	if want := filepath.Join(dir, "data", "work.json"); cfg.Sources[0].Path != want {
		t.Errorf("expected relative path resolved to %s, got %s", want, cfg.Sources[0].Path)
	}
	if len(cfg.Pinned) != 3 {
		t.Errorf("expected default pinned keys when unset, got %v", cfg.Pinned)
	}
}

func TestLoadNonexistentFallsBackToDefaults(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Sources) == 0 {
		t.Error("expected default sources when config doesn't exist")
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Errorf("expected defaults written on first run: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		src     Source
		wantErr bool
	}{
		{"missing name", Source{Type: "json", Kind: "project", Path: "x.json"}, true},
		{"bad type", Source{Name: "T", Type: "csv", Kind: "project", Path: "x.csv"}, true},
		{"bad kind", Source{Name: "T", Type: "json", Kind: "video", Path: "x.json"}, true},
		{"file without path", Source{Name: "T", Type: "yaml", Kind: "project"}, true},
		{"feed without url", Source{Name: "T", Type: "rss", Kind: "article"}, true},
		{"feed with file scheme", Source{Name: "T", Type: "rss", Kind: "article", URL: "file:///etc/passwd"}, true},
		{"valid file", Source{Name: "T", Type: "json", Kind: "case-study", Path: "x.json"}, false},
		{"valid feed", Source{Name: "T", Type: "atom", Kind: "article", URL: "https://me.dev/atom.xml"}, false},
	}
	for _, tt := range tests {
		err := validate(&Config{Sources: []Source{tt.src}})
		if tt.wantErr && err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
	}
}

func TestValidateNegativeQuota(t *testing.T) {
	if err := validate(&Config{Highlights: &classify.Quota{Frontend: -1, Fullstack: 3}}); err == nil {
		t.Error("expected error for negative quota")
	}
}

func TestParseDays(t *testing.T) {
	d, err := ParseDays("7d")
	if err != nil || d.Hours() != 168 {
		t.Errorf("ParseDays(7d) = %v, %v", d, err)
	}
	if _, err := ParseDays("d"); err == nil {
		t.Error("expected error for bare d")
	}
}
