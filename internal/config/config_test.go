package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadParsesYAML(t *testing.T) {
	content := `
xp_root_path: /home/user/X-Plane 12
db_path: /home/user/navdata.sqlite
force_full_parse: false
logging_enabled: true
linear_feature_filter: [1, 5, 7]
`
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.XPRootPath != "/home/user/X-Plane 12" {
		t.Fatalf("XPRootPath = %q", cfg.XPRootPath)
	}
	if !cfg.LoggingEnabled {
		t.Fatalf("LoggingEnabled = false, want true")
	}
	if len(cfg.LinearFeatureFilter) != 3 {
		t.Fatalf("LinearFeatureFilter = %v, want 3 entries", cfg.LinearFeatureFilter)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
