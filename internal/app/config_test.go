package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/edgehound/internal/platform/importerr"
)

func TestSettingsPrecedence(t *testing.T) {
	file, err := decodeSettings(strings.NewReader(`
neo4j:
  uri: bolt://file:7687
  username: file-user
  password: file-pass
  timeout_seconds: 30
domain: corp.local
log_mode: production
`))
	if err != nil {
		t.Fatalf("decodeSettings: %v", err)
	}

	t.Setenv("NEO4J_URI", "bolt://env:7687")
	t.Setenv("NEO4J_USER", "")
	t.Setenv("NEO4J_PASSWORD", "env-pass")
	t.Setenv("NEO4J_DATABASE", "")
	t.Setenv("NEO4J_TIMEOUT_SECONDS", "")
	t.Setenv("NEO4J_MAX_POOL_SIZE", "")
	t.Setenv("AD_DOMAIN", "")
	t.Setenv("LOG_MODE", "")

	flags := Settings{Password: "flag-pass"}
	got := DefaultSettings().Merge(file).Merge(SettingsFromEnv()).Merge(flags)

	want := Settings{
		URI:            "bolt://env:7687",
		User:           "file-user",
		Password:       "flag-pass",
		TimeoutSeconds: 30,
		MaxPoolSize:    1,
		Domain:         "corp.local",
		LogMode:        "production",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}

	cfg := got.Neo4j()
	if cfg.Timeout != 30*time.Second || cfg.User != "file-user" {
		t.Fatalf("Neo4j config: %+v", cfg)
	}
}

func TestDecodeSettingsRejectsUnknownKeys(t *testing.T) {
	_, err := decodeSettings(strings.NewReader("neo4j:\n  url: bolt://x\n"))
	if !importerr.Is(err, importerr.KindConfig) {
		t.Fatalf("want config error, got=%v", err)
	}
}

func TestLoadSettingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edgehound.yaml")
	if err := os.WriteFile(path, []byte("neo4j:\n  database: bloodhound\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := LoadSettingsFile(path)
	if err != nil {
		t.Fatalf("LoadSettingsFile: %v", err)
	}
	if s.Database != "bloodhound" {
		t.Fatalf("Database: want=%q got=%q", "bloodhound", s.Database)
	}
	if _, err := LoadSettingsFile(filepath.Join(t.TempDir(), "missing.yaml")); !importerr.Is(err, importerr.KindConfig) {
		t.Fatalf("missing file: want config error, got=%v", err)
	}

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if s, err := LoadSettingsFile(empty); err != nil || s != (Settings{}) {
		t.Fatalf("empty file: settings=%+v err=%v", s, err)
	}
}
