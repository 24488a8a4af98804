package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sample = `
environment: test
download:
  default_source: TCBS
  output_dir: /tmp/exports
  show_log: true
retry:
  max_attempts: 4
  backoff_min: 500ms
sources:
  VCI:
    base_url: https://quotes.example.com/vci
  TCBS:
    base_url: https://quotes.example.com/tcbs
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Download.DefaultSource != "TCBS" {
		t.Fatalf("unexpected source %q", c.Download.DefaultSource)
	}
	if c.Retry.MaxAttempts != 4 || c.Retry.BackoffMin != 500*time.Millisecond {
		t.Fatalf("retry overrides not applied: %+v", c.Retry)
	}
	if c.Retry.BackoffMax != 10*time.Second {
		t.Fatalf("backoff_max default missing: %v", c.Retry.BackoffMax)
	}
	if c.Logger.Level != "info" {
		t.Fatalf("logger default missing: %q", c.Logger.Level)
	}
}

func TestLoadRejectsMissingSources(t *testing.T) {
	if _, err := Load(writeConfig(t, "environment: test\n")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadRejectsUnknownDefaultSource(t *testing.T) {
	body := `
environment: test
download:
  default_source: MSN
sources:
  VCI:
    base_url: https://quotes.example.com/vci
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("VNQUOTE_SOURCE", "vci")
	t.Setenv("VNQUOTE_OUTPUT_DIR", "/data/out")
	c, err := LoadWithEnv(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Download.DefaultSource != "VCI" || c.Download.OutputDir != "/data/out" {
		t.Fatalf("env overrides not applied: %+v", c.Download)
	}
}

func TestSourceURLs(t *testing.T) {
	c, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	urls := c.SourceURLs()
	if urls["VCI"] != "https://quotes.example.com/vci" || len(urls) != 2 {
		t.Fatalf("unexpected urls: %v", urls)
	}
}
