package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
target: web
inventory: hosts.ini
dry_run: true
fail_when: "rc != 0"
log_level: debug
environment:
  HTTP_PROXY: http://proxy:3128
`)
	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	want.Target = "web"
	want.Inventory = "hosts.ini"
	want.DryRun = true
	want.FailWhen = "rc != 0"
	want.LogLevel = "debug"
	want.Environment = map[string]string{"HTTP_PROXY": "http://proxy:3128"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "targets: web\n")
	_, err := Load(path, true)
	if err == nil || !strings.Contains(err.Error(), "targets") {
		t.Fatalf("err = %v, want unknown field error", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("optional missing file: %v", err)
	}
	if cfg.Target != "localhost" || cfg.AnsibleBinary != "ansible" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if _, err := Load(path, true); err == nil {
		t.Error("required missing file accepted")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "\n")
	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"ANSIBLE_WRITE_TARGET":   "db",
		"ANSIBLE_WRITE_DRY_RUN":  "1",
		"ANSIBLE_WRITE_LOG_FILE": "/tmp/aw.log",
		"TARGET":                 "ignored",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := Default()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Target != "db" || !cfg.DryRun || cfg.LogFile != "/tmp/aw.log" {
		t.Errorf("overrides not applied: %+v", cfg)
	}

	env["ANSIBLE_WRITE_DRY_RUN"] = "maybe"
	if err := Default().ApplyEnv(lookup); err == nil {
		t.Error("invalid bool accepted")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"json", func(c *Config) { c.LogFormat = "json" }, true},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, false},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, false},
		{"no binary", func(c *Config) { c.AnsibleBinary = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			if err := c.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%t", err, tt.ok)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "AW_TEST_NEW=fromfile\nAW_TEST_SET=fromfile\n")
	t.Setenv("AW_TEST_SET", "original")
	t.Setenv("AW_TEST_NEW", "")
	os.Unsetenv("AW_TEST_NEW")

	if err := LoadDotEnv(dir); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("AW_TEST_NEW"); got != "fromfile" {
		t.Errorf("AW_TEST_NEW = %q, want fromfile", got)
	}
	if got := os.Getenv("AW_TEST_SET"); got != "original" {
		t.Errorf("AW_TEST_SET = %q, existing value overridden", got)
	}
}

func TestLoadDotEnvMissing(t *testing.T) {
	if err := LoadDotEnv(t.TempDir()); err != nil {
		t.Errorf("missing .env: %v", err)
	}
}
