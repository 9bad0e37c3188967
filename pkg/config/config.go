// Package config loads ansible-write settings. Values are layered: built-in
// defaults, the YAML config file, ANSIBLE_WRITE_* environment variables and
// finally command-line flags, which the caller applies on top.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "ANSIBLE_WRITE_"

// Config is the merged configuration.
type Config struct {
	// Target is the initial host selector of a new session.
	Target           string            `yaml:"target"`
	Inventory        string            `yaml:"inventory"`
	AnsibleBinary    string            `yaml:"ansible_binary"`
	AnsibleDocBinary string            `yaml:"ansible_doc_binary"`
	ModulesFile      string            `yaml:"modules_file"`
	DryRun           bool              `yaml:"dry_run"`
	FailWhen         string            `yaml:"fail_when"`
	LogFile          string            `yaml:"log_file"`
	LogLevel         string            `yaml:"log_level"`
	LogFormat        string            `yaml:"log_format"`
	Environment      map[string]string `yaml:"environment"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Target:           "localhost",
		AnsibleBinary:    "ansible",
		AnsibleDocBinary: "ansible-doc",
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/ansible-write/config.yaml, falling
// back to the platform user config directory.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		d, err := os.UserConfigDir()
		if err != nil {
			return ""
		}
		dir = d
	}
	return filepath.Join(dir, "ansible-write", "config.yaml")
}

// Load reads the config file at path over the defaults and applies
// environment overrides. A missing file is an error only when required
// is set, i.e. when the operator named it explicitly.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		switch {
		case err == nil:
			defer f.Close()
			if err := cfg.decode(f); err != nil {
				return nil, fmt.Errorf("config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !required:
		default:
			return nil, fmt.Errorf("open config: %w", err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays YAML from r. Unknown keys are rejected.
func (c *Config) decode(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}
	return nil
}

// ApplyEnv applies ANSIBLE_WRITE_* overrides found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"TARGET":             &c.Target,
		"INVENTORY":          &c.Inventory,
		"ANSIBLE_BINARY":     &c.AnsibleBinary,
		"ANSIBLE_DOC_BINARY": &c.AnsibleDocBinary,
		"MODULES_FILE":       &c.ModulesFile,
		"FAIL_WHEN":          &c.FailWhen,
		"LOG_FILE":           &c.LogFile,
		"LOG_LEVEL":          &c.LogLevel,
		"LOG_FORMAT":         &c.LogFormat,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	if v, ok := lookup(EnvPrefix + "DRY_RUN"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sDRY_RUN: %w", EnvPrefix, err)
		}
		c.DryRun = b
	}
	return nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q (want text or json)", c.LogFormat)
	}
	if c.AnsibleBinary == "" || c.AnsibleDocBinary == "" {
		return errors.New("ansible_binary and ansible_doc_binary must not be empty")
	}
	return nil
}

// LoadDotEnv loads dir/.env into the process environment without
// overriding variables that are already set. A missing file is not an
// error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	m, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for k, v := range m {
		if _, set := os.LookupEnv(k); !set {
			if err := os.Setenv(k, v); err != nil {
				return err
			}
		}
	}
	return nil
}
