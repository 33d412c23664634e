// Package config loads sandexec's YAML configuration envelope and
// optionally watches it for changes: optional-pointer fields with
// accessor methods that supply defaults, fsnotify watching only the
// config file's directory, and yaml.v3 for (de)serialization.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

const appName = "sandexec"

// BlobStoreConfig selects and parameterizes the BlobStore backend.
type BlobStoreConfig struct {
	Bucket   string `yaml:"bucket,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Region   string `yaml:"region,omitempty"`
	InMemory *bool  `yaml:"in_memory,omitempty"`
}

// UseInMemory reports whether the in-process MemStore should be used
// instead of S3 (default: false — S3 is the production backend).
func (b *BlobStoreConfig) UseInMemory() bool {
	if b == nil || b.InMemory == nil {
		return false
	}
	return *b.InMemory
}

// Config holds sandexec's configuration envelope: the blob-store
// endpoint, bucket and region, scratch-base directory, and listening
// address, plus the
// metrics and sysmonitor toggles the ambient stack needs.
// New fields can be added over time; unknown YAML fields are silently
// ignored for forward compatibility.
type Config struct {
	ListenAddr    string           `yaml:"listen_addr,omitempty"`
	ScratchBase   string           `yaml:"scratch_base,omitempty"`
	BlobStore     *BlobStoreConfig `yaml:"blob_store,omitempty"`
	LogLevel      string           `yaml:"log_level,omitempty"`
	MetricsAddr   string           `yaml:"metrics_addr,omitempty"`
	SysMonitor    *bool            `yaml:"sysmonitor,omitempty"`
}

// ListenAddrOrDefault returns ListenAddr, defaulting to ":8080".
func (c *Config) ListenAddrOrDefault() string {
	if c == nil || c.ListenAddr == "" {
		return ":8080"
	}
	return c.ListenAddr
}

// ScratchBaseOrDefault returns ScratchBase, defaulting to
// "/var/lib/sandexec/scratch".
func (c *Config) ScratchBaseOrDefault() string {
	if c == nil || c.ScratchBase == "" {
		return "/var/lib/sandexec/scratch"
	}
	return c.ScratchBase
}

// MetricsAddrOrDefault returns MetricsAddr, defaulting to ":9090".
func (c *Config) MetricsAddrOrDefault() string {
	if c == nil || c.MetricsAddr == "" {
		return ":9090"
	}
	return c.MetricsAddr
}

// SysMonitorEnabled reports whether the periodic /proc sampler should
// run (default: true).
func (c *Config) SysMonitorEnabled() bool {
	if c == nil || c.SysMonitor == nil {
		return true
	}
	return *c.SysMonitor
}

// Path returns the platform-appropriate config file path. If
// SANDEXEC_CONFIG is set, that path is used directly.
func Path() (string, error) {
	if p := os.Getenv("SANDEXEC_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("unable to determine config directory: %w", err)
	}
	return filepath.Join(dir, appName, "config.yaml"), nil
}

// Load reads and parses the config file. If the file does not exist, a
// zero-value Config is returned with no error, so every field's
// accessor-level default applies.
func Load() (*Config, error) {
	p, err := Path()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to the YAML file, creating the directory if
// needed.
func Save(cfg *Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Watch monitors the config file for changes and calls onChange with the
// newly loaded Config. It blocks until ctx is cancelled. If the config
// directory does not exist yet, Watch creates it so fsnotify can watch
// it.
func Watch(ctx context.Context, onChange func(*Config)) error {
	p, err := Path()
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching config directory: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(p) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				cfg, err := Load()
				if err != nil {
					slog.Error("failed to reload config", "error", err)
					continue
				}
				onChange(cfg)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config watcher error", "error", err)
		}
	}
}
