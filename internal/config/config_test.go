package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPath(t *testing.T) {
	p, err := Path()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(p) != "config.yaml" {
		t.Fatalf("expected config.yaml, got %s", filepath.Base(p))
	}
	if filepath.Base(filepath.Dir(p)) != appName {
		t.Fatalf("expected parent dir %s, got %s", appName, filepath.Base(filepath.Dir(p)))
	}
}

func TestLoadMissingFileReturnsZeroValue(t *testing.T) {
	tmp := t.TempDir()
	configPath := filepath.Join(tmp, "config.yaml")
	t.Setenv("SANDEXEC_CONFIG", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddrOrDefault() != ":8080" {
		t.Fatalf("expected default listen addr, got %s", cfg.ListenAddrOrDefault())
	}
}

func TestLoadSave(t *testing.T) {
	tmp := t.TempDir()
	configPath := filepath.Join(tmp, "config.yaml")
	t.Setenv("SANDEXEC_CONFIG", configPath)

	cfg := &Config{ListenAddr: ":9000", ScratchBase: "/tmp/box"}
	if err := Save(cfg); err != nil {
		t.Fatalf("save error: %v", err)
	}

	cfg2, err := Load()
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg2.ListenAddr != ":9000" || cfg2.ScratchBase != "/tmp/box" {
		t.Fatalf("unexpected reloaded config: %+v", cfg2)
	}
}

func TestLoadUnknownFields(t *testing.T) {
	tmp := t.TempDir()
	configPath := filepath.Join(tmp, "config.yaml")
	t.Setenv("SANDEXEC_CONFIG", configPath)

	data := []byte("listen_addr: \":7000\"\nfuture_field: value\n")
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddr != ":7000" {
		t.Fatalf("expected :7000, got %s", cfg.ListenAddr)
	}
}

func TestBlobStoreConfigUseInMemory(t *testing.T) {
	boolPtr := func(b bool) *bool { return &b }

	tests := []struct {
		name string
		cfg  *BlobStoreConfig
		want bool
	}{
		{"nil config", nil, false},
		{"nil field", &BlobStoreConfig{}, false},
		{"true", &BlobStoreConfig{InMemory: boolPtr(true)}, true},
		{"false", &BlobStoreConfig{InMemory: boolPtr(false)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.UseInMemory(); got != tt.want {
				t.Errorf("UseInMemory() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSysMonitorEnabledDefaultsTrue(t *testing.T) {
	var cfg *Config
	if !cfg.SysMonitorEnabled() {
		t.Fatal("expected nil config to default sysmonitor enabled to true")
	}
}

func TestWatch(t *testing.T) {
	tmp := t.TempDir()
	configPath := filepath.Join(tmp, "config.yaml")
	t.Setenv("SANDEXEC_CONFIG", configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan *Config, 1)
	go func() {
		_ = Watch(ctx, func(cfg *Config) {
			changed <- cfg
		})
	}()

	time.Sleep(100 * time.Millisecond)

	cfg := &Config{ListenAddr: ":6000"}
	if err := Save(cfg); err != nil {
		t.Fatalf("save error: %v", err)
	}

	select {
	case got := <-changed:
		if got.ListenAddr != ":6000" {
			t.Fatalf("expected :6000, got %s", got.ListenAddr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config change notification")
	}
}
