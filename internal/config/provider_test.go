// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
)

func TestProviderLoadDefaults(t *testing.T) {
	p := NewProvider()

	cfg, err := p.Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}
	if cfg.Registry.IndexFile != "index.js" {
		t.Errorf("IndexFile = %q, want default", cfg.Registry.IndexFile)
	}
}

func TestProviderLoadFromFile(t *testing.T) {
	cfgDir := t.TempDir()
	writeConfigFile(t, cfgDir, `log: level: "error"`+"\n")

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: cfgDir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != LogError {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, LogError)
	}
}

func TestProviderLoadMissingExplicitFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.cue")

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: missing})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestProviderLoadCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()})
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestProviderConcurrentLoads(t *testing.T) {
	cfgDir := t.TempDir()
	writeConfigFile(t, cfgDir, `host: "native"`+"\n")

	p := NewProvider()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg, err := p.Load(context.Background(), LoadOptions{ConfigDirPath: cfgDir})
			if err != nil {
				t.Errorf("Load() error = %v", err)
				return
			}
			if cfg.Host != HostNative {
				t.Errorf("Host = %q, want %q", cfg.Host, HostNative)
			}
		}()
	}
	wg.Wait()
}
