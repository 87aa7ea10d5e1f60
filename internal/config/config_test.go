package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("expected no config path, got %q", cfg.Path)
	}
	if cfg.History.AmendWindow != 30*time.Second {
		t.Errorf("expected 30s amend window, got %s", cfg.History.AmendWindow)
	}
	if cfg.Editing.DefaultStyle != "Default" {
		t.Errorf("expected Default style, got %q", cfg.Editing.DefaultStyle)
	}
	if cfg.Translate.Provider != "gemini" || cfg.Translate.Concurrency != 3 || cfg.Translate.BatchSize != 50 {
		t.Errorf("unexpected translate defaults %+v", cfg.Translate)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "history:\n  amend_window: 5s\nediting:\n  soft_linebreaks: true\ntranslate:\n  provider: openai\n  batch_size: 10\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("expected path %q, got %q", path, cfg.Path)
	}
	if cfg.History.AmendWindow != 5*time.Second {
		t.Errorf("expected 5s, got %s", cfg.History.AmendWindow)
	}
	if !cfg.Editing.SoftLinebreaks {
		t.Error("expected soft linebreaks to be enabled")
	}
	if cfg.Translate.Provider != "openai" || cfg.Translate.BatchSize != 10 {
		t.Errorf("unexpected translate settings %+v", cfg.Translate)
	}
	if cfg.Translate.Concurrency != 3 {
		t.Errorf("expected unset keys to keep defaults, got concurrency %d", cfg.Translate.Concurrency)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SUBEDIT_TRANSLATE_PROVIDER", "anthropic")
	t.Setenv("SUBEDIT_TRANSLATE_CONCURRENCY", "8")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Translate.Provider != "anthropic" {
		t.Errorf("expected anthropic, got %q", cfg.Translate.Provider)
	}
	if cfg.Translate.Concurrency != 8 {
		t.Errorf("expected concurrency 8, got %d", cfg.Translate.Concurrency)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "history: [\n"},
		{"zero concurrency", "translate:\n  concurrency: 0\n"},
		{"negative window", "history:\n  amend_window: -1s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	written, err := WriteDefault(path)
	if err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}
	if written != path {
		t.Errorf("expected %q, got %q", path, written)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load of written defaults failed: %v", err)
	}
	if cfg.History.AmendWindow != 30*time.Second || cfg.Translate.BatchSize != 50 {
		t.Errorf("expected written defaults to load back, got %+v", cfg)
	}

	if _, err := WriteDefault(path); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
}
