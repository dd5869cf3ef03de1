package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Socket != DefaultSocketPath {
		t.Errorf("Socket = %q, want %q", cfg.Socket, DefaultSocketPath)
	}
	if cfg.BorderWidth != DefaultBorderWidth {
		t.Errorf("BorderWidth = %d, want %d", cfg.BorderWidth, DefaultBorderWidth)
	}
	if cfg.BspcTimeout() != 2*time.Second {
		t.Errorf("BspcTimeout() = %v, want 2s", cfg.BspcTimeout())
	}
}

func TestLoadFromBytesYAML(t *testing.T) {
	data := []byte(`
socket: /run/user/1000/naaw.sock
border_width: 5
untagged_border_width: 0
`)

	cfg, err := LoadFromBytes(data, "yaml")
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}

	if cfg.Socket != "/run/user/1000/naaw.sock" {
		t.Errorf("Socket = %q", cfg.Socket)
	}
	if cfg.BorderWidth != 5 {
		t.Errorf("BorderWidth = %d, want 5", cfg.BorderWidth)
	}
	if cfg.UntaggedBorderWidth != 0 {
		t.Errorf("UntaggedBorderWidth = %d, want 0", cfg.UntaggedBorderWidth)
	}
	// Unset fields keep defaults
	if cfg.BspcTimeoutMS != DefaultBspcTimeoutMS {
		t.Errorf("BspcTimeoutMS = %d, want default %d", cfg.BspcTimeoutMS, DefaultBspcTimeoutMS)
	}
}

func TestLoadFromBytesJSON(t *testing.T) {
	data := []byte(`{"borderWidth": 7}`)

	cfg, err := LoadFromBytes(data, "json")
	if err != nil {
		t.Fatalf("LoadFromBytes failed: %v", err)
	}
	if cfg.BorderWidth != 7 {
		t.Errorf("BorderWidth = %d, want 7", cfg.BorderWidth)
	}
}

func TestLoadFromBytesInvalid(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
	}{
		{"bad format", "border_width: 3", "toml"},
		{"bad yaml", "border_width: [", "yaml"},
		{"zero width", "border_width: 0", "yaml"},
		{"negative untagged width", "untagged_border_width: -1", "yaml"},
		{"empty socket", `socket: ""`, "yaml"},
		{"zero timeout", "bspc_timeout_ms: 0", "yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFromBytes([]byte(tt.data), tt.format); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("border_width: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BorderWidth != 4 {
		t.Errorf("BorderWidth = %d, want 4", cfg.BorderWidth)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("explicit missing config file should be an error")
	}
}
