package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `data_dir: /data/scans
format: ascii
list_capacity: 8
log_level: debug
server_address: 0.0.0.0:9000
max_upload_bytes: 1048576
uploads_per_second: 0.5
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.DataDir != "/data/scans" || cfg.Format != "ascii" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.ListCapacity == nil || *cfg.ListCapacity != 8 {
		t.Fatalf("unexpected list capacity: %v", cfg.ListCapacity)
	}
	if cfg.ServerAddress != "0.0.0.0:9000" {
		t.Fatalf("unexpected server address: %q", cfg.ServerAddress)
	}
	if cfg.MaxUploadBytes == nil || *cfg.MaxUploadBytes != 1<<20 {
		t.Fatalf("unexpected max upload bytes: %v", cfg.MaxUploadBytes)
	}
	if cfg.UploadsPerSecond == nil || *cfg.UploadsPerSecond != 0.5 {
		t.Fatalf("unexpected upload rate: %v", cfg.UploadsPerSecond)
	}
}

func TestLoadConfigTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `data_dir = "/data/meshes"
format = "binary_big_endian"
list_capacity = 3
log_format = "json"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.DataDir != "/data/meshes" || cfg.Format != "binary_big_endian" || cfg.LogFormat != "json" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.ListCapacity == nil || *cfg.ListCapacity != 3 {
		t.Fatalf("unexpected list capacity: %v", cfg.ListCapacity)
	}
	if cfg.MaxUploadBytes != nil {
		t.Fatalf("expected unset max upload bytes, got %v", *cfg.MaxUploadBytes)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	writeFile(t, path, "list_capacity: [not, a, number]\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for malformed config")
	}
}
