package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveConvertOut(t *testing.T) {
	t.Run("explicit output wins", func(t *testing.T) {
		in := filepath.Join(t.TempDir(), "bunny.ply")
		outPath := filepath.Join(t.TempDir(), "nested", "bunny_ascii.ply")

		got, defaulted, err := resolveConvertOut(in, outPath)
		if err != nil {
			t.Fatalf("resolveConvertOut returned error: %v", err)
		}
		if defaulted {
			t.Fatalf("expected explicit output to not be defaulted")
		}
		if got != filepath.Clean(outPath) {
			t.Fatalf("unexpected output path: got %q want %q", got, filepath.Clean(outPath))
		}
		if _, err := os.Stat(filepath.Dir(got)); err != nil {
			t.Fatalf("expected output directory to exist: %v", err)
		}
	})

	t.Run("env output dir strips brotli suffix", func(t *testing.T) {
		envDir := filepath.Join(t.TempDir(), "converted")
		t.Setenv(envPlytoolOutDir, envDir)

		in := filepath.Join(t.TempDir(), "scan.ply.br")
		got, defaulted, err := resolveConvertOut(in, "")
		if err != nil {
			t.Fatalf("resolveConvertOut returned error: %v", err)
		}
		if !defaulted {
			t.Fatalf("expected output to be defaulted")
		}
		want := filepath.Join(envDir, "scan.ply")
		if got != want {
			t.Fatalf("unexpected output path: got %q want %q", got, want)
		}
	})

	t.Run("refuses to overwrite input", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv(envPlytoolOutDir, dir)

		in := filepath.Join(dir, "mesh.ply")
		if _, _, err := resolveConvertOut(in, ""); err == nil {
			t.Fatalf("expected error when default output equals input")
		}
	})

	t.Run("default output dir is ./out", func(t *testing.T) {
		wd, err := os.Getwd()
		if err != nil {
			t.Fatalf("getwd: %v", err)
		}
		tmp := t.TempDir()
		if err := os.Chdir(tmp); err != nil {
			t.Fatalf("chdir: %v", err)
		}
		defer func() {
			_ = os.Chdir(wd)
		}()
		t.Setenv(envPlytoolOutDir, "")

		got, defaulted, err := resolveConvertOut(filepath.Join(tmp, "in", "cube.ply"), "")
		if err != nil {
			t.Fatalf("resolveConvertOut returned error: %v", err)
		}
		if !defaulted {
			t.Fatalf("expected output to be defaulted")
		}
		want := filepath.Join(".", "out", "cube.ply")
		if got != want {
			t.Fatalf("unexpected output path: got %q want %q", got, want)
		}
	})
}

func TestResolveDataDir(t *testing.T) {
	t.Run("flag wins over env and config", func(t *testing.T) {
		t.Setenv(envPlytoolDataDir, "/from/env")
		got, err := resolveDataDir("/from/flag/", Config{DataDir: "/from/config"})
		if err != nil {
			t.Fatalf("resolveDataDir returned error: %v", err)
		}
		if got != filepath.Clean("/from/flag") {
			t.Fatalf("unexpected dir: got %q", got)
		}
	})

	t.Run("env wins over config", func(t *testing.T) {
		t.Setenv(envPlytoolDataDir, "/from/env")
		got, err := resolveDataDir("", Config{DataDir: "/from/config"})
		if err != nil {
			t.Fatalf("resolveDataDir returned error: %v", err)
		}
		if got != "/from/env" {
			t.Fatalf("unexpected dir: got %q", got)
		}
	})

	t.Run("config fallback", func(t *testing.T) {
		t.Setenv(envPlytoolDataDir, "")
		got, err := resolveDataDir("  ", Config{DataDir: "/from/config"})
		if err != nil {
			t.Fatalf("resolveDataDir returned error: %v", err)
		}
		if got != "/from/config" {
			t.Fatalf("unexpected dir: got %q", got)
		}
	})

	t.Run("nothing set", func(t *testing.T) {
		t.Setenv(envPlytoolDataDir, "")
		if _, err := resolveDataDir("", Config{}); err == nil {
			t.Fatalf("expected error without any data dir")
		}
	})
}

func TestFormatSize(t *testing.T) {
	cases := map[int64]string{
		512:             "512 B",
		2048:            "2.0 KB",
		5 * 1024 * 1024: "5.0 MB",
		3 << 30:         "3.0 GB",
	}
	for in, want := range cases {
		if got := formatSize(in); got != want {
			t.Fatalf("formatSize(%d) = %q, want %q", in, got, want)
		}
	}
}
