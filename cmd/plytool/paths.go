package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	envPlytoolConfig  = "PLYTOOL_CONFIG"
	envPlytoolDataDir = "PLYTOOL_DATA_DIR"
	envPlytoolOutDir  = "PLYTOOL_OUT_DIR"
)

// resolveDataDir picks the directory to scan: flag, then env, then config.
func resolveDataDir(flag string, cfg Config) (string, error) {
	for _, dir := range []string{flag, os.Getenv(envPlytoolDataDir), cfg.DataDir} {
		if dir = strings.TrimSpace(dir); dir != "" {
			return filepath.Clean(dir), nil
		}
	}
	return "", fmt.Errorf("--path is required unless %s or data_dir is set", envPlytoolDataDir)
}

// resolveConvertOut returns the output path for converting in. Without an
// explicit path the input's base name is reused under PLYTOOL_OUT_DIR (or
// ./out), dropping any .br suffix. The bool reports a defaulted path.
func resolveConvertOut(in, outFlag string) (string, bool, error) {
	outFlag = strings.TrimSpace(outFlag)
	if outFlag != "" {
		outPath := filepath.Clean(outFlag)
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return "", false, err
		}
		return outPath, false, nil
	}

	base := filepath.Base(filepath.Clean(in))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", true, fmt.Errorf("invalid input path: %q", in)
	}
	if strings.HasSuffix(strings.ToLower(base), ".br") {
		base = base[:len(base)-len(".br")]
	}

	outDir := strings.TrimSpace(os.Getenv(envPlytoolOutDir))
	if outDir == "" {
		outDir = filepath.Join(".", "out")
	}
	outPath := filepath.Join(outDir, base)
	if filepath.Clean(outPath) == filepath.Clean(in) {
		return "", true, fmt.Errorf("refusing to overwrite input %s; set --out", in)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", true, err
	}
	return outPath, true, nil
}

func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
