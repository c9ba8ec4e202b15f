package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config is the plytool configuration file. Pointer fields distinguish
// "not set" from zero values.
type Config struct {
	DataDir      string `yaml:"data_dir" toml:"data_dir"`
	Format       string `yaml:"format" toml:"format"`
	ListCapacity *int   `yaml:"list_capacity" toml:"list_capacity"`

	LogLevel  string `yaml:"log_level" toml:"log_level"`
	LogFormat string `yaml:"log_format" toml:"log_format"`

	ServerAddress    string   `yaml:"server_address" toml:"server_address"`
	MaxUploadBytes   *int64   `yaml:"max_upload_bytes" toml:"max_upload_bytes"`
	UploadsPerSecond *float64 `yaml:"uploads_per_second" toml:"uploads_per_second"`
}

// configCandidates lists the default config locations in lookup order.
func configCandidates() []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	base := filepath.Join(dir, "plytool")
	return []string{filepath.Join(base, "config.yaml"), filepath.Join(base, "config.toml")}
}

// LoadConfig reads path, or the first default location that exists when
// path is empty. A missing default file yields a zero Config; a missing
// explicit file is an error.
func LoadConfig(path string) (Config, error) {
	if path != "" {
		return readConfig(path)
	}
	for _, p := range configCandidates() {
		cfg, err := readConfig(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return cfg, err
	}
	return Config{}, nil
}

func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyCodecConfig fills list capacity and output format defaults.
func applyCodecConfig(c *cli.Command, cfg Config, format *string) {
	if cfg.ListCapacity != nil && !c.IsSet("list-capacity") {
		listCapacity = *cfg.ListCapacity
	}
	if format != nil && cfg.Format != "" && !c.IsSet("format") {
		*format = cfg.Format
	}
}

func applyServeConfig(c *cli.Command, cfg Config, addr *string, maxUpload *int64, rate *float64) {
	applyCodecConfig(c, cfg, nil)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.MaxUploadBytes != nil && !c.IsSet("max-upload-bytes") {
		*maxUpload = *cfg.MaxUploadBytes
	}
	if cfg.UploadsPerSecond != nil && !c.IsSet("uploads-per-second") {
		*rate = *cfg.UploadsPerSecond
	}
}
