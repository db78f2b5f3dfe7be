// Package config loads twbedit settings from a YAML file with environment
// overrides.
//
// Lookup order for the file: the explicit path, $TWBEDIT_CONFIG, then
// ./twbedit.yaml. Only an explicitly named file must exist. Environment
// variables win over the file:
//
//	TWBEDIT_LOG_LEVEL=debug|info|warn|error
//	TWBEDIT_BACKUP_DRIVER=fs|s3
//	TWBEDIT_BACKUP_DIR=<dir>
//	TWBEDIT_BACKUP_S3_BUCKET=<bucket>
//	TWBEDIT_BACKUP_S3_REGION=<region>
//	TWBEDIT_BACKUP_S3_ENDPOINT=<url>
//	TWBEDIT_BACKUP_S3_PATH_STYLE=true|false
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/javajack/twbedit/backup"
)

// EnvFile names the variable holding the config file path.
const EnvFile = "TWBEDIT_CONFIG"

// DefaultFile is read from the working directory when present.
const DefaultFile = "twbedit.yaml"

// Config is the CLI configuration.
type Config struct {
	LogLevel      string        `yaml:"log_level"`
	PackageAssets bool          `yaml:"package_assets"`
	Backup        backup.Config `yaml:"backup"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel: "info",
		Backup:   backup.Config{Driver: backup.DriverFS},
	}
}

// Load reads the config file, if any, and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvFile)
		explicit = path != ""
	}
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) error {
	for _, v := range []struct {
		name string
		dst  *string
	}{
		{"TWBEDIT_LOG_LEVEL", &cfg.LogLevel},
		{"TWBEDIT_BACKUP_DRIVER", &cfg.Backup.Driver},
		{"TWBEDIT_BACKUP_DIR", &cfg.Backup.Dir},
		{"TWBEDIT_BACKUP_S3_BUCKET", &cfg.Backup.S3.Bucket},
		{"TWBEDIT_BACKUP_S3_REGION", &cfg.Backup.S3.Region},
		{"TWBEDIT_BACKUP_S3_ENDPOINT", &cfg.Backup.S3.Endpoint},
	} {
		if s, ok := os.LookupEnv(v.name); ok {
			*v.dst = s
		}
	}
	if s, ok := os.LookupEnv("TWBEDIT_BACKUP_S3_PATH_STYLE"); ok {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("TWBEDIT_BACKUP_S3_PATH_STYLE: %w", err)
		}
		cfg.Backup.S3.PathStyle = b
	}
	return nil
}

// SlogLevel parses LogLevel. An empty level means info.
func (c Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
