// Package backup keeps a copy of a workbook file before it is overwritten.
//
// Two drivers are available: "fs" writes copies into a local directory and
// "s3" uploads them to an S3-compatible bucket (AWS S3 or MinIO).
package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Driver names.
const (
	DriverFS = "fs"
	DriverS3 = "s3"
)

// Store receives backup copies.
type Store interface {
	// Put stores data under key and returns where it was written.
	Put(ctx context.Context, key string, data []byte) (string, error)
	Driver() string
}

// S3Config selects the bucket used by the s3 driver.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// Config selects and configures a driver.
type Config struct {
	Driver string   `yaml:"driver"`
	Dir    string   `yaml:"dir"`
	S3     S3Config `yaml:"s3"`
}

// Open returns the store named by cfg.Driver. An empty driver means fs. The
// fs driver writes into cfg.Dir, or fallbackDir when that is empty.
func Open(ctx context.Context, cfg Config, fallbackDir string) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverFS:
		dir := cfg.Dir
		if dir == "" {
			dir = fallbackDir
		}
		return NewFS(dir)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown backup driver %q", cfg.Driver)
	}
}

// Key names the backup of path taken at t: the file's base name with a UTC
// timestamp before its extension, e.g. "sales-20240102T150405Z.twbx".
func Key(path string, t time.Time) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return stem + "-" + t.UTC().Format("20060102T150405Z") + ext
}
