package driver

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

const defaultBatchSize = 10000

// configFile is the top-level TOML document entiq reads its runtime
// settings from, mirroring the teacher's decode-then-convert schema
// parser: an unexported wire struct converted into the exported Config
// the rest of the package consumes.
type configFile struct {
	Database tomlDatabase `toml:"database"`
	Extract  tomlExtract  `toml:"extract"`
}

type tomlDatabase struct {
	DSN string `toml:"dsn"`
}

type tomlExtract struct {
	BatchSize *int `toml:"batch_size"`
}

// Config holds the settings LoadConfig produces. BatchSize of 0 means
// "batching disabled" (the TOML `:batch false` escape hatch, expressed
// as batch_size = -1 or any non-positive value on disk); an absent
// batch_size key in the file selects defaultBatchSize.
type Config struct {
	DSN       string
	BatchSize int
}

// LoadConfig reads and decodes a TOML config document.
func LoadConfig(r io.Reader) (*Config, error) {
	var cf configFile
	if _, err := toml.NewDecoder(r).Decode(&cf); err != nil {
		return nil, fmt.Errorf("driver: decode config: %w", err)
	}
	if cf.Database.DSN == "" {
		return nil, fmt.Errorf("driver: config missing [database].dsn")
	}

	cfg := &Config{DSN: cf.Database.DSN, BatchSize: defaultBatchSize}
	if cf.Extract.BatchSize != nil {
		if *cf.Extract.BatchSize <= 0 {
			cfg.BatchSize = 0
		} else {
			cfg.BatchSize = *cf.Extract.BatchSize
		}
	}
	return cfg, nil
}

// LoadConfigFile opens path and decodes it as a TOML config document.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("driver: open config %q: %w", path, err)
	}
	defer f.Close()
	return LoadConfig(f)
}
