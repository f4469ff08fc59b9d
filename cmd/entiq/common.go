package main

import (
	"context"
	"fmt"
	"os"

	"entiq"
	"entiq/internal/driver"
)

func loadSpecFile(path string) (*entiq.CompiledSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file: %w", err)
	}
	cs, err := entiq.Compile(string(data))
	if err != nil {
		return nil, fmt.Errorf("compile error: %w", err)
	}
	return cs, nil
}

func connect(ctx context.Context, configPath string) (*driver.DB, *driver.Config, error) {
	cfg, err := driver.LoadConfigFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := driver.OpenWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect: %w", err)
	}
	return db, cfg, nil
}
