package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"entiq/internal/driver"
)

func extractCmd() *cobra.Command {
	var configPath string
	var batchSize int

	cmd := &cobra.Command{
		Use:   "extract <spec-file>",
		Short: "Stream every entity matching a spec as newline-delimited JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := loadSpecFile(args[0])
			if err != nil {
				return err
			}

			ctx := context.Background()
			db, _, err := connect(ctx, configPath)
			if err != nil {
				return err
			}
			defer db.Close()

			opts := driver.ExtractOptions{Trace: os.Stderr}
			if batchSize != 0 {
				opts.BatchSize = &batchSize
			}

			stream, err := driver.NewStream(ctx, db, cs, opts)
			if err != nil {
				return fmt.Errorf("failed to open stream: %w", err)
			}
			defer stream.Close()

			enc := json.NewEncoder(os.Stdout)
			for {
				rec, ok, err := stream.Next(ctx)
				if err != nil {
					return fmt.Errorf("extract failed: %w", err)
				}
				if !ok {
					return nil
				}
				if err := enc.Encode(rec.Data); err != nil {
					return fmt.Errorf("failed to write record: %w", err)
				}
			}
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "entiq.toml", "Path to the TOML config file")
	cmd.Flags().IntVar(&batchSize, "batch", 0, "Override the configured batch size (0 keeps the config default)")
	return cmd
}
