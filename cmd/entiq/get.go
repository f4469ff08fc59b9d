package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"entiq"
)

func getCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "get <spec-file> <id>",
		Short: "Fetch a single entity by its root-table id",
		Args:  cobra.ExactArgs(2),
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

			rec, err := entiq.Entity(ctx, db, cs, args[1])
			if err != nil {
				return fmt.Errorf("get failed: %w", err)
			}
			if rec == nil {
				return fmt.Errorf("no entity with id %q", args[1])
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "entiq.toml", "Path to the TOML config file")
	return cmd
}
