package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"entiq"
	"entiq/internal/selectopt"
)

func idsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "ids <spec-file>",
		Short: "Print every root-table id matching a spec, one per line",
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

			ids, err := entiq.EntityIDs(ctx, db, cs, selectopt.Selection{})
			if err != nil {
				return fmt.Errorf("failed to resolve ids: %w", err)
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "entiq.toml", "Path to the TOML config file")
	return cmd
}
