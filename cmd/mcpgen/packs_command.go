package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mcpgen/internal/packs"
)

func newPacksCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "packs",
		Short: "List available template packs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			found, err := packs.Discover(cfg.Paths.PacksDir)
			if err != nil {
				return fmt.Errorf("discover packs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintf(out, "No packs found under %s\n", cfg.Paths.PacksDir)
				return nil
			}

			rows := make([][]string, 0, len(found))
			for _, pack := range found {
				prepare := "no"
				if pack.PrepareScript != "" {
					prepare = "yes"
				}
				rows = append(rows, []string{pack.Name, pack.Description, prepare})
			}
			fmt.Fprintln(out, renderTable([]string{"Name", "Description", "Prepare"}, rows))
			return nil
		},
	}
}
