package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mcpgen/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify inputs and report what a generation run would do",
		Long: `Check runs the preflight permission checks, then performs a full
resolution pass without writing the output file. It reports every
missing credential at once rather than stopping at the first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			templatePath := cfg.Paths.Template
			if v := strings.TrimSpace(flags.template); v != "" {
				templatePath = v
			}
			credentialsDir := cfg.Paths.CredentialsDir
			if v := strings.TrimSpace(flags.credentialsDir); v != "" {
				credentialsDir = v
			}
			outputPath := cfg.Paths.Output
			if v := strings.TrimSpace(flags.output); v != "" {
				outputPath = v
			}

			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			results := preflight.Run(templatePath, credentialsDir, outputPath)
			for _, res := range results {
				kind := statusOK
				detail := ""
				if !res.Passed {
					kind = statusError
					detail = res.Detail
				}
				fmt.Fprintln(out, renderStatusLine(res.Name, kind, detail, colorize))
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				return preflight.Error(results)
			}

			fmt.Fprintln(out)
			flags.dryRun = true
			return runGeneration(cmd, ctx, flags)
		},
	}

	addGenerateFlags(cmd, &flags)
	return cmd
}
