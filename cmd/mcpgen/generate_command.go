package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"mcpgen/internal/config"
	"mcpgen/internal/generator"
	"mcpgen/internal/packs"
	"mcpgen/internal/resolver"
)

type generateFlags struct {
	template       string
	credentialsDir string
	output         string
	pack           string
	skipPrepare    bool
	dryRun         bool
	strictUnused   bool
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Resolve credential placeholders and write the MCP configuration",
		Long: `Generate merges the template with per-server credential files,
substituting every %TOKEN% placeholder, and writes the resolved
configuration. Nothing is written unless every placeholder resolves.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGeneration(cmd, ctx, flags)
		},
	}

	addGenerateFlags(cmd, &flags)
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Resolve and report without writing the output file")
	return cmd
}

func addGenerateFlags(cmd *cobra.Command, flags *generateFlags) {
	cmd.Flags().StringVarP(&flags.template, "template", "t", "", "Template file path (overrides configuration)")
	cmd.Flags().StringVar(&flags.credentialsDir, "credentials-dir", "", "Credentials directory (overrides configuration)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (overrides configuration)")
	cmd.Flags().StringVar(&flags.pack, "pack", "", "Use the named pack's template")
	cmd.Flags().BoolVar(&flags.skipPrepare, "skip-prepare", false, "Skip the pack's prepare script")
	cmd.Flags().BoolVar(&flags.strictUnused, "strict-unused", false, "Fail when credential files carry unused keys")
}

func runGeneration(cmd *cobra.Command, ctx *commandContext, flags generateFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	opts, err := buildOptions(cmd, cfg, flags, logger)
	if err != nil {
		return err
	}

	gen := generator.New(opts, logger)
	result, err := gen.Run(cmd.Context())
	if err != nil {
		reportFailure(cmd, err)
		return err
	}

	renderRunReport(cmd, result, opts)
	return nil
}

// buildOptions merges configuration with command-line overrides and, when a
// pack is selected, swaps in the pack's template after running its prepare
// script.
func buildOptions(cmd *cobra.Command, cfg *config.Config, flags generateFlags, logger *slog.Logger) (generator.Options, error) {
	opts := generator.Options{
		TemplatePath:   cfg.Paths.Template,
		CredentialsDir: cfg.Paths.CredentialsDir,
		OutputPath:     cfg.Paths.Output,
		DryRun:         flags.dryRun,
		StrictUnused:   cfg.Generation.StrictUnused || flags.strictUnused,
	}
	if v := strings.TrimSpace(flags.template); v != "" {
		opts.TemplatePath = v
	}
	if v := strings.TrimSpace(flags.credentialsDir); v != "" {
		opts.CredentialsDir = v
	}
	if v := strings.TrimSpace(flags.output); v != "" {
		opts.OutputPath = v
	}

	packName := strings.TrimSpace(flags.pack)
	if packName == "" {
		return opts, nil
	}

	pack, err := packs.Find(cfg.Paths.PacksDir, packName)
	if err != nil {
		return opts, err
	}
	opts.TemplatePath = pack.TemplatePath

	if pack.PrepareScript != "" && !flags.skipPrepare && !cfg.Generation.SkipPrepare {
		if err := packs.RunPrepare(cmd.Context(), pack, logger); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func renderRunReport(cmd *cobra.Command, result *resolver.Result, opts generator.Options) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Resolution", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, stat := range result.Report.Resolved() {
		kind := statusOK
		detail := fmt.Sprintf("%d token(s) resolved", stat.Tokens)
		if stat.Tokens == 0 {
			kind = statusInfo
			detail = "no placeholders"
		}
		fmt.Fprintln(out, renderStatusLine(stat.Section, kind, detail, colorize))
	}

	if unused := result.Report.Unused(); len(unused) > 0 {
		fmt.Fprintln(out)
		rows := make([][]string, 0, len(unused))
		for _, f := range unused {
			rows = append(rows, []string{f.Section, f.Key})
		}
		fmt.Fprintln(out, "Unused credential keys:")
		fmt.Fprintln(out, renderTable([]string{"Server", "Key"}, rows))
	}

	fmt.Fprintln(out)
	if opts.DryRun {
		fmt.Fprintf(out, "Dry run: would write %s\n", opts.OutputPath)
		return
	}
	fmt.Fprintf(out, "Wrote %s\n", opts.OutputPath)
}

func reportFailure(cmd *cobra.Command, err error) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	var incomplete *resolver.IncompleteError
	if errors.As(err, &incomplete) {
		for _, line := range renderSectionHeader("Missing credentials", colorize) {
			fmt.Fprintln(out, line)
		}
		for _, f := range incomplete.Missing {
			fmt.Fprintln(out, renderStatusLine(f.Section, statusError, fmt.Sprintf("%%%s%% unresolved", f.Key), colorize))
		}
		return
	}
	if errors.Is(err, generator.ErrUnusedCredentials) {
		fmt.Fprintln(out, renderStatusLine("credentials", statusError, "unused keys present (strict mode)", colorize))
	}
}
