// Package generator orchestrates one configuration generation run:
// preflight checks, template loading, placeholder resolution, and the
// all-or-nothing output write.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"mcpgen/internal/credentials"
	"mcpgen/internal/fileutil"
	"mcpgen/internal/preflight"
	"mcpgen/internal/report"
	"mcpgen/internal/resolver"
	"mcpgen/internal/template"
)

// ErrUnusedCredentials marks a strict-mode run that found credential
// keys no placeholder references.
var ErrUnusedCredentials = errors.New("unused credential keys")

// Options select the inputs and output for one run.
type Options struct {
	TemplatePath   string
	CredentialsDir string
	OutputPath     string

	// DryRun resolves and reports without writing the output file.
	DryRun bool
	// StrictUnused turns unused-credential warnings into a failure.
	StrictUnused bool
}

// Generator produces the output configuration from a template and
// per-server credential files.
type Generator struct {
	opts   Options
	logger *slog.Logger
}

// New constructs a generator. The logger must not be nil.
func New(opts Options, logger *slog.Logger) *Generator {
	return &Generator{opts: opts, logger: logger}
}

// Run executes one generation pass. On success the output file has been
// written (unless DryRun is set) and the returned result carries the
// run's accounting. On any fatal condition nothing is written and any
// previous output file is left untouched.
func (g *Generator) Run(ctx context.Context) (*resolver.Result, error) {
	logger := g.logger.With("run_id", uuid.NewString())

	if err := preflight.Error(preflight.Run(g.opts.TemplatePath, g.opts.CredentialsDir, g.opts.OutputPath)); err != nil {
		return nil, err
	}

	if !g.opts.DryRun {
		lock := flock.New(g.opts.OutputPath + ".lock")
		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire output lock: %w", err)
		}
		if !locked {
			return nil, fmt.Errorf("another generation run holds the lock for %s", g.opts.OutputPath)
		}
		defer func() {
			_ = lock.Unlock()
		}()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := template.Load(g.opts.TemplatePath)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded template", "path", g.opts.TemplatePath, "servers", len(doc.Servers))

	result, err := resolver.Resolve(doc, credentials.Dir(g.opts.CredentialsDir), logger)
	if err != nil {
		return nil, err
	}

	if unused := result.Report.Unused(); g.opts.StrictUnused && len(unused) > 0 {
		return result, fmt.Errorf("%w: %s", ErrUnusedCredentials, describeFindings(unused))
	}

	if g.opts.DryRun {
		logger.Info("dry run complete", "servers", len(result.Sections))
		return result, nil
	}

	data, err := doc.WithServers(result.Sections).MarshalIndent()
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	// Credential values land in the output; keep it owner-only.
	if err := fileutil.WriteFileAtomic(g.opts.OutputPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	logger.Info("wrote configuration", "path", g.opts.OutputPath, "bytes", len(data))

	return result, nil
}

func describeFindings(findings []report.Finding) string {
	out := ""
	for i, f := range findings {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s: %s", f.Section, f.Key)
	}
	return out
}
