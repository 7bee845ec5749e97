// Package resolver merges a parsed template with per-section credential
// sources.
//
// Sections are processed in template order. Credential loading is
// section-scoped: a token in one section never resolves from another
// section's credential file. Loader failures for a token-bearing section
// abort the run immediately; missing tokens are aggregated across every
// section first so a single failed run reports every gap at once.
package resolver

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mcpgen/internal/placeholder"
	"mcpgen/internal/report"
	"mcpgen/internal/template"
)

// ErrIncomplete marks a run that discovered unresolved tokens.
var ErrIncomplete = errors.New("resolution incomplete")

// Loader supplies credentials for one named server section.
type Loader interface {
	Load(server string) (map[string]any, error)
}

// Result carries the resolved sections and the run's accounting.
type Result struct {
	Sections []template.Section
	Report   *report.Report
}

// IncompleteError enumerates every missing token with its owning section.
type IncompleteError struct {
	Missing []report.Finding
}

func (e *IncompleteError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, f := range e.Missing {
		parts = append(parts, fmt.Sprintf("%s: %%%s%%", f.Section, f.Key))
	}
	return fmt.Sprintf("%v: missing credentials for %s", ErrIncomplete, strings.Join(parts, ", "))
}

func (e *IncompleteError) Unwrap() error { return ErrIncomplete }

// Resolve substitutes every placeholder token in doc using loader.
//
// Token-free sections pass through without touching their credential
// file. When any token remains unresolved after all sections have been
// processed, Resolve returns an *IncompleteError and the partially
// substituted result must be discarded by the caller.
func Resolve(doc *template.Document, loader Loader, logger *slog.Logger) (*Result, error) {
	rep := report.New()
	resolved := make([]template.Section, 0, len(doc.Servers))

	for _, section := range doc.Servers {
		tokens := placeholder.Scan(section.Value)
		if len(tokens) == 0 {
			logger.Info("section has no placeholders", "section", section.Name)
			resolved = append(resolved, section)
			continue
		}
		logger.Info("processing section", "section", section.Name, "placeholders", len(tokens))

		values, err := loader.Load(section.Name)
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", section.Name, err)
		}

		required := make(map[string]struct{}, len(tokens))
		missing := 0
		for _, token := range tokens {
			required[token] = struct{}{}
			if _, ok := values[token]; !ok {
				rep.AddMissing(section.Name, token)
				missing++
			}
		}
		for key := range values {
			if _, ok := required[key]; !ok {
				rep.AddUnused(section.Name, key)
			}
		}

		value := placeholder.Rewrite(section.Value, func(name string) (any, bool) {
			v, ok := values[name]
			return v, ok
		})
		resolved = append(resolved, template.Section{Name: section.Name, Value: value})
		rep.SetResolved(section.Name, len(tokens)-missing)
		logger.Info("section resolved", "section", section.Name, "resolved", len(tokens)-missing, "missing", missing)
	}

	if rep.HasMissing() {
		return nil, &IncompleteError{Missing: rep.Missing()}
	}
	return &Result{Sections: resolved, Report: rep}, nil
}
