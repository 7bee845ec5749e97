// Package report accumulates structured findings from a generation run
// and exposes them deterministically for rendering and for tests.
package report

import (
	"fmt"
	"sort"
)

// Finding ties one diagnostic to its owning section.
type Finding struct {
	Section string
	Key     string
}

// SectionStat summarizes successful resolution work for one section.
type SectionStat struct {
	Section string
	Tokens  int
}

// Report collects resolution accounting for a single run. It is not safe
// for concurrent use; a run is strictly sequential.
type Report struct {
	missing  []Finding
	unused   []Finding
	resolved map[string]int
}

// New returns an empty report.
func New() *Report {
	return &Report{resolved: make(map[string]int)}
}

// AddMissing records a token that was requested by a section but absent
// from its credential source.
func (r *Report) AddMissing(section, token string) {
	r.missing = append(r.missing, Finding{Section: section, Key: token})
}

// AddUnused records a credential key that no token in its section
// referenced.
func (r *Report) AddUnused(section, key string) {
	r.unused = append(r.unused, Finding{Section: section, Key: key})
}

// SetResolved records how many distinct tokens a section resolved.
func (r *Report) SetResolved(section string, tokens int) {
	r.resolved[section] = tokens
}

// HasMissing reports whether any missing token was recorded.
func (r *Report) HasMissing() bool {
	return len(r.missing) > 0
}

// Missing returns the missing-token findings sorted by section then key.
func (r *Report) Missing() []Finding {
	return sortedFindings(r.missing)
}

// Unused returns the unused-key findings sorted by section then key.
func (r *Report) Unused() []Finding {
	return sortedFindings(r.unused)
}

// Resolved returns per-section token counts sorted by section name.
func (r *Report) Resolved() []SectionStat {
	stats := make([]SectionStat, 0, len(r.resolved))
	for section, tokens := range r.resolved {
		stats = append(stats, SectionStat{Section: section, Tokens: tokens})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Section < stats[j].Section })
	return stats
}

// Lines renders the findings as human-readable lines, missing tokens
// first, in the same deterministic order the accessors use.
func (r *Report) Lines() []string {
	var lines []string
	for _, f := range r.Missing() {
		lines = append(lines, fmt.Sprintf("missing credential for %%%s%% in section %s", f.Key, f.Section))
	}
	for _, f := range r.Unused() {
		lines = append(lines, fmt.Sprintf("unused credential key %s in section %s", f.Key, f.Section))
	}
	return lines
}

func sortedFindings(findings []Finding) []Finding {
	out := make([]Finding, len(findings))
	copy(out, findings)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Section != out[j].Section {
			return out[i].Section < out[j].Section
		}
		return out[i].Key < out[j].Key
	})
	return out
}
