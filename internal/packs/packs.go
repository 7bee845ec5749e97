// Package packs discovers agent-pack template directories.
//
// A pack is a subdirectory of the packs directory that contains an
// mcp_template.json. Its description is taken from the first "# " heading
// line of an optional README.md, and an optional prepare script
// (prepare, prepare.sh, or prepare.py) runs before generation when the
// pack is selected.
package packs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotFound indicates the requested pack does not exist.
var ErrNotFound = errors.New("pack not found")

// prepareNames are the recognized prepare-script file names, checked in
// order.
var prepareNames = []string{"prepare", "prepare.sh", "prepare.py"}

// Pack describes one discovered agent pack.
type Pack struct {
	Name          string
	TemplatePath  string
	Description   string
	PrepareScript string // empty when the pack ships no prepare script
}

// Discover scans dir for packs, sorted by name. A missing packs
// directory yields an empty result rather than an error; packs are an
// optional feature.
func Discover(dir string) ([]Pack, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read packs directory %s: %w", dir, err)
	}

	var found []Pack
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		packDir := filepath.Join(dir, entry.Name())
		templatePath := filepath.Join(packDir, "mcp_template.json")
		if info, err := os.Stat(templatePath); err != nil || info.IsDir() {
			continue
		}
		pack := Pack{
			Name:         entry.Name(),
			TemplatePath: templatePath,
			Description:  readDescription(filepath.Join(packDir, "README.md")),
		}
		for _, name := range prepareNames {
			candidate := filepath.Join(packDir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				pack.PrepareScript = candidate
				break
			}
		}
		found = append(found, pack)
	}
	return found, nil
}

// Find returns the named pack from dir.
func Find(dir, name string) (Pack, error) {
	found, err := Discover(dir)
	if err != nil {
		return Pack{}, err
	}
	for _, pack := range found {
		if pack.Name == name {
			return pack, nil
		}
	}
	return Pack{}, fmt.Errorf("%w: %q in %s", ErrNotFound, name, dir)
}

// RunPrepare executes a pack's prepare script and logs its combined
// output. Python scripts run through python3; everything else must be
// directly executable.
func RunPrepare(ctx context.Context, pack Pack, logger *slog.Logger) error {
	if pack.PrepareScript == "" {
		return nil
	}

	var cmd *exec.Cmd
	if strings.HasSuffix(pack.PrepareScript, ".py") {
		cmd = exec.CommandContext(ctx, "python3", pack.PrepareScript)
	} else {
		cmd = exec.CommandContext(ctx, pack.PrepareScript)
	}
	cmd.Dir = filepath.Dir(pack.PrepareScript)

	output, err := cmd.CombinedOutput()
	if trimmed := strings.TrimSpace(string(output)); trimmed != "" {
		logger.Info("prepare script output", "pack", pack.Name, "output", trimmed)
	}
	if err != nil {
		return fmt.Errorf("prepare script for pack %q: %w", pack.Name, err)
	}
	logger.Info("prepare script finished", "pack", pack.Name, "script", pack.PrepareScript)
	return nil
}

// readDescription returns the first "# " heading of a README, or "".
func readDescription(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if after, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(after)
		}
	}
	return ""
}
