package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Run executes the filesystem checks a generation run depends on.
//
// The credentials directory is only checked when it exists: a template
// without placeholder tokens never touches it, and when tokens do need
// it the credential loader reports the precise per-section failure.
func Run(templatePath, credentialsDir, outputPath string) []Result {
	results := []Result{
		CheckFileReadable("Template file", templatePath),
		CheckDirWritable("Output directory", filepath.Dir(outputPath)),
	}
	if _, err := os.Stat(credentialsDir); err == nil {
		results = append(results, CheckDirReadable("Credentials directory", credentialsDir))
	}
	return results
}

// Failed returns the subset of results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}

// Error condenses failed results into one error, or nil when all passed.
func Error(results []Result) error {
	failed := Failed(results)
	if len(failed) == 0 {
		return nil
	}
	detail := make([]string, 0, len(failed))
	for _, result := range failed {
		detail = append(detail, fmt.Sprintf("%s: %s", result.Name, result.Detail))
	}
	return fmt.Errorf("preflight failed: %s", joinDetail(detail))
}

// CheckFileReadable verifies that path exists, is a regular file, and is
// readable.
func CheckFileReadable(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (readable)", path)}
}

// CheckDirReadable verifies that path is a directory that can be listed
// and entered.
func CheckDirReadable(name, path string) Result {
	return checkDirAccess(name, path, unix.R_OK|unix.X_OK, "readable")
}

// CheckDirWritable verifies that path is a directory that can be written
// and entered.
func CheckDirWritable(name, path string) Result {
	return checkDirAccess(name, path, unix.W_OK|unix.X_OK, "writable")
}

func checkDirAccess(name, path string, mode uint32, verb string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, verb)}
}

func joinDetail(parts []string) string {
	out := ""
	for i, part := range parts {
		if i > 0 {
			out += "; "
		}
		out += part
	}
	return out
}
