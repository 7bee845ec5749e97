package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	base       string
	configPath string
	template   string
	credsDir   string
	output     string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("MCPGEN_TEMPLATE", "")
	t.Setenv("MCPGEN_CREDENTIALS_DIR", "")
	t.Setenv("MCPGEN_OUTPUT", "")

	env := &cliTestEnv{
		base:       base,
		configPath: filepath.Join(base, "config.toml"),
		template:   filepath.Join(base, "mcp_template.json"),
		credsDir:   filepath.Join(base, "credentials"),
		output:     filepath.Join(base, "mcp.json"),
	}

	if err := os.MkdirAll(env.credsDir, 0o755); err != nil {
		t.Fatalf("mkdir credentials: %v", err)
	}

	content := fmt.Sprintf(`[paths]
template = %q
credentials_dir = %q
output = %q
packs_dir = %q
log_dir = %q

[logging]
format = "json"
level = "error"
`, env.template, env.credsDir, env.output, filepath.Join(base, "packs"), filepath.Join(base, "logs"))
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (env *cliTestEnv) writeTemplate(t *testing.T, data string) {
	t.Helper()
	if err := os.WriteFile(env.template, []byte(data), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
}

func (env *cliTestEnv) writeCredential(t *testing.T, server, data string) {
	t.Helper()
	path := filepath.Join(env.credsDir, server+".json")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write credential %s: %v", server, err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestGenerateWritesResolvedOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeTemplate(t, `{"servers": {"github": {"token": "%GITHUB_TOKEN%"}}}`)
	env.writeCredential(t, "github", `{"GITHUB_TOKEN": "ghp-test"}`)

	out, err := runCLI(t, env, "generate")
	if err != nil {
		t.Fatalf("generate: %v\noutput:\n%s", err, out)
	}
	if !strings.Contains(out, "Wrote "+env.output) {
		t.Fatalf("expected write confirmation, got:\n%s", out)
	}

	data, err := os.ReadFile(env.output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var doc map[string]map[string]map[string]string
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if got := doc["servers"]["github"]["token"]; got != "ghp-test" {
		t.Fatalf("token = %q, want %q", got, "ghp-test")
	}
}

func TestGenerateMissingCredentialFailsWithoutWriting(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeTemplate(t, `{"servers": {"github": {"token": "%GITHUB_TOKEN%"}}}`)

	out, err := runCLI(t, env, "generate")
	if err == nil {
		t.Fatalf("expected failure, got output:\n%s", out)
	}
	if !strings.Contains(err.Error(), "github") {
		t.Fatalf("error should name the section, got: %v", err)
	}
	if _, statErr := os.Stat(env.output); !os.IsNotExist(statErr) {
		t.Fatalf("output should not exist after failed run")
	}
}

func TestGenerateDryRunWritesNothing(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeTemplate(t, `{"servers": {"plain": {"command": "npx"}}}`)

	out, err := runCLI(t, env, "generate", "--dry-run")
	if err != nil {
		t.Fatalf("generate --dry-run: %v\noutput:\n%s", err, out)
	}
	if !strings.Contains(out, "Dry run") {
		t.Fatalf("expected dry-run notice, got:\n%s", out)
	}
	if _, statErr := os.Stat(env.output); !os.IsNotExist(statErr) {
		t.Fatalf("dry run must not write the output file")
	}
}

func TestGenerateFlagOverridesConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeTemplate(t, `{"servers": {"plain": {"command": "npx"}}}`)

	altOutput := filepath.Join(env.base, "alt.json")
	out, err := runCLI(t, env, "generate", "--output", altOutput)
	if err != nil {
		t.Fatalf("generate: %v\noutput:\n%s", err, out)
	}
	if _, statErr := os.Stat(altOutput); statErr != nil {
		t.Fatalf("expected output at override path: %v", statErr)
	}
	if _, statErr := os.Stat(env.output); !os.IsNotExist(statErr) {
		t.Fatalf("configured output path should be untouched")
	}
}

func TestCheckReportsMissingCredentials(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeTemplate(t, `{"servers": {"github": {"token": "%GITHUB_TOKEN%"}, "slack": {"token": "%SLACK_TOKEN%"}}}`)
	env.writeCredential(t, "github", `{"GITHUB_TOKEN": "ok"}`)
	env.writeCredential(t, "slack", `{"OTHER": "x"}`)

	out, err := runCLI(t, env, "check")
	if err == nil {
		t.Fatalf("expected check to fail, got output:\n%s", out)
	}
	if !strings.Contains(out, "SLACK_TOKEN") {
		t.Fatalf("expected SLACK_TOKEN in report, got:\n%s", out)
	}
	if strings.Contains(out, "GITHUB_TOKEN% unresolved") {
		t.Fatalf("resolved token reported as missing:\n%s", out)
	}
	if _, statErr := os.Stat(env.output); !os.IsNotExist(statErr) {
		t.Fatalf("check must never write the output file")
	}
}

func TestCheckPassesOnCompleteInputs(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeTemplate(t, `{"servers": {"github": {"token": "%GITHUB_TOKEN%"}}}`)
	env.writeCredential(t, "github", `{"GITHUB_TOKEN": "ok"}`)

	out, err := runCLI(t, env, "check")
	if err != nil {
		t.Fatalf("check: %v\noutput:\n%s", err, out)
	}
	if !strings.Contains(out, "Preflight") {
		t.Fatalf("expected preflight section, got:\n%s", out)
	}
	if _, statErr := os.Stat(env.output); !os.IsNotExist(statErr) {
		t.Fatalf("check must never write the output file")
	}
}

func TestPacksListsDiscoveredPacks(t *testing.T) {
	env := setupCLITestEnv(t)

	packDir := filepath.Join(env.base, "packs", "coding")
	if err := os.MkdirAll(packDir, 0o755); err != nil {
		t.Fatalf("mkdir pack: %v", err)
	}
	if err := os.WriteFile(filepath.Join(packDir, "mcp_template.json"), []byte(`{"servers": {}}`), 0o644); err != nil {
		t.Fatalf("write pack template: %v", err)
	}
	if err := os.WriteFile(filepath.Join(packDir, "README.md"), []byte("# Coding assistants\n"), 0o644); err != nil {
		t.Fatalf("write pack readme: %v", err)
	}

	out, err := runCLI(t, env, "packs")
	if err != nil {
		t.Fatalf("packs: %v\noutput:\n%s", err, out)
	}
	if !strings.Contains(out, "coding") || !strings.Contains(out, "Coding assistants") {
		t.Fatalf("expected pack listing, got:\n%s", out)
	}
}

func TestGeneratePackSelectsPackTemplate(t *testing.T) {
	env := setupCLITestEnv(t)

	packDir := filepath.Join(env.base, "packs", "minimal")
	if err := os.MkdirAll(packDir, 0o755); err != nil {
		t.Fatalf("mkdir pack: %v", err)
	}
	if err := os.WriteFile(filepath.Join(packDir, "mcp_template.json"), []byte(`{"servers": {"echo": {"command": "echo"}}}`), 0o644); err != nil {
		t.Fatalf("write pack template: %v", err)
	}

	out, err := runCLI(t, env, "generate", "--pack", "minimal")
	if err != nil {
		t.Fatalf("generate --pack: %v\noutput:\n%s", err, out)
	}
	data, err := os.ReadFile(env.output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), `"echo"`) {
		t.Fatalf("output should come from the pack template, got:\n%s", data)
	}
}

func TestGenerateUnknownPackFails(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeTemplate(t, `{"servers": {}}`)

	out, err := runCLI(t, env, "generate", "--pack", "nope")
	if err == nil {
		t.Fatalf("expected unknown pack to fail, got:\n%s", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(env.base, "fresh", "config.toml")
	out, err := runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\noutput:\n%s", err, out)
	}
	if _, statErr := os.Stat(target); statErr != nil {
		t.Fatalf("sample config missing: %v", statErr)
	}

	if _, err := runCLI(t, env, "config", "init", "--path", target); err == nil {
		t.Fatalf("second init without --overwrite should fail")
	}
	if _, err := runCLI(t, env, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateReportsPaths(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env, "config", "validate", "--path", env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v\noutput:\n%s", err, out)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("expected validation success, got:\n%s", out)
	}
	if !strings.Contains(out, env.template) {
		t.Fatalf("expected template path in output, got:\n%s", out)
	}
}
