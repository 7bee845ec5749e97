package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mcpgen/internal/config"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prevWD) })

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.Paths.Template != "mcp_template.json" {
		t.Fatalf("unexpected template path: %q", cfg.Paths.Template)
	}
	if cfg.Paths.CredentialsDir != "credentials" {
		t.Fatalf("unexpected credentials dir: %q", cfg.Paths.CredentialsDir)
	}
	if cfg.Paths.Output != "mcp.json" {
		t.Fatalf("unexpected output path: %q", cfg.Paths.Output)
	}
	if cfg.Paths.PacksDir != "mcp_agent_packs" {
		t.Fatalf("unexpected packs dir: %q", cfg.Paths.PacksDir)
	}
	if cfg.Generation.StrictUnused {
		t.Fatal("expected strict_unused disabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "mcpgen.toml")

	type payload struct {
		Paths struct {
			Template string `toml:"template"`
			Output   string `toml:"output"`
		} `toml:"paths"`
		Generation struct {
			StrictUnused bool `toml:"strict_unused"`
		} `toml:"generation"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.Template = "packs/base/mcp_template.json"
	custom.Paths.Output = ".vscode/mcp.json"
	custom.Generation.StrictUnused = true
	custom.Logging.Format = "json"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.Template != filepath.Clean("packs/base/mcp_template.json") {
		t.Fatalf("unexpected template: %q", cfg.Paths.Template)
	}
	if cfg.Paths.Output != filepath.Clean(".vscode/mcp.json") {
		t.Fatalf("unexpected output: %q", cfg.Paths.Output)
	}
	if !cfg.Generation.StrictUnused {
		t.Fatal("expected strict_unused from file")
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging format: %q", cfg.Logging.Format)
	}
}

func TestEnvVarsOverrideConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "mcpgen.toml")
	content := "[paths]\ntemplate = \"file-template.json\"\ncredentials_dir = \"file-creds\"\noutput = \"file-out.json\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("MCPGEN_TEMPLATE", "env-template.json")
	t.Setenv("MCPGEN_CREDENTIALS_DIR", "env-creds")
	t.Setenv("MCPGEN_OUTPUT", "env-out.json")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.Template != "env-template.json" {
		t.Errorf("template = %q, want env value", cfg.Paths.Template)
	}
	if cfg.Paths.CredentialsDir != "env-creds" {
		t.Errorf("credentials dir = %q, want env value", cfg.Paths.CredentialsDir)
	}
	if cfg.Paths.Output != "env-out.json" {
		t.Errorf("output = %q, want env value", cfg.Paths.Output)
	}
}

func TestExpandPathResolvesHome(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	got, err := config.ExpandPath("~/mcpgen/config.toml")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if got != filepath.Join(tempHome, "mcpgen", "config.toml") {
		t.Fatalf("ExpandPath = %q", got)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log format")
	}

	cfg = config.Default()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log level")
	}

	cfg = config.Default()
	cfg.Paths.Output = cfg.Paths.Template
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when output equals template")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "credentials_dir") {
		t.Fatalf("sample config missing credentials_dir: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Paths.Template != "mcp_template.json" {
		t.Fatalf("sample template = %q", cfg.Paths.Template)
	}
}
