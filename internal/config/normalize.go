package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error

	c.Paths.Template = strings.TrimSpace(c.Paths.Template)
	if value, ok := os.LookupEnv("MCPGEN_TEMPLATE"); ok && strings.TrimSpace(value) != "" {
		c.Paths.Template = strings.TrimSpace(value)
	}
	if c.Paths.Template == "" {
		c.Paths.Template = defaultTemplate
	}
	if c.Paths.Template, err = ExpandPath(c.Paths.Template); err != nil {
		return fmt.Errorf("paths.template: %w", err)
	}

	c.Paths.CredentialsDir = strings.TrimSpace(c.Paths.CredentialsDir)
	if value, ok := os.LookupEnv("MCPGEN_CREDENTIALS_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.CredentialsDir = strings.TrimSpace(value)
	}
	if c.Paths.CredentialsDir == "" {
		c.Paths.CredentialsDir = defaultCredentialsDir
	}
	if c.Paths.CredentialsDir, err = ExpandPath(c.Paths.CredentialsDir); err != nil {
		return fmt.Errorf("paths.credentials_dir: %w", err)
	}

	c.Paths.Output = strings.TrimSpace(c.Paths.Output)
	if value, ok := os.LookupEnv("MCPGEN_OUTPUT"); ok && strings.TrimSpace(value) != "" {
		c.Paths.Output = strings.TrimSpace(value)
	}
	if c.Paths.Output == "" {
		c.Paths.Output = defaultOutput
	}
	if c.Paths.Output, err = ExpandPath(c.Paths.Output); err != nil {
		return fmt.Errorf("paths.output: %w", err)
	}

	c.Paths.PacksDir = strings.TrimSpace(c.Paths.PacksDir)
	if c.Paths.PacksDir == "" {
		c.Paths.PacksDir = defaultPacksDir
	}
	if c.Paths.PacksDir, err = ExpandPath(c.Paths.PacksDir); err != nil {
		return fmt.Errorf("paths.packs_dir: %w", err)
	}

	c.Paths.LogDir = strings.TrimSpace(c.Paths.LogDir)
	if c.Paths.LogDir != "" {
		if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
			return fmt.Errorf("paths.log_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
