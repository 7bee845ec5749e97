package config

import (
	"fmt"
	"strings"
)

var (
	validLogFormats = map[string]struct{}{"console": {}, "json": {}}
	validLogLevels  = map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "error": {}}
)

// Validate checks invariants a normalized configuration must satisfy.
func (c *Config) Validate() error {
	var problems []string

	if c.Paths.Template == "" {
		problems = append(problems, "paths.template must not be empty")
	}
	if c.Paths.CredentialsDir == "" {
		problems = append(problems, "paths.credentials_dir must not be empty")
	}
	if c.Paths.Output == "" {
		problems = append(problems, "paths.output must not be empty")
	}
	if c.Paths.Output != "" && c.Paths.Output == c.Paths.Template {
		problems = append(problems, "paths.output must differ from paths.template")
	}
	if _, ok := validLogFormats[c.Logging.Format]; !ok {
		problems = append(problems, fmt.Sprintf("logging.format: unsupported value %q", c.Logging.Format))
	}
	if _, ok := validLogLevels[c.Logging.Level]; !ok {
		problems = append(problems, fmt.Sprintf("logging.level: unsupported value %q", c.Logging.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
