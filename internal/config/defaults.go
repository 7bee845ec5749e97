package config

const (
	defaultTemplate       = "mcp_template.json"
	defaultCredentialsDir = "credentials"
	defaultOutput         = "mcp.json"
	defaultPacksDir       = "mcp_agent_packs"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Template:       defaultTemplate,
			CredentialsDir: defaultCredentialsDir,
			Output:         defaultOutput,
			PacksDir:       defaultPacksDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
