package config

// Color modes for console output.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents the optional brigadier.yaml file next to a project
// definition.
type Config struct {
	// Verbose enables trace output, as --verbose does.
	Verbose bool `yaml:"verbose"`
	// Color is one of auto, always or never.
	Color string `yaml:"color"`
	// Shell replaces the platform shell used by exec and background.
	Shell string `yaml:"shell,omitempty"`
	// EnvFile is loaded into every child process environment. Relative to
	// the project directory.
	EnvFile string `yaml:"env_file"`
	// Defaults seed the project configuration before CLI flags are applied.
	Defaults map[string]interface{} `yaml:"defaults,omitempty"`
	// Disable lists optional renderers to leave unregistered.
	Disable []string `yaml:"disable,omitempty"`
}
