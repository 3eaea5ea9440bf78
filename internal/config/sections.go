package config

// Section accessor methods return snapshot structs. Mutating the returned
// struct does not modify the underlying configuration. Use Config.Set()
// to update configuration values.

// GDBConfig provides type-safe access to gdb settings.
type GDBConfig struct {
	// Path is the gdb executable to spawn.
	Path string

	// Args are extra arguments appended to the gdb command line.
	Args []string
}

// LoggingConfig provides type-safe access to logging settings.
type LoggingConfig struct {
	// Level is the minimum level ("debug", "info", "warn", "error").
	Level string

	// File is the log destination path, "" for no log file.
	File string
}

// GDB returns the gdb section.
func (c *Config) GDB() GDBConfig {
	return GDBConfig{
		Path: c.GetString("gdb.path", "gdb"),
		Args: c.GetStringList("gdb.args"),
	}
}

// Logging returns the logging section.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level: c.GetString("logging.level", "info"),
		File:  c.GetString("logging.file", ""),
	}
}

// Layout returns the pane layout description.
func (c *Config) Layout() string {
	return c.GetString("layout", "(1s-1c)|(1e-1t)")
}

// ScriptPath returns the Lua init script path, "" when none is configured.
func (c *Config) ScriptPath() string {
	return c.GetString("script.path", "")
}
