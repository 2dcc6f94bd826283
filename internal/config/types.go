// Package config loads and validates the .flowtap.yml project file.
package config

// Config is the parsed project configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Engine   EngineConfig   `yaml:"engine"`
	Database DatabaseConfig `yaml:"database"`
	Stream   StreamConfig   `yaml:"stream"`
	UI       UIConfig       `yaml:"ui"`
	Server   ServerConfig   `yaml:"server"`
}

// EngineConfig points at the workflow engine.
type EngineConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// DatabaseConfig locates the run history database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// StreamConfig tunes the event processing pipeline.
type StreamConfig struct {
	// Gating selects the channel visibility policy: "independent" or
	// "reasoning-first".
	Gating string `yaml:"gating"`
	// ReadBuffer is the transport read size in bytes.
	ReadBuffer int `yaml:"read_buffer"`
	// RecordingsDir is where run recordings are written.
	RecordingsDir string `yaml:"recordings_dir"`
}

// UIConfig holds live view defaults.
type UIConfig struct {
	NoColor        bool `yaml:"no_color"`
	TickIntervalMs int  `yaml:"tick_interval_ms"`
}

// ServerConfig holds the history server defaults.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}
