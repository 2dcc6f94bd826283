package config

import "flowtap/internal/stream"

// Defaults applied to fields the config leaves empty.
const (
	DefaultTimeoutSeconds = 300
	DefaultDBPath         = ".flowtap/history.duckdb"
	DefaultRecordingsDir  = ".flowtap/recordings"
	DefaultReadBuffer     = 4096
	DefaultTickIntervalMs = 200
	DefaultServerAddr     = "127.0.0.1:8844"
)

// Normalize fills defaulted fields in place.
func Normalize(cfg *Config) {
	if cfg.Engine.TimeoutSeconds == 0 {
		cfg.Engine.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = DefaultDBPath
	}
	if cfg.Stream.Gating == "" {
		cfg.Stream.Gating = string(stream.GatingIndependent)
	}
	if cfg.Stream.ReadBuffer == 0 {
		cfg.Stream.ReadBuffer = DefaultReadBuffer
	}
	if cfg.Stream.RecordingsDir == "" {
		cfg.Stream.RecordingsDir = DefaultRecordingsDir
	}
	if cfg.UI.TickIntervalMs == 0 {
		cfg.UI.TickIntervalMs = DefaultTickIntervalMs
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
}
