package toml

import "fmt"

const currentSchemaVersion = 1

// fileSchema is the on-disk profile. It holds configuration only; PINs and
// draft state are never written.
type fileSchema struct {
	Version        int           `toml:"version"`
	Endpoint       string        `toml:"endpoint,omitempty"`
	PollInterval   string        `toml:"poll_interval,omitempty"`
	RequestTimeout string        `toml:"request_timeout,omitempty"`
	PlayerID       string        `toml:"player_id,omitempty"`
	Sync           syncSchema    `toml:"sync,omitempty"`
	Log            logSchema     `toml:"log,omitempty"`
	Metrics        metricsSchema `toml:"metrics,omitempty"`
}

type syncSchema struct {
	DiscardStale *bool `toml:"discard_stale,omitempty"`
}

type logSchema struct {
	Level string `toml:"level,omitempty"`
	File  string `toml:"file,omitempty"`
}

type metricsSchema struct {
	Addr string `toml:"addr,omitempty"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported config schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}
