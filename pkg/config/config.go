// Package config loads the sieve TOML configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/sieve/pkg/candidate"
	"github.com/papercomputeco/sieve/pkg/sampling"
)

const (
	// DefaultListenAddr is the server's default address.
	DefaultListenAddr = ":6062"

	// DefaultNATSQueue is the queue group shared by selection servers.
	DefaultNATSQueue = "sieve"
)

// Config is the sieve configuration.
type Config struct {
	Sampling sampling.Options `toml:"sampling"`
	Server   Server           `toml:"server"`
	Input    Input            `toml:"input"`
}

// Server configures `sieve serve`.
type Server struct {
	// Address to listen on (e.g., ":6062")
	ListenAddr string `toml:"listen"`

	// JSONLogs switches the server logger to the JSON encoder.
	JSONLogs bool `toml:"json_logs"`

	// NATS request/reply transport, off when URL is empty. An empty subject
	// uses the server default.
	NATSURL     string `toml:"nats_url"`
	NATSSubject string `toml:"nats_subject"`
	NATSQueue   string `toml:"nats_queue"`
}

// Input configures how candidate tables are read.
type Input struct {
	candidate.Columns

	// Query is the SQL used against SQLite sources.
	Query string `toml:"query"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Sampling: sampling.DefaultOptions(),
		Server: Server{
			ListenAddr: DefaultListenAddr,
			NATSQueue:  DefaultNATSQueue,
		},
		Input: Input{
			Columns: candidate.DefaultColumns(),
			Query:   candidate.DefaultQuery,
		},
	}
}

// Load reads a TOML file over the defaults. An empty path returns the
// defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that the sampling options build a policy and a sampler.
func (c Config) Validate() error {
	return c.Sampling.Validate()
}

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
