package server

import "github.com/papercomputeco/sieve/pkg/sampling"

// Config is the selection server configuration.
type Config struct {
	// Address to listen on (e.g., ":6062")
	ListenAddr string

	// Defaults are the sampling options applied beneath each request's own
	// options. They can be replaced at runtime with SetDefaults.
	Defaults sampling.Options
}
