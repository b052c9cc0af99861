// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv (optional .env files) and
// github.com/caarlos0/env/v11 (struct tag parsing). Each configuration type is
// parsed once per process and cached; Reset clears the cache in tests.
//
// # Usage
//
//	import (
//	    "github.com/dmitrymomot/travio/pkg/config"
//	    "github.com/dmitrymomot/travio/pkg/travio"
//	)
//
//	var cfg travio.Config
//	config.MustLoad(&cfg)
//
// Additional files can be read before the first Load:
//
//	if err := config.LoadEnv(".env.local"); err != nil {
//	    // handle error
//	}
//
// # Errors
//
//   - ErrParsingConfig  – a value is malformed or a required variable is missing
//   - ErrLoadingEnvFile – an explicitly requested file could not be read
//   - ErrNilPointer     – Load was called with nil
package config
