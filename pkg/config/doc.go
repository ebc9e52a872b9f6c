// Package config loads typed configuration structs from environment
// variables, with optional .env file support for local development.
//
// Configuration is declared as plain structs with `env` tags understood
// by github.com/caarlos0/env; defaults and required markers live in the
// tags, next to the fields they describe:
//
//	type APIConfig struct {
//		BaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:8000"`
//		Timeout time.Duration `env:"API_TIMEOUT" envDefault:"30s"`
//	}
//
// Load fills such a struct once per call; MustLoad panics on failure and
// is meant for startup-critical configuration.
package config
