// Package logger builds configured log/slog loggers for GameKit
// services.
//
// The factory supports JSON output for production and text output for
// development, with the level and format optionally driven by the
// LOG_LEVEL and LOG_FORMAT environment variables through Config:
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//	log := logger.FromConfig(cfg)
//
// Services never log by default: each accepts a WithLogger option and
// falls back to logger.Discard() when none is given.
package logger
