// Package logging builds the slog loggers used across the pipeline. Two
// output formats are supported: a compact console format for interactive use
// and JSON for machine consumption. Output can fan out to a log file in
// addition to the terminal.
package logging
