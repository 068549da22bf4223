// Package config loads, normalizes, and validates the alttext configuration
// file. Configuration lives in TOML at ~/.config/alttext/config.toml or in an
// alttext.toml next to the working directory; a .env file and ALTTEXT_*
// environment variables can supply secrets that should stay out of the file.
package config
