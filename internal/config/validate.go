package config

import (
	"fmt"
	"strings"
)

// Validate checks that the configuration is internally consistent. It does
// not verify that external binaries or API keys work; those are checked at
// the point of use so scan and label stay usable offline.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.RootDir) == "" {
		return fmt.Errorf("config: paths.root_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return fmt.Errorf("config: paths.state_dir must not be empty")
	}
	if c.Generate.MaxChars <= 0 {
		return fmt.Errorf("config: generate.max_chars must be positive, got %d", c.Generate.MaxChars)
	}
	if c.Generate.TimeoutSeconds <= 0 {
		return fmt.Errorf("config: generate.timeout_seconds must be positive, got %d", c.Generate.TimeoutSeconds)
	}
	if c.Generate.Concurrency <= 0 {
		return fmt.Errorf("config: generate.concurrency must be positive, got %d", c.Generate.Concurrency)
	}
	if c.Generate.UndoDepth <= 0 {
		return fmt.Errorf("config: generate.undo_depth must be positive, got %d", c.Generate.UndoDepth)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("config: logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
