package config

// Default returns the baseline configuration before any file or environment
// overlay is applied.
func Default() Config {
	return Config{
		Paths: Paths{
			RootDir:  ".",
			StateDir: ".",
			LogDir:   "~/.local/share/alttext/logs",
		},
		LLM: LLM{
			BaseURL:        "https://openrouter.ai/api/v1/chat/completions",
			Model:          "anthropic/claude-sonnet-4",
			Title:          "alttext",
			TimeoutSeconds: 120,
		},
		Scan: Scan{
			IgnoreDirs: []string{".git", ".obsidian", "node_modules"},
		},
		Generate: Generate{
			MaxChars:       300,
			TimeoutSeconds: 120,
			Concurrency:    2,
			MaxImageEdge:   1568,
			FFmpegBinary:   "ffmpeg",
			UndoDepth:      64,
		},
		Render: Render{
			Enabled: true,
			Binary:  "chafa",
			Args:    []string{"--size", "80x24"},
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
