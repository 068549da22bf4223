package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.RootDir, err = expandPath(c.Paths.RootDir); err != nil {
		return err
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)

	c.Render.Binary = strings.TrimSpace(c.Render.Binary)
	c.Generate.FFmpegBinary = strings.TrimSpace(c.Generate.FFmpegBinary)

	cleaned := c.Scan.IgnoreDirs[:0]
	for _, dir := range c.Scan.IgnoreDirs {
		if trimmed := strings.TrimSpace(dir); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	c.Scan.IgnoreDirs = cleaned

	return nil
}
