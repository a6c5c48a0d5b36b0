package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSet()
	c.normalizeCover()
	c.Merge.Conflict = strings.ToLower(strings.TrimSpace(c.Merge.Conflict))
	if c.Merge.Conflict == "" {
		c.Merge.Conflict = defaultConflictPolicy
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Journal.Path) == "" {
		c.Journal.Path = defaultJournalPath
	}
	if c.Journal.Path, err = expandPath(c.Journal.Path); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeSet() {
	preserve := make([]string, 0, len(c.Set.Preserve))
	for _, id := range c.Set.Preserve {
		if id = strings.TrimSpace(id); id != "" {
			preserve = append(preserve, id)
		}
	}
	c.Set.Preserve = preserve

	extensions := make([]string, 0, len(c.Set.Extensions))
	seen := make(map[string]struct{}, len(c.Set.Extensions))
	for _, ext := range c.Set.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, dup := seen[ext]; dup {
			continue
		}
		seen[ext] = struct{}{}
		extensions = append(extensions, ext)
	}
	if len(extensions) == 0 {
		extensions = append(extensions, defaultExtensions...)
	}
	c.Set.Extensions = extensions
}

func (c *Config) normalizeCover() {
	c.Cover.Format = strings.ToLower(strings.TrimSpace(c.Cover.Format))
	switch c.Cover.Format {
	case "":
		c.Cover.Format = defaultCoverFormat
	case "jpg":
		c.Cover.Format = "jpeg"
	}
	if c.Cover.Quality == 0 {
		c.Cover.Quality = defaultCoverQuality
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
