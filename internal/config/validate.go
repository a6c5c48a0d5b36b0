package config

import (
	"errors"
	"fmt"

	"kiln/internal/tags"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSet(); err != nil {
		return err
	}
	if err := c.validateMerge(); err != nil {
		return err
	}
	if err := c.ImagePolicy().Validate(); err != nil {
		return fmt.Errorf("cover: %w", err)
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSet() error {
	if c.Set.Workers < 0 {
		return errors.New("set.workers must be zero (one per CPU) or positive")
	}
	if _, err := c.PreserveSet(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMerge() error {
	switch c.Merge.Conflict {
	case "last", "first", "error":
		return nil
	default:
		return fmt.Errorf("merge.conflict must be one of last, first or error (got %q)", c.Merge.Conflict)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn or error (got %q)", c.Logging.Level)
	}
	return nil
}

// PreserveSet resolves set.preserve into identifiers.
func (c *Config) PreserveSet() (tags.IdentifierSet, error) {
	set := make(tags.IdentifierSet, len(c.Set.Preserve))
	for _, value := range c.Set.Preserve {
		id, err := tags.LookupIdentifier(value)
		if err != nil {
			return nil, fmt.Errorf("set.preserve: %w", err)
		}
		set[id] = struct{}{}
	}
	return set, nil
}

// ImagePolicy returns the cover encoding policy.
func (c *Config) ImagePolicy() tags.ImagePolicy {
	return tags.ImagePolicy{
		Format:      c.Cover.Format,
		Quality:     c.Cover.Quality,
		Description: c.Cover.Description,
	}
}
