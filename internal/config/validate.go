package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if c.Batch.Jobs < 1 {
		return errors.New("batch.jobs must be at least 1")
	}
	return c.validateLogging()
}

func (c *Config) validateOutput() error {
	if !strings.Contains(c.Output.ImagePattern, "{index}") {
		return errors.New("output.image_pattern must contain {index}")
	}
	if c.Output.MetadataPattern == "" {
		return errors.New("output.metadata_pattern must be set")
	}
	for _, p := range []string{c.Output.ImagePattern, c.Output.MetadataPattern} {
		if strings.ContainsAny(p, `/\`) {
			return fmt.Errorf("output pattern %q must be a file name, not a path", p)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
