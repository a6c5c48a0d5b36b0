package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"kiln/internal/config"
	"kiln/internal/journal"
	"kiln/internal/logging"
	"kiln/internal/specfile"
)

type globalFlags struct {
	config    string
	logLevel  string
	logFormat string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the logger once, writing to the command's stderr.
// Flags take precedence over the [logging] section.
func (c *commandContext) ensureLogger(errOut io.Writer) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		level, format := c.flags.logLevel, c.flags.logFormat
		if cfg, err := c.ensureConfig(); err == nil {
			if level == "" {
				level = cfg.Logging.Level
			}
			if format == "" {
				format = cfg.Logging.Format
			}
		}
		if !logging.ValidLevel(level) {
			c.loggerErr = fmt.Errorf("log level: unsupported value %q", level)
			return
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:  level,
			Format: format,
			Output: errOut,
		})
	})
	return c.logger, c.loggerErr
}

// setup returns the config and logger every working command needs.
func (c *commandContext) setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// openJournal returns nil without error when the journal is disabled.
func (c *commandContext) openJournal(cfg *config.Config) (*journal.Journal, error) {
	if !cfg.Journal.Enabled {
		return nil, nil
	}
	return journal.Open(cfg.Journal.Path)
}

// readSpec loads and parses a spec file using the configured parser options.
func readSpec(path string, cfg *config.Config, logger *slog.Logger) ([]specfile.Section, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(expanded)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("spec file %s not found", expanded)
		}
		return nil, fmt.Errorf("read spec file: %w", err)
	}
	return specfile.Parse(string(content), specfile.Options{
		Images:        specfile.PolicyLoader(cfg.ImagePolicy()),
		AllowTrailing: cfg.Parser.AllowTrailing,
		NormalizeText: cfg.Text.Normalize,
		Logger:        logging.NewComponentLogger(logger, "parser").With(logging.String("spec", filepath.Base(expanded))),
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
