package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeImmich()
	c.normalizeWindow()
	c.normalizeBoost()
	c.normalizeWorkflow()
	c.normalizeLogging()
	c.normalizeDebug()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeImmich() {
	c.Immich.URL = strings.TrimRight(strings.TrimSpace(c.Immich.URL), "/")
	c.Immich.APIKey = strings.TrimSpace(c.Immich.APIKey)
	if c.Immich.APIKey == "" {
		if value, ok := os.LookupEnv("IMMICH_API_KEY"); ok {
			c.Immich.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Immich.URL == "" {
		if value, ok := os.LookupEnv("IMMICH_URL"); ok {
			c.Immich.URL = strings.TrimRight(strings.TrimSpace(value), "/")
		}
	}
	c.Immich.DeviceFilter = strings.TrimSpace(c.Immich.DeviceFilter)
}

func (c *Config) normalizeWindow() {
	c.Window.Start = strings.TrimSpace(c.Window.Start)
	if c.Window.Start == "" {
		c.Window.Start = defaultWindowStart
	}
	c.Window.End = strings.TrimSpace(c.Window.End)
	if c.Window.End == "" {
		c.Window.End = defaultWindowEnd
	}
}

func (c *Config) normalizeBoost() {
	c.Boost.Script = strings.TrimSpace(c.Boost.Script)
	if c.Boost.Script == "" {
		c.Boost.Script = defaultBoostScript
	}
	c.Boost.VSPipeBinary = strings.TrimSpace(c.Boost.VSPipeBinary)
	if c.Boost.VSPipeBinary == "" {
		c.Boost.VSPipeBinary = defaultVSPipeBinary
	}
	c.Boost.FFmpegBinary = strings.TrimSpace(c.Boost.FFmpegBinary)
	if c.Boost.FFmpegBinary == "" {
		c.Boost.FFmpegBinary = defaultFFmpegBinary
	}
	c.Boost.ExiftoolBinary = strings.TrimSpace(c.Boost.ExiftoolBinary)
	if c.Boost.ExiftoolBinary == "" {
		c.Boost.ExiftoolBinary = defaultExiftoolBinary
	}
	if c.Boost.DownloadTimeout <= 0 {
		c.Boost.DownloadTimeout = defaultDownloadTimeout
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.GateRecheckInterval <= 0 {
		c.Workflow.GateRecheckInterval = defaultGateRecheckInterval
	}
	if c.Workflow.IdlePollInterval <= 0 {
		c.Workflow.IdlePollInterval = defaultIdlePollInterval
	}
	if c.Workflow.ErrorCooldown <= 0 {
		c.Workflow.ErrorCooldown = defaultErrorCooldown
	}
	if c.Workflow.SuccessPacing < 0 {
		c.Workflow.SuccessPacing = defaultSuccessPacing
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeDebug() {
	if c.Debug.ItemLimit <= 0 {
		c.Debug.ItemLimit = defaultDebugItemLimit
	}
}
