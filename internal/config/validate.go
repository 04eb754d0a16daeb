package config

import (
	"errors"
	"fmt"
	"strings"

	"boostd/internal/timewindow"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateImmich(); err != nil {
		return err
	}
	if err := c.validateWindow(); err != nil {
		return err
	}
	if err := c.validateWatermark(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateImmich() error {
	if c.Immich.URL == "" {
		return errors.New("immich.url is required. Set IMMICH_URL or edit the config file (create with 'boostd config init')")
	}
	if !strings.HasPrefix(c.Immich.URL, "http://") && !strings.HasPrefix(c.Immich.URL, "https://") {
		return fmt.Errorf("immich.url must be an http(s) URL, got %q", c.Immich.URL)
	}
	if c.Immich.APIKey == "" {
		return errors.New("immich.api_key is required. Set IMMICH_API_KEY or edit the config file")
	}
	return nil
}

func (c *Config) validateWindow() error {
	if _, err := timewindow.ParseClock(c.Window.Start); err != nil {
		return fmt.Errorf("window.start: %w", err)
	}
	if _, err := timewindow.ParseClock(c.Window.End); err != nil {
		return fmt.Errorf("window.end: %w", err)
	}
	return nil
}

func (c *Config) validateWatermark() error {
	if !c.Watermark.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Watermark.Text) == "" {
		return errors.New("watermark.text must be set when watermark.enabled is true")
	}
	if c.Watermark.Opacity <= 0 || c.Watermark.Opacity > 1 {
		return errors.New("watermark.opacity must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	values := map[string]int{
		"workflow.gate_recheck_interval": c.Workflow.GateRecheckInterval,
		"workflow.idle_poll_interval":    c.Workflow.IdlePollInterval,
		"workflow.error_cooldown":        c.Workflow.ErrorCooldown,
	}
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.Workflow.SuccessPacing < 0 {
		return errors.New("workflow.success_pacing must not be negative")
	}
	if c.Boost.DownloadTimeout <= 0 {
		return errors.New("boost.download_timeout must be positive (seconds)")
	}
	return nil
}
