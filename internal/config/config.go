package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Immich contains connection settings for the remote media store.
type Immich struct {
	URL          string `toml:"url"`
	APIKey       string `toml:"api_key"`
	DeviceFilter string `toml:"device_filter"`
}

// Paths contains directory configuration.
type Paths struct {
	ScratchDir string `toml:"scratch_dir"`
	StateDir   string `toml:"state_dir"`
	LogDir     string `toml:"log_dir"`
}

// Window contains the nightly processing window bounds as "HH:MM" strings.
type Window struct {
	Start string `toml:"start"`
	End   string `toml:"end"`
}

// Boost contains settings for the external enhancement pipeline.
type Boost struct {
	Script          string `toml:"script"`
	VSPipeBinary    string `toml:"vspipe_binary"`
	FFmpegBinary    string `toml:"ffmpeg_binary"`
	ExiftoolBinary  string `toml:"exiftool_binary"`
	DownloadTimeout int    `toml:"download_timeout"`
}

// Watermark contains the overlay applied during encode.
type Watermark struct {
	Enabled bool    `toml:"enabled"`
	Text    string  `toml:"text"`
	Opacity float64 `toml:"opacity"`
}

// Workflow contains discovery loop timing, in seconds.
type Workflow struct {
	GateRecheckInterval int `toml:"gate_recheck_interval"`
	IdlePollInterval    int `toml:"idle_poll_interval"`
	ErrorCooldown       int `toml:"error_cooldown"`
	SuccessPacing       int `toml:"success_pacing"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Debug contains interactive testing overrides. When enabled the time window
// is bypassed entirely and processing stops after ItemLimit successes.
type Debug struct {
	Enabled   bool `toml:"enabled"`
	ItemLimit int  `toml:"item_limit"`
}

// Config encapsulates all configuration values for boostd.
type Config struct {
	Immich    Immich    `toml:"immich"`
	Paths     Paths     `toml:"paths"`
	Window    Window    `toml:"window"`
	Boost     Boost     `toml:"boost"`
	Watermark Watermark `toml:"watermark"`
	Workflow  Workflow  `toml:"workflow"`
	Logging   Logging   `toml:"logging"`
	Debug     Debug     `toml:"debug"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/boostd/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a config file existed at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("boostd.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ScratchDir, c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StorePath returns the location of the processed-set database.
func (c *Config) StorePath() string {
	return filepath.Join(c.Paths.StateDir, "processed.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
