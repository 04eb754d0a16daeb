// Package daemonrun bootstraps the boostd runtime: logging, pid and lock
// files, the processed-set store, the remote store client, and the workflow
// manager, wired together for either daemon or one-shot execution.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"boostd/internal/config"
	"boostd/internal/daemon"
	"boostd/internal/deps"
	"boostd/internal/enhance"
	"boostd/internal/immich"
	"boostd/internal/logging"
	"boostd/internal/processed"
	"boostd/internal/services/exiftool"
	"boostd/internal/services/vspipe"
	"boostd/internal/stacks"
	"boostd/internal/timewindow"
	"boostd/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
	Debug    bool
}

// Run starts the boostd daemon loop and blocks until SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if opts.Debug {
		cfg.Debug.Enabled = true
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, logPath, err := newRunLogger(cfg, opts)
	if err != nil {
		return err
	}
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update boostd.log link: %v\n", err)
	}
	logDependencySnapshot(logger, cfg)

	pidPath := filepath.Join(cfg.Paths.StateDir, "boostd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := processed.Open(cfg)
	if err != nil {
		logger.Error("open processed store", logging.Error(err))
		return err
	}
	defer store.Close()

	manager, err := buildManager(cfg, store, logger, cfg.Debug.Enabled)
	if err != nil {
		return err
	}

	d, err := daemon.New(cfg, store, logger, manager)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-signalCtx.Done()
	logger.Info("boostd daemon shutting down")
	return nil
}

// RunOnce performs a single discovery sweep, ignoring the processing window,
// and returns once the sweep completes.
func RunOnce(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if opts.Debug {
		cfg.Debug.Enabled = true
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// One-shot sweeps skip the per-run log files the daemon keeps; stdout
	// plus the shared boostd.log is enough for an interactive invocation.
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if cfg.Debug.Enabled {
		cfg.Logging.Level = "debug"
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	logDependencySnapshot(logger, cfg)

	store, err := processed.Open(cfg)
	if err != nil {
		logger.Error("open processed store", logging.Error(err))
		return err
	}
	defer store.Close()

	manager, err := buildManager(cfg, store, logger, true)
	if err != nil {
		return err
	}

	boosted, err := manager.RunOnce(signalCtx)
	if err != nil {
		return fmt.Errorf("run sweep: %w", err)
	}
	logger.Info("sweep complete", logging.Int("boosted", boosted))
	return nil
}

// buildManager wires the remote store client, resolver, external transforms,
// and orchestrator into a workflow manager. forceOpen bypasses the
// processing window.
func buildManager(cfg *config.Config, store *processed.Store, logger *slog.Logger, forceOpen bool) (*workflow.Manager, error) {
	// Downloads and uploads of full videos run far past the default request
	// timeout; the per-operation contexts bound them instead.
	client, err := immich.New(cfg.Immich.URL, cfg.Immich.APIKey,
		immich.WithTimeout(time.Duration(cfg.Boost.DownloadTimeout)*time.Second))
	if err != nil {
		return nil, fmt.Errorf("create remote store client: %w", err)
	}

	window, err := timewindow.Parse(cfg.Window.Start, cfg.Window.End, forceOpen)
	if err != nil {
		return nil, fmt.Errorf("parse processing window: %w", err)
	}

	runner := vspipe.NewRunner(cfg.Boost.Script,
		vspipe.Watermark{
			Enabled: cfg.Watermark.Enabled,
			Text:    cfg.Watermark.Text,
			Opacity: cfg.Watermark.Opacity,
		},
		vspipe.WithVSPipeBinary(cfg.Boost.VSPipeBinary),
		vspipe.WithFFmpegBinary(cfg.Boost.FFmpegBinary),
	)
	copier := exiftool.NewCopier(exiftool.WithBinary(cfg.Boost.ExiftoolBinary))

	resolver := stacks.NewResolver(client, logger)
	orchestrator := enhance.New(client, resolver, runner, copier,
		cfg.Paths.ScratchDir,
		time.Duration(cfg.Boost.DownloadTimeout)*time.Second,
		logger,
	)

	return workflow.NewManager(cfg, store, client, orchestrator, window, logger), nil
}

func newRunLogger(cfg *config.Config, opts Options) (*slog.Logger, string, error) {
	runID := time.Now().UTC().Format("20060102T150405.000Z")
	outputs := []string{"stdout"}
	var logPath string
	if cfg.Paths.LogDir != "" {
		if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
			return nil, "", fmt.Errorf("create log directory: %w", err)
		}
		logPath = filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("boostd-%s.log", runID))
		outputs = append(outputs, logPath)
	}

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	var sessionID string
	if opts.Debug || cfg.Debug.Enabled {
		level = "debug"
		sessionID = uuid.NewString()
	}

	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
		SessionID:   sessionID,
	})
	if err != nil {
		return nil, "", fmt.Errorf("init logger: %w", err)
	}
	return logger, logPath, nil
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "boostd.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Bool("api_key_present", strings.TrimSpace(cfg.Immich.APIKey) != ""),
	}
	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		key := strings.ToLower(status.Name)
		attrs = append(attrs,
			logging.Bool(key+"_available", status.Available),
			logging.String(key+"_binary", status.Command),
		)
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}
