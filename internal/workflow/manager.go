// Package workflow runs the nightly discovery loop: wait for the
// processing window, sweep the remote store for video candidates, and
// hand each new one to the enhancement pipeline.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"boostd/internal/config"
	"boostd/internal/immich"
	"boostd/internal/logging"
	"boostd/internal/processed"
	"boostd/internal/timewindow"
)

// Searcher lists the remote store's video assets.
type Searcher interface {
	SearchVideos(ctx context.Context) ([]immich.Asset, error)
}

// Processor runs a single candidate through the enhancement pipeline.
type Processor interface {
	Process(ctx context.Context, candidate immich.Asset) error
}

// Manager coordinates the discovery loop in a single background goroutine.
type Manager struct {
	cfg       *config.Config
	store     *processed.Store
	searcher  Searcher
	processor Processor
	window    timewindow.Window
	logger    *slog.Logger
	now       func() time.Time

	mu        sync.RWMutex
	running   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	lastErr   error
	lastAsset *immich.Asset
	successes int
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, store *processed.Store, searcher Searcher, processor Processor, window timewindow.Window, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:       cfg,
		store:     store,
		searcher:  searcher,
		processor: processor,
		window:    window,
		logger:    logging.NewComponentLogger(logger, "workflow"),
		now:       time.Now,
	}
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// RunOnce performs a single discovery sweep on the caller's goroutine and
// returns how many candidates were boosted. It does not touch the
// background loop; callers wanting the sweep to ignore the processing
// window construct the manager with a force-open window.
func (m *Manager) RunOnce(ctx context.Context) (int, error) {
	return m.runBatch(ctx)
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running        bool
	WindowOpen     bool
	LastError      string
	LastAsset      *immich.Asset
	ProcessedTotal int64
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	running := m.running
	lastErr := m.lastErr
	lastAsset := m.lastAsset
	m.mu.RUnlock()

	total, err := m.store.Count(ctx)
	if err != nil {
		m.logger.Warn("failed to read processed count", logging.Error(err))
	}

	summary := StatusSummary{
		Running:        running,
		WindowOpen:     m.window.IsOpen(m.now()),
		ProcessedTotal: total,
	}
	if lastErr != nil {
		summary.LastError = lastErr.Error()
	}
	if lastAsset != nil {
		copy := *lastAsset
		summary.LastAsset = &copy
	}
	return summary
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastAsset(asset *immich.Asset) {
	m.mu.Lock()
	if asset != nil {
		copy := *asset
		m.lastAsset = &copy
	} else {
		m.lastAsset = nil
	}
	m.mu.Unlock()
}

func (m *Manager) recordSuccess() int {
	m.mu.Lock()
	m.successes++
	n := m.successes
	m.mu.Unlock()
	return n
}

func (m *Manager) successCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.successes
}
