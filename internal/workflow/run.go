package workflow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"boostd/internal/enhance"
	"boostd/internal/immich"
	"boostd/internal/logging"
)

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	limitLogged := false
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if m.debugLimitReached() {
			if !limitLogged {
				m.logger.Info("debug item limit reached; idling",
					logging.Int("item_limit", m.cfg.Debug.ItemLimit),
				)
				limitLogged = true
			}
			if !m.sleepFor(ctx, m.idlePoll()) {
				return
			}
			continue
		}

		if !m.window.IsOpen(m.now()) {
			if !m.sleepFor(ctx, m.gateRecheck()) {
				return
			}
			continue
		}

		processedCount, err := m.runBatch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
			logging.ErrorWithContext(m.logger, "discovery sweep failed", "discovery_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check remote store availability and API key"),
			)
			if !m.sleepFor(ctx, m.errorCooldown()) {
				return
			}
			continue
		}
		if processedCount == 0 {
			if !m.sleepFor(ctx, m.idlePoll()) {
				return
			}
		}
	}
}

// runBatch performs one discovery sweep and returns how many candidates were
// boosted. A candidate failure never aborts the sweep; only search failures
// and shutdown do.
func (m *Manager) runBatch(ctx context.Context) (int, error) {
	assets, err := m.searcher.SearchVideos(ctx)
	if err != nil {
		return 0, fmt.Errorf("search videos: %w", err)
	}
	slices.SortFunc(assets, func(a, b immich.Asset) int {
		return strings.Compare(b.FileCreatedAt, a.FileCreatedAt)
	})
	m.logger.Info("discovery sweep", logging.Int("candidates", len(assets)))

	count := 0
	for i := range assets {
		select {
		case <-ctx.Done():
			return count, ctx.Err()
		default:
		}
		if !m.window.IsOpen(m.now()) {
			m.logger.Info("processing window closed; stopping sweep",
				logging.Int("boosted_this_sweep", count),
			)
			return count, nil
		}

		boosted, err := m.processCandidate(ctx, assets[i])
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return count, err
			}
			m.setLastError(err)
			logging.ErrorWithContext(m.logger, "candidate processing failed", "candidate_failed",
				logging.Error(err),
				logging.String(logging.FieldAssetID, assets[i].ID),
				logging.String("file_name", assets[i].FileName()),
				logging.String(logging.FieldImpact, "asset left unprocessed until the next sweep"),
			)
			if !m.sleepFor(ctx, m.errorCooldown()) {
				return count, ctx.Err()
			}
			continue
		}
		if !boosted {
			continue
		}
		count++
		m.recordSuccess()
		if m.debugLimitReached() {
			return count, nil
		}
		if !m.sleepFor(ctx, m.successPacing()) {
			return count, ctx.Err()
		}
	}
	return count, nil
}

// processCandidate returns true when the candidate was boosted and uploaded.
// Skips (already processed, marker match, device filter mismatch) return
// false with a nil error.
func (m *Manager) processCandidate(ctx context.Context, candidate immich.Asset) (bool, error) {
	done, err := m.alreadyProcessed(ctx, candidate)
	if err != nil {
		return false, err
	}
	if done {
		return false, nil
	}

	if enhance.IsBoosted(candidate) {
		m.logger.Debug("skipping boosted copy",
			logging.String(logging.FieldAssetID, candidate.ID),
			logging.String("file_name", candidate.FileName()),
		)
		m.markProcessed(ctx, candidate.ID)
		return false, nil
	}

	if !m.deviceMatches(candidate) {
		return false, nil
	}

	m.setLastAsset(&candidate)
	m.logger.Info("processing candidate",
		logging.String(logging.FieldAssetID, candidate.ID),
		logging.String("file_name", candidate.FileName()),
		logging.String("device_model", candidate.DeviceModel()),
	)

	if err := m.processor.Process(ctx, candidate); err != nil {
		if errors.Is(err, enhance.ErrAlreadyBoosted) {
			m.logger.Info("stack already holds a boosted copy; marking candidate done",
				logging.String(logging.FieldAssetID, candidate.ID),
			)
			m.markCandidateDone(ctx, candidate)
			return false, nil
		}
		return false, err
	}

	m.markCandidateDone(ctx, candidate)
	return true, nil
}

// alreadyProcessed also consults the stack parent so siblings of a handled
// stack are not boosted a second time.
func (m *Manager) alreadyProcessed(ctx context.Context, candidate immich.Asset) (bool, error) {
	done, err := m.store.Contains(ctx, candidate.ID)
	if err != nil || done {
		return done, err
	}
	if candidate.StackParentID != "" && candidate.StackParentID != candidate.ID {
		return m.store.Contains(ctx, candidate.StackParentID)
	}
	return false, nil
}

func (m *Manager) markCandidateDone(ctx context.Context, candidate immich.Asset) {
	m.markProcessed(ctx, candidate.ID)
	if candidate.StackParentID != "" && candidate.StackParentID != candidate.ID {
		m.markProcessed(ctx, candidate.StackParentID)
	}
}

func (m *Manager) markProcessed(ctx context.Context, assetID string) {
	if err := m.store.MarkProcessed(ctx, assetID); err != nil {
		logging.WarnWithContext(m.logger, "failed to record processed asset", "mark_processed_failed",
			logging.Error(err),
			logging.String(logging.FieldAssetID, assetID),
			logging.String(logging.FieldImpact, "asset may be boosted again on a later sweep"),
		)
	}
}

func (m *Manager) deviceMatches(candidate immich.Asset) bool {
	filter := strings.TrimSpace(m.cfg.Immich.DeviceFilter)
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(candidate.DeviceModel()), strings.ToLower(filter))
}

func (m *Manager) debugLimitReached() bool {
	return m.cfg.Debug.Enabled && m.cfg.Debug.ItemLimit > 0 && m.successCount() >= m.cfg.Debug.ItemLimit
}

// sleepFor waits out the interval; the false return means shutdown.
func (m *Manager) sleepFor(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (m *Manager) gateRecheck() time.Duration {
	return time.Duration(m.cfg.Workflow.GateRecheckInterval) * time.Second
}

func (m *Manager) idlePoll() time.Duration {
	return time.Duration(m.cfg.Workflow.IdlePollInterval) * time.Second
}

func (m *Manager) errorCooldown() time.Duration {
	return time.Duration(m.cfg.Workflow.ErrorCooldown) * time.Second
}

func (m *Manager) successPacing() time.Duration {
	return time.Duration(m.cfg.Workflow.SuccessPacing) * time.Second
}
