// Package stacks resolves a candidate asset to the authoritative source file
// within its stack. The remote store often holds near-duplicate uploads of
// the same footage at different compression levels; the strictly largest
// exif-reported file size is used as the fidelity proxy. That is a heuristic,
// not a verified quality metric, and is documented as such.
//
// Resolution is recomputed on every invocation and never cached: stack
// composition can change between runs through deduplication events outside
// this system's control.
package stacks

import (
	"context"
	"log/slog"

	"boostd/internal/immich"
	"boostd/internal/logging"
)

// AssetFetcher is the narrow slice of the store client the resolver needs.
type AssetFetcher interface {
	GetAsset(ctx context.Context, assetID string) (immich.Asset, error)
}

// Resolver picks the best source file within an asset's stack.
type Resolver struct {
	fetcher AssetFetcher
	logger  *slog.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(fetcher AssetFetcher, logger *slog.Logger) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		logger:  logging.NewComponentLogger(logger, "stacks"),
	}
}

// Resolve returns the highest-fidelity source asset for the candidate and the
// id of the stack's primary member. Resolution failure never aborts the
// pipeline: on any fetch error it degrades to the candidate itself, skipping
// only the pick-best-sibling optimization.
func (r *Resolver) Resolve(ctx context.Context, candidate immich.Asset) (immich.Asset, string) {
	primaryID := candidate.StackParentID
	if primaryID == "" {
		primaryID = candidate.ID
	}

	primary, err := r.fetcher.GetAsset(ctx, primaryID)
	if err != nil {
		logging.WarnWithContext(r.logger, "stack primary fetch failed; using candidate as source", "stack_primary_fetch_failed",
			logging.Error(err),
			logging.String(logging.FieldAssetID, candidate.ID),
			logging.String(logging.FieldStackParentID, primaryID),
			logging.String(logging.FieldImpact, "best-sibling selection skipped for this asset"),
		)
		return candidate, candidate.ID
	}

	pool := make([]immich.Asset, 0, 1+len(primary.Stack))
	pool = append(pool, primary)
	pool = append(pool, primary.Stack...)

	var (
		best     immich.Asset
		bestSize int64 = -1
	)
	for _, member := range pool {
		// Sizes from list/search responses are untrusted; re-fetch each
		// member for an authoritative record.
		full, err := r.fetcher.GetAsset(ctx, member.ID)
		if err != nil {
			r.logger.Debug("stack member fetch failed; skipping",
				logging.Error(err),
				logging.String(logging.FieldAssetID, member.ID),
			)
			continue
		}
		if full.FileSize() > bestSize {
			best = full
			bestSize = full.FileSize()
		}
	}

	if bestSize < 0 {
		return candidate, primaryID
	}

	r.logger.Debug("stack resolved",
		logging.String(logging.FieldAssetID, candidate.ID),
		logging.String(logging.FieldStackParentID, primaryID),
		logging.String("source_id", best.ID),
		logging.Int64("source_size", bestSize),
		logging.Int("pool_size", len(pool)),
	)
	return best, primaryID
}
