// Package enhance drives one asset through the enhancement pipeline:
// resolve the best stack source, download it, invoke the external transform
// and tag-copy collaborators, upload the boosted result, and stack it with
// the original. Every step is a hard gate except stacking, which is
// best-effort cosmetic organization.
package enhance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"boostd/internal/immich"
	"boostd/internal/logging"
)

// ErrAlreadyBoosted marks a source that is itself a derived copy; the
// attempt is abandoned without retry.
var ErrAlreadyBoosted = errors.New("source asset is already a boosted copy")

// StoreClient is the slice of the remote store API the orchestrator uses.
type StoreClient interface {
	Download(ctx context.Context, assetID, destPath string) error
	Upload(ctx context.Context, upload immich.UploadRequest) (string, error)
	CreateStack(ctx context.Context, primaryID, childID string) error
}

// Resolver picks the authoritative source within the candidate's stack.
type Resolver interface {
	Resolve(ctx context.Context, candidate immich.Asset) (immich.Asset, string)
}

// Transformer is the external enhancement collaborator.
type Transformer interface {
	Boost(ctx context.Context, inputPath, outputPath string) error
}

// TagWriter is the external metadata-copy collaborator.
type TagWriter interface {
	CopyTags(ctx context.Context, srcPath, dstPath string) error
}

// Orchestrator processes one asset at a time; it holds no mutable state
// between invocations.
type Orchestrator struct {
	client          StoreClient
	resolver        Resolver
	transformer     Transformer
	tags            TagWriter
	scratchDir      string
	downloadTimeout time.Duration
	logger          *slog.Logger
	now             func() time.Time
}

// New constructs an Orchestrator.
func New(client StoreClient, resolver Resolver, transformer Transformer, tags TagWriter, scratchDir string, downloadTimeout time.Duration, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		client:          client,
		resolver:        resolver,
		transformer:     transformer,
		tags:            tags,
		scratchDir:      scratchDir,
		downloadTimeout: downloadTimeout,
		logger:          logging.NewComponentLogger(logger, "enhance"),
		now:             time.Now,
	}
}

// Process runs the candidate through the full pipeline. A nil return means
// the boosted copy was uploaded and the caller should mark the candidate
// processed. Scratch files are removed on every exit path.
func (o *Orchestrator) Process(ctx context.Context, candidate immich.Asset) error {
	source, primaryID := o.resolver.Resolve(ctx, candidate)

	if IsBoosted(source) {
		return fmt.Errorf("%w: %s", ErrAlreadyBoosted, source.FileName())
	}

	inputPath := filepath.Join(o.scratchDir, source.ID+scratchExt(source.FileName()))
	outputName := OutputName(source.FileName())
	outputPath := filepath.Join(o.scratchDir, source.ID+Marker+".mp4")
	defer o.cleanupScratch(inputPath, outputPath)

	logger := o.logger.With(
		logging.String(logging.FieldAssetID, source.ID),
		logging.String(logging.FieldStackParentID, primaryID),
	)

	logger.Info("downloading source",
		logging.String("file_name", source.FileName()),
		logging.String("size", humanize.Bytes(uint64(max(source.FileSize(), 0)))),
	)
	downloadCtx, cancel := context.WithTimeout(ctx, o.downloadTimeout)
	err := o.client.Download(downloadCtx, source.ID, inputPath)
	cancel()
	if err != nil {
		return fmt.Errorf("download source: %w", err)
	}

	logger.Info("boosting video")
	if err := o.transformer.Boost(ctx, inputPath, outputPath); err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	if err := o.tags.CopyTags(ctx, inputPath, outputPath); err != nil {
		return fmt.Errorf("tag copy: %w", err)
	}

	upload := immich.UploadRequest{
		FilePath:       outputPath,
		FileName:       outputName,
		DeviceAssetID:  o.mintDeviceAssetID(source),
		DeviceID:       source.DeviceID,
		FileCreatedAt:  source.FileCreatedAt,
		FileModifiedAt: source.FileModifiedAt,
		IsFavorite:     source.IsFavorite,
		Duration:       source.Duration,
	}
	newID, err := o.client.Upload(ctx, upload)
	if err != nil {
		return fmt.Errorf("upload boosted copy: %w", err)
	}
	logger.Info("boosted copy uploaded",
		logging.String("new_asset_id", newID),
		logging.String("file_name", outputName),
	)

	// The boosted asset already exists and is safe; a rejected stack call
	// (e.g. the primary is already stacked) only loses the organizational
	// link.
	if err := o.client.CreateStack(ctx, primaryID, newID); err != nil {
		logging.WarnWithContext(logger, "stacking boosted copy failed", "stack_create_failed",
			logging.Error(err),
			logging.String("new_asset_id", newID),
			logging.String(logging.FieldImpact, "boosted copy uploaded but not stacked with the original"),
		)
	}

	return nil
}

// mintDeviceAssetID derives a device asset id that can never collide with an
// existing device record, even across retries.
func (o *Orchestrator) mintDeviceAssetID(source immich.Asset) string {
	return fmt.Sprintf("%s-boosted-%d", source.DeviceAssetID, o.now().Unix())
}

func (o *Orchestrator) cleanupScratch(paths ...string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.WarnWithContext(o.logger, "scratch cleanup failed", "scratch_cleanup_failed",
				logging.Error(err),
				logging.String("path", path),
				logging.String(logging.FieldImpact, "stale scratch file left behind"),
			)
		}
	}
}
