package processed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Record is one durable (asset id, processed-at) pair.
type Record struct {
	AssetID     string
	ProcessedAt time.Time
}

// Contains reports whether the asset has already been processed.
func (s *Store) Contains(ctx context.Context, assetID string) (bool, error) {
	if assetID == "" {
		return false, errors.New("asset id is required")
	}
	ctx = ensureContext(ctx)
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM processed_assets WHERE asset_id = ?", assetID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query processed set: %w", err)
	}
	return true, nil
}

// MarkProcessed records the asset as handled. The upsert is idempotent:
// re-marking overwrites the timestamp and is not an error. The write is
// committed before return.
func (s *Store) MarkProcessed(ctx context.Context, assetID string) error {
	if assetID == "" {
		return errors.New("asset id is required")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	err := s.execWithRetry(ctx,
		`INSERT INTO processed_assets (asset_id, processed_at) VALUES (?, ?)
		 ON CONFLICT(asset_id) DO UPDATE SET processed_at = excluded.processed_at`,
		assetID, now,
	)
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

// List returns all records, most recently processed first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT asset_id, processed_at FROM processed_assets ORDER BY processed_at DESC, asset_id",
	)
	if err != nil {
		return nil, fmt.Errorf("list processed set: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		var stamp string
		if err := rows.Scan(&record.AssetID, &stamp); err != nil {
			return nil, fmt.Errorf("scan processed record: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339, stamp); parseErr == nil {
			record.ProcessedAt = parsed
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate processed set: %w", err)
	}
	return records, nil
}

// Count returns the number of processed assets.
func (s *Store) Count(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM processed_assets").Scan(&count); err != nil {
		return 0, fmt.Errorf("count processed set: %w", err)
	}
	return count, nil
}

// Remove deletes a single record, reporting whether it existed.
func (s *Store) Remove(ctx context.Context, assetID string) (bool, error) {
	if assetID == "" {
		return false, errors.New("asset id is required")
	}
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, "DELETE FROM processed_assets WHERE asset_id = ?", assetID)
		return execErr
	}); err != nil {
		return false, fmt.Errorf("remove processed record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove processed record: %w", err)
	}
	return affected > 0, nil
}

// Clear removes every record and returns the number deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, "DELETE FROM processed_assets")
		return execErr
	}); err != nil {
		return 0, fmt.Errorf("clear processed set: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear processed set: %w", err)
	}
	return affected, nil
}
