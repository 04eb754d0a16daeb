package processed_test

import (
	"context"
	"fmt"
	"testing"

	"boostd/internal/testsupport"
)

func TestMarkProcessedIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.MarkProcessed(ctx, "asset-1"); err != nil {
		t.Fatalf("MarkProcessed failed: %v", err)
	}
	first, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected one record, got %d", len(first))
	}

	if err := store.MarkProcessed(ctx, "asset-1"); err != nil {
		t.Fatalf("second MarkProcessed failed: %v", err)
	}
	second, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("expected one record after re-mark, got %d", len(second))
	}
	if second[0].ProcessedAt.Before(first[0].ProcessedAt) {
		t.Fatalf("expected latest timestamp to win: first=%v second=%v", first[0].ProcessedAt, second[0].ProcessedAt)
	}
}

func TestContains(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	ok, err := store.Contains(ctx, "missing")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if ok {
		t.Fatal("expected missing asset to be absent")
	}

	if err := store.MarkProcessed(ctx, "asset-2"); err != nil {
		t.Fatalf("MarkProcessed failed: %v", err)
	}
	ok, err = store.Contains(ctx, "asset-2")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if !ok {
		t.Fatal("expected marked asset to be present")
	}
}

func TestMarkProcessedSurvivesReopen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.MarkProcessed(ctx, "asset-3"); err != nil {
		t.Fatalf("MarkProcessed failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	ok, err := reopened.Contains(ctx, "asset-3")
	if err != nil {
		t.Fatalf("Contains after reopen failed: %v", err)
	}
	if !ok {
		t.Fatal("expected record to survive reopen")
	}
}

func TestRemoveAndClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.MarkProcessed(ctx, fmt.Sprintf("asset-%d", i)); err != nil {
			t.Fatalf("MarkProcessed failed: %v", err)
		}
	}

	removed, err := store.Remove(ctx, "asset-1")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !removed {
		t.Fatal("expected Remove to report a deletion")
	}
	removed, err = store.Remove(ctx, "asset-1")
	if err != nil {
		t.Fatalf("second Remove failed: %v", err)
	}
	if removed {
		t.Fatal("expected second Remove to be a no-op")
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 records, got %d", count)
	}

	cleared, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if cleared != 2 {
		t.Fatalf("expected Clear to delete 2 records, deleted %d", cleared)
	}
}

func TestEmptyAssetIDRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.MarkProcessed(ctx, ""); err == nil {
		t.Fatal("expected error for empty asset id")
	}
	if _, err := store.Contains(ctx, ""); err == nil {
		t.Fatal("expected error for empty asset id")
	}
}
