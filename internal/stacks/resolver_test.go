package stacks_test

import (
	"context"
	"errors"
	"testing"

	"boostd/internal/immich"
	"boostd/internal/logging"
	"boostd/internal/stacks"
)

type fakeFetcher struct {
	assets map[string]immich.Asset
	errs   map[string]error
	calls  []string
}

func (f *fakeFetcher) GetAsset(_ context.Context, assetID string) (immich.Asset, error) {
	f.calls = append(f.calls, assetID)
	if err, ok := f.errs[assetID]; ok {
		return immich.Asset{}, err
	}
	asset, ok := f.assets[assetID]
	if !ok {
		return immich.Asset{}, errors.New("not found")
	}
	return asset, nil
}

func sized(id string, size int64) immich.Asset {
	return immich.Asset{ID: id, ExifInfo: immich.ExifInfo{FileSizeInByte: size}}
}

func TestResolvePicksLargestSibling(t *testing.T) {
	primary := sized("primary", 10<<20)
	primary.Stack = []immich.Asset{{ID: "sib-a"}, {ID: "sib-b"}}

	fetcher := &fakeFetcher{assets: map[string]immich.Asset{
		"primary": primary,
		"sib-a":   sized("sib-a", 50<<20),
		"sib-b":   sized("sib-b", 30<<20),
	}}
	resolver := stacks.NewResolver(fetcher, logging.NewNop())

	candidate := immich.Asset{ID: "sib-b", StackParentID: "primary"}
	source, primaryID := resolver.Resolve(context.Background(), candidate)

	if source.ID != "sib-a" {
		t.Fatalf("expected 50MB sibling as source, got %q", source.ID)
	}
	if primaryID != "primary" {
		t.Fatalf("expected primary id, got %q", primaryID)
	}
}

func TestResolveUnstackedCandidateIsItsOwnPrimary(t *testing.T) {
	fetcher := &fakeFetcher{assets: map[string]immich.Asset{
		"solo": sized("solo", 5<<20),
	}}
	resolver := stacks.NewResolver(fetcher, logging.NewNop())

	source, primaryID := resolver.Resolve(context.Background(), immich.Asset{ID: "solo"})
	if source.ID != "solo" || primaryID != "solo" {
		t.Fatalf("unexpected resolution: source=%q primary=%q", source.ID, primaryID)
	}
}

func TestResolvePrimaryFetchFailureDegrades(t *testing.T) {
	fetcher := &fakeFetcher{errs: map[string]error{"primary": errors.New("network down")}}
	resolver := stacks.NewResolver(fetcher, logging.NewNop())

	candidate := immich.Asset{ID: "child", StackParentID: "primary", ExifInfo: immich.ExifInfo{FileSizeInByte: 7}}
	source, primaryID := resolver.Resolve(context.Background(), candidate)

	if source.ID != "child" {
		t.Fatalf("expected candidate returned unchanged, got %q", source.ID)
	}
	if primaryID != "child" {
		t.Fatalf("expected candidate id as primary on degrade, got %q", primaryID)
	}
}

func TestResolveSkipsFailedMemberFetches(t *testing.T) {
	primary := sized("primary", 10)
	primary.Stack = []immich.Asset{{ID: "broken"}, {ID: "ok"}}

	fetcher := &fakeFetcher{
		assets: map[string]immich.Asset{
			"primary": primary,
			"ok":      sized("ok", 99),
		},
		errs: map[string]error{"broken": errors.New("timeout")},
	}
	resolver := stacks.NewResolver(fetcher, logging.NewNop())

	source, _ := resolver.Resolve(context.Background(), immich.Asset{ID: "primary"})
	if source.ID != "ok" {
		t.Fatalf("expected surviving member chosen, got %q", source.ID)
	}
}

func TestResolveAllMemberFetchesFailFallsBack(t *testing.T) {
	primary := sized("primary", 10)
	fetcher := &fakeFetcher{
		assets: map[string]immich.Asset{"primary": primary},
		errs:   map[string]error{},
	}
	// Primary fetch succeeds once, then every member re-fetch fails.
	resolver := stacks.NewResolver(&flakyFetcher{inner: fetcher}, logging.NewNop())

	candidate := immich.Asset{ID: "primary"}
	source, primaryID := resolver.Resolve(context.Background(), candidate)
	if source.ID != "primary" || primaryID != "primary" {
		t.Fatalf("expected fallback to candidate: source=%q primary=%q", source.ID, primaryID)
	}
}

func TestResolveTieKeepsFirstSeenMaximum(t *testing.T) {
	primary := sized("primary", 42)
	primary.Stack = []immich.Asset{{ID: "twin"}}
	fetcher := &fakeFetcher{assets: map[string]immich.Asset{
		"primary": primary,
		"twin":    sized("twin", 42),
	}}
	resolver := stacks.NewResolver(fetcher, logging.NewNop())

	source, _ := resolver.Resolve(context.Background(), immich.Asset{ID: "primary"})
	if source.ID != "primary" {
		t.Fatalf("expected first-seen maximum to win, got %q", source.ID)
	}
}

type flakyFetcher struct {
	inner *fakeFetcher
	calls int
}

func (f *flakyFetcher) GetAsset(ctx context.Context, assetID string) (immich.Asset, error) {
	f.calls++
	if f.calls == 1 {
		return f.inner.GetAsset(ctx, assetID)
	}
	return immich.Asset{}, errors.New("unreachable")
}
