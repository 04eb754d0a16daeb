package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"boostd/internal/config"
	"boostd/internal/enhance"
	"boostd/internal/immich"
	"boostd/internal/logging"
	"boostd/internal/processed"
	"boostd/internal/testsupport"
	"boostd/internal/timewindow"
)

type fakeSearcher struct {
	assets []immich.Asset
	err    error
	calls  chan struct{}
}

func (f *fakeSearcher) SearchVideos(context.Context) ([]immich.Asset, error) {
	if f.calls != nil {
		select {
		case f.calls <- struct{}{}:
		default:
		}
	}
	return f.assets, f.err
}

type fakeProcessor struct {
	errByID map[string]error
	order   []string
}

func (f *fakeProcessor) Process(_ context.Context, candidate immich.Asset) error {
	f.order = append(f.order, candidate.ID)
	return f.errByID[candidate.ID]
}

func newTestManager(t *testing.T, cfg *config.Config, searcher Searcher, processor Processor) (*Manager, *processed.Store) {
	t.Helper()
	cfg.Workflow.SuccessPacing = 0
	cfg.Workflow.ErrorCooldown = 0
	store := testsupport.MustOpenStore(t, cfg)
	window := timewindow.Window{ForceOpen: true}
	return NewManager(cfg, store, searcher, processor, window, logging.NewNop()), store
}

func videoAsset(id, createdAt string) immich.Asset {
	return immich.Asset{
		ID:               id,
		DeviceAssetID:    "dev-" + id,
		OriginalFileName: id + ".mp4",
		FileCreatedAt:    createdAt,
	}
}

func TestRunBatchProcessesOnlyNewCandidates(t *testing.T) {
	seen := videoAsset("seen", "2024-06-01T00:00:00Z")
	marker := videoAsset("marker", "2024-06-02T00:00:00Z")
	marker.OriginalFileName = "clip_boosted.mp4"
	fresh := videoAsset("fresh", "2024-06-03T00:00:00Z")

	searcher := &fakeSearcher{assets: []immich.Asset{seen, marker, fresh}}
	processor := &fakeProcessor{}
	mgr, store := newTestManager(t, testsupport.NewConfig(t), searcher, processor)

	ctx := context.Background()
	if err := store.MarkProcessed(ctx, "seen"); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	count, err := mgr.runBatch(ctx)
	if err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	if count != 1 {
		t.Fatalf("boosted count = %d, want 1", count)
	}
	if len(processor.order) != 1 || processor.order[0] != "fresh" {
		t.Fatalf("processed order = %v, want only fresh", processor.order)
	}

	for _, id := range []string{"fresh", "marker"} {
		done, err := store.Contains(ctx, id)
		if err != nil {
			t.Fatalf("Contains(%s): %v", id, err)
		}
		if !done {
			t.Errorf("expected %s to be recorded as processed", id)
		}
	}
}

func TestRunBatchNewestFirst(t *testing.T) {
	searcher := &fakeSearcher{assets: []immich.Asset{
		videoAsset("older", "2024-06-01T00:00:00Z"),
		videoAsset("newest", "2024-06-05T00:00:00Z"),
		videoAsset("middle", "2024-06-03T00:00:00Z"),
	}}
	processor := &fakeProcessor{}
	mgr, _ := newTestManager(t, testsupport.NewConfig(t), searcher, processor)

	if _, err := mgr.runBatch(context.Background()); err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	want := []string{"newest", "middle", "older"}
	if len(processor.order) != len(want) {
		t.Fatalf("processed order = %v, want %v", processor.order, want)
	}
	for i, id := range want {
		if processor.order[i] != id {
			t.Fatalf("processed order = %v, want %v", processor.order, want)
		}
	}
}

func TestRunBatchContinuesAfterCandidateFailure(t *testing.T) {
	searcher := &fakeSearcher{assets: []immich.Asset{
		videoAsset("broken", "2024-06-05T00:00:00Z"),
		videoAsset("fine", "2024-06-04T00:00:00Z"),
	}}
	processor := &fakeProcessor{errByID: map[string]error{"broken": errors.New("ffmpeg exited 1")}}
	mgr, store := newTestManager(t, testsupport.NewConfig(t), searcher, processor)

	count, err := mgr.runBatch(context.Background())
	if err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	if count != 1 {
		t.Fatalf("boosted count = %d, want 1", count)
	}

	ctx := context.Background()
	if done, _ := store.Contains(ctx, "broken"); done {
		t.Error("failed candidate must not be marked processed")
	}
	if done, _ := store.Contains(ctx, "fine"); !done {
		t.Error("successful candidate must be marked processed")
	}
	if summary := mgr.Status(ctx); summary.LastError == "" {
		t.Error("expected last error to be recorded")
	}
}

func TestRunBatchSearchFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("503 service unavailable")}
	mgr, _ := newTestManager(t, testsupport.NewConfig(t), searcher, &fakeProcessor{})

	if _, err := mgr.runBatch(context.Background()); err == nil {
		t.Fatal("expected search failure to surface")
	}
}

func TestProcessCandidateDeviceFilter(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDeviceFilter("GoPro"))
	match := videoAsset("match", "2024-06-01T00:00:00Z")
	match.ExifInfo.Make = "GoPro"
	match.ExifInfo.Model = "HERO12"
	other := videoAsset("other", "2024-06-02T00:00:00Z")
	other.ExifInfo.Make = "Apple"
	other.ExifInfo.Model = "iPhone 15"

	processor := &fakeProcessor{}
	mgr, store := newTestManager(t, cfg, &fakeSearcher{}, processor)

	ctx := context.Background()
	boosted, err := mgr.processCandidate(ctx, other)
	if err != nil || boosted {
		t.Fatalf("processCandidate(other) = %v, %v; want skip", boosted, err)
	}
	if done, _ := store.Contains(ctx, "other"); done {
		t.Error("filtered candidate must stay unmarked so a filter change can pick it up")
	}

	boosted, err = mgr.processCandidate(ctx, match)
	if err != nil || !boosted {
		t.Fatalf("processCandidate(match) = %v, %v; want boosted", boosted, err)
	}
}

func TestProcessCandidateAlreadyBoostedSource(t *testing.T) {
	candidate := videoAsset("child", "2024-06-01T00:00:00Z")
	candidate.StackParentID = "parent"
	processor := &fakeProcessor{errByID: map[string]error{
		"child": fmt.Errorf("wrapped: %w", enhance.ErrAlreadyBoosted),
	}}
	mgr, store := newTestManager(t, testsupport.NewConfig(t), &fakeSearcher{}, processor)

	ctx := context.Background()
	boosted, err := mgr.processCandidate(ctx, candidate)
	if err != nil {
		t.Fatalf("processCandidate: %v", err)
	}
	if boosted {
		t.Fatal("already-boosted source must not count as a boost")
	}
	for _, id := range []string{"child", "parent"} {
		if done, _ := store.Contains(ctx, id); !done {
			t.Errorf("expected %s marked processed", id)
		}
	}
}

func TestProcessCandidateSkipsHandledStack(t *testing.T) {
	candidate := videoAsset("sibling", "2024-06-01T00:00:00Z")
	candidate.StackParentID = "parent"
	processor := &fakeProcessor{}
	mgr, store := newTestManager(t, testsupport.NewConfig(t), &fakeSearcher{}, processor)

	ctx := context.Background()
	if err := store.MarkProcessed(ctx, "parent"); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	boosted, err := mgr.processCandidate(ctx, candidate)
	if err != nil || boosted {
		t.Fatalf("processCandidate = %v, %v; want skip", boosted, err)
	}
	if len(processor.order) != 0 {
		t.Error("no pipeline work expected for a handled stack")
	}
}

func TestRunBatchHonorsDebugItemLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithDebug(1))
	searcher := &fakeSearcher{assets: []immich.Asset{
		videoAsset("first", "2024-06-03T00:00:00Z"),
		videoAsset("second", "2024-06-02T00:00:00Z"),
	}}
	processor := &fakeProcessor{}
	mgr, _ := newTestManager(t, cfg, searcher, processor)

	count, err := mgr.runBatch(context.Background())
	if err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	if count != 1 || len(processor.order) != 1 {
		t.Fatalf("count = %d, processed = %v; want a single boost", count, processor.order)
	}
}

func TestStartStop(t *testing.T) {
	searcher := &fakeSearcher{calls: make(chan struct{}, 1)}
	mgr, _ := newTestManager(t, testsupport.NewConfig(t), searcher, &fakeProcessor{})
	mgr.cfg.Workflow.IdlePollInterval = 1

	ctx := context.Background()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := mgr.Start(ctx); err == nil {
		t.Fatal("second Start must fail while running")
	}

	select {
	case <-searcher.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a discovery sweep")
	}
	if !mgr.Status(ctx).Running {
		t.Fatal("expected running status")
	}

	mgr.Stop()
	if mgr.Status(ctx).Running {
		t.Fatal("expected stopped status")
	}
	mgr.Stop()
}

func TestWindowClosedSkipsSearch(t *testing.T) {
	searcher := &fakeSearcher{calls: make(chan struct{}, 1)}
	mgr, _ := newTestManager(t, testsupport.NewConfig(t), searcher, &fakeProcessor{})

	window, err := timewindow.Parse("01:15", "06:15", false)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	mgr.window = window
	mgr.now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	mgr.cfg.Workflow.GateRecheckInterval = 1

	if err := mgr.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case <-searcher.calls:
		t.Fatal("no sweep expected while the window is closed")
	case <-time.After(100 * time.Millisecond):
	}
	mgr.Stop()
}
