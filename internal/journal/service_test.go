package journal

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/easeaico/echoverse/internal/emotion"
	"github.com/easeaico/echoverse/internal/types"
)

type memEntries struct {
	mu      sync.Mutex
	entries []types.JournalEntry
	err     error
}

func (r *memEntries) Create(ctx context.Context, entry *types.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	entry.ID = len(r.entries) + 1
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memEntries) Get(ctx context.Context, id int) (*types.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *memEntries) ListPending(ctx context.Context, version, limit int) ([]types.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) > limit {
		return slices.Clone(r.entries[:limit]), nil
	}
	return slices.Clone(r.entries), nil
}

type memAnalyses struct {
	mu    sync.Mutex
	saved []types.EmotionAnalysis
}

func (r *memAnalyses) Save(ctx context.Context, a *types.EmotionAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.saved {
		if r.saved[i].EntryID == a.EntryID {
			a.ID = r.saved[i].ID
			a.CreatedAt = r.saved[i].CreatedAt
			r.saved[i] = *a
			return nil
		}
	}
	a.ID = len(r.saved) + 1
	r.saved = append(r.saved, *a)
	return nil
}

func (r *memAnalyses) GetByEntry(ctx context.Context, entryID int) (*types.EmotionAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.saved {
		if a.EntryID == entryID {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *memAnalyses) Recent(ctx context.Context, userID string, limit int) ([]types.EmotionAnalysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []types.EmotionAnalysis
	for _, a := range r.saved {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	slices.SortStableFunc(out, func(x, y types.EmotionAnalysis) int {
		if c := x.CreatedAt.Compare(y.CreatedAt); c != 0 {
			return c
		}
		return x.EntryID - y.EntryID
	})
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *memAnalyses) FindSimilar(ctx context.Context, a types.EmotionAnalysis, topK int) ([]types.SimilarEntry, error) {
	return []types.SimilarEntry{{EntryID: a.EntryID + 100, Primary: a.PrimaryEmotion}}, nil
}

type memBlobs struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	snapshots []types.MoodSnapshot
	getErr    error
}

func (r *memBlobs) Get(ctx context.Context, userID string) (*types.MoodBlob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	img, ok := r.blobs[userID]
	if !ok {
		return nil, nil
	}
	return &types.MoodBlob{UserID: userID, Image: img}, nil
}

func (r *memBlobs) Put(ctx context.Context, blob *types.MoodBlob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.blobs == nil {
		r.blobs = make(map[string][]byte)
	}
	r.blobs[blob.UserID] = blob.Image
	return nil
}

func (r *memBlobs) AddSnapshot(ctx context.Context, snapshot *types.MoodSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.snapshots {
		if r.snapshots[i].EntryID == snapshot.EntryID {
			r.snapshots[i] = *snapshot
			return nil
		}
	}
	r.snapshots = append(r.snapshots, *snapshot)
	return nil
}

// lexiconAnalyzer runs the real engine without remote collaborators.
func lexiconAnalyzer() Analyzer {
	return emotion.NewEngine(nil)
}

type renderCall struct {
	history []emotion.Emotion
	current emotion.Emotion
	prior   string
}

type fakeRenderer struct {
	mu    sync.Mutex
	calls []renderCall
	count int
}

func (r *fakeRenderer) Generate(history []emotion.Vector, current emotion.Vector, prior []byte) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	primaries := make([]emotion.Emotion, 0, len(history))
	for _, h := range history {
		primaries = append(primaries, h.Primary)
	}
	r.count++
	r.calls = append(r.calls, renderCall{history: primaries, current: current.Primary, prior: string(prior)})
	return []byte("blob-" + string(current.Primary)), nil
}

func (r *fakeRenderer) Snapshot(current emotion.Vector) ([]byte, error) {
	return []byte("snap-" + string(current.Primary)), nil
}

func newTestService(renderer *fakeRenderer) (*Service, *memEntries, *memAnalyses, *memBlobs) {
	entries, analyses, blobs := &memEntries{}, &memAnalyses{}, &memBlobs{}
	svc := NewService(entries, analyses, blobs, lexiconAnalyzer(), renderer, 2)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	return svc, entries, analyses, blobs
}

func TestAddEntryAnalyzesAndRenders(t *testing.T) {
	renderer := &fakeRenderer{}
	svc, entries, analyses, blobs := newTestService(renderer)
	ctx := context.Background()

	entry, analysis, err := svc.AddEntry(ctx, "u1", "day one", "I feel so happy and grateful today")
	if err != nil {
		t.Fatalf("AddEntry returned error: %v", err)
	}
	if entry.ID != 1 || len(entries.entries) != 1 {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if analysis.PrimaryEmotion != "joy" || analysis.Version != types.AnalysisVersion || analysis.EntryID != 1 {
		t.Fatalf("unexpected analysis %+v", analysis)
	}
	if len(analyses.saved) != 1 {
		t.Fatalf("expected one saved analysis, got %d", len(analyses.saved))
	}
	if got := string(blobs.blobs["u1"]); got != "blob-joy" {
		t.Fatalf("unexpected blob %q", got)
	}
	if len(blobs.snapshots) != 1 || string(blobs.snapshots[0].Image) != "snap-joy" || blobs.snapshots[0].EntryID != 1 {
		t.Fatalf("unexpected snapshots %+v", blobs.snapshots)
	}

	if _, _, err := svc.AddEntry(ctx, "u1", "day two", "I am so sad and lonely"); err != nil {
		t.Fatalf("AddEntry returned error: %v", err)
	}
	want := renderCall{history: []emotion.Emotion{"joy"}, current: emotion.Sadness, prior: "blob-joy"}
	if diff := cmp.Diff(want, renderer.calls[1], cmp.AllowUnexported(renderCall{})); diff != "" {
		t.Fatalf("second render mismatch (-want +got):\n%s", diff)
	}
}

func TestAddEntryHistoryExcludesCurrentAndIsBounded(t *testing.T) {
	renderer := &fakeRenderer{}
	svc, _, _, _ := newTestService(renderer)
	ctx := context.Background()
	texts := []string{"so happy", "so sad", "really angry", "I love you"}
	for _, text := range texts {
		if _, _, err := svc.AddEntry(ctx, "u1", "", text); err != nil {
			t.Fatalf("AddEntry(%q) returned error: %v", text, err)
		}
	}
	last := renderer.calls[len(renderer.calls)-1]
	want := []emotion.Emotion{"sadness", "anger"}
	if diff := cmp.Diff(want, last.history); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
	if last.current != emotion.Love {
		t.Fatalf("expected love, got %s", last.current)
	}
}

func TestAddEntryRejectsEmptyContent(t *testing.T) {
	svc, entries, _, _ := newTestService(&fakeRenderer{})
	if _, _, err := svc.AddEntry(context.Background(), "u1", "", "   "); !errors.Is(err, ErrEmptyEntry) {
		t.Fatalf("expected ErrEmptyEntry, got %v", err)
	}
	if len(entries.entries) != 0 {
		t.Fatal("empty entry was stored")
	}
}

func TestAddEntryKeepsAnalysisWhenBlobFails(t *testing.T) {
	svc, _, analyses, blobs := newTestService(&fakeRenderer{})
	blobs.getErr = errors.New("db down")
	_, analysis, err := svc.AddEntry(context.Background(), "u1", "", "what a wonderful day")
	if err != nil {
		t.Fatalf("AddEntry returned error: %v", err)
	}
	if analysis == nil || len(analyses.saved) != 1 {
		t.Fatal("analysis should be saved even when rendering fails")
	}
}

func TestAddEntryCreateError(t *testing.T) {
	svc, entries, _, _ := newTestService(&fakeRenderer{})
	entries.err = errors.New("insert failed")
	if _, _, err := svc.AddEntry(context.Background(), "u1", "", "hello"); err == nil {
		t.Fatal("expected error")
	}
}

func TestBackfill(t *testing.T) {
	renderer := &fakeRenderer{}
	svc, entries, analyses, blobs := newTestService(renderer)
	ctx := context.Background()
	for _, e := range []types.JournalEntry{
		{UserID: "a", Content: "so happy"},
		{UserID: "b", Content: "terrified of tomorrow"},
		{UserID: "a", Content: "furious and angry"},
	} {
		if err := entries.Create(ctx, &e); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	n, err := svc.Backfill(ctx, 10, 4)
	if err != nil {
		t.Fatalf("Backfill returned error: %v", err)
	}
	if n != 3 || len(analyses.saved) != 3 {
		t.Fatalf("expected 3 analyses, got n=%d saved=%d", n, len(analyses.saved))
	}
	if renderer.count != 2 {
		t.Fatalf("expected one render per identity, got %d", renderer.count)
	}
	if got := string(blobs.blobs["a"]); got != "blob-anger" {
		t.Fatalf("identity a should end on its newest entry, got %q", got)
	}
	if got := string(blobs.blobs["b"]); got != "blob-fear" {
		t.Fatalf("unexpected blob for b: %q", got)
	}
	if len(blobs.snapshots) != 3 {
		t.Fatalf("expected a snapshot per entry, got %d", len(blobs.snapshots))
	}

	// reanalysis replaces rows in place
	if _, err := svc.Backfill(ctx, 10, 1); err != nil {
		t.Fatalf("second Backfill returned error: %v", err)
	}
	if len(analyses.saved) != 3 {
		t.Fatalf("expected analyses replaced in place, got %d", len(analyses.saved))
	}
	if len(blobs.snapshots) != 3 {
		t.Fatalf("expected snapshots replaced in place, got %d", len(blobs.snapshots))
	}
}

func TestBackfillKeepsEntryOrderInHistory(t *testing.T) {
	renderer := &fakeRenderer{}
	svc, entries, analyses, blobs := newTestService(renderer)
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2024, 5, d, 9, 0, 0, 0, time.UTC) }
	// ids do not follow write order
	for _, e := range []types.JournalEntry{
		{UserID: "u1", Content: "so sad", CreatedAt: day(2)},
		{UserID: "u1", Content: "so happy", CreatedAt: day(1)},
		{UserID: "u1", Content: "really angry", CreatedAt: day(3)},
	} {
		if err := entries.Create(ctx, &e); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	svc.now = func() time.Time { return day(10) }
	if _, err := svc.Backfill(ctx, 10, 1); err != nil {
		t.Fatalf("Backfill returned error: %v", err)
	}
	svc.now = func() time.Time { return day(20) }
	if _, err := svc.Backfill(ctx, 10, 1); err != nil {
		t.Fatalf("second Backfill returned error: %v", err)
	}

	for _, a := range analyses.saved {
		entry, _ := entries.Get(ctx, a.EntryID)
		if !a.CreatedAt.Equal(entry.CreatedAt) {
			t.Fatalf("analysis of entry %d dated %v, want entry time %v", a.EntryID, a.CreatedAt, entry.CreatedAt)
		}
	}
	want := renderCall{history: []emotion.Emotion{"joy", "sadness"}, current: emotion.Anger, prior: "blob-anger"}
	if diff := cmp.Diff(want, renderer.calls[len(renderer.calls)-1], cmp.AllowUnexported(renderCall{})); diff != "" {
		t.Fatalf("render mismatch (-want +got):\n%s", diff)
	}
	if got := string(blobs.blobs["u1"]); got != "blob-anger" {
		t.Fatalf("blob should follow the newest entry, got %q", got)
	}
	if len(blobs.snapshots) != 3 {
		t.Fatalf("expected one snapshot per entry, got %d", len(blobs.snapshots))
	}
}

func TestBackfillNothingPending(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeRenderer{})
	n, err := svc.Backfill(context.Background(), 10, 2)
	if err != nil || n != 0 {
		t.Fatalf("expected no work, got n=%d err=%v", n, err)
	}
}

func TestSimilar(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeRenderer{})
	ctx := context.Background()
	entry, _, err := svc.AddEntry(ctx, "u1", "", "so happy")
	if err != nil {
		t.Fatalf("AddEntry returned error: %v", err)
	}
	got, err := svc.Similar(ctx, entry.ID, 3)
	if err != nil {
		t.Fatalf("Similar returned error: %v", err)
	}
	if len(got) != 1 || got[0].EntryID != entry.ID+100 {
		t.Fatalf("unexpected similar entries %+v", got)
	}
	if got, err := svc.Similar(ctx, 999, 3); err != nil || got != nil {
		t.Fatalf("expected nothing for an unknown entry, got %v %v", got, err)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	var s emotion.Scores
	s.Set(emotion.Fear, 0.6)
	s.Set(emotion.Anxiety, 0.4)
	v := emotion.NewVector(s, -0.3)
	got := VectorFromAnalysis(AnalysisFromVector(types.JournalEntry{ID: 4, UserID: "u"}, v))
	if diff := cmp.Diff(v, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	got = VectorFromAnalysis(types.EmotionAnalysis{Love: 0.9, PrimaryEmotion: "bogus"})
	if got.Primary != emotion.Love {
		t.Fatalf("expected recomputed primary love, got %s", got.Primary)
	}
}

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	var k keyedMutex
	var mu sync.Mutex
	active, maxActive := 0, 0
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("same")
			mu.Lock()
			active++
			maxActive = max(maxActive, active)
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	if maxActive != 1 {
		t.Fatalf("expected serialized access, saw %d concurrent holders", maxActive)
	}
	if len(k.locks) != 0 {
		t.Fatalf("expected idle keys dropped, %d left", len(k.locks))
	}
}
