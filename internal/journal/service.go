package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/easeaico/echoverse/internal/emotion"
	"github.com/easeaico/echoverse/internal/types"
)

// DefaultHistoryLimit is the number of prior analyses fed to the renderer.
const DefaultHistoryLimit = 30

// ErrEmptyEntry is returned when an entry has no content.
var ErrEmptyEntry = errors.New("journal entry is empty")

// Service records entries, analyzes them and keeps each identity's blob up
// to date. Blob regeneration is serialized per identity so two entries never
// read the same prior image.
type Service struct {
	entries      EntryRepo
	analyses     AnalysisRepo
	blobs        BlobRepo
	analyzer     Analyzer
	renderer     Renderer
	historyLimit int
	now          func() time.Time

	locks keyedMutex
}

// NewService returns a Service. A non-positive historyLimit selects
// DefaultHistoryLimit.
func NewService(entries EntryRepo, analyses AnalysisRepo, blobs BlobRepo, analyzer Analyzer, renderer Renderer, historyLimit int) *Service {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Service{
		entries:      entries,
		analyses:     analyses,
		blobs:        blobs,
		analyzer:     analyzer,
		renderer:     renderer,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

// AddEntry stores a new entry, analyzes it and regenerates the blob of
// userID. A rendering failure is logged; the entry and its analysis are kept.
func (s *Service) AddEntry(ctx context.Context, userID, title, content string) (*types.JournalEntry, *types.EmotionAnalysis, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil, ErrEmptyEntry
	}
	entry := &types.JournalEntry{
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, nil, fmt.Errorf("failed to create entry: %w", err)
	}

	analysis, err := s.AnalyzeEntry(ctx, *entry)
	if err != nil {
		return entry, nil, err
	}
	if err := s.RefreshBlob(ctx, *analysis); err != nil {
		slog.Warn("failed to refresh mood blob", "user_id", userID, "entry_id", entry.ID, "error", err.Error())
	}
	return entry, analysis, nil
}

// AnalyzeEntry scores entry and saves the analysis, replacing any earlier
// one.
func (s *Service) AnalyzeEntry(ctx context.Context, entry types.JournalEntry) (*types.EmotionAnalysis, error) {
	result := s.analyzer.Analyze(ctx, entry.Content)
	analysis := AnalysisFromVector(entry, result.Vector)
	analysis.CreatedAt = entry.CreatedAt
	if analysis.CreatedAt.IsZero() {
		analysis.CreatedAt = s.now()
	}
	if err := s.analyses.Save(ctx, &analysis); err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}
	slog.Info("entry analyzed",
		"entry_id", entry.ID,
		"source", result.Source,
		"primary", result.Vector.Primary,
		"sentiment", result.Vector.Sentiment,
	)
	return &analysis, nil
}

// RefreshBlob regenerates the evolving blob of analysis.UserID from its
// history and the previous image, then stores a standalone snapshot for the
// entry.
func (s *Service) RefreshBlob(ctx context.Context, analysis types.EmotionAnalysis) error {
	if err := s.renderBlob(ctx, analysis); err != nil {
		return err
	}
	return s.saveSnapshot(ctx, analysis)
}

// renderBlob replaces the identity's blob with one rendered for analysis.
func (s *Service) renderBlob(ctx context.Context, analysis types.EmotionAnalysis) error {
	unlock := s.locks.Lock(analysis.UserID)
	defer unlock()

	recent, err := s.analyses.Recent(ctx, analysis.UserID, s.historyLimit+1)
	if err != nil {
		return fmt.Errorf("failed to load emotion history: %w", err)
	}
	history := make([]emotion.Vector, 0, len(recent))
	for _, a := range recent {
		if a.EntryID == analysis.EntryID {
			continue
		}
		history = append(history, VectorFromAnalysis(a))
	}
	if len(history) > s.historyLimit {
		history = history[len(history)-s.historyLimit:]
	}

	var prior []byte
	blob, err := s.blobs.Get(ctx, analysis.UserID)
	if err != nil {
		return fmt.Errorf("failed to load mood blob: %w", err)
	}
	if blob != nil {
		prior = blob.Image
	}

	img, err := s.renderer.Generate(history, VectorFromAnalysis(analysis), prior)
	if err != nil {
		return fmt.Errorf("failed to render mood blob: %w", err)
	}
	if err := s.blobs.Put(ctx, &types.MoodBlob{UserID: analysis.UserID, Image: img, UpdatedAt: s.now()}); err != nil {
		return fmt.Errorf("failed to save mood blob: %w", err)
	}
	return nil
}

func (s *Service) saveSnapshot(ctx context.Context, analysis types.EmotionAnalysis) error {
	snap, err := s.renderer.Snapshot(VectorFromAnalysis(analysis))
	if err != nil {
		return fmt.Errorf("failed to render snapshot: %w", err)
	}
	if err := s.blobs.AddSnapshot(ctx, &types.MoodSnapshot{
		EntryID:   analysis.EntryID,
		UserID:    analysis.UserID,
		Image:     snap,
		CreatedAt: s.now(),
	}); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Similar returns entries of the same identity whose emotion vectors are
// closest to the analysis of entryID.
func (s *Service) Similar(ctx context.Context, entryID, topK int) ([]types.SimilarEntry, error) {
	analysis, err := s.analyses.GetByEntry(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	if analysis == nil {
		return nil, nil
	}
	return s.analyses.FindSimilar(ctx, *analysis, topK)
}

// Backfill analyzes up to limit pending entries. Identities are processed
// concurrently by at most workers goroutines; entries of one identity are
// handled in order and each gets its snapshot. The identity's blob is then
// regenerated once, for its newest entry. It returns the number of analyzed
// entries.
func (s *Service) Backfill(ctx context.Context, limit, workers int) (int, error) {
	pending, err := s.entries.ListPending(ctx, types.AnalysisVersion, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending entries: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	var order []string
	byUser := make(map[string][]types.JournalEntry)
	for _, e := range pending {
		if _, ok := byUser[e.UserID]; !ok {
			order = append(order, e.UserID)
		}
		byUser[e.UserID] = append(byUser[e.UserID], e)
	}

	counts := make([]int, len(order))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, userID := range order {
		g.Go(func() error {
			for _, entry := range byUser[userID] {
				if err := gctx.Err(); err != nil {
					return err
				}
				analysis, err := s.AnalyzeEntry(gctx, entry)
				if err != nil {
					return fmt.Errorf("entry %d: %w", entry.ID, err)
				}
				counts[i]++
				if err := s.saveSnapshot(gctx, *analysis); err != nil {
					slog.Warn("failed to save snapshot", "user_id", userID, "entry_id", entry.ID, "error", err.Error())
				}
			}

			newest, err := s.analyses.Recent(gctx, userID, 1)
			if err != nil {
				slog.Warn("failed to load newest analysis", "user_id", userID, "error", err.Error())
				return nil
			}
			if len(newest) > 0 {
				if err := s.renderBlob(gctx, newest[len(newest)-1]); err != nil {
					slog.Warn("failed to refresh mood blob", "user_id", userID, "error", err.Error())
				}
			}
			return nil
		})
	}
	err = g.Wait()

	total := 0
	for _, c := range counts {
		total += c
	}
	return total, err
}
