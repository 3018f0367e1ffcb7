// Package journal ties entry storage, emotion analysis and blob rendering
// together.
package journal

import (
	"context"

	"github.com/easeaico/echoverse/internal/emotion"
	"github.com/easeaico/echoverse/internal/types"
)

// EntryRepo stores journal entries.
type EntryRepo interface {
	Create(ctx context.Context, entry *types.JournalEntry) error
	Get(ctx context.Context, id int) (*types.JournalEntry, error)
	// ListPending returns entries with no analysis or one older than version,
	// oldest first.
	ListPending(ctx context.Context, version, limit int) ([]types.JournalEntry, error)
}

// AnalysisRepo stores one emotion analysis per entry.
type AnalysisRepo interface {
	// Save inserts or replaces the analysis of analysis.EntryID.
	Save(ctx context.Context, analysis *types.EmotionAnalysis) error
	GetByEntry(ctx context.Context, entryID int) (*types.EmotionAnalysis, error)
	// Recent returns the analyses of the newest limit entries of userID,
	// ordered by entry time, oldest first.
	Recent(ctx context.Context, userID string, limit int) ([]types.EmotionAnalysis, error)
	// FindSimilar ranks the other entries of the same identity by cosine
	// similarity of their emotion vectors.
	FindSimilar(ctx context.Context, analysis types.EmotionAnalysis, topK int) ([]types.SimilarEntry, error)
}

// BlobRepo stores the evolving blob of each identity and the per-entry
// snapshots.
type BlobRepo interface {
	// Get returns nil without error when userID has no blob yet.
	Get(ctx context.Context, userID string) (*types.MoodBlob, error)
	Put(ctx context.Context, blob *types.MoodBlob) error
	// AddSnapshot keeps one snapshot per entry, replacing an earlier one.
	AddSnapshot(ctx context.Context, snapshot *types.MoodSnapshot) error
}

// Analyzer scores text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) emotion.Result
}

// Renderer produces blob images.
type Renderer interface {
	Generate(history []emotion.Vector, current emotion.Vector, prior []byte) ([]byte, error)
	Snapshot(current emotion.Vector) ([]byte, error)
}
