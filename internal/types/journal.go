// Package types holds the persisted domain records.
package types

import "time"

// AnalysisVersion identifies the scoring pipeline that produced an analysis.
// Bump it when lexicon weights or blending change so Backfill can redo old rows.
const AnalysisVersion = 2

// JournalEntry is one free-form entry written by an identity.
type JournalEntry struct {
	ID        int       `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// EmotionAnalysis is the scored vector of one entry.
type EmotionAnalysis struct {
	ID         int     `json:"id"`
	EntryID    int     `json:"entry_id"`
	UserID     string  `json:"user_id"`
	Joy        float64 `json:"joy"`
	Sadness    float64 `json:"sadness"`
	Anger      float64 `json:"anger"`
	Fear       float64 `json:"fear"`
	Surprise   float64 `json:"surprise"`
	Disgust    float64 `json:"disgust"`
	Neutral    float64 `json:"neutral"`
	Love       float64 `json:"love"`
	Anxiety    float64 `json:"anxiety"`
	Excitement float64 `json:"excitement"`

	PrimaryEmotion      string    `json:"primary_emotion"`
	PrimaryEmotionScore float64   `json:"primary_emotion_score"`
	SentimentPolarity   float64   `json:"sentiment_polarity"`
	Version             int       `json:"analysis_version"`
	CreatedAt           time.Time `json:"created_at"`
}

// MoodBlob is the single evolving image of an identity, replaced in place.
type MoodBlob struct {
	UserID    string    `json:"user_id"`
	Image     []byte    `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MoodSnapshot is the standalone image rendered for one entry.
type MoodSnapshot struct {
	ID        int       `json:"id"`
	EntryID   int       `json:"entry_id"`
	UserID    string    `json:"user_id"`
	Image     []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// SimilarEntry is an analysis found by vector similarity.
type SimilarEntry struct {
	EntryID    int       `json:"entry_id"`
	Content    string    `json:"content"`
	Primary    string    `json:"primary_emotion"`
	Similarity float64   `json:"similarity"`
	CreatedAt  time.Time `json:"created_at"`
}
