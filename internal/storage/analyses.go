package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/easeaico/echoverse/internal/journal"
	"github.com/easeaico/echoverse/internal/types"
)

// analysisModel maps to the emotion_analyses table.
type analysisModel struct {
	ID         int    `gorm:"primaryKey"`
	EntryID    int    `gorm:"uniqueIndex;not null"`
	UserID     string `gorm:"index;not null"`
	Joy        float64
	Sadness    float64
	Anger      float64
	Fear       float64
	Surprise   float64
	Disgust    float64
	Neutral    float64
	Love       float64
	Anxiety    float64
	Excitement float64

	PrimaryEmotion      string
	PrimaryEmotionScore float64
	SentimentPolarity   float64
	AnalysisVersion     int
	// Embedding holds the ten scores in canonical order for similarity search.
	Embedding pgvector.Vector `gorm:"type:vector(10)"`
	CreatedAt time.Time
}

func (analysisModel) TableName() string {
	return "emotion_analyses"
}

type analysisRepo struct {
	db *gorm.DB
}

// NewAnalysisRepo returns a journal.AnalysisRepo.
func NewAnalysisRepo(db *gorm.DB) journal.AnalysisRepo {
	return &analysisRepo{db: db}
}

func (r *analysisRepo) Save(ctx context.Context, analysis *types.EmotionAnalysis) error {
	if analysis == nil {
		return fmt.Errorf("analysis cannot be nil")
	}
	record := analysisToModel(*analysis)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_id"}},
			DoUpdates: clause.AssignmentColumns(analysisColumns),
		}).
		Create(&record).Error; err != nil {
		return fmt.Errorf("failed to upsert emotion analysis: %w", err)
	}
	analysis.ID = record.ID
	return nil
}

// analysisColumns are replaced on re-analysis; created_at keeps the entry time.
var analysisColumns = []string{
	"joy", "sadness", "anger", "fear", "surprise", "disgust", "neutral", "love", "anxiety", "excitement",
	"primary_emotion", "primary_emotion_score", "sentiment_polarity", "analysis_version", "embedding",
}

func (r *analysisRepo) GetByEntry(ctx context.Context, entryID int) (*types.EmotionAnalysis, error) {
	var record analysisModel
	err := r.db.WithContext(ctx).Where("entry_id = ?", entryID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get emotion analysis: %w", err)
	}
	analysis := analysisFromModel(record)
	return &analysis, nil
}

func (r *analysisRepo) Recent(ctx context.Context, userID string, limit int) ([]types.EmotionAnalysis, error) {
	var records []analysisModel
	// history follows the order entries were written, not when they were analyzed
	if err := r.db.WithContext(ctx).
		Table("emotion_analyses AS a").
		Select("a.*").
		Joins("JOIN journal_entries e ON e.id = a.entry_id").
		Where("a.user_id = ?", userID).
		Order("e.created_at DESC, e.id DESC").
		Limit(limit).
		Scan(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query emotion analyses: %w", err)
	}

	results := make([]types.EmotionAnalysis, 0, len(records))
	for _, record := range records {
		results = append(results, analysisFromModel(record))
	}

	// Oldest -> newest
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	return results, nil
}

func (r *analysisRepo) FindSimilar(ctx context.Context, analysis types.EmotionAnalysis, topK int) ([]types.SimilarEntry, error) {
	if topK <= 0 {
		return nil, nil
	}
	query := `
		SELECT a.entry_id, e.content, a.primary_emotion AS "primary",
		       1 - (a.embedding <=> $1) AS similarity, e.created_at
		FROM emotion_analyses a
		JOIN journal_entries e ON e.id = a.entry_id
		WHERE a.user_id = $2 AND a.entry_id <> $3
		ORDER BY a.embedding <=> $1
		LIMIT $4`

	var results []types.SimilarEntry
	if err := r.db.WithContext(ctx).
		Raw(query, embeddingOf(analysis), analysis.UserID, analysis.EntryID, topK).
		Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to search similar entries: %w", err)
	}
	return results, nil
}

// embeddingOf lays the scores out in canonical emotion order.
func embeddingOf(a types.EmotionAnalysis) pgvector.Vector {
	return pgvector.NewVector([]float32{
		float32(a.Joy), float32(a.Sadness), float32(a.Anger), float32(a.Fear), float32(a.Surprise),
		float32(a.Disgust), float32(a.Neutral), float32(a.Love), float32(a.Anxiety), float32(a.Excitement),
	})
}

func analysisToModel(a types.EmotionAnalysis) analysisModel {
	return analysisModel{
		ID:                  a.ID,
		EntryID:             a.EntryID,
		UserID:              a.UserID,
		Joy:                 a.Joy,
		Sadness:             a.Sadness,
		Anger:               a.Anger,
		Fear:                a.Fear,
		Surprise:            a.Surprise,
		Disgust:             a.Disgust,
		Neutral:             a.Neutral,
		Love:                a.Love,
		Anxiety:             a.Anxiety,
		Excitement:          a.Excitement,
		PrimaryEmotion:      a.PrimaryEmotion,
		PrimaryEmotionScore: a.PrimaryEmotionScore,
		SentimentPolarity:   a.SentimentPolarity,
		AnalysisVersion:     a.Version,
		Embedding:           embeddingOf(a),
		CreatedAt:           a.CreatedAt,
	}
}

func analysisFromModel(model analysisModel) types.EmotionAnalysis {
	return types.EmotionAnalysis{
		ID:                  model.ID,
		EntryID:             model.EntryID,
		UserID:              model.UserID,
		Joy:                 model.Joy,
		Sadness:             model.Sadness,
		Anger:               model.Anger,
		Fear:                model.Fear,
		Surprise:            model.Surprise,
		Disgust:             model.Disgust,
		Neutral:             model.Neutral,
		Love:                model.Love,
		Anxiety:             model.Anxiety,
		Excitement:          model.Excitement,
		PrimaryEmotion:      model.PrimaryEmotion,
		PrimaryEmotionScore: model.PrimaryEmotionScore,
		SentimentPolarity:   model.SentimentPolarity,
		Version:             model.AnalysisVersion,
		CreatedAt:           model.CreatedAt,
	}
}
