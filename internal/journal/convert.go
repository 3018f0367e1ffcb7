package journal

import (
	"github.com/easeaico/echoverse/internal/emotion"
	"github.com/easeaico/echoverse/internal/types"
)

// AnalysisFromVector converts an emotion vector into the record of entry.
func AnalysisFromVector(entry types.JournalEntry, v emotion.Vector) types.EmotionAnalysis {
	s := v.Scores
	return types.EmotionAnalysis{
		EntryID:             entry.ID,
		UserID:              entry.UserID,
		Joy:                 s.Get(emotion.Joy),
		Sadness:             s.Get(emotion.Sadness),
		Anger:               s.Get(emotion.Anger),
		Fear:                s.Get(emotion.Fear),
		Surprise:            s.Get(emotion.Surprise),
		Disgust:             s.Get(emotion.Disgust),
		Neutral:             s.Get(emotion.Neutral),
		Love:                s.Get(emotion.Love),
		Anxiety:             s.Get(emotion.Anxiety),
		Excitement:          s.Get(emotion.Excitement),
		PrimaryEmotion:      string(v.Primary),
		PrimaryEmotionScore: v.PrimaryScore,
		SentimentPolarity:   v.Sentiment,
		Version:             types.AnalysisVersion,
	}
}

// VectorFromAnalysis is the inverse of AnalysisFromVector. An unknown stored
// primary emotion is recomputed from the scores.
func VectorFromAnalysis(a types.EmotionAnalysis) emotion.Vector {
	var s emotion.Scores
	s.Set(emotion.Joy, a.Joy)
	s.Set(emotion.Sadness, a.Sadness)
	s.Set(emotion.Anger, a.Anger)
	s.Set(emotion.Fear, a.Fear)
	s.Set(emotion.Surprise, a.Surprise)
	s.Set(emotion.Disgust, a.Disgust)
	s.Set(emotion.Neutral, a.Neutral)
	s.Set(emotion.Love, a.Love)
	s.Set(emotion.Anxiety, a.Anxiety)
	s.Set(emotion.Excitement, a.Excitement)

	v := emotion.Vector{Scores: s, PrimaryScore: a.PrimaryEmotionScore, Sentiment: a.SentimentPolarity}
	if e, ok := emotion.ParseEmotion(a.PrimaryEmotion); ok {
		v.Primary = e
	} else {
		v.Refresh()
	}
	return v
}
