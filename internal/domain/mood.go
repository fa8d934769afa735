// internal/domain/mood.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mood scale bounds (1 = very bad, 5 = very good).
const (
	MinMoodScore  = 1
	MaxMoodScore  = 5
	MaxMoodNote   = 500
	MoodWindowLen = 30
)

// MediaKind identifies the signal a mood was derived from.
type MediaKind string

const (
	MediaVoice MediaKind = "voice"
	MediaFace  MediaKind = "face"
)

// MoodObservation is a single mood log entry.
type MoodObservation struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Score         int                `bson:"mood" json:"mood"`
	Note          string             `bson:"note,omitempty" json:"note,omitempty"`
	VoiceAnalysis string             `bson:"voiceAnalysis,omitempty" json:"voiceAnalysis,omitempty"`
	FaceAnalysis  string             `bson:"faceAnalysis,omitempty" json:"faceAnalysis,omitempty"`
	MediaKey      string             `bson:"mediaKey,omitempty" json:"-"` // S3 key of the analysed blob
	Date          time.Time          `bson:"date" json:"date"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// MoodTrend classifies a window of mood scores.
type MoodTrend string

const (
	TrendNone     MoodTrend = "none"
	TrendPositive MoodTrend = "positive"
	TrendLow      MoodTrend = "low"
	TrendVolatile MoodTrend = "volatile"
	TrendMixed    MoodTrend = "mixed"
)

// MoodSummary is a deterministic digest of a mood window.
type MoodSummary struct {
	Count   int
	Average float64
	Min     int
	Max     int
	Trend   MoodTrend
}

// SummarizeMoods classifies the window. Volatility wins over level: a window
// spanning three or more points is volatile regardless of its average.
func SummarizeMoods(moods []MoodObservation) MoodSummary {
	if len(moods) == 0 {
		return MoodSummary{Trend: TrendNone}
	}
	s := MoodSummary{Count: len(moods), Min: MaxMoodScore, Max: MinMoodScore}
	total := 0
	for _, m := range moods {
		total += m.Score
		if m.Score < s.Min {
			s.Min = m.Score
		}
		if m.Score > s.Max {
			s.Max = m.Score
		}
	}
	s.Average = float64(total) / float64(len(moods))

	switch {
	case s.Max-s.Min >= 3:
		s.Trend = TrendVolatile
	case s.Min >= 4:
		s.Trend = TrendPositive
	case s.Average <= 2.5:
		s.Trend = TrendLow
	default:
		s.Trend = TrendMixed
	}
	return s
}
