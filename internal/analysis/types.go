package analysis

// RawWord is one word entry as delivered by a transcription provider.
// Offsets are milliseconds from the start of the audio.
type RawWord struct {
	Text       string  `json:"text" bson:"text"`
	StartMS    int64   `json:"start" bson:"start"`
	EndMS      int64   `json:"end" bson:"end"`
	Confidence float64 `json:"confidence" bson:"confidence"`
}

// RawTranscription is the provider-agnostic input of the analysis pipeline.
type RawTranscription struct {
	Text  string    `json:"text" bson:"text"`
	Words []RawWord `json:"words" bson:"words"`
}

// WordEvent is a single transcribed word aligned on the audio timeline.
type WordEvent struct {
	Word       string  `json:"word" bson:"word"`
	Start      float64 `json:"start" bson:"start"`
	End        float64 `json:"end" bson:"end"`
	Confidence float64 `json:"confidence" bson:"confidence"`
}

// Transcript is the normalized timeline.
type Transcript struct {
	RawText         string
	Words           []WordEvent
	DurationSeconds float64
}

type PaceCategory string

const (
	PaceSlow        PaceCategory = "slow"
	PaceAppropriate PaceCategory = "appropriate"
	PaceFast        PaceCategory = "fast"
)

type PauseCategory string

const (
	PauseGood     PauseCategory = "good"
	PauseModerate PauseCategory = "moderate"
	PausePoor     PauseCategory = "poor"
)

type FillerTier string

const (
	FillerMinimal  FillerTier = "minimal"
	FillerSome     FillerTier = "some"
	FillerFrequent FillerTier = "frequent"
	FillerHigh     FillerTier = "high"
)

type PronunciationResult struct {
	Score         int
	Mispronounced []WordEvent
}

type PaceResult struct {
	WPM      int
	Category PaceCategory
}

// LongPause describes a silence longer than the long-pause threshold.
type LongPause struct {
	After       string  `json:"after" bson:"after"`
	Before      string  `json:"before" bson:"before"`
	Start       float64 `json:"start" bson:"start"`
	End         float64 `json:"end" bson:"end"`
	Duration    float64 `json:"duration" bson:"duration"`
	Description string  `json:"description" bson:"description"`
}

type PauseResult struct {
	Count         int
	Durations     []float64
	TotalDuration float64
	LongPauses    []LongPause
	Category      PauseCategory
}

type FillerResult struct {
	Counts     map[string]int
	Total      int
	Percentage float64
	Tier       FillerTier
}

// Result is the complete feedback for one transcript.
type Result struct {
	TranscribedText string      `json:"transcribed_text" bson:"transcribed_text"`
	Words           []WordEvent `json:"words" bson:"words"`
	DurationSeconds float64     `json:"duration_seconds" bson:"duration_seconds"`

	PronunciationScore int         `json:"pronunciation_score" bson:"pronunciation_score"`
	MispronouncedWords []WordEvent `json:"mispronounced_words" bson:"mispronounced_words"`

	WordsPerMinute int          `json:"words_per_minute" bson:"words_per_minute"`
	PaceCategory   PaceCategory `json:"pace_category" bson:"pace_category"`
	PaceFeedback   string       `json:"pace_feedback" bson:"pace_feedback"`

	PauseCount                int           `json:"pause_count" bson:"pause_count"`
	PauseDurations            []float64     `json:"pause_durations" bson:"pause_durations"`
	LongPauses                []LongPause   `json:"long_pauses" bson:"long_pauses"`
	TotalPauseDurationSeconds float64       `json:"total_pause_duration_seconds" bson:"total_pause_duration_seconds"`
	PauseCategory             PauseCategory `json:"pause_category" bson:"pause_category"`
	PauseFeedback             string        `json:"pause_feedback" bson:"pause_feedback"`

	FillerWordsUsed      map[string]int `json:"filler_words_used" bson:"filler_words_used"`
	TotalFillerWordCount int            `json:"total_filler_word_count" bson:"total_filler_word_count"`
	FillerWordPercentage float64        `json:"filler_word_percentage" bson:"filler_word_percentage"`
	FillerTier           FillerTier     `json:"filler_tier" bson:"filler_tier"`
	FillerFeedback       string         `json:"filler_feedback" bson:"filler_feedback"`

	FinalFeedback string `json:"final_feedback" bson:"final_feedback"`
}
