package analysis

import "strings"

// Config holds the thresholds and vocabulary used by every analyzer.
// It is passed by value, so an Analyzer never observes later mutation by the caller.
type Config struct {
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" json:"confidence_threshold"`

	PauseThreshold     float64 `mapstructure:"pause_threshold" json:"pause_threshold"`
	LongPauseThreshold float64 `mapstructure:"long_pause_threshold" json:"long_pause_threshold"`
	PoorPauseCount     int     `mapstructure:"poor_pause_count" json:"poor_pause_count"`
	PoorPauseSeconds   float64 `mapstructure:"poor_pause_seconds" json:"poor_pause_seconds"`
	ModeratePauseCount int     `mapstructure:"moderate_pause_count" json:"moderate_pause_count"`

	// FluencyPauseCount triggers the "reduce pauses" clause of the summary.
	// It is deliberately separate from the pause category tiers.
	FluencyPauseCount int `mapstructure:"fluency_pause_count" json:"fluency_pause_count"`

	SlowWPM int `mapstructure:"slow_wpm" json:"slow_wpm"`
	FastWPM int `mapstructure:"fast_wpm" json:"fast_wpm"`

	FillerWords []string `mapstructure:"filler_words" json:"filler_words"`
}

// DefaultFillerWords is the fixed en-US filler vocabulary.
var DefaultFillerWords = []string{
	"um", "uh", "like", "you know", "so", "actually", "basically", "right", "i mean", "well",
}

func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.85,
		PauseThreshold:      0.5,
		LongPauseThreshold:  1.0,
		PoorPauseCount:      5,
		PoorPauseSeconds:    5,
		ModeratePauseCount:  2,
		FluencyPauseCount:   2,
		SlowWPM:             90,
		FastWPM:             150,
		FillerWords:         append([]string(nil), DefaultFillerWords...),
	}
}

// normalized returns a copy with a private, lower-cased vocabulary slice.
func (c Config) normalized() Config {
	words := make([]string, 0, len(c.FillerWords))
	for _, w := range c.FillerWords {
		w = strings.Join(strings.Fields(strings.ToLower(w)), " ")
		if w != "" {
			words = append(words, w)
		}
	}
	c.FillerWords = words
	return c
}
