package analysis

import "strings"

var paceFeedback = map[PaceCategory]string{
	PaceSlow:        "Too slow.",
	PaceFast:        "Too fast.",
	PaceAppropriate: "Your speaking pace is appropriate.",
}

var pauseFeedback = map[PauseCategory]string{
	PausePoor:     "Try to improve fluency as too many or long pauses detected.",
	PauseModerate: "Try to reduce pauses to improve fluency.",
	PauseGood:     "You maintained good fluency with few or no pauses.",
}

var fillerFeedback = map[FillerTier]string{
	FillerHigh:     "Your current speech pattern shows High usage of filler words, which may significantly affect how your message is received.",
	FillerFrequent: "Filler words are showing up often to potentially distract from your message. Consider pausing instead of inserting Filler words.",
	FillerSome:     "There's some use of filler words, which is natural in conversation. With a bit more practice, you can polish your speaking flow.",
	FillerMinimal:  "Excellent job! Your speech is clear and concise with minimal reliance on filler words. You’re maintaining strong verbal control.",
}

func PaceFeedback(c PaceCategory) string { return paceFeedback[c] }
func PauseFeedback(c PauseCategory) string { return pauseFeedback[c] }
func FillerFeedback(t FillerTier) string { return fillerFeedback[t] }

// ComposeFeedback builds the pace, pronunciation and fluency summary.
// The fluency clause uses its own pause-count trigger, not the pause category.
func ComposeFeedback(pace PaceCategory, mispronounced []WordEvent, pauseCount, fluencyPauseCount int) string {
	clauses := make([]string, 0, 3)

	switch pace {
	case PaceSlow:
		clauses = append(clauses, "You spoke a bit slowly.")
	case PaceFast:
		clauses = append(clauses, "You spoke a bit fast.")
	default:
		clauses = append(clauses, "You spoke at a good pace.")
	}

	if len(mispronounced) > 0 {
		unclear := make([]string, len(mispronounced))
		for i, w := range mispronounced {
			unclear[i] = w.Word
		}
		clauses = append(clauses, "Focus on pronouncing "+strings.Join(unclear, ", ")+".")
	} else {
		clauses = append(clauses, "Your pronunciation was generally clear.")
	}

	if pauseCount >= fluencyPauseCount {
		clauses = append(clauses, "Try to reduce long pauses for smoother speech.")
	} else {
		clauses = append(clauses, "Your fluency was good with few or no pauses.")
	}

	return strings.Join(clauses, " ")
}
