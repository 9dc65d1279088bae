package analysis

import "math"

func AnalyzePace(t Transcript, slowWPM, fastWPM int) PaceResult {
	wpm := 0
	if t.DurationSeconds > 0 {
		wpm = int(math.Round(float64(len(t.Words)) / t.DurationSeconds * 60))
	}
	return PaceResult{WPM: wpm, Category: paceCategory(wpm, slowWPM, fastWPM)}
}

// paceCategory is inclusive of both bounds for "appropriate".
func paceCategory(wpm, slowWPM, fastWPM int) PaceCategory {
	switch {
	case wpm < slowWPM:
		return PaceSlow
	case wpm > fastWPM:
		return PaceFast
	default:
		return PaceAppropriate
	}
}
