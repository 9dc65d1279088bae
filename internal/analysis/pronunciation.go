package analysis

import "math"

// ScorePronunciation uses recognition confidence as a proxy for pronunciation quality.
// The transcript must not be empty.
func ScorePronunciation(t Transcript, threshold float64) PronunciationResult {
	var sum float64
	mispronounced := []WordEvent{}
	for _, w := range t.Words {
		sum += w.Confidence
		if w.Confidence < threshold {
			mispronounced = append(mispronounced, w)
		}
	}

	mean := sum / float64(len(t.Words))
	return PronunciationResult{
		Score:         int(math.Round(mean * 100)),
		Mispronounced: mispronounced,
	}
}
