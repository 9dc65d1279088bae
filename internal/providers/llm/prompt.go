package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yoockh/voiceeval/internal/analysis"
)

// CoachingPrompt renders an analysis result as the user turn of a coaching request.
func CoachingPrompt(res *analysis.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Transcript:\n%s\n\n", res.TranscribedText)
	fmt.Fprintf(&b, "Pronunciation score: %d/100\n", res.PronunciationScore)
	if len(res.MispronouncedWords) > 0 {
		words := make([]string, len(res.MispronouncedWords))
		for i, w := range res.MispronouncedWords {
			words[i] = w.Word
		}
		fmt.Fprintf(&b, "Unclear words: %s\n", strings.Join(words, ", "))
	}
	fmt.Fprintf(&b, "Pace: %d words per minute (%s)\n", res.WordsPerMinute, res.PaceCategory)
	fmt.Fprintf(&b, "Pauses: %d totalling %.2fs (%s fluency)\n", res.PauseCount, res.TotalPauseDurationSeconds, res.PauseCategory)

	if len(res.FillerWordsUsed) > 0 {
		keys := make([]string, 0, len(res.FillerWordsUsed))
		for k := range res.FillerWordsUsed {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%q x%d", k, res.FillerWordsUsed[k])
		}
		fmt.Fprintf(&b, "Filler words: %s (%.2f%% of words)\n", strings.Join(parts, ", "), res.FillerWordPercentage)
	}

	fmt.Fprintf(&b, "\nAutomated summary: %s\n", res.FinalFeedback)
	return b.String()
}
