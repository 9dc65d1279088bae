package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/yoockh/voiceeval/internal/utils"
)

// ErrEmptyTranscript is wrapped by the error BuildTimeline returns for a transcript without words.
var ErrEmptyTranscript = errors.New("no words recognized")

// BuildTimeline converts provider word entries into a Transcript, keeping provider order.
func BuildTimeline(raw RawTranscription) (Transcript, error) {
	const op = "Timeline.Build"

	if len(raw.Words) == 0 {
		return Transcript{}, utils.E(utils.CodeEmptyTranscript, op, "No words found in audio.", ErrEmptyTranscript)
	}

	words := make([]WordEvent, 0, len(raw.Words))
	for i, w := range raw.Words {
		if w.StartMS < 0 || w.EndMS < w.StartMS {
			return Transcript{}, fmt.Errorf("word %d (%q): invalid offsets start=%dms end=%dms", i, w.Text, w.StartMS, w.EndMS)
		}
		if math.IsNaN(w.Confidence) || w.Confidence < 0 || w.Confidence > 1 {
			return Transcript{}, fmt.Errorf("word %d (%q): confidence %v out of range", i, w.Text, w.Confidence)
		}
		words = append(words, WordEvent{
			Word:       w.Text,
			Start:      msToSeconds(w.StartMS),
			End:        msToSeconds(w.EndMS),
			Confidence: w.Confidence,
		})
	}

	return Transcript{
		RawText:         raw.Text,
		Words:           words,
		DurationSeconds: words[len(words)-1].End,
	}, nil
}

func msToSeconds(ms int64) float64 { return float64(ms) / 1000 }

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 { return math.Round(v*100) / 100 }
