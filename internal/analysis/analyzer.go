package analysis

import (
	"fmt"

	"github.com/yoockh/voiceeval/internal/utils"
)

// Analyzer turns a raw transcription into a Result. It holds no mutable state
// and is safe for concurrent use.
type Analyzer struct {
	cfg Config
}

func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg.normalized()}
}

// Config returns a copy of the analyzer's configuration.
func (a *Analyzer) Config() Config {
	c := a.cfg
	c.FillerWords = append([]string(nil), a.cfg.FillerWords...)
	return c
}

// Run analyzes one transcription. An empty transcript yields a CodeEmptyTranscript
// error; every other failure is reported as CodeInternal. No partial result is returned.
func (a *Analyzer) Run(raw RawTranscription) (res *Result, err error) {
	const op = "Analyzer.Run"

	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = utils.E(utils.CodeInternal, op, unexpectedMessage, fmt.Errorf("panic: %v", r))
		}
	}()

	t, err := BuildTimeline(raw)
	if err != nil {
		if utils.IsCode(err, utils.CodeEmptyTranscript) {
			return nil, err
		}
		return nil, utils.E(utils.CodeInternal, op, unexpectedMessage, err)
	}

	pron := ScorePronunciation(t, a.cfg.ConfidenceThreshold)
	pace := AnalyzePace(t, a.cfg.SlowWPM, a.cfg.FastWPM)
	pauses := AnalyzePauses(t, a.cfg)
	fillers := AnalyzeFillers(t.RawText, a.cfg.FillerWords)

	return &Result{
		TranscribedText: t.RawText,
		Words:           t.Words,
		DurationSeconds: t.DurationSeconds,

		PronunciationScore: pron.Score,
		MispronouncedWords: pron.Mispronounced,

		WordsPerMinute: pace.WPM,
		PaceCategory:   pace.Category,
		PaceFeedback:   PaceFeedback(pace.Category),

		PauseCount:                pauses.Count,
		PauseDurations:            pauses.Durations,
		LongPauses:                pauses.LongPauses,
		TotalPauseDurationSeconds: pauses.TotalDuration,
		PauseCategory:             pauses.Category,
		PauseFeedback:             PauseFeedback(pauses.Category),

		FillerWordsUsed:      fillers.Counts,
		TotalFillerWordCount: fillers.Total,
		FillerWordPercentage: fillers.Percentage,
		FillerTier:           fillers.Tier,
		FillerFeedback:       FillerFeedback(fillers.Tier),

		FinalFeedback: ComposeFeedback(pace.Category, pron.Mispronounced, pauses.Count, a.cfg.FluencyPauseCount),
	}, nil
}

const unexpectedMessage = "An unexpected error occurred during processing of the audio file."
