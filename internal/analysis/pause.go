package analysis

import "fmt"

// AnalyzePauses measures the silence between consecutive words.
// Overlapping words produce a negative gap, which is clamped to zero and never counts.
func AnalyzePauses(t Transcript, cfg Config) PauseResult {
	res := PauseResult{
		Durations:  []float64{},
		LongPauses: []LongPause{},
	}

	for i := 1; i < len(t.Words); i++ {
		prev, curr := t.Words[i-1], t.Words[i]
		gap := curr.Start - prev.End
		if gap < 0 {
			gap = 0
		}
		if gap <= cfg.PauseThreshold {
			continue
		}

		res.Count++
		res.TotalDuration += gap
		res.Durations = append(res.Durations, round2(gap))

		if gap > cfg.LongPauseThreshold {
			res.LongPauses = append(res.LongPauses, LongPause{
				After:       prev.Word,
				Before:      curr.Word,
				Start:       prev.End,
				End:         curr.Start,
				Duration:    round2(gap),
				Description: fmt.Sprintf("Pause of %.2fs between '%s' and '%s'", gap, prev.Word, curr.Word),
			})
		}
	}

	res.Category = pauseCategory(res.Count, res.TotalDuration, cfg)
	res.TotalDuration = round2(res.TotalDuration)
	return res
}

func pauseCategory(count int, total float64, cfg Config) PauseCategory {
	switch {
	case count >= cfg.PoorPauseCount || total > cfg.PoorPauseSeconds:
		return PausePoor
	case count >= cfg.ModeratePauseCount:
		return PauseModerate
	default:
		return PauseGood
	}
}
