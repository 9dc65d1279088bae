package analysis

import "testing"

// evenTranscript spreads n back-to-back words over duration seconds.
func evenTranscript(n int, duration float64) Transcript {
	words := make([]WordEvent, n)
	step := duration / float64(n)
	for i := range words {
		words[i] = WordEvent{Word: "w", Start: float64(i) * step, End: float64(i+1) * step, Confidence: 0.9}
	}
	return Transcript{Words: words, DurationSeconds: duration}
}

func TestScorePronunciation_MeanAndThreshold(t *testing.T) {
	tr := Transcript{Words: []WordEvent{
		{Word: "one", Start: 0, End: 0.5, Confidence: 0.9},
		{Word: "two", Start: 0.5, End: 1.0, Confidence: 0.8},
		{Word: "three", Start: 1.0, End: 1.5, Confidence: 0.7},
	}}

	res := ScorePronunciation(tr, 0.85)
	if res.Score != 80 {
		t.Errorf("score = %d, want 80", res.Score)
	}
	if len(res.Mispronounced) != 2 {
		t.Fatalf("mispronounced = %+v, want 2 entries", res.Mispronounced)
	}
	if res.Mispronounced[0].Word != "two" || res.Mispronounced[0].Confidence != 0.8 {
		t.Errorf("first mispronounced = %+v, want two@0.8", res.Mispronounced[0])
	}
	if res.Mispronounced[1].Word != "three" || res.Mispronounced[1].Start != 1.0 || res.Mispronounced[1].End != 1.5 {
		t.Errorf("second mispronounced = %+v, want three [1.0,1.5]", res.Mispronounced[1])
	}
}

func TestScorePronunciation_RoundsHalfAwayFromZero(t *testing.T) {
	tr := Transcript{Words: []WordEvent{
		{Word: "a", Confidence: 0.875},
		{Word: "b", Confidence: 0.875},
	}}
	if got := ScorePronunciation(tr, 0.85).Score; got != 88 {
		t.Errorf("score = %d, want 88", got)
	}
}

func TestScorePronunciation_ThresholdIsStrict(t *testing.T) {
	tr := Transcript{Words: []WordEvent{{Word: "edge", Confidence: 0.85}}}
	if got := ScorePronunciation(tr, 0.85).Mispronounced; len(got) != 0 {
		t.Errorf("confidence equal to threshold flagged: %+v", got)
	}
}

func TestAnalyzePace(t *testing.T) {
	tests := []struct {
		name     string
		words    int
		duration float64
		wantWPM  int
		wantCat  PaceCategory
	}{
		{"appropriate", 100, 60, 100, PaceAppropriate},
		{"fast", 200, 60, 200, PaceFast},
		{"slow", 50, 60, 50, PaceSlow},
		{"lower bound inclusive", 90, 60, 90, PaceAppropriate},
		{"upper bound inclusive", 150, 60, 150, PaceAppropriate},
		{"just over", 151, 60, 151, PaceFast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzePace(evenTranscript(tt.words, tt.duration), 90, 150)
			if got.WPM != tt.wantWPM || got.Category != tt.wantCat {
				t.Errorf("got %d/%s, want %d/%s", got.WPM, got.Category, tt.wantWPM, tt.wantCat)
			}
		})
	}
}

func TestAnalyzePace_ZeroDuration(t *testing.T) {
	tr := Transcript{Words: []WordEvent{{Word: "x"}}, DurationSeconds: 0}
	got := AnalyzePace(tr, 90, 150)
	if got.WPM != 0 || got.Category != PaceSlow {
		t.Errorf("got %d/%s, want 0/slow", got.WPM, got.Category)
	}
}

func TestAnalyzePauses_PauseAndLongPause(t *testing.T) {
	tr := Transcript{Words: []WordEvent{
		{Word: "A", Start: 0.5, End: 1.0},
		{Word: "B", Start: 1.6, End: 1.8},
		{Word: "C", Start: 3.0, End: 3.5},
	}}

	res := AnalyzePauses(tr, DefaultConfig())
	if res.Count != 2 {
		t.Fatalf("pause count = %d, want 2", res.Count)
	}
	if res.Durations[0] != 0.6 || res.Durations[1] != 1.2 {
		t.Errorf("durations = %v, want [0.6 1.2]", res.Durations)
	}
	if len(res.LongPauses) != 1 {
		t.Fatalf("long pauses = %+v, want 1", res.LongPauses)
	}
	lp := res.LongPauses[0]
	if lp.After != "B" || lp.Before != "C" || lp.Duration != 1.2 {
		t.Errorf("long pause = %+v, want B->C 1.2", lp)
	}
	if lp.Description != "Pause of 1.20s between 'B' and 'C'" {
		t.Errorf("description = %q", lp.Description)
	}
	if res.TotalDuration != 1.8 {
		t.Errorf("total = %v, want 1.8", res.TotalDuration)
	}
	if res.Category != PauseModerate {
		t.Errorf("category = %s, want moderate", res.Category)
	}
}

func TestAnalyzePauses_OverlapNeverCounts(t *testing.T) {
	tr := Transcript{Words: []WordEvent{
		{Word: "A", Start: 0, End: 2.0},
		{Word: "B", Start: 1.2, End: 2.5},
		{Word: "C", Start: 2.5, End: 3.0},
	}}

	res := AnalyzePauses(tr, DefaultConfig())
	if res.Count != 0 || res.TotalDuration != 0 || len(res.Durations) != 0 {
		t.Errorf("overlap counted as pause: %+v", res)
	}
	if res.Category != PauseGood {
		t.Errorf("category = %s, want good", res.Category)
	}
}

func TestAnalyzePauses_Categories(t *testing.T) {
	gapWords := func(gaps ...float64) Transcript {
		words := []WordEvent{{Word: "w0", Start: 0, End: 0.2}}
		cursor := 0.2
		for i, g := range gaps {
			start := cursor + g
			words = append(words, WordEvent{Word: "w" + string(rune('1'+i)), Start: start, End: start + 0.2})
			cursor = start + 0.2
		}
		return Transcript{Words: words}
	}

	tests := []struct {
		name string
		tr   Transcript
		want PauseCategory
	}{
		{"none", gapWords(0.1, 0.2), PauseGood},
		{"one", gapWords(0.75), PauseGood},
		{"two", gapWords(0.75, 0.75), PauseModerate},
		{"five", gapWords(0.75, 0.75, 0.75, 0.75, 0.75), PausePoor},
		{"long total", gapWords(5.5), PausePoor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnalyzePauses(tt.tr, DefaultConfig()).Category; got != tt.want {
				t.Errorf("category = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAnalyzeFillers_SingleTokens(t *testing.T) {
	res := AnalyzeFillers("um so i think this is um great", []string{"um", "so"})
	if res.Total != 3 {
		t.Errorf("total = %d, want 3", res.Total)
	}
	if res.Counts["um"] != 2 || res.Counts["so"] != 1 {
		t.Errorf("counts = %v", res.Counts)
	}
	if res.Percentage != 37.5 {
		t.Errorf("percentage = %v, want 37.5", res.Percentage)
	}
	if res.Tier != FillerFrequent {
		t.Errorf("tier = %s, want frequent", res.Tier)
	}
}

func TestAnalyzeFillers_PunctuationAndCase(t *testing.T) {
	res := AnalyzeFillers("Um, I was, like... WELL? Right!", DefaultConfig().FillerWords)
	if res.Total != 4 {
		t.Errorf("total = %d (%v), want 4", res.Total, res.Counts)
	}
	for _, w := range []string{"um", "like", "well", "right"} {
		if res.Counts[w] != 1 {
			t.Errorf("count[%s] = %d, want 1", w, res.Counts[w])
		}
	}
}

func TestAnalyzeFillers_MultiTokenPhrases(t *testing.T) {
	res := AnalyzeFillers("You know, I mean it is like, right", DefaultConfig().FillerWords)
	if res.Counts["you know"] != 1 || res.Counts["i mean"] != 1 {
		t.Errorf("phrase counts = %v", res.Counts)
	}
	if res.Total != 4 {
		t.Errorf("total = %d, want 4", res.Total)
	}
	if res.Percentage != 50 {
		t.Errorf("percentage = %v, want 50", res.Percentage)
	}
	if res.Tier != FillerHigh {
		t.Errorf("tier = %s, want high", res.Tier)
	}
}

func TestAnalyzeFillers_EmptyText(t *testing.T) {
	res := AnalyzeFillers("   ", DefaultConfig().FillerWords)
	if res.Total != 0 || res.Percentage != 0 || res.Tier != FillerMinimal {
		t.Errorf("got %+v, want zero/minimal", res)
	}
}

func TestFillerTier_Boundaries(t *testing.T) {
	tests := map[float64]FillerTier{
		0: FillerMinimal, 10: FillerMinimal, 10.01: FillerSome,
		25: FillerSome, 25.5: FillerFrequent, 40: FillerFrequent, 40.01: FillerHigh,
	}
	for pct, want := range tests {
		if got := fillerTier(pct); got != want {
			t.Errorf("fillerTier(%v) = %s, want %s", pct, got, want)
		}
	}
}

func TestFillerFeedback_ExactText(t *testing.T) {
	// clients match on these strings, so punctuation must not drift
	want := map[FillerTier]string{
		FillerMinimal:  "Excellent job! Your speech is clear and concise with minimal reliance on filler words. You\u2019re maintaining strong verbal control.",
		FillerSome:     "There's some use of filler words, which is natural in conversation. With a bit more practice, you can polish your speaking flow.",
		FillerFrequent: "Filler words are showing up often to potentially distract from your message. Consider pausing instead of inserting Filler words.",
	}
	for tier, msg := range want {
		if got := FillerFeedback(tier); got != msg {
			t.Errorf("FillerFeedback(%v) = %q, want %q", tier, got, msg)
		}
	}
}

func TestComposeFeedback(t *testing.T) {
	got := ComposeFeedback(PaceFast, nil, 0, 2)
	want := "You spoke a bit fast. Your pronunciation was generally clear. Your fluency was good with few or no pauses."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got = ComposeFeedback(PaceSlow, []WordEvent{{Word: "quay"}, {Word: "colonel"}}, 2, 2)
	want = "You spoke a bit slowly. Focus on pronouncing quay, colonel. Try to reduce long pauses for smoother speech."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestComposeFeedback_FluencyIndependentOfPauseCategory(t *testing.T) {
	// one 6s pause: category is poor, yet the summary's fluency clause stays positive
	tr := Transcript{Words: []WordEvent{
		{Word: "a", Start: 0, End: 0.5},
		{Word: "b", Start: 6.5, End: 7},
	}}
	cfg := DefaultConfig()
	pauses := AnalyzePauses(tr, cfg)
	if pauses.Category != PausePoor {
		t.Fatalf("category = %s, want poor", pauses.Category)
	}

	got := ComposeFeedback(PaceAppropriate, nil, pauses.Count, cfg.FluencyPauseCount)
	want := "You spoke at a good pace. Your pronunciation was generally clear. Your fluency was good with few or no pauses."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
