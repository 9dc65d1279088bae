package analysis

import (
	"sort"
	"strings"
)

const tokenPunctuation = ",.?!"

// fillerMatcher matches single-token and multi-token filler phrases over a token stream.
type fillerMatcher struct {
	phrases map[string]struct{}
	lengths []int // distinct phrase lengths in tokens, longest first
}

func newFillerMatcher(vocabulary []string) fillerMatcher {
	m := fillerMatcher{phrases: make(map[string]struct{}, len(vocabulary))}
	seen := map[int]bool{}
	for _, p := range vocabulary {
		n := len(strings.Fields(p))
		if n == 0 {
			continue
		}
		m.phrases[p] = struct{}{}
		if !seen[n] {
			seen[n] = true
			m.lengths = append(m.lengths, n)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(m.lengths)))
	return m
}

// match returns the phrase starting at tokens[i] and its length, longest phrase first.
func (m fillerMatcher) match(tokens []string, i int) (string, int) {
	for _, n := range m.lengths {
		if i+n > len(tokens) {
			continue
		}
		candidate := strings.Join(tokens[i:i+n], " ")
		if _, ok := m.phrases[candidate]; ok {
			return candidate, n
		}
	}
	return "", 0
}

// AnalyzeFillers counts filler words in the raw transcript text.
// The percentage denominator is the whitespace token count of the text, not the word-event count.
// Vocabulary entries must already be lower-case and single-space separated.
func AnalyzeFillers(rawText string, vocabulary []string) FillerResult {
	fields := strings.Fields(strings.ToLower(rawText))
	tokens := make([]string, len(fields))
	for i, f := range fields {
		tokens[i] = strings.Trim(f, tokenPunctuation)
	}

	m := newFillerMatcher(vocabulary)
	res := FillerResult{Counts: map[string]int{}}
	for i := 0; i < len(tokens); {
		phrase, n := m.match(tokens, i)
		if n == 0 {
			i++
			continue
		}
		res.Counts[phrase]++
		res.Total++
		i += n
	}

	if len(tokens) > 0 {
		res.Percentage = round2(float64(res.Total) / float64(len(tokens)) * 100)
	}
	res.Tier = fillerTier(res.Percentage)
	return res
}

func fillerTier(pct float64) FillerTier {
	switch {
	case pct > 40:
		return FillerHigh
	case pct > 25:
		return FillerFrequent
	case pct > 10:
		return FillerSome
	default:
		return FillerMinimal
	}
}
