package services

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/voiceeval/internal/analysis"
	"github.com/yoockh/voiceeval/internal/utils"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func sampleTranscription() *analysis.RawTranscription {
	return &analysis.RawTranscription{
		Text: "Um I think this is good",
		Words: []analysis.RawWord{
			{Text: "Um", StartMS: 0, EndMS: 300, Confidence: 0.6},
			{Text: "I", StartMS: 400, EndMS: 500, Confidence: 0.95},
			{Text: "think", StartMS: 600, EndMS: 1000, Confidence: 0.9},
			{Text: "this", StartMS: 1600, EndMS: 1800, Confidence: 0.92},
			{Text: "is", StartMS: 3200, EndMS: 3300, Confidence: 0.97},
			{Text: "good", StartMS: 3400, EndMS: 4000, Confidence: 0.88},
		},
	}
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name string
		up   Upload
		ok   bool
	}{
		{"wav", Upload{ContentType: "audio/wav", Data: wavHeader}, true},
		{"declared with params", Upload{ContentType: "audio/webm; codecs=opus", Data: []byte{0x01, 0x02, 0x03}}, true},
		{"unknown binary", Upload{ContentType: "audio/mpeg", Data: []byte{0x00, 0xff, 0x13, 0x37}}, true},
		{"empty body", Upload{ContentType: "audio/wav"}, false},
		{"declared text", Upload{ContentType: "text/plain", Data: wavHeader}, false},
		{"missing content type", Upload{Data: wavHeader}, false},
		{"pdf disguised as audio", Upload{ContentType: "audio/mpeg", Data: []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")}, false},
	}
	for _, tt := range tests {
		err := ValidateUpload(tt.up)
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.ok {
			if !utils.IsCode(err, utils.CodeInvalidArgument) {
				t.Errorf("%s: expected INVALID_ARGUMENT, got %v", tt.name, err)
				continue
			}
			if got := utils.SafeMessage(err); got != invalidAudioMessage {
				t.Errorf("%s: message = %q", tt.name, got)
			}
		}
	}
}

func TestEvaluate_TranscribesAndAnalyzes(t *testing.T) {
	provider := &fakeSTT{out: sampleTranscription()}
	svc := NewEvaluationService(provider, "fake", analysis.NewAnalyzer(analysis.DefaultConfig()), nil, 0, quietLogger())

	res, err := svc.Evaluate(context.Background(), Upload{FileName: "a.wav", ContentType: "audio/wav", Data: wavHeader})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TranscribedText != "Um I think this is good" {
		t.Errorf("transcribed text = %q", res.TranscribedText)
	}
	if res.PauseCount != 2 {
		t.Errorf("pause count = %d, want 2", res.PauseCount)
	}
	if res.TotalFillerWordCount != 1 {
		t.Errorf("filler count = %d, want 1", res.TotalFillerWordCount)
	}
}

func TestEvaluate_UsesCacheOnSecondCall(t *testing.T) {
	provider := &fakeSTT{out: sampleTranscription()}
	c := newMemCache()
	svc := NewEvaluationService(provider, "fake", analysis.NewAnalyzer(analysis.DefaultConfig()), c, 0, quietLogger())
	up := Upload{ContentType: "audio/wav", Data: wavHeader}

	first, err := svc.Evaluate(context.Background(), up)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.Evaluate(context.Background(), up)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
	if first.FinalFeedback != second.FinalFeedback || first.PronunciationScore != second.PronunciationScore {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}
}

func TestEvaluate_CacheFailureIsNotFatal(t *testing.T) {
	provider := &fakeSTT{out: sampleTranscription()}
	c := newMemCache()
	c.err = errBoom
	svc := NewEvaluationService(provider, "fake", analysis.NewAnalyzer(analysis.DefaultConfig()), c, 0, quietLogger())

	if _, err := svc.Evaluate(context.Background(), Upload{ContentType: "audio/wav", Data: wavHeader}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEvaluate_EmptyTranscriptIsNotCached(t *testing.T) {
	provider := &fakeSTT{out: &analysis.RawTranscription{Words: []analysis.RawWord{}}}
	c := newMemCache()
	svc := NewEvaluationService(provider, "fake", analysis.NewAnalyzer(analysis.DefaultConfig()), c, 0, quietLogger())

	_, err := svc.Evaluate(context.Background(), Upload{ContentType: "audio/wav", Data: wavHeader})
	if !utils.IsCode(err, utils.CodeEmptyTranscript) {
		t.Fatalf("expected EMPTY_TRANSCRIPT, got %v", err)
	}
	if len(c.data) != 0 {
		t.Errorf("empty transcription was cached")
	}
}

func TestEvaluate_ProviderErrors(t *testing.T) {
	plain := &fakeSTT{err: errBoom}
	svc := NewEvaluationService(plain, "fake", analysis.NewAnalyzer(analysis.DefaultConfig()), nil, 0, quietLogger())
	_, err := svc.Evaluate(context.Background(), Upload{ContentType: "audio/wav", Data: wavHeader})
	if !utils.IsCode(err, utils.CodeUnavailable) {
		t.Errorf("plain provider error: got %v", err)
	}

	typed := &fakeSTT{err: utils.E(utils.CodeTimeout, "stt", "Transcription timed out.", nil)}
	svc = NewEvaluationService(typed, "fake", analysis.NewAnalyzer(analysis.DefaultConfig()), nil, 0, quietLogger())
	_, err = svc.Evaluate(context.Background(), Upload{ContentType: "audio/wav", Data: wavHeader})
	if !utils.IsCode(err, utils.CodeTimeout) {
		t.Errorf("typed provider error should pass through, got %v", err)
	}
}

func TestEvaluate_InvalidUploadSkipsProvider(t *testing.T) {
	provider := &fakeSTT{out: sampleTranscription()}
	svc := NewEvaluationService(provider, "fake", analysis.NewAnalyzer(analysis.DefaultConfig()), nil, 0, quietLogger())

	if _, err := svc.Evaluate(context.Background(), Upload{ContentType: "image/png", Data: wavHeader}); err == nil {
		t.Fatal("expected error")
	}
	if provider.calls != 0 {
		t.Errorf("provider was called for invalid upload")
	}
}
