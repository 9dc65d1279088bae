package stt

import (
	"context"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/yoockh/voiceeval/internal/analysis"
	"github.com/yoockh/voiceeval/internal/utils"
)

type GoogleSpeech struct {
	c *speech.Client

	// SampleRateHz is only sent for raw LINEAR16 input; container formats carry their own.
	SampleRateHz int32
}

func NewGoogleSpeech(ctx context.Context) (*GoogleSpeech, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GoogleSpeech{c: c, SampleRateHz: 16000}, nil
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

// encodingFor maps an upload content type to a recognition encoding.
func encodingFor(contentType string) speechpb.RecognitionConfig_AudioEncoding {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "audio/mpeg", "audio/mp3":
		return speechpb.RecognitionConfig_MP3
	case "audio/flac", "audio/x-flac":
		return speechpb.RecognitionConfig_FLAC
	case "audio/ogg", "audio/opus":
		return speechpb.RecognitionConfig_OGG_OPUS
	case "audio/webm":
		return speechpb.RecognitionConfig_WEBM_OPUS
	case "audio/l16", "audio/pcm":
		return speechpb.RecognitionConfig_LINEAR16
	default:
		// WAV and anything else with a self-describing header
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

// language example: "en-US"
func (g *GoogleSpeech) Transcribe(ctx context.Context, audio []byte, contentType, language string) (*analysis.RawTranscription, error) {
	const op = "GoogleSpeech.Transcribe"

	if language == "" {
		language = DefaultLanguage
	}

	cfg := &speechpb.RecognitionConfig{
		Encoding:                   encodingFor(contentType),
		LanguageCode:               language,
		EnableAutomaticPunctuation: true,
		EnableWordTimeOffsets:      true,
		EnableWordConfidence:       true,
	}
	if cfg.Encoding == speechpb.RecognitionConfig_LINEAR16 {
		cfg.SampleRateHertz = g.SampleRateHz
	}

	// long-running recognition handles audio over one minute; Wait polls until ctx ends
	lro, err := g.c.LongRunningRecognize(ctx, &speechpb.LongRunningRecognizeRequest{
		Config: cfg,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, failedMessage, err)
	}

	resp, err := lro.Wait(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, utils.E(utils.CodeTimeout, op, failedMessage, err)
		}
		return nil, utils.E(utils.CodeUnavailable, op, failedMessage, err)
	}

	return fromSpeechResults(resp.GetResults()), nil
}

// fromSpeechResults keeps the top alternative of every result, in order.
func fromSpeechResults(results []*speechpb.SpeechRecognitionResult) *analysis.RawTranscription {
	out := &analysis.RawTranscription{Words: []analysis.RawWord{}}

	var text []string
	for _, r := range results {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		best := alts[0]
		if t := strings.TrimSpace(best.GetTranscript()); t != "" {
			text = append(text, t)
		}
		for _, w := range best.GetWords() {
			out.Words = append(out.Words, analysis.RawWord{
				Text:       w.GetWord(),
				StartMS:    w.GetStartTime().AsDuration().Milliseconds(),
				EndMS:      w.GetEndTime().AsDuration().Milliseconds(),
				Confidence: float64(w.GetConfidence()),
			})
		}
	}
	out.Text = strings.Join(text, " ")
	return out
}
