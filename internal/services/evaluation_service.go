package services

import (
	"context"
	"errors"
	"mime"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/voiceeval/internal/analysis"
	"github.com/yoockh/voiceeval/internal/cache"
	"github.com/yoockh/voiceeval/internal/providers/stt"
	"github.com/yoockh/voiceeval/internal/utils"
)

const invalidAudioMessage = "Please upload a valid audio file (.mp3 or .wav)."

// Upload is an audio file received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ValidateUpload accepts declared audio/* uploads whose content does not sniff as another known type.
func ValidateUpload(up Upload) error {
	const op = "EvaluationService.ValidateUpload"

	if len(up.Data) == 0 {
		return utils.E(utils.CodeInvalidArgument, op, invalidAudioMessage, errors.New("empty upload"))
	}

	declared, _, err := mime.ParseMediaType(up.ContentType)
	if err != nil || !strings.HasPrefix(declared, "audio/") {
		return utils.E(utils.CodeInvalidArgument, op, invalidAudioMessage, errors.New("declared content type "+up.ContentType))
	}

	if sniffed := mimetype.Detect(up.Data); !audioLike(sniffed) {
		return utils.E(utils.CodeInvalidArgument, op, invalidAudioMessage, errors.New("content sniffed as "+sniffed.String()))
	}
	return nil
}

// audioLike also admits video containers (webm, mp4) that commonly carry voice recordings,
// and unknown binary such as raw PCM.
func audioLike(m *mimetype.MIME) bool {
	if m.Is("application/octet-stream") || m.Is("application/ogg") {
		return true
	}
	s := m.String()
	return strings.HasPrefix(s, "audio/") || strings.HasPrefix(s, "video/")
}

type EvaluationService interface {
	// Evaluate validates, transcribes and analyzes one upload.
	Evaluate(ctx context.Context, up Upload) (*analysis.Result, error)
}

type evaluationService struct {
	stt      stt.Provider
	provider string
	analyzer *analysis.Analyzer
	cache    cache.Cache
	cacheTTL time.Duration
	log      *logrus.Logger
}

// NewEvaluationService wires the transcription provider to the analyzer.
// c may be nil to disable the transcription cache.
func NewEvaluationService(provider stt.Provider, providerName string, analyzer *analysis.Analyzer, c cache.Cache, cacheTTL time.Duration, log *logrus.Logger) EvaluationService {
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	if log == nil {
		log = logrus.New()
	}
	return &evaluationService{
		stt:      provider,
		provider: providerName,
		analyzer: analyzer,
		cache:    c,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

func (s *evaluationService) Evaluate(ctx context.Context, up Upload) (*analysis.Result, error) {
	if err := ValidateUpload(up); err != nil {
		return nil, err
	}

	raw, err := s.transcribe(ctx, up)
	if err != nil {
		return nil, err
	}

	return s.analyzer.Run(*raw)
}

func (s *evaluationService) transcribe(ctx context.Context, up Upload) (*analysis.RawTranscription, error) {
	const op = "EvaluationService.Transcribe"

	var key string
	if s.cache != nil {
		key = cache.TranscriptionKey(s.provider, up.Data)
		var cached analysis.RawTranscription
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.log.WithError(err).WithField("key", key).Warn("transcription cache read failed")
		}
		if hit {
			s.log.WithField("key", key).Debug("transcription cache hit")
			return &cached, nil
		}
	}

	start := time.Now()
	raw, err := s.stt.Transcribe(ctx, up.Data, up.ContentType, stt.DefaultLanguage)
	if err != nil {
		var ae *utils.AppError
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, utils.E(utils.CodeUnavailable, op, "Transcription failed.", err)
	}
	if raw == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "Transcription failed.", errors.New("provider returned no transcription"))
	}

	s.log.WithFields(logrus.Fields{
		"provider":   s.provider,
		"words":      len(raw.Words),
		"latency_ms": time.Since(start).Milliseconds(),
	}).Info("transcription completed")

	if s.cache != nil && len(raw.Words) > 0 {
		if err := s.cache.SetJSON(ctx, key, raw, s.cacheTTL); err != nil {
			s.log.WithError(err).WithField("key", key).Warn("transcription cache write failed")
		}
	}
	return raw, nil
}
