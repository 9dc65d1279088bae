package stt

import (
	"context"

	"github.com/yoockh/voiceeval/internal/analysis"
)

// Provider turns audio into word-level text with millisecond offsets and per-word confidence.
type Provider interface {
	Transcribe(ctx context.Context, audio []byte, contentType, language string) (*analysis.RawTranscription, error)
	Close() error
}

// DefaultLanguage is the only locale the analysis vocabulary supports.
const DefaultLanguage = "en-US"

const failedMessage = "Transcription failed."
