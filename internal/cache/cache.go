package cache

import (
	"context"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// TranscriptionKey addresses a provider transcription by the content of the audio,
// so re-uploading the same file does not pay for a second transcription.
func TranscriptionKey(provider string, audio []byte) string {
	sum := blake2b.Sum256(audio)
	return "transcription:" + provider + ":" + hex.EncodeToString(sum[:])
}
