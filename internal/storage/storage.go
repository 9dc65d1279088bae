package storage

import (
	"context"
	"io"
	"time"
)

type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}

type Signer interface {
	SignedGetURL(ctx context.Context, objectName string, ttl time.Duration) (string, error)
}

// AudioStore stages uploaded audio for asynchronous evaluation jobs.
type AudioStore interface {
	Uploader
	Signer
	Delete(ctx context.Context, objectName string) error
}
