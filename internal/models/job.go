package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yoockh/voiceeval/internal/analysis"
)

type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobFailed     JobStatus = "failed"
)

// CoachStatus is set once coaching for a finished job has ended either way.
type CoachStatus string

const (
	CoachDone   CoachStatus = "done"
	CoachFailed CoachStatus = "failed"
)

// EvaluationJob tracks one asynchronous evaluation until it expires.
type EvaluationJob struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	JobID string             `bson:"job_id" json:"job_id"` // uuid v4

	Status      JobStatus `bson:"status" json:"status"`
	FileName    string    `bson:"file_name,omitempty" json:"file_name,omitempty"`
	ContentType string    `bson:"content_type" json:"content_type"`
	AudioObject string    `bson:"audio_object,omitempty" json:"-"` // GCS object, when staged

	Result      *analysis.Result `bson:"result,omitempty" json:"result,omitempty"`
	CoachNotes  string           `bson:"coach_notes,omitempty" json:"coach_notes,omitempty"`
	CoachStatus CoachStatus      `bson:"coach_status,omitempty" json:"coach_status,omitempty"`

	ErrorCode    string `bson:"error_code,omitempty" json:"error_code,omitempty"`
	ErrorMessage string `bson:"error_message,omitempty" json:"error_message,omitempty"`

	ProcessingTimeMS int64     `bson:"processing_time_ms,omitempty" json:"processing_time_ms,omitempty"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updated_at"`

	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"` // for TTL index
}
