package models

import "github.com/yoockh/voiceeval/internal/analysis"

// JobEvent is published on a job's pub/sub channels and forwarded to WebSocket clients.
type JobEvent struct {
	Type    string    `json:"type"` // status|result|coach_chunk|coach_complete
	JobID   string    `json:"job_id"`
	Status  JobStatus `json:"status,omitempty"`
	Message string    `json:"message,omitempty"`
	Code    string    `json:"code,omitempty"`

	Result *analysis.Result `json:"result,omitempty"`

	Seq         int64       `json:"seq,omitempty"`
	Chunk       string      `json:"chunk,omitempty"`
	CoachStatus CoachStatus `json:"coach_status,omitempty"`
}
