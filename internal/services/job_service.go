package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/voiceeval/internal/analysis"
	"github.com/yoockh/voiceeval/internal/models"
	"github.com/yoockh/voiceeval/internal/queue"
	mongorepo "github.com/yoockh/voiceeval/internal/repositories/mongo"
	"github.com/yoockh/voiceeval/internal/storage"
	"github.com/yoockh/voiceeval/internal/utils"
)

type JobService interface {
	Submit(ctx context.Context, up Upload) (*models.EvaluationJob, error)
	Get(ctx context.Context, jobID string) (*models.EvaluationJob, error)
	MarkProcessing(ctx context.Context, jobID string) error
	Complete(ctx context.Context, jobID string, res *analysis.Result, processingMS int64) error
	Fail(ctx context.Context, jobID string, cause error, processingMS int64) error
	FinishCoaching(ctx context.Context, jobID string, status models.CoachStatus, notes string) error
}

type jobService struct {
	jobs   mongorepo.JobRepository
	store  storage.AudioStore
	queue  queue.Enqueuer
	events queue.Publisher
	ttl    time.Duration
	log    *logrus.Logger
}

// NewJobService creates the asynchronous evaluation front. store may be nil,
// in which case audio travels inline through the queue.
func NewJobService(jobs mongorepo.JobRepository, store storage.AudioStore, q queue.Enqueuer, events queue.Publisher, ttl time.Duration, log *logrus.Logger) JobService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if log == nil {
		log = logrus.New()
	}
	return &jobService{jobs: jobs, store: store, queue: q, events: events, ttl: ttl, log: log}
}

func (s *jobService) Submit(ctx context.Context, up Upload) (*models.EvaluationJob, error) {
	const op = "JobService.Submit"

	if err := ValidateUpload(up); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &models.EvaluationJob{
		JobID:       uuid.NewString(),
		Status:      models.JobQueued,
		FileName:    up.FileName,
		ContentType: up.ContentType,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	msg := queue.Message{
		JobID:       job.JobID,
		FileName:    up.FileName,
		ContentType: up.ContentType,
		EnqueuedAt:  now,
	}

	if s.store != nil {
		objectName := "audio/" + job.JobID + strings.ToLower(filepath.Ext(up.FileName))
		stored, err := s.store.Upload(ctx, objectName, up.ContentType, bytes.NewReader(up.Data))
		if err != nil {
			return nil, utils.E(utils.CodeUnavailable, op, "failed to stage audio", err)
		}
		job.AudioObject = stored
		msg.AudioObject = stored
	} else {
		msg.AudioBase64 = base64.StdEncoding.EncodeToString(up.Data)
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create evaluation job", err)
	}

	if err := s.queue.Enqueue(ctx, msg); err != nil {
		_ = s.jobs.Fail(ctx, job.JobID, string(utils.CodeUnavailable), "failed to enqueue audio", 0)
		return nil, utils.E(utils.CodeUnavailable, op, "failed to enqueue audio", err)
	}

	s.publish(ctx, models.JobEvent{Type: "status", JobID: job.JobID, Status: models.JobQueued, Message: "audio queued"})
	return job, nil
}

func (s *jobService) Get(ctx context.Context, jobID string) (*models.EvaluationJob, error) {
	const op = "JobService.Get"

	if jobID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "job_id is required", nil)
	}
	job, err := s.jobs.GetByJobID(ctx, jobID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "evaluation job not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get evaluation job", err)
	}
	return job, nil
}

func (s *jobService) MarkProcessing(ctx context.Context, jobID string) error {
	const op = "JobService.MarkProcessing"

	if err := s.jobs.SetStatus(ctx, jobID, models.JobProcessing); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update job status", err)
	}
	s.publish(ctx, models.JobEvent{Type: "status", JobID: jobID, Status: models.JobProcessing, Message: "evaluation started"})
	return nil
}

func (s *jobService) Complete(ctx context.Context, jobID string, res *analysis.Result, processingMS int64) error {
	const op = "JobService.Complete"

	if res == nil {
		return utils.E(utils.CodeInvalidArgument, op, "result is required", nil)
	}
	if err := s.jobs.Complete(ctx, jobID, res, processingMS); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to store evaluation result", err)
	}
	s.publish(ctx, models.JobEvent{Type: "result", JobID: jobID, Status: models.JobDone, Result: res})
	s.publish(ctx, models.JobEvent{Type: "status", JobID: jobID, Status: models.JobDone, Message: "evaluation completed"})
	return nil
}

// Fail records only the code and client-safe message of cause.
func (s *jobService) Fail(ctx context.Context, jobID string, cause error, processingMS int64) error {
	const op = "JobService.Fail"

	code := string(utils.CodeOf(cause))
	msg := utils.SafeMessage(cause)
	if err := s.jobs.Fail(ctx, jobID, code, msg, processingMS); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to mark job failed", err)
	}
	s.publish(ctx, models.JobEvent{Type: "status", JobID: jobID, Status: models.JobFailed, Code: code, Message: msg})
	return nil
}

// FinishCoaching records how coaching ended and always publishes coach_complete,
// so subscribers are released even when the notes could not be stored.
func (s *jobService) FinishCoaching(ctx context.Context, jobID string, status models.CoachStatus, notes string) error {
	const op = "JobService.FinishCoaching"

	err := s.jobs.FinishCoaching(ctx, jobID, status, notes)
	ev := models.JobEvent{Type: "coach_complete", JobID: jobID, CoachStatus: status}
	if status == models.CoachFailed {
		ev.Message = "coaching notes are unavailable"
	}
	s.publish(ctx, ev)

	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to store coach notes", err)
	}
	return nil
}

func (s *jobService) publish(ctx context.Context, ev models.JobEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"job_id": ev.JobID, "type": ev.Type}).Warn("publish job event failed")
	}
}
