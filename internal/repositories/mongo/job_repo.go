package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yoockh/voiceeval/internal/analysis"
	"github.com/yoockh/voiceeval/internal/models"
	"github.com/yoockh/voiceeval/internal/utils"
)

const JobsCollection = "evaluation_jobs"

type JobRepository interface {
	Create(ctx context.Context, j *models.EvaluationJob) error
	GetByJobID(ctx context.Context, jobID string) (*models.EvaluationJob, error)
	SetStatus(ctx context.Context, jobID string, status models.JobStatus) error
	Complete(ctx context.Context, jobID string, res *analysis.Result, processingMS int64) error
	Fail(ctx context.Context, jobID, code, message string, processingMS int64) error
	FinishCoaching(ctx context.Context, jobID string, status models.CoachStatus, notes string) error
}

type jobRepo struct {
	col *mongo.Collection
}

func NewJobRepo(db *mongo.Database) JobRepository {
	return &jobRepo{col: db.Collection(JobsCollection)}
}

func (r *jobRepo) Create(ctx context.Context, j *models.EvaluationJob) error {
	now := time.Now().UTC()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	j.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, j)
	return err
}

func (r *jobRepo) GetByJobID(ctx context.Context, jobID string) (*models.EvaluationJob, error) {
	var j models.EvaluationJob
	err := r.col.FindOne(ctx, bson.M{"job_id": jobID}).Decode(&j)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *jobRepo) update(ctx context.Context, jobID string, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := r.col.UpdateOne(ctx, bson.M{"job_id": jobID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *jobRepo) SetStatus(ctx context.Context, jobID string, status models.JobStatus) error {
	return r.update(ctx, jobID, bson.M{"status": status})
}

func (r *jobRepo) Complete(ctx context.Context, jobID string, res *analysis.Result, processingMS int64) error {
	return r.update(ctx, jobID, bson.M{
		"status":             models.JobDone,
		"result":             res,
		"processing_time_ms": processingMS,
	})
}

func (r *jobRepo) Fail(ctx context.Context, jobID, code, message string, processingMS int64) error {
	return r.update(ctx, jobID, bson.M{
		"status":             models.JobFailed,
		"error_code":         code,
		"error_message":      message,
		"processing_time_ms": processingMS,
	})
}

func (r *jobRepo) FinishCoaching(ctx context.Context, jobID string, status models.CoachStatus, notes string) error {
	return r.update(ctx, jobID, bson.M{"coach_status": status, "coach_notes": notes})
}
