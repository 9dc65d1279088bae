package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/yoockh/voiceeval/internal/analysis"
	"github.com/yoockh/voiceeval/internal/models"
	"github.com/yoockh/voiceeval/internal/queue"
	"github.com/yoockh/voiceeval/internal/utils"
)

// wavHeader is enough of a RIFF/WAVE header for content sniffing.
var wavHeader = append([]byte("RIFF\x24\x00\x00\x00WAVEfmt \x10\x00\x00\x00\x01\x00\x01\x00"), make([]byte, 64)...)

type fakeSTT struct {
	mu    sync.Mutex
	calls int
	out   *analysis.RawTranscription
	err   error
}

func (f *fakeSTT) Transcribe(_ context.Context, _ []byte, _, _ string) (*analysis.RawTranscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.out, f.err
}

func (f *fakeSTT) Close() error { return nil }

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *memCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*models.EvaluationJob
}

func newFakeJobRepo() *fakeJobRepo { return &fakeJobRepo{jobs: map[string]*models.EvaluationJob{}} }

func (r *fakeJobRepo) Create(_ context.Context, j *models.EvaluationJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *j
	r.jobs[j.JobID] = &cp
	return nil
}

func (r *fakeJobRepo) GetByJobID(_ context.Context, jobID string) (*models.EvaluationJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (r *fakeJobRepo) with(jobID string, fn func(j *models.EvaluationJob)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return utils.ErrNotFound
	}
	fn(j)
	return nil
}

func (r *fakeJobRepo) SetStatus(_ context.Context, jobID string, status models.JobStatus) error {
	return r.with(jobID, func(j *models.EvaluationJob) { j.Status = status })
}

func (r *fakeJobRepo) Complete(_ context.Context, jobID string, res *analysis.Result, ms int64) error {
	return r.with(jobID, func(j *models.EvaluationJob) {
		j.Status = models.JobDone
		j.Result = res
		j.ProcessingTimeMS = ms
	})
}

func (r *fakeJobRepo) Fail(_ context.Context, jobID, code, message string, ms int64) error {
	return r.with(jobID, func(j *models.EvaluationJob) {
		j.Status = models.JobFailed
		j.ErrorCode = code
		j.ErrorMessage = message
		j.ProcessingTimeMS = ms
	})
}

func (r *fakeJobRepo) FinishCoaching(_ context.Context, jobID string, status models.CoachStatus, notes string) error {
	return r.with(jobID, func(j *models.EvaluationJob) {
		j.CoachStatus = status
		j.CoachNotes = notes
	})
}

type fakeQueue struct {
	mu         sync.Mutex
	messages   []queue.Message
	events     []models.JobEvent
	enqueueErr error
}

func (q *fakeQueue) Enqueue(_ context.Context, m queue.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.messages = append(q.messages, m)
	return nil
}

func (q *fakeQueue) Publish(_ context.Context, ev models.JobEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, ev)
	return nil
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (s *fakeStore) Upload(_ context.Context, name, _ string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[name] = b
	return name, nil
}

func (s *fakeStore) SignedGetURL(_ context.Context, name string, _ time.Duration) (string, error) {
	return "https://storage.example/" + name, nil
}

func (s *fakeStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, name)
	return nil
}

var errBoom = errors.New("boom")
