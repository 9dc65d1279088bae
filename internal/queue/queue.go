package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yoockh/voiceeval/internal/models"
)

const DefaultStream = "evaluations:stream"

// Message is one queued evaluation. Audio travels either inline (base64)
// or as a staged storage object.
type Message struct {
	JobID       string
	FileName    string
	ContentType string
	AudioBase64 string
	AudioObject string
	EnqueuedAt  time.Time
}

func (m Message) values() map[string]any {
	v := map[string]any{
		"job_id":       m.JobID,
		"file_name":    m.FileName,
		"content_type": m.ContentType,
		"ts_unix":      strconv.FormatInt(m.EnqueuedAt.UTC().Unix(), 10),
	}
	if m.AudioBase64 != "" {
		v["audio_base64"] = m.AudioBase64
	}
	if m.AudioObject != "" {
		v["audio_object"] = m.AudioObject
	}
	return v
}

// ParseMessage reads a stream entry written by Enqueue.
func ParseMessage(values map[string]any) (Message, error) {
	get := func(k string) string {
		v, ok := values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	m := Message{
		JobID:       get("job_id"),
		FileName:    get("file_name"),
		ContentType: get("content_type"),
		AudioBase64: get("audio_base64"),
		AudioObject: get("audio_object"),
	}
	if ts, err := strconv.ParseInt(get("ts_unix"), 10, 64); err == nil {
		m.EnqueuedAt = time.Unix(ts, 0).UTC()
	}

	if m.JobID == "" {
		return m, errors.New("stream message without job_id")
	}
	if m.AudioBase64 == "" && m.AudioObject == "" {
		return m, errors.New("stream message without audio_base64 or audio_object")
	}
	return m, nil
}

func StatusChannel(jobID string) string { return "job:" + jobID + ":status" }
func ResultChannel(jobID string) string { return "job:" + jobID + ":result" }

// Enqueuer hands jobs to the worker pool.
type Enqueuer interface {
	Enqueue(ctx context.Context, m Message) error
}

// Publisher fans job events out to subscribers.
type Publisher interface {
	Publish(ctx context.Context, ev models.JobEvent) error
}

type RedisQueue struct {
	rdb    *redis.Client
	Stream string
}

func NewRedisQueue(rdb *redis.Client, stream string) *RedisQueue {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisQueue{rdb: rdb, Stream: stream}
}

func (q *RedisQueue) Enqueue(ctx context.Context, m Message) error {
	if m.EnqueuedAt.IsZero() {
		m.EnqueuedAt = time.Now()
	}
	return q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: q.Stream,
		Values: m.values(),
	}).Err()
}

// Publish routes status events to the status channel and everything else to the result channel.
func (q *RedisQueue) Publish(ctx context.Context, ev models.JobEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ch := ResultChannel(ev.JobID)
	if ev.Type == "status" {
		ch = StatusChannel(ev.JobID)
	}
	return q.rdb.Publish(ctx, ch, b).Err()
}

// Subscribe listens on both channels of a job.
func (q *RedisQueue) Subscribe(ctx context.Context, jobID string) *redis.PubSub {
	return q.rdb.Subscribe(ctx, StatusChannel(jobID), ResultChannel(jobID))
}
