package workers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yoockh/voiceeval/internal/analysis"
	"github.com/yoockh/voiceeval/internal/models"
	"github.com/yoockh/voiceeval/internal/providers/llm"
	"github.com/yoockh/voiceeval/internal/queue"
	"github.com/yoockh/voiceeval/internal/services"
	"github.com/yoockh/voiceeval/internal/storage"
	"github.com/yoockh/voiceeval/internal/utils"
)

const maxAudioBytes = 25 << 20

type EvaluationWorkerPool struct {
	Redis       *redis.Client
	Jobs        services.JobService
	Evaluations services.EvaluationService
	Events      queue.Publisher
	NumWorkers  int

	Store storage.AudioStore // optional; required for staged audio
	LLM   llm.Provider       // optional coaching notes

	// Limiter bounds provider calls across all consumers.
	Limiter *rate.Limiter

	HTTPClient *http.Client
	Logger     *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string

	// ClaimIdle is how long a delivered entry may stay unacknowledged before
	// another consumer takes it over. Keep it above the slowest evaluation.
	ClaimIdle time.Duration
}

func (p *EvaluationWorkerPool) init() error {
	if p.Jobs == nil || p.Evaluations == nil {
		return errors.New("EvaluationWorkerPool missing dependency: Jobs/Evaluations must be set")
	}
	if p.Stream == "" {
		p.Stream = queue.DefaultStream
	}
	if p.Group == "" {
		p.Group = "evaluation-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 4
	}
	if p.ClaimIdle <= 0 {
		p.ClaimIdle = 10 * time.Minute
	}
	if p.HTTPClient == nil {
		p.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
	return nil
}

// Run consumes the stream until ctx is cancelled.
func (p *EvaluationWorkerPool) Run(ctx context.Context) error {
	if err := p.init(); err != nil {
		return err
	}
	if p.Redis == nil {
		return errors.New("EvaluationWorkerPool missing dependency: Redis must be set")
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		g.Go(func() error {
			p.runConsumer(gctx, consumer)
			return nil
		})
	}
	p.Logger.WithFields(logrus.Fields{"stream": p.Stream, "workers": p.NumWorkers}).Info("evaluation workers started")
	return g.Wait()
}

func (p *EvaluationWorkerPool) runConsumer(ctx context.Context, consumer string) {
	var nextClaim time.Time
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if time.Now().After(nextClaim) {
			p.reclaim(ctx, consumer)
			nextClaim = time.Now().Add(p.ClaimIdle / 2)
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    4,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			p.Logger.WithError(err).WithField("consumer", consumer).Warn("xreadgroup failed")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

// reclaim takes over entries delivered to a consumer that died before acking them.
func (p *EvaluationWorkerPool) reclaim(ctx context.Context, consumer string) {
	start := "0-0"
	for {
		msgs, next, err := p.Redis.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   p.Stream,
			Group:    p.Group,
			Consumer: consumer,
			MinIdle:  p.ClaimIdle,
			Start:    start,
			Count:    4,
		}).Result()
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, redis.Nil) {
				p.Logger.WithError(err).WithField("consumer", consumer).Warn("xautoclaim failed")
			}
			return
		}

		for _, msg := range msgs {
			p.Logger.WithFields(logrus.Fields{"consumer": consumer, "redis_id": msg.ID}).Info("reclaimed pending entry")
			if m, ok := p.parse(msg); ok {
				p.Resume(ctx, m)
			}
			_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
		}

		if next == "" || next == "0-0" {
			return
		}
		start = next
	}
}

func (p *EvaluationWorkerPool) parse(msg redis.XMessage) (queue.Message, bool) {
	m, err := queue.ParseMessage(msg.Values)
	if err != nil {
		p.Logger.WithError(err).WithField("redis_id", msg.ID).Warn("dropping malformed stream message")
		return queue.Message{}, false
	}
	return m, true
}

func (p *EvaluationWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	if m, ok := p.parse(msg); ok {
		p.Process(ctx, m)
	}
}

// Resume processes a reclaimed entry unless its job already reached a final state.
func (p *EvaluationWorkerPool) Resume(ctx context.Context, m queue.Message) {
	log := p.Logger.WithField("job_id", m.JobID)

	job, err := p.Jobs.Get(ctx, m.JobID)
	if err != nil {
		log.WithError(err).Warn("reclaimed job unavailable")
		return
	}
	if job.Status == models.JobDone || job.Status == models.JobFailed {
		log.WithField("status", job.Status).Info("reclaimed job already finished")
		return
	}
	p.Process(ctx, m)
}

// Process evaluates one queued job and records its outcome.
func (p *EvaluationWorkerPool) Process(ctx context.Context, m queue.Message) {
	log := p.Logger.WithFields(logrus.Fields{"job_id": m.JobID})
	start := time.Now()

	if err := p.Jobs.MarkProcessing(ctx, m.JobID); err != nil {
		// expired or unknown job: nothing left to report to
		log.WithError(err).Warn("mark processing failed")
		return
	}
	defer p.cleanup(ctx, m, log)

	res, err := p.evaluate(ctx, m)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		if utils.CodeOf(err) == utils.CodeInternal {
			log.WithError(err).Error("evaluation failed")
		} else {
			log.WithError(err).Warn("evaluation failed")
		}
		if ferr := p.Jobs.Fail(ctx, m.JobID, err, elapsed); ferr != nil {
			log.WithError(ferr).Error("mark failed failed")
		}
		return
	}

	if err := p.Jobs.Complete(ctx, m.JobID, res, elapsed); err != nil {
		log.WithError(err).Error("store result failed")
		return
	}
	log.WithFields(logrus.Fields{
		"processing_ms":       elapsed,
		"pronunciation_score": res.PronunciationScore,
		"words_per_minute":    res.WordsPerMinute,
	}).Info("evaluation completed")

	if p.LLM != nil {
		p.coach(ctx, m.JobID, res, log)
	}
}

func (p *EvaluationWorkerPool) evaluate(ctx context.Context, m queue.Message) (*analysis.Result, error) {
	const op = "EvaluationWorker.Evaluate"

	audio, err := p.fetchAudio(ctx, m)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to read queued audio", err)
	}

	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			return nil, utils.E(utils.CodeTimeout, op, "evaluation cancelled", err)
		}
	}

	return p.Evaluations.Evaluate(ctx, services.Upload{
		FileName:    m.FileName,
		ContentType: m.ContentType,
		Data:        audio,
	})
}

func (p *EvaluationWorkerPool) fetchAudio(ctx context.Context, m queue.Message) ([]byte, error) {
	if m.AudioBase64 != "" {
		raw := m.AudioBase64
		if i := strings.Index(raw, ","); i >= 0 {
			raw = raw[i+1:] // strip data:...;base64,
		}
		return base64.StdEncoding.DecodeString(raw)
	}

	if p.Store == nil {
		return nil, fmt.Errorf("audio object %q queued but no store configured", m.AudioObject)
	}
	url, err := p.Store.SignedGetURL(ctx, m.AudioObject, 15*time.Minute)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch audio object: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("empty audio object")
	}
	return body, nil
}

func (p *EvaluationWorkerPool) cleanup(ctx context.Context, m queue.Message, log *logrus.Entry) {
	if m.AudioObject == "" || p.Store == nil {
		return
	}
	if err := p.Store.Delete(ctx, m.AudioObject); err != nil {
		log.WithError(err).Warn("delete staged audio failed")
	}
}

// coach streams LLM notes for a finished result. Failures leave the job done
// but still end coaching with a recorded status.
func (p *EvaluationWorkerPool) coach(ctx context.Context, jobID string, res *analysis.Result, log *logrus.Entry) {
	chunks, errs := p.LLM.StreamAnswer(ctx, llm.CoachingPrompt(res))

	full := strings.Builder{}
	seq := int64(0)
	for chunk := range chunks {
		seq++
		full.WriteString(chunk)
		p.publish(ctx, models.JobEvent{Type: "coach_chunk", JobID: jobID, Seq: seq, Chunk: chunk}, log)
	}

	status, notes := models.CoachDone, full.String()
	if err := <-errs; err != nil {
		log.WithError(err).Warn("coach stream failed")
		status, notes = models.CoachFailed, ""
	} else if strings.TrimSpace(notes) == "" {
		log.Warn("coach returned no notes")
	}

	// the stream may have ended because ctx was cancelled; subscribers still need the outcome
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.Jobs.FinishCoaching(fctx, jobID, status, notes); err != nil {
		log.WithError(err).Warn("store coach notes failed")
	}
}

func (p *EvaluationWorkerPool) publish(ctx context.Context, ev models.JobEvent, log *logrus.Entry) {
	if p.Events == nil {
		return
	}
	if err := p.Events.Publish(ctx, ev); err != nil {
		log.WithError(err).WithField("type", ev.Type).Warn("publish failed")
	}
}
