package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/yoockh/voiceeval/internal/models"
	"github.com/yoockh/voiceeval/internal/services"
)

// JobSubscriber opens the pub/sub channels of one job.
type JobSubscriber interface {
	Subscribe(ctx context.Context, jobID string) *redis.PubSub
}

type WSHandler struct {
	jobs     services.JobService
	events   JobSubscriber
	coaching bool
	upgrader websocket.Upgrader
}

// NewWSHandler streams job events. With coaching enabled a finished job keeps
// the socket open until its coach_complete event.
func NewWSHandler(jobs services.JobService, events JobSubscriber, coaching bool) *WSHandler {
	return &WSHandler{
		jobs:     jobs,
		events:   events,
		coaching: coaching,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin once the web client domain is fixed
		},
	}
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (w *wsConn) writeEvent(ev models.JobEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return w.writeText(b)
}

// terminal reports whether ev is the last event a client needs.
func (h *WSHandler) terminal(ev models.JobEvent) bool {
	switch {
	case ev.Type == "coach_complete":
		return true
	case ev.Type == "status" && ev.Status == models.JobFailed:
		return true
	case ev.Type == "status" && ev.Status == models.JobDone:
		return !h.coaching
	}
	return false
}

func (h *WSHandler) JobWS(c *gin.Context) {
	jobID := c.Param("job_id")
	if _, err := h.jobs.Get(c.Request.Context(), jobID); err != nil {
		writeError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.events.Subscribe(ctx, jobID)
	defer pubsub.Close()

	// snapshot after subscribing so no transition falls between the two
	job, err := h.jobs.Get(ctx, jobID)
	if err != nil {
		_ = wc.writeEvent(models.JobEvent{Type: "status", JobID: jobID, Status: models.JobFailed, Code: "NOT_FOUND", Message: "evaluation job not found"})
		return
	}
	if done := h.sendSnapshot(wc, job); done {
		return
	}

	// reader: only detects client close and keeps the pong deadline fresh
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	go func() {
		t := time.NewTicker(30 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				_ = wc.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			}
		}
	}()

	// writer: Redis Pub/Sub -> WS
	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		default:
		}

		m, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			return
		}
		if werr := wc.writeText([]byte(m.Payload)); werr != nil {
			return
		}

		var ev models.JobEvent
		if json.Unmarshal([]byte(m.Payload), &ev) == nil && h.terminal(ev) {
			_ = wc.c.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return
		}
	}
}

// snapshot rebuilds the stored state of job as events and reports whether
// nothing more will follow.
func (h *WSHandler) snapshot(job *models.EvaluationJob) ([]models.JobEvent, bool) {
	events := []models.JobEvent{{
		Type:    "status",
		JobID:   job.JobID,
		Status:  job.Status,
		Code:    job.ErrorCode,
		Message: job.ErrorMessage,
	}}

	switch job.Status {
	case models.JobFailed:
		return events, true
	case models.JobDone:
		if job.Result != nil {
			events = append(events, models.JobEvent{Type: "result", JobID: job.JobID, Status: job.Status, Result: job.Result})
		}
		if !h.coaching {
			return events, true
		}
		if job.CoachStatus == "" {
			return events, false // coaching still running
		}
		if job.CoachNotes != "" {
			events = append(events, models.JobEvent{Type: "coach_chunk", JobID: job.JobID, Seq: 1, Chunk: job.CoachNotes})
		}
		complete := models.JobEvent{Type: "coach_complete", JobID: job.JobID, CoachStatus: job.CoachStatus}
		if job.CoachStatus == models.CoachFailed {
			complete.Message = "coaching notes are unavailable"
		}
		return append(events, complete), true
	}
	return events, false
}

// sendSnapshot writes the snapshot of job and reports whether the socket should close.
func (h *WSHandler) sendSnapshot(wc *wsConn, job *models.EvaluationJob) bool {
	events, final := h.snapshot(job)
	for _, ev := range events {
		if err := wc.writeEvent(ev); err != nil {
			return true
		}
	}
	return final
}
