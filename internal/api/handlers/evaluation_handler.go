package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/voiceeval/internal/models"
	"github.com/yoockh/voiceeval/internal/services"
)

type EvaluationHandler struct {
	evals          services.EvaluationService
	jobs           services.JobService
	maxUploadBytes int64
	timeout        time.Duration
}

// NewEvaluationHandler serves synchronous and queued evaluations.
// A zero timeout leaves /transcribe bounded only by the client connection.
func NewEvaluationHandler(evals services.EvaluationService, jobs services.JobService, maxUploadBytes int64, timeout time.Duration) *EvaluationHandler {
	return &EvaluationHandler{evals: evals, jobs: jobs, maxUploadBytes: maxUploadBytes, timeout: timeout}
}

type SubmitResponse struct {
	JobID  string           `json:"job_id"`
	Status models.JobStatus `json:"status"`
}

// Transcribe evaluates the uploaded audio and returns the full result.
func (h *EvaluationHandler) Transcribe(c *gin.Context) {
	up, ok := readUpload(c, "EvaluationHandler.Transcribe", h.maxUploadBytes)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	res, err := h.evals.Evaluate(ctx, up)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *EvaluationHandler) Submit(c *gin.Context) {
	up, ok := readUpload(c, "EvaluationHandler.Submit", h.maxUploadBytes)
	if !ok {
		return
	}

	job, err := h.jobs.Submit(c.Request.Context(), up)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, SubmitResponse{JobID: job.JobID, Status: job.Status})
}

func (h *EvaluationHandler) Get(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}
