package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yoockh/voiceeval/internal/api/handlers"
	"github.com/yoockh/voiceeval/internal/api/middleware"
)

type Deps struct {
	Evaluation *handlers.EvaluationHandler
	WS         *handlers.WSHandler

	// MaxBodyBytes caps upload request bodies; zero disables the cap.
	MaxBodyBytes int64
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/", handlers.Root)
	r.GET("/ping", handlers.Ping)

	uploads := r.Group("/")
	uploads.Use(middleware.MaxBodySize(d.MaxBodyBytes))

	uploads.POST("/transcribe", d.Evaluation.Transcribe)
	uploads.POST("/evaluations", d.Evaluation.Submit)

	r.GET("/evaluations/:job_id", d.Evaluation.Get)

	if d.WS != nil {
		r.GET("/ws/evaluations/:job_id", d.WS.JobWS)
	}
}
