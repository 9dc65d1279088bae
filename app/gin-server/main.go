package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yoockh/voiceeval/config"
	"github.com/yoockh/voiceeval/internal/analysis"
	"github.com/yoockh/voiceeval/internal/api/handlers"
	"github.com/yoockh/voiceeval/internal/api/middleware"
	"github.com/yoockh/voiceeval/internal/api/routes"
	"github.com/yoockh/voiceeval/internal/cache"
	"github.com/yoockh/voiceeval/internal/logger"
	"github.com/yoockh/voiceeval/internal/providers/llm"
	"github.com/yoockh/voiceeval/internal/providers/stt"
	"github.com/yoockh/voiceeval/internal/queue"
	mongorepo "github.com/yoockh/voiceeval/internal/repositories/mongo"
	"github.com/yoockh/voiceeval/internal/services"
	"github.com/yoockh/voiceeval/internal/storage"
	"github.com/yoockh/voiceeval/internal/workers"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	app := config.LoadApp()

	analysisCfg, err := config.LoadAnalysis(os.Getenv("ANALYSIS_CONFIG"))
	if err != nil {
		log.WithError(err).Fatal("analysis config")
	}

	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("MongoDB init error")
	}
	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Fatal("MongoDB index error")
	}
	log.Info("MongoDB connected")

	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("Redis init error")
	}
	log.Info("Redis connected")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := newSTT(ctx, app)
	if err != nil {
		log.WithError(err).Fatal("speech-to-text init error")
	}
	defer provider.Close()

	var store storage.AudioStore
	if app.GCSBucket != "" {
		gcs, err := storage.NewGCSStore(ctx, app.GCSBucket)
		if err != nil {
			log.WithError(err).Fatal("GCS init error")
		}
		defer gcs.Close()
		store = gcs
	}

	var coach llm.Provider
	if app.GCPProject != "" && app.LLMModel != "" {
		gem, err := llm.NewVertexGemini(ctx, app.GCPProject, app.GCPLocation, app.LLMModel)
		if err != nil {
			log.WithError(err).Fatal("Vertex AI init error")
		}
		defer gem.Close()
		coach = gem
	}

	log.WithFields(logrus.Fields{
		"stt_provider": app.STTProvider,
		"gcs_staging":  store != nil,
		"coaching":     coach != nil,
	}).Info("providers ready")

	rdb := config.RedisClient
	q := queue.NewRedisQueue(rdb, "")
	analyzer := analysis.NewAnalyzer(analysisCfg)

	evals := services.NewEvaluationService(provider, app.STTProvider, analyzer, cache.NewRedisCache(rdb, "voiceeval:"), app.CacheTTL, log)
	jobs := services.NewJobService(mongorepo.NewJobRepo(config.MongoDatabase()), store, q, q, app.JobTTL, log)

	pool := &workers.EvaluationWorkerPool{
		Redis:       rdb,
		Jobs:        jobs,
		Evaluations: evals,
		Events:      q,
		NumWorkers:  app.Workers,
		Store:       store,
		LLM:         coach,
		Limiter:     rate.NewLimiter(rate.Limit(float64(app.STTRatePerMin)/60), 1),
		Logger:      log,
		Stream:      q.Stream,
		ClaimIdle:   app.ClaimIdle,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.RequestLogger(log), middleware.Recovery(log))
	routes.RegisterRoutes(r, routes.Deps{
		Evaluation:   handlers.NewEvaluationHandler(evals, jobs, app.MaxUploadBytes, app.TranscribeTimeout),
		WS:           handlers.NewWSHandler(jobs, q, coach != nil),
		MaxBodyBytes: app.MaxUploadBytes + 1<<20, // multipart overhead
	})

	srv := &http.Server{
		Addr:              ":" + app.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return pool.Run(gctx)
	})
	g.Go(func() error {
		log.WithField("addr", srv.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		_ = config.CloseMongo(shutdownCtx)
		_ = rdb.Close()
		return err
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
	log.Info("server stopped")
}

func newSTT(ctx context.Context, app config.App) (stt.Provider, error) {
	switch app.STTProvider {
	case "google":
		return stt.NewGoogleSpeech(ctx)
	case "assemblyai":
		if app.AssemblyAIKey == "" {
			return nil, errors.New("ASSEMBLYAI_API_KEY is required when STT_PROVIDER=assemblyai")
		}
		c := stt.NewAssemblyAI(app.AssemblyAIKey)
		c.PollTimeout = app.PollTimeout
		return c, nil
	default:
		return nil, fmt.Errorf("unknown STT_PROVIDER %q (want google or assemblyai)", app.STTProvider)
	}
}
