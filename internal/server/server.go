package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dexterpante/scheduler/internal/logger"
	"github.com/dexterpante/scheduler/internal/metrics"
	"github.com/dexterpante/scheduler/internal/pipeline"
)

const shutdownTimeout = 10 * time.Second

// NewRouter wires the HTTP API onto the pipeline
func NewRouter(p *pipeline.Pipeline, l *zap.Logger, m *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logger.GinMiddleware(l), m.Middleware())

	handler := &Handler{pipeline: p, logger: l}

	router.GET("/healthz", handler.Health)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/schedules", handler.CreateSchedule)
		v1.GET("/schedules/latest", handler.LatestSchedule)
		v1.GET("/schedules/latest/teachers/:id", handler.TeacherTimetable)
		v1.POST("/simulations", handler.Simulate)
	}

	return router
}

// Serve runs the router on port until ctx is cancelled, then drains in-flight requests
func Serve(ctx context.Context, router http.Handler, port int, l *zap.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		l.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	l.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}
