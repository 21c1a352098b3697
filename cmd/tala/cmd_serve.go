package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/dexterpante/scheduler/internal/config"
	"github.com/dexterpante/scheduler/internal/server"
)

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, baseLogger)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := server.NewRouter(a.pipeline, baseLogger, a.metrics)
	return server.Serve(ctx, router, cfg.Server.Port, baseLogger)
}
