package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/endocare/internal/api"
	"github.com/terraincognita07/endocare/internal/services"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts)
		},
	}
}

func runServe(ctx context.Context, rootOpts *RootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := loadRuntime(rootOpts, nil)
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg := rt.cfg

	predictor, err := loadPredictor(ctx, cfg)
	if err != nil {
		return fmt.Errorf("model init failed: %w", err)
	}

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer backend.Close()

	store, err := newRecordStore(cfg, backend, rt.logger)
	if err != nil {
		return err
	}
	flares := services.NewFlareService(predictor, store, rt.logger)

	handler, err := api.NewHandler(store, flares, api.HandlerOptions{
		AuthSecret:     cfg.Auth.Secret,
		AuthRequired:   cfg.Auth.Required,
		DefaultOwnerID: cfg.Auth.DefaultOwnerID,
		Logger:         rt.logger,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}
	app := api.NewApp(handler, api.AppConfig{
		Name:        cfg.App.Name,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			rt.logger.WithError(err).Error("server shutdown failed")
		}
	}()

	rt.logger.WithFields(logrus.Fields{
		"environment":     cfg.App.Environment,
		"port":            cfg.Server.Port,
		"backend":         backend.Name(),
		"model":           predictor.Source(),
		"on_read_failure": store.ReadFailurePolicy().String(),
	}).Info("EndoCare listening")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}
