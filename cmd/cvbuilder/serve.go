package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	cvhttp "github.com/goliatone/go-cvbuilder/adapters/http"
	"github.com/goliatone/go-cvbuilder/cv"
	"github.com/goliatone/go-cvbuilder/forms"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the builder API with autosave",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), state)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().String("document", "", "document id to edit")
	return cmd
}

func runServe(ctx context.Context, state *cliState) error {
	cfg := state.cfg
	rt, err := openRuntime(ctx, cfg, state.logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	doc, err := rt.openDocument(ctx, cfg.Storage.DocumentID)
	if err != nil {
		return err
	}

	var autosaver *cv.Autosaver
	if cfg.Autosave.Enabled {
		autosaver = cv.NewAutosaver(rt.store, cv.AutosaveConfig{
			Delay: cfg.Autosave.Delay,
			Backoff: cv.Backoff{
				BaseDelay:   cfg.Autosave.BaseDelay,
				MaxDelay:    cfg.Autosave.MaxDelay,
				MaxFailures: cfg.Autosave.MaxFailures,
			},
			SaveTimeout: cfg.Autosave.SaveTimeout,
		}, nil)
		autosaver.Logger = state.logger
		autosaver.OnStateChange(func(s cv.AutosaveState) {
			state.logger.Debugf("autosave state=%s", s)
		})
		autosaver.Start(ctx)
		defer autosaver.Stop()
	}

	handler := cvhttp.NewHandler(cvhttp.Config{
		Store:     rt.store,
		Forms:     forms.NewSet(rt.store),
		Layouts:   rt.layouts,
		Preview:   rt.pages,
		Tracker:   rt.tracker,
		Artifacts: rt.artifacts,
		BasePath:  cfg.Server.BasePath,
		Logger:    state.logger,
	})
	app := cvhttp.NewApp(handler, cvhttp.AppConfig{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		AllowOrigins: cfg.Server.AllowOrigins,
		AccessLog:    cfg.Server.AccessLog,
	})

	errCh := make(chan error, 1)
	go func() {
		state.logger.Infof("serving document %s on %s%s", doc.ID, cfg.Server.Addr, handler.BasePath())
		errCh <- app.Listen(cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		state.logger.Errorf("shutdown: %v", err)
	}
	if autosaver != nil {
		if err := autosaver.Flush(shutdownCtx); err != nil {
			return err
		}
	} else if err := rt.store.Save(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
