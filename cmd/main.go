package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subworks/subflow/internal/config"
	"github.com/subworks/subflow/internal/httpapi"
	"github.com/subworks/subflow/internal/intake"
	"github.com/subworks/subflow/internal/jobs"
	"github.com/subworks/subflow/internal/persistence"
	"github.com/subworks/subflow/internal/runner"
	"github.com/subworks/subflow/internal/service"
	"github.com/subworks/subflow/internal/tmdb"
	"github.com/subworks/subflow/pkg/log"
)

const shutdownTimeout = 10 * time.Second

type scheduler interface {
	Schedule(ctx context.Context) error
	StopSchedule()
}

type httpServer interface {
	ListenAndServe(addr string) error
	Shutdown(ctx context.Context) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settingsPath := config.RuntimeSettingsFilePath()
	var opts []config.Option
	if persisted, err := config.LoadRuntimeSettingsFile(settingsPath); err == nil {
		opts = append(opts, config.WithRuntimeSettings(persisted))
	} else if !os.IsNotExist(err) {
		log.Warn("Ignoring unreadable settings file %s: %v", settingsPath, err)
	}

	cfg, err := config.NewFromEnv(opts...)
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}
	log.InitLogger(log.ParseLevel(cfg.System.LogLevel))

	settingsStore, err := config.NewRuntimeSettingsStore(settingsPath, cfg.RuntimeSettings())
	if err != nil {
		log.Fatal("Failed to initialize settings store: %v", err)
	}

	store, err := persistence.NewSQLiteStore(cfg.System.DBPath)
	if err != nil {
		log.Fatal("Failed to open job store at %s: %v", cfg.System.DBPath, err)
	}
	defer store.Close()

	queue := jobs.NewQueue(cfg.System.WorkerCount, store)

	gst, err := runner.New()
	if err != nil {
		log.Fatal("Translation CLI unavailable: %v", err)
	}
	log.Info("Using translation command %s", gst.Command())

	svc := service.NewService(*cfg, gst, queue,
		service.WithMetadataFactory(func(apiKey string) service.MetadataProvider {
			if apiKey == "" {
				return nil
			}
			return tmdb.NewClient(apiKey)
		}),
		service.WithMetadataCache(service.NewStoreMetadataCache(store)),
	)

	queue.Start(svc.ExecuteJob)
	defer queue.Stop()

	watcher, err := intake.NewWatcher(cfg.Intake.DropDirs, func(paths []string) {
		if _, err := svc.Submit(ctx, paths, "watch"); err != nil {
			log.Error("Drop folder batch failed: %v", err)
		}
	})
	if err != nil {
		log.Fatal("Failed to create drop folder watcher: %v", err)
	}
	if err := watcher.Start(ctx); err != nil {
		log.Fatal("Failed to start drop folder watcher: %v", err)
	}
	defer watcher.Close()

	server := httpapi.NewServer(svc, queue,
		httpapi.WithRuntimeSettingsStore(settingsStore),
		httpapi.WithRuntimeSettingsApplier(svc.ApplySettings),
	)

	if err := runWithComponents(ctx, cfg, svc, server); err != nil {
		log.Fatal("Service exited: %v", err)
	}
}

// runWithComponents wires the scheduler and HTTP server to the process
// lifetime; it returns when ctx is cancelled and both are drained.
func runWithComponents(ctx context.Context, cfg *config.Config, sched scheduler, srv httpServer) error {
	if err := sched.Schedule(ctx); err != nil {
		return err
	}
	defer sched.StopSchedule()

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP API listening on %s", cfg.System.HTTPAddr)
		errCh <- srv.ListenAndServe(cfg.System.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
