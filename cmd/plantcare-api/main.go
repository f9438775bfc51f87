package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"plantcare-api/config"
	v1 "plantcare-api/internal/controllers/http/v1"
	"plantcare-api/internal/repositories"
	"plantcare-api/internal/services/notifier"
	"plantcare-api/internal/services/reminders"
	"plantcare-api/internal/services/weather"
	"plantcare-api/internal/storage"
	"plantcare-api/pkg/httpserver"
	"plantcare-api/pkg/logger"
)

// @title PlantCare API
// @version 1.0.0
// @description Plant-care service with weather-aware reminder scheduling.
// @description Combines cached multi-provider weather data with recurring care
// @description reminders: watering reminders are skipped automatically when heavy
// @description rain makes them pointless.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @tag.name Weather
// @tag.description Weather snapshot operations
// @tag.name Gardens
// @tag.description Garden and care advice operations
// @tag.name Reminders
// @tag.description Care reminder lifecycle
func main() {
	ctx, cancel := context.WithCancel(context.Background())

	cnf := config.NewConfig()

	sentryHook := logger.NewSentryHook(cnf.AppName, cnf.SentryDSN, false)
	l := logger.NewZapLogger(cnf.AppName, os.Stdout, sentryHook)

	store, err := storage.NewSQLite(cnf.DatabasePath)
	if err != nil {
		l.Fatal("cannot open database", map[string]any{"path": cnf.DatabasePath, "err": err})
	}

	repos := repositories.InitWeatherRepositories(cnf, l)

	weatherService := weather.NewService(
		repos,
		gocache.New(cnf.Cache.ForecastTTL(), 2*cnf.Cache.ForecastTTL()),
		cnf.Cache.CurrentTTL(),
		cnf.Cache.ForecastTTL(),
		l,
	)

	scheduler := reminders.NewScheduler(store, weatherService, l)

	app := httpserver.InitFiberServer(cnf.AppName)

	v1.NewRouter(
		app,
		weatherService,
		scheduler,
		store,
		l,
	)

	go runSweep(ctx, scheduler, cnf.Sweep.Interval(), l)
	go runNotifier(ctx, scheduler, cnf, l)

	go func() {
		if err := app.Listen(":" + cnf.Port); err != nil {
			l.Fatal("cannot run the server", map[string]any{"err": err})
		}
	}()

	l.Info("application started successfully", map[string]any{
		"port":      cnf.Port,
		"providers": len(repos),
	})

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer func() {
		l.Warning("stopping application services")
		signal.Stop(sigCh)
		close(sigCh)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = app.ShutdownWithContext(shutdownCtx)
		_ = store.Close()
		_ = l.Stop()
		sentryHook.Flush()
		cancel()
	}()

	select {
	case <-sigCh:
		fmt.Println("received shutdown signal")
	case <-ctx.Done():
		fmt.Println("context cancelled")
	}
}

// runSweep runs the weather auto-skip sweep once at startup and then
// on every tick until shutdown.
func runSweep(ctx context.Context, scheduler *reminders.Scheduler, interval time.Duration, l *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if skipped, err := scheduler.AutoSkip(ctx); err != nil {
			l.Error(err, map[string]any{"job": "auto-skip"})
		} else if skipped > 0 {
			l.Info("auto-skip sweep skipped reminders", map[string]any{"count": skipped})
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// runNotifier pushes due reminders on a fixed cadence. With no URLs
// configured the dispatcher stays off; /reminders/due still serves
// external dispatchers.
func runNotifier(ctx context.Context, scheduler *reminders.Scheduler, cnf *config.Config, l *logger.Logger) {
	if len(cnf.Notify.URLs) == 0 {
		l.Info("no notification URLs configured, push dispatch disabled")
		return
	}

	sender, err := notifier.NewShoutrrrSender(cnf.Notify.URLs)
	if err != nil {
		l.Error(err, map[string]any{"job": "notifier"})
		return
	}
	dispatcher := notifier.NewDispatcher(scheduler, sender, l)

	ticker := time.NewTicker(cnf.Notify.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := dispatcher.DispatchDue(); err != nil {
				l.Error(err, map[string]any{"job": "notifier"})
			}
		}
	}
}
