// Command sweeper is the external periodic trigger for session expiry. The
// core deliberately runs no timers; this process (or a scheduled message
// invoking it) decides when expired sessions get swept.
//
// With -interval 0 it performs a single sweep and exits, which suits cron
// and scheduled-task runners. With a positive interval it loops until
// SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stationlog/internal/audit"
	auditmemory "stationlog/internal/audit/store/memory"
	auditpostgres "stationlog/internal/audit/store/postgres"
	"stationlog/internal/platform/config"
	"stationlog/internal/platform/httpserver"
	"stationlog/internal/platform/logger"
	"stationlog/internal/session/expiry"
	sessionmetrics "stationlog/internal/session/metrics"
	"stationlog/internal/session/models"
	"stationlog/internal/session/service"
	"stationlog/internal/session/store/factory"
)

func main() {
	interval := flag.Duration("interval", 0, "sweep interval; 0 runs a single sweep and exits")
	flag.Parse()

	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := factory.New(cfg, log).Initialize(ctx)
	if err != nil {
		log.Fatalf("initialize store: %v", err)
	}

	var auditStore audit.Store
	if cfg.Postgres.DSN != "" {
		pg, err := auditpostgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			log.Fatalf("open audit store: %v", err)
		}
		defer pg.Close()
		auditStore = pg
	} else {
		log.Printf("no postgres DSN configured; audit entries stay in process memory")
		auditStore = auditmemory.New()
	}
	recorder := audit.NewRecorder(auditStore)

	metrics := sessionmetrics.New()
	// The sweeper only ends sessions, so an empty directory suffices.
	directory := service.NewInMemoryDirectory()

	managers := []expiry.Manager{
		service.New(models.KindEvent, st, recorder, directory,
			service.WithMetrics(metrics), service.WithLogger(log)),
		service.New(models.KindCheckRun, st, recorder, directory,
			service.WithMetrics(metrics), service.WithLogger(log)),
	}
	scheduler := expiry.New(cfg.ExpiryThreshold, cfg.SweepLookback, log, managers,
		expiry.WithMetrics(metrics))

	if cfg.MetricsAddr != "" {
		httpserver.Run(ctx, httpserver.NewMetrics(cfg.MetricsAddr), log)
	}

	sweep := func() {
		ended, err := scheduler.Sweep(ctx)
		if err != nil {
			log.Printf("sweep aborted: %v", err)
			return
		}
		log.Printf("sweep complete: ended %d session(s)", len(ended))
	}

	log.Printf("sweeper starting: backend=%s threshold=%s interval=%s", st.Name(), cfg.ExpiryThreshold, *interval)

	sweep()
	if *interval <= 0 {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("sweeper shutting down")
			return
		case <-ticker.C:
			sweep()
		}
	}
}
