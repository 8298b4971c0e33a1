package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/analyze"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/api"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/config"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/ingest"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/logging"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/observability"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/publish"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/store"
)

func main() {
	lg, err := logging.New()
	if err != nil {
		panic(err)
	}
	defer lg.Close()
	log := lg.Logger

	cfg := config.FromEnv()
	log.Info("config loaded",
		"bind", cfg.BindAddr,
		"redis", cfg.RedisAddr,
		"brokers", cfg.KafkaBrokers,
		"reportTTL", cfg.ReportTTL)

	thresholds, err := config.LoadThresholds(cfg.ThresholdsFile)
	if err != nil {
		log.Error("thresholds load failed", "file", cfg.ThresholdsFile, "err", err)
		os.Exit(1)
	}

	var reports store.Store
	if cfg.RedisAddr != "" {
		rs := store.NewRedis(cfg.RedisAddr, cfg.RedisDB, cfg.ReportTTL)
		if err := rs.Ping(context.Background()); err != nil {
			log.Error("redis unreachable", "addr", cfg.RedisAddr, "err", err)
			os.Exit(1)
		}
		reports = rs
		log.Info("using redis report store", "addr", cfg.RedisAddr)
	} else {
		reports = store.NewMemory(cfg.ReportTTL)
		log.Info("using in-memory report store")
	}
	defer reports.Close()

	publisher := publish.New(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	if publisher == nil {
		log.Info("findings publishing disabled")
	}
	defer publisher.Close()

	h := &api.Handlers{
		Log:       log,
		Parser:    ingest.New(log),
		Analyzer:  analyze.New(log, thresholds),
		Store:     reports,
		Publisher: publisher,
		Metrics:   observability.NewMetrics(),
	}

	srv := api.NewServer(cfg.BindAddr, log, h)

	go func() {
		if err := srv.Start(); err != nil {
			log.Error("server error", "err", err)
		}
	}()
	log.Info("trutrend analytics service started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Error("shutdown error", "err", err)
	}
	log.Info("trutrend analytics service stopped")
}
