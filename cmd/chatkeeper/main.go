// Package main contains the entrypoint for the chatkeeper application.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatkeeper/internal/app"
	"chatkeeper/internal/config"
	"chatkeeper/internal/database"
	"chatkeeper/internal/discord"
	"chatkeeper/internal/enrich"
	"chatkeeper/internal/logger"
	"chatkeeper/internal/monitor"
	"chatkeeper/internal/pipeline"
	"chatkeeper/internal/retention"
	"chatkeeper/internal/scheduler"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components and returns an exit
// code (0 for success, 1 for failure). Configuration, time zone, and cron
// parse errors are fatal here; everything after startup degrades locally.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.New(cfg.LogLevel, cfg.LogJSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.LogLevel, "json", cfg.LogJSON)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Error("Failed to load reference time zone", "timezone", cfg.Timezone, "error", err)
		return 1
	}

	db, err := database.NewDB(cfg.DBPath)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.DBPath, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	var classifier enrich.Classifier
	var translator enrich.Translator
	if cfg.Enrich.Enabled {
		awsCfg, err := enrich.NewAWSConfig(ctx, cfg.Enrich.Region)
		if err != nil {
			log.Error("Failed to load AWS configuration", "error", err)
			return 1
		}
		classifier = enrich.NewSentimentClassifier(awsCfg, log)
		translator = enrich.NewKoreanTranslator(awsCfg, log)
		log.Info("Enrichment enabled", "region", awsCfg.Region)
	} else {
		log.Info("Enrichment disabled, messages will be persisted without labels")
	}

	adapter, err := discord.New(cfg.DiscordToken, log)
	if err != nil {
		log.Error("Failed to create Discord adapter", "error", err)
		return 1
	}

	pipe := pipeline.New(pipeline.Options{
		Filter:            pipeline.NewFilter(cfg.Filter),
		Directory:         adapter,
		Classifier:        classifier,
		Translator:        translator,
		Store:             store,
		Location:          loc,
		TranslateMinWords: cfg.Enrich.TranslateMinWords,
		Logger:            log,
	})
	adapter.BindPipeline(pipe)

	ret, err := retention.NewScheduler(store, cfg.Retention, loc, log)
	if err != nil {
		log.Error("Failed to create retention scheduler", "error", err)
		return 1
	}

	mon, err := monitor.New(cfg.Monitor, adapter, loc, log)
	if err != nil {
		log.Error("Failed to create resource monitor", "error", err)
		return 1
	}

	maint, err := scheduler.New(log, &cfg.Scheduler, scheduler.RegisterAllTasks(scheduler.Deps{
		Logger: log,
		Store:  store,
	}))
	if err != nil {
		log.Error("Failed to create maintenance scheduler", "error", err)
		return 1
	}

	application := app.New(log, cfg, adapter, ret, mon, maint)
	if err := application.Run(ctx); err != nil {
		return 1
	}
	return 0
}
