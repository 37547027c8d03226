package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openarena/matchup-engine/brackets"
	"github.com/openarena/matchup-engine/config"
	"github.com/openarena/matchup-engine/db"
	"github.com/openarena/matchup-engine/repositories"
	"github.com/openarena/matchup-engine/services"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Duration("advancement_interval", cfg.AdvancementInterval),
		slog.Duration("bootstrap_interval", cfg.BootstrapInterval),
		slog.Int("group_size", cfg.GroupSize))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Применение миграций
	if err := db.Migrate(dbConn, cfg.MigrationsPath); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("migrations applied")

	// Инициализация репозиториев
	txRunner := repositories.NewTxRunner(dbConn)
	stageRepo := repositories.NewPostgresStageRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	rosterRepo := repositories.NewPostgresRosterRepository(dbConn)
	roundRepo := repositories.NewPostgresStageRoundRepository(dbConn)
	matchupRepo := repositories.NewPostgresMatchupRepository(dbConn)
	scoreRepo := repositories.NewPostgresScoreRepository(dbConn)
	careerRepo := repositories.NewPostgresCareerRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов и генераторов
	rankingService := services.NewRankingService(careerRepo)
	seeder := brackets.NewSeeder(rankingService, nil)
	groupGen := brackets.NewGroupStageGenerator(seeder, cfg.GroupSize)
	elimGen := brackets.NewEliminationGenerator(seeder)

	matchupService := services.NewMatchupService(
		txRunner,
		tournamentRepo,
		rosterRepo,
		roundRepo,
		matchupRepo,
		scoreRepo,
		groupGen,
		elimGen,
		logger,
	)
	logger.Info("services initialized")

	// Планировщик генерации сеток
	scheduler, err := services.NewScheduler(stageRepo, matchupService, services.SchedulerConfig{
		AdvancementInterval: cfg.AdvancementInterval,
		BootstrapInterval:   cfg.BootstrapInterval,
		AdvancementOptions:  brackets.Options{Shuffle: cfg.AdvancementShuffle, Seeded: cfg.AdvancementSeeded},
		BootstrapOptions:    brackets.Options{Shuffle: cfg.BootstrapShuffle, Seeded: cfg.BootstrapSeeded},
	}, logger)
	if err != nil {
		logger.Error("failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	// Первый проход сразу при старте, дальше — по расписанию.
	if err := scheduler.RunBootstrap(context.Background()); err != nil {
		logger.Error("initial bootstrap sweep failed", slog.Any("error", err))
	}
	if err := scheduler.RunAdvancement(context.Background()); err != nil {
		logger.Error("initial advancement sweep failed", slog.Any("error", err))
	}

	scheduler.Start()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	if err := scheduler.Shutdown(); err != nil {
		logger.Error("failed to shut down scheduler", slog.Any("error", err))
	} else {
		logger.Info("scheduler shut down")
	}
	logger.Info("application exited")
}
