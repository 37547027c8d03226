package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL    string
	MigrationsPath string

	// Интервалы опроса фоновых задач генерации.
	AdvancementInterval time.Duration
	BootstrapInterval   time.Duration

	// Размер группы для групповых этапов.
	GroupSize int

	// Политики посева для каждой задачи.
	AdvancementShuffle bool
	AdvancementSeeded  bool
	BootstrapShuffle   bool
	BootstrapSeeded    bool
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "file://db/migrations"
	}

	advInterval, err := durationEnv("ADVANCEMENT_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	bootInterval, err := durationEnv("BOOTSTRAP_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	groupSize, err := intEnv("GROUP_SIZE", 4)
	if err != nil {
		return nil, err
	}
	if groupSize < 2 {
		return nil, fmt.Errorf("GROUP_SIZE must be at least 2, got %d", groupSize)
	}

	advShuffle, err := boolEnv("ADVANCEMENT_SHUFFLE", false)
	if err != nil {
		return nil, err
	}
	advSeeded, err := boolEnv("ADVANCEMENT_SEEDED", false)
	if err != nil {
		return nil, err
	}
	bootShuffle, err := boolEnv("BOOTSTRAP_SHUFFLE", true)
	if err != nil {
		return nil, err
	}
	bootSeeded, err := boolEnv("BOOTSTRAP_SEEDED", false)
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:         dbURL,
		MigrationsPath:      migrationsPath,
		AdvancementInterval: advInterval,
		BootstrapInterval:   bootInterval,
		GroupSize:           groupSize,
		AdvancementShuffle:  advShuffle,
		AdvancementSeeded:   advSeeded,
		BootstrapShuffle:    bootShuffle,
		BootstrapSeeded:     bootSeeded,
	}, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return value, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}
