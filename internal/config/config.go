package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"focus-planner/internal/model"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken string
	DatabaseURL   string
	SnoozeFor     time.Duration
	SummaryTime   string // HH:MM, local wall clock
	Debug         bool
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SnoozeFor:     parseMinutes(strings.TrimSpace(os.Getenv("SNOOZE_MINUTES"))),
		SummaryTime:   strings.TrimSpace(os.Getenv("SUMMARY_TIME")),
		Debug:         parseBool(strings.TrimSpace(os.Getenv("DEBUG"))),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "focus_planner.db"
	}
	if cfg.SnoozeFor == 0 {
		cfg.SnoozeFor = 5 * time.Minute
	}
	if cfg.SummaryTime == "" {
		cfg.SummaryTime = "08:00"
	}
	if _, _, err := model.ParseClock(cfg.SummaryTime); err != nil {
		return cfg, fmt.Errorf("SUMMARY_TIME: %w", err)
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}

func parseMinutes(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return 0
	}
	return time.Duration(minutes) * time.Minute
}

func parseBool(raw string) bool {
	value, err := strconv.ParseBool(raw)
	return err == nil && value
}
