package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"focus-planner/internal/alarm"
	"focus-planner/internal/bot"
	"focus-planner/internal/config"
	"focus-planner/internal/repository"
	"focus-planner/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := buildLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalw("open database", "err", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	productivityRepo := repository.NewProductivityRepository(db)

	clk := clock.New()

	taskSvc := service.NewTaskService(taskRepo, productivityRepo, clk, sugar)
	reminderSvc := service.NewReminderService(reminderRepo, taskRepo)
	statsSvc := service.NewStatsService(taskRepo, productivityRepo, clk)
	focusSvc := service.NewFocusService(productivityRepo, clk, sugar)
	defer focusSvc.Shutdown()

	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, taskSvc, reminderSvc, statsSvc, focusSvc, &cfg, sugar)
	if err != nil {
		sugar.Fatalw("create bot", "err", err)
	}
	focusSvc.SetNotify(telegramBot.PushText)

	scheduler := service.NewSchedulerService(time.Local)

	session := alarm.NewSession(reminderRepo, taskRepo, telegramBot, scheduler, clk, sugar, cfg.SnoozeFor)
	telegramBot.SetAlarmSession(session)
	if err := session.Start(); err != nil {
		sugar.Fatalw("start alarm session", "err", err)
	}
	defer session.Stop()

	if _, err := scheduler.ScheduleDaily(cfg.SummaryTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := telegramBot.SendDailyAgenda(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			sugar.Errorw("daily agenda", "err", err)
		}
	}); err != nil {
		sugar.Fatalw("schedule daily agenda", "err", err)
	}

	scheduler.Start()
	defer scheduler.Stop()

	sugar.Infow("focus planner started", "summary_time", cfg.SummaryTime, "snooze", cfg.SnoozeFor)
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		sugar.Fatalw("bot stopped with error", "err", err)
	}
	sugar.Infow("shutdown complete")
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
