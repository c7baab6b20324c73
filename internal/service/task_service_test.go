package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"focus-planner/internal/model"
	"focus-planner/internal/repository"
	"focus-planner/internal/service"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Task{}, &model.Reminder{}, &model.ProductivityData{}))
	return db
}

func newTaskFixture(t *testing.T) (*service.TaskService, *repository.ProductivityRepository, *repository.ReminderRepository, clock.FakeClock) {
	t.Helper()
	db := newTestDB(t)
	taskRepo := repository.NewTaskRepository(db)
	productivityRepo := repository.NewProductivityRepository(db)
	reminderRepo := repository.NewReminderRepository(db)

	clk := clock.NewFake()
	clk.Set(time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))

	svc := service.NewTaskService(taskRepo, productivityRepo, clk, zap.NewNop().Sugar())
	return svc, productivityRepo, reminderRepo, clk
}

func TestCreateTaskDefaults(t *testing.T) {
	svc, _, _, _ := newTaskFixture(t)

	task, err := svc.CreateTask(context.Background(), service.TaskInput{Name: "Buy groceries"})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, service.DefaultCategory, task.Category)
	assert.False(t, task.Completed)

	_, err = svc.CreateTask(context.Background(), service.TaskInput{})
	assert.Error(t, err, "a task needs a name")

	_, err = svc.CreateTask(context.Background(), service.TaskInput{Name: "x", Priority: "urgent"})
	assert.Error(t, err, "unknown priority rejected")
}

func TestToggleCompleteRecordsProductivity(t *testing.T) {
	svc, productivityRepo, _, clk := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, service.TaskInput{Name: "Write report"})
	require.NoError(t, err)

	task, err = svc.ToggleComplete(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, task.Completed)

	today := clk.Now().Format(model.DateLayout)
	rows, err := productivityRepo.ListRange(ctx, today, today)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].CompletedTasks)

	// Reopening does not take the credit away.
	task, err = svc.ToggleComplete(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, task.Completed)

	rows, err = productivityRepo.ListRange(ctx, today, today)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].CompletedTasks)
}

func TestDeleteTaskCascadesReminders(t *testing.T) {
	svc, _, reminderRepo, _ := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, service.TaskInput{Name: "Call dentist"})
	require.NoError(t, err)
	other, err := svc.CreateTask(ctx, service.TaskInput{Name: "Water plants"})
	require.NoError(t, err)

	require.NoError(t, reminderRepo.Create(ctx, &model.Reminder{
		ID: "rem-1", TaskID: task.ID, Time: "09:00", Repeat: model.RepeatDaily, Enabled: true,
	}))
	require.NoError(t, reminderRepo.Create(ctx, &model.Reminder{
		ID: "rem-2", TaskID: other.ID, Time: "10:00", Repeat: model.RepeatNone, Enabled: true,
	}))

	require.NoError(t, svc.DeleteTask(ctx, task.ID))

	reminders, err := reminderRepo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "rem-2", reminders[0].ID, "only the deleted task's reminders go away")

	_, err = svc.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestResolveTaskByPrefix(t *testing.T) {
	svc, _, _, _ := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, service.TaskInput{Name: "Unique"})
	require.NoError(t, err)

	found, err := svc.ResolveTask(ctx, task.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, task.ID, found.ID)

	_, err = svc.ResolveTask(ctx, "zzzzzzzz")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
