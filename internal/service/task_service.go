package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"focus-planner/internal/model"
	"focus-planner/internal/repository"
)

// DefaultCategory is used when a task is filed without one.
const DefaultCategory = "Other"

// TaskInput represents data required to create a task.
type TaskInput struct {
	Name        string
	Description string
	Category    string
	DueDate     *time.Time
	Priority    model.Priority
}

// TaskService wraps task-related business logic.
type TaskService struct {
	tasks        *repository.TaskRepository
	productivity *repository.ProductivityRepository
	clk          clock.Clock
	log          *zap.SugaredLogger
}

func NewTaskService(tasks *repository.TaskRepository, productivity *repository.ProductivityRepository, clk clock.Clock, log *zap.SugaredLogger) *TaskService {
	return &TaskService{tasks: tasks, productivity: productivity, clk: clk, log: log}
}

func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*model.Task, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if input.Priority == "" {
		input.Priority = model.PriorityMedium
	}
	if !model.ValidPriority(input.Priority) {
		return nil, fmt.Errorf("unknown priority %q", input.Priority)
	}
	if input.Category == "" {
		input.Category = DefaultCategory
	}

	task := model.Task{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		DueDate:     input.DueDate,
		Priority:    input.Priority,
		CreatedAt:   s.clk.Now(),
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) ListActive(ctx context.Context) ([]model.Task, error) {
	return s.tasks.ListActive(ctx)
}

func (s *TaskService) ListAll(ctx context.Context) ([]model.Task, error) {
	return s.tasks.ListAll(ctx)
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*model.Task, error) {
	return s.tasks.FindByID(ctx, id)
}

// ResolveTask finds a task by its full id or a unique id prefix.
func (s *TaskService) ResolveTask(ctx context.Context, ref string) (*model.Task, error) {
	return s.tasks.FindByPrefix(ctx, ref)
}

// ToggleComplete flips the completed flag. Finishing a task credits the
// day's completed-task counter; flipping back does not take credit away.
func (s *TaskService) ToggleComplete(ctx context.Context, id string) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	task.Completed = !task.Completed
	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}

	if task.Completed {
		today := s.clk.Now().Format(model.DateLayout)
		if err := s.productivity.AddCompletedTask(ctx, today); err != nil {
			// Stats are best effort; the toggle itself already succeeded.
			s.log.Warnw("failed to record completed task", "task", task.ID, "err", err)
		}
	}
	return task, nil
}

// DeleteTask removes a task and, through the repository, every reminder
// that points at it.
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	return s.tasks.Delete(ctx, id)
}
