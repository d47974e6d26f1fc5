package services

import (
	"context"
	"fmt"
	"time"

	"planner-project/backend/schedule-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskService struct {
	tasks TaskRepository
	now   func() time.Time
}

func NewTaskService(tasks TaskRepository) *TaskService {
	return &TaskService{
		tasks: tasks,
		now:   time.Now,
	}
}

// CreateTaskInput carries the caller-supplied task fields. StartDate defaults
// to the creation instant when omitted.
type CreateTaskInput struct {
	Title     string     `json:"title"`
	StartDate *time.Time `json:"startDate,omitempty"`
	Deadline  time.Time  `json:"deadline"`
	Priority  int        `json:"priority"`
	Progress  int        `json:"progress"`
}

// CreateTask builds and persists a new task for the owner. A deadline already
// in the past is rejected outright; tasks only become EXPIRED by outliving
// their deadline after creation.
func (s *TaskService) CreateTask(ctx context.Context, ownerID string, input CreateTaskInput) (*models.Task, error) {
	now := s.now()
	if input.Deadline.Before(now) {
		return nil, models.NewValidationError("deadline must not be in the past")
	}

	startDate := now
	if input.StartDate != nil {
		startDate = *input.StartDate
	}

	task, err := models.NewTask(input.Title, startDate, input.Deadline, input.Priority, input.Progress, ownerID, now)
	if err != nil {
		return nil, err
	}

	saved, err := s.tasks.Save(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}
	return saved, nil
}

// GetTasksForOwner returns all tasks belonging to the user.
func (s *TaskService) GetTasksForOwner(ctx context.Context, ownerID string) ([]*models.Task, error) {
	tasks, err := s.tasks.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %w", err)
	}
	return tasks, nil
}

// ChangeTaskStatus applies a manual status change. DONE is routed through
// CompleteTask; EXPIRED is owned by the sweep and never settable here.
func (s *TaskService) ChangeTaskStatus(ctx context.Context, taskID primitive.ObjectID, actorID string, newStatus models.TaskStatus) (*models.Task, error) {
	task, err := s.loadOwnedTask(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if err := task.UpdateStatus(newStatus); err != nil {
		return nil, err
	}
	return s.persist(ctx, task)
}

// StartTask moves a TODO task to IN_PROGRESS.
func (s *TaskService) StartTask(ctx context.Context, taskID primitive.ObjectID, actorID string) (*models.Task, error) {
	task, err := s.loadOwnedTask(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if err := task.Start(); err != nil {
		return nil, err
	}
	return s.persist(ctx, task)
}

// CompleteTask marks the task DONE with progress forced to 100.
func (s *TaskService) CompleteTask(ctx context.Context, taskID primitive.ObjectID, actorID string) (*models.Task, error) {
	task, err := s.loadOwnedTask(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if err := task.Complete(); err != nil {
		return nil, err
	}
	return s.persist(ctx, task)
}

// UpdateTaskProgress sets the progress value and applies the entity's
// promotion rules (any progress starts the task, 100 completes it).
func (s *TaskService) UpdateTaskProgress(ctx context.Context, taskID primitive.ObjectID, actorID string, progress int) (*models.Task, error) {
	task, err := s.loadOwnedTask(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}
	if err := task.UpdateProgress(progress); err != nil {
		return nil, err
	}
	return s.persist(ctx, task)
}

// DeleteTask removes the task regardless of its status. Only the owner may
// do this; it is the one path out of a terminal state.
func (s *TaskService) DeleteTask(ctx context.Context, taskID primitive.ObjectID, actorID string) error {
	if _, err := s.loadOwnedTask(ctx, taskID, actorID); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (s *TaskService) loadOwnedTask(ctx context.Context, taskID primitive.ObjectID, actorID string) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != actorID {
		return nil, models.NewPermissionDeniedError("task belongs to another user")
	}
	return task, nil
}

func (s *TaskService) persist(ctx context.Context, task *models.Task) (*models.Task, error) {
	saved, err := s.tasks.Save(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}
	return saved, nil
}
