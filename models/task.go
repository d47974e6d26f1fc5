package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusExpired    TaskStatus = "EXPIRED"
)

// Task priorities.
const (
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

type Task struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title     string             `json:"title" bson:"title"`
	StartDate time.Time          `json:"startDate" bson:"startDate"`
	Deadline  time.Time          `json:"deadline" bson:"deadline"`
	Priority  int                `json:"priority" bson:"priority"`
	Progress  int                `json:"progress" bson:"progress"`
	Status    TaskStatus         `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	OwnerID   string             `json:"ownerId" bson:"ownerId"`
}

// NewTask validates and builds a task. A task whose deadline already lies in
// the past is never born TODO; it starts out EXPIRED.
func NewTask(title string, startDate, deadline time.Time, priority, progress int, ownerID string, now time.Time) (*Task, error) {
	if len(title) < 3 {
		return nil, NewValidationError("title must be at least 3 characters long")
	}
	if startDate.After(deadline) {
		return nil, NewValidationError("start date must not be after the deadline")
	}
	if priority < PriorityLow || priority > PriorityHigh {
		return nil, NewValidationError("priority must be between %d and %d", PriorityLow, PriorityHigh)
	}
	if progress < 0 || progress > 100 {
		return nil, NewValidationError("progress must be between 0 and 100")
	}

	task := &Task{
		ID:        primitive.NewObjectID(),
		Title:     title,
		StartDate: startDate,
		Deadline:  deadline,
		Priority:  priority,
		Progress:  progress,
		Status:    TaskStatusTodo,
		CreatedAt: now,
		OwnerID:   ownerID,
	}
	if deadline.Before(now) {
		task.Status = TaskStatusExpired
	}
	return task, nil
}

// CanBeUpdated reports whether the task is still in a mutable state.
// DONE and EXPIRED are terminal.
func (t *Task) CanBeUpdated() bool {
	return t.Status != TaskStatusDone && t.Status != TaskStatusExpired
}

// Start moves a TODO task to IN_PROGRESS.
func (t *Task) Start() error {
	if t.Status != TaskStatusTodo {
		return NewInvalidTransitionError("task cannot be started from status %s", t.Status)
	}
	t.Status = TaskStatusInProgress
	return nil
}

// Complete marks the task DONE. An expired task can no longer be completed.
// DONE always implies progress 100.
func (t *Task) Complete() error {
	if t.Status == TaskStatusExpired {
		return NewInvalidTransitionError("task has already expired")
	}
	t.Status = TaskStatusDone
	t.Progress = 100
	return nil
}

// UpdateStatus handles manual status changes. Only TODO and IN_PROGRESS are
// settable this way; DONE comes from Complete and EXPIRED from the sweep.
func (t *Task) UpdateStatus(newStatus TaskStatus) error {
	if !t.CanBeUpdated() {
		return NewInvalidTransitionError("task in status %s cannot be updated", t.Status)
	}
	if newStatus != TaskStatusTodo && newStatus != TaskStatusInProgress {
		return NewInvalidTransitionError("status %s cannot be set directly", newStatus)
	}
	t.Status = newStatus
	return nil
}

// UpdateProgress sets the progress value. Reaching 100 completes the task;
// any progress on a TODO task promotes it to IN_PROGRESS.
func (t *Task) UpdateProgress(value int) error {
	if !t.CanBeUpdated() {
		return NewInvalidTransitionError("task in status %s cannot be updated", t.Status)
	}
	if value < 0 || value > 100 {
		return NewValidationError("progress must be between 0 and 100")
	}
	t.Progress = value
	if value == 100 {
		t.Status = TaskStatusDone
	} else if value > 0 && t.Status == TaskStatusTodo {
		t.Status = TaskStatusInProgress
	}
	return nil
}

// MarkExpired transitions an overdue non-terminal task to EXPIRED. It is a
// no-op on DONE and already-EXPIRED tasks, so re-running it is safe.
func (t *Task) MarkExpired(now time.Time) bool {
	if !t.CanBeUpdated() {
		return false
	}
	if !t.Deadline.Before(now) {
		return false
	}
	t.Status = TaskStatusExpired
	return true
}
