package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"planner-project/backend/schedule-service/logging"
)

// ReminderWindow is how far ahead the sweep looks for soon-due tasks.
const ReminderWindow = time.Hour

// ReminderService runs the periodic sweep: expire overdue tasks, then surface
// tasks whose deadline falls inside the lookahead window. It computes the
// candidate set and hands it to the sink; delivery is someone else's job.
type ReminderService struct {
	tasks  TaskRepository
	sink   NotificationSink
	window time.Duration
	now    func() time.Time
}

func NewReminderService(tasks TaskRepository, sink NotificationSink) *ReminderService {
	return &ReminderService{
		tasks:  tasks,
		sink:   sink,
		window: ReminderWindow,
		now:    time.Now,
	}
}

// RunSweep executes both passes. The passes are independent: a failure in one
// is logged and reported but never blocks the other. Callers log the returned
// error and try again on the next tick.
func (s *ReminderService) RunSweep(ctx context.Context) error {
	now := s.now()

	expiryErr := s.runExpiryPass(ctx, now)
	lookaheadErr := s.runLookaheadPass(ctx, now)

	return errors.Join(expiryErr, lookaheadErr)
}

func (s *ReminderService) runExpiryPass(ctx context.Context, now time.Time) error {
	expired, err := s.tasks.ExpireOverdue(ctx, now)
	if err != nil {
		logging.Logger.Errorf("Event ID: SWEEP_EXPIRY_FAILED, Description: Expiry pass failed: %v", err)
		return fmt.Errorf("expiry pass: %w", err)
	}
	if expired > 0 {
		logging.Logger.Infof("Event ID: TASKS_EXPIRED, Description: %d task(s) passed their deadline and were marked EXPIRED.", expired)
	}
	return nil
}

func (s *ReminderService) runLookaheadPass(ctx context.Context, now time.Time) error {
	upcoming, err := s.tasks.FindUpcoming(ctx, now, s.window)
	if err != nil {
		logging.Logger.Errorf("Event ID: SWEEP_LOOKAHEAD_FAILED, Description: Lookahead pass failed: %v", err)
		return fmt.Errorf("lookahead pass: %w", err)
	}

	for _, task := range upcoming {
		logging.Logger.Warnf("Event ID: TASK_REMINDER, Description: Task %q is due within the hour.", task.Title)
		if err := s.sink.Notify(ctx, task); err != nil {
			// A dead notification channel must not stop the sweep.
			logging.Logger.Errorf("Event ID: REMINDER_DELIVERY_FAILED, Description: Failed to emit reminder for task %q: %v", task.Title, err)
		}
	}
	return nil
}
