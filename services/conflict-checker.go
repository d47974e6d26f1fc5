package services

import "planner-project/backend/schedule-service/models"

// ConflictChecker decides whether a candidate time range collides with any
// existing schedule. It is scope-agnostic: callers pass in schedules already
// filtered to the relevant user or group.
type ConflictChecker struct{}

func NewConflictChecker() *ConflictChecker {
	return &ConflictChecker{}
}

// HasConflict applies the half-open overlap rule: StartA < EndB && EndA > StartB.
func (c *ConflictChecker) HasConflict(candidate models.TimeRange, existing []*models.Schedule) bool {
	return c.FirstConflict(candidate, existing) != nil
}

// FirstConflict returns the first schedule overlapping the candidate range,
// or nil when the slot is free.
func (c *ConflictChecker) FirstConflict(candidate models.TimeRange, existing []*models.Schedule) *models.Schedule {
	for _, schedule := range existing {
		if candidate.Overlaps(schedule.TimeRange()) {
			return schedule
		}
	}
	return nil
}
