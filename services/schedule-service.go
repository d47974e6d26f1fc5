package services

import (
	"context"
	"fmt"
	"time"

	"planner-project/backend/schedule-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ScheduleService struct {
	schedules ScheduleRepository
	members   GroupMembershipRepository
	checker   *ConflictChecker
}

func NewScheduleService(schedules ScheduleRepository, members GroupMembershipRepository, checker *ConflictChecker) *ScheduleService {
	return &ScheduleService{
		schedules: schedules,
		members:   members,
		checker:   checker,
	}
}

type CreateScheduleInput struct {
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	StartTime   time.Time                 `json:"startTime"`
	EndTime     time.Time                 `json:"endTime"`
	Type        models.ScheduleType       `json:"type"`
	Color       models.ScheduleColor      `json:"color"`
	Importance  models.ScheduleImportance `json:"importance"`
	GroupID     string                    `json:"groupId"`
}

// UpdateScheduleInput uses pointers so absent fields keep their stored value.
type UpdateScheduleInput struct {
	Title       *string                    `json:"title"`
	Description *string                    `json:"description"`
	StartTime   *time.Time                 `json:"startTime"`
	EndTime     *time.Time                 `json:"endTime"`
	Type        *models.ScheduleType       `json:"type"`
	Color       *models.ScheduleColor      `json:"color"`
	Importance  *models.ScheduleImportance `json:"importance"`
	Progress    *int                       `json:"progress"`
}

// CreateSchedule authorizes group-bound schedules, runs the conflict check
// against the owner's (and group's) existing schedules, and persists the new
// schedule. The repository re-checks overlap on insert, so two racing
// requests cannot both commit overlapping schedules.
func (s *ScheduleService) CreateSchedule(ctx context.Context, ownerID string, input CreateScheduleInput) (*models.Schedule, error) {
	if input.GroupID != "" {
		if err := s.authorizeGroupSchedule(ctx, input.GroupID, ownerID); err != nil {
			return nil, err
		}
	}

	schedule, err := models.NewSchedule(input.Title, input.Description, input.StartTime, input.EndTime, input.Type, input.Color, input.Importance, 0, ownerID, input.GroupID)
	if err != nil {
		return nil, err
	}

	existing, err := s.schedules.FindOverlapping(ctx, schedule.TimeRange(), ownerID, input.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping schedules: %w", err)
	}
	if conflict := s.checker.FirstConflict(schedule.TimeRange(), existing); conflict != nil {
		return nil, models.NewConflictError(conflict.Title)
	}

	created, err := s.schedules.Create(ctx, schedule)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CheckConflicts is the advisory check behind POST /schedules/conflicts. It
// never mutates anything. A non-empty groupID widens the scope to that
// group's schedules, matching what CreateSchedule would check against.
func (s *ScheduleService) CheckConflicts(ctx context.Context, userID string, startTime, endTime time.Time, groupID string) ([]*models.Schedule, error) {
	timeRange, err := models.NewTimeRange(startTime, endTime)
	if err != nil {
		return nil, err
	}
	conflicts, err := s.schedules.FindOverlapping(ctx, timeRange, userID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping schedules: %w", err)
	}
	return conflicts, nil
}

// GetSchedulesForUser returns the user's own schedules plus the schedules of
// every group the user belongs to.
func (s *ScheduleService) GetSchedulesForUser(ctx context.Context, userID string) ([]*models.Schedule, error) {
	groupIDs, err := s.members.ListGroupIDsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve group memberships: %w", err)
	}
	schedules, err := s.schedules.FindByOwner(ctx, userID, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve schedules: %w", err)
	}
	return schedules, nil
}

// UpdateSchedule applies a partial update in place. A schedule whose progress
// reaches 100 is deleted instead of kept: completed schedules are disposable,
// unlike tasks which retain a DONE status. The returned flag reports that
// deletion.
func (s *ScheduleService) UpdateSchedule(ctx context.Context, scheduleID primitive.ObjectID, actorID string, input UpdateScheduleInput) (*models.Schedule, bool, error) {
	schedule, err := s.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, false, err
	}
	if err := s.authorizeMutation(ctx, schedule, actorID); err != nil {
		return nil, false, err
	}

	updated := *schedule
	if input.Title != nil {
		updated.Title = *input.Title
	}
	if input.Description != nil {
		updated.Description = *input.Description
	}
	if input.StartTime != nil {
		updated.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		updated.EndTime = *input.EndTime
	}
	if input.Type != nil {
		updated.Type = *input.Type
	}
	if input.Color != nil {
		updated.Color = *input.Color
	}
	if input.Importance != nil {
		updated.Importance = *input.Importance
	}
	if input.Progress != nil {
		updated.Progress = *input.Progress
	}

	// Re-validate the merged value before anything is written.
	validated, err := models.NewSchedule(updated.Title, updated.Description, updated.StartTime, updated.EndTime, updated.Type, updated.Color, updated.Importance, updated.Progress, updated.OwnerID, updated.GroupID)
	if err != nil {
		return nil, false, err
	}
	validated.ID = schedule.ID

	if validated.Progress >= 100 {
		if err := s.schedules.Delete(ctx, schedule.ID); err != nil {
			return nil, false, fmt.Errorf("failed to remove completed schedule: %w", err)
		}
		return nil, true, nil
	}

	// A rescheduled time slot goes through the same conflict check as a new
	// schedule. The stored row itself is excluded by id, so keeping or
	// shrinking the current slot always passes.
	if !validated.StartTime.Equal(schedule.StartTime) || !validated.EndTime.Equal(schedule.EndTime) {
		existing, err := s.schedules.FindOverlapping(ctx, validated.TimeRange(), validated.OwnerID, validated.GroupID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to query overlapping schedules: %w", err)
		}
		for _, other := range existing {
			if validated.HasConflict(other) {
				return nil, false, models.NewConflictError(other.Title)
			}
		}
	}

	saved, err := s.schedules.Save(ctx, validated)
	if err != nil {
		return nil, false, fmt.Errorf("failed to save schedule: %w", err)
	}
	return saved, false, nil
}

// DeleteSchedule removes the schedule. The owner can always delete; for
// group-owned schedules a qualifying group member can too.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, scheduleID primitive.ObjectID, actorID string) error {
	schedule, err := s.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		return err
	}
	if err := s.authorizeMutation(ctx, schedule, actorID); err != nil {
		return err
	}
	if err := s.schedules.Delete(ctx, scheduleID); err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	return nil
}

// authorizeGroupSchedule applies the group rule table: non-members are
// rejected, admins pass, everyone else needs the canCreateSchedule flag.
func (s *ScheduleService) authorizeGroupSchedule(ctx context.Context, groupID, userID string) error {
	member, err := s.members.FindMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to look up group membership: %w", err)
	}
	if member == nil {
		return models.NewPermissionDeniedError("you are not a member of this group")
	}
	if !member.CanManageSchedules() {
		return models.NewPermissionDeniedError("you do not have permission to manage schedules in this group")
	}
	return nil
}

func (s *ScheduleService) authorizeMutation(ctx context.Context, schedule *models.Schedule, actorID string) error {
	if schedule.OwnerID == actorID {
		return nil
	}
	if !schedule.IsGroupOwned() {
		return models.NewPermissionDeniedError("schedule belongs to another user")
	}
	return s.authorizeGroupSchedule(ctx, schedule.GroupID, actorID)
}
