package services

import (
	"context"
	"testing"
	"time"

	"planner-project/backend/schedule-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduleServiceForTest() (*ScheduleService, *mockScheduleRepo, *mockMembershipRepo) {
	schedules := newMockScheduleRepo()
	members := newMockMembershipRepo()
	service := NewScheduleService(schedules, members, NewConflictChecker())
	return service, schedules, members
}

func createInputAt(t *testing.T, title string, startHour, startMin, endHour, endMin int) CreateScheduleInput {
	t.Helper()
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	return CreateScheduleInput{
		Title:     title,
		StartTime: day.Add(time.Duration(startHour)*time.Hour + time.Duration(startMin)*time.Minute),
		EndTime:   day.Add(time.Duration(endHour)*time.Hour + time.Duration(endMin)*time.Minute),
	}
}

func TestCreateScheduleConflictDetection(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newScheduleServiceForTest()

	standup, err := service.CreateSchedule(ctx, "user-1", createInputAt(t, "Standup", 9, 0, 9, 30))
	require.NoError(t, err)
	assert.Equal(t, "Standup", standup.Title)

	// Adjacent: ends exactly when the next begins, so both succeed.
	_, err = service.CreateSchedule(ctx, "user-1", createInputAt(t, "Review", 9, 30, 10, 0))
	require.NoError(t, err)

	// Overlapping attempt fails and names the schedule in the way.
	_, err = service.CreateSchedule(ctx, "user-1", createInputAt(t, "Interview", 9, 15, 9, 45))
	var conflictErr *models.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, "Standup", conflictErr.ConflictingTitle)
}

func TestCreateScheduleScopedToOwner(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newScheduleServiceForTest()

	_, err := service.CreateSchedule(ctx, "user-1", createInputAt(t, "Standup", 9, 0, 9, 30))
	require.NoError(t, err)

	// A different user may book the same slot.
	_, err = service.CreateSchedule(ctx, "user-2", createInputAt(t, "Gym", 9, 0, 9, 30))
	assert.NoError(t, err)
}

func TestCreateScheduleInvalidInput(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newScheduleServiceForTest()

	input := createInputAt(t, "Standup", 10, 0, 9, 0)
	_, err := service.CreateSchedule(ctx, "user-1", input)
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreateGroupScheduleAuthorization(t *testing.T) {
	ctx := context.Background()

	t.Run("non-member is rejected", func(t *testing.T) {
		service, _, _ := newScheduleServiceForTest()
		input := createInputAt(t, "Group sync", 9, 0, 10, 0)
		input.GroupID = "group-1"

		_, err := service.CreateSchedule(ctx, "user-1", input)
		var permissionErr *models.PermissionDeniedError
		assert.ErrorAs(t, err, &permissionErr)
	})

	t.Run("member without flag is rejected", func(t *testing.T) {
		service, _, members := newScheduleServiceForTest()
		members.add(models.GroupMembership{UserID: "user-1", GroupID: "group-1", Role: models.RoleMember, CanCreateSchedule: false})
		input := createInputAt(t, "Group sync", 9, 0, 10, 0)
		input.GroupID = "group-1"

		_, err := service.CreateSchedule(ctx, "user-1", input)
		var permissionErr *models.PermissionDeniedError
		assert.ErrorAs(t, err, &permissionErr)
	})

	t.Run("member with flag is allowed", func(t *testing.T) {
		service, _, members := newScheduleServiceForTest()
		members.add(models.GroupMembership{UserID: "user-1", GroupID: "group-1", Role: models.RoleMember, CanCreateSchedule: true})
		input := createInputAt(t, "Group sync", 9, 0, 10, 0)
		input.GroupID = "group-1"

		schedule, err := service.CreateSchedule(ctx, "user-1", input)
		require.NoError(t, err)
		assert.Equal(t, "group-1", schedule.GroupID)
	})

	t.Run("admin is always allowed", func(t *testing.T) {
		service, _, members := newScheduleServiceForTest()
		members.add(models.GroupMembership{UserID: "user-1", GroupID: "group-1", Role: models.RoleAdmin, CanCreateSchedule: false})
		input := createInputAt(t, "Group sync", 9, 0, 10, 0)
		input.GroupID = "group-1"

		_, err := service.CreateSchedule(ctx, "user-1", input)
		assert.NoError(t, err)
	})
}

func TestUpdateSchedule(t *testing.T) {
	ctx := context.Background()

	t.Run("progress below 100 is persisted", func(t *testing.T) {
		service, _, _ := newScheduleServiceForTest()
		created, err := service.CreateSchedule(ctx, "user-1", createInputAt(t, "Standup", 9, 0, 9, 30))
		require.NoError(t, err)

		progress := 60
		updated, deleted, err := service.UpdateSchedule(ctx, created.ID, "user-1", UpdateScheduleInput{Progress: &progress})
		require.NoError(t, err)
		assert.False(t, deleted)
		assert.Equal(t, 60, updated.Progress)
	})

	t.Run("progress 100 removes the schedule", func(t *testing.T) {
		service, schedules, _ := newScheduleServiceForTest()
		created, err := service.CreateSchedule(ctx, "user-1", createInputAt(t, "Standup", 9, 0, 9, 30))
		require.NoError(t, err)

		progress := 100
		updated, deleted, err := service.UpdateSchedule(ctx, created.ID, "user-1", UpdateScheduleInput{Progress: &progress})
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Nil(t, updated)

		_, err = schedules.FindByID(ctx, created.ID)
		var notFoundErr *models.NotFoundError
		assert.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("stranger cannot update a personal schedule", func(t *testing.T) {
		service, _, _ := newScheduleServiceForTest()
		created, err := service.CreateSchedule(ctx, "user-1", createInputAt(t, "Standup", 9, 0, 9, 30))
		require.NoError(t, err)

		title := "Hijacked"
		_, _, err = service.UpdateSchedule(ctx, created.ID, "user-2", UpdateScheduleInput{Title: &title})
		var permissionErr *models.PermissionDeniedError
		assert.ErrorAs(t, err, &permissionErr)
	})

	t.Run("qualifying group member can update another member's group schedule", func(t *testing.T) {
		service, _, members := newScheduleServiceForTest()
		members.add(models.GroupMembership{UserID: "user-1", GroupID: "group-1", Role: models.RoleAdmin})
		members.add(models.GroupMembership{UserID: "user-2", GroupID: "group-1", Role: models.RoleMember, CanCreateSchedule: true})

		input := createInputAt(t, "Group sync", 9, 0, 10, 0)
		input.GroupID = "group-1"
		created, err := service.CreateSchedule(ctx, "user-1", input)
		require.NoError(t, err)

		title := "Group sync (moved)"
		updated, _, err := service.UpdateSchedule(ctx, created.ID, "user-2", UpdateScheduleInput{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Group sync (moved)", updated.Title)
	})

	t.Run("moving into an occupied slot is rejected", func(t *testing.T) {
		service, schedules, _ := newScheduleServiceForTest()
		standup, err := service.CreateSchedule(ctx, "user-1", createInputAt(t, "Standup", 9, 0, 9, 30))
		require.NoError(t, err)
		review, err := service.CreateSchedule(ctx, "user-1", createInputAt(t, "Review", 10, 0, 10, 30))
		require.NoError(t, err)

		_, _, err = service.UpdateSchedule(ctx, review.ID, "user-1", UpdateScheduleInput{
			StartTime: &standup.StartTime,
			EndTime:   &standup.EndTime,
		})
		var conflictErr *models.ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Equal(t, "Standup", conflictErr.ConflictingTitle)

		// The stored schedule keeps its original slot.
		stored, err := schedules.FindByID(ctx, review.ID)
		require.NoError(t, err)
		assert.True(t, stored.StartTime.Equal(review.StartTime))
		assert.True(t, stored.EndTime.Equal(review.EndTime))
	})

	t.Run("rescheduling over its own slot succeeds", func(t *testing.T) {
		service, _, _ := newScheduleServiceForTest()
		created, err := service.CreateSchedule(ctx, "user-1", createInputAt(t, "Standup", 9, 0, 9, 30))
		require.NoError(t, err)

		// New slot overlaps only the schedule itself; the stored row is
		// excluded by id, so extending it is allowed.
		newEnd := created.EndTime.Add(15 * time.Minute)
		updated, deleted, err := service.UpdateSchedule(ctx, created.ID, "user-1", UpdateScheduleInput{EndTime: &newEnd})
		require.NoError(t, err)
		assert.False(t, deleted)
		assert.True(t, updated.EndTime.Equal(newEnd))
	})

	t.Run("invalid merged value is rejected", func(t *testing.T) {
		service, _, _ := newScheduleServiceForTest()
		created, err := service.CreateSchedule(ctx, "user-1", createInputAt(t, "Standup", 9, 0, 9, 30))
		require.NoError(t, err)

		badEnd := created.StartTime.Add(-time.Hour)
		_, _, err = service.UpdateSchedule(ctx, created.ID, "user-1", UpdateScheduleInput{EndTime: &badEnd})
		var validationErr *models.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestDeleteSchedule(t *testing.T) {
	ctx := context.Background()

	t.Run("owner can delete", func(t *testing.T) {
		service, _, _ := newScheduleServiceForTest()
		created, err := service.CreateSchedule(ctx, "user-1", createInputAt(t, "Standup", 9, 0, 9, 30))
		require.NoError(t, err)
		assert.NoError(t, service.DeleteSchedule(ctx, created.ID, "user-1"))
	})

	t.Run("stranger cannot delete", func(t *testing.T) {
		service, _, _ := newScheduleServiceForTest()
		created, err := service.CreateSchedule(ctx, "user-1", createInputAt(t, "Standup", 9, 0, 9, 30))
		require.NoError(t, err)

		err = service.DeleteSchedule(ctx, created.ID, "user-2")
		var permissionErr *models.PermissionDeniedError
		assert.ErrorAs(t, err, &permissionErr)
	})
}

func TestGetSchedulesForUserIncludesGroups(t *testing.T) {
	ctx := context.Background()
	service, _, members := newScheduleServiceForTest()

	members.add(models.GroupMembership{UserID: "user-1", GroupID: "group-1", Role: models.RoleAdmin})
	members.add(models.GroupMembership{UserID: "user-2", GroupID: "group-1", Role: models.RoleMember, CanCreateSchedule: true})

	_, err := service.CreateSchedule(ctx, "user-1", createInputAt(t, "Personal", 8, 0, 8, 30))
	require.NoError(t, err)

	groupInput := createInputAt(t, "Group sync", 9, 0, 10, 0)
	groupInput.GroupID = "group-1"
	_, err = service.CreateSchedule(ctx, "user-2", groupInput)
	require.NoError(t, err)

	schedules, err := service.GetSchedulesForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	assert.Equal(t, "Personal", schedules[0].Title)
	assert.Equal(t, "Group sync", schedules[1].Title)
}

func TestCheckConflicts(t *testing.T) {
	ctx := context.Background()
	service, _, members := newScheduleServiceForTest()

	_, err := service.CreateSchedule(ctx, "user-1", createInputAt(t, "Standup", 9, 0, 9, 30))
	require.NoError(t, err)

	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	conflicts, err := service.CheckConflicts(ctx, "user-1", day.Add(9*time.Hour+15*time.Minute), day.Add(9*time.Hour+45*time.Minute), "")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "Standup", conflicts[0].Title)

	conflicts, err = service.CheckConflicts(ctx, "user-1", day.Add(10*time.Hour), day.Add(11*time.Hour), "")
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	// Another member's group schedule only shows up when the group scope is
	// supplied.
	members.add(models.GroupMembership{UserID: "user-2", GroupID: "group-1", Role: models.RoleMember, CanCreateSchedule: true})
	groupInput := createInputAt(t, "Group sync", 14, 0, 15, 0)
	groupInput.GroupID = "group-1"
	_, err = service.CreateSchedule(ctx, "user-2", groupInput)
	require.NoError(t, err)

	conflicts, err = service.CheckConflicts(ctx, "user-1", day.Add(14*time.Hour+30*time.Minute), day.Add(15*time.Hour+30*time.Minute), "")
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	conflicts, err = service.CheckConflicts(ctx, "user-1", day.Add(14*time.Hour+30*time.Minute), day.Add(15*time.Hour+30*time.Minute), "group-1")
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "Group sync", conflicts[0].Title)
}
