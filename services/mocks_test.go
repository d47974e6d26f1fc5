package services

import (
	"context"
	"sort"
	"time"

	"planner-project/backend/schedule-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockTaskRepo struct {
	tasks map[primitive.ObjectID]*models.Task

	saveErr     error
	expireErr   error
	upcomingErr error
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[primitive.ObjectID]*models.Task)}
}

func (m *mockTaskRepo) Save(_ context.Context, task *models.Task) (*models.Task, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	stored := *task
	m.tasks[task.ID] = &stored
	return task, nil
}

func (m *mockTaskRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, models.NewNotFoundError("task", id.Hex())
	}
	copied := *task
	return &copied, nil
}

func (m *mockTaskRepo) FindByOwner(_ context.Context, ownerID string) ([]*models.Task, error) {
	var result []*models.Task
	for _, task := range m.tasks {
		if task.OwnerID == ownerID {
			copied := *task
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Deadline.Before(result[j].Deadline) })
	return result, nil
}

func (m *mockTaskRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.tasks[id]; !ok {
		return models.NewNotFoundError("task", id.Hex())
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskRepo) ExpireOverdue(_ context.Context, now time.Time) (int64, error) {
	if m.expireErr != nil {
		return 0, m.expireErr
	}
	var count int64
	for _, task := range m.tasks {
		if task.MarkExpired(now) {
			count++
		}
	}
	return count, nil
}

func (m *mockTaskRepo) FindUpcoming(_ context.Context, now time.Time, window time.Duration) ([]*models.Task, error) {
	if m.upcomingErr != nil {
		return nil, m.upcomingErr
	}
	var result []*models.Task
	for _, task := range m.tasks {
		if task.Status != models.TaskStatusTodo {
			continue
		}
		if task.Deadline.After(now) && task.Deadline.Before(now.Add(window)) {
			copied := *task
			result = append(result, &copied)
		}
	}
	return result, nil
}

type mockScheduleRepo struct {
	schedules map[primitive.ObjectID]*models.Schedule
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[primitive.ObjectID]*models.Schedule)}
}

func (m *mockScheduleRepo) Create(ctx context.Context, schedule *models.Schedule) (*models.Schedule, error) {
	if err := m.checkOverlap(ctx, schedule); err != nil {
		return nil, err
	}
	return m.put(schedule), nil
}

func (m *mockScheduleRepo) Save(ctx context.Context, schedule *models.Schedule) (*models.Schedule, error) {
	if err := m.checkOverlap(ctx, schedule); err != nil {
		return nil, err
	}
	return m.put(schedule), nil
}

func (m *mockScheduleRepo) checkOverlap(ctx context.Context, schedule *models.Schedule) error {
	existing, _ := m.FindOverlapping(ctx, schedule.TimeRange(), schedule.OwnerID, schedule.GroupID)
	for _, other := range existing {
		if schedule.HasConflict(other) {
			return models.NewConflictError(other.Title)
		}
	}
	return nil
}

func (m *mockScheduleRepo) put(schedule *models.Schedule) *models.Schedule {
	if schedule.ID.IsZero() {
		schedule.ID = primitive.NewObjectID()
	}
	stored := *schedule
	m.schedules[schedule.ID] = &stored
	return schedule
}

func (m *mockScheduleRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Schedule, error) {
	schedule, ok := m.schedules[id]
	if !ok {
		return nil, models.NewNotFoundError("schedule", id.Hex())
	}
	copied := *schedule
	return &copied, nil
}

func (m *mockScheduleRepo) FindByOwner(_ context.Context, ownerID string, groupIDs []string) ([]*models.Schedule, error) {
	groups := make(map[string]bool, len(groupIDs))
	for _, id := range groupIDs {
		groups[id] = true
	}
	var result []*models.Schedule
	for _, schedule := range m.schedules {
		if schedule.OwnerID == ownerID || (schedule.GroupID != "" && groups[schedule.GroupID]) {
			copied := *schedule
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *mockScheduleRepo) FindOverlapping(_ context.Context, timeRange models.TimeRange, ownerID, groupID string) ([]*models.Schedule, error) {
	var result []*models.Schedule
	for _, schedule := range m.schedules {
		inScope := schedule.OwnerID == ownerID || (groupID != "" && schedule.GroupID == groupID)
		if inScope && timeRange.Overlaps(schedule.TimeRange()) {
			copied := *schedule
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *mockScheduleRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.schedules[id]; !ok {
		return models.NewNotFoundError("schedule", id.Hex())
	}
	delete(m.schedules, id)
	return nil
}

type mockMembershipRepo struct {
	members map[string]*models.GroupMembership
}

func newMockMembershipRepo() *mockMembershipRepo {
	return &mockMembershipRepo{members: make(map[string]*models.GroupMembership)}
}

func membershipKey(groupID, userID string) string {
	return groupID + "/" + userID
}

func (m *mockMembershipRepo) add(membership models.GroupMembership) {
	m.members[membershipKey(membership.GroupID, membership.UserID)] = &membership
}

func (m *mockMembershipRepo) FindMember(_ context.Context, groupID, userID string) (*models.GroupMembership, error) {
	membership, ok := m.members[membershipKey(groupID, userID)]
	if !ok {
		return nil, nil
	}
	copied := *membership
	return &copied, nil
}

func (m *mockMembershipRepo) ListMembers(_ context.Context, groupID string) ([]*models.GroupMembership, error) {
	var result []*models.GroupMembership
	for _, membership := range m.members {
		if membership.GroupID == groupID {
			copied := *membership
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *mockMembershipRepo) ListGroupIDsForUser(_ context.Context, userID string) ([]string, error) {
	var result []string
	for _, membership := range m.members {
		if membership.UserID == userID {
			result = append(result, membership.GroupID)
		}
	}
	return result, nil
}

func (m *mockMembershipRepo) Insert(_ context.Context, membership *models.GroupMembership) error {
	copied := *membership
	m.members[membershipKey(membership.GroupID, membership.UserID)] = &copied
	return nil
}

func (m *mockMembershipRepo) Remove(_ context.Context, groupID, userID string) error {
	key := membershipKey(groupID, userID)
	if _, ok := m.members[key]; !ok {
		return models.NewNotFoundError("group member", userID)
	}
	delete(m.members, key)
	return nil
}

func (m *mockMembershipRepo) UpdateRole(_ context.Context, groupID, userID string, role models.GroupRole) error {
	membership, ok := m.members[membershipKey(groupID, userID)]
	if !ok {
		return models.NewNotFoundError("group member", userID)
	}
	membership.Role = role
	return nil
}

func (m *mockMembershipRepo) SetCanCreateSchedule(_ context.Context, groupID, userID string, allowed bool) error {
	membership, ok := m.members[membershipKey(groupID, userID)]
	if !ok {
		return models.NewNotFoundError("group member", userID)
	}
	membership.CanCreateSchedule = allowed
	return nil
}

func (m *mockMembershipRepo) DemoteAllAdmins(_ context.Context, groupID string) error {
	for _, membership := range m.members {
		if membership.GroupID == groupID && membership.Role == models.RoleAdmin {
			membership.Role = models.RoleModerator
		}
	}
	return nil
}

type mockSink struct {
	notified []*models.Task
	err      error
}

func (m *mockSink) Notify(_ context.Context, task *models.Task) error {
	if m.err != nil {
		return m.err
	}
	m.notified = append(m.notified, task)
	return nil
}
