package services

import (
	"context"
	"time"

	"planner-project/backend/schedule-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskRepository is the persistence port for tasks. The mongo implementation
// lives in the repositories package.
type TaskRepository interface {
	Save(ctx context.Context, task *models.Task) (*models.Task, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*models.Task, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// ExpireOverdue transitions every non-terminal task whose deadline lies
	// before now to EXPIRED in one bulk write and returns how many tasks
	// actually changed. Running it again right away must report zero.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)

	// FindUpcoming returns TODO tasks whose deadline falls inside
	// (now, now+window).
	FindUpcoming(ctx context.Context, now time.Time, window time.Duration) ([]*models.Task, error)
}

// ScheduleRepository is the persistence port for schedules.
type ScheduleRepository interface {
	// Create inserts a new schedule, guaranteeing that no two committed
	// schedules for the same owner or group overlap. It returns a
	// ConflictError when a concurrent writer got there first.
	Create(ctx context.Context, schedule *models.Schedule) (*models.Schedule, error)
	// Save upserts a schedule under the same overlap guarantee as Create,
	// excluding the schedule's own stored row by id.
	Save(ctx context.Context, schedule *models.Schedule) (*models.Schedule, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Schedule, error)
	FindByOwner(ctx context.Context, ownerID string, groupIDs []string) ([]*models.Schedule, error)
	FindOverlapping(ctx context.Context, timeRange models.TimeRange, ownerID, groupID string) ([]*models.Schedule, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// GroupMembershipRepository exposes the membership records of the social
// subsystem. This service reads and adjusts roles but never creates groups.
type GroupMembershipRepository interface {
	// FindMember returns (nil, nil) when the user is not a member.
	FindMember(ctx context.Context, groupID, userID string) (*models.GroupMembership, error)
	ListMembers(ctx context.Context, groupID string) ([]*models.GroupMembership, error)
	ListGroupIDsForUser(ctx context.Context, userID string) ([]string, error)
	Insert(ctx context.Context, membership *models.GroupMembership) error
	Remove(ctx context.Context, groupID, userID string) error
	UpdateRole(ctx context.Context, groupID, userID string, role models.GroupRole) error
	SetCanCreateSchedule(ctx context.Context, groupID, userID string, allowed bool) error

	// DemoteAllAdmins moves every ADMIN of the group to MODERATOR. Used by
	// the admin transfer so the group ends up with exactly one ADMIN.
	DemoteAllAdmins(ctx context.Context, groupID string) error
}

// NotificationSink delivers reminder candidates to the external notification
// subsystem. Delivery itself is not this service's concern.
type NotificationSink interface {
	Notify(ctx context.Context, task *models.Task) error
}
