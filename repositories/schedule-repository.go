package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"planner-project/backend/schedule-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoScheduleRepository implements services.ScheduleRepository on a MongoDB
// collection.
type MongoScheduleRepository struct {
	schedulesCollection *mongo.Collection

	// writeMu serializes the overlap re-check and write in Create and Save,
	// so two racing requests cannot both commit overlapping schedules after
	// passing the use-case's advisory conflict check.
	writeMu sync.Mutex
}

func NewMongoScheduleRepository(schedulesCollection *mongo.Collection) *MongoScheduleRepository {
	return &MongoScheduleRepository{schedulesCollection: schedulesCollection}
}

// Create inserts a new schedule after re-checking, under the lock, that no
// committed schedule in the same scope overlaps.
func (r *MongoScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) (*models.Schedule, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := r.checkOverlap(ctx, schedule); err != nil {
		return nil, err
	}

	if schedule.ID.IsZero() {
		schedule.ID = primitive.NewObjectID()
	}
	if _, err := r.schedulesCollection.InsertOne(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %v", err)
	}
	return schedule, nil
}

// Save upserts an existing schedule under the same overlap guard as Create:
// an update that moves a schedule into an occupied slot must not commit. The
// schedule's own stored row is excluded by id.
func (r *MongoScheduleRepository) Save(ctx context.Context, schedule *models.Schedule) (*models.Schedule, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := r.checkOverlap(ctx, schedule); err != nil {
		return nil, err
	}

	if schedule.ID.IsZero() {
		schedule.ID = primitive.NewObjectID()
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.schedulesCollection.ReplaceOne(ctx, bson.M{"_id": schedule.ID}, schedule, opts); err != nil {
		return nil, fmt.Errorf("failed to save schedule: %v", err)
	}
	return schedule, nil
}

func (r *MongoScheduleRepository) checkOverlap(ctx context.Context, schedule *models.Schedule) error {
	existing, err := r.FindOverlapping(ctx, schedule.TimeRange(), schedule.OwnerID, schedule.GroupID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if schedule.HasConflict(other) {
			return models.NewConflictError(other.Title)
		}
	}
	return nil
}

func (r *MongoScheduleRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Schedule, error) {
	var schedule models.Schedule
	err := r.schedulesCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&schedule)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NewNotFoundError("schedule", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve schedule: %v", err)
	}
	return &schedule, nil
}

// FindByOwner returns the user's own schedules plus those of the given
// groups, ordered by start time.
func (r *MongoScheduleRepository) FindByOwner(ctx context.Context, ownerID string, groupIDs []string) ([]*models.Schedule, error) {
	conditions := bson.A{bson.M{"ownerId": ownerID}}
	if len(groupIDs) > 0 {
		conditions = append(conditions, bson.M{"groupId": bson.M{"$in": groupIDs}})
	}

	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})
	cursor, err := r.schedulesCollection.Find(ctx, bson.M{"$or": conditions}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve schedules: %v", err)
	}
	defer cursor.Close(ctx)

	var schedules []*models.Schedule
	if err := cursor.All(ctx, &schedules); err != nil {
		return nil, fmt.Errorf("failed to decode schedules: %v", err)
	}
	return schedules, nil
}

// FindOverlapping returns committed schedules whose range overlaps the given
// one under the half-open rule, scoped to the owner and, when set, the group.
func (r *MongoScheduleRepository) FindOverlapping(ctx context.Context, timeRange models.TimeRange, ownerID, groupID string) ([]*models.Schedule, error) {
	scope := bson.A{bson.M{"ownerId": ownerID}}
	if groupID != "" {
		scope = append(scope, bson.M{"groupId": groupID})
	}

	filter := bson.M{
		"startTime": bson.M{"$lt": timeRange.End},
		"endTime":   bson.M{"$gt": timeRange.Start},
		"$or":       scope,
	}

	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})
	cursor, err := r.schedulesCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve overlapping schedules: %v", err)
	}
	defer cursor.Close(ctx)

	var schedules []*models.Schedule
	if err := cursor.All(ctx, &schedules); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping schedules: %v", err)
	}
	return schedules, nil
}

func (r *MongoScheduleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.schedulesCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %v", err)
	}
	if result.DeletedCount == 0 {
		return models.NewNotFoundError("schedule", id.Hex())
	}
	return nil
}
