package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"planner-project/backend/schedule-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTaskRepository implements services.TaskRepository on a MongoDB
// collection.
type MongoTaskRepository struct {
	tasksCollection *mongo.Collection
}

func NewMongoTaskRepository(tasksCollection *mongo.Collection) *MongoTaskRepository {
	return &MongoTaskRepository{tasksCollection: tasksCollection}
}

func (r *MongoTaskRepository) Save(ctx context.Context, task *models.Task) (*models.Task, error) {
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.tasksCollection.ReplaceOne(ctx, bson.M{"_id": task.ID}, task, opts); err != nil {
		return nil, fmt.Errorf("failed to save task: %v", err)
	}
	return task, nil
}

func (r *MongoTaskRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := r.tasksCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NewNotFoundError("task", id.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %v", err)
	}
	return &task, nil
}

func (r *MongoTaskRepository) FindByOwner(ctx context.Context, ownerID string) ([]*models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "deadline", Value: 1}})
	cursor, err := r.tasksCollection.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []*models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}
	return tasks, nil
}

func (r *MongoTaskRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.tasksCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete task: %v", err)
	}
	if result.DeletedCount == 0 {
		return models.NewNotFoundError("task", id.Hex())
	}
	return nil
}

// ExpireOverdue is a single bulk write, so re-running it without new overdue
// tasks modifies nothing and reports zero.
func (r *MongoTaskRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"deadline": bson.M{"$lt": now},
		"status":   bson.M{"$nin": bson.A{models.TaskStatusDone, models.TaskStatusExpired}},
	}
	update := bson.M{"$set": bson.M{"status": models.TaskStatusExpired}}

	result, err := r.tasksCollection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to expire overdue tasks: %v", err)
	}
	return result.ModifiedCount, nil
}

func (r *MongoTaskRepository) FindUpcoming(ctx context.Context, now time.Time, window time.Duration) ([]*models.Task, error) {
	filter := bson.M{
		"status":   models.TaskStatusTodo,
		"deadline": bson.M{"$gt": now, "$lt": now.Add(window)},
	}
	cursor, err := r.tasksCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve upcoming tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []*models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode upcoming tasks: %v", err)
	}
	return tasks, nil
}
