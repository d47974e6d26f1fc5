package repositories

import (
	"context"
	"errors"
	"fmt"

	"planner-project/backend/schedule-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoGroupRepository implements services.GroupMembershipRepository on the
// groupMembers collection maintained by the social subsystem.
type MongoGroupRepository struct {
	membersCollection *mongo.Collection
}

func NewMongoGroupRepository(membersCollection *mongo.Collection) *MongoGroupRepository {
	return &MongoGroupRepository{membersCollection: membersCollection}
}

func (r *MongoGroupRepository) FindMember(ctx context.Context, groupID, userID string) (*models.GroupMembership, error) {
	var membership models.GroupMembership
	err := r.membersCollection.FindOne(ctx, bson.M{"groupId": groupID, "userId": userID}).Decode(&membership)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve group membership: %v", err)
	}
	return &membership, nil
}

func (r *MongoGroupRepository) ListMembers(ctx context.Context, groupID string) ([]*models.GroupMembership, error) {
	cursor, err := r.membersCollection.Find(ctx, bson.M{"groupId": groupID})
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %v", err)
	}
	defer cursor.Close(ctx)

	var members []*models.GroupMembership
	if err := cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("failed to decode group members: %v", err)
	}
	return members, nil
}

func (r *MongoGroupRepository) ListGroupIDsForUser(ctx context.Context, userID string) ([]string, error) {
	values, err := r.membersCollection.Distinct(ctx, "groupId", bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for user: %v", err)
	}

	groupIDs := make([]string, 0, len(values))
	for _, value := range values {
		if groupID, ok := value.(string); ok {
			groupIDs = append(groupIDs, groupID)
		}
	}
	return groupIDs, nil
}

func (r *MongoGroupRepository) Insert(ctx context.Context, membership *models.GroupMembership) error {
	if _, err := r.membersCollection.InsertOne(ctx, membership); err != nil {
		return fmt.Errorf("failed to insert group membership: %v", err)
	}
	return nil
}

func (r *MongoGroupRepository) Remove(ctx context.Context, groupID, userID string) error {
	result, err := r.membersCollection.DeleteOne(ctx, bson.M{"groupId": groupID, "userId": userID})
	if err != nil {
		return fmt.Errorf("failed to remove group membership: %v", err)
	}
	if result.DeletedCount == 0 {
		return models.NewNotFoundError("group member", userID)
	}
	return nil
}

func (r *MongoGroupRepository) UpdateRole(ctx context.Context, groupID, userID string, role models.GroupRole) error {
	result, err := r.membersCollection.UpdateOne(ctx,
		bson.M{"groupId": groupID, "userId": userID},
		bson.M{"$set": bson.M{"role": role}},
	)
	if err != nil {
		return fmt.Errorf("failed to update member role: %v", err)
	}
	if result.MatchedCount == 0 {
		return models.NewNotFoundError("group member", userID)
	}
	return nil
}

func (r *MongoGroupRepository) SetCanCreateSchedule(ctx context.Context, groupID, userID string, allowed bool) error {
	result, err := r.membersCollection.UpdateOne(ctx,
		bson.M{"groupId": groupID, "userId": userID},
		bson.M{"$set": bson.M{"canCreateSchedule": allowed}},
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule permission: %v", err)
	}
	if result.MatchedCount == 0 {
		return models.NewNotFoundError("group member", userID)
	}
	return nil
}

func (r *MongoGroupRepository) DemoteAllAdmins(ctx context.Context, groupID string) error {
	_, err := r.membersCollection.UpdateMany(ctx,
		bson.M{"groupId": groupID, "role": models.RoleAdmin},
		bson.M{"$set": bson.M{"role": models.RoleModerator}},
	)
	if err != nil {
		return fmt.Errorf("failed to demote group admins: %v", err)
	}
	return nil
}
