package services

import (
	"context"
	"fmt"

	"planner-project/backend/schedule-service/models"
)

// GroupService covers group administration: membership changes, role moves
// and the admin transfer. Group creation itself belongs to the social
// subsystem.
type GroupService struct {
	members GroupMembershipRepository
}

func NewGroupService(members GroupMembershipRepository) *GroupService {
	return &GroupService{members: members}
}

// AddMember adds a user to the group as a plain MEMBER. Admin only.
func (s *GroupService) AddMember(ctx context.Context, groupID, actorID, userID string, canCreateSchedule bool) (*models.GroupMembership, error) {
	if err := s.requireAdmin(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	existing, err := s.members.FindMember(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up group membership: %w", err)
	}
	if existing != nil {
		return nil, models.NewValidationError("user is already a member of this group")
	}

	membership := &models.GroupMembership{
		UserID:            userID,
		GroupID:           groupID,
		Role:              models.RoleMember,
		CanCreateSchedule: canCreateSchedule,
	}
	if err := s.members.Insert(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to add group member: %w", err)
	}
	return membership, nil
}

// RemoveMember removes a non-admin member from the group. Admin only. The
// admin role has to be transferred before its holder can leave.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, actorID, userID string) error {
	if err := s.requireAdmin(ctx, groupID, actorID); err != nil {
		return err
	}
	target, err := s.members.FindMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to look up group membership: %w", err)
	}
	if target == nil {
		return models.NewNotFoundError("group member", userID)
	}
	if target.Role == models.RoleAdmin {
		return models.NewValidationError("the group admin cannot be removed; transfer the admin role first")
	}
	if err := s.members.Remove(ctx, groupID, userID); err != nil {
		return fmt.Errorf("failed to remove group member: %w", err)
	}
	return nil
}

// PromoteMember raises a MEMBER to MODERATOR. Admin only.
func (s *GroupService) PromoteMember(ctx context.Context, groupID, actorID, userID string) error {
	return s.changeRole(ctx, groupID, actorID, userID, models.RoleMember, models.RoleModerator)
}

// DemoteMember lowers a MODERATOR back to MEMBER. Admin only.
func (s *GroupService) DemoteMember(ctx context.Context, groupID, actorID, userID string) error {
	return s.changeRole(ctx, groupID, actorID, userID, models.RoleModerator, models.RoleMember)
}

// SetSchedulePermission toggles a member's canCreateSchedule flag. Admin only.
func (s *GroupService) SetSchedulePermission(ctx context.Context, groupID, actorID, userID string, allowed bool) error {
	if err := s.requireAdmin(ctx, groupID, actorID); err != nil {
		return err
	}
	target, err := s.members.FindMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to look up group membership: %w", err)
	}
	if target == nil {
		return models.NewNotFoundError("group member", userID)
	}
	if err := s.members.SetCanCreateSchedule(ctx, groupID, userID, allowed); err != nil {
		return fmt.Errorf("failed to update schedule permission: %w", err)
	}
	return nil
}

// TransferAdmin hands the admin role to another member. Every current ADMIN
// is demoted to MODERATOR first, so after the operation the group has exactly
// one ADMIN: the target.
func (s *GroupService) TransferAdmin(ctx context.Context, groupID, actorID, targetID string) error {
	if err := s.requireAdmin(ctx, groupID, actorID); err != nil {
		return err
	}
	target, err := s.members.FindMember(ctx, groupID, targetID)
	if err != nil {
		return fmt.Errorf("failed to look up group membership: %w", err)
	}
	if target == nil {
		return models.NewNotFoundError("group member", targetID)
	}

	if err := s.members.DemoteAllAdmins(ctx, groupID); err != nil {
		return fmt.Errorf("failed to demote current admins: %w", err)
	}
	if err := s.members.UpdateRole(ctx, groupID, targetID, models.RoleAdmin); err != nil {
		return fmt.Errorf("failed to promote new admin: %w", err)
	}
	return nil
}

// ListMembers returns the group's membership records. Any member may look.
func (s *GroupService) ListMembers(ctx context.Context, groupID, actorID string) ([]*models.GroupMembership, error) {
	actor, err := s.members.FindMember(ctx, groupID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up group membership: %w", err)
	}
	if actor == nil {
		return nil, models.NewPermissionDeniedError("you are not a member of this group")
	}
	members, err := s.members.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	return members, nil
}

func (s *GroupService) changeRole(ctx context.Context, groupID, actorID, userID string, from, to models.GroupRole) error {
	if err := s.requireAdmin(ctx, groupID, actorID); err != nil {
		return err
	}
	target, err := s.members.FindMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to look up group membership: %w", err)
	}
	if target == nil {
		return models.NewNotFoundError("group member", userID)
	}
	if target.Role != from {
		return models.NewInvalidTransitionError("member has role %s, expected %s", target.Role, from)
	}
	if err := s.members.UpdateRole(ctx, groupID, userID, to); err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	return nil
}

func (s *GroupService) requireAdmin(ctx context.Context, groupID, actorID string) error {
	actor, err := s.members.FindMember(ctx, groupID, actorID)
	if err != nil {
		return fmt.Errorf("failed to look up group membership: %w", err)
	}
	if actor == nil {
		return models.NewPermissionDeniedError("you are not a member of this group")
	}
	if actor.Role != models.RoleAdmin {
		return models.NewPermissionDeniedError("only the group admin may manage members")
	}
	return nil
}
