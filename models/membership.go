package models

type GroupRole string

const (
	RoleAdmin     GroupRole = "ADMIN"
	RoleModerator GroupRole = "MODERATOR"
	RoleMember    GroupRole = "MEMBER"
)

// GroupMembership is owned by the social subsystem; this service only reads
// it to authorize group-schedule mutations and group administration.
type GroupMembership struct {
	UserID            string    `json:"userId" bson:"userId"`
	GroupID           string    `json:"groupId" bson:"groupId"`
	Role              GroupRole `json:"role" bson:"role"`
	CanCreateSchedule bool      `json:"canCreateSchedule" bson:"canCreateSchedule"`
}

// CanManageSchedules reports whether the member may create group schedules or
// edit another member's schedule in the group. Admins always qualify; other
// roles need the explicit flag.
func (m *GroupMembership) CanManageSchedules() bool {
	return m.Role == RoleAdmin || m.CanCreateSchedule
}
