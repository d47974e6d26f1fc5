package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ScheduleType string

const (
	ScheduleTypeEvent        ScheduleType = "EVENT"
	ScheduleTypeMeeting      ScheduleType = "MEETING"
	ScheduleTypeTaskReminder ScheduleType = "TASK_REMINDER"
)

type ScheduleColor string

const (
	ColorPurple ScheduleColor = "purple"
	ColorBlue   ScheduleColor = "blue"
	ColorGreen  ScheduleColor = "green"
	ColorOrange ScheduleColor = "orange"
	ColorRed    ScheduleColor = "red"
)

type ScheduleImportance string

const (
	ImportanceLow    ScheduleImportance = "LOW"
	ImportanceNormal ScheduleImportance = "NORMAL"
	ImportanceHigh   ScheduleImportance = "HIGH"
)

func (t ScheduleType) IsValid() bool {
	switch t {
	case ScheduleTypeEvent, ScheduleTypeMeeting, ScheduleTypeTaskReminder:
		return true
	}
	return false
}

func (c ScheduleColor) IsValid() bool {
	switch c {
	case ColorPurple, ColorBlue, ColorGreen, ColorOrange, ColorRed:
		return true
	}
	return false
}

func (i ScheduleImportance) IsValid() bool {
	switch i {
	case ImportanceLow, ImportanceNormal, ImportanceHigh:
		return true
	}
	return false
}

type Schedule struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	StartTime   time.Time          `json:"startTime" bson:"startTime"`
	EndTime     time.Time          `json:"endTime" bson:"endTime"`
	Type        ScheduleType       `json:"type" bson:"type"`
	Color       ScheduleColor      `json:"color" bson:"color"`
	Importance  ScheduleImportance `json:"importance" bson:"importance"`
	Progress    int                `json:"progress" bson:"progress"`
	OwnerID     string             `json:"ownerId" bson:"ownerId"`
	GroupID     string             `json:"groupId,omitempty" bson:"groupId,omitempty"`
}

// NewSchedule validates and builds a schedule. Type, color and importance
// fall back to EVENT / blue / NORMAL when omitted.
func NewSchedule(title, description string, startTime, endTime time.Time, scheduleType ScheduleType, color ScheduleColor, importance ScheduleImportance, progress int, ownerID, groupID string) (*Schedule, error) {
	if len(title) < 3 {
		return nil, NewValidationError("title must be at least 3 characters long")
	}
	if _, err := NewTimeRange(startTime, endTime); err != nil {
		return nil, err
	}
	if progress < 0 || progress > 100 {
		return nil, NewValidationError("progress must be between 0 and 100")
	}
	if scheduleType == "" {
		scheduleType = ScheduleTypeEvent
	}
	if color == "" {
		color = ColorBlue
	}
	if importance == "" {
		importance = ImportanceNormal
	}
	if !scheduleType.IsValid() {
		return nil, NewValidationError("unknown schedule type: %s", scheduleType)
	}
	if !color.IsValid() {
		return nil, NewValidationError("unknown schedule color: %s", color)
	}
	if !importance.IsValid() {
		return nil, NewValidationError("unknown schedule importance: %s", importance)
	}

	return &Schedule{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: description,
		StartTime:   startTime,
		EndTime:     endTime,
		Type:        scheduleType,
		Color:       color,
		Importance:  importance,
		Progress:    progress,
		OwnerID:     ownerID,
		GroupID:     groupID,
	}, nil
}

// TimeRange returns the schedule's interval.
func (s *Schedule) TimeRange() TimeRange {
	return TimeRange{Start: s.StartTime, End: s.EndTime}
}

// HasConflict reports whether two distinct schedules overlap in time.
// A schedule never conflicts with itself.
func (s *Schedule) HasConflict(other *Schedule) bool {
	if s.ID == other.ID {
		return false
	}
	return s.TimeRange().Overlaps(other.TimeRange())
}

// IsGroupOwned reports whether the schedule is bound to a group, which
// extends mutation rights beyond the creator.
func (s *Schedule) IsGroupOwned() bool {
	return s.GroupID != ""
}
