package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"planner-project/backend/schedule-service/middleware"
	"planner-project/backend/schedule-service/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ScheduleHandler struct {
	service *services.ScheduleService
}

func NewScheduleHandler(service *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

func (h *ScheduleHandler) GetSchedules(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User is not authenticated", http.StatusUnauthorized)
		return
	}

	schedules, err := h.service.GetSchedulesForUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(schedules)
}

func (h *ScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User is not authenticated", http.StatusUnauthorized)
		return
	}

	var input services.CreateScheduleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	schedule, err := h.service.CreateSchedule(r.Context(), userID, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(schedule)
}

// CheckConflicts is an advisory endpoint: it reports what a create attempt
// for the given range (and optional group scope) would collide with, without
// reserving anything.
func (h *ScheduleHandler) CheckConflicts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User is not authenticated", http.StatusUnauthorized)
		return
	}

	var body struct {
		StartTime time.Time `json:"startTime"`
		EndTime   time.Time `json:"endTime"`
		GroupID   string    `json:"groupId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conflicts, err := h.service.CheckConflicts(r.Context(), userID, body.StartTime, body.EndTime, body.GroupID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"hasConflict": len(conflicts) > 0,
		"conflicts":   conflicts,
	})
}

func (h *ScheduleHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User is not authenticated", http.StatusUnauthorized)
		return
	}

	scheduleID, err := scheduleIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid schedule ID format", http.StatusBadRequest)
		return
	}

	var input services.UpdateScheduleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	schedule, deleted, err := h.service.UpdateSchedule(r.Context(), scheduleID, userID, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if deleted {
		json.NewEncoder(w).Encode(map[string]string{"message": "Schedule completed and removed"})
		return
	}
	json.NewEncoder(w).Encode(schedule)
}

func (h *ScheduleHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User is not authenticated", http.StatusUnauthorized)
		return
	}

	scheduleID, err := scheduleIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid schedule ID format", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteSchedule(r.Context(), scheduleID, userID); err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Schedule deleted successfully"})
}

func scheduleIDFromRequest(r *http.Request) (primitive.ObjectID, error) {
	vars := mux.Vars(r)
	return primitive.ObjectIDFromHex(vars["scheduleID"])
}
