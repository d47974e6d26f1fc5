package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"planner-project/backend/schedule-service/middleware"
	"planner-project/backend/schedule-service/services"

	"github.com/gorilla/mux"
)

type GroupHandler struct {
	service *services.GroupService
}

func NewGroupHandler(service *services.GroupService) *GroupHandler {
	return &GroupHandler{service: service}
}

func (h *GroupHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User is not authenticated", http.StatusUnauthorized)
		return
	}
	groupID := mux.Vars(r)["groupID"]

	members, err := h.service.ListMembers(r.Context(), groupID, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(members)
}

func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User is not authenticated", http.StatusUnauthorized)
		return
	}
	groupID := mux.Vars(r)["groupID"]

	var body struct {
		UserID            string `json:"userId"`
		CanCreateSchedule bool   `json:"canCreateSchedule"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	membership, err := h.service.AddMember(r.Context(), groupID, userID, body.UserID, body.CanCreateSchedule)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(membership)
}

func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User is not authenticated", http.StatusUnauthorized)
		return
	}
	vars := mux.Vars(r)

	if err := h.service.RemoveMember(r.Context(), vars["groupID"], userID, vars["userID"]); err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Member removed from group"})
}

func (h *GroupHandler) PromoteMember(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, h.service.PromoteMember, "Member promoted to moderator")
}

func (h *GroupHandler) DemoteMember(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, h.service.DemoteMember, "Moderator demoted to member")
}

func (h *GroupHandler) SetSchedulePermission(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User is not authenticated", http.StatusUnauthorized)
		return
	}
	vars := mux.Vars(r)

	var body struct {
		CanCreateSchedule bool `json:"canCreateSchedule"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.SetSchedulePermission(r.Context(), vars["groupID"], userID, vars["userID"], body.CanCreateSchedule); err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Schedule permission updated"})
}

func (h *GroupHandler) TransferAdmin(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User is not authenticated", http.StatusUnauthorized)
		return
	}
	groupID := mux.Vars(r)["groupID"]

	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.TransferAdmin(r.Context(), groupID, userID, body.UserID); err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Admin role transferred"})
}

func (h *GroupHandler) changeRole(w http.ResponseWriter, r *http.Request, change func(ctx context.Context, groupID, actorID, userID string) error, message string) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User is not authenticated", http.StatusUnauthorized)
		return
	}
	vars := mux.Vars(r)

	if err := change(r.Context(), vars["groupID"], userID, vars["userID"]); err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
