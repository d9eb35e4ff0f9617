package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskdeck/taskdeck-backend/internal/middleware"
	"github.com/taskdeck/taskdeck-backend/internal/models"
	"github.com/taskdeck/taskdeck-backend/internal/services"
)

type createTaskRequest struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// CreateTask creates a task owned by the authenticated user. The owner
// always comes from the auth context, never from the request body.
func CreateTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	description, err := models.NewDescription(req.Description)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	task := &models.Task{
		ID:          primitive.NewObjectID(),
		CreatedAt:   now,
		UpdatedAt:   now,
		Description: description,
		Completed:   req.Completed,
		Owner:       user.ID,
	}

	if err := taskStore.Insert(r.Context(), task); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create task")
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// ListTasks returns the caller's tasks. Query options:
//   - completed  exact boolean filter ("true" matches completed tasks)
//   - limit/skip pagination; non-numeric values degrade to no limit/skip
//   - sortBy     comma list of field_direction pairs, asc or desc
func ListTasks(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	query := services.TaskQuery{}
	params := r.URL.Query()

	if v := params.Get("completed"); v != "" {
		completed := v == "true"
		query.Completed = &completed
	}
	if v := params.Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			query.Limit = n
		}
	}
	if v := params.Get("skip"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			query.Skip = n
		}
	}
	if v := params.Get("sortBy"); v != "" {
		query.Sort = parseSortBy(v)
	}

	tasks, err := taskStore.FindByOwner(r.Context(), user.ID, query)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list tasks")
		return
	}
	if len(tasks) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

// parseSortBy splits "created_at_desc,completed_asc" into ordered sort
// terms. The direction is the part after the last underscore; anything
// other than "asc" sorts descending.
func parseSortBy(value string) []services.SortField {
	var fields []services.SortField
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		field, direction := item, ""
		if idx := strings.LastIndex(item, "_"); idx > 0 {
			field, direction = item[:idx], item[idx+1:]
		}
		fields = append(fields, services.SortField{Field: field, Desc: direction != "asc"})
	}
	return fields
}

// GetTask returns one task by id, scoped to the caller. A task owned by
// another user answers 404 exactly like a missing one.
func GetTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	task, err := taskStore.FindByIDAndOwner(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to get task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

var taskUpdateFields = map[string]bool{
	"description": true,
	"completed":   true,
}

// UpdateTask applies an allow-listed partial update after re-fetching the
// task, so the same save path runs as on create.
func UpdateTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	for field := range body {
		if !taskUpdateFields[field] {
			respondError(w, http.StatusBadRequest, "invalid update")
			return
		}
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	task, err := taskStore.FindByIDAndOwner(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to update task")
		return
	}

	if raw, ok := body["description"]; ok {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			respondError(w, http.StatusBadRequest, "invalid update")
			return
		}
		description, err := models.NewDescription(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		task.Description = description
	}
	if raw, ok := body["completed"]; ok {
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			respondError(w, http.StatusBadRequest, "invalid update")
			return
		}
		task.Completed = v
	}

	task.UpdatedAt = time.Now()
	if err := taskStore.SaveFields(r.Context(), task); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// DeleteTask removes one task by id, scoped to the caller, and returns the
// deleted task.
func DeleteTask(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	task, err := taskStore.DeleteByIDAndOwner(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to delete task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}
