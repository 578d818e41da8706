package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"tasklane.dev/internal/apperr"
	"tasklane.dev/internal/audit"
	"tasklane.dev/internal/auth"
	"tasklane.dev/internal/tasks"
)

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Difficulty  string  `json:"difficulty"`
	Status      string  `json:"status,omitempty"`
	Comment     string  `json:"comment,omitempty"`
	Deadline    *string `json:"deadline,omitempty"`
}

type updateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Difficulty  *string `json:"difficulty,omitempty"`
	Status      *string `json:"status,omitempty"`
	Comment     *string `json:"comment,omitempty"`
	// An empty string clears the deadline.
	Deadline    *string `json:"deadline,omitempty"`
}

type assignTaskRequest struct {
	Email string `json:"email"`
}

func parseDeadline(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, fmt.Errorf("%w: deadline must be an RFC 3339 timestamp", apperr.ErrBadRequest)
	}
	t = t.UTC()
	return &t, nil
}

// requester is set by the guard on every task route.
func requester(r *http.Request) auth.Identity {
	id, _ := auth.IdentityFromContext(r.Context())
	return id
}

func (a *API) handleListTasks(w http.ResponseWriter, r *http.Request) {
	list, err := a.tasks.List(r.Context(), requester(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := a.tasks.Get(r.Context(), requester(r), r.PathValue("id"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	t, err := a.tasks.Create(r.Context(), requester(r), tasks.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Difficulty:  tasks.Difficulty(req.Difficulty),
		Status:      tasks.Status(req.Status),
		Comment:     req.Comment,
		Deadline:    deadline,
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "task.create", map[string]any{"task_id": t.ID})
	w.Header().Set("Location", a.prefix+"/todolists/"+t.ID)
	writeJSON(w, http.StatusCreated, t)
}

func (a *API) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	p := tasks.Patch{
		Title:         req.Title,
		Description:   req.Description,
		Comment:       req.Comment,
		Deadline:      deadline,
		ClearDeadline: req.Deadline != nil && *req.Deadline == "",
	}
	if req.Difficulty != nil {
		d := tasks.Difficulty(*req.Difficulty)
		p.Difficulty = &d
	}
	if req.Status != nil {
		s := tasks.Status(*req.Status)
		p.Status = &s
	}
	t, err := a.tasks.Update(r.Context(), requester(r), r.PathValue("id"), p)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "task.update", map[string]any{"task_id": t.ID})
	writeJSON(w, http.StatusOK, t)
}

func (a *API) handleAssignTask(w http.ResponseWriter, r *http.Request) {
	var req assignTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	id := r.PathValue("id")
	t, err := a.tasks.Assign(r.Context(), requester(r), id, req.Email)
	if err != nil {
		_ = audit.LogEvent(r.Context(), "task.assign.failed", map[string]any{"task_id": id})
		writeErr(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "task.assign", map[string]any{
		"task_id": t.ID,
		"owners":  len(t.Owners),
	})
	writeJSON(w, http.StatusOK, t)
}

func (a *API) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.tasks.Delete(r.Context(), requester(r), id); err != nil {
		writeErr(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "task.delete", map[string]any{"task_id": id})
	w.WriteHeader(http.StatusNoContent)
}
