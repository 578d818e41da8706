package tasks

import "tasklane.dev/internal/auth"

// Operation names an action on tasks for the ownership policy.
type Operation string

const (
	OpList   Operation = "list"
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpAssign Operation = "assign"
	OpDelete Operation = "delete"
)

// Scope is the filter a store call runs under. An empty TaskID selects every
// task (list only); an empty OwnerID lifts owner membership.
type Scope struct {
	TaskID  string
	OwnerID string
}

// Restricted reports whether the scope requires owner membership.
func (s Scope) Restricted() bool { return s.OwnerID != "" }

// Matches is the in-memory form of the scope filter.
func (s Scope) Matches(t Task) bool {
	if s.TaskID != "" && t.ID != s.TaskID {
		return false
	}
	return !s.Restricted() || t.HasOwner(s.OwnerID)
}

// AdmitsOwner is the add-owner predicate: the task matches the scope and
// userID is not yet among its owners. The stores embed the same condition in
// their atomic write.
func (s Scope) AdmitsOwner(t Task, userID string) bool {
	return s.Matches(t) && !t.HasOwner(userID)
}

// ScopeFor computes the store filter for op. Admins see every task; users only
// the tasks they own. A scope miss and a missing task look the same.
func ScopeFor(req auth.Identity, op Operation, taskID string) Scope {
	s := Scope{}
	if op != OpList {
		s.TaskID = taskID
	}
	if !req.IsAdmin() {
		s.OwnerID = req.ID
	}
	return s
}
