// Package tasks holds the task domain: validation, the ownership policy that
// scopes every store call, and the service the HTTP layer drives.
package tasks

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

func (s Status) Valid() bool {
	return s == StatusInProgress || s == StatusDone
}

// Owner is a denormalized copy of the owning user's public fields.
type Owner struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Task is a todo item owned by one or more users. Owners is never empty and
// never holds the same UserID twice.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Difficulty  Difficulty `json:"difficulty"`
	Status      Status     `json:"status"`
	Owners      []Owner    `json:"owners"`
	Comment     string     `json:"comment,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// HasOwner reports whether userID is among the task's owners.
func (t Task) HasOwner(userID string) bool {
	for _, o := range t.Owners {
		if o.UserID == userID {
			return true
		}
	}
	return false
}

// Patch carries the fields of a partial update; nil means unchanged.
// ClearDeadline removes the deadline and cannot be combined with Deadline.
type Patch struct {
	Title         *string
	Description   *string
	Difficulty    *Difficulty
	Status        *Status
	Comment       *string
	Deadline      *time.Time
	ClearDeadline bool
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Difficulty == nil &&
		p.Status == nil && p.Comment == nil && p.Deadline == nil && !p.ClearDeadline
}

// Apply writes the patch onto t.
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Difficulty != nil {
		t.Difficulty = *p.Difficulty
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Comment != nil {
		t.Comment = *p.Comment
	}
	if p.Deadline != nil {
		d := *p.Deadline
		t.Deadline = &d
	}
	if p.ClearDeadline {
		t.Deadline = nil
	}
}
