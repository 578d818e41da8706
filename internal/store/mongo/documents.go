package mongo

import (
	"time"

	"tasklane.dev/internal/auth"
	"tasklane.dev/internal/tasks"
)

type userDoc struct {
	ID               string    `bson:"_id"`
	Name             string    `bson:"name"`
	Email            string    `bson:"email"`
	PasswordHash     string    `bson:"passwordHash"`
	Role             string    `bson:"role"`
	RefreshTokenHash string    `bson:"refreshTokenHash,omitempty"`
	CreatedAt        time.Time `bson:"createdAt"`
}

func newUserDoc(u *auth.User) userDoc {
	return userDoc{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		Role:             string(u.Role),
		RefreshTokenHash: u.RefreshTokenHash,
		CreatedAt:        u.CreatedAt.UTC(),
	}
}

func (d userDoc) user() *auth.User {
	return &auth.User{
		ID:               d.ID,
		Name:             d.Name,
		Email:            d.Email,
		PasswordHash:     d.PasswordHash,
		Role:             auth.Role(d.Role),
		RefreshTokenHash: d.RefreshTokenHash,
		CreatedAt:        d.CreatedAt,
	}
}

type revokedDoc struct {
	Key       string    `bson:"_id"`
	ExpiresAt time.Time `bson:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt"`
}

type ownerDoc struct {
	UserID string `bson:"userId"`
	Name   string `bson:"name"`
	Email  string `bson:"email"`
}

type taskDoc struct {
	ID          string     `bson:"_id"`
	Title       string     `bson:"title"`
	Description string     `bson:"description,omitempty"`
	Difficulty  string     `bson:"difficulty"`
	Status      string     `bson:"status"`
	Owners      []ownerDoc `bson:"owners"`
	Comment     string     `bson:"comment,omitempty"`
	Deadline    *time.Time `bson:"deadline,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

func newOwnerDoc(o tasks.Owner) ownerDoc {
	return ownerDoc{UserID: o.UserID, Name: o.Name, Email: o.Email}
}

func newTaskDoc(t *tasks.Task) taskDoc {
	d := taskDoc{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Difficulty:  string(t.Difficulty),
		Status:      string(t.Status),
		Owners:      make([]ownerDoc, 0, len(t.Owners)),
		Comment:     t.Comment,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
	for _, o := range t.Owners {
		d.Owners = append(d.Owners, newOwnerDoc(o))
	}
	if t.Deadline != nil {
		dl := t.Deadline.UTC()
		d.Deadline = &dl
	}
	return d
}

func (d taskDoc) task() tasks.Task {
	t := tasks.Task{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Difficulty:  tasks.Difficulty(d.Difficulty),
		Status:      tasks.Status(d.Status),
		Owners:      make([]tasks.Owner, 0, len(d.Owners)),
		Comment:     d.Comment,
		Deadline:    d.Deadline,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for _, o := range d.Owners {
		t.Owners = append(t.Owners, tasks.Owner{UserID: o.UserID, Name: o.Name, Email: o.Email})
	}
	return t
}
