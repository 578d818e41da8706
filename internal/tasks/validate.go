package tasks

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"tasklane.dev/internal/apperr"
)

const (
	minTitleLen       = 3
	maxTitleLen       = 50
	maxDescriptionLen = 200
	maxCommentLen     = 200
)

// CreateInput is the body of a create request after decoding.
type CreateInput struct {
	Title       string
	Description string
	Difficulty  Difficulty
	Status      Status
	Comment     string
	Deadline    *time.Time
}

// Validate trims text fields, defaults the status and checks every field.
func (in *CreateInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Comment = strings.TrimSpace(in.Comment)
	if in.Status == "" {
		in.Status = StatusInProgress
	}
	if err := validateTitle(in.Title); err != nil {
		return err
	}
	if err := validateText("description", in.Description, maxDescriptionLen); err != nil {
		return err
	}
	if err := validateText("comment", in.Comment, maxCommentLen); err != nil {
		return err
	}
	if !in.Difficulty.Valid() {
		return badRequest("difficulty must be one of Easy, Medium, Hard")
	}
	if !in.Status.Valid() {
		return badRequest("status must be one of in-progress, done")
	}
	return nil
}

// Validate trims text fields and checks the ones that are set.
func (p *Patch) Validate() error {
	if p.Empty() {
		return badRequest("no fields to update")
	}
	if p.ClearDeadline && p.Deadline != nil {
		return badRequest("deadline cannot be set and cleared at once")
	}
	if p.Title != nil {
		v := strings.TrimSpace(*p.Title)
		p.Title = &v
		if err := validateTitle(v); err != nil {
			return err
		}
	}
	if p.Description != nil {
		v := strings.TrimSpace(*p.Description)
		p.Description = &v
		if err := validateText("description", v, maxDescriptionLen); err != nil {
			return err
		}
	}
	if p.Comment != nil {
		v := strings.TrimSpace(*p.Comment)
		p.Comment = &v
		if err := validateText("comment", v, maxCommentLen); err != nil {
			return err
		}
	}
	if p.Difficulty != nil && !p.Difficulty.Valid() {
		return badRequest("difficulty must be one of Easy, Medium, Hard")
	}
	if p.Status != nil && !p.Status.Valid() {
		return badRequest("status must be one of in-progress, done")
	}
	return nil
}

func validateTitle(title string) error {
	if n := utf8.RuneCountInString(title); n < minTitleLen || n > maxTitleLen {
		return badRequest("title must be between %d and %d characters", minTitleLen, maxTitleLen)
	}
	return nil
}

func validateText(field, v string, max int) error {
	if utf8.RuneCountInString(v) > max {
		return badRequest("%s must be at most %d characters", field, max)
	}
	return nil
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperr.ErrBadRequest, fmt.Sprintf(format, args...))
}
