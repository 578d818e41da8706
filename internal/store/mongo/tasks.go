package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"tasklane.dev/internal/apperr"
	"tasklane.dev/internal/tasks"
)

// scopeFilter narrows to the scoped task id and, for restricted scopes, to
// tasks listing the owner.
func scopeFilter(scope tasks.Scope) bson.D {
	f := bson.D{}
	if scope.TaskID != "" {
		f = append(f, bson.E{Key: "_id", Value: scope.TaskID})
	}
	if scope.Restricted() {
		f = append(f, bson.E{Key: "owners.userId", Value: scope.OwnerID})
	}
	return f
}

// addOwnerFilter extends the scope with "target is not an owner yet". The
// negation sits on the owners array itself so it never collides with the
// owners.userId key of a restricted scope.
func addOwnerFilter(scope tasks.Scope, targetID string) bson.D {
	return append(scopeFilter(scope), bson.E{Key: "owners", Value: bson.D{
		{Key: "$not", Value: bson.D{{Key: "$elemMatch", Value: bson.D{{Key: "userId", Value: targetID}}}}},
	}})
}

func patchUpdate(p tasks.Patch, now time.Time) bson.D {
	set := bson.D{}
	if p.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *p.Title})
	}
	if p.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *p.Description})
	}
	if p.Difficulty != nil {
		set = append(set, bson.E{Key: "difficulty", Value: string(*p.Difficulty)})
	}
	if p.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*p.Status)})
	}
	if p.Comment != nil {
		set = append(set, bson.E{Key: "comment", Value: *p.Comment})
	}
	if p.Deadline != nil {
		set = append(set, bson.E{Key: "deadline", Value: p.Deadline.UTC()})
	}
	set = append(set, bson.E{Key: "updatedAt", Value: now.UTC()})
	update := bson.D{{Key: "$set", Value: set}}
	if p.ClearDeadline {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "deadline", Value: ""}}})
	}
	return update
}

func (s *Store) CreateTask(ctx context.Context, t *tasks.Task) error {
	_, err := s.tasks.InsertOne(ctx, newTaskDoc(t))
	return err
}

func (s *Store) ListTasks(ctx context.Context, scope tasks.Scope) ([]tasks.Task, error) {
	cur, err := s.tasks.Find(ctx, scopeFilter(scope),
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]tasks.Task, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.task())
	}
	return out, nil
}

func (s *Store) GetTask(ctx context.Context, scope tasks.Scope) (tasks.Task, error) {
	if scope.TaskID == "" {
		return tasks.Task{}, apperr.ErrNotFound
	}
	var doc taskDoc
	if err := s.tasks.FindOne(ctx, scopeFilter(scope)).Decode(&doc); err != nil {
		return tasks.Task{}, notFound(err)
	}
	return doc.task(), nil
}

func (s *Store) UpdateTask(ctx context.Context, scope tasks.Scope, p tasks.Patch, now time.Time) (tasks.Task, error) {
	if scope.TaskID == "" {
		return tasks.Task{}, apperr.ErrNotFound
	}
	return s.findAndUpdate(ctx, scopeFilter(scope), patchUpdate(p, now))
}

// AddOwner is a single findOneAndUpdate; the document-level write lock makes
// the membership test and the $push one atomic step.
func (s *Store) AddOwner(ctx context.Context, scope tasks.Scope, owner tasks.Owner, now time.Time) (tasks.Task, error) {
	if scope.TaskID == "" {
		return tasks.Task{}, apperr.ErrNotFound
	}
	update := bson.D{
		{Key: "$push", Value: bson.D{{Key: "owners", Value: newOwnerDoc(owner)}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now.UTC()}}},
	}
	return s.findAndUpdate(ctx, addOwnerFilter(scope, owner.UserID), update)
}

func (s *Store) DeleteTask(ctx context.Context, scope tasks.Scope) error {
	if scope.TaskID == "" {
		return apperr.ErrNotFound
	}
	res, err := s.tasks.DeleteOne(ctx, scopeFilter(scope))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *Store) findAndUpdate(ctx context.Context, filter, update bson.D) (tasks.Task, error) {
	var doc taskDoc
	err := s.tasks.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return tasks.Task{}, notFound(err)
	}
	return doc.task(), nil
}
