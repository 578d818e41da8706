package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tasklane.dev/internal/auth"
)

var (
	alice = auth.Identity{ID: "alice", Role: auth.RoleUser}
	bob   = auth.Identity{ID: "bob", Role: auth.RoleUser}
	root  = auth.Identity{ID: "root", Role: auth.RoleAdmin}
)

func TestScopeFor(t *testing.T) {
	cases := []struct {
		name string
		req  auth.Identity
		op   Operation
		id   string
		want Scope
	}{
		{"user list", alice, OpList, "ignored", Scope{OwnerID: "alice"}},
		{"admin list", root, OpList, "", Scope{}},
		{"user read", alice, OpRead, "t1", Scope{TaskID: "t1", OwnerID: "alice"}},
		{"admin read", root, OpRead, "t1", Scope{TaskID: "t1"}},
		{"user update", bob, OpUpdate, "t1", Scope{TaskID: "t1", OwnerID: "bob"}},
		{"user assign", alice, OpAssign, "t1", Scope{TaskID: "t1", OwnerID: "alice"}},
		{"admin assign", root, OpAssign, "t1", Scope{TaskID: "t1"}},
		{"admin delete", root, OpDelete, "t9", Scope{TaskID: "t9"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ScopeFor(tc.req, tc.op, tc.id))
		})
	}
}

func TestScopeForDecidesByOwnership(t *testing.T) {
	task := Task{ID: "t1", Owners: []Owner{{UserID: "alice"}}}

	for _, op := range []Operation{OpRead, OpUpdate, OpAssign, OpDelete} {
		assert.True(t, ScopeFor(alice, op, "t1").Matches(task), "owner %s", op)
		assert.False(t, ScopeFor(bob, op, "t1").Matches(task), "non-owner %s", op)
		assert.True(t, ScopeFor(root, op, "t1").Matches(task), "admin %s", op)
		assert.False(t, ScopeFor(root, op, "t2").Matches(task), "admin wrong id %s", op)
	}
	assert.True(t, ScopeFor(alice, OpList, "").Matches(task))
	assert.False(t, ScopeFor(bob, OpList, "").Matches(task))
}

func TestScopeMatches(t *testing.T) {
	task := Task{ID: "t1", Owners: []Owner{{UserID: "alice"}, {UserID: "bob"}}}
	assert.True(t, Scope{TaskID: "t1", OwnerID: "bob"}.Matches(task))
	assert.False(t, Scope{TaskID: "t1", OwnerID: "carol"}.Matches(task))
	assert.False(t, Scope{TaskID: "t2"}.Matches(task))
	assert.True(t, Scope{}.Matches(task))
}

func TestScopeAdmitsOwner(t *testing.T) {
	task := Task{ID: "t1", Owners: []Owner{{UserID: "alice"}}}
	assign := func(req auth.Identity) Scope { return ScopeFor(req, OpAssign, "t1") }

	assert.True(t, assign(alice).AdmitsOwner(task, "bob"))
	assert.False(t, assign(alice).AdmitsOwner(task, "alice"), "already an owner")
	assert.False(t, assign(bob).AdmitsOwner(task, "carol"), "requester not an owner")
	assert.True(t, assign(root).AdmitsOwner(task, "carol"), "admin skips membership")
	assert.False(t, assign(root).AdmitsOwner(task, "alice"), "admin still cannot duplicate")
}

func TestCreateInputValidate(t *testing.T) {
	in := CreateInput{Title: "  Write report ", Difficulty: DifficultyMedium}
	assert.NoError(t, in.Validate())
	assert.Equal(t, "Write report", in.Title)
	assert.Equal(t, StatusInProgress, in.Status)

	bad := []CreateInput{
		{Title: "ab", Difficulty: DifficultyEasy},
		{Title: "valid title", Difficulty: "Impossible"},
		{Title: "valid title", Difficulty: DifficultyEasy, Status: "blocked"},
		{Title: "valid title", Difficulty: DifficultyEasy, Description: string(make([]byte, 201))},
	}
	for i, in := range bad {
		assert.Error(t, in.Validate(), "case %d", i)
	}
}

func TestPatchValidate(t *testing.T) {
	var empty Patch
	assert.Error(t, empty.Validate())

	title := " ok title "
	status := StatusDone
	p := Patch{Title: &title, Status: &status}
	assert.NoError(t, p.Validate())
	assert.Equal(t, "ok title", *p.Title)

	d := Difficulty("Trivial")
	assert.Error(t, (&Patch{Difficulty: &d}).Validate())
}

func TestPatchClearDeadline(t *testing.T) {
	p := Patch{ClearDeadline: true}
	assert.False(t, p.Empty())
	assert.NoError(t, p.Validate())

	deadline := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	task := Task{Deadline: &deadline}
	p.Apply(&task)
	assert.Nil(t, task.Deadline)

	both := Patch{Deadline: &deadline, ClearDeadline: true}
	assert.Error(t, both.Validate())
}
