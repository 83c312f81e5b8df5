package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saverio87/ng-classroom-manager-backend/internal/domain"
)

func newTestClassroomRepo(t *testing.T) *ClassroomRepository {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewClassroomRepository(db).(*ClassroomRepository)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func newClassroom(userID string) *domain.Classroom {
	return &domain.Classroom{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   "Morning class",
		Grade:  3,
		Year:   2026,
	}
}

func TestClassroomCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestClassroomRepo(t)

	classroom := newClassroom("user-1")
	require.NoError(t, repo.Create(ctx, classroom))

	got, err := repo.Get(ctx, classroom.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Morning class", got.Name)
	assert.Equal(t, 3, got.Grade)
	assert.Equal(t, 2026, got.Year)
	assert.False(t, got.Created.IsZero())

	_, err = repo.Get(ctx, classroom.ID, "user-2")
	assert.ErrorIs(t, err, domain.ErrClassroomNotFound)
}

func TestClassroomNotesNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestClassroomRepo(t)

	classroom := newClassroom("user-1")
	require.NoError(t, repo.Create(ctx, classroom))

	now := time.Now().UTC()
	require.NoError(t, repo.AddNote(ctx, classroom.ID, domain.Note{Date: now, Title: "first", Content: "a"}))
	require.NoError(t, repo.AddNote(ctx, classroom.ID, domain.Note{Date: now, Title: "second", Content: "b"}))

	got, err := repo.Get(ctx, classroom.ID, "user-1")
	require.NoError(t, err)
	require.Len(t, got.Notes, 2)
	assert.Equal(t, "second", got.Notes[0].Title)
	assert.Equal(t, "first", got.Notes[1].Title)

	require.NoError(t, repo.RemoveNote(ctx, classroom.ID, got.Notes[0].ID))
	assert.ErrorIs(t, repo.RemoveNote(ctx, classroom.ID, 999), domain.ErrItemNotFound)
}

func TestActivityProcedureRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestClassroomRepo(t)

	classroom := newClassroom("user-1")
	require.NoError(t, repo.Create(ctx, classroom))

	require.NoError(t, repo.AddActivity(ctx, classroom.ID, domain.Activity{
		Date:         time.Now().UTC(),
		Type:         "warmup",
		Focus:        "listening",
		Aim:          "wake everyone up",
		Preparation:  "none",
		Level:        "beginner",
		Time:         "10m",
		Introduction: "quick round",
		Procedure:    []string{"stand up", "pair off", "go"},
	}))

	got, err := repo.Get(ctx, classroom.ID, "user-1")
	require.NoError(t, err)
	require.Len(t, got.Activities, 1)
	assert.Equal(t, []string{"stand up", "pair off", "go"}, got.Activities[0].Procedure)
	assert.Equal(t, "warmup", got.Activities[0].Type)
}

func TestReplaceGroups(t *testing.T) {
	ctx := context.Background()
	repo := newTestClassroomRepo(t)

	classroom := newClassroom("user-1")
	require.NoError(t, repo.Create(ctx, classroom))

	require.NoError(t, repo.ReplaceGroups(ctx, classroom.ID, []domain.Group{
		{Name: "red", Color: "#f00", Members: []domain.GroupMember{{StudentID: "s1", Name: "Ada"}}},
		{Name: "blue", Color: "#00f"},
	}))

	got, err := repo.Get(ctx, classroom.ID, "user-1")
	require.NoError(t, err)
	require.Len(t, got.Groups, 2)
	assert.Equal(t, "red", got.Groups[0].Name)
	require.Len(t, got.Groups[0].Members, 1)
	assert.Equal(t, "s1", got.Groups[0].Members[0].StudentID)

	// the whole set is swapped, not merged
	require.NoError(t, repo.ReplaceGroups(ctx, classroom.ID, []domain.Group{
		{Name: "green", Color: "#0f0"},
	}))
	got, err = repo.Get(ctx, classroom.ID, "user-1")
	require.NoError(t, err)
	require.Len(t, got.Groups, 1)
	assert.Equal(t, "green", got.Groups[0].Name)

	require.NoError(t, repo.ReplaceGroups(ctx, classroom.ID, nil))
	got, err = repo.Get(ctx, classroom.ID, "user-1")
	require.NoError(t, err)
	assert.Empty(t, got.Groups)
}

func TestClassroomDeleteCascades(t *testing.T) {
	ctx := context.Background()
	repo := newTestClassroomRepo(t)

	classroom := newClassroom("user-1")
	require.NoError(t, repo.Create(ctx, classroom))
	require.NoError(t, repo.AddNote(ctx, classroom.ID, domain.Note{Date: time.Now().UTC(), Title: "t", Content: "c"}))

	require.NoError(t, repo.Delete(ctx, classroom.ID, "user-1"))

	_, err := repo.Get(ctx, classroom.ID, "user-1")
	assert.ErrorIs(t, err, domain.ErrClassroomNotFound)

	var n int
	row := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM classroom_notes WHERE classroom_id = ?`, classroom.ID)
	require.NoError(t, row.Scan(&n))
	assert.Zero(t, n)
}
