package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saverio87/ng-classroom-manager-backend/internal/domain"
	"github.com/saverio87/ng-classroom-manager-backend/internal/repository/sqlite"
)

func newTestStudentService(t *testing.T) StudentService {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := sqlite.NewStudentRepository(db)
	require.NoError(t, repo.Init(context.Background()))
	return NewStudentService(repo)
}

func TestStudentCreateDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newTestStudentService(t)

	student, err := svc.Create(ctx, "user-1", StudentInput{Name: "  Ada  ", Classroom: "3B"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", student.Name)
	assert.Len(t, student.ContactDetails, 3)

	_, err = svc.Create(ctx, "user-1", StudentInput{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrNameRequired)
}

func TestStudentCreateManyCollectsWarnings(t *testing.T) {
	ctx := context.Background()
	svc := newTestStudentService(t)

	saved, warnings, err := svc.CreateMany(ctx, "user-1", []StudentInput{
		{Name: "Ada"},
		{Name: ""},
		{Name: "Grace"},
	})
	require.NoError(t, err)
	assert.Len(t, saved, 2)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "student 1")
}

func TestStudentPartialUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newTestStudentService(t)

	student, err := svc.Create(ctx, "user-1", StudentInput{Name: "Ada", Gender: "f", Classroom: "3B"})
	require.NoError(t, err)

	name := "Grace"
	updated, err := svc.Update(ctx, student.ID, "user-1", StudentUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Grace", updated.Name)
	assert.Equal(t, "f", updated.Gender)
	assert.Equal(t, "3B", updated.Classroom)

	blank := "  "
	_, err = svc.Update(ctx, student.ID, "user-1", StudentUpdate{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrNameRequired)
}

func TestStudentEntryDateDefaultsToNow(t *testing.T) {
	ctx := context.Background()
	svc := newTestStudentService(t)

	student, err := svc.Create(ctx, "user-1", StudentInput{Name: "Ada"})
	require.NoError(t, err)

	got, err := svc.AddAbsence(ctx, student.ID, "user-1", domain.StudentEntry{Type: "sick", Comment: "flu"})
	require.NoError(t, err)
	require.Len(t, got.Absences, 1)
	assert.WithinDuration(t, time.Now(), got.Absences[0].Date, 5*time.Second)
}

func TestStudentChildOpChecksOwnership(t *testing.T) {
	ctx := context.Background()
	svc := newTestStudentService(t)

	student, err := svc.Create(ctx, "user-1", StudentInput{Name: "Ada"})
	require.NoError(t, err)

	_, err = svc.AddAbsence(ctx, student.ID, "user-2", domain.StudentEntry{Type: "sick", Comment: "flu"})
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)
}
