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
	"github.com/saverio87/ng-classroom-manager-backend/internal/repository"
)

func newTestDB(t *testing.T) *StudentRepository {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewStudentRepository(db).(*StudentRepository)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func newStudent(userID string) *domain.Student {
	return &domain.Student{
		ID:             uuid.NewString(),
		UserID:         userID,
		Classroom:      "3B",
		Name:           "Ada",
		Gender:         "f",
		ContactDetails: domain.DefaultContactDetails(),
	}
}

func TestStudentCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)

	student := newStudent("user-1")
	require.NoError(t, repo.Create(ctx, student))

	got, err := repo.Get(ctx, student.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "3B", got.Classroom)

	// the three fixed contact slots come back in creation order
	require.Len(t, got.ContactDetails, 3)
	assert.Equal(t, "email", got.ContactDetails[0].Type)
	assert.Equal(t, "phone", got.ContactDetails[1].Type)
	assert.Equal(t, "wechat", got.ContactDetails[2].Type)
	for _, c := range got.ContactDetails {
		assert.NotZero(t, c.ID)
		assert.Empty(t, c.Value)
	}
}

func TestStudentGetScopedByUser(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)

	student := newStudent("user-1")
	require.NoError(t, repo.Create(ctx, student))

	_, err := repo.Get(ctx, student.ID, "user-2")
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)
}

func TestSetContactDetailFillsEmptyType(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)

	student := &domain.Student{
		ID:     uuid.NewString(),
		UserID: "user-1",
		Name:   "Ada",
		ContactDetails: []domain.ContactDetail{
			{Type: "", Value: ""},
		},
	}
	require.NoError(t, repo.Create(ctx, student))
	slot := student.ContactDetails[0].ID

	require.NoError(t, repo.SetContactDetail(ctx, student.ID, slot, "email", "ada@example.com"))

	got, err := repo.Get(ctx, student.ID, "user-1")
	require.NoError(t, err)
	require.Len(t, got.ContactDetails, 1)
	assert.Equal(t, "email", got.ContactDetails[0].Type)
	assert.Equal(t, "ada@example.com", got.ContactDetails[0].Value)

	// a slot keeps its type once set
	require.NoError(t, repo.SetContactDetail(ctx, student.ID, slot, "phone", "12345"))
	got, err = repo.Get(ctx, student.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "email", got.ContactDetails[0].Type)
	assert.Equal(t, "12345", got.ContactDetails[0].Value)
}

func TestClearContactDetailKeepsSlot(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)

	student := newStudent("user-1")
	require.NoError(t, repo.Create(ctx, student))
	slot := student.ContactDetails[0].ID

	require.NoError(t, repo.SetContactDetail(ctx, student.ID, slot, "email", "ada@example.com"))
	require.NoError(t, repo.ClearContactDetail(ctx, student.ID, slot))

	got, err := repo.Get(ctx, student.ID, "user-1")
	require.NoError(t, err)
	require.Len(t, got.ContactDetails, 3)
	assert.Equal(t, "email", got.ContactDetails[0].Type)
	assert.Empty(t, got.ContactDetails[0].Value)

	assert.ErrorIs(t, repo.ClearContactDetail(ctx, student.ID, 999), domain.ErrItemNotFound)
}

func TestStudentEntriesNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)

	student := newStudent("user-1")
	require.NoError(t, repo.Create(ctx, student))

	now := time.Now().UTC()
	require.NoError(t, repo.AddAbsence(ctx, student.ID, domain.StudentEntry{Date: now, Type: "sick", Comment: "first"}))
	require.NoError(t, repo.AddAbsence(ctx, student.ID, domain.StudentEntry{Date: now, Type: "sick", Comment: "second"}))

	got, err := repo.Get(ctx, student.ID, "user-1")
	require.NoError(t, err)
	require.Len(t, got.Absences, 2)
	assert.Equal(t, "second", got.Absences[0].Comment)
	assert.Equal(t, "first", got.Absences[1].Comment)

	require.NoError(t, repo.RemoveAbsence(ctx, student.ID, got.Absences[0].ID))
	got, err = repo.Get(ctx, student.ID, "user-1")
	require.NoError(t, err)
	require.Len(t, got.Absences, 1)
	assert.Equal(t, "first", got.Absences[0].Comment)

	assert.ErrorIs(t, repo.RemoveAbsence(ctx, student.ID, 999), domain.ErrItemNotFound)
}

func TestStudentDeleteCascades(t *testing.T) {
	ctx := context.Background()
	repo := newTestDB(t)

	student := newStudent("user-1")
	require.NoError(t, repo.Create(ctx, student))
	require.NoError(t, repo.AddFeedback(ctx, student.ID, domain.StudentEntry{
		Date: time.Now().UTC(), Type: "praise", Comment: "great work",
	}))

	require.NoError(t, repo.Delete(ctx, student.ID, "user-1"))

	_, err := repo.Get(ctx, student.ID, "user-1")
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)

	var n int
	row := repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM student_feedback WHERE student_id = ?`, student.ID)
	require.NoError(t, row.Scan(&n))
	assert.Zero(t, n)
}

var _ repository.StudentRepository = (*StudentRepository)(nil)
