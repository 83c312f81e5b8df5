package service

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saverio87/ng-classroom-manager-backend/internal/domain"
	"github.com/saverio87/ng-classroom-manager-backend/internal/repository/sqlite"
	"github.com/saverio87/ng-classroom-manager-backend/internal/storage"
)

type memoryStore struct {
	objects map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (m *memoryStore) PutObject(_ context.Context, bucket, key, _ string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.objects[key] = data
	return "s3://" + bucket + "/" + key, nil
}

func (m *memoryStore) ListObjects(_ context.Context, _, prefix string) ([]storage.ObjectInfo, error) {
	var infos []storage.ObjectInfo
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return infos, nil
}

func (m *memoryStore) DeletePrefix(_ context.Context, _, prefix string) error {
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			delete(m.objects, key)
		}
	}
	return nil
}

func (m *memoryStore) GetObjectURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://" + bucket + ".example.com/" + key + "?signed", nil
}

func newTestExportService(t *testing.T, store storage.Service) (ExportService, StudentService, ClassroomService) {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	studentRepo := sqlite.NewStudentRepository(db)
	classroomRepo := sqlite.NewClassroomRepository(db)
	require.NoError(t, studentRepo.Init(ctx))
	require.NoError(t, classroomRepo.Init(ctx))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	students := NewStudentService(studentRepo)
	classrooms := NewClassroomService(classroomRepo)
	exports := NewExportService(students, classrooms, store, "test-bucket", "exports", logger)
	return exports, students, classrooms
}

func TestCreateExportSnapshotsUserData(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	exports, students, classrooms := newTestExportService(t, store)

	_, err := students.Create(ctx, "user-1", StudentInput{Name: "Ada", Classroom: "3B"})
	require.NoError(t, err)
	_, err = classrooms.Create(ctx, "user-1", ClassroomInput{Name: "Morning class", Grade: 3, Year: 2026})
	require.NoError(t, err)

	result, err := exports.CreateExport(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Key, "exports/user-1/"), result.Key)
	assert.Contains(t, result.Location, result.Key)

	var snapshot struct {
		Students   []map[string]any `json:"students"`
		Classrooms []map[string]any `json:"classrooms"`
	}
	require.NoError(t, json.Unmarshal(store.objects[result.Key], &snapshot))
	require.Len(t, snapshot.Students, 1)
	assert.Equal(t, "Ada", snapshot.Students[0]["name"])
	require.Len(t, snapshot.Classrooms, 1)
	assert.Equal(t, "Morning class", snapshot.Classrooms[0]["name"])
}

func TestListExportsScopedToUser(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	exports, students, _ := newTestExportService(t, store)

	_, err := students.Create(ctx, "user-1", StudentInput{Name: "Ada"})
	require.NoError(t, err)
	_, err = exports.CreateExport(ctx, "user-1")
	require.NoError(t, err)
	_, err = exports.CreateExport(ctx, "user-2")
	require.NoError(t, err)

	infos, err := exports.ListExports(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.True(t, strings.HasPrefix(infos[0].Key, "exports/user-1/"))
}

func TestExportURLRejectsForeignKeys(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	exports, _, _ := newTestExportService(t, store)

	_, err := exports.ExportURL(ctx, "user-1", "exports/user-2/20260101T000000Z.json")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	url, err := exports.ExportURL(ctx, "user-1", "exports/user-1/20260101T000000Z.json")
	require.NoError(t, err)
	assert.Contains(t, url, "exports/user-1/")
}

func TestDeleteExports(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	exports, _, _ := newTestExportService(t, store)

	_, err := exports.CreateExport(ctx, "user-1")
	require.NoError(t, err)
	_, err = exports.CreateExport(ctx, "user-2")
	require.NoError(t, err)

	require.NoError(t, exports.DeleteExports(ctx, "user-1"))

	infos, err := exports.ListExports(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, infos)

	infos, err = exports.ListExports(ctx, "user-2")
	require.NoError(t, err)
	require.Len(t, infos, 1)
}