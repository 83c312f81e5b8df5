package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/saverio87/ng-classroom-manager-backend/internal/domain"
	"github.com/saverio87/ng-classroom-manager-backend/internal/storage"
)

// ExportResult describes a stored snapshot.
type ExportResult struct {
	Key      string
	Location string
}

// ExportService snapshots a user's students and classrooms into object
// storage, one JSON object per export.
type ExportService interface {
	CreateExport(ctx context.Context, userID string) (*ExportResult, error)
	ListExports(ctx context.Context, userID string) ([]storage.ObjectInfo, error)
	ExportURL(ctx context.Context, userID, key string) (string, error)
	DeleteExports(ctx context.Context, userID string) error
}

type exportService struct {
	students   StudentService
	classrooms ClassroomService
	store      storage.Service
	bucket     string
	keyPrefix  string
	logger     *logrus.Logger
}

func NewExportService(students StudentService, classrooms ClassroomService, store storage.Service, bucket, keyPrefix string, logger *logrus.Logger) ExportService {
	return &exportService{
		students:   students,
		classrooms: classrooms,
		store:      store,
		bucket:     bucket,
		keyPrefix:  strings.Trim(keyPrefix, "/"),
		logger:     logger,
	}
}

type exportSnapshot struct {
	ExportedAt time.Time         `json:"exportedAt"`
	Students   []studentExport   `json:"students"`
	Classrooms []classroomExport `json:"classrooms"`
}

type studentExport struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Gender         string                 `json:"gender,omitempty"`
	Classroom      string                 `json:"classroom,omitempty"`
	ContactDetails []domain.ContactDetail `json:"contactDetails"`
	Absences       []domain.StudentEntry  `json:"absences"`
	Feedback       []domain.StudentEntry  `json:"feedback"`
}

type classroomExport struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Grade      int               `json:"grade"`
	Year       int               `json:"year"`
	Created    time.Time         `json:"created"`
	Notes      []domain.Note     `json:"notes"`
	Activities []domain.Activity `json:"activities"`
	Groups     []domain.Group    `json:"groups"`
}

func (s *exportService) CreateExport(ctx context.Context, userID string) (*ExportResult, error) {
	students, err := s.students.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list students for export: %w", err)
	}
	classrooms, err := s.classrooms.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list classrooms for export: %w", err)
	}

	now := time.Now().UTC()
	snapshot := exportSnapshot{
		ExportedAt: now,
		Students:   make([]studentExport, 0, len(students)),
		Classrooms: make([]classroomExport, 0, len(classrooms)),
	}
	for _, st := range students {
		snapshot.Students = append(snapshot.Students, studentExport{
			ID:             st.ID,
			Name:           st.Name,
			Gender:         st.Gender,
			Classroom:      st.Classroom,
			ContactDetails: st.ContactDetails,
			Absences:       st.Absences,
			Feedback:       st.Feedback,
		})
	}
	for _, cr := range classrooms {
		snapshot.Classrooms = append(snapshot.Classrooms, classroomExport{
			ID:         cr.ID,
			Name:       cr.Name,
			Grade:      cr.Grade,
			Year:       cr.Year,
			Created:    cr.Created,
			Notes:      cr.Notes,
			Activities: cr.Activities,
			Groups:     cr.Groups,
		})
	}

	body, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}

	key := fmt.Sprintf("%s/%s.json", s.userPrefix(userID), now.Format("20060102T150405Z"))
	location, err := s.store.PutObject(ctx, s.bucket, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	s.logger.Infof("exported %d students and %d classrooms to %s", len(students), len(classrooms), location)
	return &ExportResult{Key: key, Location: location}, nil
}

func (s *exportService) ListExports(ctx context.Context, userID string) ([]storage.ObjectInfo, error) {
	return s.store.ListObjects(ctx, s.bucket, s.userPrefix(userID)+"/")
}

// ExportURL issues a presigned download link; keys outside the caller's
// prefix are reported as not found.
func (s *exportService) ExportURL(ctx context.Context, userID, key string) (string, error) {
	if !strings.HasPrefix(key, s.userPrefix(userID)+"/") {
		return "", domain.ErrItemNotFound
	}
	return s.store.GetObjectURL(ctx, s.bucket, key, 15*time.Minute)
}

func (s *exportService) DeleteExports(ctx context.Context, userID string) error {
	return s.store.DeletePrefix(ctx, s.bucket, s.userPrefix(userID)+"/")
}

func (s *exportService) userPrefix(userID string) string {
	if s.keyPrefix == "" {
		return userID
	}
	return s.keyPrefix + "/" + userID
}
