package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saverio87/ng-classroom-manager-backend/internal/domain"
	"github.com/saverio87/ng-classroom-manager-backend/internal/repository"
)

// ClassroomInput carries the caller-supplied fields of a new classroom.
type ClassroomInput struct {
	Name       string
	Grade      int
	Year       int
	Notes      []domain.Note
	Activities []domain.Activity
}

// ClassroomService coordinates classroom record operations.
type ClassroomService interface {
	Create(ctx context.Context, userID string, input ClassroomInput) (*domain.Classroom, error)
	Get(ctx context.Context, id, userID string) (*domain.Classroom, error)
	List(ctx context.Context, userID string) ([]domain.Classroom, error)
	Delete(ctx context.Context, id, userID string) (*domain.Classroom, error)

	AddNote(ctx context.Context, id, userID string, note domain.Note) (*domain.Classroom, error)
	RemoveNote(ctx context.Context, id, userID string, itemID int64) (*domain.Classroom, error)
	AddActivity(ctx context.Context, id, userID string, activity domain.Activity) (*domain.Classroom, error)
	RemoveActivity(ctx context.Context, id, userID string, itemID int64) (*domain.Classroom, error)
	ReplaceGroups(ctx context.Context, id, userID string, groups []domain.Group) (*domain.Classroom, error)
}

type classroomService struct {
	classrooms repository.ClassroomRepository
}

func NewClassroomService(classrooms repository.ClassroomRepository) ClassroomService {
	return &classroomService{classrooms: classrooms}
}

func (s *classroomService) Create(ctx context.Context, userID string, input ClassroomInput) (*domain.Classroom, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	classroom := &domain.Classroom{
		ID:         uuid.NewString(),
		UserID:     userID,
		Name:       name,
		Grade:      input.Grade,
		Year:       input.Year,
		Created:    time.Now().UTC(),
		Notes:      input.Notes,
		Activities: input.Activities,
	}
	for i := range classroom.Notes {
		if classroom.Notes[i].Date.IsZero() {
			classroom.Notes[i].Date = time.Now().UTC()
		}
	}
	for i := range classroom.Activities {
		if classroom.Activities[i].Date.IsZero() {
			classroom.Activities[i].Date = time.Now().UTC()
		}
	}

	if err := s.classrooms.Create(ctx, classroom); err != nil {
		return nil, err
	}
	return classroom, nil
}

func (s *classroomService) Get(ctx context.Context, id, userID string) (*domain.Classroom, error) {
	return s.classrooms.Get(ctx, id, userID)
}

func (s *classroomService) List(ctx context.Context, userID string) ([]domain.Classroom, error) {
	return s.classrooms.List(ctx, userID)
}

func (s *classroomService) Delete(ctx context.Context, id, userID string) (*domain.Classroom, error) {
	classroom, err := s.classrooms.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.classrooms.Delete(ctx, id, userID); err != nil {
		return nil, err
	}
	return classroom, nil
}

func (s *classroomService) AddNote(ctx context.Context, id, userID string, note domain.Note) (*domain.Classroom, error) {
	if strings.TrimSpace(note.Title) == "" || strings.TrimSpace(note.Content) == "" {
		return nil, domain.ErrNoteInvalid
	}
	if note.Date.IsZero() {
		note.Date = time.Now().UTC()
	}
	return s.childOp(ctx, id, userID, func(classroomID string) error {
		return s.classrooms.AddNote(ctx, classroomID, note)
	})
}

func (s *classroomService) RemoveNote(ctx context.Context, id, userID string, itemID int64) (*domain.Classroom, error) {
	return s.childOp(ctx, id, userID, func(classroomID string) error {
		return s.classrooms.RemoveNote(ctx, classroomID, itemID)
	})
}

func (s *classroomService) AddActivity(ctx context.Context, id, userID string, activity domain.Activity) (*domain.Classroom, error) {
	if strings.TrimSpace(activity.Preparation) == "" || strings.TrimSpace(activity.Introduction) == "" {
		return nil, domain.ErrActivityInvalid
	}
	if activity.Date.IsZero() {
		activity.Date = time.Now().UTC()
	}
	return s.childOp(ctx, id, userID, func(classroomID string) error {
		return s.classrooms.AddActivity(ctx, classroomID, activity)
	})
}

func (s *classroomService) RemoveActivity(ctx context.Context, id, userID string, itemID int64) (*domain.Classroom, error) {
	return s.childOp(ctx, id, userID, func(classroomID string) error {
		return s.classrooms.RemoveActivity(ctx, classroomID, itemID)
	})
}

// ReplaceGroups is total: the submitted set becomes the classroom's groups.
func (s *classroomService) ReplaceGroups(ctx context.Context, id, userID string, groups []domain.Group) (*domain.Classroom, error) {
	for _, g := range groups {
		if strings.TrimSpace(g.Name) == "" || strings.TrimSpace(g.Color) == "" {
			return nil, domain.ErrGroupInvalid
		}
	}
	return s.childOp(ctx, id, userID, func(classroomID string) error {
		return s.classrooms.ReplaceGroups(ctx, classroomID, groups)
	})
}

func (s *classroomService) childOp(ctx context.Context, id, userID string, op func(classroomID string) error) (*domain.Classroom, error) {
	if _, err := s.classrooms.Get(ctx, id, userID); err != nil {
		return nil, err
	}
	if err := op(id); err != nil {
		return nil, err
	}
	return s.classrooms.Get(ctx, id, userID)
}
