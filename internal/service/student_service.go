package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saverio87/ng-classroom-manager-backend/internal/domain"
	"github.com/saverio87/ng-classroom-manager-backend/internal/repository"
)

// StudentInput carries the caller-supplied fields of a new student.
type StudentInput struct {
	Name      string
	Gender    string
	Classroom string
	Absences  []domain.StudentEntry
	Feedback  []domain.StudentEntry
}

// StudentUpdate carries a partial update; nil fields are left untouched.
type StudentUpdate struct {
	Name      *string
	Gender    *string
	Classroom *string
}

// StudentService coordinates student record operations. Mutating child
// operations return the refreshed student so handlers can echo the full
// record back.
type StudentService interface {
	Create(ctx context.Context, userID string, input StudentInput) (*domain.Student, error)
	CreateMany(ctx context.Context, userID string, inputs []StudentInput) ([]domain.Student, []string, error)
	Get(ctx context.Context, id, userID string) (*domain.Student, error)
	List(ctx context.Context, userID string) ([]domain.Student, error)
	Update(ctx context.Context, id, userID string, update StudentUpdate) (*domain.Student, error)
	Delete(ctx context.Context, id, userID string) (*domain.Student, error)

	SetContactDetail(ctx context.Context, id, userID string, itemID int64, detailType, value string) (*domain.Student, error)
	ClearContactDetail(ctx context.Context, id, userID string, itemID int64) (*domain.Student, error)
	AddAbsence(ctx context.Context, id, userID string, entry domain.StudentEntry) (*domain.Student, error)
	RemoveAbsence(ctx context.Context, id, userID string, itemID int64) (*domain.Student, error)
	AddFeedback(ctx context.Context, id, userID string, entry domain.StudentEntry) (*domain.Student, error)
	RemoveFeedback(ctx context.Context, id, userID string, itemID int64) (*domain.Student, error)
}

type studentService struct {
	students repository.StudentRepository
}

func NewStudentService(students repository.StudentRepository) StudentService {
	return &studentService{students: students}
}

func (s *studentService) Create(ctx context.Context, userID string, input StudentInput) (*domain.Student, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	student := &domain.Student{
		ID:             uuid.NewString(),
		UserID:         userID,
		Classroom:      input.Classroom,
		Name:           name,
		Gender:         input.Gender,
		ContactDetails: domain.DefaultContactDetails(),
		Absences:       normalizeEntries(input.Absences),
		Feedback:       normalizeEntries(input.Feedback),
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// CreateMany saves what it can; rows that fail validation or persistence are
// reported as warnings alongside the saved subset.
func (s *studentService) CreateMany(ctx context.Context, userID string, inputs []StudentInput) ([]domain.Student, []string, error) {
	var saved []domain.Student
	var warnings []string
	for i, input := range inputs {
		student, err := s.Create(ctx, userID, input)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("student %d (%s): %v", i, input.Name, err))
			continue
		}
		saved = append(saved, *student)
	}
	return saved, warnings, nil
}

func (s *studentService) Get(ctx context.Context, id, userID string) (*domain.Student, error) {
	return s.students.Get(ctx, id, userID)
}

func (s *studentService) List(ctx context.Context, userID string) ([]domain.Student, error) {
	return s.students.List(ctx, userID)
}

func (s *studentService) Update(ctx context.Context, id, userID string, update StudentUpdate) (*domain.Student, error) {
	student, err := s.students.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, domain.ErrNameRequired
		}
		student.Name = name
	}
	if update.Gender != nil {
		student.Gender = *update.Gender
	}
	if update.Classroom != nil {
		student.Classroom = *update.Classroom
	}

	if err := s.students.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *studentService) Delete(ctx context.Context, id, userID string) (*domain.Student, error) {
	student, err := s.students.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.students.Delete(ctx, id, userID); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *studentService) SetContactDetail(ctx context.Context, id, userID string, itemID int64, detailType, value string) (*domain.Student, error) {
	return s.childOp(ctx, id, userID, func(studentID string) error {
		return s.students.SetContactDetail(ctx, studentID, itemID, detailType, value)
	})
}

func (s *studentService) ClearContactDetail(ctx context.Context, id, userID string, itemID int64) (*domain.Student, error) {
	return s.childOp(ctx, id, userID, func(studentID string) error {
		return s.students.ClearContactDetail(ctx, studentID, itemID)
	})
}

func (s *studentService) AddAbsence(ctx context.Context, id, userID string, entry domain.StudentEntry) (*domain.Student, error) {
	return s.childOp(ctx, id, userID, func(studentID string) error {
		return s.students.AddAbsence(ctx, studentID, normalizeEntry(entry))
	})
}

func (s *studentService) RemoveAbsence(ctx context.Context, id, userID string, itemID int64) (*domain.Student, error) {
	return s.childOp(ctx, id, userID, func(studentID string) error {
		return s.students.RemoveAbsence(ctx, studentID, itemID)
	})
}

func (s *studentService) AddFeedback(ctx context.Context, id, userID string, entry domain.StudentEntry) (*domain.Student, error) {
	return s.childOp(ctx, id, userID, func(studentID string) error {
		return s.students.AddFeedback(ctx, studentID, normalizeEntry(entry))
	})
}

func (s *studentService) RemoveFeedback(ctx context.Context, id, userID string, itemID int64) (*domain.Student, error) {
	return s.childOp(ctx, id, userID, func(studentID string) error {
		return s.students.RemoveFeedback(ctx, studentID, itemID)
	})
}

// childOp verifies ownership, applies the mutation and re-reads the record.
func (s *studentService) childOp(ctx context.Context, id, userID string, op func(studentID string) error) (*domain.Student, error) {
	if _, err := s.students.Get(ctx, id, userID); err != nil {
		return nil, err
	}
	if err := op(id); err != nil {
		return nil, err
	}
	return s.students.Get(ctx, id, userID)
}

func normalizeEntry(entry domain.StudentEntry) domain.StudentEntry {
	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}
	return entry
}

func normalizeEntries(entries []domain.StudentEntry) []domain.StudentEntry {
	for i := range entries {
		entries[i] = normalizeEntry(entries[i])
	}
	return entries
}
