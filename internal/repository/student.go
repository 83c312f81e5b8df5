package repository

import (
	"context"

	"github.com/saverio87/ng-classroom-manager-backend/internal/domain"
)

// StudentRepository exposes persistence operations for Student aggregates.
// Every read and write is scoped by the owning user id.
type StudentRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, student *domain.Student) error
	Get(ctx context.Context, id, userID string) (*domain.Student, error)
	List(ctx context.Context, userID string) ([]domain.Student, error)
	Update(ctx context.Context, student *domain.Student) error
	Delete(ctx context.Context, id, userID string) error

	SetContactDetail(ctx context.Context, studentID string, itemID int64, detailType, value string) error
	ClearContactDetail(ctx context.Context, studentID string, itemID int64) error
	AddAbsence(ctx context.Context, studentID string, entry domain.StudentEntry) error
	RemoveAbsence(ctx context.Context, studentID string, itemID int64) error
	AddFeedback(ctx context.Context, studentID string, entry domain.StudentEntry) error
	RemoveFeedback(ctx context.Context, studentID string, itemID int64) error
}
