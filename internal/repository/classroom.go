package repository

import (
	"context"

	"github.com/saverio87/ng-classroom-manager-backend/internal/domain"
)

// ClassroomRepository exposes persistence operations for Classroom aggregates.
type ClassroomRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, classroom *domain.Classroom) error
	Get(ctx context.Context, id, userID string) (*domain.Classroom, error)
	List(ctx context.Context, userID string) ([]domain.Classroom, error)
	Delete(ctx context.Context, id, userID string) error

	AddNote(ctx context.Context, classroomID string, note domain.Note) error
	RemoveNote(ctx context.Context, classroomID string, itemID int64) error
	AddActivity(ctx context.Context, classroomID string, activity domain.Activity) error
	RemoveActivity(ctx context.Context, classroomID string, itemID int64) error
	ReplaceGroups(ctx context.Context, classroomID string, groups []domain.Group) error
}
