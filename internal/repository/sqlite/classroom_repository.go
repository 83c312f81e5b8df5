package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/saverio87/ng-classroom-manager-backend/internal/domain"
	"github.com/saverio87/ng-classroom-manager-backend/internal/repository"
)

const createClassroomsSchema = `
CREATE TABLE IF NOT EXISTS classrooms (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	grade INTEGER NOT NULL,
	year INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_classrooms_user_id ON classrooms(user_id);
CREATE TABLE IF NOT EXISTS classroom_notes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	classroom_id TEXT NOT NULL,
	date DATETIME NOT NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	FOREIGN KEY(classroom_id) REFERENCES classrooms(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_classroom_notes_classroom_id ON classroom_notes(classroom_id);
CREATE TABLE IF NOT EXISTS classroom_activities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	classroom_id TEXT NOT NULL,
	date DATETIME NOT NULL,
	type TEXT NOT NULL DEFAULT '',
	focus TEXT NOT NULL DEFAULT '',
	aim TEXT NOT NULL DEFAULT '',
	preparation TEXT NOT NULL,
	level TEXT NOT NULL DEFAULT '',
	time TEXT NOT NULL DEFAULT '',
	introduction TEXT NOT NULL,
	procedure TEXT NOT NULL DEFAULT '[]',
	FOREIGN KEY(classroom_id) REFERENCES classrooms(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_classroom_activities_classroom_id ON classroom_activities(classroom_id);
CREATE TABLE IF NOT EXISTS classroom_groups (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	classroom_id TEXT NOT NULL,
	name TEXT NOT NULL,
	color TEXT NOT NULL,
	members TEXT NOT NULL DEFAULT '[]',
	FOREIGN KEY(classroom_id) REFERENCES classrooms(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_classroom_groups_classroom_id ON classroom_groups(classroom_id);
`

type ClassroomRepository struct {
	db *sql.DB
}

func NewClassroomRepository(db *sql.DB) repository.ClassroomRepository {
	return &ClassroomRepository{db: db}
}

func (r *ClassroomRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createClassroomsSchema); err != nil {
		return fmt.Errorf("create classrooms schema: %w", err)
	}
	return nil
}

func (r *ClassroomRepository) Create(ctx context.Context, classroom *domain.Classroom) error {
	if classroom.Created.IsZero() {
		classroom.Created = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO classrooms (id, user_id, name, grade, year, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		classroom.ID,
		classroom.UserID,
		classroom.Name,
		classroom.Grade,
		classroom.Year,
		classroom.Created,
	); err != nil {
		return fmt.Errorf("insert classroom: %w", err)
	}

	for i := range classroom.Notes {
		if err := insertNote(ctx, tx, classroom.ID, &classroom.Notes[i]); err != nil {
			return err
		}
	}
	for i := range classroom.Activities {
		if err := insertActivity(ctx, tx, classroom.ID, &classroom.Activities[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit classroom: %w", err)
	}
	return nil
}

func (r *ClassroomRepository) Get(ctx context.Context, id, userID string) (*domain.Classroom, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, name, grade, year, created_at
FROM classrooms
WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	var c domain.Classroom
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Grade, &c.Year, &c.Created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClassroomNotFound
		}
		return nil, fmt.Errorf("scan classroom: %w", err)
	}
	if err := r.loadChildren(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClassroomRepository) List(ctx context.Context, userID string) ([]domain.Classroom, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, name, grade, year, created_at
FROM classrooms
WHERE user_id = ?
ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	defer rows.Close()

	var classrooms []domain.Classroom
	for rows.Next() {
		var c domain.Classroom
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Grade, &c.Year, &c.Created); err != nil {
			return nil, fmt.Errorf("scan classroom: %w", err)
		}
		classrooms = append(classrooms, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate classrooms: %w", err)
	}

	for i := range classrooms {
		if err := r.loadChildren(ctx, &classrooms[i]); err != nil {
			return nil, err
		}
	}
	return classrooms, nil
}

func (r *ClassroomRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM classrooms
WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete classroom: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrClassroomNotFound
	}
	return nil
}

func (r *ClassroomRepository) AddNote(ctx context.Context, classroomID string, note domain.Note) error {
	if _, err := r.db.ExecContext(ctx, `
INSERT INTO classroom_notes (classroom_id, date, title, content)
VALUES (?, ?, ?, ?)`,
		classroomID,
		note.Date,
		note.Title,
		note.Content,
	); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (r *ClassroomRepository) RemoveNote(ctx context.Context, classroomID string, itemID int64) error {
	return r.removeChild(ctx, "classroom_notes", classroomID, itemID)
}

func (r *ClassroomRepository) AddActivity(ctx context.Context, classroomID string, activity domain.Activity) error {
	procedure, err := json.Marshal(activity.Procedure)
	if err != nil {
		return fmt.Errorf("marshal procedure: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `
INSERT INTO classroom_activities (classroom_id, date, type, focus, aim, preparation, level, time, introduction, procedure)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		classroomID,
		activity.Date,
		activity.Type,
		activity.Focus,
		activity.Aim,
		activity.Preparation,
		activity.Level,
		activity.Time,
		activity.Introduction,
		string(procedure),
	); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *ClassroomRepository) RemoveActivity(ctx context.Context, classroomID string, itemID int64) error {
	return r.removeChild(ctx, "classroom_activities", classroomID, itemID)
}

// ReplaceGroups swaps the whole group set in one transaction; the caller
// always sends the complete desired state.
func (r *ClassroomRepository) ReplaceGroups(ctx context.Context, classroomID string, groups []domain.Group) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM classroom_groups WHERE classroom_id = ?`, classroomID); err != nil {
		return fmt.Errorf("clear groups: %w", err)
	}
	for i := range groups {
		members, err := json.Marshal(groups[i].Members)
		if err != nil {
			return fmt.Errorf("marshal group members: %w", err)
		}
		res, err := tx.ExecContext(ctx, `
INSERT INTO classroom_groups (classroom_id, name, color, members)
VALUES (?, ?, ?, ?)`,
			classroomID,
			groups[i].Name,
			groups[i].Color,
			string(members),
		)
		if err != nil {
			return fmt.Errorf("insert group: %w", err)
		}
		if id, err := res.LastInsertId(); err == nil {
			groups[i].ID = id
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit groups: %w", err)
	}
	return nil
}

func (r *ClassroomRepository) removeChild(ctx context.Context, table, classroomID string, itemID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE id = ? AND classroom_id = ?`,
		itemID,
		classroomID,
	)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *ClassroomRepository) loadChildren(ctx context.Context, c *domain.Classroom) error {
	noteRows, err := r.db.QueryContext(ctx, `
SELECT id, date, title, content FROM classroom_notes
WHERE classroom_id = ?
ORDER BY id DESC`,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("list notes: %w", err)
	}
	defer noteRows.Close()
	for noteRows.Next() {
		var n domain.Note
		if err := noteRows.Scan(&n.ID, &n.Date, &n.Title, &n.Content); err != nil {
			return fmt.Errorf("scan note: %w", err)
		}
		c.Notes = append(c.Notes, n)
	}
	if err := noteRows.Err(); err != nil {
		return fmt.Errorf("iterate notes: %w", err)
	}

	activityRows, err := r.db.QueryContext(ctx, `
SELECT id, date, type, focus, aim, preparation, level, time, introduction, procedure
FROM classroom_activities
WHERE classroom_id = ?
ORDER BY id DESC`,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("list activities: %w", err)
	}
	defer activityRows.Close()
	for activityRows.Next() {
		var a domain.Activity
		var procedure string
		if err := activityRows.Scan(&a.ID, &a.Date, &a.Type, &a.Focus, &a.Aim, &a.Preparation, &a.Level, &a.Time, &a.Introduction, &procedure); err != nil {
			return fmt.Errorf("scan activity: %w", err)
		}
		if err := json.Unmarshal([]byte(procedure), &a.Procedure); err != nil {
			return fmt.Errorf("unmarshal procedure: %w", err)
		}
		c.Activities = append(c.Activities, a)
	}
	if err := activityRows.Err(); err != nil {
		return fmt.Errorf("iterate activities: %w", err)
	}

	groupRows, err := r.db.QueryContext(ctx, `
SELECT id, name, color, members FROM classroom_groups
WHERE classroom_id = ?
ORDER BY id`,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("list groups: %w", err)
	}
	defer groupRows.Close()
	for groupRows.Next() {
		var g domain.Group
		var members string
		if err := groupRows.Scan(&g.ID, &g.Name, &g.Color, &members); err != nil {
			return fmt.Errorf("scan group: %w", err)
		}
		if err := json.Unmarshal([]byte(members), &g.Members); err != nil {
			return fmt.Errorf("unmarshal group members: %w", err)
		}
		c.Groups = append(c.Groups, g)
	}
	if err := groupRows.Err(); err != nil {
		return fmt.Errorf("iterate groups: %w", err)
	}
	return nil
}

func insertNote(ctx context.Context, tx *sql.Tx, classroomID string, note *domain.Note) error {
	res, err := tx.ExecContext(ctx, `
INSERT INTO classroom_notes (classroom_id, date, title, content)
VALUES (?, ?, ?, ?)`,
		classroomID,
		note.Date,
		note.Title,
		note.Content,
	)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		note.ID = id
	}
	return nil
}

func insertActivity(ctx context.Context, tx *sql.Tx, classroomID string, activity *domain.Activity) error {
	procedure, err := json.Marshal(activity.Procedure)
	if err != nil {
		return fmt.Errorf("marshal procedure: %w", err)
	}
	res, err := tx.ExecContext(ctx, `
INSERT INTO classroom_activities (classroom_id, date, type, focus, aim, preparation, level, time, introduction, procedure)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		classroomID,
		activity.Date,
		activity.Type,
		activity.Focus,
		activity.Aim,
		activity.Preparation,
		activity.Level,
		activity.Time,
		activity.Introduction,
		string(procedure),
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		activity.ID = id
	}
	return nil
}
