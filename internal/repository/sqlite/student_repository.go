package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/saverio87/ng-classroom-manager-backend/internal/domain"
	"github.com/saverio87/ng-classroom-manager-backend/internal/repository"
)

const createStudentsSchema = `
CREATE TABLE IF NOT EXISTS students (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	classroom TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL,
	gender TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_students_user_id ON students(user_id);
CREATE TABLE IF NOT EXISTS student_contacts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	student_id TEXT NOT NULL,
	type TEXT NOT NULL DEFAULT '',
	value TEXT NOT NULL DEFAULT '',
	FOREIGN KEY(student_id) REFERENCES students(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_student_contacts_student_id ON student_contacts(student_id);
CREATE TABLE IF NOT EXISTS student_absences (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	student_id TEXT NOT NULL,
	date DATETIME NOT NULL,
	type TEXT NOT NULL,
	comment TEXT NOT NULL,
	FOREIGN KEY(student_id) REFERENCES students(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_student_absences_student_id ON student_absences(student_id);
CREATE TABLE IF NOT EXISTS student_feedback (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	student_id TEXT NOT NULL,
	date DATETIME NOT NULL,
	type TEXT NOT NULL,
	comment TEXT NOT NULL,
	FOREIGN KEY(student_id) REFERENCES students(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_student_feedback_student_id ON student_feedback(student_id);
`

type StudentRepository struct {
	db *sql.DB
}

func NewStudentRepository(db *sql.DB) repository.StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createStudentsSchema); err != nil {
		return fmt.Errorf("create students schema: %w", err)
	}
	return nil
}

func (r *StudentRepository) Create(ctx context.Context, student *domain.Student) error {
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO students (id, user_id, classroom, name, gender, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		student.ID,
		student.UserID,
		student.Classroom,
		student.Name,
		student.Gender,
		student.CreatedAt,
		student.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert student: %w", err)
	}

	for i := range student.ContactDetails {
		res, err := tx.ExecContext(ctx, `
INSERT INTO student_contacts (student_id, type, value)
VALUES (?, ?, ?)`,
			student.ID,
			student.ContactDetails[i].Type,
			student.ContactDetails[i].Value,
		)
		if err != nil {
			return fmt.Errorf("insert contact detail: %w", err)
		}
		if id, err := res.LastInsertId(); err == nil {
			student.ContactDetails[i].ID = id
		}
	}
	for i := range student.Absences {
		if err := insertStudentEntry(ctx, tx, "student_absences", student.ID, &student.Absences[i]); err != nil {
			return err
		}
	}
	for i := range student.Feedback {
		if err := insertStudentEntry(ctx, tx, "student_feedback", student.ID, &student.Feedback[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit student: %w", err)
	}
	return nil
}

func (r *StudentRepository) Get(ctx context.Context, id, userID string) (*domain.Student, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, classroom, name, gender, created_at, updated_at
FROM students
WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	var s domain.Student
	if err := row.Scan(&s.ID, &s.UserID, &s.Classroom, &s.Name, &s.Gender, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, fmt.Errorf("scan student: %w", err)
	}
	if err := r.loadChildren(ctx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StudentRepository) List(ctx context.Context, userID string) ([]domain.Student, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, classroom, name, gender, created_at, updated_at
FROM students
WHERE user_id = ?
ORDER BY name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var students []domain.Student
	for rows.Next() {
		var s domain.Student
		if err := rows.Scan(&s.ID, &s.UserID, &s.Classroom, &s.Name, &s.Gender, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}

	for i := range students {
		if err := r.loadChildren(ctx, &students[i]); err != nil {
			return nil, err
		}
	}
	return students, nil
}

func (r *StudentRepository) Update(ctx context.Context, student *domain.Student) error {
	student.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE students SET classroom = ?, name = ?, gender = ?, updated_at = ?
WHERE id = ? AND user_id = ?`,
		student.Classroom,
		student.Name,
		student.Gender,
		student.UpdatedAt,
		student.ID,
		student.UserID,
	)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrStudentNotFound
	}
	return nil
}

func (r *StudentRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM students
WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrStudentNotFound
	}
	return nil
}

// SetContactDetail updates the value of a contact slot; the type is only
// filled in when the slot never had one.
func (r *StudentRepository) SetContactDetail(ctx context.Context, studentID string, itemID int64, detailType, value string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE student_contacts
SET value = ?, type = CASE WHEN type = '' THEN ? ELSE type END
WHERE id = ? AND student_id = ?`,
		value,
		detailType,
		itemID,
		studentID,
	)
	if err != nil {
		return fmt.Errorf("set contact detail: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// ClearContactDetail blanks the value only; the three slots are fixed and
// never removed.
func (r *StudentRepository) ClearContactDetail(ctx context.Context, studentID string, itemID int64) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE student_contacts SET value = ''
WHERE id = ? AND student_id = ?`,
		itemID,
		studentID,
	)
	if err != nil {
		return fmt.Errorf("clear contact detail: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *StudentRepository) AddAbsence(ctx context.Context, studentID string, entry domain.StudentEntry) error {
	return r.addEntry(ctx, "student_absences", studentID, entry)
}

func (r *StudentRepository) RemoveAbsence(ctx context.Context, studentID string, itemID int64) error {
	return r.removeEntry(ctx, "student_absences", studentID, itemID)
}

func (r *StudentRepository) AddFeedback(ctx context.Context, studentID string, entry domain.StudentEntry) error {
	return r.addEntry(ctx, "student_feedback", studentID, entry)
}

func (r *StudentRepository) RemoveFeedback(ctx context.Context, studentID string, itemID int64) error {
	return r.removeEntry(ctx, "student_feedback", studentID, itemID)
}

func (r *StudentRepository) addEntry(ctx context.Context, table, studentID string, entry domain.StudentEntry) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO `+table+` (student_id, date, type, comment) VALUES (?, ?, ?, ?)`,
		studentID,
		entry.Date,
		entry.Type,
		entry.Comment,
	); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (r *StudentRepository) removeEntry(ctx context.Context, table, studentID string, itemID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE id = ? AND student_id = ?`,
		itemID,
		studentID,
	)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *StudentRepository) loadChildren(ctx context.Context, s *domain.Student) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, type, value FROM student_contacts
WHERE student_id = ?
ORDER BY id`,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("list contact details: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c domain.ContactDetail
		if err := rows.Scan(&c.ID, &c.Type, &c.Value); err != nil {
			return fmt.Errorf("scan contact detail: %w", err)
		}
		s.ContactDetails = append(s.ContactDetails, c)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate contact details: %w", err)
	}

	if s.Absences, err = r.listEntries(ctx, "student_absences", s.ID); err != nil {
		return err
	}
	if s.Feedback, err = r.listEntries(ctx, "student_feedback", s.ID); err != nil {
		return err
	}
	return nil
}

// listEntries returns newest-first, matching the prepend semantics of the
// add operations.
func (r *StudentRepository) listEntries(ctx context.Context, table, studentID string) ([]domain.StudentEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, type, comment FROM `+table+` WHERE student_id = ? ORDER BY id DESC`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var entries []domain.StudentEntry
	for rows.Next() {
		var e domain.StudentEntry
		if err := rows.Scan(&e.ID, &e.Date, &e.Type, &e.Comment); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return entries, nil
}

func insertStudentEntry(ctx context.Context, tx *sql.Tx, table, studentID string, entry *domain.StudentEntry) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO `+table+` (student_id, date, type, comment) VALUES (?, ?, ?, ?)`,
		studentID,
		entry.Date,
		entry.Type,
		entry.Comment,
	)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}
