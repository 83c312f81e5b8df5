package domain

import "time"

// Student is a pupil record owned by a single user.
type Student struct {
	ID             string
	UserID         string
	Classroom      string
	Name           string
	Gender         string
	ContactDetails []ContactDetail
	Absences       []StudentEntry
	Feedback       []StudentEntry
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ContactDetail is one of the fixed contact slots created with every student.
type ContactDetail struct {
	ID    int64
	Type  string
	Value string
}

// StudentEntry is a dated absence or feedback record.
type StudentEntry struct {
	ID      int64
	Date    time.Time
	Type    string
	Comment string
}

// DefaultContactDetails returns the three slots assigned on creation.
func DefaultContactDetails() []ContactDetail {
	return []ContactDetail{
		{Type: "email"},
		{Type: "phone"},
		{Type: "wechat"},
	}
}
