package domain

import "time"

// Classroom groups students for one user, together with lesson notes,
// planned activities and ad-hoc student groupings.
type Classroom struct {
	ID         string
	UserID     string
	Name       string
	Grade      int
	Year       int
	Created    time.Time
	Notes      []Note
	Activities []Activity
	Groups     []Group
}

type Note struct {
	ID      int64
	Date    time.Time
	Title   string
	Content string
}

// Activity is a lesson plan entry; Procedure is an ordered list of steps.
type Activity struct {
	ID           int64
	Date         time.Time
	Type         string
	Focus        string
	Aim          string
	Preparation  string
	Level        string
	Time         string
	Introduction string
	Procedure    []string
}

// Group is a named subset of a classroom's students.
type Group struct {
	ID      int64
	Name    string
	Color   string
	Members []GroupMember
}

type GroupMember struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
}
