package grade

import (
	"github.com/Blanc-byte/gradingsystem/core/roster"
)

// Item is a single grade submitted for a student, subject and quarter.
type Item struct {
	StudentID int
	SubjectID int
	Quarter   int
	Grade     float64
}

type Exists struct {
	Exists bool `json:"exists"`
	Count  int  `json:"count"`
}

// SubjectResult holds a student's grades in one subject and their final.
type SubjectResult struct {
	SubjectID int                  `json:"subject_id"`
	Name      string               `json:"name"`
	Quarters  roster.QuarterGrades `json:"quarters"`
	Final     float64              `json:"final"`
}

type StudentReport struct {
	Student        roster.Student  `json:"student"`
	Section        roster.Section  `json:"section"`
	AdviserName    string          `json:"adviser_name"`
	Subjects       []SubjectResult `json:"subjects"`
	GeneralAverage float64         `json:"general_average"`
	Remarks        string          `json:"remarks"`
}

type StudentSummary struct {
	ID             int             `json:"id"`
	Fullname       string          `json:"fullname"`
	Finals         map[int]float64 `json:"finals"` // by subject id
	GeneralAverage float64         `json:"general_average"`
	Remarks        string          `json:"remarks"`
}

type SectionReport struct {
	Section     roster.Section   `json:"section"`
	AdviserName string           `json:"adviser_name"`
	Subjects    []roster.Subject `json:"subjects"`
	Students    []StudentSummary `json:"students"`
}

type Dashboard struct {
	TotalSections int `json:"total_sections"`
	TotalStudents int `json:"total_students"`
	FailedGrades  int `json:"failed_grades"`
}
