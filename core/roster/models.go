package roster

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/Blanc-byte/gradingsystem/core"
)

const (
	MinGradeYear = 7
	MaxGradeYear = 12

	FirstQuarter = 1
	LastQuarter  = 4
)

type Section struct {
	ID         int    `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	GradeYear  int    `json:"grade_year" db:"grade_year"`
	SchoolYear string `json:"sy" db:"school_year"`
	Locked     bool   `json:"locked" db:"locked"`
	TeacherID  int    `json:"teacher_id" db:"teacher_id"`
}

// NewSection contains information needed to create a new Section.
type NewSection struct {
	Name       string `json:"name" validate:"required,notblank,max=100"`
	GradeYear  int    `json:"grade_year" validate:"required,min=7,max=12"`
	SchoolYear string `json:"sy" validate:"omitempty,schoolyear"`
}

func (ns *NewSection) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.SchoolYear = core.CleanString(ns.SchoolYear)
	return validate.Struct(ns)
}

// UpdateSection defines what information may be provided to modify an existing Section. nil fields are left unchanged.
type UpdateSection struct {
	Name       *string `json:"name" validate:"omitempty,notblank,max=100"`
	GradeYear  *int    `json:"grade_year" validate:"omitempty,min=7,max=12"`
	SchoolYear *string `json:"sy" validate:"omitempty,schoolyear"`
	Locked     *bool   `json:"locked"`
}

func (us *UpdateSection) Validate(validate *validator.Validate) error {
	if us.Name != nil {
		name := core.CleanString(*us.Name)
		us.Name = &name
	}
	if us.SchoolYear != nil {
		sy := core.CleanString(*us.SchoolYear)
		us.SchoolYear = &sy
	}
	return validate.Struct(us)
}

func (us UpdateSection) apply(sec *Section) {
	if us.Name != nil {
		sec.Name = *us.Name
	}
	if us.GradeYear != nil {
		sec.GradeYear = *us.GradeYear
	}
	if us.SchoolYear != nil {
		sec.SchoolYear = *us.SchoolYear
	}
	if us.Locked != nil {
		sec.Locked = *us.Locked
	}
}

// SectionStat is a Section with its adviser's name and enrolment count.
type SectionStat struct {
	Section
	TeacherName  string `json:"teacher_name" db:"teacher_name"`
	StudentCount int    `json:"student_count" db:"student_count"`
}

type StatsFilter struct {
	GradeYear  int    `query:"grade_year"`
	SchoolYear string `query:"sy"`
	Search     string `query:"q"`
}

func (sf *StatsFilter) Clean() {
	sf.SchoolYear = core.CleanString(sf.SchoolYear)
	sf.Search = core.CleanString(sf.Search)
}

type Student struct {
	ID        int    `json:"id" db:"id"`
	Fullname  string `json:"fullname" db:"fullname"`
	SectionID int    `json:"section_id" db:"section_id"`
}

// NewStudent contains information needed to enroll a Student in a Section.
type NewStudent struct {
	Fullname  string `json:"fullname" validate:"required,notblank,max=150"`
	SectionID int    `json:"section_id" validate:"required,min=1"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Fullname = core.CleanString(ns.Fullname)
	return validate.Struct(ns)
}

type UpdateStudent struct {
	Fullname *string `json:"fullname" validate:"omitempty,notblank,max=150"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	if us.Fullname != nil {
		name := core.CleanString(*us.Fullname)
		us.Fullname = &name
	}
	return validate.Struct(us)
}

type Subject struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// DefaultSubjects is the subject catalog seeded on a fresh database.
var DefaultSubjects = []string{
	"Mathematics",
	"English",
	"Science",
	"Filipino",
	"Araling Panlipunan",
	"MAPEH",
	"EPP/TLE",
	"Values Education",
	"Computer",
	"Research",
}

type Grade struct {
	ID        int     `json:"id" db:"id"`
	StudentID int     `json:"student_id" db:"student_id"`
	SubjectID int     `json:"subject_id" db:"subject_id"`
	Quarter   int     `json:"quarter" db:"quarter"`
	Grade     float64 `json:"grade" db:"grade"`
}

// GradeFilter applies AND on its non-zero fields.
type GradeFilter struct {
	SectionID int
	StudentID int
	SubjectID int
	Quarter   int
}

// QuarterGrades maps each quarter (1..4) to its grade; invalid when no grade is recorded.
type QuarterGrades map[int]null.Float64

func NewQuarterGrades() QuarterGrades {
	qg := make(QuarterGrades, LastQuarter)
	for q := FirstQuarter; q <= LastQuarter; q++ {
		qg[q] = null.Float64{}
	}
	return qg
}

// FoldQuarters builds the QuarterGrades of grades, which must belong to one student and subject.
// The grade with the highest ID wins when a quarter appears more than once.
func FoldQuarters(grades []Grade) QuarterGrades {
	qg := NewQuarterGrades()
	latest := make(map[int]int, LastQuarter)
	for _, g := range grades {
		if g.Quarter < FirstQuarter || g.Quarter > LastQuarter {
			continue
		}
		if id, ok := latest[g.Quarter]; ok && id > g.ID {
			continue
		}
		latest[g.Quarter] = g.ID
		qg[g.Quarter] = null.Float64From(g.Grade)
	}
	return qg
}

// StudentGrades is a Student with the grades recorded for them.
type StudentGrades struct {
	Student
	Grades   []Grade       `json:"grades"`
	Quarters QuarterGrades `json:"quarters"`
}
