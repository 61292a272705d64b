package roster

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Blanc-byte/gradingsystem/core"
)

var (
	// errors
	ErrSectionNotFound = errors.New("section not found")
	ErrSectionExists   = errors.New("teacher already has a section")
	ErrStudentNotFound = errors.New("student not found")
	ErrInvalidOrdering = errors.New("invalid ordering")

	orderingField = "ordering"

	// statsOrderingFields are the SectionStat fields the stats listing can be ordered by.
	statsOrderingFields = map[string]bool{
		"id": true, "name": true, "grade_year": true, "school_year": true, "teacher_name": true, "student_count": true,
	}
)

type (
	// Repository is the Roster Store.
	Repository interface {
		// CreateSection returns ErrSectionExists when the teacher already owns a Section.
		CreateSection(ctx context.Context, sec Section, exec ...core.DBExecutor) (Section, error)
		// GetSection returns ErrSectionNotFound when no Section has the given id.
		GetSection(ctx context.Context, id int, exec ...core.DBExecutor) (Section, error)
		UpdateSection(ctx context.Context, sec Section, exec ...core.DBExecutor) (Section, error)
		DeleteSection(ctx context.Context, id int, exec ...core.DBExecutor) error
		// QuerySections returns the sections owned by teacherID, newest first.
		QuerySections(ctx context.Context, teacherID int, exec ...core.DBExecutor) ([]Section, error)
		QuerySectionStats(ctx context.Context, filter StatsFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]SectionStat, error)

		CreateStudent(ctx context.Context, st Student, exec ...core.DBExecutor) (Student, error)
		// GetStudent returns ErrStudentNotFound when no Student has the given id.
		GetStudent(ctx context.Context, id int, exec ...core.DBExecutor) (Student, error)
		UpdateStudent(ctx context.Context, st Student, exec ...core.DBExecutor) (Student, error)
		DeleteStudent(ctx context.Context, id int, exec ...core.DBExecutor) error
		// QueryStudents returns the students of a section, newest first.
		QueryStudents(ctx context.Context, sectionID int, exec ...core.DBExecutor) ([]Student, error)

		// QuerySubjects returns the subject catalog ordered by name.
		QuerySubjects(ctx context.Context, exec ...core.DBExecutor) ([]Subject, error)
		CreateSubject(ctx context.Context, name string, exec ...core.DBExecutor) (Subject, error)
		// QuerySectionSubjects returns the subjects graded at least once in the section, ordered by name.
		QuerySectionSubjects(ctx context.Context, sectionID int, exec ...core.DBExecutor) ([]Subject, error)

		QueryGrades(ctx context.Context, filter GradeFilter, exec ...core.DBExecutor) ([]Grade, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// Sections

func (svc *Service) CreateSection(ctx context.Context, teacherID int, ns NewSection) (Section, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Section{}, err
	}
	sec, err := svc.repo.CreateSection(ctx, Section{
		Name:       ns.Name,
		GradeYear:  ns.GradeYear,
		SchoolYear: ns.SchoolYear,
		TeacherID:  teacherID,
	})
	if err != nil {
		if errors.Is(err, ErrSectionExists) {
			return Section{}, ErrSectionExists
		}
		return Section{}, errors.Wrap(err, "creating section")
	}
	return sec, nil
}

// GetSection returns the Section if it exists and is owned by teacherID, ErrSectionNotFound otherwise.
func (svc *Service) GetSection(ctx context.Context, teacherID, id int, exec ...core.DBExecutor) (Section, error) {
	if id <= 0 {
		return Section{}, ErrSectionNotFound
	}
	sec, err := svc.repo.GetSection(ctx, id, exec...)
	if err != nil {
		return Section{}, err
	}
	if sec.TeacherID != teacherID {
		return Section{}, ErrSectionNotFound
	}
	return sec, nil
}

func (svc *Service) UpdateSection(ctx context.Context, teacherID, id int, us UpdateSection) (Section, error) {
	if err := us.Validate(svc.validate); err != nil {
		return Section{}, err
	}
	sec, err := svc.GetSection(ctx, teacherID, id)
	if err != nil {
		return Section{}, err
	}
	us.apply(&sec)
	sec, err = svc.repo.UpdateSection(ctx, sec)
	return sec, errors.Wrap(err, "updating section")
}

// DeleteSection removes the Section together with its students and their grades.
func (svc *Service) DeleteSection(ctx context.Context, teacherID, id int) error {
	if _, err := svc.GetSection(ctx, teacherID, id); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteSection(ctx, id), "deleting section")
}

func (svc *Service) ListSectionsByTeacher(ctx context.Context, teacherID int) ([]Section, error) {
	return svc.repo.QuerySections(ctx, teacherID)
}

// SectionStats lists every section with its teacher's name and student count.
// Unknown ordering fields are reported as a validation error on the "ordering" field.
func (svc *Service) SectionStats(ctx context.Context, filter StatsFilter, ordering ...core.DBOrdering) ([]SectionStat, error) {
	filter.Clean()
	for _, ord := range ordering {
		if !statsOrderingFields[ord.Field] {
			return nil, core.NewValidationError(ErrInvalidOrdering, core.FieldError{
				Field: orderingField,
				Error: fmt.Sprintf("cannot order by %q", ord.Field),
			})
		}
	}
	return svc.repo.QuerySectionStats(ctx, filter, ordering)
}

// Students

func (svc *Service) CreateStudent(ctx context.Context, teacherID int, ns NewStudent) (Student, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	if _, err := svc.GetSection(ctx, teacherID, ns.SectionID); err != nil {
		return Student{}, err
	}
	st, err := svc.repo.CreateStudent(ctx, Student{Fullname: ns.Fullname, SectionID: ns.SectionID})
	return st, errors.Wrap(err, "creating student")
}

// getStudent returns the Student if its section is owned by teacherID, ErrStudentNotFound otherwise.
func (svc *Service) getStudent(ctx context.Context, teacherID, id int) (Student, error) {
	if id <= 0 {
		return Student{}, ErrStudentNotFound
	}
	st, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if _, err = svc.GetSection(ctx, teacherID, st.SectionID); err != nil {
		if errors.Is(err, ErrSectionNotFound) {
			return Student{}, ErrStudentNotFound
		}
		return Student{}, err
	}
	return st, nil
}

// GetStudent returns the Student if it belongs to the section, ErrStudentNotFound otherwise.
func (svc *Service) GetStudent(ctx context.Context, teacherID, sectionID, id int) (Student, error) {
	st, err := svc.getStudent(ctx, teacherID, id)
	if err != nil {
		return Student{}, err
	}
	if st.SectionID != sectionID {
		return Student{}, ErrStudentNotFound
	}
	return st, nil
}

func (svc *Service) UpdateStudent(ctx context.Context, teacherID, id int, us UpdateStudent) (Student, error) {
	if err := us.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	st, err := svc.getStudent(ctx, teacherID, id)
	if err != nil {
		return Student{}, err
	}
	if us.Fullname != nil {
		st.Fullname = *us.Fullname
	}
	st, err = svc.repo.UpdateStudent(ctx, st)
	return st, errors.Wrap(err, "updating student")
}

// DeleteStudent removes the Student and their grades.
func (svc *Service) DeleteStudent(ctx context.Context, teacherID, id int) error {
	if _, err := svc.getStudent(ctx, teacherID, id); err != nil {
		return err
	}
	return errors.Wrap(svc.repo.DeleteStudent(ctx, id), "deleting student")
}

// ListStudentsBySection returns the students of the section with their grades, restricted to
// subjectID when it is not zero. Quarters holds the latest grade of each quarter.
func (svc *Service) ListStudentsBySection(ctx context.Context, teacherID, sectionID, subjectID int) ([]StudentGrades, error) {
	if _, err := svc.GetSection(ctx, teacherID, sectionID); err != nil {
		return nil, err
	}
	students, err := svc.repo.QueryStudents(ctx, sectionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	grades, err := svc.repo.QueryGrades(ctx, GradeFilter{SectionID: sectionID, SubjectID: subjectID})
	if err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}

	byStudent := make(map[int][]Grade, len(students))
	for _, g := range grades {
		byStudent[g.StudentID] = append(byStudent[g.StudentID], g)
	}
	result := make([]StudentGrades, 0, len(students))
	for _, st := range students {
		sg := byStudent[st.ID]
		if sg == nil {
			sg = []Grade{}
		}
		result = append(result, StudentGrades{Student: st, Grades: sg, Quarters: FoldQuarters(sg)})
	}
	return result, nil
}

// MemberStudentIDs returns the ids of the students enrolled in the section.
func (svc *Service) MemberStudentIDs(ctx context.Context, sectionID int, exec ...core.DBExecutor) (map[int]bool, error) {
	students, err := svc.repo.QueryStudents(ctx, sectionID, exec...)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	ids := make(map[int]bool, len(students))
	for _, st := range students {
		ids[st.ID] = true
	}
	return ids, nil
}

// Subjects

func (svc *Service) ListSubjects(ctx context.Context) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx)
}

// SubjectNames returns the subject catalog keyed by id.
func (svc *Service) SubjectNames(ctx context.Context, exec ...core.DBExecutor) (map[int]string, error) {
	subjects, err := svc.repo.QuerySubjects(ctx, exec...)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	names := make(map[int]string, len(subjects))
	for _, sub := range subjects {
		names[sub.ID] = sub.Name
	}
	return names, nil
}

func (svc *Service) ListSubjectsUsedInSection(ctx context.Context, teacherID, sectionID int) ([]Subject, error) {
	if _, err := svc.GetSection(ctx, teacherID, sectionID); err != nil {
		return nil, err
	}
	return svc.repo.QuerySectionSubjects(ctx, sectionID)
}

// SeedSubjects adds the missing DefaultSubjects to the catalog and returns how many were added.
func (svc *Service) SeedSubjects(ctx context.Context) (int, error) {
	subjects, err := svc.repo.QuerySubjects(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "querying subjects")
	}
	existing := make(map[string]bool, len(subjects))
	for _, sub := range subjects {
		existing[sub.Name] = true
	}
	missing := make([]string, 0, len(DefaultSubjects))
	for _, name := range DefaultSubjects {
		if !existing[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	for _, name := range missing {
		if _, err = svc.repo.CreateSubject(ctx, name); err != nil {
			return 0, errors.Wrapf(err, "creating subject %q", name)
		}
	}
	return len(missing), nil
}
