package grade

import (
	"context"
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/Blanc-byte/gradingsystem/core"
	"github.com/Blanc-byte/gradingsystem/core/roster"
	"github.com/Blanc-byte/gradingsystem/core/teacher"
)

var (
	// errors
	ErrMissingParameters = errors.New("missing parameters")
	ErrMissingSubject    = errors.New("missing subject")
	ErrNoValidItems      = errors.New("no valid items")
	ErrSectionLocked     = errors.New("section is locked")
)

type (
	Repository interface {
		// UpsertGrade records g, overwriting the grade of the same student, subject and quarter if any.
		UpsertGrade(ctx context.Context, g roster.Grade, exec ...core.DBExecutor) error
		CountGrades(ctx context.Context, filter roster.GradeFilter, exec ...core.DBExecutor) (int, error)
		QueryGrades(ctx context.Context, filter roster.GradeFilter, exec ...core.DBExecutor) ([]roster.Grade, error)
	}

	TeacherGetter interface {
		GetByID(ctx context.Context, id int) (teacher.Teacher, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		roster   *roster.Service
		teachers TeacherGetter
	}
)

func NewService(db core.DB, repo Repository, rosterSvc *roster.Service, teachers TeacherGetter) *Service {
	return &Service{db: db, repo: repo, roster: rosterSvc, teachers: teachers}
}

// SubmitGrades records a batch of grades for a section and returns how many were applied.
// Items naming a student outside the section, an unknown subject, a quarter outside 1..4 or a
// non-finite grade are dropped. The lock check, the filtering and the writes share one transaction.
func (svc *Service) SubmitGrades(ctx context.Context, teacherID, sectionID int, items []Item) (int, error) {
	if sectionID <= 0 || len(items) == 0 {
		return 0, core.NewValidationError(ErrMissingParameters)
	}
	if items[0].SubjectID == 0 {
		return 0, core.NewValidationError(ErrMissingSubject)
	}

	var applied int
	err := core.WithTx(ctx, svc.db, func(exec core.DBExecutor) error {
		sec, err := svc.roster.GetSection(ctx, teacherID, sectionID, exec)
		if err != nil {
			return err
		}
		if sec.Locked {
			return ErrSectionLocked
		}

		valid, err := svc.sanitize(ctx, sectionID, items, exec)
		if err != nil {
			return err
		}
		if len(valid) == 0 {
			return core.NewValidationError(ErrNoValidItems)
		}

		for _, it := range valid {
			g := roster.Grade{StudentID: it.StudentID, SubjectID: it.SubjectID, Quarter: it.Quarter, Grade: it.Grade}
			if err := svc.repo.UpsertGrade(ctx, g, exec); err != nil {
				return errors.Wrapf(err, "upserting grade of student %d, subject %d, quarter %d",
					it.StudentID, it.SubjectID, it.Quarter)
			}
		}
		applied = len(valid)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

func (svc *Service) sanitize(ctx context.Context, sectionID int, items []Item, exec core.DBExecutor) ([]Item, error) {
	members, err := svc.roster.MemberStudentIDs(ctx, sectionID, exec)
	if err != nil {
		return nil, err
	}
	subjects, err := svc.roster.SubjectNames(ctx, exec)
	if err != nil {
		return nil, err
	}

	valid := make([]Item, 0, len(items))
	for _, it := range items {
		if !members[it.StudentID] {
			continue
		}
		if _, ok := subjects[it.SubjectID]; !ok {
			continue
		}
		if it.Quarter < roster.FirstQuarter || it.Quarter > roster.LastQuarter {
			continue
		}
		if math.IsNaN(it.Grade) || math.IsInf(it.Grade, 0) {
			continue
		}
		valid = append(valid, it)
	}
	return valid, nil
}

// GradesExist reports whether grades were already recorded for the subject and quarter in the section.
func (svc *Service) GradesExist(ctx context.Context, teacherID, sectionID, subjectID, quarter int) (Exists, error) {
	if sectionID <= 0 || subjectID <= 0 || quarter < roster.FirstQuarter || quarter > roster.LastQuarter {
		return Exists{}, core.NewValidationError(ErrMissingParameters)
	}
	if _, err := svc.roster.GetSection(ctx, teacherID, sectionID); err != nil {
		return Exists{}, err
	}
	count, err := svc.repo.CountGrades(ctx, roster.GradeFilter{SectionID: sectionID, SubjectID: subjectID, Quarter: quarter})
	if err != nil {
		return Exists{}, errors.Wrap(err, "counting grades")
	}
	return Exists{Exists: count > 0, Count: count}, nil
}

// StudentReport computes the report card of a student: the final of every graded subject,
// the general average and the remarks.
func (svc *Service) StudentReport(ctx context.Context, teacherID, sectionID, studentID int) (StudentReport, error) {
	sec, err := svc.roster.GetSection(ctx, teacherID, sectionID)
	if err != nil {
		return StudentReport{}, err
	}
	st, err := svc.roster.GetStudent(ctx, teacherID, sectionID, studentID)
	if err != nil {
		return StudentReport{}, err
	}
	adviser, err := svc.teachers.GetByID(ctx, sec.TeacherID)
	if err != nil {
		return StudentReport{}, errors.Wrap(err, "getting adviser")
	}
	names, err := svc.roster.SubjectNames(ctx)
	if err != nil {
		return StudentReport{}, err
	}
	grades, err := svc.repo.QueryGrades(ctx, roster.GradeFilter{StudentID: st.ID})
	if err != nil {
		return StudentReport{}, errors.Wrap(err, "querying grades")
	}

	subjects, avg := summarize(grades, names)
	return StudentReport{
		Student:        st,
		Section:        sec,
		AdviserName:    adviser.Fullname,
		Subjects:       subjects,
		GeneralAverage: Round2(avg),
		Remarks:        Remarks(avg),
	}, nil
}

// SectionReport computes the general average and remarks of every student in the section.
func (svc *Service) SectionReport(ctx context.Context, teacherID, sectionID int) (SectionReport, error) {
	sec, err := svc.roster.GetSection(ctx, teacherID, sectionID)
	if err != nil {
		return SectionReport{}, err
	}
	adviser, err := svc.teachers.GetByID(ctx, sec.TeacherID)
	if err != nil {
		return SectionReport{}, errors.Wrap(err, "getting adviser")
	}
	subjects, err := svc.roster.ListSubjectsUsedInSection(ctx, teacherID, sectionID)
	if err != nil {
		return SectionReport{}, err
	}
	students, err := svc.roster.ListStudentsBySection(ctx, teacherID, sectionID, 0)
	if err != nil {
		return SectionReport{}, err
	}

	names := make(map[int]string, len(subjects))
	for _, sub := range subjects {
		names[sub.ID] = sub.Name
	}
	summaries := make([]StudentSummary, 0, len(students))
	for _, st := range students {
		results, avg := summarize(st.Grades, names)
		finals := make(map[int]float64, len(results))
		for _, res := range results {
			finals[res.SubjectID] = res.Final
		}
		summaries = append(summaries, StudentSummary{
			ID:             st.ID,
			Fullname:       st.Fullname,
			Finals:         finals,
			GeneralAverage: Round2(avg),
			Remarks:        Remarks(avg),
		})
	}
	return SectionReport{
		Section:     sec,
		AdviserName: adviser.Fullname,
		Subjects:    subjects,
		Students:    summaries,
	}, nil
}

// DashboardStats counts sections, students and failed quarter grades across all sections.
func (svc *Service) DashboardStats(ctx context.Context) (Dashboard, error) {
	stats, err := svc.roster.SectionStats(ctx, roster.StatsFilter{})
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "querying section stats")
	}
	dash := Dashboard{TotalSections: len(stats)}
	for _, stat := range stats {
		dash.TotalStudents += stat.StudentCount
	}

	grades, err := svc.repo.QueryGrades(ctx, roster.GradeFilter{})
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "querying grades")
	}
	type key struct{ student, subject int }
	grouped := make(map[key][]roster.Grade)
	for _, g := range grades {
		k := key{g.StudentID, g.SubjectID}
		grouped[k] = append(grouped[k], g)
	}
	for _, gs := range grouped {
		dash.FailedGrades += CountFailed(roster.FoldQuarters(gs))
	}
	return dash, nil
}

// summarize groups a student's grades by subject and returns the subject results ordered by name
// along with the unrounded general average. Subjects missing from names are skipped.
func summarize(grades []roster.Grade, names map[int]string) ([]SubjectResult, float64) {
	bySubject := make(map[int][]roster.Grade)
	for _, g := range grades {
		if _, ok := names[g.SubjectID]; !ok {
			continue
		}
		bySubject[g.SubjectID] = append(bySubject[g.SubjectID], g)
	}

	subjectIDs := make([]int, 0, len(bySubject))
	for subjectID := range bySubject {
		subjectIDs = append(subjectIDs, subjectID)
	}
	sort.Ints(subjectIDs)

	results := make([]SubjectResult, 0, len(bySubject))
	finals := make([]float64, 0, len(bySubject))
	for _, subjectID := range subjectIDs {
		qg := roster.FoldQuarters(bySubject[subjectID])
		final, ok := SubjectFinal(qg)
		if !ok {
			continue
		}
		finals = append(finals, final)
		results = append(results, SubjectResult{
			SubjectID: subjectID,
			Name:      names[subjectID],
			Quarters:  qg,
			Final:     Round2(final),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Name == results[j].Name {
			return results[i].SubjectID < results[j].SubjectID
		}
		return results[i].Name < results[j].Name
	})
	return results, GeneralAverage(finals)
}
