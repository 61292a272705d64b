package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Blanc-byte/gradingsystem/core"
	"github.com/Blanc-byte/gradingsystem/core/grade"
	"github.com/Blanc-byte/gradingsystem/core/roster"
)

type gradeRepository struct {
	db core.DBExecutor
}

var _ grade.Repository = (*gradeRepository)(nil)

func NewGradeRepository(db core.DBExecutor) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo gradeRepository) UpsertGrade(ctx context.Context, g roster.Grade, exec ...core.DBExecutor) error {
	db := executor(repo.db, exec)
	q := db.Rebind(`INSERT INTO grade (student_id, subject_id, quarter, grade) VALUES (?, ?, ?, ?)
		ON CONFLICT (student_id, subject_id, quarter) DO UPDATE SET grade = excluded.grade`)
	if _, err := db.ExecContext(ctx, q, g.StudentID, g.SubjectID, g.Quarter, g.Grade); err != nil {
		return errors.Wrap(err, "upserting grade")
	}
	return nil
}

func gradeWhere(filter roster.GradeFilter) *where {
	w := new(where)
	if filter.SectionID != 0 {
		w.add("st.section_id = ?", filter.SectionID)
	}
	if filter.StudentID != 0 {
		w.add("g.student_id = ?", filter.StudentID)
	}
	if filter.SubjectID != 0 {
		w.add("g.subject_id = ?", filter.SubjectID)
	}
	if filter.Quarter != 0 {
		w.add("g.quarter = ?", filter.Quarter)
	}
	return w
}

func (repo gradeRepository) CountGrades(ctx context.Context, filter roster.GradeFilter, exec ...core.DBExecutor) (int, error) {
	db := executor(repo.db, exec)
	w := gradeWhere(filter)
	q := db.Rebind("SELECT COUNT(*) FROM grade g JOIN student st ON st.id = g.student_id" + w.String())
	var count int
	if err := sqlx.GetContext(ctx, db, &count, q, w.args...); err != nil {
		return 0, errors.Wrap(err, "counting grades")
	}
	return count, nil
}

func (repo gradeRepository) QueryGrades(ctx context.Context, filter roster.GradeFilter, exec ...core.DBExecutor) ([]roster.Grade, error) {
	db := executor(repo.db, exec)
	w := gradeWhere(filter)
	q := db.Rebind(`SELECT g.id, g.student_id, g.subject_id, g.quarter, g.grade
		FROM grade g JOIN student st ON st.id = g.student_id` + w.String() + " ORDER BY g.id")
	grades := make([]roster.Grade, 0)
	if err := sqlx.SelectContext(ctx, db, &grades, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting grades")
	}
	return grades, nil
}
