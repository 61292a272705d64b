package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Blanc-byte/gradingsystem/core"
	"github.com/Blanc-byte/gradingsystem/core/roster"
)

type studentRepository struct {
	db core.DBExecutor
}

func NewStudentRepository(db core.DBExecutor) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) CreateStudent(ctx context.Context, st roster.Student, exec ...core.DBExecutor) (roster.Student, error) {
	db := executor(repo.db, exec)
	q := db.Rebind("INSERT INTO student (fullname, section_id) VALUES (?, ?) RETURNING id")
	if err := db.QueryRowxContext(ctx, q, st.Fullname, st.SectionID).Scan(&st.ID); err != nil {
		if isForeignKeyViolation(err) {
			return roster.Student{}, roster.ErrSectionNotFound
		}
		return roster.Student{}, errors.Wrap(err, "inserting student")
	}
	return st, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, id int, exec ...core.DBExecutor) (roster.Student, error) {
	db := executor(repo.db, exec)
	var st roster.Student
	q := db.Rebind("SELECT id, fullname, section_id FROM student WHERE id = ?")
	if err := sqlx.GetContext(ctx, db, &st, q, id); err != nil {
		if isNoRows(err) {
			return roster.Student{}, roster.ErrStudentNotFound
		}
		return roster.Student{}, errors.Wrap(err, "selecting student")
	}
	return st, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, st roster.Student, exec ...core.DBExecutor) (roster.Student, error) {
	db := executor(repo.db, exec)
	res, err := db.ExecContext(ctx, db.Rebind("UPDATE student SET fullname = ? WHERE id = ?"), st.Fullname, st.ID)
	if err != nil {
		return roster.Student{}, errors.Wrap(err, "updating student")
	}
	if err = checkAffected(res, roster.ErrStudentNotFound); err != nil {
		return roster.Student{}, err
	}
	return st, nil
}

func (repo studentRepository) DeleteStudent(ctx context.Context, id int, exec ...core.DBExecutor) error {
	db := executor(repo.db, exec)
	res, err := db.ExecContext(ctx, db.Rebind("DELETE FROM student WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return checkAffected(res, roster.ErrStudentNotFound)
}

func (repo studentRepository) QueryStudents(ctx context.Context, sectionID int, exec ...core.DBExecutor) ([]roster.Student, error) {
	db := executor(repo.db, exec)
	students := make([]roster.Student, 0)
	q := db.Rebind("SELECT id, fullname, section_id FROM student WHERE section_id = ? ORDER BY id DESC")
	if err := sqlx.SelectContext(ctx, db, &students, q, sectionID); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}
	return students, nil
}
