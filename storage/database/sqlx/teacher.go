package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Blanc-byte/gradingsystem/core"
	"github.com/Blanc-byte/gradingsystem/core/teacher"
)

const teacherColumns = "id, fullname, username, password_hash, role, created_at, last_login"

type teacherRepository struct {
	db core.DBExecutor
}

var _ teacher.Repository = (*teacherRepository)(nil)

func NewTeacherRepository(db core.DBExecutor) *teacherRepository {
	return &teacherRepository{db: db}
}

func (repo teacherRepository) CreateTeacher(ctx context.Context, t teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	db := executor(repo.db, exec)
	q := db.Rebind(`INSERT INTO teacher (fullname, username, password_hash, role, created_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err := db.QueryRowxContext(ctx, q, t.Fullname, t.Username, t.PasswordHash, t.Role, t.CreatedAt, t.LastLogin).Scan(&t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return teacher.Teacher{}, teacher.ErrUsernameExists
		}
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return t, nil
}

func (repo teacherRepository) GetTeacher(ctx context.Context, filter teacher.GetFilter, exec ...core.DBExecutor) (teacher.Teacher, error) {
	db := executor(repo.db, exec)
	var w where
	switch {
	case filter.ID != 0:
		w.add("id = ?", filter.ID)
	case filter.Username != "":
		w.add("username = ?", filter.Username)
	default:
		return teacher.Teacher{}, teacher.ErrNotFound
	}

	var t teacher.Teacher
	q := db.Rebind("SELECT " + teacherColumns + " FROM teacher" + w.String())
	if err := sqlx.GetContext(ctx, db, &t, q, w.args...); err != nil {
		if isNoRows(err) {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		return teacher.Teacher{}, errors.Wrap(err, "selecting teacher")
	}
	return t, nil
}

func (repo teacherRepository) UpdateTeacher(ctx context.Context, t teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	db := executor(repo.db, exec)
	q := db.Rebind(`UPDATE teacher SET fullname = ?, username = ?, password_hash = ?, role = ?, last_login = ?
		WHERE id = ?`)
	res, err := db.ExecContext(ctx, q, t.Fullname, t.Username, t.PasswordHash, t.Role, t.LastLogin, t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return teacher.Teacher{}, teacher.ErrUsernameExists
		}
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if err = checkAffected(res, teacher.ErrNotFound); err != nil {
		return teacher.Teacher{}, err
	}
	return t, nil
}
