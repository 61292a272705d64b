package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Blanc-byte/gradingsystem/core"
	"github.com/Blanc-byte/gradingsystem/core/roster"
)

type subjectRepository struct {
	db core.DBExecutor
}

func NewSubjectRepository(db core.DBExecutor) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo subjectRepository) QuerySubjects(ctx context.Context, exec ...core.DBExecutor) ([]roster.Subject, error) {
	db := executor(repo.db, exec)
	subjects := make([]roster.Subject, 0)
	if err := sqlx.SelectContext(ctx, db, &subjects, "SELECT id, name FROM subject ORDER BY name"); err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	return subjects, nil
}

func (repo subjectRepository) CreateSubject(ctx context.Context, name string, exec ...core.DBExecutor) (roster.Subject, error) {
	db := executor(repo.db, exec)
	sub := roster.Subject{Name: name}
	if err := db.QueryRowxContext(ctx, db.Rebind("INSERT INTO subject (name) VALUES (?) RETURNING id"), name).Scan(&sub.ID); err != nil {
		return roster.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo subjectRepository) QuerySectionSubjects(ctx context.Context, sectionID int, exec ...core.DBExecutor) ([]roster.Subject, error) {
	db := executor(repo.db, exec)
	subjects := make([]roster.Subject, 0)
	q := db.Rebind(`SELECT DISTINCT sub.id, sub.name FROM subject sub
		JOIN grade g ON g.subject_id = sub.id
		JOIN student st ON st.id = g.student_id
		WHERE st.section_id = ?
		ORDER BY sub.name`)
	if err := sqlx.SelectContext(ctx, db, &subjects, q, sectionID); err != nil {
		return nil, errors.Wrap(err, "selecting section subjects")
	}
	return subjects, nil
}
