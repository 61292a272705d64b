package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Blanc-byte/gradingsystem/core"
	"github.com/Blanc-byte/gradingsystem/core/roster"
)

const sectionColumns = "id, name, grade_year, school_year, locked, teacher_id"

// sectionStatColumns maps the stats ordering fields to their SQL expression.
var sectionStatColumns = map[string]string{
	"id":            "s.id",
	"name":          "s.name",
	"grade_year":    "s.grade_year",
	"school_year":   "s.school_year",
	"teacher_name":  "teacher_name",
	"student_count": "student_count",
}

type sectionRepository struct {
	db core.DBExecutor
}

func NewSectionRepository(db core.DBExecutor) *sectionRepository {
	return &sectionRepository{db: db}
}

func (repo sectionRepository) CreateSection(ctx context.Context, sec roster.Section, exec ...core.DBExecutor) (roster.Section, error) {
	db := executor(repo.db, exec)
	q := db.Rebind(`INSERT INTO section (name, grade_year, school_year, locked, teacher_id)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)
	err := db.QueryRowxContext(ctx, q, sec.Name, sec.GradeYear, sec.SchoolYear, sec.Locked, sec.TeacherID).Scan(&sec.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return roster.Section{}, roster.ErrSectionExists
		}
		return roster.Section{}, errors.Wrap(err, "inserting section")
	}
	return sec, nil
}

func (repo sectionRepository) GetSection(ctx context.Context, id int, exec ...core.DBExecutor) (roster.Section, error) {
	db := executor(repo.db, exec)
	var sec roster.Section
	q := db.Rebind("SELECT " + sectionColumns + " FROM section WHERE id = ?")
	if err := sqlx.GetContext(ctx, db, &sec, q, id); err != nil {
		if isNoRows(err) {
			return roster.Section{}, roster.ErrSectionNotFound
		}
		return roster.Section{}, errors.Wrap(err, "selecting section")
	}
	return sec, nil
}

func (repo sectionRepository) UpdateSection(ctx context.Context, sec roster.Section, exec ...core.DBExecutor) (roster.Section, error) {
	db := executor(repo.db, exec)
	q := db.Rebind("UPDATE section SET name = ?, grade_year = ?, school_year = ?, locked = ? WHERE id = ?")
	res, err := db.ExecContext(ctx, q, sec.Name, sec.GradeYear, sec.SchoolYear, sec.Locked, sec.ID)
	if err != nil {
		return roster.Section{}, errors.Wrap(err, "updating section")
	}
	if err = checkAffected(res, roster.ErrSectionNotFound); err != nil {
		return roster.Section{}, err
	}
	return sec, nil
}

func (repo sectionRepository) DeleteSection(ctx context.Context, id int, exec ...core.DBExecutor) error {
	db := executor(repo.db, exec)
	res, err := db.ExecContext(ctx, db.Rebind("DELETE FROM section WHERE id = ?"), id)
	if err != nil {
		return errors.Wrap(err, "deleting section")
	}
	return checkAffected(res, roster.ErrSectionNotFound)
}

func (repo sectionRepository) QuerySections(ctx context.Context, teacherID int, exec ...core.DBExecutor) ([]roster.Section, error) {
	db := executor(repo.db, exec)
	sections := make([]roster.Section, 0)
	q := db.Rebind("SELECT " + sectionColumns + " FROM section WHERE teacher_id = ? ORDER BY id DESC")
	if err := sqlx.SelectContext(ctx, db, &sections, q, teacherID); err != nil {
		return nil, errors.Wrap(err, "selecting sections")
	}
	return sections, nil
}

type sectionStatRow struct {
	roster.Section
	TeacherName  null.String `db:"teacher_name"`
	StudentCount int         `db:"student_count"`
}

func (repo sectionRepository) QuerySectionStats(ctx context.Context, filter roster.StatsFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]roster.SectionStat, error) {
	db := executor(repo.db, exec)
	var w where
	if filter.GradeYear != 0 {
		w.add("s.grade_year = ?", filter.GradeYear)
	}
	if filter.SchoolYear != "" {
		w.add("s.school_year = ?", filter.SchoolYear)
	}
	if filter.Search != "" {
		w.add("LOWER(s.name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	q := db.Rebind(`SELECT s.id, s.name, s.grade_year, s.school_year, s.locked, s.teacher_id,
		t.fullname AS teacher_name,
		(SELECT COUNT(*) FROM student st WHERE st.section_id = s.id) AS student_count
		FROM section s LEFT JOIN teacher t ON t.id = s.teacher_id` + w.String() + orderBy(ordering, sectionStatColumns, "s.id DESC"))

	var rows []sectionStatRow
	if err := sqlx.SelectContext(ctx, db, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting section stats")
	}
	stats := make([]roster.SectionStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, roster.SectionStat{
			Section:      row.Section,
			TeacherName:  row.TeacherName.String,
			StudentCount: row.StudentCount,
		})
	}
	return stats, nil
}
