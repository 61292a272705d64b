package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/Blanc-byte/gradingsystem/core/roster"
	"github.com/Blanc-byte/gradingsystem/core/teacher"
	"github.com/Blanc-byte/gradingsystem/storage/database"
)

// PrepareDB returns a fresh migrated SQLite database, removed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	goose.SetLogger(goose.NopLogger())

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateTeacher(t *testing.T, repo teacher.Repository, fullname, uname, pwd string, role ...string) teacher.Teacher {
	t.Helper()
	tchr := teacher.Teacher{
		Fullname:  fullname,
		Username:  uname,
		Role:      teacher.RoleTeacher,
		CreatedAt: time.Now().UTC(),
	}
	if len(role) > 0 {
		tchr.Role = role[0]
	}
	if err := tchr.SetPassword(pwd); err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	tchr, err := repo.CreateTeacher(context.Background(), tchr)
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return tchr
}

func CreateSection(t *testing.T, repo roster.Repository, teacherID int, name string, gradeYear int, locked ...bool) roster.Section {
	t.Helper()
	sec := roster.Section{Name: name, GradeYear: gradeYear, SchoolYear: "2024-2025", TeacherID: teacherID}
	if len(locked) > 0 {
		sec.Locked = locked[0]
	}
	sec, err := repo.CreateSection(context.Background(), sec)
	if err != nil {
		t.Fatalf("CreateSection() failed: %v", err)
	}
	return sec
}

func CreateStudent(t *testing.T, repo roster.Repository, sectionID int, fullname string) roster.Student {
	t.Helper()
	st, err := repo.CreateStudent(context.Background(), roster.Student{Fullname: fullname, SectionID: sectionID})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return st
}

// SubjectID returns the id of the catalog subject with the given name.
func SubjectID(t *testing.T, repo roster.Repository, name string) int {
	t.Helper()
	subjects, err := repo.QuerySubjects(context.Background())
	if err != nil {
		t.Fatalf("SubjectID() failed: %v", err)
	}
	for _, sub := range subjects {
		if sub.Name == name {
			return sub.ID
		}
	}
	t.Fatalf("SubjectID(): no subject named %q", name)
	return 0
}
