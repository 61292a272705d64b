package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Blanc-byte/gradingsystem/core"
	"github.com/Blanc-byte/gradingsystem/core/roster"
	"github.com/Blanc-byte/gradingsystem/core/teacher"
	"github.com/Blanc-byte/gradingsystem/storage/database/sqlx"
	"github.com/Blanc-byte/gradingsystem/tests"
)

var teacherRepo teacher.Repository

func setup(t *testing.T) *commandLine {
	// set up DB & repos
	db := testutil.PrepareDB(t)
	teacherRepo = sqlxrepos.NewTeacherRepository(db)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	teacher.InitValidators(validate, translator)
	roster.InitValidators(validate, translator)

	// start CLI
	return &commandLine{
		db:         db,
		teacherSvc: teacher.NewService(teacherRepo, validate),
		rosterSvc:  roster.NewService(sqlxrepos.NewRosterRepository(db), validate),
		out:        new(bytes.Buffer),
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.True(t, errors.Is(err, tt.wantErr), "cli.run() error = %v, wantErr %v", err, tt.wantErr)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var gotDir string
	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		gotDir = dir
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "add_teacher_email", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
	assert.Equal(t, "migrations/sqlite3", gotDir)
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)

	_, err := cli.db.Exec("DELETE FROM subject WHERE name IN ('Research', 'Computer')")
	require.NoError(t, err)

	require.NoError(t, cli.run([]string{"admin", "seed"}))
	assert.Contains(t, cli.out.(*bytes.Buffer).String(), "2 subject(s) added")

	subjects, err := cli.rosterSvc.ListSubjects(context.Background())
	require.NoError(t, err)
	assert.Len(t, subjects, len(roster.DefaultSubjects))

	// idempotent
	require.NoError(t, cli.run([]string{"admin", "seed"}))
	assert.Contains(t, cli.out.(*bytes.Buffer).String(), "0 subject(s) added")
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	testutil.CreateTeacher(t, teacherRepo, "Jose Rizal", "jrizal", "S3cure!pass")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "missing fullname", args: []string{"adduser", "-username", "msantos"}, extra: extra{pwd: "S3cure!pass"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-fullname", "Maria Santos", "-username", "msantos"}, wantErr: errHelp},
		{
			name: "username taken", args: []string{"adduser", "-fullname", "Jose Rizal", "-username", "JRizal"},
			extra: extra{pwd: "S3cure!pass"}, wantErr: teacher.ErrUsernameExists,
		},
		{
			name: "unknown role", args: []string{"adduser", "-fullname", "Maria Santos", "-username", "msantos", "-role", "janitor"},
			extra: extra{pwd: "S3cure!pass"}, wantErrStr: "Key: 'NewTeacher.role' Error:Field validation for 'role' failed on the 'oneof' tag",
		},
		{
			name: "created", args: []string{"adduser", "-fullname", "Maria Santos", "-username", "msantos", "-role", teacher.RoleAdmin},
			extra: extra{pwd: "S3cure!pass"},
		},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		pwd := ""
		if e, ok := tt.extra.(extra); ok {
			pwd = e.pwd
		}
		mockPassword(pwd)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	tchr, err := teacherRepo.GetTeacher(context.Background(), teacher.GetFilter{Username: "msantos"})
	require.NoError(t, err)
	assert.Equal(t, "Maria Santos", tchr.Fullname)
	assert.Equal(t, teacher.RoleAdmin, tchr.Role)
	assert.NoError(t, tchr.CheckPassword("S3cure!pass"))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	tchr := testutil.CreateTeacher(t, teacherRepo, "Maria Santos", "msantos", "S3cure!pass")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "teacher not found", args: []string{"resetpassword", "-username", "lolcat"}, extra: extra{pwd: "N3w!secret"}, wantErr: teacher.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-username", "MSantos"}, extra: extra{pwd: "N3w!secret"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		pwd := ""
		if e, ok := tt.extra.(extra); ok {
			pwd = e.pwd
		}
		mockPassword(pwd)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	refreshed, err := teacherRepo.GetTeacher(context.Background(), teacher.GetFilter{ID: tchr.ID})
	require.NoError(t, err)
	assert.False(t, bytes.Equal(refreshed.PasswordHash, tchr.PasswordHash), "password not updated")
	assert.NoError(t, refreshed.CheckPassword("N3w!secret"))
}
