package main

import (
	"github.com/Blanc-byte/gradingsystem/core/teacher"
)

// addUser creates a teacher account.
func (cli *commandLine) addUser(fullname, uname, pwd, role string) error {
	t, err := cli.teacherSvc.Signup(ctx(), teacher.NewTeacher{
		Fullname: fullname,
		Username: uname,
		Password: pwd,
		Role:     role,
	})
	if err != nil {
		return err
	}
	cli.printf("teacher %q created (id %d)\n", t.Username, t.ID)
	return nil
}
