package main

import (
	"github.com/Blanc-byte/gradingsystem/core/teacher"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	return cli.teacherSvc.ResetPassword(ctx(), teacher.PasswordReset{Username: uname, Password: pwd})
}
