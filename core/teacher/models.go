package teacher

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/Blanc-byte/gradingsystem/core"
)

// Roles
const (
	RoleTeacher = "teacher"
	RoleAdviser = "adviser"
	RoleAdmin   = "admin"
)

var (
	AllRoles = []string{RoleTeacher, RoleAdviser, RoleAdmin}

	Roles = []Role{
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Adviser", Value: RoleAdviser},
		{Name: "Admin", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Teacher struct {
	ID           int       `json:"id" db:"id"`
	Fullname     string    `json:"fullname" db:"fullname"`
	Username     string    `json:"username" db:"username"`
	PasswordHash []byte    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	LastLogin    null.Time `json:"last_login" db:"last_login"` // UTC
}

func (t *Teacher) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	t.PasswordHash = hash
	return nil
}

func (t *Teacher) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(t.PasswordHash, []byte(pwd))
}

func (t *Teacher) IsAdmin() bool {
	return t.Role == RoleAdmin
}

// Summary is the public view of a Teacher returned after authentication.
func (t *Teacher) Summary() Summary {
	return Summary{
		ID:       t.ID,
		Fullname: t.Fullname,
		Username: t.Username,
		Role:     t.Role,
	}
}

type Summary struct {
	ID       int    `json:"id"`
	Fullname string `json:"fullname"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// NewTeacher contains information needed to sign up a new Teacher.
type NewTeacher struct {
	Fullname string `json:"fullname" validate:"required,notblank,max=150"`
	Username string `json:"username" validate:"required,min=4,max=50,alphanum_"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=teacher adviser admin"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.Fullname = core.CleanString(nt.Fullname)
	nt.Username = core.CleanString(nt.Username, true /* lower */)
	nt.Role = core.CleanString(nt.Role, true /* lower */)
	return validate.Struct(nt)
}

// PasswordReset is used by the admin CLI to set a new password.
type PasswordReset struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (pr *PasswordReset) Validate(validate *validator.Validate) error {
	pr.Username = core.CleanString(pr.Username, true /* lower */)
	return validate.Struct(pr)
}

// GetFilter selects a single Teacher: by ID if set, else by Username.
type GetFilter struct {
	ID       int
	Username string
}
