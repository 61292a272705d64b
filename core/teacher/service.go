package teacher

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Blanc-byte/gradingsystem/core"
)

var (
	// errors
	ErrNotFound           = errors.New("teacher not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	// Repository is the Credential Store.
	Repository interface {
		// CreateTeacher returns ErrUsernameExists when the username is taken.
		CreateTeacher(ctx context.Context, t Teacher, exec ...core.DBExecutor) (Teacher, error)
		// GetTeacher returns ErrNotFound when no Teacher matches the filter.
		GetTeacher(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Teacher, error)
		UpdateTeacher(ctx context.Context, t Teacher, exec ...core.DBExecutor) (Teacher, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// Signup validates and creates a new Teacher account.
func (svc *Service) Signup(ctx context.Context, nt NewTeacher) (Teacher, error) {
	if err := nt.Validate(svc.validate); err != nil {
		return Teacher{}, err
	}
	t := Teacher{
		Fullname:  nt.Fullname,
		Username:  nt.Username,
		Role:      nt.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := t.SetPassword(nt.Password); err != nil {
		return Teacher{}, errors.Wrap(err, "hashing password")
	}
	t, err := svc.repo.CreateTeacher(ctx, t)
	if err != nil {
		if errors.Is(err, ErrUsernameExists) {
			return Teacher{}, ErrUsernameExists
		}
		return Teacher{}, errors.Wrap(err, "creating teacher")
	}
	return t, nil
}

// Login checks the credentials and returns the Teacher. Unknown usernames and wrong passwords
// both give ErrInvalidCredentials.
func (svc *Service) Login(ctx context.Context, uname, pwd string) (Teacher, error) {
	uname = core.CleanString(uname, true /* lower */)
	if uname == "" || pwd == "" {
		return Teacher{}, ErrInvalidCredentials
	}

	t, err := svc.repo.GetTeacher(ctx, GetFilter{Username: uname})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Teacher{}, ErrInvalidCredentials
		}
		return Teacher{}, errors.Wrap(err, "finding teacher by username")
	}
	if err = t.CheckPassword(pwd); err != nil {
		return Teacher{}, ErrInvalidCredentials
	}

	t.LastLogin = null.TimeFrom(time.Now().UTC())
	if t, err = svc.repo.UpdateTeacher(ctx, t); err != nil {
		return Teacher{}, errors.Wrap(err, "setting lastLogin")
	}
	return t, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Teacher, error) {
	if id <= 0 {
		return Teacher{}, ErrNotFound
	}
	return svc.repo.GetTeacher(ctx, GetFilter{ID: id})
}

// ResetPassword sets a new password for the Teacher with the given username.
func (svc *Service) ResetPassword(ctx context.Context, pr PasswordReset) error {
	if err := pr.Validate(svc.validate); err != nil {
		return err
	}
	t, err := svc.repo.GetTeacher(ctx, GetFilter{Username: pr.Username})
	if err != nil {
		return err
	}
	if err = t.SetPassword(pr.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	_, err = svc.repo.UpdateTeacher(ctx, t)
	return errors.Wrap(err, "updating teacher")
}
