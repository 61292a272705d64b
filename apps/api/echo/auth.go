package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Blanc-byte/gradingsystem/core"
	"github.com/Blanc-byte/gradingsystem/core/teacher"
)

const (
	contextTokenKey   = "teacherToken"
	contextTeacherKey = "teacher"
	tokenAudience     = "GradeBook"
)

var nowFunc = time.Now

// Claims represents the authorization claims transmitted via a JWT. The subject is the teacher's id.
type Claims struct {
	jwt.RegisteredClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Username     string `json:"username,omitempty"`
	Role         string `json:"role,omitempty"`
}

func (c Claims) TeacherID() (int, error) {
	id, err := strconv.Atoi(c.Subject)
	if err != nil || id <= 0 {
		return 0, errUnauthorized
	}
	return id, nil
}

type tokenIssuer struct {
	signingKey   []byte
	issuer       string
	expDelta     time.Duration
	refreshDelta time.Duration
}

func newTokenIssuer(conf *core.Config) tokenIssuer {
	return tokenIssuer{
		signingKey:   []byte(conf.SecretKey),
		issuer:       conf.AppName,
		expDelta:     conf.Server.JWTExpirationDelta,
		refreshDelta: conf.Server.JWTRefreshExpirationDelta,
	}
}

func (ti tokenIssuer) claims(t teacher.Teacher, origIat ...int64) *Claims {
	now := nowFunc()

	oriat := now.Unix()
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ti.issuer,
			Subject:   strconv.Itoa(t.ID),
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.expDelta)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OrigIssuedAt: oriat,
		Username:     t.Username,
		Role:         t.Role,
	}
}

// generate returns the signed JWT string representing claims.
func (ti tokenIssuer) generate(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(ti.signingKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// middleware authenticates requests bearing a valid token.
func (ti tokenIssuer) middleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    ti.signingKey,
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		ContextKey:    contextTokenKey,
		NewClaimsFunc: func(echo.Context) jwt.Claims { return new(Claims) },
		ErrorHandler: func(ctx echo.Context, err error) error {
			auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimSpace(auth[len("Bearer "):]) == "" {
				return errMissingToken
			}
			return errInvalidToken
		},
	})
}

// refresh issues a new token for the context teacher, as long as the original token was issued
// within the refresh window.
func (ti tokenIssuer) refresh(ctx echo.Context, svc *teacher.Service) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", err
	}

	t, err := getContextTeacher(ctx, svc, claims)
	if err != nil {
		return "", err
	}

	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(ti.refreshDelta)
	if nowFunc().After(expTime) {
		return "", errRefreshExpired
	}

	token, err := ti.generate(ti.claims(t, claims.OrigIssuedAt))
	return token, errors.Wrap(err, "generating token")
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextTeacherID returns the id of the authenticated teacher.
func getContextTeacherID(ctx echo.Context) (int, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return 0, err
	}
	return claims.TeacherID()
}

// getContextTeacher loads the authenticated teacher once per request.
func getContextTeacher(ctx echo.Context, svc *teacher.Service, clms ...Claims) (teacher.Teacher, error) {
	if t, ok := ctx.Get(contextTeacherKey).(teacher.Teacher); ok {
		return t, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else if claims, err = getContextClaims(ctx); err != nil {
		return teacher.Teacher{}, err
	}
	id, err := claims.TeacherID()
	if err != nil {
		return teacher.Teacher{}, err
	}

	t, err := svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Is(err, teacher.ErrNotFound) {
			// account removed after the token was issued
			return teacher.Teacher{}, errUnauthorized
		}
		return teacher.Teacher{}, errors.Wrap(err, "finding teacher by ID")
	}
	ctx.Set(contextTeacherKey, t)
	return t, nil
}
