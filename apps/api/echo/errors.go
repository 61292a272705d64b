package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Blanc-byte/gradingsystem/core"
	"github.com/Blanc-byte/gradingsystem/core/grade"
	"github.com/Blanc-byte/gradingsystem/core/roster"
	"github.com/Blanc-byte/gradingsystem/core/teacher"
)

var (
	errUnauthorized   = echo.NewHTTPError(http.StatusUnauthorized, "teacher not authenticated")
	errMissingToken   = echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed jwt")
	errInvalidToken   = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired jwt")
	errRefreshExpired = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpNotFound   = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// domainErrors maps the core sentinel errors to their HTTP status.
var domainErrors = []struct {
	err  error
	code int
}{
	{teacher.ErrInvalidCredentials, http.StatusUnauthorized},
	{teacher.ErrUsernameExists, http.StatusConflict},
	{teacher.ErrNotFound, http.StatusNotFound},
	{roster.ErrSectionExists, http.StatusConflict},
	{roster.ErrSectionNotFound, http.StatusNotFound},
	{roster.ErrStudentNotFound, http.StatusNotFound},
	{grade.ErrSectionLocked, http.StatusLocked},
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code, message := classify(err, translator)

		if code == http.StatusInternalServerError {
			args := []interface{}{errors.WithMessage(err, ctx.Request().Method+" "+ctx.Path())}
			if t, ok := ctx.Get(contextTeacherKey).(teacher.Teacher); ok {
				args = append(args, t)
			} else if claims, cErr := getContextClaims(ctx); cErr == nil {
				id, _ := claims.TeacherID()
				args = append(args, teacher.Teacher{ID: id, Username: claims.Username})
			}
			logger.Error(http.StatusText(code), args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// classify returns the HTTP status and response message of err.
func classify(err error, translator ut.Translator) (int, interface{}) {
	switch origErr := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if origErr.Internal != nil {
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
			}
		}
		msg := origErr.Message
		if m, ok := msg.(string); !ok || m == "" {
			msg = http.StatusText(origErr.Code)
		}
		return origErr.Code, msg
	case *echo.BindingError:
		return origErr.Code, origErr.Field + ": " + http.StatusText(origErr.Code)
	case validator.ValidationErrors:
		fldErrs := make(map[string]string, len(origErr))
		for _, vErr := range origErr {
			fldErrs[vErr.Field()] = vErr.Translate(translator)
		}
		return http.StatusBadRequest, fldErrs
	case *core.ValidationError:
		if origErr.Fields != nil {
			fldErrs := make(map[string]string, len(origErr.Fields))
			for _, fErr := range origErr.Fields {
				fldErrs[fErr.Field] = fErr.Error
			}
			return http.StatusBadRequest, fldErrs
		}
		return http.StatusBadRequest, origErr.Error()
	}

	for _, de := range domainErrors {
		if errors.Is(err, de.err) {
			return de.code, de.err.Error()
		}
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}
