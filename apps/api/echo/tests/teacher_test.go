package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/Blanc-byte/gradingsystem/apps/api/echo"
	"github.com/Blanc-byte/gradingsystem/core/teacher"
	"github.com/Blanc-byte/gradingsystem/tests"
)

func Test_teacherApi_signup(t *testing.T) {
	f := setup(t)
	testutil.CreateTeacher(t, f.teacherRepo, "Jose Rizal", "jrizal", "S3cure!pass")

	t.Run("created", func(t *testing.T) {
		body := marchallObj(t, teacher.NewTeacher{
			Fullname: " Maria Santos ",
			Username: "MSantos",
			Password: "Gr4debook!",
			Role:     teacher.RoleAdviser,
		})
		req, rec := newRequest(http.MethodPost, "/v1/auth/signup", body)
		f.serve(req, rec)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var got teacher.Summary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.NotZero(t, got.ID)
		assert.Equal(t, "Maria Santos", got.Fullname)
		assert.Equal(t, "msantos", got.Username)
		assert.Equal(t, teacher.RoleAdviser, got.Role)
	})

	tests := []httpTest{
		{
			name: "duplicate username", method: http.MethodPost, path: "/v1/auth/signup",
			body: marchallObj(t, teacher.NewTeacher{
				Fullname: "Another Rizal", Username: "JRizal", Password: "Gr4debook!", Role: teacher.RoleTeacher,
			}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: teacher.ErrUsernameExists.Error()}),
		},
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/auth/signup",
			body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"fullname": "this field is required",
				"username": "this field is required",
				"password": "this field is required",
				"role":     "this field is required",
			}),
		},
		{
			name: "weak password", method: http.MethodPost, path: "/v1/auth/signup",
			body: marchallObj(t, teacher.NewTeacher{
				Fullname: "Ana Cruz", Username: "acruz", Password: "12345678", Role: teacher.RoleTeacher,
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password cannot be entirely numeric"}),
		},
		{
			name: "password too long", method: http.MethodPost, path: "/v1/auth/signup",
			body: marchallObj(t, teacher.NewTeacher{
				Fullname: "Ana Cruz", Username: "acruz", Password: strings.Repeat("Gr4debook!", 8), Role: teacher.RoleTeacher,
			}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password must not be longer than 72 bytes"}),
		},
		{
			name: "malformed body", method: http.MethodPost, path: "/v1/auth/signup",
			body: []byte(`{"username": `), wantCode: http.StatusBadRequest,
		},
	}
	runTests(t, f, tests)
}

func Test_teacherApi_login(t *testing.T) {
	f := setup(t)
	tchr := testutil.CreateTeacher(t, f.teacherRepo, "Maria Santos", "msantos", "S3cure!pass")

	t.Run("success", func(t *testing.T) {
		body := marchallObj(t, LoginRequest{Username: " MSANTOS ", Password: "S3cure!pass"})
		req, rec := newRequest(http.MethodPost, "/v1/auth/login", body)
		f.serve(req, rec)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.NotEmpty(t, got.Token)
		assert.Equal(t, tchr.Summary(), got.Teacher)

		// the token authenticates the teacher
		req, rec = newAuthRequest(http.MethodGet, "/v1/auth/me", got.Token)
		f.serve(req, rec)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	invalid := marchallObj(t, httpErr{Error: teacher.ErrInvalidCredentials.Error()})
	tests := []httpTest{
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/auth/login",
			body:     marchallObj(t, LoginRequest{Username: "msantos", Password: "wrong!pass"}),
			wantCode: http.StatusUnauthorized, wantData: invalid,
		},
		{
			name: "unknown username", method: http.MethodPost, path: "/v1/auth/login",
			body:     marchallObj(t, LoginRequest{Username: "nobody", Password: "S3cure!pass"}),
			wantCode: http.StatusUnauthorized, wantData: invalid,
		},
		{
			name: "missing password", method: http.MethodPost, path: "/v1/auth/login",
			body:     marchallObj(t, LoginRequest{Username: "msantos"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"password": "this field is required"}),
		},
	}
	runTests(t, f, tests)
}

func Test_teacherApi_me(t *testing.T) {
	f := setup(t)
	tchr := testutil.CreateTeacher(t, f.teacherRepo, "Maria Santos", "msantos", "S3cure!pass")

	tests := []httpTest{
		{name: "Auth required", path: "/v1/auth/me", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "invalid token", path: "/v1/auth/me", token: "not.a.jwt",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{
			name: "unknown teacher", path: "/v1/auth/me", token: getToken(t, f.app, teacher.Teacher{ID: 999, Username: "ghost"}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "teacher not authenticated"}),
		},
		{
			name: "success", path: "/v1/auth/me", token: getToken(t, f.app, tchr),
			wantCode: http.StatusOK, wantData: marchallObj(t, tchr.Summary()),
		},
	}
	runTests(t, f, tests)
}

func Test_teacherApi_refreshToken(t *testing.T) {
	f := setup(t)
	tchr := testutil.CreateTeacher(t, f.teacherRepo, "Maria Santos", "msantos", "S3cure!pass")

	req, rec := newAuthRequest(http.MethodPost, "/v1/auth/token-refresh", getToken(t, f.app, tchr))
	f.serve(req, rec)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotEmpty(t, got.Token)

	req, rec = newRequest(http.MethodPost, "/v1/auth/token-refresh")
	f.serve(req, rec)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_teacherApi_queryRoles(t *testing.T) {
	f := setup(t)
	runTests(t, f, []httpTest{
		{name: "roles", path: "/v1/auth/roles", wantCode: http.StatusOK, wantData: marchallObj(t, teacher.Roles)},
	})
}
