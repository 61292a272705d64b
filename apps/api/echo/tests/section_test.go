package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Blanc-byte/gradingsystem/core/roster"
	"github.com/Blanc-byte/gradingsystem/tests"
)

func Test_sectionApi_create(t *testing.T) {
	f := setup(t)
	tchr := testutil.CreateTeacher(t, f.teacherRepo, "Maria Santos", "msantos", "S3cure!pass")
	token := getToken(t, f.app, tchr)

	t.Run("created", func(t *testing.T) {
		body := []byte(`{"name": " Rizal ", "grade_year": 8, "sy": "2024-2025"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/sections", token, body)
		f.serve(req, rec)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var got roster.Section
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.NotZero(t, got.ID)
		assert.Equal(t, "Rizal", got.Name)
		assert.Equal(t, 8, got.GradeYear)
		assert.Equal(t, "2024-2025", got.SchoolYear)
		assert.Equal(t, tchr.ID, got.TeacherID)
		assert.False(t, got.Locked)
	})

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodPost, path: "/v1/sections",
			body: []byte(`{"name": "Mabini", "grade_year": 7}`), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "second section", method: http.MethodPost, path: "/v1/sections", token: token,
			body:     []byte(`{"name": "Mabini", "grade_year": 7}`),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: roster.ErrSectionExists.Error()}),
		},
		{
			name: "invalid school year", method: http.MethodPost, path: "/v1/sections", token: token,
			body:     []byte(`{"name": "Mabini", "grade_year": 7, "sy": "2024-2026"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"sy": "school year must look like 2024-2025"}),
		},
		{
			name: "missing name", method: http.MethodPost, path: "/v1/sections", token: token,
			body:     []byte(`{"grade_year": 7}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "grade year out of range", method: http.MethodPost, path: "/v1/sections", token: token,
			body: []byte(`{"name": "Mabini", "grade_year": 13}`), wantCode: http.StatusBadRequest,
		},
	}
	runTests(t, f, tests)
}

func Test_sectionApi_detail(t *testing.T) {
	f := setup(t)
	tchr := testutil.CreateTeacher(t, f.teacherRepo, "Maria Santos", "msantos", "S3cure!pass")
	other := testutil.CreateTeacher(t, f.teacherRepo, "Jose Rizal", "jrizal", "S3cure!pass")
	sec := testutil.CreateSection(t, f.rosterRepo, tchr.ID, "Rizal", 8)
	otherSec := testutil.CreateSection(t, f.rosterRepo, other.ID, "Bonifacio", 9)
	token := getToken(t, f.app, tchr)

	path := func(id int) string { return fmt.Sprintf("/v1/sections/%d", id) }
	notFound := marchallObj(t, httpErr{Error: roster.ErrSectionNotFound.Error()})

	locked := sec
	locked.Locked = true
	renamed := locked
	renamed.Name = "Mabini"

	tests := []httpTest{
		{name: "list", path: "/v1/sections", token: token, wantCode: http.StatusOK, wantData: marchallObj(t, []roster.Section{sec})},
		{name: "get", path: path(sec.ID), token: token, wantCode: http.StatusOK, wantData: marchallObj(t, sec)},
		{name: "get (not owned)", path: path(otherSec.ID), token: token, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "get (unknown)", path: path(999), token: token, wantCode: http.StatusNotFound, wantData: notFound},
		{
			name: "get (bad id)", path: "/v1/sections/abc", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "lock", method: http.MethodPatch, path: path(sec.ID), token: token,
			body: []byte(`{"locked": true}`), wantCode: http.StatusOK, wantData: marchallObj(t, locked),
		},
		{
			name: "rename", method: http.MethodPatch, path: path(sec.ID), token: token,
			body: []byte(`{"name": "Mabini"}`), wantCode: http.StatusOK, wantData: marchallObj(t, renamed),
		},
		{
			name: "update (not owned)", method: http.MethodPatch, path: path(otherSec.ID), token: token,
			body: []byte(`{"locked": true}`), wantCode: http.StatusNotFound, wantData: notFound,
		},
		{name: "delete (not owned)", method: http.MethodDelete, path: path(otherSec.ID), token: token, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "delete", method: http.MethodDelete, path: path(sec.ID), token: token, wantCode: http.StatusNoContent},
		{name: "get (deleted)", path: path(sec.ID), token: token, wantCode: http.StatusNotFound, wantData: notFound},
	}
	runTests(t, f, tests)
}

func Test_sectionApi_stats(t *testing.T) {
	f := setup(t)
	tchr := testutil.CreateTeacher(t, f.teacherRepo, "Maria Santos", "msantos", "S3cure!pass")
	other := testutil.CreateTeacher(t, f.teacherRepo, "Jose Rizal", "jrizal", "S3cure!pass")
	sec := testutil.CreateSection(t, f.rosterRepo, tchr.ID, "Rizal", 8)
	otherSec := testutil.CreateSection(t, f.rosterRepo, other.ID, "Bonifacio", 9)
	testutil.CreateStudent(t, f.rosterRepo, sec.ID, "Ana Cruz")
	testutil.CreateStudent(t, f.rosterRepo, sec.ID, "Ben Reyes")
	token := getToken(t, f.app, tchr)

	rizal := roster.SectionStat{Section: sec, TeacherName: tchr.Fullname, StudentCount: 2}
	bonifacio := roster.SectionStat{Section: otherSec, TeacherName: other.Fullname}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/sections/stats", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "grade_year", path: "/v1/sections/stats?grade_year=9", token: token, wantCode: http.StatusOK, wantData: marchallObj(t, []roster.SectionStat{bonifacio})},
		{name: "search", path: "/v1/sections/stats?q=RIZ", token: token, wantCode: http.StatusOK, wantData: marchallObj(t, []roster.SectionStat{rizal})},
		{name: "default ordering", path: "/v1/sections/stats", token: token, wantCode: http.StatusOK, wantData: marchallObj(t, []roster.SectionStat{bonifacio, rizal})},
		{name: "ordered by name", path: "/v1/sections/stats?ordering=name", token: token, wantCode: http.StatusOK, wantData: marchallObj(t, []roster.SectionStat{bonifacio, rizal})},
		{name: "ordered by students desc", path: "/v1/sections/stats?ordering=-student_count,name", token: token, wantCode: http.StatusOK, wantData: marchallObj(t, []roster.SectionStat{rizal, bonifacio})},
		{name: "ordered by grade year", path: "/v1/sections/stats?ordering=grade_year", token: token, wantCode: http.StatusOK, wantData: marchallObj(t, []roster.SectionStat{rizal, bonifacio})},
		{
			name: "unknown ordering", path: "/v1/sections/stats?ordering=-password", token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"ordering": `cannot order by "password"`}),
		},
	}
	runTests(t, f, tests)
}
