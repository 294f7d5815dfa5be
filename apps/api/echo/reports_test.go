package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core/academic"
	"github.com/trezcool/academia/tests"
)

func Test_reportApi(t *testing.T) {
	server, repo := setup(t)
	info := testutil.CreateDepartment(t, repo, "INFO", "Informatique")
	math := testutil.CreateDepartment(t, repo, "MATH", "Mathématiques")
	year := testutil.CreateAcademicYear(t, repo, 2023, true)
	term := testutil.CreateTerm(t, repo, year.ID, 1)
	algo := testutil.CreateSubject(t, repo, term.ID, "ALGO101", 3, 4)
	phys := testutil.CreateSubject(t, repo, term.ID, "PHYS101", 2, 3)
	e1 := testutil.CreateStudent(t, repo, info.ID, "E001", "L1")
	e2 := testutil.CreateStudent(t, repo, info.ID, "E002", "L1")
	e3 := testutil.CreateStudent(t, repo, math.ID, "E003", "L2")

	testutil.CreateGrade(t, repo, e1.ID, algo.ID, academic.KindContinuous, "12")
	testutil.CreateGrade(t, repo, e1.ID, algo.ID, academic.KindExam, "16")
	testutil.CreateGrade(t, repo, e1.ID, phys.ID, academic.KindExam, "8")
	testutil.CreateGrade(t, repo, e3.ID, algo.ID, academic.KindExam, "9")

	t.Run("transcript", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/v1/transcripts/students/"+e1.ID+"/terms/"+term.ID)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		data := decode(t, rec)
		assert.Equal(t, "11.60", data["average"])
		assert.Equal(t, "Passable", data["mention"])
		assert.Equal(t, float64(7), data["total_credits"])
		assert.Equal(t, float64(4), data["credits_earned"])
		assert.Equal(t, "57.14%", data["pass_rate"])

		results := data["results"].([]interface{})
		require.Len(t, results, 2)
		first := results[0].(map[string]interface{})
		assert.Equal(t, "14.00", first["average"])
		assert.Equal(t, true, first["passed"])
	})

	t.Run("transcript without grades", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/v1/transcripts/students/"+e2.ID+"/terms/"+term.ID)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		data := decode(t, rec)
		assert.Equal(t, "N/A", data["average"])
		assert.Equal(t, "N/A", data["mention"])
		assert.Equal(t, "N/A", data["pass_rate"])
		assert.Equal(t, float64(0), data["total_credits"])
	})

	t.Run("ranking", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/v1/rankings/terms/"+term.ID)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		data := decode(t, rec)
		assert.Equal(t, float64(3), data["cohort_size"])

		entries := data["entries"].([]interface{})
		require.Len(t, entries, 3)
		want := []struct {
			id      string
			average string
			rank    interface{}
		}{
			{e1.ID, "11.60", float64(1)},
			{e3.ID, "9.00", float64(2)},
			{e2.ID, "N/A", nil},
		}
		for i, w := range want {
			entry := entries[i].(map[string]interface{})
			assert.Equal(t, w.id, entry["student"].(map[string]interface{})["id"])
			assert.Equal(t, w.average, entry["average"])
			assert.Equal(t, w.rank, entry["rank"])
		}
	})

	t.Run("ranking filtered by department and level", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/v1/rankings/terms/"+term.ID+"?department_id="+info.ID+"&level=l1")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		data := decode(t, rec)
		assert.Equal(t, float64(2), data["cohort_size"])
	})

	t.Run("subject statistics", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/v1/statistics/subjects/"+algo.ID)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		data := decode(t, rec)
		assert.Equal(t, false, data["no_data"])
		stats := data["statistics"].(map[string]interface{})
		assert.Equal(t, float64(3), stats["count"])
		assert.Equal(t, "12.33", stats["mean"])
		assert.Equal(t, "9.00", stats["min"])
		assert.Equal(t, "16.00", stats["max"])
		assert.Equal(t, float64(2), stats["pass_count"])
		assert.Equal(t, float64(1), stats["fail_count"])
		assert.Equal(t, "66.67%", stats["pass_rate"])
	})

	t.Run("subject statistics without grades", func(t *testing.T) {
		empty := testutil.CreateSubject(t, repo, term.ID, "CHEM101", 1, 2)
		rec := do(server, http.MethodGet, "/v1/statistics/subjects/"+empty.ID)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		data := decode(t, rec)
		assert.Equal(t, true, data["no_data"])
		assert.Nil(t, data["statistics"])
	})

	t.Run("term statistics", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/v1/statistics/terms/"+term.ID)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		data := decode(t, rec)
		assert.Equal(t, float64(3), data["subject_count"]) // CHEM101 included
		assert.Equal(t, float64(2), data["student_count"])
		assert.Len(t, data["subjects"], 2)
	})

	notFound := []httpTest{
		{
			name:     "transcript of unknown student",
			path:     "/v1/transcripts/students/unknown/terms/" + term.ID,
			wantData: marshallObj(t, httpErr{Error: "student not found"}),
		},
		{
			name:     "transcript of unknown term",
			path:     "/v1/transcripts/students/" + e1.ID + "/terms/unknown",
			wantData: marshallObj(t, httpErr{Error: "term not found"}),
		},
		{
			name:     "ranking of unknown term",
			path:     "/v1/rankings/terms/unknown",
			wantData: marshallObj(t, httpErr{Error: "term not found"}),
		},
		{
			name:     "statistics of unknown subject",
			path:     "/v1/statistics/subjects/unknown",
			wantData: marshallObj(t, httpErr{Error: "subject not found"}),
		},
		{
			name:     "statistics of unknown term",
			path:     "/v1/statistics/terms/unknown",
			wantData: marshallObj(t, httpErr{Error: "term not found"}),
		},
	}
	for _, tt := range notFound {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodGet
			tt.wantCode = http.StatusNotFound
			testHTTP(t, server, tt)
		})
	}
}
