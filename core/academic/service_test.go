package academic_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academic"
	"github.com/trezcool/academia/storage/database/inmem"
	"github.com/trezcool/academia/tests"
)

func setup(t *testing.T) (*academic.Service, academic.Repository) {
	t.Helper()
	repo := inmemdb.NewAcademicRepository(inmemdb.Open())
	return academic.NewService(repo), repo
}

func TestService_ActivateAcademicYear(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)

	y1 := testutil.CreateAcademicYear(t, repo, 2022, true)
	y2 := testutil.CreateAcademicYear(t, repo, 2023, false)
	y3 := testutil.CreateAcademicYear(t, repo, 2024, false)

	active, err := svc.GetActiveAcademicYear(ctx)
	require.NoError(t, err)
	assert.Equal(t, y1.ID, active.ID)

	year, err := svc.ActivateAcademicYear(ctx, y2.ID)
	require.NoError(t, err)
	assert.True(t, year.IsActive)

	actives, err := svc.FilterAcademicYears(ctx, academic.AcademicYearFilter{IsActive: boolPtr(true)})
	require.NoError(t, err)
	require.Len(t, actives, 1)
	assert.Equal(t, y2.ID, actives[0].ID)

	// concurrent activations still leave a single active year
	var wg sync.WaitGroup
	for _, id := range []string{y1.ID, y2.ID, y3.ID, y1.ID, y3.ID} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _ = svc.ActivateAcademicYear(ctx, id)
		}(id)
	}
	wg.Wait()
	actives, err = svc.FilterAcademicYears(ctx, academic.AcademicYearFilter{IsActive: boolPtr(true)})
	require.NoError(t, err)
	assert.Len(t, actives, 1)

	_, err = svc.ActivateAcademicYear(ctx, "unknown")
	assert.Equal(t, academic.ErrAcademicYearNotFound, err)
}

func TestService_CreateAcademicYear_active(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	old := testutil.CreateAcademicYear(t, repo, 2022, true)

	year, err := svc.CreateAcademicYear(ctx, academic.NewAcademicYear{
		Label: "2023-2024", StartDate: "2023-09-01", EndDate: "2024-07-31", IsActive: true,
	})
	require.NoError(t, err)
	assert.True(t, year.IsActive)

	old, err = svc.GetAcademicYear(ctx, old.ID)
	require.NoError(t, err)
	assert.False(t, old.IsActive)

	t.Run("a failed creation leaves the active year untouched", func(t *testing.T) {
		_, err := svc.CreateAcademicYear(ctx, academic.NewAcademicYear{
			Label: "2023-2024", StartDate: "2023-09-01", EndDate: "2024-07-31", IsActive: true,
		})
		assert.Equal(t, academic.ErrYearLabelExists, err)

		active, err := svc.GetActiveAcademicYear(ctx)
		require.NoError(t, err)
		assert.Equal(t, year.ID, active.ID)

		years, err := svc.FilterAcademicYears(ctx, academic.AcademicYearFilter{})
		require.NoError(t, err)
		assert.Len(t, years, 2)
	})
}

func TestService_UpdateAcademicYear(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	active := testutil.CreateAcademicYear(t, repo, 2022, true)
	year := testutil.CreateAcademicYear(t, repo, 2023, false)

	updated, err := svc.UpdateAcademicYear(ctx, year.ID, academic.NewAcademicYear{
		Label: "2023-2024", StartDate: "2023-10-01", EndDate: "2024-06-30",
	})
	require.NoError(t, err)
	assert.Equal(t, time.October, updated.StartDate.Month())
	assert.False(t, updated.IsActive)
	assert.Equal(t, year.CreatedAt, updated.CreatedAt)

	t.Run("is_active goes through activation", func(t *testing.T) {
		updated, err := svc.UpdateAcademicYear(ctx, year.ID, academic.NewAcademicYear{
			Label: "2023-2024", StartDate: "2023-10-01", EndDate: "2024-06-30", IsActive: true,
		})
		require.NoError(t, err)
		assert.True(t, updated.IsActive)

		old, err := svc.GetAcademicYear(ctx, active.ID)
		require.NoError(t, err)
		assert.False(t, old.IsActive)
	})

	t.Run("a false is_active keeps the year active", func(t *testing.T) {
		updated, err := svc.UpdateAcademicYear(ctx, year.ID, academic.NewAcademicYear{
			Label: "2023-2024", StartDate: "2023-09-01", EndDate: "2024-07-31",
		})
		require.NoError(t, err)
		assert.True(t, updated.IsActive)
	})

	t.Run("label clash", func(t *testing.T) {
		_, err := svc.UpdateAcademicYear(ctx, year.ID, academic.NewAcademicYear{
			Label: active.Label, StartDate: "2023-09-01", EndDate: "2024-07-31",
		})
		assert.Equal(t, academic.ErrYearLabelExists, err)
	})

	t.Run("unknown year", func(t *testing.T) {
		_, err := svc.UpdateAcademicYear(ctx, "unknown", academic.NewAcademicYear{
			Label: "2030-2031", StartDate: "2030-09-01", EndDate: "2031-07-31",
		})
		assert.Equal(t, academic.ErrAcademicYearNotFound, err)
	})
}

func TestService_UpdateTerm(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	year := testutil.CreateAcademicYear(t, repo, 2023, true)
	other := testutil.CreateAcademicYear(t, repo, 2024, false)
	s1 := testutil.CreateTerm(t, repo, year.ID, 1)
	testutil.CreateTerm(t, repo, year.ID, 2)

	term, err := svc.UpdateTerm(ctx, s1.ID, academic.NewTerm{Name: "Premier semestre", Number: 1, AcademicYearID: year.ID})
	require.NoError(t, err)
	assert.Equal(t, "Premier semestre", term.Name)
	assert.Equal(t, s1.CreatedAt, term.CreatedAt)

	tests := []struct {
		name    string
		id      string
		nt      academic.NewTerm
		wantErr error
	}{
		{
			name:    "number taken in its year",
			id:      s1.ID,
			nt:      academic.NewTerm{Name: "Semestre 2", Number: 2, AcademicYearID: year.ID},
			wantErr: academic.ErrTermNumberExists,
		},
		{
			name: "moved to another year",
			id:   s1.ID,
			nt:   academic.NewTerm{Name: "Semestre 2", Number: 2, AcademicYearID: other.ID},
		},
		{
			name:    "unknown term",
			id:      "unknown",
			nt:      academic.NewTerm{Name: "Semestre 3", Number: 3, AcademicYearID: year.ID},
			wantErr: academic.ErrTermNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateTerm(ctx, tt.id, tt.nt)
			assert.Equal(t, tt.wantErr, err)
		})
	}

	t.Run("unknown year", func(t *testing.T) {
		_, err := svc.UpdateTerm(ctx, s1.ID, academic.NewTerm{Name: "Semestre 1", Number: 1, AcademicYearID: "unknown"})
		verr, ok := err.(*core.ValidationError)
		require.True(t, ok, "unexpected error: %v", err)
		assert.Equal(t, []core.FieldError{{Field: "academic_year_id", Error: "academic year not found"}}, verr.Fields)
	})
}

func TestService_DeleteAcademicYear(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	year := testutil.CreateAcademicYear(t, repo, 2023, false)
	term := testutil.CreateTerm(t, repo, year.ID, 1)

	err := svc.DeleteAcademicYear(ctx, year.ID)
	assert.True(t, core.IsConflict(err))

	require.NoError(t, svc.DeleteTerm(ctx, term.ID))
	require.NoError(t, svc.DeleteAcademicYear(ctx, year.ID))
	assert.True(t, core.IsNotFound(svc.DeleteAcademicYear(ctx, year.ID)))
}

type fixtures struct {
	dept    academic.Department
	student academic.Student
	subject academic.Subject
}

func seed(t *testing.T, repo academic.Repository) fixtures {
	dept := testutil.CreateDepartment(t, repo, "INFO", "Informatique")
	year := testutil.CreateAcademicYear(t, repo, 2023, true)
	term := testutil.CreateTerm(t, repo, year.ID, 1)
	return fixtures{
		dept:    dept,
		student: testutil.CreateStudent(t, repo, dept.ID, "E001", "L1"),
		subject: testutil.CreateSubject(t, repo, term.ID, "MATH101", 3, 4),
	}
}

func TestService_CreateGrade(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	fx := seed(t, repo)

	ng := academic.NewGrade{
		Value:     testutil.Decimal("12.5"),
		Kind:      academic.KindExam,
		Session:   academic.SessionNormal,
		StudentID: fx.student.ID,
		SubjectID: fx.subject.ID,
	}
	grade, err := svc.CreateGrade(ctx, ng)
	require.NoError(t, err)
	assert.NotEmpty(t, grade.ID)
	assert.Equal(t, "12.5", grade.Value.String())

	t.Run("duplicate tuple", func(t *testing.T) {
		_, err := svc.CreateGrade(ctx, ng)
		assert.Equal(t, academic.ErrDuplicateGrade, err)
		assert.True(t, core.IsConflict(err))
	})

	t.Run("retake session is another tuple", func(t *testing.T) {
		retake := ng
		retake.Session = academic.SessionRetake
		_, err := svc.CreateGrade(ctx, retake)
		assert.NoError(t, err)
	})

	t.Run("unknown student", func(t *testing.T) {
		bad := ng
		bad.StudentID = "unknown"
		_, err := svc.CreateGrade(ctx, bad)
		verr, ok := err.(*core.ValidationError)
		require.True(t, ok, "unexpected error: %v", err)
		assert.Equal(t, []core.FieldError{{Field: "student_id", Error: "student not found"}}, verr.Fields)
	})

	t.Run("value edit", func(t *testing.T) {
		updated, err := svc.UpdateGrade(ctx, grade.ID, academic.UpdateGrade{Value: testutil.Decimal("15")})
		require.NoError(t, err)
		assert.Equal(t, "15", updated.Value.String())
		assert.Equal(t, grade.StudentID, updated.StudentID)
		assert.Equal(t, grade.Kind, updated.Kind)

		_, err = svc.UpdateGrade(ctx, "unknown", academic.UpdateGrade{Value: testutil.Decimal("15")})
		assert.Equal(t, academic.ErrGradeNotFound, err)
	})
}

func TestService_CreateGrades_allOrNothing(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	fx := seed(t, repo)
	other := testutil.CreateStudent(t, repo, fx.dept.ID, "E002", "L1")

	newGrade := func(studentID string, kind academic.EvaluationKind) academic.NewGrade {
		return academic.NewGrade{
			Value:     testutil.Decimal("10"),
			Kind:      kind,
			Session:   academic.SessionNormal,
			StudentID: studentID,
			SubjectID: fx.subject.ID,
		}
	}

	_, err := svc.CreateGrades(ctx, academic.BulkGrades{Grades: []academic.NewGrade{
		newGrade(fx.student.ID, academic.KindExam),
		newGrade(other.ID, academic.KindExam),
		newGrade(fx.student.ID, academic.KindExam), // duplicate inside the batch
	}})
	assert.Equal(t, academic.ErrDuplicateGrade, err)

	grades, err := svc.FilterGrades(ctx, academic.GradeFilter{SubjectID: fx.subject.ID})
	require.NoError(t, err)
	assert.Empty(t, grades)

	created, err := svc.CreateGrades(ctx, academic.BulkGrades{Grades: []academic.NewGrade{
		newGrade(fx.student.ID, academic.KindExam),
		newGrade(fx.student.ID, academic.KindContinuous),
		newGrade(other.ID, academic.KindExam),
	}})
	require.NoError(t, err)
	assert.Len(t, created, 3)

	grades, err = svc.StudentGrades(ctx, fx.student.ID)
	require.NoError(t, err)
	assert.Len(t, grades, 2)
}

func TestService_UpdateStudent(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	fx := seed(t, repo)
	testutil.CreateStudent(t, repo, fx.dept.ID, "E002", "L1")

	stud, err := svc.UpdateStudent(ctx, fx.student.ID, academic.UpdateStudent{Level: "L2"})
	require.NoError(t, err)
	assert.Equal(t, "L2", stud.Level)
	assert.Equal(t, fx.student.Email, stud.Email)

	_, err = svc.UpdateStudent(ctx, fx.student.ID, academic.UpdateStudent{Email: "e002@univ.test"})
	assert.Equal(t, academic.ErrStudentEmailExists, err)

	_, err = svc.UpdateStudent(ctx, fx.student.ID, academic.UpdateStudent{DepartmentID: "unknown"})
	_, ok := err.(*core.ValidationError)
	assert.True(t, ok)
}

func TestService_DepartmentStatistics(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t)
	dept := testutil.CreateDepartment(t, repo, "INFO", "Informatique")
	other := testutil.CreateDepartment(t, repo, "MATH", "Mathématiques")
	testutil.CreateStudent(t, repo, dept.ID, "E001", "L3")
	testutil.CreateStudent(t, repo, dept.ID, "E002", "L1")
	testutil.CreateStudent(t, repo, dept.ID, "E003", "L1")
	testutil.CreateStudent(t, repo, other.ID, "E004", "M1")
	testutil.CreateTeacher(t, repo, dept.ID, "T001")
	testutil.CreateTeacher(t, repo, "", "T002")

	stats, err := svc.DepartmentStatistics(ctx, dept.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.StudentCount)
	assert.Equal(t, 1, stats.TeacherCount)
	assert.Equal(t, []academic.LevelCount{{Level: "L1", Count: 2}, {Level: "L3", Count: 1}}, stats.StudentsPerLevel)

	_, err = svc.DepartmentStatistics(ctx, "unknown")
	assert.Equal(t, academic.ErrDepartmentNotFound, err)

	assert.Equal(t, academic.ErrInUse, svc.DeleteDepartment(ctx, dept.ID))
}

func boolPtr(b bool) *bool {
	return &b
}
