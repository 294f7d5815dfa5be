package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academic"
)

var (
	epoch = time.Date(2023, time.September, 1, 8, 0, 0, 0, time.UTC)
	ticks int64
)

// Now returns a strictly increasing timestamp, so that fixtures keep their creation order.
func Now() time.Time {
	return epoch.Add(time.Duration(atomic.AddInt64(&ticks, 1)) * time.Second)
}

// NewValidator returns a validator with every app validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	academic.InitValidators(validate, translator)
	return validate, translator
}

// Decimal parses a grade value as sent in a NewGrade or an UpdateGrade.
func Decimal(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func fail(t *testing.T, fn string, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s() failed: %v", fn, err)
	}
}

func CreateDepartment(t *testing.T, repo academic.Repository, code, name string) academic.Department {
	now := Now()
	dept, err := repo.CreateDepartment(context.Background(), academic.Department{
		ID:        uuid.NewString(),
		Code:      code,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	fail(t, "createDepartment", err)
	return dept
}

func CreateStudent(t *testing.T, repo academic.Repository, deptID, regNo, level string) academic.Student {
	now := Now()
	stud, err := repo.CreateStudent(context.Background(), academic.Student{
		ID:                 uuid.NewString(),
		RegistrationNumber: regNo,
		FirstName:          "Student",
		LastName:           regNo,
		Email:              strings.ToLower(regNo) + "@univ.test",
		Level:              level,
		DepartmentID:       deptID,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	fail(t, "createStudent", err)
	return stud
}

func CreateTeacher(t *testing.T, repo academic.Repository, deptID, regNo string) academic.Teacher {
	now := Now()
	teacher, err := repo.CreateTeacher(context.Background(), academic.Teacher{
		ID:                 uuid.NewString(),
		RegistrationNumber: regNo,
		FirstName:          "Teacher",
		LastName:           regNo,
		Email:              strings.ToLower(regNo) + "@univ.test",
		Title:              null.StringFrom("Professeur"),
		DepartmentID:       null.NewString(deptID, deptID != ""),
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	fail(t, "createTeacher", err)
	return teacher
}

// CreateAcademicYear creates the year starting on September 1st of startYear.
func CreateAcademicYear(t *testing.T, repo academic.Repository, startYear int, active bool) academic.AcademicYear {
	ctx := context.Background()
	now := Now()
	year, err := repo.CreateAcademicYear(ctx, academic.AcademicYear{
		ID:        uuid.NewString(),
		Label:     fmt.Sprintf("%d-%d", startYear, startYear+1),
		StartDate: time.Date(startYear, time.September, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(startYear+1, time.July, 31, 0, 0, 0, 0, time.UTC),
		CreatedAt: now,
		UpdatedAt: now,
	})
	fail(t, "createAcademicYear", err)
	if active {
		year, err = repo.ActivateAcademicYear(ctx, year.ID, now)
		fail(t, "activateAcademicYear", err)
	}
	return year
}

func CreateTerm(t *testing.T, repo academic.Repository, yearID string, number int) academic.Term {
	now := Now()
	term, err := repo.CreateTerm(context.Background(), academic.Term{
		ID:             uuid.NewString(),
		Name:           fmt.Sprintf("Semestre %d", number),
		Number:         number,
		AcademicYearID: yearID,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	fail(t, "createTerm", err)
	return term
}

func CreateSubject(t *testing.T, repo academic.Repository, termID, code string, coefficient, credits int) academic.Subject {
	now := Now()
	subj, err := repo.CreateSubject(context.Background(), academic.Subject{
		ID:          uuid.NewString(),
		Code:        code,
		Name:        code,
		Coefficient: coefficient,
		Credits:     credits,
		TermID:      termID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	fail(t, "createSubject", err)
	return subj
}

// CreateGrade records a normal-session grade; value is a decimal string (eg. "12.5").
func CreateGrade(t *testing.T, repo academic.Repository, studentID, subjectID string, kind academic.EvaluationKind, value string, session ...academic.Session) academic.Grade {
	sess := academic.SessionNormal
	if len(session) > 0 {
		sess = session[0]
	}
	now := Now()
	grades, err := repo.CreateGrades(context.Background(), academic.Grade{
		ID:        uuid.NewString(),
		Value:     decimal.RequireFromString(value),
		Kind:      kind,
		Session:   sess,
		StudentID: studentID,
		SubjectID: subjectID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	fail(t, "createGrade", err)
	return grades[0]
}
