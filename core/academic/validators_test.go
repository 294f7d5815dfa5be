package academic

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
)

func newValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func dec(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

// failedFields returns the JSON names of the fields that failed validation.
func failedFields(t *testing.T, err error) []string {
	t.Helper()
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok, "unexpected error: %v", err)
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}

func TestNewAcademicYear_Validate(t *testing.T) {
	validate := newValidator()

	tests := []struct {
		name       string
		year       NewAcademicYear
		wantFields []string
	}{
		{name: "valid", year: NewAcademicYear{Label: "2023-2024", StartDate: "2023-09-01", EndDate: "2024-07-31"}},
		{name: "bad label", year: NewAcademicYear{Label: "2023/2024", StartDate: "2023-09-01", EndDate: "2024-07-31"}, wantFields: []string{"label"}},
		{name: "bad date", year: NewAcademicYear{Label: "2023-2024", StartDate: "01/09/2023", EndDate: "2024-07-31"}, wantFields: []string{"start_date"}},
		{name: "end before start", year: NewAcademicYear{Label: "2023-2024", StartDate: "2024-09-01", EndDate: "2024-07-31"}, wantFields: []string{"end_date"}},
		{name: "end equals start", year: NewAcademicYear{Label: "2023-2024", StartDate: "2024-07-31", EndDate: "2024-07-31"}, wantFields: []string{"end_date"}},
		{name: "missing", year: NewAcademicYear{}, wantFields: []string{"label", "start_date", "end_date"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.year.Validate(validate)
			assert.ElementsMatch(t, tt.wantFields, failedFields(t, err))
		})
	}
}

func TestNewGrade_Validate(t *testing.T) {
	validate := newValidator()
	valid := func() NewGrade {
		return NewGrade{Value: dec("12.5"), Kind: KindExam, StudentID: "e1", SubjectID: "m1"}
	}

	tests := []struct {
		name       string
		edit       func(ng *NewGrade)
		wantFields []string
	}{
		{name: "valid", edit: func(ng *NewGrade) {}},
		{name: "zero is a grade", edit: func(ng *NewGrade) { ng.Value = dec("0") }},
		{name: "twenty", edit: func(ng *NewGrade) { ng.Value = dec("20") }},
		{name: "missing value", edit: func(ng *NewGrade) { ng.Value = nil }, wantFields: []string{"value"}},
		{name: "above twenty", edit: func(ng *NewGrade) { ng.Value = dec("20.01") }, wantFields: []string{"value"}},
		{name: "negative", edit: func(ng *NewGrade) { ng.Value = dec("-1") }, wantFields: []string{"value"}},
		{name: "three decimals", edit: func(ng *NewGrade) { ng.Value = dec("12.125") }, wantFields: []string{"value"}},
		{name: "unknown kind", edit: func(ng *NewGrade) { ng.Kind = "Oral" }, wantFields: []string{"kind"}},
		{name: "unknown session", edit: func(ng *NewGrade) { ng.Session = "ete" }, wantFields: []string{"session"}},
		{name: "missing refs", edit: func(ng *NewGrade) { ng.StudentID, ng.SubjectID = " ", "" }, wantFields: []string{"student_id", "subject_id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ng := valid()
			tt.edit(&ng)
			err := ng.Validate(validate)
			assert.ElementsMatch(t, tt.wantFields, failedFields(t, err))
		})
	}

	t.Run("session defaults to normale", func(t *testing.T) {
		ng := valid()
		require.NoError(t, ng.Validate(validate))
		assert.Equal(t, SessionNormal, ng.Session)
	})
}

func TestUpdateGrade_Validate(t *testing.T) {
	validate := newValidator()

	tests := []struct {
		name       string
		value      *decimal.Decimal
		wantFields []string
	}{
		{name: "valid", value: dec("15.25")},
		{name: "zero", value: dec("0")},
		{name: "missing", wantFields: []string{"value"}},
		{name: "three decimals", value: dec("15.255"), wantFields: []string{"value"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ug := UpdateGrade{Value: tt.value}
			assert.ElementsMatch(t, tt.wantFields, failedFields(t, ug.Validate(validate)))
		})
	}
}

func TestNewStudent_Validate(t *testing.T) {
	validate := newValidator()

	ns := NewStudent{
		RegistrationNumber: " e2023001 ",
		FirstName:          "  Amina ",
		LastName:           "Kabila",
		Email:              "Amina@Univ.TEST",
		Level:              "l2",
		DepartmentID:       "d1",
	}
	require.NoError(t, ns.Validate(validate))
	assert.Equal(t, "E2023001", ns.RegistrationNumber)
	assert.Equal(t, "Amina", ns.FirstName)
	assert.Equal(t, "amina@univ.test", ns.Email)
	assert.Equal(t, "L2", ns.Level)

	ns.Level = "L4"
	assert.Equal(t, []string{"level"}, failedFields(t, ns.Validate(validate)))
}

func TestNewSubject_Validate(t *testing.T) {
	validate := newValidator()

	tests := []struct {
		name       string
		subj       NewSubject
		wantFields []string
	}{
		{name: "valid", subj: NewSubject{Code: "math101", Name: "Analyse", Coefficient: 3, Credits: 4, TermID: "s1"}},
		{name: "coefficient out of range", subj: NewSubject{Code: "M", Name: "Analyse", Coefficient: 11, Credits: 4, TermID: "s1"}, wantFields: []string{"coefficient"}},
		{name: "credits out of range", subj: NewSubject{Code: "M", Name: "Analyse", Coefficient: 1, Credits: 31, TermID: "s1"}, wantFields: []string{"credits"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.subj.Validate(validate)
			assert.ElementsMatch(t, tt.wantFields, failedFields(t, err))
		})
	}
}
