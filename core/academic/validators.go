package academic

import (
	"regexp"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/trezcool/academia/core"
)

const dateLayout = "2006-01-02"

var (
	// custom validation tags & texts
	yearLabelTag   = "yearlabel"
	yearLabelText  = "{0} must have the format YYYY-YYYY"
	yearLabelRegex = regexp.MustCompile(`^\d{4}-\d{4}$`)

	levelTag    = "level"
	levelText   = "{0} must be one of " + strings.Join(Levels, ", ")
	evalKindTag = "evalkind"
	sessionTag  = "session"

	endDateText  = "end_date must be after start_date"
	decimalsText = "value must have at most 2 decimals"
)

// InitValidators registers the academic validation tags on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(yearLabelTag, yearLabelValidation)
	registerTranslation(validate, translator, yearLabelTag, yearLabelText)

	_ = validate.RegisterValidation(levelTag, levelValidation)
	registerTranslation(validate, translator, levelTag, levelText)

	_ = validate.RegisterValidation(evalKindTag, evalKindValidation)
	registerTranslation(validate, translator, evalKindTag, "{0} must be one of "+joinKinds())

	_ = validate.RegisterValidation(sessionTag, sessionValidation)
	registerTranslation(validate, translator, sessionTag, "{0} must be one of "+joinSessions())

	validate.RegisterStructValidation(academicYearStructLevelValidation, NewAcademicYear{})
	validate.RegisterStructValidation(gradeValueStructLevelValidation, NewGrade{})
	validate.RegisterStructValidation(updateGradeStructLevelValidation, UpdateGrade{})
	core.RegisterCustomTranslation(validate, translator, "enddate", endDateText)
	core.RegisterCustomTranslation(validate, translator, "decimals", decimalsText)
}

// registerTranslation is like core.RegisterCustomTranslation, but passes the field name as {0}.
func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func upperCode(s string) string {
	return strings.ToUpper(core.CleanString(s))
}

func joinKinds() string {
	names := make([]string, 0, len(EvaluationKinds))
	for _, k := range EvaluationKinds {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

func joinSessions() string {
	names := make([]string, 0, len(Sessions))
	for _, s := range Sessions {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

func IsValidLevel(level string) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}

func IsValidKind(kind EvaluationKind) bool {
	for _, k := range EvaluationKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func IsValidSession(session Session) bool {
	for _, s := range Sessions {
		if s == session {
			return true
		}
	}
	return false
}

// hasTwoDecimals reports whether d has no more than 2 fractional digits.
func hasTwoDecimals(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2))
}

func yearLabelValidation(fl validator.FieldLevel) bool {
	return yearLabelRegex.MatchString(fl.Field().String())
}

func levelValidation(fl validator.FieldLevel) bool {
	return IsValidLevel(fl.Field().String())
}

func evalKindValidation(fl validator.FieldLevel) bool {
	return IsValidKind(EvaluationKind(fl.Field().String()))
}

func sessionValidation(fl validator.FieldLevel) bool {
	return IsValidSession(Session(fl.Field().String()))
}

func academicYearStructLevelValidation(sl validator.StructLevel) {
	ny := sl.Current().Interface().(NewAcademicYear)
	start, err1 := time.Parse(dateLayout, ny.StartDate)
	end, err2 := time.Parse(dateLayout, ny.EndDate)
	if err1 != nil || err2 != nil {
		return // reported by the datetime tag
	}
	if !end.After(start) {
		sl.ReportError(ny.EndDate, "end_date", "EndDate", "enddate", "")
	}
}

func gradeValueStructLevelValidation(sl validator.StructLevel) {
	ng := sl.Current().Interface().(NewGrade)
	if ng.Value != nil && !hasTwoDecimals(*ng.Value) {
		sl.ReportError(ng.Value, "value", "Value", "decimals", "")
	}
}

func updateGradeStructLevelValidation(sl validator.StructLevel) {
	ug := sl.Current().Interface().(UpdateGrade)
	if ug.Value != nil && !hasTwoDecimals(*ug.Value) {
		sl.ReportError(ug.Value, "value", "Value", "decimals", "")
	}
}
