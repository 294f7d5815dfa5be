package academic

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

// EvaluationKind is the kind of assessment a Grade was recorded for.
type EvaluationKind string

const (
	KindContinuous EvaluationKind = "CC"     // continuous assessment
	KindLabWork    EvaluationKind = "TP"     // lab work
	KindExam       EvaluationKind = "Examen" // final exam
	KindProject    EvaluationKind = "Projet" // project
)

// Session tells whether a Grade was recorded in the normal period or the retake period.
type Session string

const (
	SessionNormal Session = "normale"
	SessionRetake Session = "rattrapage"
)

var (
	EvaluationKinds = []EvaluationKind{KindContinuous, KindLabWork, KindExam, KindProject}
	Sessions        = []Session{SessionNormal, SessionRetake}
	Levels          = []string{"L1", "L2", "L3", "M1", "M2", "D1", "D2", "D3"}

	// grade scale bounds
	MinGradeValue = decimal.Zero
	MaxGradeValue = decimal.NewFromInt(20)
)

type Department struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"` // UTC
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"` // UTC
}

type Student struct {
	ID                 string    `db:"id" json:"id"`
	RegistrationNumber string    `db:"registration_number" json:"registration_number"`
	FirstName          string    `db:"first_name" json:"first_name"`
	LastName           string    `db:"last_name" json:"last_name"`
	Email              string    `db:"email" json:"email"`
	Level              string    `db:"level" json:"level"`
	DepartmentID       string    `db:"department_id" json:"department_id"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"` // UTC
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"` // UTC
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

type Teacher struct {
	ID                 string      `db:"id" json:"id"`
	RegistrationNumber string      `db:"registration_number" json:"registration_number"`
	FirstName          string      `db:"first_name" json:"first_name"`
	LastName           string      `db:"last_name" json:"last_name"`
	Email              string      `db:"email" json:"email"`
	Title              null.String `db:"title" json:"title"` // eg. Professeur, Maître de conférences
	Specialty          null.String `db:"specialty" json:"specialty"`
	DepartmentID       null.String `db:"department_id" json:"department_id"`
	CreatedAt          time.Time   `db:"created_at" json:"created_at"` // UTC
	UpdatedAt          time.Time   `db:"updated_at" json:"updated_at"` // UTC
}

type AcademicYear struct {
	ID        string    `db:"id" json:"id"`
	Label     string    `db:"label" json:"label"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"` // UTC
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"` // UTC
}

// Term is a numbered semester of an AcademicYear.
type Term struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Number         int       `db:"number" json:"number"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"` // UTC
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"` // UTC
}

type Subject struct {
	ID          string      `db:"id" json:"id"`
	Code        string      `db:"code" json:"code"`
	Name        string      `db:"name" json:"name"`
	Coefficient int         `db:"coefficient" json:"coefficient"`
	Credits     int         `db:"credits" json:"credits"`
	TermID      string      `db:"term_id" json:"term_id"`
	TeacherID   null.String `db:"teacher_id" json:"teacher_id"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"` // UTC
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"` // UTC
}

// Grade is a single recorded assessment result.
// (StudentID, SubjectID, Kind, Session) is unique.
type Grade struct {
	ID        string          `db:"id" json:"id"`
	Value     decimal.Decimal `db:"value" json:"value"`
	Kind      EvaluationKind  `db:"kind" json:"kind"`
	Session   Session         `db:"session" json:"session"`
	StudentID string          `db:"student_id" json:"student_id"`
	SubjectID string          `db:"subject_id" json:"subject_id"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"` // UTC
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"` // UTC
}

// MarshalJSON renders the value with 2 decimals, like every computed grade.
func (g Grade) MarshalJSON() ([]byte, error) {
	type grade Grade
	return json.Marshal(struct {
		grade
		Value string `json:"value"`
	}{grade: grade(g), Value: g.Value.StringFixed(2)})
}

// NewDepartment contains information needed to create a new Department.
type NewDepartment struct {
	Code string `json:"code" validate:"required,max=20,alphanum_"`
	Name string `json:"name" validate:"required,min=2,max=100"`
}

func (nd *NewDepartment) Validate(validate *validator.Validate) error {
	nd.Code = upperCode(nd.Code)
	nd.Name = core.CleanString(nd.Name)
	return validate.Struct(nd)
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	RegistrationNumber string `json:"registration_number" validate:"required,max=20"`
	FirstName          string `json:"first_name" validate:"required,min=2,max=100"`
	LastName           string `json:"last_name" validate:"required,min=2,max=100"`
	Email              string `json:"email" validate:"required,email"`
	Level              string `json:"level" validate:"required,level"`
	DepartmentID       string `json:"department_id" validate:"required"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.RegistrationNumber = upperCode(ns.RegistrationNumber)
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Level = upperCode(ns.Level)
	ns.DepartmentID = core.CleanString(ns.DepartmentID)
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	FirstName    string `json:"first_name" validate:"omitempty,min=2,max=100"`
	LastName     string `json:"last_name" validate:"omitempty,min=2,max=100"`
	Email        string `json:"email" validate:"omitempty,email"`
	Level        string `json:"level" validate:"omitempty,level"`
	DepartmentID string `json:"department_id"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.FirstName = core.CleanString(us.FirstName)
	us.LastName = core.CleanString(us.LastName)
	us.Email = core.CleanString(us.Email, true /* lower */)
	us.Level = upperCode(us.Level)
	us.DepartmentID = core.CleanString(us.DepartmentID)
	return validate.Struct(us)
}

// NewTeacher contains information needed to create a new Teacher.
type NewTeacher struct {
	RegistrationNumber string `json:"registration_number" validate:"required,max=20"`
	FirstName          string `json:"first_name" validate:"required,min=2,max=100"`
	LastName           string `json:"last_name" validate:"required,min=2,max=100"`
	Email              string `json:"email" validate:"required,email"`
	Title              string `json:"title" validate:"omitempty,max=100"`
	Specialty          string `json:"specialty" validate:"omitempty,max=100"`
	DepartmentID       string `json:"department_id"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.RegistrationNumber = upperCode(nt.RegistrationNumber)
	nt.FirstName = core.CleanString(nt.FirstName)
	nt.LastName = core.CleanString(nt.LastName)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Title = core.CleanString(nt.Title)
	nt.Specialty = core.CleanString(nt.Specialty)
	nt.DepartmentID = core.CleanString(nt.DepartmentID)
	return validate.Struct(nt)
}

// NewAcademicYear contains information needed to create or replace an AcademicYear.
// Dates are expected as YYYY-MM-DD.
type NewAcademicYear struct {
	Label     string `json:"label" validate:"required,yearlabel"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	IsActive  bool   `json:"is_active"`
}

func (ny *NewAcademicYear) Validate(validate *validator.Validate) error {
	ny.Label = core.CleanString(ny.Label)
	ny.StartDate = core.CleanString(ny.StartDate)
	ny.EndDate = core.CleanString(ny.EndDate)
	return validate.Struct(ny)
}

// Dates returns the parsed start and end dates; only valid after a successful Validate.
func (ny NewAcademicYear) Dates() (start, end time.Time) {
	start, _ = time.Parse(dateLayout, ny.StartDate)
	end, _ = time.Parse(dateLayout, ny.EndDate)
	return start, end
}

// NewTerm contains information needed to create or replace a Term.
type NewTerm struct {
	Name           string `json:"name" validate:"required,max=50"`
	Number         int    `json:"number" validate:"required,min=1,max=10"`
	AcademicYearID string `json:"academic_year_id" validate:"required"`
}

func (nt *NewTerm) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.AcademicYearID = core.CleanString(nt.AcademicYearID)
	return validate.Struct(nt)
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Code        string `json:"code" validate:"required,max=20"`
	Name        string `json:"name" validate:"required,min=2,max=150"`
	Coefficient int    `json:"coefficient" validate:"required,min=1,max=10"`
	Credits     int    `json:"credits" validate:"required,min=1,max=30"`
	TermID      string `json:"term_id" validate:"required"`
	TeacherID   string `json:"teacher_id"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Code = upperCode(ns.Code)
	ns.Name = core.CleanString(ns.Name)
	ns.TermID = core.CleanString(ns.TermID)
	ns.TeacherID = core.CleanString(ns.TeacherID)
	return validate.Struct(ns)
}

// NewGrade contains information needed to record a new Grade.
// Value is a pointer so that a missing value is told apart from a zero.
type NewGrade struct {
	Value     *decimal.Decimal `json:"value" validate:"required,gte=0,lte=20"`
	Kind      EvaluationKind   `json:"kind" validate:"required,evalkind"`
	Session   Session          `json:"session" validate:"omitempty,session"`
	StudentID string           `json:"student_id" validate:"required"`
	SubjectID string           `json:"subject_id" validate:"required"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	if ng.Session == "" {
		ng.Session = SessionNormal
	}
	ng.StudentID = core.CleanString(ng.StudentID)
	ng.SubjectID = core.CleanString(ng.SubjectID)
	return validate.Struct(ng)
}

// UpdateGrade defines what may be modified on an existing Grade: only its value.
type UpdateGrade struct {
	Value *decimal.Decimal `json:"value" validate:"required,gte=0,lte=20"`
}

func (ug *UpdateGrade) Validate(validate *validator.Validate) error {
	return validate.Struct(ug)
}

// BulkGrades is a batch of grades recorded at once.
type BulkGrades struct {
	Grades []NewGrade `json:"grades" validate:"required,min=1,dive"`
}

func (bg *BulkGrades) Validate(validate *validator.Validate) error {
	for i := range bg.Grades {
		ng := &bg.Grades[i]
		if ng.Session == "" {
			ng.Session = SessionNormal
		}
		ng.StudentID = core.CleanString(ng.StudentID)
		ng.SubjectID = core.CleanString(ng.SubjectID)
	}
	return validate.Struct(bg)
}

// StudentOrderingFields are the fields students can be ordered by.
var StudentOrderingFields = []string{"registration_number", "first_name", "last_name", "level", "created_at"}

type StudentFilter struct {
	DepartmentID string `query:"department_id"`
	Level        string `query:"level"`
	Search       string `query:"search"`
	// defaults to registration_number ASC
	Ordering []core.DBOrdering `query:"-"`
}

// Clean trims the filter and drops the orderings on unknown fields.
func (qf *StudentFilter) Clean() {
	qf.DepartmentID = core.CleanString(qf.DepartmentID)
	qf.Level = upperCode(qf.Level)
	qf.Search = core.CleanString(qf.Search)

	ordering := make([]core.DBOrdering, 0, len(qf.Ordering))
	for _, ord := range qf.Ordering {
		for _, f := range StudentOrderingFields {
			if ord.Field == f {
				ordering = append(ordering, ord)
				break
			}
		}
	}
	qf.Ordering = ordering
}

type TeacherFilter struct {
	DepartmentID string `query:"department_id"`
}

type AcademicYearFilter struct {
	IsActive *bool `query:"is_active"`
}

type TermFilter struct {
	AcademicYearID string `query:"academic_year_id"`
}

type SubjectFilter struct {
	TermID    string `query:"term_id"`
	TeacherID string `query:"teacher_id"`
}

// GradeFilter applies AND operation on its set fields.
type GradeFilter struct {
	StudentID string         `query:"student_id"`
	SubjectID string         `query:"subject_id"`
	TermID    string         `query:"term_id"`
	Session   Session        `query:"session"`
	Kind      EvaluationKind `query:"kind"`
}

// LevelCount is the number of students enrolled at a level.
type LevelCount struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

type DepartmentStatistics struct {
	Department       Department   `json:"department"`
	StudentCount     int          `json:"student_count"`
	TeacherCount     int          `json:"teacher_count"`
	StudentsPerLevel []LevelCount `json:"students_per_level"`
}
