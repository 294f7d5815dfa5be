package academic

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

var (
	// errors
	ErrDepartmentNotFound   = core.NewNotFoundError("department")
	ErrStudentNotFound      = core.NewNotFoundError("student")
	ErrTeacherNotFound      = core.NewNotFoundError("teacher")
	ErrAcademicYearNotFound = core.NewNotFoundError("academic year")
	ErrTermNotFound         = core.NewNotFoundError("term")
	ErrSubjectNotFound      = core.NewNotFoundError("subject")
	ErrGradeNotFound        = core.NewNotFoundError("grade")

	ErrNoActiveYear = core.NewNotFoundError("active academic year")

	ErrDepartmentCodeExists      = core.NewConflictError("a department with this code already exists")
	ErrStudentRegistrationExists = core.NewConflictError("a student with this registration number already exists")
	ErrStudentEmailExists        = core.NewConflictError("a student with this email already exists")
	ErrTeacherRegistrationExists = core.NewConflictError("a teacher with this registration number already exists")
	ErrTeacherEmailExists        = core.NewConflictError("a teacher with this email already exists")
	ErrYearLabelExists           = core.NewConflictError("an academic year with this label already exists")
	ErrTermNumberExists          = core.NewConflictError("this academic year already has a term with this number")
	ErrSubjectCodeExists         = core.NewConflictError("a subject with this code already exists")
	ErrDuplicateGrade            = core.NewConflictError("a grade already exists for this student, subject, kind and session")

	ErrYearHasTerms = core.NewConflictError("academic year still has terms")
	ErrInUse        = core.NewConflictError("resource is still referenced")

	// mockable funcs
	nowFunc   = func() time.Time { return time.Now().UTC() }
	newIDFunc = uuid.NewString
)

type (
	// Repository is the grade record store and the store of every other academic entity.
	// Uniqueness violations are returned as core.ConflictError.
	Repository interface {
		CreateDepartment(ctx context.Context, dept Department) (Department, error)
		QueryAllDepartments(ctx context.Context) ([]Department, error)
		GetDepartmentByID(ctx context.Context, id string) (Department, error)
		UpdateDepartment(ctx context.Context, dept Department) (Department, error)
		DeleteDepartment(ctx context.Context, id string) error

		CreateStudent(ctx context.Context, stud Student) (Student, error)
		// FilterStudents applies AND operation on available StudentFilter fields.
		// StudentFilter.Search does a case-insensitive match on the names, registration number or email.
		// Results are ordered by registration number.
		FilterStudents(ctx context.Context, filter StudentFilter) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		UpdateStudent(ctx context.Context, stud Student) (Student, error)
		DeleteStudent(ctx context.Context, id string) error

		CreateTeacher(ctx context.Context, teacher Teacher) (Teacher, error)
		FilterTeachers(ctx context.Context, filter TeacherFilter) ([]Teacher, error)
		GetTeacherByID(ctx context.Context, id string) (Teacher, error)
		UpdateTeacher(ctx context.Context, teacher Teacher) (Teacher, error)
		DeleteTeacher(ctx context.Context, id string) error

		// CreateAcademicYear stores year; when year.IsActive every other year is
		// deactivated in the same transaction.
		CreateAcademicYear(ctx context.Context, year AcademicYear) (AcademicYear, error)
		FilterAcademicYears(ctx context.Context, filter AcademicYearFilter) ([]AcademicYear, error)
		GetAcademicYearByID(ctx context.Context, id string) (AcademicYear, error)
		GetActiveAcademicYear(ctx context.Context) (AcademicYear, error)
		// ActivateAcademicYear atomically clears every other active flag and sets the target's.
		ActivateAcademicYear(ctx context.Context, id string, updatedAt time.Time) (AcademicYear, error)
		// UpdateAcademicYear has the same activation rule as CreateAcademicYear.
		UpdateAcademicYear(ctx context.Context, year AcademicYear) (AcademicYear, error)
		DeleteAcademicYear(ctx context.Context, id string) error

		CreateTerm(ctx context.Context, term Term) (Term, error)
		FilterTerms(ctx context.Context, filter TermFilter) ([]Term, error)
		GetTermByID(ctx context.Context, id string) (Term, error)
		UpdateTerm(ctx context.Context, term Term) (Term, error)
		DeleteTerm(ctx context.Context, id string) error

		CreateSubject(ctx context.Context, subj Subject) (Subject, error)
		FilterSubjects(ctx context.Context, filter SubjectFilter) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id string) (Subject, error)
		UpdateSubject(ctx context.Context, subj Subject) (Subject, error)
		DeleteSubject(ctx context.Context, id string) error

		// CreateGrades stores all grades or none of them.
		CreateGrades(ctx context.Context, grades ...Grade) ([]Grade, error)
		FilterGrades(ctx context.Context, filter GradeFilter) ([]Grade, error)
		GetGradeByID(ctx context.Context, id string) (Grade, error)
		UpdateGradeValue(ctx context.Context, id string, value decimal.Decimal, updatedAt time.Time) (Grade, error)
		DeleteGrade(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// refError turns a missing referenced entity into a ValidationError on field.
func refError(err error, field string) error {
	if core.IsNotFound(err) {
		return core.NewValidationError(err, core.FieldError{Field: field, Error: errors.Cause(err).Error()})
	}
	return err
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

// Departments

func (svc *Service) CreateDepartment(ctx context.Context, nd NewDepartment) (Department, error) {
	now := nowFunc()
	return svc.repo.CreateDepartment(ctx, Department{
		ID:        newIDFunc(),
		Code:      nd.Code,
		Name:      nd.Name,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) QueryAllDepartments(ctx context.Context) ([]Department, error) {
	return svc.repo.QueryAllDepartments(ctx)
}

func (svc *Service) GetDepartment(ctx context.Context, id string) (Department, error) {
	return svc.repo.GetDepartmentByID(ctx, id)
}

func (svc *Service) UpdateDepartment(ctx context.Context, id string, nd NewDepartment) (Department, error) {
	dept, err := svc.repo.GetDepartmentByID(ctx, id)
	if err != nil {
		return Department{}, err
	}
	dept.Code = nd.Code
	dept.Name = nd.Name
	dept.UpdatedAt = nowFunc()
	return svc.repo.UpdateDepartment(ctx, dept)
}

func (svc *Service) DeleteDepartment(ctx context.Context, id string) error {
	return svc.repo.DeleteDepartment(ctx, id)
}

// DepartmentStatistics counts the students and teachers of a department, with students per level.
func (svc *Service) DepartmentStatistics(ctx context.Context, id string) (DepartmentStatistics, error) {
	dept, err := svc.repo.GetDepartmentByID(ctx, id)
	if err != nil {
		return DepartmentStatistics{}, err
	}
	students, err := svc.repo.FilterStudents(ctx, StudentFilter{DepartmentID: id})
	if err != nil {
		return DepartmentStatistics{}, err
	}
	teachers, err := svc.repo.FilterTeachers(ctx, TeacherFilter{DepartmentID: id})
	if err != nil {
		return DepartmentStatistics{}, err
	}

	perLevel := make(map[string]int)
	for _, stud := range students {
		perLevel[stud.Level]++
	}
	stats := DepartmentStatistics{
		Department:       dept,
		StudentCount:     len(students),
		TeacherCount:     len(teachers),
		StudentsPerLevel: make([]LevelCount, 0, len(perLevel)),
	}
	for _, level := range Levels {
		if n := perLevel[level]; n > 0 {
			stats.StudentsPerLevel = append(stats.StudentsPerLevel, LevelCount{Level: level, Count: n})
		}
	}
	return stats, nil
}

// Students

func (svc *Service) CreateStudent(ctx context.Context, ns NewStudent) (Student, error) {
	if _, err := svc.repo.GetDepartmentByID(ctx, ns.DepartmentID); err != nil {
		return Student{}, refError(err, "department_id")
	}
	now := nowFunc()
	return svc.repo.CreateStudent(ctx, Student{
		ID:                 newIDFunc(),
		RegistrationNumber: ns.RegistrationNumber,
		FirstName:          ns.FirstName,
		LastName:           ns.LastName,
		Email:              ns.Email,
		Level:              ns.Level,
		DepartmentID:       ns.DepartmentID,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
}

func (svc *Service) FilterStudents(ctx context.Context, filter StudentFilter) ([]Student, error) {
	return svc.repo.FilterStudents(ctx, filter)
}

func (svc *Service) GetStudent(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

// UpdateStudent only overwrites the fields set on us.
func (svc *Service) UpdateStudent(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	stud, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if us.DepartmentID != "" && us.DepartmentID != stud.DepartmentID {
		if _, err := svc.repo.GetDepartmentByID(ctx, us.DepartmentID); err != nil {
			return Student{}, refError(err, "department_id")
		}
		stud.DepartmentID = us.DepartmentID
	}
	if us.FirstName != "" {
		stud.FirstName = us.FirstName
	}
	if us.LastName != "" {
		stud.LastName = us.LastName
	}
	if us.Email != "" {
		stud.Email = us.Email
	}
	if us.Level != "" {
		stud.Level = us.Level
	}
	stud.UpdatedAt = nowFunc()
	return svc.repo.UpdateStudent(ctx, stud)
}

func (svc *Service) DeleteStudent(ctx context.Context, id string) error {
	return svc.repo.DeleteStudent(ctx, id)
}

// StudentGrades returns every grade of an existing student.
func (svc *Service) StudentGrades(ctx context.Context, id string) ([]Grade, error) {
	if _, err := svc.repo.GetStudentByID(ctx, id); err != nil {
		return nil, err
	}
	return svc.repo.FilterGrades(ctx, GradeFilter{StudentID: id})
}

// Teachers

func (svc *Service) teacherFrom(ctx context.Context, nt NewTeacher, teacher Teacher) (Teacher, error) {
	if nt.DepartmentID != "" {
		if _, err := svc.repo.GetDepartmentByID(ctx, nt.DepartmentID); err != nil {
			return Teacher{}, refError(err, "department_id")
		}
	}
	teacher.RegistrationNumber = nt.RegistrationNumber
	teacher.FirstName = nt.FirstName
	teacher.LastName = nt.LastName
	teacher.Email = nt.Email
	teacher.Title = nullString(nt.Title)
	teacher.Specialty = nullString(nt.Specialty)
	teacher.DepartmentID = nullString(nt.DepartmentID)
	teacher.UpdatedAt = nowFunc()
	return teacher, nil
}

func (svc *Service) CreateTeacher(ctx context.Context, nt NewTeacher) (Teacher, error) {
	teacher, err := svc.teacherFrom(ctx, nt, Teacher{ID: newIDFunc()})
	if err != nil {
		return Teacher{}, err
	}
	teacher.CreatedAt = teacher.UpdatedAt
	return svc.repo.CreateTeacher(ctx, teacher)
}

func (svc *Service) FilterTeachers(ctx context.Context, filter TeacherFilter) ([]Teacher, error) {
	return svc.repo.FilterTeachers(ctx, filter)
}

func (svc *Service) GetTeacher(ctx context.Context, id string) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *Service) UpdateTeacher(ctx context.Context, id string, nt NewTeacher) (Teacher, error) {
	teacher, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	if teacher, err = svc.teacherFrom(ctx, nt, teacher); err != nil {
		return Teacher{}, err
	}
	return svc.repo.UpdateTeacher(ctx, teacher)
}

func (svc *Service) DeleteTeacher(ctx context.Context, id string) error {
	return svc.repo.DeleteTeacher(ctx, id)
}

// Academic years

// CreateAcademicYear stores a new year, made the only active one when ny.IsActive.
func (svc *Service) CreateAcademicYear(ctx context.Context, ny NewAcademicYear) (AcademicYear, error) {
	start, end := ny.Dates()
	now := nowFunc()
	return svc.repo.CreateAcademicYear(ctx, AcademicYear{
		ID:        newIDFunc(),
		Label:     ny.Label,
		StartDate: start,
		EndDate:   end,
		IsActive:  ny.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) FilterAcademicYears(ctx context.Context, filter AcademicYearFilter) ([]AcademicYear, error) {
	return svc.repo.FilterAcademicYears(ctx, filter)
}

func (svc *Service) GetAcademicYear(ctx context.Context, id string) (AcademicYear, error) {
	return svc.repo.GetAcademicYearByID(ctx, id)
}

func (svc *Service) GetActiveAcademicYear(ctx context.Context) (AcademicYear, error) {
	return svc.repo.GetActiveAcademicYear(ctx)
}

// ActivateAcademicYear makes id the only active academic year.
func (svc *Service) ActivateAcademicYear(ctx context.Context, id string) (AcademicYear, error) {
	return svc.repo.ActivateAcademicYear(ctx, id, nowFunc())
}

// UpdateAcademicYear replaces the label and dates of a year.
// ny.IsActive activates it; a false value leaves the active flag untouched.
func (svc *Service) UpdateAcademicYear(ctx context.Context, id string, ny NewAcademicYear) (AcademicYear, error) {
	year, err := svc.repo.GetAcademicYearByID(ctx, id)
	if err != nil {
		return AcademicYear{}, err
	}
	year.Label = ny.Label
	year.StartDate, year.EndDate = ny.Dates()
	year.IsActive = year.IsActive || ny.IsActive
	year.UpdatedAt = nowFunc()
	return svc.repo.UpdateAcademicYear(ctx, year)
}

func (svc *Service) DeleteAcademicYear(ctx context.Context, id string) error {
	return svc.repo.DeleteAcademicYear(ctx, id)
}

// Terms

func (svc *Service) CreateTerm(ctx context.Context, nt NewTerm) (Term, error) {
	if _, err := svc.repo.GetAcademicYearByID(ctx, nt.AcademicYearID); err != nil {
		return Term{}, refError(err, "academic_year_id")
	}
	now := nowFunc()
	return svc.repo.CreateTerm(ctx, Term{
		ID:             newIDFunc(),
		Name:           nt.Name,
		Number:         nt.Number,
		AcademicYearID: nt.AcademicYearID,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

func (svc *Service) FilterTerms(ctx context.Context, filter TermFilter) ([]Term, error) {
	return svc.repo.FilterTerms(ctx, filter)
}

func (svc *Service) GetTerm(ctx context.Context, id string) (Term, error) {
	return svc.repo.GetTermByID(ctx, id)
}

// UpdateTerm replaces a term; moving it onto a number its year already uses fails with ErrTermNumberExists.
func (svc *Service) UpdateTerm(ctx context.Context, id string, nt NewTerm) (Term, error) {
	term, err := svc.repo.GetTermByID(ctx, id)
	if err != nil {
		return Term{}, err
	}
	if nt.AcademicYearID != term.AcademicYearID {
		if _, err := svc.repo.GetAcademicYearByID(ctx, nt.AcademicYearID); err != nil {
			return Term{}, refError(err, "academic_year_id")
		}
	}
	term.Name = nt.Name
	term.Number = nt.Number
	term.AcademicYearID = nt.AcademicYearID
	term.UpdatedAt = nowFunc()
	return svc.repo.UpdateTerm(ctx, term)
}

func (svc *Service) DeleteTerm(ctx context.Context, id string) error {
	return svc.repo.DeleteTerm(ctx, id)
}

// Subjects

func (svc *Service) subjectFrom(ctx context.Context, ns NewSubject, subj Subject) (Subject, error) {
	if _, err := svc.repo.GetTermByID(ctx, ns.TermID); err != nil {
		return Subject{}, refError(err, "term_id")
	}
	if ns.TeacherID != "" {
		if _, err := svc.repo.GetTeacherByID(ctx, ns.TeacherID); err != nil {
			return Subject{}, refError(err, "teacher_id")
		}
	}
	subj.Code = ns.Code
	subj.Name = ns.Name
	subj.Coefficient = ns.Coefficient
	subj.Credits = ns.Credits
	subj.TermID = ns.TermID
	subj.TeacherID = nullString(ns.TeacherID)
	subj.UpdatedAt = nowFunc()
	return subj, nil
}

func (svc *Service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	subj, err := svc.subjectFrom(ctx, ns, Subject{ID: newIDFunc()})
	if err != nil {
		return Subject{}, err
	}
	subj.CreatedAt = subj.UpdatedAt
	return svc.repo.CreateSubject(ctx, subj)
}

func (svc *Service) FilterSubjects(ctx context.Context, filter SubjectFilter) ([]Subject, error) {
	return svc.repo.FilterSubjects(ctx, filter)
}

func (svc *Service) GetSubject(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *Service) UpdateSubject(ctx context.Context, id string, ns NewSubject) (Subject, error) {
	subj, err := svc.repo.GetSubjectByID(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	if subj, err = svc.subjectFrom(ctx, ns, subj); err != nil {
		return Subject{}, err
	}
	return svc.repo.UpdateSubject(ctx, subj)
}

func (svc *Service) DeleteSubject(ctx context.Context, id string) error {
	return svc.repo.DeleteSubject(ctx, id)
}

// Grades

func (svc *Service) gradeFrom(ctx context.Context, ng NewGrade, now time.Time) (Grade, error) {
	if _, err := svc.repo.GetStudentByID(ctx, ng.StudentID); err != nil {
		return Grade{}, refError(err, "student_id")
	}
	if _, err := svc.repo.GetSubjectByID(ctx, ng.SubjectID); err != nil {
		return Grade{}, refError(err, "subject_id")
	}
	return Grade{
		ID:        newIDFunc(),
		Value:     *ng.Value,
		Kind:      ng.Kind,
		Session:   ng.Session,
		StudentID: ng.StudentID,
		SubjectID: ng.SubjectID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CreateGrade records one grade. A second grade for the same
// (student, subject, kind, session) fails with ErrDuplicateGrade.
func (svc *Service) CreateGrade(ctx context.Context, ng NewGrade) (Grade, error) {
	grade, err := svc.gradeFrom(ctx, ng, nowFunc())
	if err != nil {
		return Grade{}, err
	}
	grades, err := svc.repo.CreateGrades(ctx, grade)
	if err != nil {
		return Grade{}, err
	}
	return grades[0], nil
}

// CreateGrades records a batch of grades; either all of them are stored or none is.
func (svc *Service) CreateGrades(ctx context.Context, bg BulkGrades) ([]Grade, error) {
	now := nowFunc()
	grades := make([]Grade, 0, len(bg.Grades))
	for _, ng := range bg.Grades {
		grade, err := svc.gradeFrom(ctx, ng, now)
		if err != nil {
			return nil, err
		}
		grades = append(grades, grade)
	}
	return svc.repo.CreateGrades(ctx, grades...)
}

func (svc *Service) FilterGrades(ctx context.Context, filter GradeFilter) ([]Grade, error) {
	return svc.repo.FilterGrades(ctx, filter)
}

func (svc *Service) GetGrade(ctx context.Context, id string) (Grade, error) {
	return svc.repo.GetGradeByID(ctx, id)
}

// UpdateGrade only edits the grade value; ug must have been validated.
func (svc *Service) UpdateGrade(ctx context.Context, id string, ug UpdateGrade) (Grade, error) {
	return svc.repo.UpdateGradeValue(ctx, id, *ug.Value, nowFunc())
}

func (svc *Service) DeleteGrade(ctx context.Context, id string) error {
	return svc.repo.DeleteGrade(ctx, id)
}
