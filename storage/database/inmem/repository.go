package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academic"
)

type academicRepository struct {
	db *DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *DB) academic.Repository {
	return &academicRepository{db: db}
}

// Departments

func (repo *academicRepository) checkDepartment(dept academic.Department) error {
	for _, d := range repo.db.departments {
		if d.ID != dept.ID && d.Code == dept.Code {
			return academic.ErrDepartmentCodeExists
		}
	}
	return nil
}

func (repo *academicRepository) CreateDepartment(ctx context.Context, dept academic.Department) (academic.Department, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.checkDepartment(dept); err != nil {
		return academic.Department{}, err
	}
	repo.db.departments[dept.ID] = &dept
	return dept, nil
}

func (repo *academicRepository) QueryAllDepartments(ctx context.Context) ([]academic.Department, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	depts := make([]academic.Department, 0, len(repo.db.departments))
	for _, d := range repo.db.departments {
		depts = append(depts, *d)
	}
	sort.Slice(depts, func(i, j int) bool { return depts[i].Code < depts[j].Code })
	return depts, nil
}

func (repo *academicRepository) GetDepartmentByID(ctx context.Context, id string) (academic.Department, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if d, ok := repo.db.departments[id]; ok {
		return *d, nil
	}
	return academic.Department{}, academic.ErrDepartmentNotFound
}

func (repo *academicRepository) UpdateDepartment(ctx context.Context, dept academic.Department) (academic.Department, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.departments[dept.ID]
	if !ok {
		return academic.Department{}, academic.ErrDepartmentNotFound
	}
	if err := repo.checkDepartment(dept); err != nil {
		return academic.Department{}, err
	}
	orig.Code = dept.Code
	orig.Name = dept.Name
	orig.UpdatedAt = dept.UpdatedAt
	return *orig, nil
}

func (repo *academicRepository) DeleteDepartment(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.departments[id]; !ok {
		return academic.ErrDepartmentNotFound
	}
	for _, s := range repo.db.students {
		if s.DepartmentID == id {
			return academic.ErrInUse
		}
	}
	for _, t := range repo.db.teachers {
		if t.DepartmentID.String == id {
			return academic.ErrInUse
		}
	}
	delete(repo.db.departments, id)
	return nil
}

// Students

func (repo *academicRepository) checkStudent(stud academic.Student) error {
	for _, s := range repo.db.students {
		if s.ID == stud.ID {
			continue
		}
		if s.RegistrationNumber == stud.RegistrationNumber {
			return academic.ErrStudentRegistrationExists
		}
		if s.Email == stud.Email {
			return academic.ErrStudentEmailExists
		}
	}
	if _, ok := repo.db.departments[stud.DepartmentID]; !ok {
		return academic.ErrInUse
	}
	return nil
}

func (repo *academicRepository) CreateStudent(ctx context.Context, stud academic.Student) (academic.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.checkStudent(stud); err != nil {
		return academic.Student{}, err
	}
	repo.db.students[stud.ID] = &stud
	return stud, nil
}

func (repo *academicRepository) FilterStudents(ctx context.Context, filter academic.StudentFilter) ([]academic.Student, error) {
	filter.Clean()
	repo.db.RLock()
	defer repo.db.RUnlock()

	search := strings.ToLower(filter.Search)
	studs := make([]academic.Student, 0)
	for _, s := range repo.db.students {
		if filter.DepartmentID != "" && s.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.Level != "" && s.Level != filter.Level {
			continue
		}
		if search != "" && !containsAny(search, s.FirstName, s.LastName, s.RegistrationNumber, s.Email) {
			continue
		}
		studs = append(studs, *s)
	}
	sortStudents(studs, filter.Ordering)
	return studs, nil
}

func studentField(s academic.Student, field string) string {
	switch field {
	case "first_name":
		return s.FirstName
	case "last_name":
		return s.LastName
	case "level":
		return s.Level
	case "created_at":
		return s.CreatedAt.Format(time.RFC3339Nano)
	default:
		return s.RegistrationNumber
	}
}

func sortStudents(studs []academic.Student, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "registration_number", Ascending: true}}
	}
	sort.SliceStable(studs, func(i, j int) bool {
		for _, ord := range ordering {
			a, b := studentField(studs[i], ord.Field), studentField(studs[j], ord.Field)
			if a == b {
				continue
			}
			if ord.Ascending {
				return a < b
			}
			return a > b
		}
		return studs[i].RegistrationNumber < studs[j].RegistrationNumber
	})
}

func (repo *academicRepository) GetStudentByID(ctx context.Context, id string) (academic.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.students[id]; ok {
		return *s, nil
	}
	return academic.Student{}, academic.ErrStudentNotFound
}

func (repo *academicRepository) UpdateStudent(ctx context.Context, stud academic.Student) (academic.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.students[stud.ID]
	if !ok {
		return academic.Student{}, academic.ErrStudentNotFound
	}
	if err := repo.checkStudent(stud); err != nil {
		return academic.Student{}, err
	}
	orig.FirstName = stud.FirstName
	orig.LastName = stud.LastName
	orig.Email = stud.Email
	orig.Level = stud.Level
	orig.DepartmentID = stud.DepartmentID
	orig.UpdatedAt = stud.UpdatedAt
	return *orig, nil
}

func (repo *academicRepository) DeleteStudent(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.students[id]; !ok {
		return academic.ErrStudentNotFound
	}
	for gid, g := range repo.db.grades {
		if g.StudentID == id {
			delete(repo.db.grades, gid)
		}
	}
	delete(repo.db.students, id)
	return nil
}

// Teachers

func (repo *academicRepository) checkTeacher(teacher academic.Teacher) error {
	for _, t := range repo.db.teachers {
		if t.ID == teacher.ID {
			continue
		}
		if t.RegistrationNumber == teacher.RegistrationNumber {
			return academic.ErrTeacherRegistrationExists
		}
		if t.Email == teacher.Email {
			return academic.ErrTeacherEmailExists
		}
	}
	if teacher.DepartmentID.Valid {
		if _, ok := repo.db.departments[teacher.DepartmentID.String]; !ok {
			return academic.ErrInUse
		}
	}
	return nil
}

func (repo *academicRepository) CreateTeacher(ctx context.Context, teacher academic.Teacher) (academic.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.checkTeacher(teacher); err != nil {
		return academic.Teacher{}, err
	}
	repo.db.teachers[teacher.ID] = &teacher
	return teacher, nil
}

func (repo *academicRepository) FilterTeachers(ctx context.Context, filter academic.TeacherFilter) ([]academic.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	teachers := make([]academic.Teacher, 0)
	for _, t := range repo.db.teachers {
		if filter.DepartmentID != "" && t.DepartmentID.String != filter.DepartmentID {
			continue
		}
		teachers = append(teachers, *t)
	}
	sort.Slice(teachers, func(i, j int) bool {
		if teachers[i].LastName != teachers[j].LastName {
			return teachers[i].LastName < teachers[j].LastName
		}
		return teachers[i].FirstName < teachers[j].FirstName
	})
	return teachers, nil
}

func (repo *academicRepository) GetTeacherByID(ctx context.Context, id string) (academic.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.teachers[id]; ok {
		return *t, nil
	}
	return academic.Teacher{}, academic.ErrTeacherNotFound
}

func (repo *academicRepository) UpdateTeacher(ctx context.Context, teacher academic.Teacher) (academic.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.teachers[teacher.ID]
	if !ok {
		return academic.Teacher{}, academic.ErrTeacherNotFound
	}
	if err := repo.checkTeacher(teacher); err != nil {
		return academic.Teacher{}, err
	}
	teacher.CreatedAt = orig.CreatedAt
	*orig = teacher
	return teacher, nil
}

// DeleteTeacher unassigns the teacher's subjects.
func (repo *academicRepository) DeleteTeacher(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.teachers[id]; !ok {
		return academic.ErrTeacherNotFound
	}
	for _, s := range repo.db.subjects {
		if s.TeacherID.String == id {
			s.TeacherID.String, s.TeacherID.Valid = "", false
		}
	}
	delete(repo.db.teachers, id)
	return nil
}

// Academic years

func (repo *academicRepository) checkAcademicYear(year academic.AcademicYear) error {
	for _, y := range repo.db.years {
		if y.ID != year.ID && y.Label == year.Label {
			return academic.ErrYearLabelExists
		}
	}
	return nil
}

// deactivateOthers clears the active flag of every year but id; the caller holds the write lock.
func (repo *academicRepository) deactivateOthers(id string, updatedAt time.Time) {
	for _, y := range repo.db.years {
		if y.IsActive && y.ID != id {
			y.IsActive = false
			y.UpdatedAt = updatedAt
		}
	}
}

func (repo *academicRepository) CreateAcademicYear(ctx context.Context, year academic.AcademicYear) (academic.AcademicYear, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.checkAcademicYear(year); err != nil {
		return academic.AcademicYear{}, err
	}
	if year.IsActive {
		repo.deactivateOthers(year.ID, year.UpdatedAt)
	}
	repo.db.years[year.ID] = &year
	return year, nil
}

func (repo *academicRepository) FilterAcademicYears(ctx context.Context, filter academic.AcademicYearFilter) ([]academic.AcademicYear, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	years := make([]academic.AcademicYear, 0, len(repo.db.years))
	for _, y := range repo.db.years {
		if filter.IsActive != nil && y.IsActive != *filter.IsActive {
			continue
		}
		years = append(years, *y)
	}
	sort.Slice(years, func(i, j int) bool { return years[i].StartDate.After(years[j].StartDate) })
	return years, nil
}

func (repo *academicRepository) GetAcademicYearByID(ctx context.Context, id string) (academic.AcademicYear, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if y, ok := repo.db.years[id]; ok {
		return *y, nil
	}
	return academic.AcademicYear{}, academic.ErrAcademicYearNotFound
}

func (repo *academicRepository) GetActiveAcademicYear(ctx context.Context) (academic.AcademicYear, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, y := range repo.db.years {
		if y.IsActive {
			return *y, nil
		}
	}
	return academic.AcademicYear{}, academic.ErrNoActiveYear
}

// ActivateAcademicYear flips every active flag under one write lock.
func (repo *academicRepository) ActivateAcademicYear(ctx context.Context, id string, updatedAt time.Time) (academic.AcademicYear, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	target, ok := repo.db.years[id]
	if !ok {
		return academic.AcademicYear{}, academic.ErrAcademicYearNotFound
	}
	repo.deactivateOthers(id, updatedAt)
	target.IsActive = true
	target.UpdatedAt = updatedAt
	return *target, nil
}

func (repo *academicRepository) UpdateAcademicYear(ctx context.Context, year academic.AcademicYear) (academic.AcademicYear, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.years[year.ID]
	if !ok {
		return academic.AcademicYear{}, academic.ErrAcademicYearNotFound
	}
	if err := repo.checkAcademicYear(year); err != nil {
		return academic.AcademicYear{}, err
	}
	if year.IsActive {
		repo.deactivateOthers(year.ID, year.UpdatedAt)
	}
	year.CreatedAt = orig.CreatedAt
	*orig = year
	return year, nil
}

func (repo *academicRepository) DeleteAcademicYear(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.years[id]; !ok {
		return academic.ErrAcademicYearNotFound
	}
	for _, t := range repo.db.terms {
		if t.AcademicYearID == id {
			return academic.ErrYearHasTerms
		}
	}
	delete(repo.db.years, id)
	return nil
}

// Terms

func (repo *academicRepository) CreateTerm(ctx context.Context, term academic.Term) (academic.Term, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.checkTerm(term); err != nil {
		return academic.Term{}, err
	}
	repo.db.terms[term.ID] = &term
	return term, nil
}

func (repo *academicRepository) checkTerm(term academic.Term) error {
	if _, ok := repo.db.years[term.AcademicYearID]; !ok {
		return academic.ErrInUse
	}
	for _, t := range repo.db.terms {
		if t.ID != term.ID && t.AcademicYearID == term.AcademicYearID && t.Number == term.Number {
			return academic.ErrTermNumberExists
		}
	}
	return nil
}

func (repo *academicRepository) FilterTerms(ctx context.Context, filter academic.TermFilter) ([]academic.Term, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	terms := make([]academic.Term, 0)
	for _, t := range repo.db.terms {
		if filter.AcademicYearID != "" && t.AcademicYearID != filter.AcademicYearID {
			continue
		}
		terms = append(terms, *t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].AcademicYearID != terms[j].AcademicYearID {
			return terms[i].AcademicYearID < terms[j].AcademicYearID
		}
		return terms[i].Number < terms[j].Number
	})
	return terms, nil
}

func (repo *academicRepository) GetTermByID(ctx context.Context, id string) (academic.Term, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.terms[id]; ok {
		return *t, nil
	}
	return academic.Term{}, academic.ErrTermNotFound
}

func (repo *academicRepository) UpdateTerm(ctx context.Context, term academic.Term) (academic.Term, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.terms[term.ID]
	if !ok {
		return academic.Term{}, academic.ErrTermNotFound
	}
	if err := repo.checkTerm(term); err != nil {
		return academic.Term{}, err
	}
	term.CreatedAt = orig.CreatedAt
	*orig = term
	return term, nil
}

func (repo *academicRepository) DeleteTerm(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.terms[id]; !ok {
		return academic.ErrTermNotFound
	}
	for _, s := range repo.db.subjects {
		if s.TermID == id {
			return academic.ErrInUse
		}
	}
	delete(repo.db.terms, id)
	return nil
}

// Subjects

func (repo *academicRepository) checkSubject(subj academic.Subject) error {
	for _, s := range repo.db.subjects {
		if s.ID != subj.ID && s.Code == subj.Code {
			return academic.ErrSubjectCodeExists
		}
	}
	if _, ok := repo.db.terms[subj.TermID]; !ok {
		return academic.ErrInUse
	}
	if subj.TeacherID.Valid {
		if _, ok := repo.db.teachers[subj.TeacherID.String]; !ok {
			return academic.ErrInUse
		}
	}
	return nil
}

func (repo *academicRepository) CreateSubject(ctx context.Context, subj academic.Subject) (academic.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.checkSubject(subj); err != nil {
		return academic.Subject{}, err
	}
	repo.db.subjects[subj.ID] = &subj
	return subj, nil
}

func (repo *academicRepository) FilterSubjects(ctx context.Context, filter academic.SubjectFilter) ([]academic.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]academic.Subject, 0)
	for _, s := range repo.db.subjects {
		if filter.TermID != "" && s.TermID != filter.TermID {
			continue
		}
		if filter.TeacherID != "" && s.TeacherID.String != filter.TeacherID {
			continue
		}
		subjects = append(subjects, *s)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Code < subjects[j].Code })
	return subjects, nil
}

func (repo *academicRepository) GetSubjectByID(ctx context.Context, id string) (academic.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.subjects[id]; ok {
		return *s, nil
	}
	return academic.Subject{}, academic.ErrSubjectNotFound
}

func (repo *academicRepository) UpdateSubject(ctx context.Context, subj academic.Subject) (academic.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.subjects[subj.ID]
	if !ok {
		return academic.Subject{}, academic.ErrSubjectNotFound
	}
	if err := repo.checkSubject(subj); err != nil {
		return academic.Subject{}, err
	}
	subj.CreatedAt = orig.CreatedAt
	*orig = subj
	return subj, nil
}

func (repo *academicRepository) DeleteSubject(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.subjects[id]; !ok {
		return academic.ErrSubjectNotFound
	}
	for gid, g := range repo.db.grades {
		if g.SubjectID == id {
			delete(repo.db.grades, gid)
		}
	}
	delete(repo.db.subjects, id)
	return nil
}

// Grades

type gradeKey struct {
	studentID string
	subjectID string
	kind      academic.EvaluationKind
	session   academic.Session
}

func keyOf(g academic.Grade) gradeKey {
	return gradeKey{studentID: g.StudentID, subjectID: g.SubjectID, kind: g.Kind, session: g.Session}
}

// CreateGrades checks the whole batch before storing any grade.
func (repo *academicRepository) CreateGrades(ctx context.Context, grades ...academic.Grade) ([]academic.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	taken := make(map[gradeKey]struct{}, len(repo.db.grades)+len(grades))
	for _, g := range repo.db.grades {
		taken[keyOf(*g)] = struct{}{}
	}
	for _, g := range grades {
		if _, ok := repo.db.students[g.StudentID]; !ok {
			return nil, academic.ErrInUse
		}
		if _, ok := repo.db.subjects[g.SubjectID]; !ok {
			return nil, academic.ErrInUse
		}
		key := keyOf(g)
		if _, ok := taken[key]; ok {
			return nil, academic.ErrDuplicateGrade
		}
		taken[key] = struct{}{}
	}

	created := make([]academic.Grade, 0, len(grades))
	for _, g := range grades {
		g := g
		repo.db.grades[g.ID] = &g
		created = append(created, g)
	}
	return created, nil
}

func (repo *academicRepository) FilterGrades(ctx context.Context, filter academic.GradeFilter) ([]academic.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	grades := make([]academic.Grade, 0)
	for _, g := range repo.db.grades {
		if filter.StudentID != "" && g.StudentID != filter.StudentID {
			continue
		}
		if filter.SubjectID != "" && g.SubjectID != filter.SubjectID {
			continue
		}
		if filter.TermID != "" {
			subj, ok := repo.db.subjects[g.SubjectID]
			if !ok || subj.TermID != filter.TermID {
				continue
			}
		}
		if filter.Session != "" && g.Session != filter.Session {
			continue
		}
		if filter.Kind != "" && g.Kind != filter.Kind {
			continue
		}
		grades = append(grades, *g)
	}
	sort.Slice(grades, func(i, j int) bool {
		if !grades[i].CreatedAt.Equal(grades[j].CreatedAt) {
			return grades[i].CreatedAt.Before(grades[j].CreatedAt)
		}
		return grades[i].ID < grades[j].ID
	})
	return grades, nil
}

func (repo *academicRepository) GetGradeByID(ctx context.Context, id string) (academic.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if g, ok := repo.db.grades[id]; ok {
		return *g, nil
	}
	return academic.Grade{}, academic.ErrGradeNotFound
}

func (repo *academicRepository) UpdateGradeValue(ctx context.Context, id string, value decimal.Decimal, updatedAt time.Time) (academic.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	g, ok := repo.db.grades[id]
	if !ok {
		return academic.Grade{}, academic.ErrGradeNotFound
	}
	g.Value = value
	g.UpdatedAt = updatedAt
	return *g, nil
}

func (repo *academicRepository) DeleteGrade(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.grades[id]; !ok {
		return academic.ErrGradeNotFound
	}
	delete(repo.db.grades, id)
	return nil
}

// containsAny reports whether any of values contains the lower-cased keyword, ignoring case.
func containsAny(keyword string, values ...string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), keyword) {
			return true
		}
	}
	return false
}
