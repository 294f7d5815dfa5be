package grading

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/academic"
)

type (
	GradeFilter struct {
		StudentID string
		SubjectID string
		TermID    string
	}

	CohortFilter struct {
		DepartmentID string `query:"department_id"`
		Level        string `query:"level"`
	}

	// Store is what the grading engine reads from.
	// Fetch* of a single entity returns a core.NotFoundError when it does not exist.
	Store interface {
		FetchGrades(ctx context.Context, filter GradeFilter) ([]academic.Grade, error)
		FetchSubjectsForTerm(ctx context.Context, termID string) ([]academic.Subject, error)
		FetchStudent(ctx context.Context, id string) (academic.Student, error)
		FetchTerm(ctx context.Context, id string) (academic.Term, error)
		FetchSubject(ctx context.Context, id string) (academic.Subject, error)
		// FetchCohort returns the matching students ordered by registration number.
		FetchCohort(ctx context.Context, filter CohortFilter) ([]academic.Student, error)
	}

	Service struct {
		store Store
	}
)

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Transcript computes a student's report card for a term.
func (svc *Service) Transcript(ctx context.Context, studentID, termID string) (Transcript, error) {
	student, err := svc.store.FetchStudent(ctx, studentID)
	if err != nil {
		return Transcript{}, err
	}
	term, err := svc.store.FetchTerm(ctx, termID)
	if err != nil {
		return Transcript{}, err
	}
	subjects, err := svc.store.FetchSubjectsForTerm(ctx, termID)
	if err != nil {
		return Transcript{}, errors.Wrap(err, "fetching subjects")
	}
	grades, err := svc.store.FetchGrades(ctx, GradeFilter{StudentID: studentID, TermID: termID})
	if err != nil {
		return Transcript{}, errors.Wrap(err, "fetching grades")
	}
	return BuildTranscript(student, term, subjects, grades), nil
}

// Ranking ranks the students matching filter on their term average.
func (svc *Service) Ranking(ctx context.Context, termID string, filter CohortFilter) (Ranking, error) {
	term, err := svc.store.FetchTerm(ctx, termID)
	if err != nil {
		return Ranking{}, err
	}
	cohort, err := svc.store.FetchCohort(ctx, filter)
	if err != nil {
		return Ranking{}, errors.Wrap(err, "fetching cohort")
	}
	subjects, err := svc.store.FetchSubjectsForTerm(ctx, termID)
	if err != nil {
		return Ranking{}, errors.Wrap(err, "fetching subjects")
	}
	grades, err := svc.store.FetchGrades(ctx, GradeFilter{TermID: termID})
	if err != nil {
		return Ranking{}, errors.Wrap(err, "fetching grades")
	}
	return BuildRanking(term, cohort, subjects, grades), nil
}

func (svc *Service) SubjectStatistics(ctx context.Context, subjectID string) (SubjectStatistics, error) {
	subject, err := svc.store.FetchSubject(ctx, subjectID)
	if err != nil {
		return SubjectStatistics{}, err
	}
	grades, err := svc.store.FetchGrades(ctx, GradeFilter{SubjectID: subjectID})
	if err != nil {
		return SubjectStatistics{}, errors.Wrap(err, "fetching grades")
	}
	return BuildSubjectStatistics(subject, grades), nil
}

func (svc *Service) TermStatistics(ctx context.Context, termID string) (TermStatistics, error) {
	term, err := svc.store.FetchTerm(ctx, termID)
	if err != nil {
		return TermStatistics{}, err
	}
	subjects, err := svc.store.FetchSubjectsForTerm(ctx, termID)
	if err != nil {
		return TermStatistics{}, errors.Wrap(err, "fetching subjects")
	}
	grades, err := svc.store.FetchGrades(ctx, GradeFilter{TermID: termID})
	if err != nil {
		return TermStatistics{}, errors.Wrap(err, "fetching grades")
	}
	return BuildTermStatistics(term, subjects, grades), nil
}

// RepositoryStore reads the grading inputs from an academic.Repository.
type RepositoryStore struct {
	Repo academic.Repository
}

func NewRepositoryStore(repo academic.Repository) *RepositoryStore {
	return &RepositoryStore{Repo: repo}
}

func (rs *RepositoryStore) FetchGrades(ctx context.Context, filter GradeFilter) ([]academic.Grade, error) {
	return rs.Repo.FilterGrades(ctx, academic.GradeFilter{
		StudentID: filter.StudentID,
		SubjectID: filter.SubjectID,
		TermID:    filter.TermID,
	})
}

func (rs *RepositoryStore) FetchSubjectsForTerm(ctx context.Context, termID string) ([]academic.Subject, error) {
	return rs.Repo.FilterSubjects(ctx, academic.SubjectFilter{TermID: termID})
}

func (rs *RepositoryStore) FetchStudent(ctx context.Context, id string) (academic.Student, error) {
	return rs.Repo.GetStudentByID(ctx, id)
}

func (rs *RepositoryStore) FetchTerm(ctx context.Context, id string) (academic.Term, error) {
	return rs.Repo.GetTermByID(ctx, id)
}

func (rs *RepositoryStore) FetchSubject(ctx context.Context, id string) (academic.Subject, error) {
	return rs.Repo.GetSubjectByID(ctx, id)
}

func (rs *RepositoryStore) FetchCohort(ctx context.Context, filter CohortFilter) ([]academic.Student, error) {
	return rs.Repo.FilterStudents(ctx, academic.StudentFilter{
		DepartmentID: filter.DepartmentID,
		Level:        filter.Level,
	})
}
