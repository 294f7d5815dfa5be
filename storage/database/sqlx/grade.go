package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academic"
)

var gradeColumns = []string{
	"id", "value", "kind", "session", "student_id", "subject_id", "created_at", "updated_at",
}

func insertGradesQuery(grades []academic.Grade) sq.InsertBuilder {
	qb := psql.Insert("grade").Columns(gradeColumns...)
	for _, g := range grades {
		qb = qb.Values(g.ID, g.Value, g.Kind, g.Session, g.StudentID, g.SubjectID, g.CreatedAt, g.UpdatedAt)
	}
	return qb
}

// CreateGrades inserts every grade in one statement and one transaction.
func (repo academicRepository) CreateGrades(ctx context.Context, grades ...academic.Grade) ([]academic.Grade, error) {
	if len(grades) == 0 {
		return []academic.Grade{}, nil
	}
	err := repo.inTx(ctx, func(tx core.DBExecutor) error {
		return repo.exec(ctx, tx, insertGradesQuery(grades), "inserting grades", nil)
	})
	if err != nil {
		return nil, err
	}
	return grades, nil
}

// filterGradesQuery returns false when filter can match no grade.
func filterGradesQuery(filter academic.GradeFilter) (sq.SelectBuilder, bool) {
	qb := psql.Select(gradeColumns...).From("grade").OrderBy("created_at ASC", "id ASC")
	for _, ref := range []idFilter{{"student_id", filter.StudentID}, {"subject_id", filter.SubjectID}} {
		if ref.id == "" {
			continue
		}
		if !validID(ref.id) {
			return qb, false
		}
		qb = qb.Where(sq.Eq{ref.column: ref.id})
	}
	if filter.TermID != "" {
		if !validID(filter.TermID) {
			return qb, false
		}
		qb = qb.Where(sq.Expr("subject_id IN (SELECT id FROM subject WHERE term_id = ?)", filter.TermID))
	}
	if filter.Session != "" {
		qb = qb.Where(sq.Eq{"session": filter.Session})
	}
	if filter.Kind != "" {
		qb = qb.Where(sq.Eq{"kind": filter.Kind})
	}
	return qb, true
}

func (repo academicRepository) FilterGrades(ctx context.Context, filter academic.GradeFilter) ([]academic.Grade, error) {
	qb, ok := filterGradesQuery(filter)
	if !ok {
		return []academic.Grade{}, nil
	}

	grades := make([]academic.Grade, 0)
	if err := repo.sel(ctx, repo.db, &grades, qb, "querying grades"); err != nil {
		return nil, err
	}
	return grades, nil
}

func (repo academicRepository) GetGradeByID(ctx context.Context, id string) (academic.Grade, error) {
	var grade academic.Grade
	if !validID(id) {
		return grade, academic.ErrGradeNotFound
	}
	qb := psql.Select(gradeColumns...).From("grade").Where(sq.Eq{"id": id})
	err := repo.get(ctx, repo.db, &grade, qb, "finding grade", academic.ErrGradeNotFound)
	return grade, err
}

func (repo academicRepository) UpdateGradeValue(ctx context.Context, id string, value decimal.Decimal, updatedAt time.Time) (academic.Grade, error) {
	if !validID(id) {
		return academic.Grade{}, academic.ErrGradeNotFound
	}
	qb := psql.Update("grade").
		Set("value", value).
		Set("updated_at", updatedAt).
		Where(sq.Eq{"id": id})
	if err := repo.exec(ctx, repo.db, qb, "updating grade", academic.ErrGradeNotFound); err != nil {
		return academic.Grade{}, err
	}
	return repo.GetGradeByID(ctx, id)
}

func (repo academicRepository) DeleteGrade(ctx context.Context, id string) error {
	return repo.deleteByID(ctx, "grade", id, "deleting grade", academic.ErrGradeNotFound)
}
