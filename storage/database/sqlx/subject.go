package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/trezcool/academia/core/academic"
)

var subjectColumns = []string{
	"id", "code", "name", "coefficient", "credits", "term_id", "teacher_id", "created_at", "updated_at",
}

func (repo academicRepository) CreateSubject(ctx context.Context, subj academic.Subject) (academic.Subject, error) {
	qb := psql.Insert("subject").
		Columns(subjectColumns...).
		Values(
			subj.ID, subj.Code, subj.Name, subj.Coefficient, subj.Credits, subj.TermID, subj.TeacherID,
			subj.CreatedAt, subj.UpdatedAt,
		)
	if err := repo.exec(ctx, repo.db, qb, "inserting subject", nil); err != nil {
		return academic.Subject{}, err
	}
	return subj, nil
}

func (repo academicRepository) FilterSubjects(ctx context.Context, filter academic.SubjectFilter) ([]academic.Subject, error) {
	qb := psql.Select(subjectColumns...).From("subject").OrderBy("code ASC")
	for _, ref := range []idFilter{{"term_id", filter.TermID}, {"teacher_id", filter.TeacherID}} {
		if ref.id == "" {
			continue
		}
		if !validID(ref.id) {
			return []academic.Subject{}, nil
		}
		qb = qb.Where(sq.Eq{ref.column: ref.id})
	}

	subjects := make([]academic.Subject, 0)
	if err := repo.sel(ctx, repo.db, &subjects, qb, "querying subjects"); err != nil {
		return nil, err
	}
	return subjects, nil
}

func (repo academicRepository) GetSubjectByID(ctx context.Context, id string) (academic.Subject, error) {
	var subj academic.Subject
	if !validID(id) {
		return subj, academic.ErrSubjectNotFound
	}
	qb := psql.Select(subjectColumns...).From("subject").Where(sq.Eq{"id": id})
	err := repo.get(ctx, repo.db, &subj, qb, "finding subject", academic.ErrSubjectNotFound)
	return subj, err
}

func (repo academicRepository) UpdateSubject(ctx context.Context, subj academic.Subject) (academic.Subject, error) {
	qb := psql.Update("subject").
		SetMap(map[string]interface{}{
			"code":        subj.Code,
			"name":        subj.Name,
			"coefficient": subj.Coefficient,
			"credits":     subj.Credits,
			"term_id":     subj.TermID,
			"teacher_id":  subj.TeacherID,
			"updated_at":  subj.UpdatedAt,
		}).
		Where(sq.Eq{"id": subj.ID})
	if err := repo.exec(ctx, repo.db, qb, "updating subject", academic.ErrSubjectNotFound); err != nil {
		return academic.Subject{}, err
	}
	return subj, nil
}

func (repo academicRepository) DeleteSubject(ctx context.Context, id string) error {
	return repo.deleteByID(ctx, "subject", id, "deleting subject", academic.ErrSubjectNotFound)
}
