package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/trezcool/academia/core/academic"
)

var termColumns = []string{"id", "name", "number", "academic_year_id", "created_at", "updated_at"}

func (repo academicRepository) CreateTerm(ctx context.Context, term academic.Term) (academic.Term, error) {
	qb := psql.Insert("term").
		Columns(termColumns...).
		Values(term.ID, term.Name, term.Number, term.AcademicYearID, term.CreatedAt, term.UpdatedAt)
	if err := repo.exec(ctx, repo.db, qb, "inserting term", nil); err != nil {
		return academic.Term{}, err
	}
	return term, nil
}

func (repo academicRepository) FilterTerms(ctx context.Context, filter academic.TermFilter) ([]academic.Term, error) {
	qb := psql.Select(termColumns...).From("term").OrderBy("academic_year_id ASC", "number ASC")
	if filter.AcademicYearID != "" {
		if !validID(filter.AcademicYearID) {
			return []academic.Term{}, nil
		}
		qb = qb.Where(sq.Eq{"academic_year_id": filter.AcademicYearID})
	}

	terms := make([]academic.Term, 0)
	if err := repo.sel(ctx, repo.db, &terms, qb, "querying terms"); err != nil {
		return nil, err
	}
	return terms, nil
}

func (repo academicRepository) GetTermByID(ctx context.Context, id string) (academic.Term, error) {
	var term academic.Term
	if !validID(id) {
		return term, academic.ErrTermNotFound
	}
	qb := psql.Select(termColumns...).From("term").Where(sq.Eq{"id": id})
	err := repo.get(ctx, repo.db, &term, qb, "finding term", academic.ErrTermNotFound)
	return term, err
}

func updateTermQuery(term academic.Term) sq.UpdateBuilder {
	return psql.Update("term").
		Set("name", term.Name).
		Set("number", term.Number).
		Set("academic_year_id", term.AcademicYearID).
		Set("updated_at", term.UpdatedAt).
		Where(sq.Eq{"id": term.ID})
}

// UpdateTerm maps a (year, number) clash to academic.ErrTermNumberExists through term_number_key.
func (repo academicRepository) UpdateTerm(ctx context.Context, term academic.Term) (academic.Term, error) {
	if !validID(term.ID) {
		return academic.Term{}, academic.ErrTermNotFound
	}
	if err := repo.exec(ctx, repo.db, updateTermQuery(term), "updating term", academic.ErrTermNotFound); err != nil {
		return academic.Term{}, err
	}
	return repo.GetTermByID(ctx, term.ID)
}

func (repo academicRepository) DeleteTerm(ctx context.Context, id string) error {
	return repo.deleteByID(ctx, "term", id, "deleting term", academic.ErrTermNotFound)
}
