package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academic"
)

var yearColumns = []string{"id", "label", "start_date", "end_date", "is_active", "created_at", "updated_at"}

// deactivateYearsQuery clears the active flag of every year but id.
func deactivateYearsQuery(id string, updatedAt time.Time) sq.UpdateBuilder {
	return psql.Update("academic_year").
		Set("is_active", false).
		Set("updated_at", updatedAt).
		Where(sq.And{sq.Eq{"is_active": true}, sq.NotEq{"id": id}})
}

func activateYearQuery(id string, updatedAt time.Time) sq.UpdateBuilder {
	return psql.Update("academic_year").
		Set("is_active", true).
		Set("updated_at", updatedAt).
		Where(sq.Eq{"id": id})
}

func insertYearQuery(year academic.AcademicYear) sq.InsertBuilder {
	return psql.Insert("academic_year").
		Columns(yearColumns...).
		Values(year.ID, year.Label, year.StartDate, year.EndDate, year.IsActive, year.CreatedAt, year.UpdatedAt)
}

func updateYearQuery(year academic.AcademicYear) sq.UpdateBuilder {
	return psql.Update("academic_year").
		Set("label", year.Label).
		Set("start_date", year.StartDate).
		Set("end_date", year.EndDate).
		Set("is_active", year.IsActive).
		Set("updated_at", year.UpdatedAt).
		Where(sq.Eq{"id": year.ID})
}

// CreateAcademicYear deactivates the other years first when year is active,
// academic_year_active_key allowing a single active row.
func (repo academicRepository) CreateAcademicYear(ctx context.Context, year academic.AcademicYear) (academic.AcademicYear, error) {
	err := repo.inTx(ctx, func(tx core.DBExecutor) error {
		if year.IsActive {
			if err := repo.exec(ctx, tx, deactivateYearsQuery(year.ID, year.UpdatedAt), "deactivating academic years", nil); err != nil {
				return err
			}
		}
		return repo.exec(ctx, tx, insertYearQuery(year), "inserting academic year", nil)
	})
	if err != nil {
		return academic.AcademicYear{}, err
	}
	return year, nil
}

func (repo academicRepository) FilterAcademicYears(ctx context.Context, filter academic.AcademicYearFilter) ([]academic.AcademicYear, error) {
	qb := psql.Select(yearColumns...).From("academic_year").OrderBy("start_date DESC")
	if filter.IsActive != nil {
		qb = qb.Where(sq.Eq{"is_active": *filter.IsActive})
	}

	years := make([]academic.AcademicYear, 0)
	if err := repo.sel(ctx, repo.db, &years, qb, "querying academic years"); err != nil {
		return nil, err
	}
	return years, nil
}

func (repo academicRepository) getAcademicYear(ctx context.Context, exec core.DBExecutor, id string) (academic.AcademicYear, error) {
	var year academic.AcademicYear
	if !validID(id) {
		return year, academic.ErrAcademicYearNotFound
	}
	qb := psql.Select(yearColumns...).From("academic_year").Where(sq.Eq{"id": id})
	err := repo.get(ctx, exec, &year, qb, "finding academic year", academic.ErrAcademicYearNotFound)
	return year, err
}

func (repo academicRepository) GetAcademicYearByID(ctx context.Context, id string) (academic.AcademicYear, error) {
	return repo.getAcademicYear(ctx, repo.db, id)
}

func (repo academicRepository) GetActiveAcademicYear(ctx context.Context) (academic.AcademicYear, error) {
	var year academic.AcademicYear
	qb := psql.Select(yearColumns...).From("academic_year").Where(sq.Eq{"is_active": true})
	err := repo.get(ctx, repo.db, &year, qb, "finding active academic year", academic.ErrNoActiveYear)
	return year, err
}

// ActivateAcademicYear deactivates the other years, then activates id, in one transaction.
func (repo academicRepository) ActivateAcademicYear(ctx context.Context, id string, updatedAt time.Time) (academic.AcademicYear, error) {
	var year academic.AcademicYear
	err := repo.inTx(ctx, func(tx core.DBExecutor) error {
		if _, err := repo.getAcademicYear(ctx, tx, id); err != nil {
			return err
		}
		if err := repo.exec(ctx, tx, deactivateYearsQuery(id, updatedAt), "deactivating academic years", nil); err != nil {
			return err
		}
		if err := repo.exec(ctx, tx, activateYearQuery(id, updatedAt), "activating academic year", academic.ErrAcademicYearNotFound); err != nil {
			return err
		}

		var err error
		year, err = repo.getAcademicYear(ctx, tx, id)
		return err
	})
	return year, err
}

func (repo academicRepository) UpdateAcademicYear(ctx context.Context, year academic.AcademicYear) (academic.AcademicYear, error) {
	if !validID(year.ID) {
		return academic.AcademicYear{}, academic.ErrAcademicYearNotFound
	}
	var updated academic.AcademicYear
	err := repo.inTx(ctx, func(tx core.DBExecutor) error {
		if year.IsActive {
			if err := repo.exec(ctx, tx, deactivateYearsQuery(year.ID, year.UpdatedAt), "deactivating academic years", nil); err != nil {
				return err
			}
		}
		if err := repo.exec(ctx, tx, updateYearQuery(year), "updating academic year", academic.ErrAcademicYearNotFound); err != nil {
			return err
		}

		var err error
		updated, err = repo.getAcademicYear(ctx, tx, year.ID)
		return err
	})
	return updated, err
}

func (repo academicRepository) DeleteAcademicYear(ctx context.Context, id string) error {
	return repo.deleteByID(ctx, "academic_year", id, "deleting academic year", academic.ErrAcademicYearNotFound)
}
