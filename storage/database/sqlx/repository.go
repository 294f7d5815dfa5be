package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academic"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	// unique constraint name -> conflict error
	uniqueConflicts = map[string]error{
		"department_code_key":             academic.ErrDepartmentCodeExists,
		"student_registration_number_key": academic.ErrStudentRegistrationExists,
		"student_email_key":               academic.ErrStudentEmailExists,
		"teacher_registration_number_key": academic.ErrTeacherRegistrationExists,
		"teacher_email_key":               academic.ErrTeacherEmailExists,
		"academic_year_label_key":         academic.ErrYearLabelExists,
		"term_number_key":                 academic.ErrTermNumberExists,
		"subject_code_key":                academic.ErrSubjectCodeExists,
		"grade_tuple_key":                 academic.ErrDuplicateGrade,
	}
)

// idFilter filters a uuid column; an id that is not a uuid matches nothing.
type idFilter struct {
	column string
	id     string
}

type academicRepository struct {
	db core.DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db core.DB) *academicRepository {
	return &academicRepository{db: db}
}

// constraintViolation extracts the SQLSTATE code and constraint name of a lib/pq or pgx error.
func constraintViolation(err error) (code, constraint, msg string, ok bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint, pqErr.Message, true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, pgErr.Message, true
	}
	return "", "", "", false
}

// trapErr maps "no rows" to notFound and constraint violations to conflicts.
func trapErr(err error, msg string, notFound error) error {
	if err == sql.ErrNoRows && notFound != nil {
		return notFound
	}
	if code, constraint, message, ok := constraintViolation(err); ok {
		switch code {
		case pqUniqueViolation:
			if conflict, ok := uniqueConflicts[constraint]; ok {
				return conflict
			}
			return core.NewConflictError(message)
		case pqForeignKeyViolation:
			if constraint == "term_academic_year_id_fkey" {
				return academic.ErrYearHasTerms
			}
			return academic.ErrInUse
		}
	}
	return errors.Wrap(err, msg)
}

// validID reports whether id can be compared against a uuid column.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (repo academicRepository) get(ctx context.Context, exec core.DBExecutor, dest interface{}, qb sq.SelectBuilder, msg string, notFound error) error {
	query, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if err = exec.GetContext(ctx, dest, query, args...); err != nil {
		return trapErr(err, msg, notFound)
	}
	return nil
}

func (repo academicRepository) sel(ctx context.Context, exec core.DBExecutor, dest interface{}, qb sq.SelectBuilder, msg string) error {
	query, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if err = exec.SelectContext(ctx, dest, query, args...); err != nil {
		return trapErr(err, msg, nil)
	}
	return nil
}

func (repo academicRepository) exec(ctx context.Context, exec core.DBExecutor, qb sq.Sqlizer, msg string, notFound error) error {
	query, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return trapErr(err, msg, notFound)
	}
	if notFound != nil {
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return notFound
		}
	}
	return nil
}

// inTx runs fn inside a transaction, committed only when fn succeeds.
func (repo academicRepository) inTx(ctx context.Context, fn func(tx core.DBExecutor) error) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

func (repo academicRepository) deleteByID(ctx context.Context, table, id, msg string, notFound error) error {
	if !validID(id) {
		return notFound
	}
	return repo.exec(ctx, repo.db, psql.Delete(table).Where(sq.Eq{"id": id}), msg, notFound)
}
