package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/trezcool/academia/core/academic"
)

var studentColumns = []string{
	"id", "registration_number", "first_name", "last_name", "email", "level", "department_id", "created_at", "updated_at",
}

func (repo academicRepository) CreateStudent(ctx context.Context, stud academic.Student) (academic.Student, error) {
	qb := psql.Insert("student").
		Columns(studentColumns...).
		Values(
			stud.ID, stud.RegistrationNumber, stud.FirstName, stud.LastName, stud.Email,
			stud.Level, stud.DepartmentID, stud.CreatedAt, stud.UpdatedAt,
		)
	if err := repo.exec(ctx, repo.db, qb, "inserting student", nil); err != nil {
		return academic.Student{}, err
	}
	return stud, nil
}

func (repo academicRepository) FilterStudents(ctx context.Context, filter academic.StudentFilter) ([]academic.Student, error) {
	filter.Clean() // only known fields reach ORDER BY
	qb := psql.Select(studentColumns...).From("student")
	for _, ord := range filter.Ordering {
		qb = qb.OrderBy(ord.String())
	}
	qb = qb.OrderBy("registration_number ASC")

	if filter.DepartmentID != "" {
		if !validID(filter.DepartmentID) {
			return []academic.Student{}, nil
		}
		qb = qb.Where(sq.Eq{"department_id": filter.DepartmentID})
	}
	if filter.Level != "" {
		qb = qb.Where(sq.Eq{"level": filter.Level})
	}
	// students with names, registration number or email matching the search keyword
	if filter.Search != "" {
		val := "%" + filter.Search + "%"
		qb = qb.Where(sq.Or{
			sq.ILike{"first_name": val},
			sq.ILike{"last_name": val},
			sq.ILike{"registration_number": val},
			sq.ILike{"email": val},
		})
	}

	studs := make([]academic.Student, 0)
	if err := repo.sel(ctx, repo.db, &studs, qb, "querying students"); err != nil {
		return nil, err
	}
	return studs, nil
}

func (repo academicRepository) GetStudentByID(ctx context.Context, id string) (academic.Student, error) {
	var stud academic.Student
	if !validID(id) {
		return stud, academic.ErrStudentNotFound
	}
	qb := psql.Select(studentColumns...).From("student").Where(sq.Eq{"id": id})
	err := repo.get(ctx, repo.db, &stud, qb, "finding student", academic.ErrStudentNotFound)
	return stud, err
}

func (repo academicRepository) UpdateStudent(ctx context.Context, stud academic.Student) (academic.Student, error) {
	qb := psql.Update("student").
		SetMap(map[string]interface{}{
			"first_name":    stud.FirstName,
			"last_name":     stud.LastName,
			"email":         stud.Email,
			"level":         stud.Level,
			"department_id": stud.DepartmentID,
			"updated_at":    stud.UpdatedAt,
		}).
		Where(sq.Eq{"id": stud.ID})
	if err := repo.exec(ctx, repo.db, qb, "updating student", academic.ErrStudentNotFound); err != nil {
		return academic.Student{}, err
	}
	return stud, nil
}

func (repo academicRepository) DeleteStudent(ctx context.Context, id string) error {
	return repo.deleteByID(ctx, "student", id, "deleting student", academic.ErrStudentNotFound)
}
