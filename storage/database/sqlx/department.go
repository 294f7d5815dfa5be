package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/trezcool/academia/core/academic"
)

var departmentColumns = []string{"id", "code", "name", "created_at", "updated_at"}

func (repo academicRepository) CreateDepartment(ctx context.Context, dept academic.Department) (academic.Department, error) {
	qb := psql.Insert("department").
		Columns(departmentColumns...).
		Values(dept.ID, dept.Code, dept.Name, dept.CreatedAt, dept.UpdatedAt)
	if err := repo.exec(ctx, repo.db, qb, "inserting department", nil); err != nil {
		return academic.Department{}, err
	}
	return dept, nil
}

func (repo academicRepository) QueryAllDepartments(ctx context.Context) ([]academic.Department, error) {
	depts := make([]academic.Department, 0)
	qb := psql.Select(departmentColumns...).From("department").OrderBy("code ASC")
	if err := repo.sel(ctx, repo.db, &depts, qb, "querying departments"); err != nil {
		return nil, err
	}
	return depts, nil
}

func (repo academicRepository) GetDepartmentByID(ctx context.Context, id string) (academic.Department, error) {
	var dept academic.Department
	if !validID(id) {
		return dept, academic.ErrDepartmentNotFound
	}
	qb := psql.Select(departmentColumns...).From("department").Where(sq.Eq{"id": id})
	err := repo.get(ctx, repo.db, &dept, qb, "finding department", academic.ErrDepartmentNotFound)
	return dept, err
}

func (repo academicRepository) UpdateDepartment(ctx context.Context, dept academic.Department) (academic.Department, error) {
	qb := psql.Update("department").
		SetMap(map[string]interface{}{
			"code":       dept.Code,
			"name":       dept.Name,
			"updated_at": dept.UpdatedAt,
		}).
		Where(sq.Eq{"id": dept.ID})
	if err := repo.exec(ctx, repo.db, qb, "updating department", academic.ErrDepartmentNotFound); err != nil {
		return academic.Department{}, err
	}
	return dept, nil
}

func (repo academicRepository) DeleteDepartment(ctx context.Context, id string) error {
	return repo.deleteByID(ctx, "department", id, "deleting department", academic.ErrDepartmentNotFound)
}
