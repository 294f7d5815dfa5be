package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/trezcool/academia/core/academic"
)

var teacherColumns = []string{
	"id", "registration_number", "first_name", "last_name", "email", "title", "specialty", "department_id",
	"created_at", "updated_at",
}

func (repo academicRepository) CreateTeacher(ctx context.Context, teacher academic.Teacher) (academic.Teacher, error) {
	qb := psql.Insert("teacher").
		Columns(teacherColumns...).
		Values(
			teacher.ID, teacher.RegistrationNumber, teacher.FirstName, teacher.LastName, teacher.Email,
			teacher.Title, teacher.Specialty, teacher.DepartmentID, teacher.CreatedAt, teacher.UpdatedAt,
		)
	if err := repo.exec(ctx, repo.db, qb, "inserting teacher", nil); err != nil {
		return academic.Teacher{}, err
	}
	return teacher, nil
}

func (repo academicRepository) FilterTeachers(ctx context.Context, filter academic.TeacherFilter) ([]academic.Teacher, error) {
	qb := psql.Select(teacherColumns...).From("teacher").OrderBy("last_name ASC", "first_name ASC")
	if filter.DepartmentID != "" {
		if !validID(filter.DepartmentID) {
			return []academic.Teacher{}, nil
		}
		qb = qb.Where(sq.Eq{"department_id": filter.DepartmentID})
	}

	teachers := make([]academic.Teacher, 0)
	if err := repo.sel(ctx, repo.db, &teachers, qb, "querying teachers"); err != nil {
		return nil, err
	}
	return teachers, nil
}

func (repo academicRepository) GetTeacherByID(ctx context.Context, id string) (academic.Teacher, error) {
	var teacher academic.Teacher
	if !validID(id) {
		return teacher, academic.ErrTeacherNotFound
	}
	qb := psql.Select(teacherColumns...).From("teacher").Where(sq.Eq{"id": id})
	err := repo.get(ctx, repo.db, &teacher, qb, "finding teacher", academic.ErrTeacherNotFound)
	return teacher, err
}

func (repo academicRepository) UpdateTeacher(ctx context.Context, teacher academic.Teacher) (academic.Teacher, error) {
	qb := psql.Update("teacher").
		SetMap(map[string]interface{}{
			"registration_number": teacher.RegistrationNumber,
			"first_name":          teacher.FirstName,
			"last_name":           teacher.LastName,
			"email":               teacher.Email,
			"title":               teacher.Title,
			"specialty":           teacher.Specialty,
			"department_id":       teacher.DepartmentID,
			"updated_at":          teacher.UpdatedAt,
		}).
		Where(sq.Eq{"id": teacher.ID})
	if err := repo.exec(ctx, repo.db, qb, "updating teacher", academic.ErrTeacherNotFound); err != nil {
		return academic.Teacher{}, err
	}
	return teacher, nil
}

func (repo academicRepository) DeleteTeacher(ctx context.Context, id string) error {
	return repo.deleteByID(ctx, "teacher", id, "deleting teacher", academic.ErrTeacherNotFound)
}
