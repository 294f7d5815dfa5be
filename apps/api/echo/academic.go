package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/academic"
)

type academicApi struct {
	svc      *academic.Service
	validate *validator.Validate
}

func registerAcademicAPI(g *echo.Group, svc *academic.Service, validate *validator.Validate) {
	api := academicApi{
		svc:      svc,
		validate: validate,
	}

	dg := g.Group("/departments")
	dg.POST("", api.createDepartment)
	dg.GET("", api.queryDepartments)
	dg.GET("/:id", api.retrieveDepartment)
	dg.PUT("/:id", api.updateDepartment)
	dg.DELETE("/:id", api.destroyDepartment)
	g.GET("/statistics/departments/:id", api.departmentStatistics)

	sg := g.Group("/students")
	sg.POST("", api.createStudent)
	sg.GET("", api.queryStudents)
	sg.GET("/:id", api.retrieveStudent)
	sg.PUT("/:id", api.updateStudent)
	sg.DELETE("/:id", api.destroyStudent)
	sg.GET("/:id/grades", api.studentGrades)

	tg := g.Group("/teachers")
	tg.POST("", api.createTeacher)
	tg.GET("", api.queryTeachers)
	tg.GET("/:id", api.retrieveTeacher)
	tg.PUT("/:id", api.updateTeacher)
	tg.DELETE("/:id", api.destroyTeacher)

	yg := g.Group("/academic-years")
	yg.POST("", api.createAcademicYear)
	yg.GET("", api.queryAcademicYears)
	yg.GET("/active", api.retrieveActiveAcademicYear)
	yg.GET("/:id", api.retrieveAcademicYear)
	yg.PUT("/:id", api.updateAcademicYear)
	yg.POST("/:id/activate", api.activateAcademicYear)
	yg.DELETE("/:id", api.destroyAcademicYear)

	trg := g.Group("/terms")
	trg.POST("", api.createTerm)
	trg.GET("", api.queryTerms)
	trg.GET("/:id", api.retrieveTerm)
	trg.PUT("/:id", api.updateTerm)
	trg.DELETE("/:id", api.destroyTerm)

	subg := g.Group("/subjects")
	subg.POST("", api.createSubject)
	subg.GET("", api.querySubjects)
	subg.GET("/:id", api.retrieveSubject)
	subg.PUT("/:id", api.updateSubject)
	subg.DELETE("/:id", api.destroySubject)

	gg := g.Group("/grades")
	gg.POST("", api.createGrade)
	gg.POST("/bulk", api.createGrades)
	gg.GET("", api.queryGrades)
	gg.GET("/:id", api.retrieveGrade)
	gg.PUT("/:id", api.updateGrade)
	gg.DELETE("/:id", api.destroyGrade)
}

// Departments

func (api *academicApi) createDepartment(ctx echo.Context) error {
	var data academic.NewDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDepartment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	dept, err := api.svc.CreateDepartment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating department")
	}
	return ctx.JSON(http.StatusCreated, dept)
}

func (api *academicApi) queryDepartments(ctx echo.Context) error {
	depts, err := api.svc.QueryAllDepartments(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying departments")
	}
	return ctx.JSON(http.StatusOK, depts)
}

func (api *academicApi) retrieveDepartment(ctx echo.Context) error {
	dept, err := api.svc.GetDepartment(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding department")
	}
	return ctx.JSON(http.StatusOK, dept)
}

func (api *academicApi) updateDepartment(ctx echo.Context) error {
	var data academic.NewDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDepartment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	dept, err := api.svc.UpdateDepartment(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating department")
	}
	return ctx.JSON(http.StatusOK, dept)
}

func (api *academicApi) destroyDepartment(ctx echo.Context) error {
	if err := api.svc.DeleteDepartment(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting department")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *academicApi) departmentStatistics(ctx echo.Context) error {
	stats, err := api.svc.DepartmentStatistics(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "computing department statistics")
	}
	return ctx.JSON(http.StatusOK, stats)
}

// Students

func (api *academicApi) createStudent(ctx echo.Context) error {
	var data academic.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	stud, err := api.svc.CreateStudent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, stud)
}

func (api *academicApi) queryStudents(ctx echo.Context) error {
	filter := new(academic.StudentFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []academic.Student{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)
	filter.Ordering = ordering.Orderings
	filter.Clean()

	studs, err := api.svc.FilterStudents(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, studs)
}

func (api *academicApi) retrieveStudent(ctx echo.Context) error {
	stud, err := api.svc.GetStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	return ctx.JSON(http.StatusOK, stud)
}

func (api *academicApi) updateStudent(ctx echo.Context) error {
	var data academic.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	stud, err := api.svc.UpdateStudent(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, stud)
}

func (api *academicApi) destroyStudent(ctx echo.Context) error {
	if err := api.svc.DeleteStudent(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *academicApi) studentGrades(ctx echo.Context) error {
	grades, err := api.svc.StudentGrades(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying student grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

// Teachers

func (api *academicApi) createTeacher(ctx echo.Context) error {
	var data academic.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	teacher, err := api.svc.CreateTeacher(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.JSON(http.StatusCreated, teacher)
}

func (api *academicApi) queryTeachers(ctx echo.Context) error {
	filter := new(academic.TeacherFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []academic.Teacher{})
	}

	teachers, err := api.svc.FilterTeachers(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *academicApi) retrieveTeacher(ctx echo.Context) error {
	teacher, err := api.svc.GetTeacher(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding teacher")
	}
	return ctx.JSON(http.StatusOK, teacher)
}

func (api *academicApi) updateTeacher(ctx echo.Context) error {
	var data academic.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	teacher, err := api.svc.UpdateTeacher(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating teacher")
	}
	return ctx.JSON(http.StatusOK, teacher)
}

func (api *academicApi) destroyTeacher(ctx echo.Context) error {
	if err := api.svc.DeleteTeacher(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Academic years

func (api *academicApi) createAcademicYear(ctx echo.Context) error {
	var data academic.NewAcademicYear
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAcademicYear")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	year, err := api.svc.CreateAcademicYear(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating academic year")
	}
	return ctx.JSON(http.StatusCreated, year)
}

func (api *academicApi) queryAcademicYears(ctx echo.Context) error {
	var filter academic.AcademicYearFilter
	if ctx.QueryParam("is_active") != "" {
		var isActive bool
		if err := echo.QueryParamsBinder(ctx).Bool("is_active", &isActive).BindError(); err != nil {
			return ctx.JSON(http.StatusOK, []academic.AcademicYear{})
		}
		filter.IsActive = &isActive
	}

	years, err := api.svc.FilterAcademicYears(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying academic years")
	}
	return ctx.JSON(http.StatusOK, years)
}

func (api *academicApi) retrieveAcademicYear(ctx echo.Context) error {
	year, err := api.svc.GetAcademicYear(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding academic year")
	}
	return ctx.JSON(http.StatusOK, year)
}

func (api *academicApi) retrieveActiveAcademicYear(ctx echo.Context) error {
	year, err := api.svc.GetActiveAcademicYear(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "finding active academic year")
	}
	return ctx.JSON(http.StatusOK, year)
}

func (api *academicApi) updateAcademicYear(ctx echo.Context) error {
	var data academic.NewAcademicYear
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAcademicYear")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	year, err := api.svc.UpdateAcademicYear(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating academic year")
	}
	return ctx.JSON(http.StatusOK, year)
}

func (api *academicApi) activateAcademicYear(ctx echo.Context) error {
	year, err := api.svc.ActivateAcademicYear(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "activating academic year")
	}
	return ctx.JSON(http.StatusOK, year)
}

func (api *academicApi) destroyAcademicYear(ctx echo.Context) error {
	if err := api.svc.DeleteAcademicYear(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting academic year")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Terms

func (api *academicApi) createTerm(ctx echo.Context) error {
	var data academic.NewTerm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTerm")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	term, err := api.svc.CreateTerm(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating term")
	}
	return ctx.JSON(http.StatusCreated, term)
}

func (api *academicApi) queryTerms(ctx echo.Context) error {
	filter := new(academic.TermFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []academic.Term{})
	}

	terms, err := api.svc.FilterTerms(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying terms")
	}
	return ctx.JSON(http.StatusOK, terms)
}

func (api *academicApi) retrieveTerm(ctx echo.Context) error {
	term, err := api.svc.GetTerm(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding term")
	}
	return ctx.JSON(http.StatusOK, term)
}

func (api *academicApi) updateTerm(ctx echo.Context) error {
	var data academic.NewTerm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTerm")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	term, err := api.svc.UpdateTerm(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating term")
	}
	return ctx.JSON(http.StatusOK, term)
}

func (api *academicApi) destroyTerm(ctx echo.Context) error {
	if err := api.svc.DeleteTerm(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting term")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Subjects

func (api *academicApi) createSubject(ctx echo.Context) error {
	var data academic.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	subj, err := api.svc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, subj)
}

func (api *academicApi) querySubjects(ctx echo.Context) error {
	filter := new(academic.SubjectFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []academic.Subject{})
	}

	subjects, err := api.svc.FilterSubjects(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *academicApi) retrieveSubject(ctx echo.Context) error {
	subj, err := api.svc.GetSubject(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding subject")
	}
	return ctx.JSON(http.StatusOK, subj)
}

func (api *academicApi) updateSubject(ctx echo.Context) error {
	var data academic.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	subj, err := api.svc.UpdateSubject(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, subj)
}

func (api *academicApi) destroySubject(ctx echo.Context) error {
	if err := api.svc.DeleteSubject(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Grades

func (api *academicApi) createGrade(ctx echo.Context) error {
	var data academic.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grade, err := api.svc.CreateGrade(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating grade")
	}
	return ctx.JSON(http.StatusCreated, grade)
}

func (api *academicApi) createGrades(ctx echo.Context) error {
	var data academic.BulkGrades
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkGrades")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grades, err := api.svc.CreateGrades(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating grades")
	}
	return ctx.JSON(http.StatusCreated, grades)
}

func (api *academicApi) queryGrades(ctx echo.Context) error {
	filter := new(academic.GradeFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []academic.Grade{})
	}

	grades, err := api.svc.FilterGrades(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *academicApi) retrieveGrade(ctx echo.Context) error {
	grade, err := api.svc.GetGrade(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding grade")
	}
	return ctx.JSON(http.StatusOK, grade)
}

// updateGrade only edits the value: a grade's identity tuple is fixed.
func (api *academicApi) updateGrade(ctx echo.Context) error {
	var data academic.UpdateGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGrade")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grade, err := api.svc.UpdateGrade(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating grade")
	}
	return ctx.JSON(http.StatusOK, grade)
}

func (api *academicApi) destroyGrade(ctx echo.Context) error {
	if err := api.svc.DeleteGrade(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	return ctx.NoContent(http.StatusNoContent)
}
