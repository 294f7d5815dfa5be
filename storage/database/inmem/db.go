package inmemdb

import (
	"sync"

	"github.com/trezcool/academia/core/academic"
)

// DB keeps every academic table behind one lock,
// so that cross-table checks and multi-row writes are atomic.
type DB struct {
	sync.RWMutex

	departments map[string]*academic.Department
	students    map[string]*academic.Student
	teachers    map[string]*academic.Teacher
	years       map[string]*academic.AcademicYear
	terms       map[string]*academic.Term
	subjects    map[string]*academic.Subject
	grades      map[string]*academic.Grade
}

func Open() *DB {
	db := &DB{}
	db.reset()
	return db
}

func (db *DB) reset() {
	db.departments = make(map[string]*academic.Department)
	db.students = make(map[string]*academic.Student)
	db.teachers = make(map[string]*academic.Teacher)
	db.years = make(map[string]*academic.AcademicYear)
	db.terms = make(map[string]*academic.Term)
	db.subjects = make(map[string]*academic.Subject)
	db.grades = make(map[string]*academic.Grade)
}

// Truncate empties every table.
func (db *DB) Truncate() {
	db.Lock()
	defer db.Unlock()
	db.reset()
}
