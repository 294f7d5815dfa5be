package grading

import (
	"sort"

	"github.com/trezcool/academia/core/academic"
)

type RankingEntry struct {
	Student    academic.Student `json:"student"`
	Average    Score            `json:"average"`
	Rank       *int             `json:"rank"` // nil when Average is not available
	GradeCount int              `json:"grade_count"`
}

type Ranking struct {
	Term       academic.Term  `json:"term"`
	Entries    []RankingEntry `json:"entries"`
	CohortSize int            `json:"cohort_size"`
}

// BuildRanking ranks the cohort on its weighted term average, highest first.
// Students without grades come last and get no rank. Equal averages keep the
// cohort order and still get distinct ranks.
func BuildRanking(term academic.Term, cohort []academic.Student, subjects []academic.Subject, grades []academic.Grade) Ranking {
	byStudent := make(map[string][]academic.Grade, len(cohort))
	for _, g := range grades {
		byStudent[g.StudentID] = append(byStudent[g.StudentID], g)
	}

	entries := make([]RankingEntry, 0, len(cohort))
	for _, stud := range cohort {
		tr := aggregate(subjects, byStudent[stud.ID])
		entries = append(entries, RankingEntry{
			Student:    stud,
			Average:    tr.average,
			GradeCount: tr.gradeCount,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, aok := entries[i].Average.Decimal()
		b, bok := entries[j].Average.Decimal()
		if !aok {
			return false
		}
		return !bok || a.GreaterThan(b)
	})

	rank := 0
	for i := range entries {
		if !entries[i].Average.Valid() {
			break
		}
		rank++
		r := rank
		entries[i].Rank = &r
	}

	return Ranking{
		Term:       term,
		Entries:    entries,
		CohortSize: len(cohort),
	}
}
