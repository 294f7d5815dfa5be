package grading

import (
	"github.com/shopspring/decimal"

	"github.com/trezcool/academia/core/academic"
)

// Statistics summarizes a non-empty pool of grade values.
type Statistics struct {
	Count     int        `json:"count"`
	Mean      Score      `json:"mean"`
	Min       Score      `json:"min"`
	Max       Score      `json:"max"`
	PassCount int        `json:"pass_count"`
	FailCount int        `json:"fail_count"`
	PassRate  Percentage `json:"pass_rate"`
}

// SubjectStatistics holds the statistics of one subject's grades.
// NoData is set, and Statistics nil, when the subject has no grade.
type SubjectStatistics struct {
	Subject    academic.Subject `json:"subject"`
	NoData     bool             `json:"no_data"`
	Statistics *Statistics      `json:"statistics"`
}

type TermStatistics struct {
	Term         academic.Term       `json:"term"`
	SubjectCount int                 `json:"subject_count"`
	StudentCount int                 `json:"student_count"`
	Subjects     []SubjectStatistics `json:"subjects"`
}

// ComputeStatistics returns false when grades is empty.
func ComputeStatistics(grades []academic.Grade) (Statistics, bool) {
	if len(grades) == 0 {
		return Statistics{}, false
	}
	var (
		sum      = decimal.Zero
		min, max = grades[0].Value, grades[0].Value
		stats    = Statistics{Count: len(grades)}
	)
	for _, g := range grades {
		sum = sum.Add(g.Value)
		if g.Value.LessThan(min) {
			min = g.Value
		}
		if g.Value.GreaterThan(max) {
			max = g.Value
		}
		if g.Value.GreaterThanOrEqual(PassMark) {
			stats.PassCount++
		}
	}
	stats.FailCount = stats.Count - stats.PassCount
	stats.Mean = NewScore(sum.Div(decimal.NewFromInt(int64(stats.Count))))
	stats.Min = NewScore(min)
	stats.Max = NewScore(max)
	stats.PassRate = NewPercentage(stats.PassCount, stats.Count)
	return stats, true
}

func BuildSubjectStatistics(subject academic.Subject, grades []academic.Grade) SubjectStatistics {
	ss := SubjectStatistics{Subject: subject}
	if stats, ok := ComputeStatistics(grades); ok {
		ss.Statistics = &stats
	} else {
		ss.NoData = true
	}
	return ss
}

// BuildTermStatistics has one row per graded subject; ungraded subjects are omitted
// but still counted in SubjectCount. StudentCount is the number of distinct students
// holding at least one grade in the term.
func BuildTermStatistics(term academic.Term, subjects []academic.Subject, grades []academic.Grade) TermStatistics {
	bySubject := groupBySubject(subjects, grades)
	students := make(map[string]struct{})

	ts := TermStatistics{
		Term:         term,
		SubjectCount: len(subjects),
		Subjects:     make([]SubjectStatistics, 0, len(subjects)),
	}
	for _, subj := range subjects {
		gs := bySubject[subj.ID]
		if len(gs) == 0 {
			continue
		}
		for _, g := range gs {
			students[g.StudentID] = struct{}{}
		}
		ts.Subjects = append(ts.Subjects, BuildSubjectStatistics(subj, gs))
	}
	ts.StudentCount = len(students)
	return ts
}
