package grading

import (
	"github.com/shopspring/decimal"

	"github.com/trezcool/academia/core/academic"
)

// SubjectAverage is the plain mean of the grade values, whatever their kind or session.
// It is not available when grades is empty.
func SubjectAverage(grades []academic.Grade) Score {
	if len(grades) == 0 {
		return Score{}
	}
	sum := decimal.Zero
	for _, g := range grades {
		sum = sum.Add(g.Value)
	}
	return NewScore(sum.Div(decimal.NewFromInt(int64(len(grades)))))
}

// termResult is the weighted aggregation of a student's subject averages over a term.
type termResult struct {
	results       []SubjectResult
	average       Score
	totalCredits  int
	creditsEarned int
	gradeCount    int
}

// groupBySubject keeps the grades whose subject is in subjects.
func groupBySubject(subjects []academic.Subject, grades []academic.Grade) map[string][]academic.Grade {
	bySubject := make(map[string][]academic.Grade, len(subjects))
	for _, subj := range subjects {
		bySubject[subj.ID] = nil
	}
	for _, g := range grades {
		if gs, ok := bySubject[g.SubjectID]; ok {
			bySubject[g.SubjectID] = append(gs, g)
		}
	}
	return bySubject
}

// aggregate computes Σ(a·c)/Σc over the subjects holding at least one grade.
// Ungraded subjects are left out of both the weighted sum and the credits.
func aggregate(subjects []academic.Subject, grades []academic.Grade) termResult {
	bySubject := groupBySubject(subjects, grades)

	var (
		tr        = termResult{results: make([]SubjectResult, 0, len(subjects))}
		weighted  = decimal.Zero
		coefTotal = decimal.Zero
	)
	for _, subj := range subjects {
		gs := bySubject[subj.ID]
		avg := SubjectAverage(gs)
		res := SubjectResult{
			Subject: subj,
			Grades:  gs,
			Average: avg,
			Passed:  avg.Passing(),
		}
		if res.Grades == nil {
			res.Grades = []academic.Grade{}
		}
		tr.results = append(tr.results, res)

		value, ok := avg.Decimal()
		if !ok {
			continue
		}
		coef := decimal.NewFromInt(int64(subj.Coefficient))
		weighted = weighted.Add(value.Mul(coef))
		coefTotal = coefTotal.Add(coef)
		tr.totalCredits += subj.Credits
		if res.Passed {
			tr.creditsEarned += subj.Credits
		}
		tr.gradeCount += len(gs)
	}
	if coefTotal.IsPositive() {
		tr.average = NewScore(weighted.Div(coefTotal))
	}
	return tr
}
