package grading

import "github.com/trezcool/academia/core/academic"

// SubjectResult is a student's outcome in one subject.
type SubjectResult struct {
	Subject academic.Subject `json:"subject"`
	Grades  []academic.Grade `json:"grades"`
	Average Score            `json:"average"`
	Passed  bool             `json:"passed"`
}

// Transcript is a student's report card for one term.
type Transcript struct {
	Student       academic.Student `json:"student"`
	Term          academic.Term    `json:"term"`
	Results       []SubjectResult  `json:"results"`
	Average       Score            `json:"average"`
	Mention       Mention          `json:"mention"`
	TotalCredits  int              `json:"total_credits"`
	CreditsEarned int              `json:"credits_earned"`
	PassRate      Percentage       `json:"pass_rate"`
}

// BuildTranscript lists every subject of the term with the student's grades in it.
// grades outside of subjects are ignored.
func BuildTranscript(student academic.Student, term academic.Term, subjects []academic.Subject, grades []academic.Grade) Transcript {
	tr := aggregate(subjects, grades)
	return Transcript{
		Student:       student,
		Term:          term,
		Results:       tr.results,
		Average:       tr.average,
		Mention:       MentionFor(tr.average),
		TotalCredits:  tr.totalCredits,
		CreditsEarned: tr.creditsEarned,
		PassRate:      NewPercentage(tr.creditsEarned, tr.totalCredits),
	}
}
