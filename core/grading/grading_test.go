package grading

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core/academic"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func grade(studentID, subjectID, value string) academic.Grade {
	return academic.Grade{
		ID:        studentID + "-" + subjectID + "-" + value,
		Value:     dec(value),
		Kind:      academic.KindExam,
		Session:   academic.SessionNormal,
		StudentID: studentID,
		SubjectID: subjectID,
	}
}

func subject(id string, coef, credits int) academic.Subject {
	return academic.Subject{ID: id, Code: id, Name: id, Coefficient: coef, Credits: credits, TermID: "s1"}
}

func TestSubjectAverage(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{name: "empty", want: NotAvailableText},
		{name: "single", values: []string{"12.5"}, want: "12.50"},
		{name: "mean of two grades", values: []string{"12", "16"}, want: "14.00"},
		{name: "rounds half away from zero", values: []string{"10.01", "10.02"}, want: "10.02"},
		{name: "repeating", values: []string{"10", "10", "11"}, want: "10.33"},
		{name: "zeros are grades", values: []string{"0", "0"}, want: "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var grades []academic.Grade
			for _, v := range tt.values {
				grades = append(grades, grade("e1", "m1", v))
			}
			assert.Equal(t, tt.want, SubjectAverage(grades).String())
		})
	}
}

func TestSubjectAverage_ignoresKindAndSession(t *testing.T) {
	cc := grade("e1", "m1", "8")
	cc.Kind = academic.KindContinuous
	retake := grade("e1", "m1", "14")
	retake.Session = academic.SessionRetake

	assert.Equal(t, "11.00", SubjectAverage([]academic.Grade{cc, retake}).String())
}

func TestMentionFor(t *testing.T) {
	tests := []struct {
		avg  Score
		want Mention
	}{
		{avg: Score{}, want: MentionUnavailable},
		{avg: NewScore(dec("0")), want: MentionFailed},
		{avg: NewScore(dec("9.99")), want: MentionFailed},
		{avg: NewScore(dec("10")), want: MentionPass},
		{avg: NewScore(dec("11.99")), want: MentionPass},
		{avg: NewScore(dec("12")), want: MentionFairlyGood},
		{avg: NewScore(dec("14")), want: MentionGood},
		{avg: NewScore(dec("16")), want: MentionVeryGood},
		{avg: NewScore(dec("17.99")), want: MentionVeryGood},
		{avg: NewScore(dec("18")), want: MentionExcellent},
		{avg: NewScore(dec("20")), want: MentionExcellent},
	}
	for _, tt := range tests {
		t.Run(tt.avg.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, MentionFor(tt.avg))
		})
	}
}

func TestBuildTranscript(t *testing.T) {
	student := academic.Student{ID: "e1", RegistrationNumber: "E001"}
	term := academic.Term{ID: "s1", Number: 1}
	math := subject("MATH101", 3, 4)
	phys := subject("PHYS101", 2, 3)
	chem := subject("CHEM101", 4, 5)
	subjects := []academic.Subject{math, phys, chem}

	t.Run("weighted average with one failed subject", func(t *testing.T) {
		grades := []academic.Grade{
			grade("e1", "MATH101", "12"),
			grade("e1", "MATH101", "16"),
			grade("e1", "PHYS101", "8"),
		}
		got := BuildTranscript(student, term, subjects, grades)

		assert.Equal(t, "11.60", got.Average.String())
		assert.Equal(t, MentionPass, got.Mention)
		assert.Equal(t, 7, got.TotalCredits)
		assert.Equal(t, 4, got.CreditsEarned)
		assert.Equal(t, "57.14%", got.PassRate.String())

		require.Len(t, got.Results, 3)
		assert.Equal(t, "14.00", got.Results[0].Average.String())
		assert.True(t, got.Results[0].Passed)
		assert.Equal(t, "8.00", got.Results[1].Average.String())
		assert.False(t, got.Results[1].Passed)
		// ungraded subjects are listed but count for nothing
		assert.False(t, got.Results[2].Average.Valid())
		assert.False(t, got.Results[2].Passed)
		assert.Empty(t, got.Results[2].Grades)
	})

	t.Run("no grades is not a failure", func(t *testing.T) {
		got := BuildTranscript(student, term, subjects, nil)

		assert.False(t, got.Average.Valid())
		assert.Equal(t, MentionUnavailable, got.Mention)
		assert.NotEqual(t, MentionFailed, got.Mention)
		assert.Equal(t, 0, got.TotalCredits)
		assert.Equal(t, 0, got.CreditsEarned)
		assert.Equal(t, NotAvailableText, got.PassRate.String())
	})

	t.Run("no subjects", func(t *testing.T) {
		got := BuildTranscript(student, term, nil, nil)
		assert.False(t, got.Average.Valid())
		assert.Empty(t, got.Results)
	})

	t.Run("exactly 10 passes", func(t *testing.T) {
		got := BuildTranscript(student, term, subjects, []academic.Grade{grade("e1", "PHYS101", "10")})
		assert.Equal(t, "10.00", got.Average.String())
		assert.Equal(t, MentionPass, got.Mention)
		assert.Equal(t, 3, got.CreditsEarned)
		assert.Equal(t, "100.00%", got.PassRate.String())
	})

	t.Run("genuine zero average fails", func(t *testing.T) {
		got := BuildTranscript(student, term, subjects, []academic.Grade{grade("e1", "PHYS101", "0")})
		assert.Equal(t, "0.00", got.Average.String())
		assert.Equal(t, MentionFailed, got.Mention)
		assert.Equal(t, "0.00%", got.PassRate.String())
	})

	t.Run("grades of other terms are ignored", func(t *testing.T) {
		got := BuildTranscript(student, term, subjects, []academic.Grade{grade("e1", "OTHER", "20")})
		assert.False(t, got.Average.Valid())
	})

	t.Run("invariant under subject reordering", func(t *testing.T) {
		grades := []academic.Grade{
			grade("e1", "MATH101", "13.25"),
			grade("e1", "PHYS101", "7.5"),
			grade("e1", "CHEM101", "15.75"),
		}
		a := BuildTranscript(student, term, []academic.Subject{math, phys, chem}, grades)
		b := BuildTranscript(student, term, []academic.Subject{chem, math, phys}, grades)
		assert.Equal(t, a.Average.String(), b.Average.String())
		assert.Equal(t, a.CreditsEarned, b.CreditsEarned)
	})

	t.Run("idempotent", func(t *testing.T) {
		grades := []academic.Grade{grade("e1", "MATH101", "12"), grade("e1", "PHYS101", "9.5")}
		a, err := json.Marshal(BuildTranscript(student, term, subjects, grades))
		require.NoError(t, err)
		b, err := json.Marshal(BuildTranscript(student, term, subjects, grades))
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestBuildRanking(t *testing.T) {
	term := academic.Term{ID: "s1"}
	math := subject("MATH101", 1, 4)
	subjects := []academic.Subject{math}
	cohort := []academic.Student{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	rankOf := func(e RankingEntry) interface{} {
		if e.Rank == nil {
			return nil
		}
		return *e.Rank
	}

	t.Run("students without grades rank last without a rank", func(t *testing.T) {
		grades := []academic.Grade{grade("a", "MATH101", "15"), grade("c", "MATH101", "17")}
		got := BuildRanking(term, cohort, subjects, grades)

		require.Len(t, got.Entries, 3)
		assert.Equal(t, 3, got.CohortSize)
		assert.Equal(t, "c", got.Entries[0].Student.ID)
		assert.Equal(t, 1, rankOf(got.Entries[0]))
		assert.Equal(t, "a", got.Entries[1].Student.ID)
		assert.Equal(t, 2, rankOf(got.Entries[1]))
		assert.Equal(t, "b", got.Entries[2].Student.ID)
		assert.Nil(t, got.Entries[2].Rank)
		assert.Equal(t, NotAvailableText, got.Entries[2].Average.String())
		assert.Equal(t, 0, got.Entries[2].GradeCount)
	})

	t.Run("ties get distinct ranks", func(t *testing.T) {
		grades := []academic.Grade{
			grade("a", "MATH101", "12.5"),
			grade("b", "MATH101", "12.5"),
			grade("c", "MATH101", "19"),
		}
		got := BuildRanking(term, cohort, subjects, grades)

		assert.Equal(t, "c", got.Entries[0].Student.ID)
		assert.Equal(t, "a", got.Entries[1].Student.ID)
		assert.Equal(t, 2, rankOf(got.Entries[1]))
		assert.Equal(t, "b", got.Entries[2].Student.ID)
		assert.Equal(t, 3, rankOf(got.Entries[2]))
	})

	t.Run("weighted by coefficient", func(t *testing.T) {
		phys := subject("PHYS101", 3, 2)
		grades := []academic.Grade{
			grade("a", "MATH101", "20"), grade("a", "PHYS101", "8"), // (20+24)/4 = 11
			grade("b", "MATH101", "8"), grade("b", "PHYS101", "14"), // (8+42)/4 = 12.5
		}
		got := BuildRanking(term, cohort[:2], []academic.Subject{math, phys}, grades)
		assert.Equal(t, "b", got.Entries[0].Student.ID)
		assert.Equal(t, "12.50", got.Entries[0].Average.String())
		assert.Equal(t, 2, got.Entries[0].GradeCount)
		assert.Equal(t, "11.00", got.Entries[1].Average.String())
	})

	t.Run("ordering properties", func(t *testing.T) {
		big := []academic.Student{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}, {ID: "5"}, {ID: "6"}}
		grades := []academic.Grade{
			grade("1", "MATH101", "9"), grade("3", "MATH101", "18"),
			grade("4", "MATH101", "9"), grade("6", "MATH101", "0"),
		}
		got := BuildRanking(term, big, subjects, grades)

		seenNA := false
		expectedRank := 1
		var prev *decimal.Decimal
		for _, e := range got.Entries {
			value, ok := e.Average.Decimal()
			if !ok {
				seenNA = true
				assert.Nil(t, e.Rank)
				continue
			}
			assert.False(t, seenNA, "numeric entry after N/A")
			require.NotNil(t, e.Rank)
			assert.Equal(t, expectedRank, *e.Rank)
			expectedRank++
			if prev != nil {
				assert.True(t, value.LessThanOrEqual(*prev))
			}
			prev = &value
		}
		assert.Equal(t, 5, expectedRank)
	})

	t.Run("empty cohort", func(t *testing.T) {
		got := BuildRanking(term, nil, subjects, nil)
		assert.Empty(t, got.Entries)
		assert.Equal(t, 0, got.CohortSize)
	})

	t.Run("rank renders as null", func(t *testing.T) {
		got := BuildRanking(term, cohort[:1], subjects, nil)
		data, err := json.Marshal(got.Entries[0])
		require.NoError(t, err)
		assert.Contains(t, string(data), `"rank":null`)
		assert.Contains(t, string(data), `"average":"N/A"`)
	})
}

func TestComputeStatistics(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		_, ok := ComputeStatistics(nil)
		assert.False(t, ok)

		ss := BuildSubjectStatistics(subject("MATH101", 1, 1), nil)
		assert.True(t, ss.NoData)
		assert.Nil(t, ss.Statistics)
	})

	t.Run("pool", func(t *testing.T) {
		grades := []academic.Grade{
			grade("a", "m", "8"), grade("b", "m", "10"), grade("c", "m", "15.5"), grade("d", "m", "4.25"),
		}
		stats, ok := ComputeStatistics(grades)
		require.True(t, ok)
		assert.Equal(t, 4, stats.Count)
		assert.Equal(t, "9.44", stats.Mean.String()) // 37.75 / 4 = 9.4375
		assert.Equal(t, "4.25", stats.Min.String())
		assert.Equal(t, "15.50", stats.Max.String())
		assert.Equal(t, 2, stats.PassCount)
		assert.Equal(t, 2, stats.FailCount)
		assert.Equal(t, "50.00%", stats.PassRate.String())
	})
}

func TestBuildTermStatistics(t *testing.T) {
	term := academic.Term{ID: "s1"}
	subjects := []academic.Subject{subject("MATH101", 3, 4), subject("PHYS101", 2, 3), subject("CHEM101", 1, 2)}
	grades := []academic.Grade{
		grade("a", "MATH101", "12"), grade("a", "PHYS101", "9"),
		grade("b", "MATH101", "6"),
		grade("z", "OTHER", "20"), // outside of the term
	}

	got := BuildTermStatistics(term, subjects, grades)
	assert.Equal(t, 3, got.SubjectCount)
	assert.Equal(t, 2, got.StudentCount)
	require.Len(t, got.Subjects, 2)
	assert.Equal(t, "MATH101", got.Subjects[0].Subject.ID)
	assert.Equal(t, "9.00", got.Subjects[0].Statistics.Mean.String())
	assert.Equal(t, "PHYS101", got.Subjects[1].Subject.ID)
	assert.Equal(t, "0.00%", got.Subjects[1].Statistics.PassRate.String())

	empty := BuildTermStatistics(term, subjects, nil)
	assert.Equal(t, 3, empty.SubjectCount)
	assert.Equal(t, 0, empty.StudentCount)
	assert.Empty(t, empty.Subjects)
}

func TestScoreJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Score      `json:"a"`
		B Score      `json:"b"`
		P Percentage `json:"p"`
		Q Percentage `json:"q"`
	}{A: NewScore(dec("14")), P: NewPercentage(4, 7)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"14.00","b":"N/A","p":"57.14%","q":"N/A"}`, string(data))

	var s Score
	require.NoError(t, json.Unmarshal([]byte(`"11.6"`), &s))
	assert.Equal(t, "11.60", s.String())
	require.NoError(t, json.Unmarshal([]byte(`"N/A"`), &s))
	assert.False(t, s.Valid())

	var p Percentage
	require.NoError(t, json.Unmarshal([]byte(`"57.14%"`), &p))
	assert.Equal(t, "57.14%", p.String())
}
