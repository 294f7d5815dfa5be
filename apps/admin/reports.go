package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/grading"
)

func (cli *commandLine) activateYear(ctx context.Context, id string) error {
	year, err := cli.academicSvc.ActivateAcademicYear(ctx, core.CleanString(id))
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "academic year %s is now active\n", year.Label)
	return nil
}

// transcript prints the transcript as indented JSON, the way the API renders it.
func (cli *commandLine) transcript(ctx context.Context, studentID, termID string) error {
	tr, err := cli.gradingSvc.Transcript(ctx, core.CleanString(studentID), core.CleanString(termID))
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding transcript")
	}
	fmt.Fprintln(cli.out, string(data))
	return nil
}

func (cli *commandLine) ranking(ctx context.Context, termID string, filter grading.CohortFilter) error {
	filter.DepartmentID = core.CleanString(filter.DepartmentID)
	filter.Level = strings.ToUpper(core.CleanString(filter.Level))

	rk, err := cli.gradingSvc.Ranking(ctx, core.CleanString(termID), filter)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "%s: %d students\n", rk.Term.Name, rk.CohortSize)
	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tREGISTRATION\tNAME\tAVERAGE\tGRADES")
	for _, entry := range rk.Entries {
		rank := "-"
		if entry.Rank != nil {
			rank = strconv.Itoa(*entry.Rank)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			rank, entry.Student.RegistrationNumber, entry.Student.FullName(), entry.Average, entry.GradeCount)
	}
	return w.Flush()
}
