package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/trezcool/academia/core/academic"
	"github.com/trezcool/academia/core/grading"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db          *sql.DB
	academicSvc *academic.Service
	gradingSvc  *grading.Service
	out         io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                            - run a goose command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  activateyear -id ID                               - make an academic year the only active one")
	fmt.Fprintln(cli.out, "  transcript -student ID -term ID                   - print a student's transcript for a term")
	fmt.Fprintln(cli.out, "  ranking -term ID [-department ID] [-level LEVEL]  - print the class ranking of a term")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	activateYearCmd := flag.NewFlagSet("activateyear", flag.ExitOnError)
	activateYearID := activateYearCmd.String("id", "", "The academic year's ID.")

	transcriptCmd := flag.NewFlagSet("transcript", flag.ExitOnError)
	transcriptStudent := transcriptCmd.String("student", "", "The student's ID.")
	transcriptTerm := transcriptCmd.String("term", "", "The term's ID.")

	rankingCmd := flag.NewFlagSet("ranking", flag.ExitOnError)
	rankingTerm := rankingCmd.String("term", "", "The term's ID.")
	rankingDept := rankingCmd.String("department", "", "Only rank the students of this department.")
	rankingLevel := rankingCmd.String("level", "", "Only rank the students of this level (L1, L2, ...).")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "activateyear":
		if err := activateYearCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *activateYearID == "" {
			activateYearCmd.Usage()
			return errHelp
		}
		return cli.activateYear(ctx, *activateYearID)
	case "transcript":
		if err := transcriptCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *transcriptStudent == "" || *transcriptTerm == "" {
			transcriptCmd.Usage()
			return errHelp
		}
		return cli.transcript(ctx, *transcriptStudent, *transcriptTerm)
	case "ranking":
		if err := rankingCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *rankingTerm == "" {
			rankingCmd.Usage()
			return errHelp
		}
		return cli.ranking(ctx, *rankingTerm, grading.CohortFilter{DepartmentID: *rankingDept, Level: *rankingLevel})
	default:
		cli.printUsage()
		return errHelp
	}
}
