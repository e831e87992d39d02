package cmd

import (
	"context"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"school-admin/internal/documents"
	"school-admin/internal/grades"
	"school-admin/internal/models"
)

var reportCmd = &cobra.Command{
	Use:     "report <student-id>",
	Aliases: []string{"bulletin", "report-card"},
	Short:   "Show the report card of a student",
	Long: `Show the report card of a student: the weighted average of each subject
and the overall average weighted by subject coefficients.

Without --quarter the averages cover the whole year.`,
	Example: `  school-admin report 12 --quarter 1
  school-admin report 12 --export --doc-format pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("quarter", "", "Quarter (1-4, T1-T4) or 'year'")
	reportCmd.Flags().Bool("export", false, "Generate the report card document instead of printing it")
	addDocumentFlags(reportCmd)
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := studentArg(args)
	if err != nil {
		return a.fail(err)
	}
	quarter, err := parseQuarter(stringFlag(cmd, "quarter"))
	if err != nil {
		return a.fail(err)
	}

	card, className, err := loadReportCard(cmd.Context(), a, id, quarter)
	if err != nil {
		return a.fail(err)
	}

	if wantsDocument(cmd) {
		return emitDocument(cmd, a, documents.ReportCardDocument(card, className, a.school(), a.now()))
	}
	return a.formatter.PrintReportCard(card)
}

// loadReportCard fetches the student, their grades and the subjects
// concurrently and builds the card
func loadReportCard(ctx context.Context, a *app, studentID int64, quarter int) (grades.ReportCard, string, error) {
	var (
		student  *models.Student
		list     []models.Grade
		subjects []models.Subject
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		student, err = a.client.Students.Get(gctx, studentID)
		return err
	})
	g.Go(func() error {
		var err error
		list, err = a.client.Grades.List(gctx, url.Values{"studentId": {strconv.FormatInt(studentID, 10)}})
		return err
	})
	g.Go(func() error {
		var err error
		subjects, err = a.client.Subjects.List(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return grades.ReportCard{}, "", err
	}

	var className string
	if student.ClassID != 0 {
		if class, err := a.client.Classes.Get(ctx, student.ClassID); err == nil {
			className = class.Name
		} else {
			a.logger.Warn("Failed to load class", "class_id", student.ClassID, "error", err)
		}
	}

	return grades.BuildReportCard(*student, list, subjects, quarter), className, nil
}

// wantsDocument reports whether any document flag asks for a file instead of terminal output
func wantsDocument(cmd *cobra.Command) bool {
	for _, name := range []string{"export", "print", "preview", "output", "doc-format"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}
