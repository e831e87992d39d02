package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"school-admin/internal/documents"
	"school-admin/internal/i18n"
	"school-admin/internal/models"
)

var studentPaymentsCmd = &cobra.Command{
	Use:   "payments <student-id>",
	Short: "List the payments of a student",
	Args:  cobra.ExactArgs(1),
	RunE:  runStudentPayments,
}

var studentFeeProfileCmd = &cobra.Command{
	Use:     "fee-profile <student-id>",
	Aliases: []string{"fees"},
	Short:   "Show what a student has paid and still owes",
	Args:    cobra.ExactArgs(1),
	RunE:    runStudentFeeProfile,
}

var studentRegistrationCmd = &cobra.Command{
	Use:   "registration <student-id>",
	Short: "Generate the registration confirmation of a student",
	Long: `Generate the registration confirmation of a student.

The confirmation number is derived from the student and the registration
time; the document carries it as a QR code.`,
	Args: cobra.ExactArgs(1),
	RunE: runStudentRegistration,
}

func init() {
	addDocumentFlags(studentRegistrationCmd)
	studentsCmd.AddCommand(studentPaymentsCmd, studentFeeProfileCmd, studentRegistrationCmd)
}

func runStudentPayments(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := studentArg(args)
	if err != nil {
		return a.fail(err)
	}

	payments, err := a.client.StudentPayments(cmd.Context(), id)
	if err != nil {
		return a.fail(err)
	}
	return a.formatter.PrintPayments(payments, a.studentNames(cmd.Context()))
}

func runStudentFeeProfile(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := studentArg(args)
	if err != nil {
		return a.fail(err)
	}

	profile, err := a.client.StudentFeeProfile(cmd.Context(), id)
	if err != nil {
		return a.fail(err)
	}
	return a.formatter.PrintFeeProfile(profile)
}

func runStudentRegistration(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := studentArg(args)
	if err != nil {
		return a.fail(err)
	}

	in, err := loadRegistration(cmd.Context(), a, id)
	if err != nil {
		return a.fail(err)
	}
	a.formatter.PrintInfo(a.catalog.T(i18n.MsgRegistered, in.Confirmation))

	return emitDocument(cmd, a, documents.RegistrationDocument(in, a.school()))
}

// loadRegistration fetches the student with its class and parent. The class
// and parent are optional on the document, so failing to load them is only
// logged.
func loadRegistration(ctx context.Context, a *app, id int64) (documents.RegistrationInput, error) {
	student, err := a.client.Students.Get(ctx, id)
	if err != nil {
		return documents.RegistrationInput{}, err
	}

	var class *models.Class
	var parent *models.Parent
	g, gctx := errgroup.WithContext(ctx)
	if student.ClassID != 0 {
		g.Go(func() error {
			c, err := a.client.Classes.Get(gctx, student.ClassID)
			if err != nil {
				a.logger.Warn("Failed to load class", "class_id", student.ClassID, "error", err)
				return nil
			}
			class = c
			return nil
		})
	}
	if student.ParentID != 0 {
		g.Go(func() error {
			p, err := a.client.Parents.Get(gctx, student.ParentID)
			if err != nil {
				a.logger.Warn("Failed to load parent", "parent_id", student.ParentID, "error", err)
				return nil
			}
			parent = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return documents.RegistrationInput{}, err
	}
	if err := ctx.Err(); err != nil {
		return documents.RegistrationInput{}, err
	}

	registeredAt := a.now()
	return documents.RegistrationInput{
		Student:      *student,
		Class:        class,
		Parent:       parent,
		Confirmation: documents.ConfirmationNumber(*student, documents.NewSalt(), registeredAt),
		RegisteredAt: registeredAt,
	}, nil
}
