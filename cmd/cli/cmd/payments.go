package cmd

import (
	"github.com/spf13/cobra"

	"school-admin/internal/documents"
)

var paymentsReportCmd = &cobra.Command{
	Use:   "report [YYYY-MM]",
	Short: "Show the payments of a month and their total",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPaymentsReport,
}

var paymentsLedgerCmd = &cobra.Command{
	Use:   "ledger [YYYY-MM]",
	Short: "Generate the payment ledger of a month",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPaymentsLedger,
}

func init() {
	addDocumentFlags(paymentsLedgerCmd)
	paymentsCmd.AddCommand(paymentsReportCmd, paymentsLedgerCmd)
}

func monthArg(a *app, args []string) (string, error) {
	var raw string
	if len(args) > 0 {
		raw = args[0]
	}
	return parseMonth(raw, a.now())
}

func runPaymentsReport(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	month, err := monthArg(a, args)
	if err != nil {
		return a.fail(err)
	}

	report, err := a.client.MonthlyPayments(cmd.Context(), month)
	if err != nil {
		return a.fail(err)
	}
	return a.formatter.PrintMonthlyReport(report, a.studentNames(cmd.Context()))
}

func runPaymentsLedger(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	month, err := monthArg(a, args)
	if err != nil {
		return a.fail(err)
	}

	report, err := a.client.MonthlyPayments(cmd.Context(), month)
	if err != nil {
		return a.fail(err)
	}

	doc := documents.LedgerDocument(month, report.Payments, a.studentNames(cmd.Context()), a.school())
	return emitDocument(cmd, a, doc)
}
