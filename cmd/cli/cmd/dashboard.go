package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"school-admin/internal/api"
	cliapi "school-admin/internal/cli"
	"school-admin/internal/dashboard"
	"school-admin/internal/documents"
	"school-admin/internal/models"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash", "summary"},
	Short:   "Show headcounts, collected fees and outstanding balances",
	Args:    cobra.NoArgs,
	RunE:    runDashboard,
}

func init() {
	dashboardCmd.Flags().Bool("export", false, "Generate the dashboard document instead of printing it")
	addDocumentFlags(dashboardCmd)
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var summary dashboard.Summary
	err = cliapi.RunWithSpinner("Loading", a.config.NoColor || a.config.Quiet, func() error {
		var err error
		summary, err = dashboard.Load(cmd.Context(), dashboardSources(a.client), a.now())
		return err
	})
	if err != nil {
		return a.fail(err)
	}

	if wantsDocument(cmd) {
		return emitDocument(cmd, a, documents.DashboardDocument(summary, a.school()))
	}
	return a.formatter.PrintDashboard(summary)
}

// dashboardSources reads every collection the dashboard aggregates
func dashboardSources(c *api.Client) dashboard.Sources {
	return dashboard.Sources{
		Students: c.AllStudents,
		Classes:  c.AllClasses,
		Families: func(ctx context.Context) ([]models.Family, error) { return c.Families.List(ctx, nil) },
		Invoices: func(ctx context.Context) ([]models.Invoice, error) { return c.Invoices.List(ctx, nil) },
		Payments: func(ctx context.Context) ([]models.Payment, error) { return c.Payments.List(ctx, nil) },
	}
}
