package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"school-admin/internal/api"
	"school-admin/internal/documents"
	"school-admin/internal/i18n"
	"school-admin/internal/models"
	"school-admin/internal/views"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse a collection in an interactive table",
}

var browseInvoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Browse invoices with search and status filter",
	Args:  cobra.NoArgs,
	RunE:  runBrowseInvoices,
}

var browseStudentsCmd = &cobra.Command{
	Use:   "students",
	Short: "Browse students with search",
	Args:  cobra.NoArgs,
	RunE:  runBrowseStudents,
}

func init() {
	browseInvoicesCmd.Flags().String("fields", "", "Comma-separated columns: "+strings.Join(invoiceFieldSet.availableFieldNames(), ", "))
	browseStudentsCmd.Flags().String("fields", "", "Comma-separated columns: "+strings.Join(studentFieldSet.availableFieldNames(), ", "))

	browseCmd.AddCommand(browseInvoicesCmd, browseStudentsCmd)
	rootCmd.AddCommand(browseCmd)
}

func runBrowseInvoices(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.sessions.IsAuthenticated() {
		return a.fail(api.ErrNotAuthenticated)
	}

	fieldsFlag, _ := cmd.Flags().GetString("fields")
	src := invoiceSource(a.client, a.studentNames(cmd.Context()), a.config.School.Currency)
	if err := runInteractiveTable(cmd.Context(), a, src, fieldsFlag); err != nil {
		return a.fail(err)
	}
	return nil
}

func runBrowseStudents(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.sessions.IsAuthenticated() {
		return a.fail(api.ErrNotAuthenticated)
	}

	fieldsFlag, _ := cmd.Flags().GetString("fields")
	src := studentSource(a.client, a.classNames(cmd.Context()))
	if err := runInteractiveTable(cmd.Context(), a, src, fieldsFlag); err != nil {
		return a.fail(err)
	}
	return nil
}

// invoiceSource browses invoices; names resolves student ids
func invoiceSource(client *api.Client, names map[int64]string, currency string) browseSource[models.Invoice] {
	money := func(v float64) string { return documents.FormatMoney(v, currency) }

	return browseSource[models.Invoice]{
		noun:     i18n.NounInvoice,
		fields:   invoiceFieldSet,
		statuses: models.InvoiceStatuses,
		id:       func(inv models.Invoice) int64 { return inv.ID },
		value: func(inv models.Invoice, field string) string {
			switch field {
			case "id":
				return strconv.FormatInt(inv.ID, 10)
			case "number":
				return inv.DisplayNumber()
			case "student":
				if name, ok := names[inv.StudentID]; ok {
					return name
				}
				return strconv.FormatInt(inv.StudentID, 10)
			case "issued":
				return inv.IssueDate.String()
			case "due":
				return inv.DueDate.String()
			case "total":
				return money(inv.TotalAmount)
			case "net":
				return money(inv.NetAmount)
			case "paid":
				return money(inv.PaidAmount)
			case "balance":
				return money(models.DisplayBalance(inv.Balance))
			case "status":
				return documents.StatusLabel(inv.Status)
			default:
				return ""
			}
		},
		filter: func(items []models.Invoice, query string, status models.InvoiceStatus) []models.Invoice {
			return views.InvoiceFilter{Status: status, Search: query, StudentNames: names}.Apply(items)
		},
		load: func(ctx context.Context) ([]models.Invoice, error) {
			return client.Invoices.List(ctx, nil)
		},
		remove: client.Invoices.Delete,
		details: func(inv models.Invoice) string {
			var b strings.Builder
			fmt.Fprintf(&b, "%s - %s\n", inv.DisplayNumber(), names[inv.StudentID])
			fmt.Fprintf(&b, "Issued %s, due %s\n", inv.IssueDate, inv.DueDate)
			for _, item := range inv.Items {
				fmt.Fprintf(&b, "  %s x%s: %s\n", item.Description, formatQuantity(item.Quantity), money(item.Total()))
			}
			if inv.Discount != nil {
				fmt.Fprintf(&b, "Discount: %s\n", money(*inv.Discount))
			}
			fmt.Fprintf(&b, "Net %s, paid %s, balance %s (%s)",
				money(inv.NetAmount), money(inv.PaidAmount), money(models.DisplayBalance(inv.Balance)), documents.StatusLabel(inv.Status))
			return b.String()
		},
	}
}

// studentSource browses students; classes resolves class ids
func studentSource(client *api.Client, classes map[int64]string) browseSource[models.Student] {
	return browseSource[models.Student]{
		noun:   i18n.NounStudent,
		fields: studentFieldSet,
		id:     func(s models.Student) int64 { return s.ID },
		value: func(s models.Student, field string) string {
			switch field {
			case "id":
				return strconv.FormatInt(s.ID, 10)
			case "matricule":
				return s.DisplayID()
			case "name":
				return s.FullName()
			case "class":
				return classes[s.ClassID]
			case "gender":
				return s.Gender
			case "born":
				return s.DateOfBirth.String()
			case "family":
				if s.FamilyID == 0 {
					return ""
				}
				return strconv.FormatInt(s.FamilyID, 10)
			default:
				return ""
			}
		},
		filter: func(items []models.Student, query string, _ models.InvoiceStatus) []models.Student {
			return views.StudentFilter{Search: query}.Apply(items)
		},
		load:   client.AllStudents,
		remove: client.Students.Delete,
		details: func(s models.Student) string {
			return fmt.Sprintf("%s (%s)\nClass: %s\nBorn: %s\nGender: %s",
				s.FullName(), s.DisplayID(), classes[s.ClassID], s.DateOfBirth, s.Gender)
		},
	}
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
