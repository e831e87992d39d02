package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"school-admin/internal/cache"
	"school-admin/internal/dashboard"
	"school-admin/internal/database"
	"school-admin/internal/documents"
	"school-admin/internal/grades"
	"school-admin/internal/i18n"
	"school-admin/internal/models"
)

// OutputFormatter handles different output formats
type OutputFormatter struct {
	format   string
	quiet    bool
	noColor  bool
	currency string
	catalog  *i18n.Catalog
	out      io.Writer
	errOut   io.Writer
	renderer *lipgloss.Renderer
}

// NewOutputFormatter creates a new output formatter writing to stdout and stderr
func NewOutputFormatter(format string, quiet, noColor bool) *OutputFormatter {
	f := &OutputFormatter{
		format:   format,
		quiet:    quiet,
		noColor:  noColor,
		currency: documents.DefaultCurrency,
		catalog:  i18n.MustNew(i18n.DefaultLanguage),
	}
	return f.WithWriters(os.Stdout, os.Stderr)
}

// WithWriters redirects normal and error output
func (f *OutputFormatter) WithWriters(out, errOut io.Writer) *OutputFormatter {
	f.out = out
	f.errOut = errOut
	f.renderer = lipgloss.NewRenderer(out)
	if !f.useColor() {
		f.renderer.SetColorProfile(termenv.Ascii)
	}
	return f
}

// WithCatalog sets the language of notifications
func (f *OutputFormatter) WithCatalog(catalog *i18n.Catalog) *OutputFormatter {
	if catalog != nil {
		f.catalog = catalog
	}
	return f
}

// WithCurrency sets the currency appended to amounts
func (f *OutputFormatter) WithCurrency(currency string) *OutputFormatter {
	if currency != "" {
		f.currency = currency
	}
	return f
}

// Catalog returns the formatter's message catalog
func (f *OutputFormatter) Catalog() *i18n.Catalog {
	return f.catalog
}

// useColor reports whether out is a color-capable terminal
func (f *OutputFormatter) useColor() bool {
	if f.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := f.out.(*os.File)
	return ok && isatty.IsTerminal(file.Fd())
}

func (f *OutputFormatter) style(color string) lipgloss.Style {
	return f.renderer.NewStyle().Foreground(lipgloss.Color(color))
}

func (f *OutputFormatter) money(v float64) string {
	return documents.FormatMoney(v, f.currency)
}

// PrintStudents prints a list of students. classNames may be nil.
func (f *OutputFormatter) PrintStudents(students []models.Student, classNames map[int64]string) error {
	return printList(f, students, func(s models.Student) int64 { return s.ID },
		[]string{"ID", "MATRICULE", "NAME", "CLASS", "GENDER", "BORN"},
		func(s models.Student) []string {
			return []string{
				strconv.FormatInt(s.ID, 10),
				s.Matricule,
				truncate(s.FullName(), 30),
				lookup(classNames, s.ClassID),
				s.Gender,
				s.DateOfBirth.String(),
			}
		})
}

// PrintStudent prints a single student
func (f *OutputFormatter) PrintStudent(student *models.Student) error {
	return printRecord(f, student, student.ID, [][2]string{
		{"Student ID", strconv.FormatInt(student.ID, 10)},
		{"Matricule", student.Matricule},
		{"Name", student.FullName()},
		{"Date of birth", student.DateOfBirth.String()},
		{"Gender", student.Gender},
		{"Class ID", idOrEmpty(student.ClassID)},
		{"Family ID", idOrEmpty(student.FamilyID)},
		{"Parent ID", idOrEmpty(student.ParentID)},
		{"Registered", student.RegistrationDate.String()},
	})
}

// PrintClasses prints a list of classes
func (f *OutputFormatter) PrintClasses(classes []models.Class) error {
	return printList(f, classes, func(c models.Class) int64 { return c.ID },
		[]string{"ID", "NAME", "LEVEL", "YEAR", "FEE"},
		func(c models.Class) []string {
			return []string{
				strconv.FormatInt(c.ID, 10),
				truncate(c.Name, 25),
				idOrEmpty(c.LevelID),
				c.AcademicYear,
				f.money(c.ClassFee),
			}
		})
}

// PrintClass prints a single class
func (f *OutputFormatter) PrintClass(class *models.Class) error {
	return printRecord(f, class, class.ID, [][2]string{
		{"Class ID", strconv.FormatInt(class.ID, 10)},
		{"Name", class.Name},
		{"Level ID", idOrEmpty(class.LevelID)},
		{"Academic year", class.AcademicYear},
		{"Monthly fee", f.money(class.ClassFee)},
		{"Students", strconv.Itoa(len(class.Students))},
	})
}

// PrintLevels prints a list of levels
func (f *OutputFormatter) PrintLevels(levels []models.Level) error {
	return printList(f, levels, func(l models.Level) int64 { return l.ID },
		[]string{"ID", "NAME", "ORDER"},
		func(l models.Level) []string {
			return []string{strconv.FormatInt(l.ID, 10), l.Name, strconv.Itoa(l.Order)}
		})
}

// PrintLevel prints a single level
func (f *OutputFormatter) PrintLevel(level *models.Level) error {
	return printRecord(f, level, level.ID, [][2]string{
		{"Level ID", strconv.FormatInt(level.ID, 10)},
		{"Name", level.Name},
		{"Order", strconv.Itoa(level.Order)},
	})
}

// PrintFamilies prints a list of families
func (f *OutputFormatter) PrintFamilies(families []models.Family) error {
	return printList(f, families, func(fam models.Family) int64 { return fam.ID },
		[]string{"ID", "NAME", "PHONE", "EMAIL"},
		func(fam models.Family) []string {
			return []string{strconv.FormatInt(fam.ID, 10), truncate(fam.Name, 30), fam.Phone, truncate(fam.Email, 30)}
		})
}

// PrintFamily prints a single family
func (f *OutputFormatter) PrintFamily(family *models.Family) error {
	return printRecord(f, family, family.ID, [][2]string{
		{"Family ID", strconv.FormatInt(family.ID, 10)},
		{"Name", family.Name},
		{"Address", family.Address},
		{"Phone", family.Phone},
		{"Email", family.Email},
	})
}

// PrintParents prints a list of parents
func (f *OutputFormatter) PrintParents(parents []models.Parent) error {
	return printList(f, parents, func(p models.Parent) int64 { return p.ID },
		[]string{"ID", "NAME", "RELATIONSHIP", "PHONE", "EMAIL", "FAMILY"},
		func(p models.Parent) []string {
			return []string{
				strconv.FormatInt(p.ID, 10),
				truncate(p.FullName(), 30),
				string(p.Relationship),
				p.Phone,
				truncate(p.Email, 30),
				idOrEmpty(p.FamilyID),
			}
		})
}

// PrintParent prints a single parent
func (f *OutputFormatter) PrintParent(parent *models.Parent) error {
	return printRecord(f, parent, parent.ID, [][2]string{
		{"Parent ID", strconv.FormatInt(parent.ID, 10)},
		{"Name", parent.FullName()},
		{"Relationship", string(parent.Relationship)},
		{"Phone", parent.Phone},
		{"Email", parent.Email},
		{"Profession", parent.Profession},
		{"Family ID", idOrEmpty(parent.FamilyID)},
	})
}

// PrintFees prints a list of fees
func (f *OutputFormatter) PrintFees(fees []models.Fee) error {
	return printList(f, fees, func(fee models.Fee) int64 { return fee.ID },
		[]string{"ID", "NAME", "AMOUNT", "FREQUENCY", "CLASS", "LEVEL", "YEAR"},
		func(fee models.Fee) []string {
			return []string{
				strconv.FormatInt(fee.ID, 10),
				truncate(fee.Name, 30),
				f.money(fee.Amount),
				fee.Frequency,
				idOrEmpty(fee.ClassID),
				idOrEmpty(fee.LevelID),
				fee.AcademicYear,
			}
		})
}

// PrintFee prints a single fee
func (f *OutputFormatter) PrintFee(fee *models.Fee) error {
	return printRecord(f, fee, fee.ID, [][2]string{
		{"Fee ID", strconv.FormatInt(fee.ID, 10)},
		{"Name", fee.Name},
		{"Amount", f.money(fee.Amount)},
		{"Frequency", fee.Frequency},
		{"Class ID", idOrEmpty(fee.ClassID)},
		{"Level ID", idOrEmpty(fee.LevelID)},
		{"Academic year", fee.AcademicYear},
	})
}

// PrintPayments prints a list of payments. studentNames may be nil.
func (f *OutputFormatter) PrintPayments(payments []models.Payment, studentNames map[int64]string) error {
	return printList(f, payments, func(p models.Payment) int64 { return p.ID },
		[]string{"ID", "NUMBER", "STUDENT", "MONTH", "DATE", "METHOD", "AMOUNT"},
		func(p models.Payment) []string {
			return []string{
				strconv.FormatInt(p.ID, 10),
				p.PaymentNumber,
				truncate(lookup(studentNames, p.StudentID), 30),
				p.MonthKey(),
				p.PaymentDate.String(),
				documents.MethodLabel(p.Method),
				f.money(p.Amount),
			}
		})
}

// PrintPayment prints a single payment
func (f *OutputFormatter) PrintPayment(payment *models.Payment) error {
	return printRecord(f, payment, payment.ID, [][2]string{
		{"Payment ID", strconv.FormatInt(payment.ID, 10)},
		{"Number", payment.PaymentNumber},
		{"Student ID", idOrEmpty(payment.StudentID)},
		{"Invoice ID", idOrEmpty(payment.InvoiceID)},
		{"Amount", f.money(payment.Amount)},
		{"Month", payment.MonthKey()},
		{"Date", payment.PaymentDate.String()},
		{"Method", documents.MethodLabel(payment.Method)},
		{"Reference", payment.Reference},
	})
}

// PrintMonthlyReport prints the payments of one month and their total
func (f *OutputFormatter) PrintMonthlyReport(report *models.MonthlyPaymentsReport, studentNames map[int64]string) error {
	if f.quiet {
		return f.PrintPayments(report.Payments, studentNames)
	}
	if f.format == "json" {
		return f.encodeJSON(report)
	}
	if err := f.PrintPayments(report.Payments, studentNames); err != nil {
		return err
	}
	fmt.Fprintf(f.out, "\nMonth: %s  Payments: %d  Total: %s\n", report.Month, report.Count, f.money(report.TotalAmount))
	return nil
}

// PrintInvoices prints a list of invoices. studentNames may be nil.
func (f *OutputFormatter) PrintInvoices(invoices []models.Invoice, studentNames map[int64]string) error {
	return printList(f, invoices, func(inv models.Invoice) int64 { return inv.ID },
		[]string{"ID", "NUMBER", "STUDENT", "ISSUED", "DUE", "NET", "PAID", "BALANCE", "STATUS"},
		func(inv models.Invoice) []string {
			return []string{
				strconv.FormatInt(inv.ID, 10),
				inv.DisplayNumber(),
				truncate(lookup(studentNames, inv.StudentID), 25),
				inv.IssueDate.String(),
				inv.DueDate.String(),
				f.money(inv.NetAmount),
				f.money(inv.PaidAmount),
				f.money(models.DisplayBalance(inv.Balance)),
				f.statusText(inv.Status),
			}
		})
}

// PrintSentEmails prints the log of emailed invoices
func (f *OutputFormatter) PrintSentEmails(entries []database.SentEmailEntry) error {
	return printList(f, entries, func(e database.SentEmailEntry) int64 { return e.ID },
		[]string{"ID", "INVOICE", "SENT", "TO", "STATUS"},
		func(e database.SentEmailEntry) []string {
			status := e.Status
			if e.ErrorMessage != "" {
				status += ": " + truncate(e.ErrorMessage, 40)
			}
			return []string{
				strconv.FormatInt(e.ID, 10),
				e.InvoiceNumber,
				e.SentAt.Local().Format("2006-01-02 15:04"),
				truncate(strings.Join(e.Recipients, ", "), 40),
				status,
			}
		})
}

// PrintInvoice prints a single invoice with its items
func (f *OutputFormatter) PrintInvoice(invoice *models.Invoice) error {
	fields := [][2]string{
		{"Invoice ID", strconv.FormatInt(invoice.ID, 10)},
		{"Number", invoice.DisplayNumber()},
		{"Student ID", idOrEmpty(invoice.StudentID)},
		{"Issued", invoice.IssueDate.String()},
		{"Due", invoice.DueDate.String()},
		{"Total", f.money(invoice.TotalAmount)},
	}
	if invoice.Discount != nil && *invoice.Discount > 0 {
		fields = append(fields, [2]string{"Discount", f.money(*invoice.Discount)})
	}
	fields = append(fields,
		[2]string{"Net", f.money(invoice.NetAmount)},
		[2]string{"Paid", f.money(invoice.PaidAmount)},
		[2]string{"Balance", f.money(models.DisplayBalance(invoice.Balance))},
		[2]string{"Status", f.statusText(invoice.Status)},
		[2]string{"Notes", invoice.Notes},
	)
	if err := printRecord(f, invoice, invoice.ID, fields); err != nil || f.quiet || f.format != "table" {
		return err
	}

	if len(invoice.Items) > 0 {
		fmt.Fprintln(f.out)
		w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DESCRIPTION\tQTY\tUNIT\tTOTAL")
		for _, item := range invoice.Items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				truncate(item.Description, 40),
				strconv.FormatFloat(item.Quantity, 'f', -1, 64),
				f.money(item.UnitAmount),
				f.money(item.Total()))
		}
		return w.Flush()
	}
	return nil
}

// PrintDocuments prints the documents stored by the backend
func (f *OutputFormatter) PrintDocuments(docs []models.Document) error {
	return printList(f, docs, func(d models.Document) int64 { return d.ID },
		[]string{"ID", "TITLE", "TYPE", "STUDENT", "CREATED", "URL"},
		func(d models.Document) []string {
			return []string{
				strconv.FormatInt(d.ID, 10),
				truncate(d.Title, 30),
				d.Type,
				idOrEmpty(d.StudentID),
				d.CreatedAt.String(),
				truncate(d.URL, 40),
			}
		})
}

// PrintDocument prints a single stored document
func (f *OutputFormatter) PrintDocument(doc *models.Document) error {
	return printRecord(f, doc, doc.ID, [][2]string{
		{"Document ID", strconv.FormatInt(doc.ID, 10)},
		{"Title", doc.Title},
		{"Type", doc.Type},
		{"Student ID", idOrEmpty(doc.StudentID)},
		{"Created", doc.CreatedAt.String()},
		{"URL", doc.URL},
	})
}

// PrintSubjects prints a list of subjects
func (f *OutputFormatter) PrintSubjects(subjects []models.Subject) error {
	return printList(f, subjects, func(s models.Subject) int64 { return s.ID },
		[]string{"ID", "NAME", "SHORT", "COEF"},
		func(s models.Subject) []string {
			return []string{strconv.FormatInt(s.ID, 10), s.Name, s.ShortName, formatFloat(s.Coefficient)}
		})
}

// PrintGrades prints a list of grades. subjectNames may be nil.
func (f *OutputFormatter) PrintGrades(list []models.Grade, subjectNames map[int64]string) error {
	return printList(f, list, func(g models.Grade) int64 { return g.ID },
		[]string{"ID", "STUDENT", "SUBJECT", "QUARTER", "VALUE", "COEF", "DATE"},
		func(g models.Grade) []string {
			return []string{
				strconv.FormatInt(g.ID, 10),
				idOrEmpty(g.StudentID),
				lookup(subjectNames, g.SubjectID),
				grades.QuarterLabel(g.Quarter),
				optionalFloat(g.Value),
				optionalFloat(g.Coefficient),
				g.Date.String(),
			}
		})
}

// PrintGrade prints a single grade
func (f *OutputFormatter) PrintGrade(g *models.Grade) error {
	return printRecord(f, g, g.ID, [][2]string{
		{"Grade ID", strconv.FormatInt(g.ID, 10)},
		{"Student ID", idOrEmpty(g.StudentID)},
		{"Subject ID", idOrEmpty(g.SubjectID)},
		{"Quarter", grades.QuarterLabel(g.Quarter)},
		{"Value", optionalFloat(g.Value)},
		{"Coefficient", optionalFloat(g.Coefficient)},
		{"Type", g.Type},
		{"Date", g.Date.String()},
		{"Comment", g.Comment},
	})
}

// PrintReportCard prints per-subject averages and the overall average
func (f *OutputFormatter) PrintReportCard(card grades.ReportCard) error {
	if f.quiet {
		fmt.Fprintln(f.out, card.Overall.String())
		return nil
	}

	switch f.format {
	case "json":
		return f.encodeJSON(card)
	case "table":
		fmt.Fprintf(f.out, "%s (%s) - %s\n\n", card.Student.FullName(), card.Student.DisplayID(), grades.QuarterLabel(card.Quarter))

		w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SUBJECT\tCOEF\tGRADES\tAVERAGE")
		for _, line := range card.Lines {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
				truncate(line.Subject.Name, 30),
				formatFloat(line.Coefficient),
				line.GradeCount,
				line.Average.String())
		}
		fmt.Fprintf(w, "\t\t\t\n%s\t\t\t%s\n", "OVERALL", card.Overall.String())
		return w.Flush()
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintDashboard prints the dashboard snapshot
func (f *OutputFormatter) PrintDashboard(summary dashboard.Summary) error {
	if f.quiet {
		fmt.Fprintf(f.out, "%d\n", summary.StudentCount)
		return nil
	}

	switch f.format {
	case "json":
		return f.encodeJSON(summary)
	case "table":
		w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Students\t%d\n", summary.StudentCount)
		fmt.Fprintf(w, "Classes\t%d\n", summary.ClassCount)
		fmt.Fprintf(w, "Families\t%d\n", summary.FamilyCount)
		fmt.Fprintf(w, "Collected (total)\t%s\n", f.money(summary.TotalCollected))
		fmt.Fprintf(w, "Collected (this month)\t%s\n", f.money(summary.MonthCollected))
		fmt.Fprintf(w, "Outstanding\t%s\n", f.money(summary.Outstanding))
		for _, status := range models.InvoiceStatuses {
			fmt.Fprintf(w, "Invoices %s\t%d\n", documents.StatusLabel(status), summary.InvoicesByStatus[status])
		}

		fmt.Fprintln(w, "\t")
		fmt.Fprintln(w, "MONTH\tCOLLECTED\tPAYMENTS")
		for _, m := range summary.Series {
			fmt.Fprintf(w, "%s\t%s\t%d\n", m.Month, f.money(m.Total), m.Count)
		}

		if len(summary.Classes) > 0 {
			fmt.Fprintln(w, "\t")
			fmt.Fprintln(w, "CLASS\tSTUDENTS\t")
			for _, c := range summary.Classes {
				fmt.Fprintf(w, "%s\t%d\t\n", truncate(c.Name, 25), c.Students)
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}

		for _, warning := range summary.Warnings {
			f.PrintWarning(f.catalog.T(i18n.MsgPartialData, warning))
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintFeeProfile prints the fee situation of one student
func (f *OutputFormatter) PrintFeeProfile(profile *models.StudentFeeProfile) error {
	return printRecord(f, profile, profile.StudentID, [][2]string{
		{"Student ID", strconv.FormatInt(profile.StudentID, 10)},
		{"Status", profile.Status},
		{"Outstanding", f.money(models.DisplayBalance(profile.OutstandingAmount))},
		{"Total paid", f.money(profile.TotalPaid)},
		{"Months overdue", strconv.Itoa(profile.MonthsOverdue)},
		{"Discount", formatFloat(profile.DiscountPercentage) + " %"},
		{"Last payment", profile.LastPaymentDate.String()},
		{"Next payment", profile.NextPaymentDate.String()},
	})
}

// PrintSession prints who is logged in and until when
func (f *OutputFormatter) PrintSession(session *models.Session, expiresAt time.Time) error {
	if f.quiet {
		fmt.Fprintln(f.out, session.Email)
		return nil
	}

	expires := "never"
	if !expiresAt.IsZero() {
		expires = expiresAt.Local().Format("2006-01-02 15:04:05")
	}

	switch f.format {
	case "json":
		return f.encodeJSON(struct {
			Email     string     `json:"email"`
			Role      string     `json:"role"`
			ExpiresAt *time.Time `json:"expiresAt"`
		}{session.Email, session.Role, optionalTime(expiresAt)})
	case "table":
		fmt.Fprintf(f.out, "Email: %s\n", session.Email)
		fmt.Fprintf(f.out, "Role: %s\n", session.Role)
		fmt.Fprintf(f.out, "Expires: %s\n", expires)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintValidationErrors prints one line per invalid field
func (f *OutputFormatter) PrintValidationErrors(fields map[string]string) {
	if f.quiet {
		return
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(f.errOut, f.style("196").Render("✗ "+f.catalog.T(i18n.MsgValidationFailed)))
	for _, name := range names {
		fmt.Fprintf(f.errOut, "  %s: %s\n", name, fields[name])
	}
}

// PrintCacheStats prints the state of the local list cache
func (f *OutputFormatter) PrintCacheStats(stats cache.CacheStats, sentEmails int) error {
	if f.format == "json" {
		return f.encodeJSON(struct {
			cache.CacheStats
			SentEmails int `json:"sent_emails"`
		}{stats, sentEmails})
	}

	state := "enabled"
	if stats.Disabled {
		state = "disabled"
	}
	fmt.Fprintf(f.out, "Cache: %s (TTL %s)\n", state, stats.TTL)
	fmt.Fprintf(f.out, "Memory entries: %d (%d expired)\n", stats.MemoryTotal, stats.MemoryExpired)
	fmt.Fprintf(f.out, "Database entries: %d (%d expired)\n", stats.DatabaseTotal, stats.DatabaseExpired)
	fmt.Fprintf(f.out, "Logged invoice emails: %d\n", sentEmails)
	return nil
}

// PrintSuccess prints a success message
func (f *OutputFormatter) PrintSuccess(message string) {
	if !f.quiet {
		fmt.Fprintln(f.out, f.style("82").Render("✓ "+message))
	}
}

// PrintError prints an error message
func (f *OutputFormatter) PrintError(err error) {
	if !f.quiet {
		fmt.Fprintln(f.errOut, f.style("196").Render("✗ Error: "+Describe(err, f.catalog)))
	}
}

// PrintInfo prints an informational message
func (f *OutputFormatter) PrintInfo(message string) {
	if !f.quiet {
		fmt.Fprintln(f.out, f.style("75").Render("ℹ "+message))
	}
}

// PrintWarning prints a warning on stderr
func (f *OutputFormatter) PrintWarning(message string) {
	if !f.quiet {
		fmt.Fprintln(f.errOut, f.style("226").Render("! "+message))
	}
}

// statusText returns the localized invoice status, colored when possible
func (f *OutputFormatter) statusText(status models.InvoiceStatus) string {
	label := documents.StatusLabel(status)
	if !f.useColor() {
		return label
	}
	var color string
	switch status {
	case models.InvoicePaid:
		color = "82"
	case models.InvoicePartial:
		color = "226"
	case models.InvoicePending:
		color = "75"
	case models.InvoiceOverdue:
		color = "196"
	default:
		color = "244"
	}
	return f.style(color).Render(label)
}

func (f *OutputFormatter) encodeJSON(v interface{}) error {
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printList prints items as IDs (quiet), JSON or a table
func printList[T any](f *OutputFormatter, items []T, id func(T) int64, header []string, row func(T) []string) error {
	if f.quiet {
		for _, item := range items {
			fmt.Fprintf(f.out, "%d\n", id(item))
		}
		return nil
	}

	switch f.format {
	case "json":
		if items == nil {
			items = []T{}
		}
		return f.encodeJSON(items)
	case "table":
		if len(items) == 0 {
			fmt.Fprintln(f.out, f.catalog.T(i18n.MsgNoData))
			return nil
		}
		w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, strings.Join(header, "\t"))
		for _, item := range items {
			fmt.Fprintln(w, strings.Join(row(item), "\t"))
		}
		return w.Flush()
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// printRecord prints one item as its ID (quiet), JSON or "Label: value" lines.
// Empty values are skipped in table output.
func printRecord[T any](f *OutputFormatter, item *T, id int64, fields [][2]string) error {
	if f.quiet {
		fmt.Fprintf(f.out, "%d\n", id)
		return nil
	}

	switch f.format {
	case "json":
		return f.encodeJSON(item)
	case "table":
		for _, field := range fields {
			if field[1] == "" {
				continue
			}
			fmt.Fprintf(f.out, "%s: %s\n", field[0], field[1])
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

func lookup(names map[int64]string, id int64) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return idOrEmpty(id)
}

func idOrEmpty(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optionalFloat(v *float64) string {
	if v == nil {
		return grades.Placeholder
	}
	return formatFloat(*v)
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// truncate truncates a string to the specified number of runes
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
