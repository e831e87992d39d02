package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"school-admin/internal/api"
	"school-admin/internal/i18n"
	"school-admin/internal/models"
	"school-admin/internal/views"
)

var (
	studentsCmd  *cobra.Command
	invoicesCmd  *cobra.Command
	paymentsCmd  *cobra.Command
	gradesCmd    *cobra.Command
	classesCmd   *cobra.Command
	familiesCmd  *cobra.Command
	parentsCmd   *cobra.Command
	feesCmd      *cobra.Command
	levelsCmd    *cobra.Command
	documentsCmd *cobra.Command
	subjectsCmd  *cobra.Command
)

func init() {
	studentsCmd = resourceCommand[models.Student, models.StudentInput]{
		use:      "students",
		aliases:  []string{"student", "eleves"},
		short:    "Manage students",
		noun:     i18n.NounStudent,
		resource: func(c *api.Client) *api.Resource[models.Student] { return c.Students },
		fields: []inputField{
			{key: "firstName", usage: "First name"},
			{key: "lastName", usage: "Last name"},
			{key: "dateOfBirth", usage: "Date of birth (YYYY-MM-DD)"},
			{key: "gender", kind: upperField, usage: "Gender (M, F)"},
			{key: "classId", kind: integerField, usage: "Class ID"},
			{key: "familyId", kind: integerField, usage: "Family ID"},
			{key: "parentId", kind: integerField, usage: "Parent ID"},
		},
		listFlags: func(c *cobra.Command) {
			c.Flags().Int64("class", 0, "Only students of this class ID")
			c.Flags().String("gender", "", "Only students of this gender (M, F)")
		},
		list: func(ctx context.Context, a *app, cmd *cobra.Command, items []models.Student) error {
			filter := views.StudentFilter{Search: stringFlag(cmd, "search"), Gender: stringFlag(cmd, "gender")}
			filter.ClassID, _ = cmd.Flags().GetInt64("class")
			return a.formatter.PrintStudents(filter.Apply(items), a.classNames(ctx))
		},
		show: func(a *app, s *models.Student) error { return a.formatter.PrintStudent(s) },
	}.command()

	classesCmd = resourceCommand[models.Class, models.ClassInput]{
		use:      "classes",
		aliases:  []string{"class"},
		short:    "Manage classes and their monthly fee",
		noun:     i18n.NounClass,
		resource: func(c *api.Client) *api.Resource[models.Class] { return c.Classes },
		fields: []inputField{
			{key: "name", usage: "Class name"},
			{key: "levelId", kind: integerField, usage: "Level ID"},
			{key: "classFee", kind: numberField, usage: "Monthly fee"},
			{key: "academicYear", usage: "School year (YYYY-YYYY)"},
		},
		list: func(ctx context.Context, a *app, cmd *cobra.Command, items []models.Class) error {
			return a.formatter.PrintClasses(views.Search(items, stringFlag(cmd, "search"), views.ClassFields))
		},
		show: func(a *app, c *models.Class) error { return a.formatter.PrintClass(c) },
	}.command()

	levelsCmd = resourceCommand[models.Level, models.LevelInput]{
		use:      "levels",
		aliases:  []string{"level"},
		short:    "Manage levels",
		noun:     i18n.NounLevel,
		resource: func(c *api.Client) *api.Resource[models.Level] { return c.Levels },
		fields: []inputField{
			{key: "name", usage: "Level name"},
			{key: "order", kind: integerField, usage: "Display order"},
		},
		list: func(ctx context.Context, a *app, cmd *cobra.Command, items []models.Level) error {
			return a.formatter.PrintLevels(views.Search(items, stringFlag(cmd, "search"), func(l models.Level) []string {
				return []string{l.Name}
			}))
		},
		show: func(a *app, l *models.Level) error { return a.formatter.PrintLevel(l) },
	}.command()

	familiesCmd = resourceCommand[models.Family, models.FamilyInput]{
		use:      "families",
		aliases:  []string{"family"},
		short:    "Manage families",
		noun:     i18n.NounFamily,
		resource: func(c *api.Client) *api.Resource[models.Family] { return c.Families },
		fields: []inputField{
			{key: "name", usage: "Family name"},
			{key: "address", usage: "Postal address"},
			{key: "phone", usage: "Phone number"},
			{key: "email", usage: "Email address"},
		},
		list: func(ctx context.Context, a *app, cmd *cobra.Command, items []models.Family) error {
			return a.formatter.PrintFamilies(views.Search(items, stringFlag(cmd, "search"), views.FamilyFields))
		},
		show: func(a *app, f *models.Family) error { return a.formatter.PrintFamily(f) },
	}.command()

	parentsCmd = resourceCommand[models.Parent, models.ParentInput]{
		use:      "parents",
		aliases:  []string{"parent"},
		short:    "Manage parents and guardians",
		noun:     i18n.NounParent,
		resource: func(c *api.Client) *api.Resource[models.Parent] { return c.Parents },
		fields: []inputField{
			{key: "firstName", usage: "First name"},
			{key: "lastName", usage: "Last name"},
			{key: "relationship", kind: upperField, usage: "Relationship (MOTHER, FATHER, GUARDIAN, OTHER)"},
			{key: "phone", usage: "Phone number"},
			{key: "email", usage: "Email address"},
			{key: "profession", usage: "Profession"},
			{key: "familyId", kind: integerField, usage: "Family ID"},
		},
		listFlags: func(c *cobra.Command) {
			c.Flags().Int64("family", 0, "Only parents of this family ID")
		},
		list: func(ctx context.Context, a *app, cmd *cobra.Command, items []models.Parent) error {
			items = views.Search(items, stringFlag(cmd, "search"), views.ParentFields)
			if family, _ := cmd.Flags().GetInt64("family"); family != 0 {
				kept := items[:0]
				for _, p := range items {
					if p.FamilyID == family {
						kept = append(kept, p)
					}
				}
				items = kept
			}
			return a.formatter.PrintParents(items)
		},
		show: func(a *app, p *models.Parent) error { return a.formatter.PrintParent(p) },
	}.command()

	feesCmd = resourceCommand[models.Fee, models.FeeInput]{
		use:      "fees",
		aliases:  []string{"fee"},
		short:    "Manage fees",
		noun:     i18n.NounFee,
		resource: func(c *api.Client) *api.Resource[models.Fee] { return c.Fees },
		fields: []inputField{
			{key: "name", usage: "Fee name"},
			{key: "amount", kind: numberField, usage: "Amount"},
			{key: "frequency", kind: upperField, usage: "Frequency (MONTHLY, QUARTERLY, YEARLY, ONCE)"},
			{key: "classId", kind: integerField, usage: "Class ID"},
			{key: "levelId", kind: integerField, usage: "Level ID"},
			{key: "academicYear", usage: "School year (YYYY-YYYY)"},
		},
		list: func(ctx context.Context, a *app, cmd *cobra.Command, items []models.Fee) error {
			return a.formatter.PrintFees(views.Search(items, stringFlag(cmd, "search"), func(f models.Fee) []string {
				return []string{f.Name, f.Frequency, f.AcademicYear}
			}))
		},
		show: func(a *app, f *models.Fee) error { return a.formatter.PrintFee(f) },
	}.command()

	paymentsCmd = resourceCommand[models.Payment, models.PaymentInput]{
		use:      "payments",
		aliases:  []string{"payment"},
		short:    "Record and list payments",
		noun:     i18n.NounPayment,
		resource: func(c *api.Client) *api.Resource[models.Payment] { return c.Payments },
		fields: []inputField{
			{key: "studentId", kind: integerField, usage: "Student ID"},
			{key: "invoiceId", kind: integerField, usage: "Invoice ID"},
			{key: "amount", kind: numberField, usage: "Amount paid"},
			{key: "month", usage: "Month paid for (YYYY-MM)"},
			{key: "paymentDate", usage: "Payment date (YYYY-MM-DD)"},
			{key: "method", kind: upperField, usage: "Method (CASH, MOBILE_MONEY, CHEQUE, BANK_TRANSFER)"},
			{key: "reference", usage: "Transaction or cheque reference (required unless CASH)"},
		},
		listFlags: func(c *cobra.Command) {
			c.Flags().String("month", "", "Only payments for this month (YYYY-MM)")
			c.Flags().String("method", "", "Only payments made with this method")
			c.Flags().Int64("student", 0, "Only payments of this student ID")
		},
		list: func(ctx context.Context, a *app, cmd *cobra.Command, items []models.Payment) error {
			names := a.studentNames(ctx)
			filter := views.PaymentFilter{
				Month:        stringFlag(cmd, "month"),
				Method:       models.PaymentMethod(strings.ToUpper(stringFlag(cmd, "method"))),
				Search:       stringFlag(cmd, "search"),
				StudentNames: names,
			}
			filter.StudentID, _ = cmd.Flags().GetInt64("student")
			return a.formatter.PrintPayments(filter.Apply(items), names)
		},
		show: func(a *app, p *models.Payment) error { return a.formatter.PrintPayment(p) },
	}.command()

	invoicesCmd = resourceCommand[models.Invoice, models.InvoiceInput]{
		use:      "invoices",
		aliases:  []string{"invoice", "factures"},
		short:    "Manage invoices",
		noun:     i18n.NounInvoice,
		resource: func(c *api.Client) *api.Resource[models.Invoice] { return c.Invoices },
		fields: []inputField{
			{key: "studentId", kind: integerField, usage: "Student ID"},
			{key: "issueDate", usage: "Issue date (YYYY-MM-DD)"},
			{key: "dueDate", usage: "Due date (YYYY-MM-DD)"},
			{key: "items", kind: itemsField, usage: "Invoice line as description:quantity:unit (repeatable)"},
			{key: "discount", kind: numberField, usage: "Discount amount"},
			{key: "notes", usage: "Notes printed on the invoice"},
		},
		listFlags: func(c *cobra.Command) {
			c.Flags().String("status", "", "Only invoices with this status (PENDING, PARTIAL, PAID, OVERDUE)")
			c.Flags().Int64("student", 0, "Only invoices of this student ID")
		},
		list: func(ctx context.Context, a *app, cmd *cobra.Command, items []models.Invoice) error {
			filter, err := invoiceFilter(cmd)
			if err != nil {
				return a.fail(err)
			}
			filter.StudentNames = a.studentNames(ctx)
			return a.formatter.PrintInvoices(filter.Apply(items), filter.StudentNames)
		},
		show: func(a *app, inv *models.Invoice) error { return a.formatter.PrintInvoice(inv) },
	}.command()

	gradesCmd = resourceCommand[models.Grade, models.GradeInput]{
		use:      "grades",
		aliases:  []string{"grade", "notes"},
		short:    "Record and list grades",
		noun:     i18n.NounGrade,
		resource: func(c *api.Client) *api.Resource[models.Grade] { return c.Grades },
		fields: []inputField{
			{key: "studentId", kind: integerField, usage: "Student ID"},
			{key: "subjectId", kind: integerField, usage: "Subject ID"},
			{key: "value", kind: numberField, usage: "Grade out of 20"},
			{key: "coefficient", kind: numberField, usage: "Weight of this grade"},
			{key: "quarter", kind: integerField, usage: "Quarter (1-4)"},
			{key: "type", usage: "Kind of assessment"},
			{key: "date", usage: "Date (YYYY-MM-DD)"},
			{key: "comment", usage: "Comment"},
		},
		listFlags: func(c *cobra.Command) {
			c.Flags().Int64("student", 0, "Only grades of this student ID")
			c.Flags().String("quarter", "", "Only grades of this quarter (1-4)")
		},
		list: func(ctx context.Context, a *app, cmd *cobra.Command, items []models.Grade) error {
			student, _ := cmd.Flags().GetInt64("student")
			quarter, err := parseQuarter(stringFlag(cmd, "quarter"))
			if err != nil {
				return a.fail(err)
			}
			kept := make([]models.Grade, 0, len(items))
			for _, g := range items {
				if (student == 0 || g.StudentID == student) && (quarter == 0 || g.Quarter == quarter) {
					kept = append(kept, g)
				}
			}
			return a.formatter.PrintGrades(kept, subjectNames(ctx, a))
		},
		show: func(a *app, g *models.Grade) error { return a.formatter.PrintGrade(g) },
	}.command()

	documentsCmd = resourceCommand[models.Document, models.DocumentInput]{
		use:      "documents",
		aliases:  []string{"document", "docs"},
		short:    "Manage documents stored by the backend",
		noun:     i18n.NounDocument,
		resource: func(c *api.Client) *api.Resource[models.Document] { return c.Documents },
		fields: []inputField{
			{key: "title", usage: "Title"},
			{key: "type", usage: "Document type"},
			{key: "studentId", kind: integerField, usage: "Student ID"},
			{key: "url", usage: "Location of the file"},
		},
		list: func(ctx context.Context, a *app, cmd *cobra.Command, items []models.Document) error {
			return a.formatter.PrintDocuments(views.Search(items, stringFlag(cmd, "search"), func(d models.Document) []string {
				return []string{d.Title, d.Type}
			}))
		},
		show: func(a *app, d *models.Document) error { return a.formatter.PrintDocument(d) },
	}.command()

	subjectsCmd = resourceCommand[models.Subject, struct{}]{
		use:      "subjects",
		aliases:  []string{"subject"},
		short:    "List subjects and their coefficients",
		noun:     i18n.NounSubject,
		resource: func(c *api.Client) *api.Resource[models.Subject] { return c.Subjects },
		list: func(ctx context.Context, a *app, cmd *cobra.Command, items []models.Subject) error {
			return a.formatter.PrintSubjects(views.Search(items, stringFlag(cmd, "search"), func(s models.Subject) []string {
				return []string{s.Name, s.ShortName}
			}))
		},
		show: func(a *app, s *models.Subject) error { return a.formatter.PrintSubjects([]models.Subject{*s}) },
	}.command()

	rootCmd.AddCommand(
		studentsCmd, classesCmd, levelsCmd, familiesCmd, parentsCmd, feesCmd,
		paymentsCmd, invoicesCmd, gradesCmd, documentsCmd, subjectsCmd,
	)
}

// invoiceFilter reads the status and student list flags
func invoiceFilter(cmd *cobra.Command) (views.InvoiceFilter, error) {
	filter := views.InvoiceFilter{Search: stringFlag(cmd, "search")}
	if raw := stringFlag(cmd, "status"); raw != "" {
		status, ok := models.ParseInvoiceStatus(raw)
		if !ok {
			return filter, fmt.Errorf("unknown invoice status %q", raw)
		}
		filter.Status = status
	}
	filter.StudentID, _ = cmd.Flags().GetInt64("student")
	return filter, nil
}

// subjectNames maps subject ids to names
func subjectNames(ctx context.Context, a *app) map[int64]string {
	subjects, err := a.client.Subjects.List(ctx, nil)
	if err != nil {
		a.logger.Warn("Failed to load subjects", "error", err)
		return nil
	}
	names := make(map[int64]string, len(subjects))
	for _, s := range subjects {
		names[s.ID] = s.Name
	}
	return names
}

func stringFlag(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return strings.TrimSpace(v)
}

// studentArg parses the student id positional argument
func studentArg(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing student ID")
	}
	return validateAndParseID(args[0])
}
