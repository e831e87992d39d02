package documents

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"school-admin/internal/dashboard"
	"school-admin/internal/grades"
	"school-admin/internal/models"
)

const dateLayout = "02/01/2006"

func formatDate(d models.Date) string {
	if d.IsZero() {
		return "—"
	}
	return d.Format(dateLayout)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

var statusLabels = map[models.InvoiceStatus]string{
	models.InvoicePending: "En attente",
	models.InvoicePaid:    "Payée",
	models.InvoicePartial: "Partiellement payée",
	models.InvoiceOverdue: "En retard",
}

// StatusLabel returns the French label of an invoice status
func StatusLabel(s models.InvoiceStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

var methodLabels = map[models.PaymentMethod]string{
	models.MethodCash:         "Espèces",
	models.MethodMobileMoney:  "Mobile money",
	models.MethodCheque:       "Chèque",
	models.MethodBankTransfer: "Virement",
}

// MethodLabel returns the French label of a payment method
func MethodLabel(m models.PaymentMethod) string {
	if label, ok := methodLabels[m]; ok {
		return label
	}
	return string(m)
}

// InvoiceDocument lays out an invoice. Notes, discount and items are optional.
func InvoiceDocument(inv models.Invoice, student models.Student, school SchoolInfo) *Document {
	money := func(v float64) string { return FormatMoney(v, school.Currency) }

	doc := &Document{
		Kind:     KindInvoice,
		ID:       inv.DisplayNumber(),
		Title:    "Facture " + inv.DisplayNumber(),
		School:   school,
		IssuedAt: inv.IssueDate.Time,
		Sections: []Section{
			{
				Title: "Facture",
				Fields: []Field{
					{"Numéro", inv.DisplayNumber()},
					{"Date d'émission", formatDate(inv.IssueDate)},
					{"Échéance", formatDate(inv.DueDate)},
					{"Statut", StatusLabel(inv.Status)},
				},
			},
			{
				Title: "Élève",
				Fields: []Field{
					{"Nom", orDash(student.FullName())},
					{"Matricule", orDash(student.DisplayID())},
				},
			},
		},
	}

	items := Table{
		Title: "Détail",
		Columns: []Column{
			{Header: "Désignation", Align: AlignLeft, Width: 4},
			{Header: "Qté", Align: AlignCenter, Width: 1},
			{Header: "Prix unitaire", Align: AlignRight, Width: 2},
			{Header: "Montant", Align: AlignRight, Width: 2},
		},
		Empty: "Aucune ligne",
	}
	for _, item := range inv.Items {
		items.Rows = append(items.Rows, []string{
			item.Description,
			strconv.FormatFloat(item.Quantity, 'f', -1, 64),
			money(item.UnitAmount),
			money(item.Total()),
		})
	}
	doc.Tables = append(doc.Tables, items)

	if len(inv.Payments) > 0 {
		paid := Table{
			Title: "Paiements reçus",
			Columns: []Column{
				{Header: "Date", Width: 2},
				{Header: "Mode", Width: 2},
				{Header: "Référence", Width: 3},
				{Header: "Montant", Align: AlignRight, Width: 2},
			},
		}
		for _, p := range inv.Payments {
			paid.Rows = append(paid.Rows, []string{formatDate(p.PaymentDate), MethodLabel(p.Method), orDash(p.Reference), money(p.Amount)})
		}
		doc.Tables = append(doc.Tables, paid)
	}

	doc.Totals = append(doc.Totals, Field{"Total", money(inv.TotalAmount)})
	if inv.Discount != nil && *inv.Discount > 0 {
		doc.Totals = append(doc.Totals, Field{"Remise", "-" + money(*inv.Discount)})
	}
	net := inv.NetAmount
	if net == 0 {
		net = inv.TotalAmount
		if inv.Discount != nil {
			net -= *inv.Discount
		}
	}
	doc.Totals = append(doc.Totals,
		Field{"Net à payer", money(net)},
		Field{"Déjà payé", money(inv.PaidAmount)},
		Field{"Reste à payer", money(models.DisplayBalance(inv.Balance))},
	)

	if inv.Notes != "" {
		doc.Notes = append(doc.Notes, inv.Notes)
	}
	return doc
}

// RegistrationInput gathers what a registration confirmation shows.
// Class and Parent are optional.
type RegistrationInput struct {
	Student      models.Student
	Class        *models.Class
	Parent       *models.Parent
	Confirmation string
	RegisteredAt time.Time
}

// RegistrationDocument lays out a registration confirmation with a QR code of its number
func RegistrationDocument(in RegistrationInput, school SchoolInfo) *Document {
	s := in.Student
	gender := map[string]string{"M": "Masculin", "F": "Féminin"}[s.Gender]

	student := Section{
		Title: "Élève",
		Fields: []Field{
			{"Nom", orDash(s.FullName())},
			{"Matricule", orDash(s.DisplayID())},
			{"Date de naissance", formatDate(s.DateOfBirth)},
			{"Sexe", orDash(gender)},
		},
	}
	if in.Class != nil {
		student.Fields = append(student.Fields,
			Field{"Classe", in.Class.Name},
			Field{"Année scolaire", orDash(in.Class.AcademicYear)},
			Field{"Frais mensuels", FormatMoney(in.Class.ClassFee, school.Currency)},
		)
	}

	doc := &Document{
		Kind:     KindRegistration,
		ID:       in.Confirmation,
		Title:    "Confirmation d'inscription",
		Subtitle: "N° " + in.Confirmation,
		School:   school,
		IssuedAt: in.RegisteredAt,
		Sections: []Section{
			{
				Title: "Inscription",
				Fields: []Field{
					{"Numéro de confirmation", in.Confirmation},
					{"Date d'inscription", in.RegisteredAt.Format(dateLayout)},
				},
			},
			student,
		},
		QRCode: in.Confirmation,
		Notes: []string{
			"Ce numéro de confirmation est à présenter au secrétariat. Il ne remplace pas le matricule de l'élève.",
		},
	}

	if p := in.Parent; p != nil {
		doc.Sections = append(doc.Sections, Section{
			Title: "Responsable",
			Fields: []Field{
				{"Nom", orDash(p.FullName())},
				{"Lien", orDash(string(p.Relationship))},
				{"Téléphone", orDash(p.Phone)},
				{"Email", orDash(p.Email)},
			},
		})
	}
	return doc
}

// DashboardDocument lays out a dashboard snapshot
func DashboardDocument(summary dashboard.Summary, school SchoolInfo) *Document {
	money := func(v float64) string { return FormatMoney(v, school.Currency) }

	doc := &Document{
		Kind:     KindDashboard,
		ID:       summary.GeneratedAt.Format("2006-01"),
		Title:    "Tableau de bord",
		Subtitle: "Situation au " + summary.GeneratedAt.Format(dateLayout),
		School:   school,
		IssuedAt: summary.GeneratedAt,
		Sections: []Section{{
			Title: "Indicateurs",
			Fields: []Field{
				{"Élèves", strconv.Itoa(summary.StudentCount)},
				{"Classes", strconv.Itoa(summary.ClassCount)},
				{"Familles", strconv.Itoa(summary.FamilyCount)},
				{"Encaissé ce mois", money(summary.MonthCollected)},
				{"Encaissé au total", money(summary.TotalCollected)},
				{"Reste à recouvrer", money(summary.Outstanding)},
			},
		}},
	}

	statuses := Table{
		Title:   "Factures par statut",
		Columns: []Column{{Header: "Statut", Width: 3}, {Header: "Nombre", Align: AlignRight, Width: 1}},
	}
	for _, status := range models.InvoiceStatuses {
		statuses.Rows = append(statuses.Rows, []string{StatusLabel(status), strconv.Itoa(summary.InvoicesByStatus[status])})
	}

	series := Table{
		Title: "Encaissements mensuels",
		Columns: []Column{
			{Header: "Mois", Width: 2},
			{Header: "Paiements", Align: AlignRight, Width: 1},
			{Header: "Montant", Align: AlignRight, Width: 2},
		},
	}
	var total float64
	for _, m := range summary.Series {
		series.Rows = append(series.Rows, []string{m.Month, strconv.Itoa(m.Count), money(m.Total)})
		total += m.Total
	}
	series.Footer = []string{"Total", "", money(total)}

	classes := Table{
		Title:   "Effectifs par classe",
		Columns: []Column{{Header: "Classe", Width: 3}, {Header: "Élèves", Align: AlignRight, Width: 1}},
		Empty:   "Aucune classe",
	}
	for _, c := range summary.Classes {
		classes.Rows = append(classes.Rows, []string{c.Name, strconv.Itoa(c.Students)})
	}

	doc.Tables = []Table{statuses, series, classes}
	for _, w := range summary.Warnings {
		doc.Notes = append(doc.Notes, "Données incomplètes : "+w)
	}
	return doc
}

// LedgerDocument lists the payments of one month (YYYY-MM), oldest first
func LedgerDocument(month string, payments []models.Payment, studentNames map[int64]string, school SchoolInfo) *Document {
	money := func(v float64) string { return FormatMoney(v, school.Currency) }

	ordered := make([]models.Payment, len(payments))
	copy(ordered, payments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PaymentDate.Before(ordered[j].PaymentDate.Time)
	})

	table := Table{
		Title: "Paiements",
		Columns: []Column{
			{Header: "Date", Width: 2},
			{Header: "N°", Width: 2},
			{Header: "Élève", Width: 4},
			{Header: "Mode", Width: 2},
			{Header: "Référence", Width: 2},
			{Header: "Montant", Align: AlignRight, Width: 2},
		},
		Empty: "Aucun paiement pour ce mois",
	}

	var total float64
	byMethod := make(map[models.PaymentMethod]float64)
	for _, p := range ordered {
		name := studentNames[p.StudentID]
		if name == "" {
			name = fmt.Sprintf("#%d", p.StudentID)
		}
		number := p.PaymentNumber
		if number == "" {
			number = strconv.FormatInt(p.ID, 10)
		}
		table.Rows = append(table.Rows, []string{formatDate(p.PaymentDate), number, name, MethodLabel(p.Method), orDash(p.Reference), money(p.Amount)})
		total += p.Amount
		byMethod[p.Method] += p.Amount
	}
	table.Footer = []string{"Total", "", strconv.Itoa(len(ordered)) + " paiement(s)", "", "", money(total)}

	doc := &Document{
		Kind:     KindLedger,
		ID:       month,
		Title:    "Journal des paiements",
		Subtitle: "Mois " + month,
		School:   school,
		Tables:   []Table{table},
		Totals:   []Field{{"Total encaissé", money(total)}},
	}
	for _, method := range []models.PaymentMethod{models.MethodCash, models.MethodMobileMoney, models.MethodCheque, models.MethodBankTransfer} {
		if amount, ok := byMethod[method]; ok {
			doc.Totals = append(doc.Totals, Field{MethodLabel(method), money(amount)})
		}
	}
	return doc
}

// ReportCardDocument lays out a report card; undefined averages print as a dash
func ReportCardDocument(card grades.ReportCard, className string, school SchoolInfo, issuedAt time.Time) *Document {
	table := Table{
		Title: "Résultats",
		Columns: []Column{
			{Header: "Matière", Width: 4},
			{Header: "Coef.", Align: AlignCenter, Width: 1},
			{Header: "Notes", Align: AlignCenter, Width: 1},
			{Header: "Moyenne /20", Align: AlignRight, Width: 2},
		},
		Empty: "Aucune matière",
	}
	for _, line := range card.Lines {
		table.Rows = append(table.Rows, []string{
			line.Subject.Name,
			strconv.FormatFloat(line.Coefficient, 'f', -1, 64),
			strconv.Itoa(line.GradeCount),
			line.Average.String(),
		})
	}
	table.Footer = []string{"Moyenne générale", "", "", card.Overall.String()}

	doc := &Document{
		Kind:     KindReportCard,
		ID:       fmt.Sprintf("%s-%s", card.Student.DisplayID(), grades.QuarterLabel(card.Quarter)),
		Title:    "Bulletin de notes",
		Subtitle: "Période : " + grades.QuarterLabel(card.Quarter),
		School:   school,
		IssuedAt: issuedAt,
		Sections: []Section{{
			Title: "Élève",
			Fields: []Field{
				{"Nom", orDash(card.Student.FullName())},
				{"Matricule", orDash(card.Student.DisplayID())},
				{"Classe", orDash(className)},
			},
		}},
		Tables: []Table{table},
	}
	if !card.HasData() {
		doc.Notes = append(doc.Notes, "Aucune note enregistrée pour cette période.")
	}
	return doc
}
