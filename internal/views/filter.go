package views

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"school-admin/internal/models"
)

// Normalize lowercases s and strips accents so that "Élodie" matches "elodie"
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Matches reports whether every word of query occurs in at least one field.
// An empty query matches everything.
func Matches(query string, fields ...string) bool {
	terms := strings.Fields(Normalize(query))
	if len(terms) == 0 {
		return true
	}

	normalized := make([]string, len(fields))
	for i, f := range fields {
		normalized[i] = Normalize(f)
	}

	for _, term := range terms {
		found := false
		for _, f := range normalized {
			if strings.Contains(f, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Search keeps the items whose fields match query
func Search[T any](items []T, query string, fields func(T) []string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if Matches(query, fields(item)...) {
			out = append(out, item)
		}
	}
	return out
}

// InvoiceFilter narrows the invoice list. Zero values mean "no constraint".
type InvoiceFilter struct {
	Status       models.InvoiceStatus
	StudentID    int64
	Search       string
	StudentNames map[int64]string
}

// Apply returns the invoices passing every constraint, in input order
func (f InvoiceFilter) Apply(invoices []models.Invoice) []models.Invoice {
	out := make([]models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if f.StudentID != 0 && inv.StudentID != f.StudentID {
			continue
		}
		if !Matches(f.Search, inv.DisplayNumber(), f.StudentNames[inv.StudentID], inv.Notes) {
			continue
		}
		out = append(out, inv)
	}
	return out
}

// StudentFilter narrows the student list
type StudentFilter struct {
	ClassID int64
	Gender  string
	Search  string
}

// Apply returns the matching students
func (f StudentFilter) Apply(students []models.Student) []models.Student {
	out := make([]models.Student, 0, len(students))
	for _, s := range students {
		if f.ClassID != 0 && s.ClassID != f.ClassID {
			continue
		}
		if f.Gender != "" && !strings.EqualFold(s.Gender, f.Gender) {
			continue
		}
		if !Matches(f.Search, s.FullName(), s.Matricule, s.DisplayID()) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// PaymentFilter narrows the payment list
type PaymentFilter struct {
	Month        string
	Method       models.PaymentMethod
	StudentID    int64
	Search       string
	StudentNames map[int64]string
}

// Apply returns the matching payments
func (f PaymentFilter) Apply(payments []models.Payment) []models.Payment {
	out := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		if f.Month != "" && p.MonthKey() != f.Month {
			continue
		}
		if f.Method != "" && p.Method != f.Method {
			continue
		}
		if f.StudentID != 0 && p.StudentID != f.StudentID {
			continue
		}
		if !Matches(f.Search, p.PaymentNumber, p.Reference, f.StudentNames[p.StudentID], strconv.FormatInt(p.ID, 10)) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FamilyFields are the searchable fields of a family
func FamilyFields(f models.Family) []string {
	return []string{f.Name, f.Phone, f.Email, f.Address}
}

// ParentFields are the searchable fields of a parent
func ParentFields(p models.Parent) []string {
	return []string{p.FullName(), p.Phone, p.Email, p.Profession}
}

// ClassFields are the searchable fields of a class
func ClassFields(c models.Class) []string {
	return []string{c.Name, c.AcademicYear}
}
