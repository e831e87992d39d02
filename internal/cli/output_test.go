package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"school-admin/internal/api"
	"school-admin/internal/database"
	"school-admin/internal/grades"
	"school-admin/internal/i18n"
	"school-admin/internal/models"
	"school-admin/internal/validation"
)

func newTestFormatter(format string, quiet bool) (*OutputFormatter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	f := NewOutputFormatter(format, quiet, true).WithWriters(&out, &errOut)
	return f, &out, &errOut
}

func date(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestOutputFormatterPrintInvoices(t *testing.T) {
	invoices := []models.Invoice{
		{
			ID:            1,
			InvoiceNumber: "INV-2025-001",
			StudentID:     7,
			IssueDate:     date("2025-03-01"),
			DueDate:       date("2025-03-31"),
			NetAmount:     25000,
			PaidAmount:    10000,
			Balance:       15000,
			Status:        models.InvoicePartial,
		},
		{
			ID:        2,
			StudentID: 8,
			NetAmount: 5000,
			Balance:   -200,
			Status:    models.InvoicePaid,
		},
	}
	names := map[int64]string{7: "Awa Diallo"}

	tests := []struct {
		name     string
		format   string
		quiet    bool
		contains []string
	}{
		{
			name:     "table format",
			format:   "table",
			contains: []string{"NUMBER", "STUDENT", "BALANCE", "INV-2025-001", "Awa Diallo", "15 000 FCFA", "Partiellement payée", "Payée"},
		},
		{
			name:     "json format",
			format:   "json",
			contains: []string{`"invoiceNumber": "INV-2025-001"`, `"status": "PARTIAL"`},
		},
		{
			name:     "quiet mode",
			format:   "table",
			quiet:    true,
			contains: []string{"1\n", "2\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter, out, _ := newTestFormatter(tt.format, tt.quiet)

			if err := formatter.PrintInvoices(invoices, names); err != nil {
				t.Fatalf("PrintInvoices failed: %v", err)
			}

			output := out.String()
			for _, expected := range tt.contains {
				if !strings.Contains(output, expected) {
					t.Errorf("Output should contain '%s', but got: %s", expected, output)
				}
			}
		})
	}
}

func TestOutputFormatterNegativeBalanceShownAsZero(t *testing.T) {
	formatter, out, _ := newTestFormatter("table", false)

	if err := formatter.PrintInvoice(&models.Invoice{ID: 3, Balance: -500, Status: models.InvoicePaid}); err != nil {
		t.Fatalf("PrintInvoice failed: %v", err)
	}

	if !strings.Contains(out.String(), "Balance: 0 FCFA") {
		t.Errorf("expected clamped balance, got: %s", out.String())
	}
}

func TestOutputFormatterPrintInvoiceItems(t *testing.T) {
	formatter, out, _ := newTestFormatter("table", false)
	discount := 2500.0

	err := formatter.PrintInvoice(&models.Invoice{
		ID:          4,
		TotalAmount: 25000,
		Discount:    &discount,
		NetAmount:   22500,
		Items: []models.InvoiceItem{
			{Description: "Scolarité mars", Quantity: 1, UnitAmount: 25000},
		},
	})
	if err != nil {
		t.Fatalf("PrintInvoice failed: %v", err)
	}

	for _, expected := range []string{"Discount: 2 500 FCFA", "Net: 22 500 FCFA", "DESCRIPTION", "Scolarité mars"} {
		if !strings.Contains(out.String(), expected) {
			t.Errorf("Output should contain '%s', but got: %s", expected, out.String())
		}
	}
}

func TestOutputFormatterEmptyList(t *testing.T) {
	formatter, out, _ := newTestFormatter("table", false)
	if err := formatter.PrintStudents(nil, nil); err != nil {
		t.Fatalf("PrintStudents failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != "Aucune donnée" {
		t.Errorf("unexpected output for empty list: %q", out.String())
	}

	formatter, out, _ = newTestFormatter("json", false)
	if err := formatter.PrintStudents(nil, nil); err != nil {
		t.Fatalf("PrintStudents failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != "[]" {
		t.Errorf("expected an empty JSON array, got %q", out.String())
	}
}

func TestOutputFormatterPrintSentEmails(t *testing.T) {
	entries := []database.SentEmailEntry{
		{ID: 3, InvoiceNumber: "FAC-003", Recipients: []string{"a@example.sn", "b@example.sn"}, Status: database.SendStatusSent, SentAt: time.Now()},
		{ID: 4, InvoiceNumber: "FAC-004", Recipients: []string{"c@example.sn"}, Status: database.SendStatusFailed, ErrorMessage: "quota exceeded", SentAt: time.Now()},
	}

	formatter, out, _ := newTestFormatter("table", false)
	if err := formatter.PrintSentEmails(entries); err != nil {
		t.Fatalf("PrintSentEmails failed: %v", err)
	}
	for _, want := range []string{"INVOICE", "FAC-003", "a@example.sn, b@example.sn", "failed: quota exceeded"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out.String())
		}
	}

	formatter, out, _ = newTestFormatter("table", true)
	if err := formatter.PrintSentEmails(entries); err != nil {
		t.Fatalf("PrintSentEmails failed: %v", err)
	}
	if out.String() != "3\n4\n" {
		t.Errorf("expected quiet IDs, got %q", out.String())
	}
}

func TestOutputFormatterUnsupportedFormat(t *testing.T) {
	formatter, _, _ := newTestFormatter("yaml", false)
	if err := formatter.PrintClasses([]models.Class{{ID: 1}}); err == nil {
		t.Error("expected an error for an unsupported format")
	}
}

func TestOutputFormatterPrintReportCard(t *testing.T) {
	v := func(f float64) *float64 { return &f }
	student := models.Student{ID: 1, Matricule: "MAT-001", FirstName: "Awa", LastName: "Diallo"}
	subjects := []models.Subject{{ID: 10, Name: "Mathématiques", Coefficient: 2}, {ID: 11, Name: "Histoire", Coefficient: 1}}
	card := grades.BuildReportCard(student, []models.Grade{
		{StudentID: 1, SubjectID: 10, Quarter: 1, Value: v(12), Coefficient: v(1)},
		{StudentID: 1, SubjectID: 10, Quarter: 1, Value: v(16), Coefficient: v(2)},
	}, subjects, 1)

	formatter, out, _ := newTestFormatter("table", false)
	if err := formatter.PrintReportCard(card); err != nil {
		t.Fatalf("PrintReportCard failed: %v", err)
	}

	output := out.String()
	for _, expected := range []string{"Awa Diallo (MAT-001) - T1", "Mathématiques", "14.67", "Histoire", grades.Placeholder, "OVERALL"} {
		if !strings.Contains(output, expected) {
			t.Errorf("Output should contain '%s', but got: %s", expected, output)
		}
	}

	formatter, out, _ = newTestFormatter("json", false)
	if err := formatter.PrintReportCard(card); err != nil {
		t.Fatalf("PrintReportCard failed: %v", err)
	}
	var decoded struct {
		Overall *float64 `json:"overall"`
	}
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Overall == nil || *decoded.Overall != 14.67 {
		t.Errorf("expected overall 14.67, got %v", decoded.Overall)
	}
}

func TestOutputFormatterPrintSuccess(t *testing.T) {
	tests := []struct {
		name     string
		quiet    bool
		message  string
		expected string
	}{
		{
			name:     "normal mode",
			quiet:    false,
			message:  "Élève créé(e) avec succès",
			expected: "✓ Élève créé(e) avec succès",
		},
		{
			name:     "quiet mode",
			quiet:    true,
			message:  "Élève créé(e) avec succès",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter, out, _ := newTestFormatter("table", tt.quiet)
			formatter.PrintSuccess(tt.message)

			output := out.String()
			if tt.expected == "" {
				if output != "" {
					t.Errorf("Expected no output in quiet mode, but got: %s", output)
				}
			} else if !strings.Contains(output, tt.expected) {
				t.Errorf("Expected output to contain '%s', but got: %s", tt.expected, output)
			}
		})
	}
}

func TestOutputFormatterPrintError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "backend message",
			err:      fmt.Errorf("create failed: %w", &api.APIError{Status: 409, Message: "Matricule déjà utilisé"}),
			expected: "✗ Error: Matricule déjà utilisé",
		},
		{
			name:     "backend 401",
			err:      &api.APIError{Status: 401, Message: "Unauthorized"},
			expected: "Session expirée",
		},
		{
			name:     "no session",
			err:      api.ErrNotAuthenticated,
			expected: "Veuillez vous connecter",
		},
		{
			name:     "plain error",
			err:      fmt.Errorf("request failed: connection refused"),
			expected: "request failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter, out, errOut := newTestFormatter("table", false)
			formatter.PrintError(tt.err)

			if out.Len() != 0 {
				t.Errorf("errors must go to stderr, stdout got: %s", out.String())
			}
			if !strings.Contains(errOut.String(), tt.expected) {
				t.Errorf("Expected stderr to contain '%s', but got: %s", tt.expected, errOut.String())
			}
		})
	}
}

func TestNotifierFailureListsFields(t *testing.T) {
	formatter, _, errOut := newTestFormatter("table", false)
	notifier := NewNotifier(formatter)

	notifier.Failure(validation.Errors{
		"phone":     "phone doit être un numéro de téléphone valide",
		"firstName": "firstName est un champ obligatoire",
	})

	output := errOut.String()
	if !strings.Contains(output, "Le formulaire contient des erreurs") {
		t.Errorf("missing summary line: %s", output)
	}
	first := strings.Index(output, "firstName:")
	phone := strings.Index(output, "phone:")
	if first < 0 || phone < 0 || first > phone {
		t.Errorf("expected sorted field lines, got: %s", output)
	}
}

func TestOutputFormatterEnglishCatalog(t *testing.T) {
	formatter, out, _ := newTestFormatter("table", false)
	formatter.WithCatalog(i18n.MustNew("en"))

	if err := formatter.PrintFamilies(nil); err != nil {
		t.Fatalf("PrintFamilies failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != "No data" {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly ten chars", 17, "exactly ten chars"},
		{"this is a very long string that should be truncated", 20, "this is a very lo..."},
		{"", 5, ""},
		{"abc", 3, "abc"},
		{"abcd", 3, "..."},
		{"Élodie Ndiaye-Sène", 9, "Élodie..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, expected %q", tt.input, tt.maxLen, result, tt.expected)
		}
	}
}
