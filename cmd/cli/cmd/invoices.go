package cmd

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	cliapi "school-admin/internal/cli"
	"school-admin/internal/database"
	"school-admin/internal/documents"
	"school-admin/internal/i18n"
	"school-admin/internal/mailer"
	"school-admin/internal/models"
	"school-admin/internal/ratelimit"
)

var invoiceDocumentCmd = &cobra.Command{
	Use:     "document <invoice-id>",
	Aliases: []string{"doc", "export"},
	Short:   "Generate the invoice document",
	Args:    cobra.ExactArgs(1),
	RunE:    runInvoiceDocument,
}

var invoiceSendCmd = &cobra.Command{
	Use:   "send <invoice-id>",
	Short: "Email the invoice as a PDF attachment",
	Long: `Email the invoice as a PDF attachment through Gmail.

Requires SCHOOL_ADMIN_GMAIL_CLIENT_ID, SCHOOL_ADMIN_GMAIL_CLIENT_SECRET and
SCHOOL_ADMIN_GMAIL_REFRESH_TOKEN (or the gmail section of the config file).`,
	Args: cobra.ExactArgs(1),
	RunE: runInvoiceSend,
}

var invoiceHistoryCmd = &cobra.Command{
	Use:   "history [invoice-id]",
	Short: "Show the log of emailed invoices",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInvoiceHistory,
}

func init() {
	addDocumentFlags(invoiceDocumentCmd)
	invoiceHistoryCmd.Flags().Int("limit", 20, "Entries to show when no invoice is given")

	invoiceSendCmd.Flags().StringSlice("to", nil, "Recipient addresses (default: the student's family email)")
	invoiceSendCmd.Flags().StringSlice("cc", nil, "Copy addresses")
	invoiceSendCmd.Flags().Bool("force", false, "Send even if the invoice was emailed a moment ago")

	invoicesCmd.AddCommand(invoiceDocumentCmd, invoiceSendCmd, invoiceHistoryCmd)
}

func runInvoiceDocument(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := validateAndParseID(args[0])
	if err != nil {
		return a.fail(err)
	}

	inv, student, err := loadInvoice(cmd.Context(), a, id)
	if err != nil {
		return a.fail(err)
	}
	return emitDocument(cmd, a, documents.InvoiceDocument(*inv, student, a.school()))
}

func runInvoiceSend(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	id, err := validateAndParseID(args[0])
	if err != nil {
		return a.fail(err)
	}

	sender, err := a.newMailer(ctx)
	if err != nil {
		return a.fail(err)
	}

	force, _ := cmd.Flags().GetBool("force")
	lastSent, err := a.db.Sent.LastSent(id)
	if err != nil {
		return a.fail(err)
	}
	if check := ratelimit.CheckResend(lastSent, force, a.now()); check.ShouldBlock {
		a.logger.Debug("Invoice resend blocked", "invoice_id", id, "reason", check.Reason)
		return a.fail(errors.New(a.catalog.T(i18n.MsgResendBlocked,
			strconv.FormatInt(id, 10), check.RemainingTime.Round(time.Second).String())))
	}

	inv, student, err := loadInvoice(ctx, a, id)
	if err != nil {
		return a.fail(err)
	}

	to, _ := cmd.Flags().GetStringSlice("to")
	if len(to) == 0 {
		to = familyRecipients(ctx, a, student)
	}
	if len(to) == 0 {
		return a.fail(errNoRecipient)
	}

	file, err := documents.Generate(documents.InvoiceDocument(*inv, student, a.school()), documents.FormatPDF, a.now())
	if err != nil {
		return a.fail(err)
	}

	msg := mailer.InvoiceMessage(to, inv.DisplayNumber(), student.FullName(), a.config.School.Name, file)
	msg.Cc, _ = cmd.Flags().GetStringSlice("cc")

	entry := &database.SentEmailEntry{
		InvoiceID:     id,
		InvoiceNumber: inv.DisplayNumber(),
		Recipients:    to,
		Cc:            msg.Cc,
	}
	err = cliapi.RunWithSpinner("Sending", a.config.NoColor, func() error {
		messageID, err := sender.Send(ctx, msg)
		if err == nil {
			a.logger.Debug("Invoice sent", "invoice_id", id, "message_id", messageID)
		}
		entry.GmailMessageID = messageID
		return err
	})
	entry.SentAt = a.now()
	if err != nil {
		entry.Status = database.SendStatusFailed
		entry.ErrorMessage = err.Error()
	}
	if recErr := a.db.Sent.Record(entry); recErr != nil {
		a.logger.Warn("Failed to record invoice send", "invoice_id", id, "error", recErr)
	}
	if err != nil {
		return a.fail(err)
	}

	a.formatter.PrintSuccess(a.catalog.T(i18n.MsgInvoiceSent, inv.DisplayNumber(), strings.Join(to, ", ")))
	return nil
}

func runInvoiceHistory(cmd *cobra.Command, args []string) error {
	a, err := initializeApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var entries []database.SentEmailEntry
	if len(args) == 1 {
		id, err := validateAndParseID(args[0])
		if err != nil {
			return a.fail(err)
		}
		entries, err = a.db.Sent.GetByInvoiceID(id)
		if err != nil {
			return a.fail(err)
		}
	} else {
		limit, _ := cmd.Flags().GetInt("limit")
		entries, err = a.db.Sent.GetRecent(limit)
		if err != nil {
			return a.fail(err)
		}
	}
	return a.formatter.PrintSentEmails(entries)
}

// loadInvoice fetches an invoice and its student. An unknown student still
// lets the document be produced.
func loadInvoice(ctx context.Context, a *app, id int64) (*models.Invoice, models.Student, error) {
	inv, err := a.client.Invoices.Get(ctx, id)
	if err != nil {
		return nil, models.Student{}, err
	}

	student := models.Student{ID: inv.StudentID}
	if inv.StudentID != 0 {
		s, err := a.client.Students.Get(ctx, inv.StudentID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, models.Student{}, ctx.Err()
			}
			a.logger.Warn("Failed to load invoice student", "student_id", inv.StudentID, "error", err)
		} else {
			student = *s
		}
	}
	return inv, student, nil
}

// familyRecipients returns the email of the student's family and parent
func familyRecipients(ctx context.Context, a *app, student models.Student) []string {
	var to []string
	if student.ParentID != 0 {
		if p, err := a.client.Parents.Get(ctx, student.ParentID); err == nil && p.Email != "" {
			to = append(to, p.Email)
		}
	}
	if len(to) == 0 && student.FamilyID != 0 {
		if f, err := a.client.Families.Get(ctx, student.FamilyID); err == nil && f.Email != "" {
			to = append(to, f.Email)
		}
	}
	return to
}
