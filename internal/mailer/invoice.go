package mailer

import (
	"fmt"
	"strings"

	"school-admin/internal/documents"
)

// InvoiceMessage builds the email that carries an invoice document
func InvoiceMessage(to []string, invoiceNumber, studentName, schoolName string, file *documents.File) *Message {
	subject := "Facture " + invoiceNumber
	if schoolName != "" {
		subject = schoolName + " - " + subject
	}

	var body strings.Builder
	body.WriteString("Bonjour,\r\n\r\n")
	if studentName != "" {
		fmt.Fprintf(&body, "Veuillez trouver ci-joint la facture %s concernant %s.\r\n", invoiceNumber, studentName)
	} else {
		fmt.Fprintf(&body, "Veuillez trouver ci-joint la facture %s.\r\n", invoiceNumber)
	}
	body.WriteString("\r\nCordialement,\r\n")
	if schoolName != "" {
		body.WriteString(schoolName + "\r\n")
	}

	msg := &Message{
		To:      to,
		Subject: subject,
		Body:    body.String(),
	}
	if file != nil {
		msg.Attachments = append(msg.Attachments, Attachment{Name: file.Name, MIMEType: file.MIMEType, Data: file.Data})
	}
	return msg
}
