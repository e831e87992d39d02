package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Send statuses recorded in the log
const (
	SendStatusSent   = "sent"
	SendStatusFailed = "failed"
)

// SentEmailEntry is one attempt at emailing an invoice
type SentEmailEntry struct {
	ID             int64     `json:"id"`
	InvoiceID      int64     `json:"invoice_id"`
	InvoiceNumber  string    `json:"invoice_number"`
	Recipients     []string  `json:"recipients"`
	Cc             []string  `json:"cc,omitempty"`
	GmailMessageID string    `json:"gmail_message_id,omitempty"`
	Status         string    `json:"status"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	SentAt         time.Time `json:"sent_at"`
}

// SentEmailStore handles the log of invoice emails
type SentEmailStore struct {
	db *sql.DB
}

func NewSentEmailStore(db *sql.DB) *SentEmailStore {
	return &SentEmailStore{db: db}
}

// Record appends an entry to the log and sets its ID
func (s *SentEmailStore) Record(entry *SentEmailEntry) error {
	if entry.Status == "" {
		entry.Status = SendStatusSent
	}
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now()
	}

	to, err := json.Marshal(entry.Recipients)
	if err != nil {
		return fmt.Errorf("failed to encode recipients: %w", err)
	}
	cc, err := json.Marshal(entry.Cc)
	if err != nil {
		return fmt.Errorf("failed to encode cc: %w", err)
	}

	query := `INSERT INTO sent_emails (invoice_id, invoice_number, recipients, cc,
			  gmail_message_id, status, error_message, sent_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.Exec(query, entry.InvoiceID, entry.InvoiceNumber, string(to), string(cc),
		entry.GmailMessageID, entry.Status, entry.ErrorMessage, entry.SentAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record sent email: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

// LastSent returns when the invoice was last emailed successfully, or nil
func (s *SentEmailStore) LastSent(invoiceID int64) (*time.Time, error) {
	var sentAt time.Time
	query := `SELECT sent_at FROM sent_emails
			  WHERE invoice_id = ? AND status = ?
			  ORDER BY sent_at DESC LIMIT 1`

	err := s.db.QueryRow(query, invoiceID, SendStatusSent).Scan(&sentAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read last send: %w", err)
	}
	return &sentAt, nil
}

// GetByInvoiceID returns the log of one invoice, newest first
func (s *SentEmailStore) GetByInvoiceID(invoiceID int64) ([]SentEmailEntry, error) {
	query := `SELECT id, invoice_id, invoice_number, recipients, cc, gmail_message_id,
			  status, error_message, sent_at
			  FROM sent_emails WHERE invoice_id = ?
			  ORDER BY sent_at DESC, id DESC`

	rows, err := s.db.Query(query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSentEmails(rows)
}

// GetRecent returns the latest entries across all invoices
func (s *SentEmailStore) GetRecent(limit int) ([]SentEmailEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, invoice_id, invoice_number, recipients, cc, gmail_message_id,
			  status, error_message, sent_at
			  FROM sent_emails
			  ORDER BY sent_at DESC, id DESC LIMIT ?`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSentEmails(rows)
}

// Count returns the number of logged entries
func (s *SentEmailStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sent_emails`).Scan(&count)
	return count, err
}

// CleanupOlderThan deletes entries older than the given time and returns how many went
func (s *SentEmailStore) CleanupOlderThan(olderThan time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sent_emails WHERE sent_at < ?`, olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up sent emails: %w", err)
	}
	return result.RowsAffected()
}

func scanSentEmails(rows *sql.Rows) ([]SentEmailEntry, error) {
	var entries []SentEmailEntry
	for rows.Next() {
		var e SentEmailEntry
		var to, cc string
		if err := rows.Scan(&e.ID, &e.InvoiceID, &e.InvoiceNumber, &to, &cc,
			&e.GmailMessageID, &e.Status, &e.ErrorMessage, &e.SentAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(to), &e.Recipients); err != nil {
			return nil, fmt.Errorf("failed to decode recipients of entry %d: %w", e.ID, err)
		}
		if cc != "" && cc != "null" {
			if err := json.Unmarshal([]byte(cc), &e.Cc); err != nil {
				return nil, fmt.Errorf("failed to decode cc of entry %d: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
