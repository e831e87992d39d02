package models

import (
	"strconv"
	"strings"
)

// InvoiceStatus is the backend-computed payment state of an invoice
type InvoiceStatus string

const (
	InvoicePending InvoiceStatus = "PENDING"
	InvoicePaid    InvoiceStatus = "PAID"
	InvoicePartial InvoiceStatus = "PARTIAL"
	InvoiceOverdue InvoiceStatus = "OVERDUE"
)

// InvoiceStatuses lists the known statuses in display order
var InvoiceStatuses = []InvoiceStatus{InvoicePending, InvoicePartial, InvoicePaid, InvoiceOverdue}

// ParseInvoiceStatus normalizes user input; ok is false for unknown values
func ParseInvoiceStatus(s string) (InvoiceStatus, bool) {
	status := InvoiceStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range InvoiceStatuses {
		if status == known {
			return status, true
		}
	}
	return "", false
}

// PaymentMethod is how a payment was settled
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	MethodCheque       PaymentMethod = "CHEQUE"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// InvoiceItem is one billed line
type InvoiceItem struct {
	Description string  `json:"description" validate:"required,max=255"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	UnitAmount  float64 `json:"unitAmount" validate:"gte=0"`
}

// Total returns quantity times unit amount
func (i InvoiceItem) Total() float64 {
	return i.Quantity * i.UnitAmount
}

// Invoice is a bill issued to a student
type Invoice struct {
	ID            int64         `json:"id"`
	InvoiceNumber string        `json:"invoiceNumber"`
	StudentID     int64         `json:"studentId"`
	IssueDate     Date          `json:"issueDate"`
	DueDate       Date          `json:"dueDate"`
	Items         []InvoiceItem `json:"items,omitempty"`
	TotalAmount   float64       `json:"totalAmount"`
	Discount      *float64      `json:"discount,omitempty"`
	NetAmount     float64       `json:"netAmount"`
	PaidAmount    float64       `json:"paidAmount"`
	Balance       float64       `json:"balance"`
	Status        InvoiceStatus `json:"status"`
	Notes         string        `json:"notes,omitempty"`
	Payments      []Payment     `json:"payments,omitempty"`
}

// DisplayNumber returns the invoice number, or the id when the backend did not number it yet
func (i Invoice) DisplayNumber() string {
	if i.InvoiceNumber != "" {
		return i.InvoiceNumber
	}
	return formatID(i.ID)
}

// Payment is money received for a student
type Payment struct {
	ID            int64         `json:"id"`
	PaymentNumber string        `json:"paymentNumber,omitempty"`
	StudentID     int64         `json:"studentId"`
	InvoiceID     int64         `json:"invoiceId,omitempty"`
	Amount        float64       `json:"amount"`
	Month         string        `json:"month,omitempty"`
	PaymentDate   Date          `json:"paymentDate"`
	Method        PaymentMethod `json:"method"`
	Reference     string        `json:"reference,omitempty"`
}

// MonthKey returns the YYYY-MM bucket of the payment, preferring the month label
func (p Payment) MonthKey() string {
	if m := strings.TrimSpace(p.Month); len(m) >= 7 && m[4] == '-' {
		return m[:7]
	}
	if !p.PaymentDate.IsZero() {
		return p.PaymentDate.Format("2006-01")
	}
	return ""
}

// StudentFeeProfile is the backend summary of a student's payment standing
type StudentFeeProfile struct {
	StudentID          int64   `json:"studentId"`
	OutstandingAmount  float64 `json:"outstandingAmount"`
	LastPaymentDate    Date    `json:"lastPaymentDate"`
	NextPaymentDate    Date    `json:"nextPaymentDate"`
	Status             string  `json:"status"`
	MonthsOverdue      int     `json:"monthsOverdue"`
	TotalPaid          float64 `json:"totalPaid"`
	DiscountPercentage float64 `json:"discountPercentage"`
}

// MonthlyPaymentsReport is the backend's financial report for one month
type MonthlyPaymentsReport struct {
	Month       string    `json:"month"`
	TotalAmount float64   `json:"totalAmount"`
	Count       int       `json:"count"`
	Payments    []Payment `json:"payments"`
}

// DisplayBalance clamps a balance for display; the backend remains authoritative
func DisplayBalance(amount float64) float64 {
	if amount < 0 {
		return 0
	}
	return amount
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
