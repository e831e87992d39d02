package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-admin/internal/models"
)

var now = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func date(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSummarize(t *testing.T) {
	students := []models.Student{{ID: 1, ClassID: 1}, {ID: 2, ClassID: 1}, {ID: 3, ClassID: 2}}
	classes := []models.Class{{ID: 2, Name: "CM2"}, {ID: 1, Name: "CE1"}}
	invoices := []models.Invoice{
		{ID: 1, Status: models.InvoicePending, Balance: 15000},
		{ID: 2, Status: models.InvoicePaid, Balance: 0},
		{ID: 3, Status: models.InvoicePartial, Balance: 5000},
		{ID: 4, Status: models.InvoiceOverdue, Balance: -200},
	}
	payments := []models.Payment{
		{Amount: 10000, Month: "2025-03"},
		{Amount: 5000, PaymentDate: date("2025-03-02")},
		{Amount: 7000, Month: "2025-01"},
		{Amount: 3000, Month: "2024-06"},
	}

	s := Summarize(students, classes, nil, invoices, payments, now)

	assert.Equal(t, 3, s.StudentCount)
	assert.Equal(t, 2, s.ClassCount)
	assert.Equal(t, 25000.0, s.TotalCollected)
	assert.Equal(t, 15000.0, s.MonthCollected)
	assert.Equal(t, 20000.0, s.Outstanding)
	assert.Equal(t, 1, s.InvoicesByStatus[models.InvoicePending])
	assert.Equal(t, 1, s.InvoicesByStatus[models.InvoicePaid])

	require.Len(t, s.Series, SeriesMonths)
	assert.Equal(t, "2024-10", s.Series[0].Month)
	assert.Equal(t, "2025-03", s.Series[5].Month)
	assert.Equal(t, 15000.0, s.Series[5].Total)
	assert.Equal(t, 2, s.Series[5].Count)
	assert.Equal(t, 7000.0, s.Series[3].Total)

	require.Len(t, s.Classes, 2)
	assert.Equal(t, ClassSize{ClassID: 1, Name: "CE1", Students: 2}, s.Classes[0])
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil, nil, nil, nil, now)
	assert.Zero(t, s.StudentCount)
	assert.Len(t, s.Series, SeriesMonths)
	assert.Equal(t, 0, s.InvoicesByStatus[models.InvoiceOverdue])
}

func TestMonthSeries_CrossesYear(t *testing.T) {
	series := monthSeries(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-08", series[0].Month)
	assert.Equal(t, "2025-01", series[5].Month)
}

func TestLoad_DegradesOnFailedSource(t *testing.T) {
	src := Sources{
		Students: func(context.Context) ([]models.Student, error) {
			return []models.Student{{ID: 1}, {ID: 2}}, nil
		},
		Invoices: func(context.Context) ([]models.Invoice, error) {
			return nil, errors.New("HTTP 500")
		},
		Payments: func(context.Context) ([]models.Payment, error) {
			return []models.Payment{{Amount: 100, Month: "2025-03"}}, nil
		},
	}

	s, err := Load(context.Background(), src, now)
	require.NoError(t, err)
	assert.Equal(t, 2, s.StudentCount)
	assert.Equal(t, 100.0, s.MonthCollected)
	assert.Zero(t, s.Outstanding)
	assert.Equal(t, []string{"invoices: HTTP 500"}, s.Warnings)
}

func TestLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, Sources{}, now)
	assert.ErrorIs(t, err, context.Canceled)
}
