// Package dashboard aggregates the figures shown on the home screen and in
// the dashboard export.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"school-admin/internal/models"
)

// SeriesMonths is the length of the payment series, ending with the current month
const SeriesMonths = 6

// Sources fetches each collection. A nil source counts as empty.
type Sources struct {
	Students func(context.Context) ([]models.Student, error)
	Classes  func(context.Context) ([]models.Class, error)
	Families func(context.Context) ([]models.Family, error)
	Invoices func(context.Context) ([]models.Invoice, error)
	Payments func(context.Context) ([]models.Payment, error)
}

// MonthTotal is the amount collected in one month
type MonthTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// ClassSize is the headcount of one class
type ClassSize struct {
	ClassID  int64  `json:"classId"`
	Name     string `json:"name"`
	Students int    `json:"students"`
}

// Summary is the dashboard snapshot
type Summary struct {
	GeneratedAt      time.Time                    `json:"generatedAt"`
	StudentCount     int                          `json:"studentCount"`
	ClassCount       int                          `json:"classCount"`
	FamilyCount      int                          `json:"familyCount"`
	TotalCollected   float64                      `json:"totalCollected"`
	MonthCollected   float64                      `json:"monthCollected"`
	Outstanding      float64                      `json:"outstanding"`
	InvoicesByStatus map[models.InvoiceStatus]int `json:"invoicesByStatus"`
	Series           []MonthTotal                 `json:"series"`
	Classes          []ClassSize                  `json:"classes"`
	Warnings         []string                     `json:"warnings,omitempty"`
}

// Load fetches every source concurrently and summarizes them. A failing
// source contributes nothing and adds a warning; only cancellation of ctx
// fails the whole load.
func Load(ctx context.Context, src Sources, now time.Time) (Summary, error) {
	var (
		students []models.Student
		classes  []models.Class
		families []models.Family
		invoices []models.Invoice
		payments []models.Payment

		mu       sync.Mutex
		warnings []string
	)

	warn := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		warnings = append(warnings, fmt.Sprintf("%s: %v", name, err))
	}

	var g errgroup.Group
	fetch(&g, ctx, "students", src.Students, &students, warn)
	fetch(&g, ctx, "classes", src.Classes, &classes, warn)
	fetch(&g, ctx, "families", src.Families, &families, warn)
	fetch(&g, ctx, "invoices", src.Invoices, &invoices, warn)
	fetch(&g, ctx, "payments", src.Payments, &payments, warn)
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	summary := Summarize(students, classes, families, invoices, payments, now)
	sort.Strings(warnings)
	summary.Warnings = warnings
	return summary, nil
}

func fetch[T any](g *errgroup.Group, ctx context.Context, name string, source func(context.Context) ([]T, error), out *[]T, warn func(string, error)) {
	if source == nil {
		return
	}
	g.Go(func() error {
		items, err := source(ctx)
		if err != nil {
			warn(name, err)
			return nil
		}
		*out = items
		return nil
	})
}

// Summarize computes the snapshot from already-fetched data
func Summarize(students []models.Student, classes []models.Class, families []models.Family, invoices []models.Invoice, payments []models.Payment, now time.Time) Summary {
	summary := Summary{
		GeneratedAt:      now,
		StudentCount:     len(students),
		ClassCount:       len(classes),
		FamilyCount:      len(families),
		InvoicesByStatus: make(map[models.InvoiceStatus]int, len(models.InvoiceStatuses)),
		Series:           monthSeries(now),
	}

	for _, status := range models.InvoiceStatuses {
		summary.InvoicesByStatus[status] = 0
	}
	for _, inv := range invoices {
		summary.InvoicesByStatus[inv.Status]++
		if inv.Status != models.InvoicePaid {
			summary.Outstanding += models.DisplayBalance(inv.Balance)
		}
	}

	index := make(map[string]int, len(summary.Series))
	for i, m := range summary.Series {
		index[m.Month] = i
	}
	currentMonth := now.Format("2006-01")
	for _, p := range payments {
		summary.TotalCollected += p.Amount
		key := p.MonthKey()
		if key == currentMonth {
			summary.MonthCollected += p.Amount
		}
		if i, ok := index[key]; ok {
			summary.Series[i].Total += p.Amount
			summary.Series[i].Count++
		}
	}

	headcount := make(map[int64]int, len(classes))
	for _, s := range students {
		headcount[s.ClassID]++
	}
	for _, c := range classes {
		summary.Classes = append(summary.Classes, ClassSize{ClassID: c.ID, Name: c.Name, Students: headcount[c.ID]})
	}
	sort.SliceStable(summary.Classes, func(i, j int) bool {
		return summary.Classes[i].Name < summary.Classes[j].Name
	})

	return summary
}

// monthSeries returns the SeriesMonths months ending with now's month, oldest first
func monthSeries(now time.Time) []MonthTotal {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	series := make([]MonthTotal, SeriesMonths)
	for i := 0; i < SeriesMonths; i++ {
		series[i].Month = first.AddDate(0, i-(SeriesMonths-1), 0).Format("2006-01")
	}
	return series
}
