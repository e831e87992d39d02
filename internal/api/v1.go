package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"school-admin/internal/models"
)

// AllStudents lists every student through the unpaginated v1 endpoint
func (c *Client) AllStudents(ctx context.Context) ([]models.Student, error) {
	students, err := fetchList[models.Student](ctx, c, "/v1/students/all", nil)
	if err != nil {
		return nil, fmt.Errorf("list all students: %w", err)
	}
	return students, nil
}

// AllClasses lists every class through the unpaginated v1 endpoint
func (c *Client) AllClasses(ctx context.Context) ([]models.Class, error) {
	classes, err := fetchList[models.Class](ctx, c, "/v1/classes/all", nil)
	if err != nil {
		return nil, fmt.Errorf("list all classes: %w", err)
	}
	return classes, nil
}

// StudentPayments lists the payments of one student
func (c *Client) StudentPayments(ctx context.Context, studentID int64) ([]models.Payment, error) {
	path := "/v1/students/" + strconv.FormatInt(studentID, 10) + "/payments"
	payments, err := fetchList[models.Payment](ctx, c, path, nil)
	if err != nil {
		return nil, fmt.Errorf("list payments of student %d: %w", studentID, err)
	}
	return payments, nil
}

// MonthlyPayments returns the financial report for month (YYYY-MM)
func (c *Client) MonthlyPayments(ctx context.Context, month string) (*models.MonthlyPaymentsReport, error) {
	report, err := fetchOne[models.MonthlyPaymentsReport](ctx, c, "/v1/financial-reports/monthly-payments", url.Values{"month": {month}})
	if err != nil {
		return nil, fmt.Errorf("monthly payments for %s: %w", month, err)
	}
	if report.Month == "" {
		report.Month = month
	}
	return report, nil
}

// StudentFeeProfile returns the fee standing of one student
func (c *Client) StudentFeeProfile(ctx context.Context, studentID int64) (*models.StudentFeeProfile, error) {
	path := "/student-fee-profiles/student/" + strconv.FormatInt(studentID, 10)
	profile, err := fetchOne[models.StudentFeeProfile](ctx, c, path, nil)
	if err != nil {
		return nil, fmt.Errorf("fee profile of student %d: %w", studentID, err)
	}
	return profile, nil
}
