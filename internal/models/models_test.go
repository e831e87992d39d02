package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_UnmarshalAcceptsBackendLayouts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"calendar date", `"2025-09-01"`, "2025-09-01"},
		{"rfc3339", `"2025-09-01T08:30:00Z"`, "2025-09-01"},
		{"local timestamp", `"2025-09-01T08:30:00"`, "2025-09-01"},
		{"null", `null`, ""},
		{"empty string", `""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, json.Unmarshal([]byte(tt.input), &d))
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestDate_UnmarshalRejectsGarbage(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`12`), &d))
}

func TestGrade_UnmarshalKeepsRecordWithMalformedFields(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValue *float64
		wantCoef  *float64
		quarter   int
		date      string
	}{
		{"well formed", `{"id":1,"value":12.5,"coefficient":2,"quarter":1,"date":"2024-12-31"}`, ptr(12.5), ptr(2), 1, "2024-12-31"},
		{"numeric strings", `{"id":2,"value":"15","coefficient":"1,5","quarter":"2"}`, ptr(15), ptr(1.5), 2, ""},
		{"garbage value", `{"id":3,"value":"abs","coefficient":1,"quarter":1}`, nil, ptr(1), 1, ""},
		{"object value", `{"id":4,"value":{"x":1},"coefficient":true}`, nil, nil, 0, ""},
		{"foreign date", `{"id":5,"value":10,"coefficient":1,"date":"31/12/2024"}`, ptr(10), ptr(1), 0, ""},
		{"non-finite string", `{"id":6,"value":"NaN","coefficient":"Inf"}`, nil, nil, 0, ""},
		{"missing fields", `{"id":7}`, nil, nil, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g Grade
			require.NoError(t, json.Unmarshal([]byte(tt.input), &g))
			assert.NotZero(t, g.ID)
			assert.Equal(t, tt.wantValue, g.Value)
			assert.Equal(t, tt.wantCoef, g.Coefficient)
			assert.Equal(t, tt.quarter, g.Quarter)
			assert.Equal(t, tt.date, g.Date.String())
		})
	}
}

func TestGrade_UnmarshalListSurvivesOneBadRecord(t *testing.T) {
	var list []Grade
	err := json.Unmarshal([]byte(`[
		{"id":1,"studentId":9,"subjectId":3,"value":12,"coefficient":1},
		{"id":2,"studentId":9,"subjectId":3,"value":"quinze","coefficient":1,"date":"hier"}
	]`), &list)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(9), list[1].StudentID)
	assert.Nil(t, list[1].Value)
}

func ptr(v float64) *float64 { return &v }

func TestDate_MarshalZeroIsNull(t *testing.T) {
	data, err := json.Marshal(struct {
		D Date `json:"d"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":null}`, string(data))
}

func TestPayment_MonthKey(t *testing.T) {
	p := Payment{Month: "2025-10"}
	assert.Equal(t, "2025-10", p.MonthKey())

	p = Payment{Month: "October", PaymentDate: NewDate(time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC))}
	assert.Equal(t, "2025-11", p.MonthKey())

	assert.Equal(t, "", Payment{}.MonthKey())
}

func TestParseInvoiceStatus(t *testing.T) {
	status, ok := ParseInvoiceStatus(" pending ")
	assert.True(t, ok)
	assert.Equal(t, InvoicePending, status)

	_, ok = ParseInvoiceStatus("CANCELLED")
	assert.False(t, ok)
}

func TestDisplayHelpers(t *testing.T) {
	assert.Equal(t, 0.0, DisplayBalance(-1500))
	assert.Equal(t, 2500.0, DisplayBalance(2500))

	s := Student{ID: 42, FirstName: " Awa ", LastName: "Diallo"}
	assert.Equal(t, "Awa Diallo", s.FullName())
	assert.Equal(t, "42", s.DisplayID())
	s.Matricule = "MAT-0042"
	assert.Equal(t, "MAT-0042", s.DisplayID())

	inv := Invoice{ID: 7}
	assert.Equal(t, "7", inv.DisplayNumber())
}
