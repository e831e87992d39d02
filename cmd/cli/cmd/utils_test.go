package cmd

import (
	"testing"
	"time"

	"school-admin/internal/grades"
)

func TestValidateAndParseID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "valid ID", input: "42", want: 42},
		{name: "surrounding spaces", input: " 7 ", want: 7},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "negative", input: "-3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validateAndParseID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("validateAndParseID(%q) should fail, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("validateAndParseID(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("validateAndParseID(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	now := time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "", want: "2025-03"},
		{input: "2024-11", want: "2024-11"},
		{input: " 2024-01 ", want: "2024-01"},
		{input: "2024-13", wantErr: true},
		{input: "11/2024", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseMonth(tt.input, now)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseMonth(%q) should fail, got %q", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseMonth(%q) returned error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseMonth(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseQuarter(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{input: "", want: grades.AllQuarters},
		{input: "year", want: grades.AllQuarters},
		{input: "Année", want: grades.AllQuarters},
		{input: "1", want: 1},
		{input: "T3", want: 3},
		{input: "t4", want: 4},
		{input: "5", wantErr: true},
		{input: "T0", wantErr: true},
		{input: "first", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseQuarter(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseQuarter(%q) should fail, got %d", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseQuarter(%q) returned error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseQuarter(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
