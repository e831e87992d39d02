package cmd

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseFields(t *testing.T) {
	tests := []struct {
		name     string
		set      fieldSet
		input    string
		expected []string
	}{
		{
			name:     "empty string returns default invoice fields",
			set:      invoiceFieldSet,
			input:    "",
			expected: []string{"number", "student", "due", "net", "balance", "status"},
		},
		{
			name:     "empty string returns default student fields",
			set:      studentFieldSet,
			input:    "  ",
			expected: []string{"id", "matricule", "name", "class", "gender"},
		},
		{
			name:     "single field",
			set:      invoiceFieldSet,
			input:    "id",
			expected: []string{"id"},
		},
		{
			name:     "fields with whitespace and case",
			set:      invoiceFieldSet,
			input:    "ID, Number , status",
			expected: []string{"id", "number", "status"},
		},
		{
			name:     "duplicate fields are preserved",
			set:      studentFieldSet,
			input:    "id,name,id",
			expected: []string{"id", "name", "id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.set.parseFields(tt.input)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("parseFields(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidateFields(t *testing.T) {
	tests := []struct {
		name    string
		set     fieldSet
		fields  []string
		wantErr bool
	}{
		{
			name:   "valid invoice fields",
			set:    invoiceFieldSet,
			fields: []string{"id", "number", "balance"},
		},
		{
			name:   "default fields are valid",
			set:    studentFieldSet,
			fields: studentFieldSet.defaults,
		},
		{
			name:   "empty fields list",
			set:    invoiceFieldSet,
			fields: []string{},
		},
		{
			name:    "student field on invoices",
			set:     invoiceFieldSet,
			fields:  []string{"number", "matricule"},
			wantErr: true,
		},
		{
			name:    "multiple invalid fields",
			set:     studentFieldSet,
			fields:  []string{"invalid1", "invalid2"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set.validateFields(tt.fields)
			if tt.wantErr && err == nil {
				t.Errorf("validateFields(%v) should return an error", tt.fields)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validateFields(%v) returned unexpected error: %v", tt.fields, err)
			}
		})
	}
}

func TestValidateFieldsListsAvailableFields(t *testing.T) {
	err := studentFieldSet.validateFields([]string{"nickname"})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "nickname") || !strings.Contains(err.Error(), "born, class, family, gender, id, matricule, name") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestFieldDisplayName(t *testing.T) {
	tests := []struct {
		field    string
		expected string
	}{
		{"number", "NUMBER"},
		{"balance", "BALANCE"},
		{"status", "STATUS"},
		{"unknown", "unknown"},
	}

	for _, tt := range tests {
		if result := invoiceFieldSet.displayName(tt.field); result != tt.expected {
			t.Errorf("displayName(%q) = %q, expected %q", tt.field, result, tt.expected)
		}
	}
}
