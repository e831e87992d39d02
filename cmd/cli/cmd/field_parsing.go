package cmd

import (
	"fmt"
	"sort"
	"strings"
)

// fieldSet describes the columns a browse screen can show
type fieldSet struct {
	// defaults are shown when --fields is empty
	defaults []string
	// display maps field names to column titles
	display map[string]string
}

var invoiceFieldSet = fieldSet{
	defaults: []string{"number", "student", "due", "net", "balance", "status"},
	display: map[string]string{
		"id":      "ID",
		"number":  "NUMBER",
		"student": "STUDENT",
		"issued":  "ISSUED",
		"due":     "DUE",
		"total":   "TOTAL",
		"net":     "NET",
		"paid":    "PAID",
		"balance": "BALANCE",
		"status":  "STATUS",
	},
}

var studentFieldSet = fieldSet{
	defaults: []string{"id", "matricule", "name", "class", "gender"},
	display: map[string]string{
		"id":        "ID",
		"matricule": "MATRICULE",
		"name":      "NAME",
		"class":     "CLASS",
		"gender":    "GENDER",
		"born":      "BORN",
		"family":    "FAMILY",
	},
}

// parseFields parses the fields flag and returns a slice of field names
func (s fieldSet) parseFields(fieldsFlag string) []string {
	if strings.TrimSpace(fieldsFlag) == "" {
		return s.defaults
	}

	fields := strings.Split(fieldsFlag, ",")
	result := make([]string, 0, len(fields))

	for _, field := range fields {
		trimmed := strings.ToLower(strings.TrimSpace(field))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// validateFields validates that all provided fields are valid
func (s fieldSet) validateFields(fields []string) error {
	var invalid []string

	for _, field := range fields {
		if _, exists := s.display[field]; !exists {
			invalid = append(invalid, field)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid field(s): %s. Available fields: %s",
			strings.Join(invalid, ", "),
			strings.Join(s.availableFieldNames(), ", "))
	}

	return nil
}

// displayName returns the column title for a field
func (s fieldSet) displayName(field string) string {
	if displayName, exists := s.display[field]; exists {
		return displayName
	}
	return field
}

// availableFieldNames returns every field name, sorted
func (s fieldSet) availableFieldNames() []string {
	names := make([]string, 0, len(s.display))
	for name := range s.display {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
