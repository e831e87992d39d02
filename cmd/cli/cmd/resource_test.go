package cmd

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-admin/internal/models"
)

var studentTestFields = []inputField{
	{key: "firstName"},
	{key: "lastName"},
	{key: "dateOfBirth"},
	{key: "gender", kind: upperField},
	{key: "classId", kind: integerField},
	{key: "familyId", kind: integerField},
}

func newFieldFlags(t *testing.T, fields []inputField, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	for _, f := range fields {
		if f.kind == itemsField {
			flags.StringArray(f.flag(), nil, "")
		} else {
			flags.String(f.flag(), "", "")
		}
	}
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestFlagName(t *testing.T) {
	tests := map[string]string{
		"name":         "name",
		"firstName":    "first-name",
		"classId":      "class-id",
		"dateOfBirth":  "date-of-birth",
		"academicYear": "academic-year",
	}
	for key, want := range tests {
		assert.Equal(t, want, flagName(key), "flagName(%q)", key)
	}
	assert.Equal(t, "item", inputField{key: "items", kind: itemsField}.flag())
}

func TestBuildInputCreate(t *testing.T) {
	flags := newFieldFlags(t, studentTestFields,
		"--first-name", " Awa ",
		"--last-name", "Diallo",
		"--date-of-birth", "2015-04-02",
		"--gender", "f",
		"--class-id", "3",
	)

	input, err := buildInput[models.StudentInput](nil, flags, studentTestFields)
	require.NoError(t, err)

	assert.Equal(t, models.StudentInput{
		FirstName:   "Awa",
		LastName:    "Diallo",
		DateOfBirth: "2015-04-02",
		Gender:      "F",
		ClassID:     3,
	}, *input)
}

func TestBuildInputUpdateKeepsUnsetFields(t *testing.T) {
	current := models.Student{
		ID:        9,
		FirstName: "Awa",
		LastName:  "Diallo",
		Gender:    "F",
		ClassID:   3,
		FamilyID:  5,
	}
	flags := newFieldFlags(t, studentTestFields, "--class-id", "4", "--family-id", "")

	input, err := buildInput[models.StudentInput](current, flags, studentTestFields)
	require.NoError(t, err)

	assert.Equal(t, "Awa", input.FirstName)
	assert.Equal(t, "Diallo", input.LastName)
	assert.Equal(t, "F", input.Gender)
	assert.Equal(t, int64(4), input.ClassID)
	assert.Zero(t, input.FamilyID, "an empty integer flag clears the field")
}

func TestBuildInputRejectsBadNumbers(t *testing.T) {
	flags := newFieldFlags(t, studentTestFields, "--class-id", "three")

	_, err := buildInput[models.StudentInput](nil, flags, studentTestFields)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--class-id")
}

func TestBuildInputInvoiceItems(t *testing.T) {
	fields := []inputField{
		{key: "studentId", kind: integerField},
		{key: "items", kind: itemsField},
		{key: "discount", kind: numberField},
	}
	flags := newFieldFlags(t, fields,
		"--student-id", "7",
		"--item", "Scolarité mars:1:25 000",
		"--item", "Cantine:2:7500,5",
		"--discount", "2 500",
	)

	input, err := buildInput[models.InvoiceInput](nil, flags, fields)
	require.NoError(t, err)

	assert.Equal(t, int64(7), input.StudentID)
	assert.Equal(t, 2500.0, input.Discount)
	require.Len(t, input.Items, 2)
	assert.Equal(t, models.InvoiceItem{Description: "Scolarité mars", Quantity: 1, UnitAmount: 25000}, input.Items[0])
	assert.Equal(t, 7500.5, input.Items[1].UnitAmount)
	assert.Equal(t, 15001.0, input.Items[1].Total())
}

func TestParseItemsErrors(t *testing.T) {
	for _, raw := range []string{"no separators", "Cantine:two:100", "Cantine:1:", "a:1:2:3"} {
		_, err := parseItems([]string{raw})
		assert.Error(t, err, "parseItems(%q)", raw)
	}
}

func TestParseNumber(t *testing.T) {
	tests := map[string]float64{
		"1500":      1500,
		"1 500":     1500,
		"1 500 000": 1500000,
		"12,75":     12.75,
		"12.75":     12.75,
		" 3 ":       3,
		"1\u202f000": 1000,
	}
	for raw, want := range tests {
		got, err := parseNumber(raw)
		require.NoError(t, err, "parseNumber(%q)", raw)
		assert.Equal(t, want, got, "parseNumber(%q)", raw)
	}

	_, err := parseNumber("abc")
	assert.Error(t, err)
}

func TestConfirmed(t *testing.T) {
	for _, yes := range []string{"y", "Y", "yes", "o", "Oui", " oui "} {
		assert.True(t, confirmed(yes), "confirmed(%q)", yes)
	}
	for _, no := range []string{"", "n", "non", "no", "maybe"} {
		assert.False(t, confirmed(no), "confirmed(%q)", no)
	}
}
