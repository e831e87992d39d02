package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-admin/internal/i18n"
	"school-admin/internal/models"
)

func newValidator(t *testing.T, lang string) *Validator {
	t.Helper()
	v, err := New(i18n.MustNew(lang))
	require.NoError(t, err)
	return v
}

func TestStruct_Valid(t *testing.T) {
	v := newValidator(t, "fr")

	err := v.Struct(models.ParentInput{
		FirstName:    "Aïssatou",
		LastName:     "N'Diaye-Ba",
		Relationship: "MOTHER",
		Phone:        "+221 77 123 45 67",
	})
	assert.NoError(t, err)

	err = v.Struct(models.ClassInput{Name: "CM2 A", LevelID: 1, ClassFee: 15000, AcademicYear: "2024-2025"})
	assert.NoError(t, err)
}

func TestStruct_CustomTags(t *testing.T) {
	v := newValidator(t, "en")

	err := v.Struct(models.ParentInput{
		FirstName:    "J0hn",
		LastName:     "Doe",
		Relationship: "MOTHER",
		Phone:        "12ab",
	})
	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, []string{"firstName", "phone"}, verrs.Fields())
	assert.Equal(t, "firstName may only contain letters, spaces, apostrophes or hyphens", verrs["firstName"])
	assert.Equal(t, "phone must be a valid phone number", verrs["phone"])
}

func TestStruct_AcademicYear(t *testing.T) {
	v := newValidator(t, "fr")

	for _, year := range []string{"2024-2026", "2024/2025", "24-25", ""} {
		err := v.Struct(models.ClassInput{Name: "CM2", LevelID: 1, AcademicYear: year})
		var verrs Errors
		require.True(t, errors.As(err, &verrs), year)
		assert.Contains(t, verrs, "academicYear", year)
	}

	err := v.Struct(models.ClassInput{Name: "CM2", LevelID: 1, AcademicYear: "2024-2026"})
	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "academicYear doit être une année scolaire au format AAAA-AAAA", verrs["academicYear"])
}

func TestStruct_GradeRange(t *testing.T) {
	v := newValidator(t, "en")

	err := v.Struct(models.GradeInput{StudentID: 1, SubjectID: 2, Value: 21, Coefficient: 0, Quarter: 5, Date: "2025-01-10"})
	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "value")
	assert.Contains(t, verrs, "coefficient")
	assert.Contains(t, verrs, "quarter")
	assert.NotContains(t, verrs, "date")
}

func TestStruct_ReferenceRequiredUnlessCash(t *testing.T) {
	v := newValidator(t, "en")
	base := models.PaymentInput{StudentID: 1, Amount: 15000, Month: "2025-02", PaymentDate: "2025-02-03"}

	cash := base
	cash.Method = "CASH"
	assert.NoError(t, v.Struct(cash))

	mobile := base
	mobile.Method = "MOBILE_MONEY"
	err := v.Struct(mobile)
	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "reference")

	mobile.Reference = "OM-1234"
	assert.NoError(t, v.Struct(mobile))
}

func TestStruct_NestedItems(t *testing.T) {
	v := newValidator(t, "en")

	err := v.Struct(models.InvoiceInput{
		StudentID: 1,
		IssueDate: "2025-01-01",
		DueDate:   "2025-01-31",
		Items:     []models.InvoiceItem{{Description: "Scolarité", Quantity: 1, UnitAmount: 15000}, {Quantity: 0}},
	})
	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "items[1].description")
	assert.Contains(t, verrs, "items[1].quantity")
}

func TestErrors_Error(t *testing.T) {
	err := Errors{"b": "second", "a": "first"}
	assert.Equal(t, "first; second", err.Error())
}

func TestStruct_SeveralValidatorsShareNothing(t *testing.T) {
	catalog := i18n.MustNew("fr")
	_, err := New(catalog)
	require.NoError(t, err)
	_, err = New(catalog)
	require.NoError(t, err)
}
