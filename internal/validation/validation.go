// Package validation checks form input before anything is sent to the
// backend and reports field errors in the user's language.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"

	"school-admin/internal/i18n"
)

var (
	// custom validation tags
	personNameTag   = "personname"
	phoneTag        = "phone"
	academicYearTag = "academicyear"

	personNameRegex   = regexp.MustCompile(`^\p{L}[\p{L}\s'.-]*$`)
	phoneRegex        = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
	academicYearRegex = regexp.MustCompile(`^(\d{4})-(\d{4})$`)
	phoneSeparators   = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")
)

// Errors maps a form field (its JSON name) to a localized message
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, e[f])
	}
	return strings.Join(parts, "; ")
}

// Fields returns the failing field names in order
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Validator validates form structs
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New instantiates a validator whose messages follow catalog's language
func New(catalog *i18n.Catalog) (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// a private translator so that building several validators never
	// registers the same message twice
	french := fr.New()
	uni := ut.New(french, french, en.New())
	translator, _ := uni.GetTranslator(catalog.Lang())

	var err error
	switch catalog.Lang() {
	case "en":
		err = en_translations.RegisterDefaultTranslations(validate, translator)
	default:
		err = fr_translations.RegisterDefaultTranslations(validate, translator)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register %s translations: %w", catalog.Lang(), err)
	}

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	custom := map[string]struct {
		fn  validator.Func
		msg string
	}{
		personNameTag:   {personNameValidation, i18n.MsgInvalidPersonName},
		phoneTag:        {phoneValidation, i18n.MsgInvalidPhone},
		academicYearTag: {academicYearValidation, i18n.MsgInvalidAcademicYear},
	}
	for tag, c := range custom {
		if err := validate.RegisterValidation(tag, c.fn); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", tag, err)
		}
		registerCustomTranslation(validate, translator, tag, catalog.T(c.msg))
	}

	return &Validator{validate: validate, translator: translator}, nil
}

// registerCustomTranslation registers the message for a custom tag
func registerCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates s and returns Errors when a field is invalid
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if ns := fe.Namespace(); strings.Count(ns, ".") > 1 {
			// nested fields such as items[0].description keep their path
			field = ns[strings.Index(ns, ".")+1:]
		}
		if _, seen := out[field]; !seen {
			out[field] = fe.Translate(v.translator)
		}
	}
	return out
}

// Custom Validators

func personNameValidation(fl validator.FieldLevel) bool {
	return personNameRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}

func phoneValidation(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(phoneSeparators.Replace(strings.TrimSpace(fl.Field().String())))
}

// academicYearValidation accepts "2024-2025": two consecutive years
func academicYearValidation(fl validator.FieldLevel) bool {
	m := academicYearRegex.FindStringSubmatch(strings.TrimSpace(fl.Field().String()))
	if m == nil {
		return false
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return end == start+1
}
