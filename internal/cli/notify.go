package cli

import (
	"errors"

	"school-admin/internal/api"
	"school-admin/internal/i18n"
	"school-admin/internal/validation"
)

// Describe turns err into the message shown to the user
func Describe(err error, catalog *i18n.Catalog) string {
	if err == nil {
		return ""
	}

	var verrs validation.Errors
	var apiErr *api.APIError
	switch {
	case errors.As(err, &verrs):
		return catalog.T(i18n.MsgValidationFailed) + ": " + verrs.Error()
	case errors.Is(err, api.ErrSessionExpired):
		return catalog.T(i18n.MsgSessionExpired)
	case errors.Is(err, api.ErrNotAuthenticated):
		return catalog.T(i18n.MsgLoginRequired)
	case errors.As(err, &apiErr):
		return apiErr.Message
	default:
		return err.Error()
	}
}

// Notifier reports mutation outcomes through an OutputFormatter
type Notifier struct {
	formatter *OutputFormatter
}

// NewNotifier creates a notifier printing through formatter
func NewNotifier(formatter *OutputFormatter) *Notifier {
	return &Notifier{formatter: formatter}
}

// Success prints a success notification
func (n *Notifier) Success(message string) {
	n.formatter.PrintSuccess(message)
}

// Failure prints the error; validation errors get one line per field
func (n *Notifier) Failure(err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		n.formatter.PrintValidationErrors(verrs)
		return
	}
	n.formatter.PrintError(err)
}
