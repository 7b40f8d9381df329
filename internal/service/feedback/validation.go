package feedback

import (
	"errors"
	"fmt"
	"sort"

	"feedbackwidget/internal/domain"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// toValidationError converts ozzo field errors into a *domain.ValidationError
// whose Fields mirror the request shape (list entries nest by index).
// The message is the first field error, with a count of the rest.
func toValidationError(err error) error {
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	fields := flattenErrors(fieldErrs)
	messages := collectMessages(fieldErrs)

	msg := domain.ErrValidation.Error()
	if len(messages) > 0 {
		msg = messages[0]
		if extra := len(messages) - 1; extra == 1 {
			msg += " (and 1 more error)"
		} else if extra > 1 {
			msg += fmt.Sprintf(" (and %d more errors)", extra)
		}
	}

	return &domain.ValidationError{Message: msg, Fields: fields}
}

func flattenErrors(errs validation.Errors) map[string]interface{} {
	out := make(map[string]interface{}, len(errs))
	for field, err := range errs {
		var nested validation.Errors
		if errors.As(err, &nested) {
			out[field] = flattenErrors(nested)
			continue
		}
		out[field] = err.Error()
	}
	return out
}

// collectMessages returns leaf messages in key order.
func collectMessages(errs validation.Errors) []string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var messages []string
	for _, k := range keys {
		var nested validation.Errors
		if errors.As(errs[k], &nested) {
			messages = append(messages, collectMessages(nested)...)
			continue
		}
		messages = append(messages, errs[k].Error())
	}
	return messages
}
