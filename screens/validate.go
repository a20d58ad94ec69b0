package screens

import (
	"sort"
	"strings"
)

// FieldErrors maps form field names to their validation messages.
type FieldErrors map[string]string

// ValidationError reports local required-field failures. A submission that
// fails validation never reaches the network.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, name+": "+e.Fields[name])
	}
	return strings.Join(msgs, "; ")
}

func requireField(errs FieldErrors, field, value, message string) {
	if strings.TrimSpace(value) == "" {
		errs[field] = message
	}
}
