package service

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// RequiredMessage is shown for empty mandatory fields.
const RequiredMessage = "Este campo es obligatorio."

// ValidationErrors maps a form field to a user-facing message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records message for field unless the field already has one.
func (v ValidationErrors) Add(field, message string) {
	if _, exists := v[field]; exists {
		return
	}
	v[field] = message
}

// Merge copies every field of other that v does not have yet.
func (v ValidationErrors) Merge(other ValidationErrors) {
	for field, message := range other {
		v.Add(field, message)
	}
}

// Err returns v as an error, or nil when empty.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// AsValidationErrors extracts ValidationErrors from err.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}

func requireText(errs ValidationErrors, field, value string, max int) {
	if strings.TrimSpace(value) == "" {
		errs.Add(field, RequiredMessage)
		return
	}
	checkLength(errs, field, value, max)
}

func checkLength(errs ValidationErrors, field, value string, max int) {
	if max > 0 && utf8.RuneCountInString(value) > max {
		errs.Add(field, MaxLengthMessage(max))
	}
}

// MaxLengthMessage is shown when a field exceeds max characters.
func MaxLengthMessage(max int) string {
	return "Asegúrese de que este valor tenga como máximo " + strconv.Itoa(max) + " caracteres."
}
