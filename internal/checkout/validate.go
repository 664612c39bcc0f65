package checkout

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/espr/internal/model"
)

// Form field names, in focus order.
const (
	FieldFullName    = "fullName"
	FieldEmail       = "email"
	FieldPhoneNumber = "phoneNumber"
	FieldAddress     = "address"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldError is an inline validation message for one form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ElementID is the id of the element that displays the message,
// e.g. "address-error".
func (e FieldError) ElementID() string {
	return e.Field + "-error"
}

// FieldErrors lists failures in form order. The first entry is the field to
// focus.
type FieldErrors []FieldError

// Lookup returns the message for field, if it failed.
func (fe FieldErrors) Lookup(field string) (string, bool) {
	for _, e := range fe {
		if e.Field == field {
			return e.Message, true
		}
	}
	return "", false
}

// Normalize trims every field and converts it to NFC.
func Normalize(info model.ShippingInfo) model.ShippingInfo {
	clean := func(s string) string {
		return strings.TrimSpace(norm.NFC.String(s))
	}
	return model.ShippingInfo{
		Name:    clean(info.Name),
		Email:   clean(info.Email),
		Phone:   clean(info.Phone),
		Address: clean(info.Address),
		Note:    clean(info.Note),
	}
}

// ValidateShipping checks a normalized form. It returns nil when every
// field passes.
func ValidateShipping(info model.ShippingInfo) FieldErrors {
	var errs FieldErrors
	add := func(field, msg string) {
		if msg != "" {
			errs = append(errs, FieldError{Field: field, Message: msg})
		}
	}
	add(FieldFullName, validateFullName(info.Name))
	add(FieldEmail, validateEmail(info.Email))
	add(FieldPhoneNumber, validatePhone(info.Phone))
	add(FieldAddress, validateAddress(info.Address))
	return errs
}

func validateFullName(v string) string {
	switch {
	case v == "":
		return "Full name is required"
	case utf8.RuneCountInString(v) < 2:
		return "Name must be at least 2 characters"
	}
	return ""
}

func validateEmail(v string) string {
	switch {
	case v == "":
		return "Email is required"
	case !emailPattern.MatchString(v):
		return "Please enter a valid email address"
	}
	return ""
}

func validatePhone(v string) string {
	if v == "" {
		return "Phone number is required"
	}
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return "Phone number must contain only digits"
		}
	}
	if len(v) < 7 || len(v) > 15 {
		return "Please enter a valid phone number"
	}
	return ""
}

func validateAddress(v string) string {
	switch {
	case v == "":
		return "Address is required"
	case utf8.RuneCountInString(v) < 5:
		return "Please enter a complete address"
	}
	return ""
}
