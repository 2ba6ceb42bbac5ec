package util

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const (
	MinPasswordLength = 6
	MaxPasswordBytes  = 72
	maxAmountPlaces   = 2
	maxAmountIntegers = 10
)

// FieldErrors collects validation messages per request field and is
// rendered as the 400 response body.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

func ValidateEmail(email string) bool {
	return emailRe.MatchString(email)
}

// NormalizeEmail trims the address and lowercases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// DefaultName is the local part of the address, used when no name is given.
func DefaultName(email string) string {
	if at := strings.LastIndex(email, "@"); at >= 0 {
		return email[:at]
	}
	return email
}

func ValidatePassword(password string) bool {
	return len(PasswordErrors(password)) == 0
}

// PasswordErrors lists what is wrong with a new password. bcrypt rejects
// input longer than MaxPasswordBytes.
func PasswordErrors(password string) []string {
	var msgs []string
	if len(password) < MinPasswordLength {
		msgs = append(msgs, "Ensure this field has at least 6 characters.")
	}
	if len(password) > MaxPasswordBytes {
		msgs = append(msgs, "Ensure this field has no more than 72 bytes.")
	}
	return msgs
}

// AmountErrors lists what is wrong with a transaction amount: it must be
// positive with at most 2 decimal places and 10 integer digits.
func AmountErrors(d decimal.Decimal) []string {
	var msgs []string
	if !d.IsPositive() {
		msgs = append(msgs, "Amount must be greater than 0.")
	}
	msgs = append(msgs, decimalFieldErrors(d)...)
	return msgs
}

// LimitErrors is AmountErrors for budget limits, which may be zero.
func LimitErrors(d decimal.Decimal) []string {
	var msgs []string
	if d.IsNegative() {
		msgs = append(msgs, "Ensure this value is greater than or equal to 0.")
	}
	msgs = append(msgs, decimalFieldErrors(d)...)
	return msgs
}

func decimalFieldErrors(d decimal.Decimal) []string {
	var msgs []string
	if !d.Equal(d.Truncate(maxAmountPlaces)) {
		msgs = append(msgs, "Ensure that there are no more than 2 decimal places.")
	}
	if len(d.Abs().Truncate(0).String()) > maxAmountIntegers {
		msgs = append(msgs, "Ensure that there are no more than 10 digits before the decimal point.")
	}
	return msgs
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate accepts RFC 3339 timestamps, naive timestamps (read as UTC) and
// plain dates.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
