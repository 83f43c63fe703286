package validation

import (
	"fmt"
	"regexp"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-census/pkg/age"
	"github.com/goliatone/go-census/pkg/model"
)

// Check is the input of a format validator.
type Check struct {
	Field  model.Field
	Value  model.Value
	Today  time.Time
	MaxAge int
}

// FormatFunc returns a user-facing message when the value has the wrong
// shape, or "" when it is acceptable. It only sees non-empty values.
type FormatFunc func(Check) string

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var patternCache sync.Map

func defaultFormats() map[model.Kind]FormatFunc {
	return map[model.Kind]FormatFunc{
		model.KindEmail:  Email,
		model.KindPhone:  Phone,
		model.KindPostal: Postal,
		model.KindDate:   Date,
		model.KindNumber: Number,
	}
}

// Email requires a local@domain.tld shape.
func Email(c Check) string {
	if !emailPattern.MatchString(c.Value.Text) {
		return "Enter a valid email address."
	}
	return ""
}

// Phone requires exactly ten digits once separators are stripped.
func Phone(c Check) string {
	if len(model.Digits(c.Value.Text)) != 10 {
		return "Enter a 10-digit mobile number."
	}
	return ""
}

// Postal requires exactly six digits once separators are stripped.
func Postal(c Check) string {
	if len(model.Digits(c.Value.Text)) != 6 {
		return "Enter a 6-digit PIN code."
	}
	return ""
}

// Date requires an ISO date that is not in the future and, when MaxAge is
// set, not older than MaxAge years.
func Date(c Check) string {
	if _, err := age.Parse(c.Value.Text); err != nil {
		return "Enter a date as YYYY-MM-DD."
	}
	if age.InFuture(c.Value.Text, c.Today) {
		return "Date cannot be in the future."
	}
	if c.MaxAge > 0 && age.OrZero(c.Value.Text, c.Today) > c.MaxAge {
		return fmt.Sprintf("Age cannot exceed %d years.", c.MaxAge)
	}
	return ""
}

// Number requires digits only.
func Number(c Check) string {
	if model.Digits(c.Value.Text) != c.Value.Text {
		return "Enter a whole number."
	}
	return ""
}

func (v *Validator) format(field model.Field, value model.Value) string {
	if field.MaxLength > 0 && !value.Multi && utf8.RuneCountInString(value.Text) > field.MaxLength {
		return fmt.Sprintf("Use at most %d characters.", field.MaxLength)
	}
	if len(field.Options) > 0 {
		if msg := options(field, value); msg != "" {
			return msg
		}
	}
	if field.Pattern != "" && !value.Multi {
		re, err := compilePattern(field.Pattern)
		if err == nil && !re.MatchString(value.Text) {
			return "Value has an unexpected format."
		}
	}
	fn, ok := v.formats[field.Kind]
	if !ok {
		return ""
	}
	return fn(Check{Field: field, Value: value, Today: v.now(), MaxAge: v.maxAge})
}

func options(field model.Field, value model.Value) string {
	allowed := make(map[string]struct{}, len(field.Options))
	for _, option := range field.Options {
		allowed[option] = struct{}{}
	}
	items := value.Items
	if !value.Multi {
		items = []string{value.Text}
	}
	for _, item := range items {
		if _, ok := allowed[item]; !ok {
			return fmt.Sprintf("%q is not one of the listed options.", item)
		}
	}
	return ""
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if cached, ok := patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, err
	}
	patternCache.Store(pattern, re)
	return re, nil
}
