package middleware

import (
	"reflect"
	"strings"

	"github.com/fincore/backend/internal/domain/shared"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// SetupValidator reports validation errors by JSON field name and teaches
// the validator about decimal amounts and ISO dates
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("positive_amount", positiveAmount)
	_ = v.RegisterValidation("isodate", isoDate)
}

func positiveAmount(fl validator.FieldLevel) bool {
	switch d := fl.Field().Interface().(type) {
	case decimal.Decimal:
		return d.IsPositive()
	case *decimal.Decimal:
		return d != nil && d.IsPositive()
	}
	return false
}

func isoDate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := shared.ParseDate(s)
	return err == nil
}

var fixedMessages = map[string]string{
	"required":        "This field is required",
	"url":             "Invalid URL format",
	"http_url":        "Invalid URL format",
	"uuid":            "Invalid UUID format",
	"email":           "Invalid email address",
	"positive_amount": "Must be a positive amount",
	"isodate":         "Must be a date in YYYY-MM-DD format",
}

var boundMessages = map[string]string{
	"oneof": "Must be one of: ",
	"gte":   "Must be greater than or equal to ",
	"lte":   "Must be less than or equal to ",
	"gt":    "Must be greater than ",
	"lt":    "Must be less than ",
}

// ValidationMessage turns a validator failure into the message shown next
// to the field
func ValidationMessage(e validator.FieldError) string {
	if msg, ok := fixedMessages[e.Tag()]; ok {
		return msg
	}
	if prefix, ok := boundMessages[e.Tag()]; ok {
		return prefix + e.Param()
	}
	switch e.Tag() {
	case "min", "max":
		bound := "at least "
		if e.Tag() == "max" {
			bound = "at most "
		}
		if e.Kind() == reflect.String {
			return "Must be " + bound + e.Param() + " characters"
		}
		return "Must be " + bound + e.Param()
	}
	return "Invalid value"
}
