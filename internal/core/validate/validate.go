package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"resident-portal/internal/core/apperr"
)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		// report JSON names so details match what the client sent
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(f reflect.Value) any {
			if d, ok := f.Interface().(decimal.Decimal); ok {
				return d.InexactFloat64()
			}
			return nil
		}, decimal.Decimal{})
		_ = v.RegisterValidation("money", money)
	})
	return v
}

// money accepts amounts with at most two decimal places.
func money(fl validator.FieldLevel) bool {
	var d decimal.Decimal
	// the custom type func above has already turned the field into a float64
	if p := fl.Parent(); p.Kind() == reflect.Struct {
		if f := p.FieldByName(fl.StructFieldName()); f.IsValid() && f.CanInterface() {
			if raw, ok := f.Interface().(decimal.Decimal); ok {
				return raw.Equal(raw.Round(2))
			}
		}
	}
	switch f := fl.Field(); f.Kind() {
	case reflect.Float32, reflect.Float64:
		d = decimal.NewFromFloat(f.Float())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	case reflect.String:
		var err error
		if d, err = decimal.NewFromString(f.String()); err != nil {
			return false
		}
	default:
		return false
	}
	return d.Equal(d.Round(2))
}

// Struct validates s and returns an *apperr.Error listing every violated field.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return apperr.BadRequest(err.Error())
	}
	details := make([]apperr.FieldError, 0, len(ves))
	for _, fe := range ves {
		details = append(details, apperr.FieldError{Path: path(fe), Message: message(fe)})
	}
	return apperr.Validation(details)
}

// Var validates a single value against tag.
func Var(field string, value any, tag string) error {
	err := instance().Var(value, tag)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		return apperr.Validation([]apperr.FieldError{{Path: field, Message: message(ves[0])}})
	}
	return apperr.BadRequest(err.Error())
}

// path drops the top-level struct name: "SignupInput.email" → "email".
func path(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		if isNumeric(fe.Kind()) {
			return field + " must be at least " + fe.Param()
		}
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		if isNumeric(fe.Kind()) {
			return field + " must be at most " + fe.Param()
		}
		return field + " must be at most " + fe.Param() + " characters"
	case "gte":
		return field + " must be greater than or equal to " + fe.Param()
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "lte":
		return field + " must be less than or equal to " + fe.Param()
	case "oneof":
		return field + " must be one of [" + fe.Param() + "]"
	case "money":
		return field + " must have at most 2 decimal places"
	case "url":
		return field + " must be a valid URL"
	case "uuid", "uuid4":
		return field + " must be a valid UUID"
	default:
		return field + " is invalid"
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
