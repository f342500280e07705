package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/cleared-dev/ledgerbook/internal/fiscal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		return name
	})
	mustRegister(v, "monthday", func(fl validator.FieldLevel) bool {
		_, err := fiscal.ParseStart(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "locale", func(fl validator.FieldLevel) bool {
		_, err := language.Parse(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "amount", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registering %s validation: %v", tag, err))
	}
}

// Validate checks every field and reports all failures at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating config: %w", err)
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, fmt.Errorf("%s: %s", fieldPath(fe), describe(fe)))
	}
	return fmt.Errorf("invalid config: %w", errors.Join(errs...))
}

// fieldPath drops the root struct name: "Config.workspace.locale" -> "workspace.locale".
func fieldPath(fe validator.FieldError) string {
	_, path, _ := strings.Cut(fe.Namespace(), ".")
	return path
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "monthday":
		return fmt.Sprintf("%q is not a valid MM-DD date", fe.Value())
	case "locale":
		return fmt.Sprintf("%q is not a valid BCP 47 language tag", fe.Value())
	case "amount":
		return fmt.Sprintf("%q is not a non-negative decimal", fe.Value())
	case "len":
		return fmt.Sprintf("must be %s characters", fe.Param())
	case "email":
		return fmt.Sprintf("%q is not an email address", fe.Value())
	case "required_if":
		return "is required when auto_commit is on"
	case "uppercase":
		return "must be upper case"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}
