// Package bind decodes request bodies and validates them with english messages keyed by json names
package bind

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	perr "merchantfeed/internal/platform/errors"
)

// Validator checks struct tags and turns the first failure into a validation error
type Validator struct {
	v     *validator.Validate
	trans ut.Translator
}

var (
	defaultOnce sync.Once
	defaultV    *Validator
)

// Default returns the shared validator
func Default() *Validator {
	defaultOnce.Do(func() { defaultV = New() })
	return defaultV
}

// shortMessages override the stock english text for tags whose params read better inline
var shortMessages = map[string]string{
	"min":                  "{0} must be at least {1}",
	"max":                  "{0} must be at most {1}",
	"non_negative_decimal": "{0} must be a non negative decimal",
}

// New builds a validator with the feed tags registered
func New() *Validator {
	loc := en.New()
	trans, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = en_translations.RegisterDefaultTranslations(v, trans)
	_ = v.RegisterValidation("non_negative_decimal", nonNegativeDecimal)

	for tag, text := range shortMessages {
		_ = v.RegisterTranslation(tag, trans,
			func(t ut.Translator) error { return t.Add(tag, text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				msg, _ := t.T(fe.Tag(), fe.Field(), fe.Param())
				return msg
			},
		)
	}
	return &Validator{v: v, trans: trans}
}

// Register adds or replaces a custom tag
func (v *Validator) Register(tag string, fn validator.Func) error {
	return v.v.RegisterValidation(tag, fn)
}

// Struct validates s; nil when every tag holds
// a failing field comes back as ErrorCodeValidation naming that field
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return perr.WithField(perr.New(perr.ErrorCodeValidation, fe.Translate(v.trans)), fe.Field())
	}
	return perr.Wrap(err, perr.ErrorCodeJSON, "validation error")
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

// nonNegativeDecimal accepts plain decimals like 0, 12 or 12.50
func nonNegativeDecimal(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || strings.ContainsAny(s, "eE+-") {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && f >= 0
}
