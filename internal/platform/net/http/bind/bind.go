// Package bind decodes JSON request bodies and validates them with struct tags
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "smartpaste/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// MaxBytes caps a request body, a paste may be several hundred KiB of multibyte text
const MaxBytes = 2 << 20

type validation struct {
	v     *validator.Validate
	trans ut.Translator
}

var shared = sync.OnceValue(func() validation {
	loc := en.New()
	trans, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = en_translations.RegisterDefaultTranslations(v, trans)
	short(v, trans, "min", "{0} must be at least {1}")
	short(v, trans, "max", "{0} must be at most {1}")
	return validation{v: v, trans: trans}
})

// short replaces the stock min/max wording, which reads badly for strings
func short(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// ParseJSON decodes one JSON document into T and validates it
// decode problems are JSON errors, tag failures are validation errors naming the field
func ParseJSON[T any](r *http.Request) (T, error) {
	var dst T
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dst); err != nil {
		if errors.Is(err, io.EOF) {
			return dst, perr.JSONErrf("empty body")
		}
		return dst, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return dst, perr.JSONErrf("unexpected trailing data")
	}
	if err := Validate(dst); err != nil {
		return dst, err
	}
	return dst, nil
}

// Validate runs struct tag validation and translates the first failure
func Validate(v any) error {
	s := shared()
	err := s.v.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return perr.WithField(perr.New(perr.ErrorCodeValidation, fe.Translate(s.trans)), fe.Field())
	}
	return perr.Wrap(err, perr.ErrorCodeValidation, "validation error")
}
