package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/kapu/liqu-discord-bot/pkg/errors"
)

// Validate checks required credentials and enumerations. Problems are
// reported by environment variable name.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewConfigError([]string{"config is nil"})
	}

	validate, trans, err := newValidator()
	if err != nil {
		return err
	}

	err = validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !asValidationErrors(err, &validationErrs) {
		return errors.NewConfigError([]string{err.Error()})
	}

	problems := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		problems = append(problems, fe.Translate(trans))
	}
	return errors.NewConfigError(problems)
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("env"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterStructValidation(validateBackend, Config{})

	return validate, trans, nil
}

// validateBackend requires the OpenAI key only when the openai backend is selected.
func validateBackend(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	if cfg.AI.Backend == BackendOpenAI && cfg.OpenAI.APIKey == "" {
		sl.ReportError(cfg.OpenAI.APIKey, "OPENAI_API_KEY", "APIKey", "required", "")
	}
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	errs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = errs
	}
	return ok
}
