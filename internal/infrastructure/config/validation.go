package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// agentNamePattern keeps agent names usable in lock file names and URLs
var agentNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

// Validator is a wrapper around go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the excavator's custom rules:
//
//	agentname  letters, digits, '-' and '_', at most 32 characters
func NewValidator() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("agentname", func(fl validator.FieldLevel) bool {
		return agentNamePattern.MatchString(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Validate validates a struct using validation tags
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return v.formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into readable messages
// naming the config key path, e.g. "excavation.Throughput"
func (v *Validator) formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		rule := e.Tag()
		if e.Param() != "" {
			rule += "=" + e.Param()
		}
		messages = append(messages, fmt.Sprintf("%s failed %s (value: '%v')", fieldPath(e.Namespace()), rule, e.Value()))
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
}

// fieldPath drops the root struct name and lowercases section names
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	if len(parts) > 1 {
		parts[0] = strings.ToLower(parts[0])
	}
	return strings.Join(parts, ".")
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
