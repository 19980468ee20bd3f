package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ishanwen-byte/genevo-go/pkg/representation"
)

var (
	// ErrInvalidConfig marks configuration errors detected at construction time.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidArgument marks runtime argument errors, such as selecting
	// from an empty population.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSizeMismatch marks representations that must line up but do not.
	ErrSizeMismatch = representation.ErrSizeMismatch

	// ErrInvariantViolation marks internal invariant failures. A run that
	// hits one is aborted.
	ErrInvariantViolation = errors.New("invariant violation")
)

// ConfigError reports every violated configuration rule of a component.
type ConfigError struct {
	Component  string
	Violations []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s configuration: %s", e.Component, strings.Join(e.Violations, "; "))
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Invariant returns an error wrapping ErrInvariantViolation.
func Invariant(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}

// structValidate is the validator shared by every component. Field names are
// reported by their yaml tag when one exists.
var structValidate *validator.Validate

func init() {
	structValidate = validator.New()
	structValidate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
}

// Rules collects violated configuration rules so they can be reported at once.
type Rules struct {
	violations []string
}

// Check records the rule when ok is false.
func (r *Rules) Check(ok bool, format string, args ...any) {
	if !ok {
		r.violations = append(r.violations, fmt.Sprintf(format, args...))
	}
}

// Struct records every validate-tag violation of v.
func (r *Rules) Struct(v any) {
	err := structValidate.Struct(v)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		r.violations = append(r.violations, err.Error())
		return
	}
	for _, fe := range fieldErrs {
		r.violations = append(r.violations, describe(fe))
	}
}

// Merge absorbs the violations of a nested ConfigError, prefixed with its
// component. Other errors are recorded verbatim.
func (r *Rules) Merge(err error) {
	if err == nil {
		return
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		for _, v := range cfgErr.Violations {
			r.violations = append(r.violations, cfgErr.Component+": "+v)
		}
		return
	}
	r.violations = append(r.violations, err.Error())
}

// Violations returns the recorded rules.
func (r *Rules) Violations() []string {
	return append([]string(nil), r.violations...)
}

// Err returns a ConfigError for component, or nil when no rule was violated.
func (r *Rules) Err(component string) error {
	if len(r.violations) == 0 {
		return nil
	}
	return &ConfigError{Component: component, Violations: r.Violations()}
}

// trimRoot drops the struct name from a validator namespace. Generic type
// names may carry dotted package paths inside their brackets.
func trimRoot(namespace string) string {
	depth := 0
	for i, c := range namespace {
		switch c {
		case '[':
			depth++
		case ']':
			depth--
		case '.':
			if depth == 0 {
				return namespace[i+1:]
			}
		}
	}
	return namespace
}

// describe renders a validator field error as a rule.
func describe(fe validator.FieldError) string {
	field := trimRoot(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s (got %v)", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s (got %v)", field, fe.Param(), fe.Value())
	case "lt":
		return fmt.Sprintf("%s must be less than %s (got %v)", field, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be at most %s (got %v)", field, fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got %v)", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
	}
}
