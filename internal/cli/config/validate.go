package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// newValidator reports fields by their config key rather than the Go name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field constraints, the drop pattern and the refresh schedule.
func (c *Config) Validate() error {
	var problems []string

	if err := newValidator().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		for _, fe := range fieldErrs {
			problems = append(problems, describeFieldError(fe))
		}
	}

	if c.Data.DropColumns != "" {
		if _, err := regexp.Compile(c.Data.DropColumns); err != nil {
			problems = append(problems, fmt.Sprintf("data.drop_columns: %v", err))
		}
	}
	if c.Data.RefreshSchedule != "" {
		if _, err := cron.Parse(c.Data.RefreshSchedule); err != nil {
			problems = append(problems, fmt.Sprintf("data.refresh_schedule: %v", err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// describeFieldError turns "Config.ui.port" + "lte" into "ui.port must be lte 65535".
func describeFieldError(fe validator.FieldError) string {
	key := fe.Namespace()
	if _, rest, ok := strings.Cut(key, "."); ok {
		key = rest
	}
	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fmt.Sprint(fe.Value()))
	case "len":
		return fmt.Sprintf("%s must be exactly %s character", key, fe.Param())
	default:
		return fmt.Sprintf("%s must be %s %s, got %v", key, fe.Tag(), fe.Param(), fe.Value())
	}
}
