package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// ValidationError pinpoints a malformed record of the model input
type ValidationError struct {
	Record string `json:"record"` // teacher, room, section or policy
	Index  int    `json:"index"`
	Id     string `json:"id,omitempty"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (err ValidationError) Error() string {
	if err.Id == "" {
		return fmt.Sprintf("%s #%d: %s %s", err.Record, err.Index, err.Field, err.Reason)
	}
	return fmt.Sprintf("%s #%d (%s): %s %s", err.Record, err.Index, err.Id, err.Field, err.Reason)
}

type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	return "invalid model input: " + strings.Join(lo.Map(errs, func(err ValidationError, _ int) string { return err.Error() }), "; ")
}

// IsValidationError reports whether err carries malformed-input details
func IsValidationError(err error) bool {
	var errs ValidationErrors
	return errors.As(err, &errs)
}

type policyLimits struct {
	MaxPerDay  int `json:"max_per_day" validate:"min=1"`
	MaxPerWeek int `json:"max_per_week" validate:"min=1"`
	Shifts     int `json:"shifts" validate:"oneof=1 2 3"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// Report fields under their input names
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// Validate checks every record before any model is built. It never mutates nor coerces the input
func (input ModelInput) Validate() error {
	errs := make(ValidationErrors, 0)

	errs = append(errs, validateRecords("teacher", input.Teachers, func(teacher Teacher) string { return teacher.Id })...)
	errs = append(errs, validateRecords("room", input.Rooms, func(room Room) string { return room.Id })...)
	errs = append(errs, validateRecords("section", input.Sections, func(section ClassSection) string { return section.Id })...)
	errs = append(errs, toValidationErrors("policy", 0, "", validate.Struct(policyLimits{
		MaxPerDay:  input.MaxPerDay,
		MaxPerWeek: input.MaxPerWeek,
		Shifts:     input.Shifts,
	}))...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateRecords[T any](record string, records []T, id func(T) string) ValidationErrors {
	errs := make(ValidationErrors, 0)
	firstSeen := make(map[string]int)

	for index, value := range records {
		errs = append(errs, toValidationErrors(record, index, id(value), validate.Struct(value))...)

		key := strings.TrimSpace(id(value))
		if key == "" {
			continue
		}
		if first, ok := firstSeen[key]; ok {
			errs = append(errs, ValidationError{
				Record: record,
				Index:  index,
				Id:     id(value),
				Field:  "id",
				Reason: fmt.Sprintf("duplicates the id of %s #%d", record, first),
			})
			continue
		}
		firstSeen[key] = index
	}

	return errs
}

func toValidationErrors(record string, index int, id string, err error) ValidationErrors {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		if err != nil {
			return ValidationErrors{{Record: record, Index: index, Id: id, Reason: err.Error()}}
		}
		return nil
	}

	return lo.Map(fieldErrors, func(fieldError validator.FieldError, _ int) ValidationError {
		return ValidationError{
			Record: record,
			Index:  index,
			Id:     id,
			Field:  fieldError.Field(),
			Reason: describeTag(fieldError),
		}
	})
}

func describeTag(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s, got %v", fieldError.Param(), fieldError.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", fieldError.Param(), fieldError.Value())
	}
	return fmt.Sprintf("fails %q", fieldError.Tag())
}
