package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

type Teacher struct {
	Id    string `json:"id" yaml:"id" mapstructure:"id" validate:"required"`
	Major string `json:"major" yaml:"major" mapstructure:"major" validate:"required"`
	Minor string `json:"minor" yaml:"minor" mapstructure:"minor"` // Optional, an empty minor never qualifies
}

type Room struct {
	Id       string `json:"id" yaml:"id" mapstructure:"id" validate:"required"`
	Capacity int    `json:"capacity" yaml:"capacity" mapstructure:"capacity" validate:"min=1"`
}

type ClassSection struct {
	Id                 string `json:"id" yaml:"id" mapstructure:"id" validate:"required"`
	Subject            string `json:"subject" yaml:"subject" mapstructure:"subject" validate:"required"`
	OccurrencesPerWeek int    `json:"occurrences_per_week" yaml:"occurrences_per_week" mapstructure:"occurrences_per_week" validate:"min=1"`
	Duration           int    `json:"duration" yaml:"duration" mapstructure:"duration" validate:"min=1"` // Load weight, not a multi-period block
}

type ModelInput struct {
	Teachers   []Teacher      `json:"teachers" yaml:"teachers" mapstructure:"teachers"`
	Rooms      []Room         `json:"rooms" yaml:"rooms" mapstructure:"rooms"`
	Sections   []ClassSection `json:"sections" yaml:"sections" mapstructure:"sections"`
	MaxPerDay  int            `json:"max_per_day" yaml:"max_per_day" mapstructure:"max_per_day"`
	MaxPerWeek int            `json:"max_per_week" yaml:"max_per_week" mapstructure:"max_per_week"`
	Shifts     int            `json:"shifts" yaml:"shifts" mapstructure:"shifts"`
}

// Key aliases accepted on raw input, mapped to their canonical names
var inputAliases = map[string]string{
	"times_per_week": "occurrences_per_week",
	"classes":        "sections",
}

// WithPolicyDefaults fills the policy limits left at zero
func (input ModelInput) WithPolicyDefaults(maxPerDay, maxPerWeek, shifts int) ModelInput {
	if input.MaxPerDay == 0 {
		input.MaxPerDay = maxPerDay
	}
	if input.MaxPerWeek == 0 {
		input.MaxPerWeek = maxPerWeek
	}
	if input.Shifts == 0 {
		input.Shifts = shifts
	}
	return input
}

// InputFromFile decodes a JSON or YAML model input, chosen by the file extension
func InputFromFile(file string) (ModelInput, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return InputFromYaml(file)
	default:
		return InputFromJson(file)
	}
}

func InputFromJson(file string) (ModelInput, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return ModelInput{}, fmt.Errorf("cannot read input file: %w", err)
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return ModelInput{}, fmt.Errorf("cannot parse json input: %w", err)
	}
	return InputFromMap(inputJson)
}

func InputFromYaml(file string) (ModelInput, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return ModelInput{}, fmt.Errorf("cannot read input file: %w", err)
	}

	var inputYaml map[string]any
	if err := yaml.Unmarshal(bytes, &inputYaml); err != nil {
		return ModelInput{}, fmt.Errorf("cannot parse yaml input: %w", err)
	}
	return InputFromMap(inputYaml)
}

// InputFromMap decodes an already parsed document. Identifiers written as numbers are read as strings
func InputFromMap(raw map[string]any) (ModelInput, error) {
	var input ModelInput
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: numberHook,
		Result:     &input,
		TagName:    "mapstructure",
	})
	if err != nil {
		return ModelInput{}, err
	}

	if err := decoder.Decode(normalizeKeys(raw)); err != nil {
		return ModelInput{}, fmt.Errorf("cannot decode model input: %w", err)
	}
	return input, nil
}

// Turns numeric identifiers into strings and rejects fractional counts; nothing else is coerced
func numberHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Float64 && from.Kind() != reflect.Int {
		return data, nil
	}

	switch to.Kind() {
	case reflect.String:
		if number, ok := data.(float64); ok {
			return strconv.FormatFloat(number, 'f', -1, 64), nil
		}
		return fmt.Sprint(data), nil
	case reflect.Int:
		if number, ok := data.(float64); ok && number != math.Trunc(number) {
			return nil, fmt.Errorf("expected a whole number, got %v", number)
		}
	}
	return data, nil
}

// Lower-cases keys and resolves aliases recursively
func normalizeKeys(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		normalized := make(map[string]any, len(typed))
		for key, inner := range typed {
			key = strings.ToLower(strings.TrimSpace(key))
			if canonical, ok := inputAliases[key]; ok {
				key = canonical
			}
			normalized[key] = normalizeKeys(inner)
		}
		return normalized
	case []any:
		normalized := make([]any, len(typed))
		for i, inner := range typed {
			normalized[i] = normalizeKeys(inner)
		}
		return normalized
	}
	return value
}
