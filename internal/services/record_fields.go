package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/terraincognita07/endocare/internal/models"
)

// Fields is a decoded request body: field name to raw JSON value.
type Fields map[string]json.RawMessage

// ValidationError names the offending field. An empty Reason means the field
// was missing.
type ValidationError struct {
	Field  string
	Reason string
}

func (err *ValidationError) Error() string {
	if err.Reason == "" {
		return "missing field: " + err.Field
	}
	return fmt.Sprintf("invalid field %s: %s", err.Field, err.Reason)
}

func missingField(field string) error {
	return &ValidationError{Field: field}
}

func invalidField(field string, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AsValidationError unwraps err into a ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr, true
	}
	return nil, false
}

type recordSchema struct {
	required []string
	build    func(fields Fields) (models.Record, error)
}

var recordSchemas = map[models.Kind]recordSchema{
	models.KindSleep: {
		required: []string{"date", "duration", "quality", "disruptions", "notes"},
		build:    buildSleepLog,
	},
	models.KindDiet: {
		required: []string{"meal", "date", "items", "notes"},
		build:    buildDietLog,
	},
	models.KindMenstrual: {
		required: []string{"period_event", "date", "flow_level", "notes"},
		build:    buildMenstrualLog,
	},
	models.KindSymptoms: {
		required: []string{"date", "nausea", "fatigue", "pain", "notes"},
		build:    buildSymptomsLog,
	},
	models.KindPrediction: {
		required: []string{"date", "cycle_day", "probability"},
		build:    buildPrediction,
	},
}

// RequiredFields lists the fields an insert of kind must carry, in the order
// they are checked.
func RequiredFields(kind models.Kind) []string {
	schema, ok := recordSchemas[kind]
	if !ok {
		return nil
	}
	return append([]string(nil), schema.required...)
}

// BuildRecord validates fields against the kind's schema and returns the
// unsaved record.
func BuildRecord(kind models.Kind, fields Fields) (models.Record, error) {
	schema, ok := recordSchemas[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err := requireFields(fields, schema.required); err != nil {
		return nil, err
	}
	return schema.build(fields)
}

func requireFields(fields Fields, required []string) error {
	for _, name := range required {
		if _, ok := fields[name]; !ok {
			return missingField(name)
		}
	}
	return nil
}

func buildSleepLog(fields Fields) (models.Record, error) {
	date, err := decodeDate(fields, "date")
	if err != nil {
		return nil, err
	}
	duration, err := decodeFloat(fields, "duration", 0, 24)
	if err != nil {
		return nil, err
	}
	quality, err := decodeInt(fields, "quality", 0, 10)
	if err != nil {
		return nil, err
	}
	disruptions, err := decodeText(fields, "disruptions")
	if err != nil {
		return nil, err
	}
	notes, err := decodeText(fields, "notes")
	if err != nil {
		return nil, err
	}
	return &models.SleepLog{
		Date:        date,
		Duration:    duration,
		Quality:     quality,
		Disruptions: disruptions,
		Notes:       notes,
	}, nil
}

func buildDietLog(fields Fields) (models.Record, error) {
	meal, err := decodeText(fields, "meal")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(meal) == "" {
		return nil, invalidField("meal", "must not be empty")
	}
	date, err := decodeDate(fields, "date")
	if err != nil {
		return nil, err
	}
	items, err := decodeItems(fields, "items")
	if err != nil {
		return nil, err
	}
	notes, err := decodeText(fields, "notes")
	if err != nil {
		return nil, err
	}
	return &models.DietLog{
		Meal:  meal,
		Date:  date,
		Items: items,
		Notes: notes,
	}, nil
}

func buildMenstrualLog(fields Fields) (models.Record, error) {
	event, err := decodeText(fields, "period_event")
	if err != nil {
		return nil, err
	}
	if !models.IsValidPeriodEvent(normalizeEnum(event)) {
		return nil, invalidField("period_event", "must be start or end")
	}
	date, err := decodeDate(fields, "date")
	if err != nil {
		return nil, err
	}
	flowLevel, err := decodeFlowLevel(fields, "flow_level")
	if err != nil {
		return nil, err
	}
	notes, err := decodeText(fields, "notes")
	if err != nil {
		return nil, err
	}
	return &models.MenstrualLog{
		PeriodEvent: event,
		Date:        date,
		FlowLevel:   flowLevel,
		Notes:       notes,
	}, nil
}

func buildSymptomsLog(fields Fields) (models.Record, error) {
	date, err := decodeDate(fields, "date")
	if err != nil {
		return nil, err
	}
	nausea, err := decodeInt(fields, "nausea", 0, 10)
	if err != nil {
		return nil, err
	}
	fatigue, err := decodeInt(fields, "fatigue", 0, 10)
	if err != nil {
		return nil, err
	}
	pain, err := decodeInt(fields, "pain", 0, 10)
	if err != nil {
		return nil, err
	}
	notes, err := decodeText(fields, "notes")
	if err != nil {
		return nil, err
	}
	return &models.SymptomsLog{
		Date:    date,
		Nausea:  nausea,
		Fatigue: fatigue,
		Pain:    pain,
		Notes:   notes,
	}, nil
}

func buildPrediction(fields Fields) (models.Record, error) {
	date, err := decodeDate(fields, "date")
	if err != nil {
		return nil, err
	}
	cycleDay, err := decodeIntAtLeast(fields, "cycle_day", 1)
	if err != nil {
		return nil, err
	}
	probability, err := decodeFloat(fields, "probability", 0, 1)
	if err != nil {
		return nil, err
	}
	return &models.Prediction{
		Date:        date,
		CycleDay:    cycleDay,
		Probability: probability,
	}, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeText(fields Fields, name string) (string, error) {
	raw := fields[name]
	if isJSONNull(raw) {
		return "", nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", invalidField(name, "must be a string")
	}
	return value, nil
}

// normalizeEnum is the comparison form of an enum value. The caller's text is
// what gets stored.
func normalizeEnum(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// decodeDate accepts a calendar date or an RFC 3339 timestamp and keeps the
// caller's text so ordering stays lexicographic on the stored value. Padded
// dates are rejected rather than trimmed.
func decodeDate(fields Fields, name string) (string, error) {
	var value string
	if err := json.Unmarshal(fields[name], &value); err != nil {
		return "", invalidField(name, "must be a date string")
	}
	if !isAcceptedDate(value) {
		return "", invalidField(name, "must be YYYY-MM-DD or RFC 3339")
	}
	return value, nil
}

func isAcceptedDate(value string) bool {
	if _, err := time.Parse(time.DateOnly, value); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, value)
	return err == nil
}

func decodeFloat(fields Fields, name string, minValue float64, maxValue float64) (float64, error) {
	var value float64
	if err := json.Unmarshal(fields[name], &value); err != nil || isJSONNull(fields[name]) {
		return 0, invalidField(name, "must be a number")
	}
	if math.IsNaN(value) || value < minValue || value > maxValue {
		return 0, invalidField(name, fmt.Sprintf("must be between %g and %g", minValue, maxValue))
	}
	return value, nil
}

func decodeInt(fields Fields, name string, minValue int, maxValue int) (int, error) {
	value, err := decodeIntegral(fields, name)
	if err != nil {
		return 0, err
	}
	if value < minValue || value > maxValue {
		return 0, invalidField(name, fmt.Sprintf("must be between %d and %d", minValue, maxValue))
	}
	return value, nil
}

func decodeIntAtLeast(fields Fields, name string, minValue int) (int, error) {
	value, err := decodeIntegral(fields, name)
	if err != nil {
		return 0, err
	}
	if value < minValue {
		return 0, invalidField(name, fmt.Sprintf("must be at least %d", minValue))
	}
	return value, nil
}

func decodeIntegral(fields Fields, name string) (int, error) {
	var value float64
	if err := json.Unmarshal(fields[name], &value); err != nil || isJSONNull(fields[name]) {
		return 0, invalidField(name, "must be an integer")
	}
	if value != math.Trunc(value) || math.Abs(value) > math.MaxInt32 {
		return 0, invalidField(name, "must be an integer")
	}
	return int(value), nil
}

func decodeItems(fields Fields, name string) (models.ItemList, error) {
	var values []string
	if err := json.Unmarshal(fields[name], &values); err != nil || isJSONNull(fields[name]) {
		return nil, invalidField(name, "must be a list of strings")
	}
	return models.ItemList(values), nil
}

func decodeFlowLevel(fields Fields, name string) (*string, error) {
	if isJSONNull(fields[name]) {
		return nil, nil
	}
	value, err := decodeText(fields, name)
	if err != nil {
		return nil, err
	}
	if normalizeEnum(value) == "" {
		return nil, nil
	}
	if !models.IsValidFlowLevel(normalizeEnum(value)) {
		return nil, invalidField(name, "must be low, moderate, heavy or null")
	}
	return &value, nil
}
