package core

import (
	"encoding/json"
	"math"
	"strings"
)

const (
	Text FieldType = iota
	Number
)

// Field names shared by more than one schema.
const (
	FieldOwnerID = "ownerId"
	FieldAmount  = "amount"

	// legacyOwnerKey is the owner field name used by older clients.
	legacyOwnerKey = "userId"
)

const (
	reasonRequired = "is required"
	reasonText     = "must be a string"
	reasonNumber   = "must be a number"
	reasonOwnerDot = `must not be "." or ".."`
)

type (
	FieldType int

	Field struct {
		Name     string
		Type     FieldType
		Required bool
	}

	// Schema is the static contract for one record kind: field names, their
	// primitive types and whether they must be supplied.
	Schema struct {
		Kind   Kind
		Fields []Field
	}
)

var (
	IncomeSchema = Schema{
		Kind: KindIncome,
		Fields: []Field{
			{Name: FieldOwnerID, Type: Text, Required: true},
			{Name: "source", Type: Text, Required: true},
			{Name: FieldAmount, Type: Number, Required: true},
		},
	}

	ExpenseSchema = Schema{
		Kind: KindExpense,
		Fields: []Field{
			{Name: FieldOwnerID, Type: Text, Required: true},
			{Name: "title", Type: Text, Required: true},
			{Name: FieldAmount, Type: Number, Required: true},
			{Name: "category", Type: Text},
		},
	}

	GoalSchema = Schema{
		Kind: KindGoal,
		Fields: []Field{
			{Name: FieldOwnerID, Type: Text, Required: true},
			{Name: "goalName", Type: Text, Required: true},
			{Name: "targetAmount", Type: Number, Required: true},
			{Name: "years", Type: Number, Required: true},
		},
	}
)

func (t FieldType) String() string {
	switch t {
	case Text:
		return "text"
	case Number:
		return "number"
	default:
		return "unknown"
	}
}

// Values holds the checked, typed values of the fields a schema names.
// Keys outside the schema never make it in here.
type Values struct {
	text   map[string]string
	number map[string]float64
}

// Text returns the string value of name, or "" when it was not supplied.
func (v Values) Text(name string) string {
	return v.text[name]
}

// OptionalText returns nil when name was absent or null.
func (v Values) OptionalText(name string) *string {
	s, ok := v.text[name]
	if !ok {
		return nil
	}
	return &s
}

func (v Values) Number(name string) float64 {
	return v.number[name]
}

// Check verifies raw against the schema. Every problem is collected so the
// caller learns about all offending fields at once.
func (s Schema) Check(raw map[string]any) (Values, error) {
	vals := Values{text: map[string]string{}, number: map[string]float64{}}
	var problems []FieldProblem

	for _, f := range s.Fields {
		val, present := lookup(raw, f.Name)
		if !present {
			if f.Required {
				problems = append(problems, FieldProblem{Field: f.Name, Reason: reasonRequired})
			}
			continue
		}

		switch f.Type {
		case Text:
			str, ok := val.(string)
			if !ok {
				problems = append(problems, FieldProblem{Field: f.Name, Reason: reasonText})
				continue
			}
			if f.Required && strings.TrimSpace(str) == "" {
				problems = append(problems, FieldProblem{Field: f.Name, Reason: reasonRequired})
				continue
			}
			// owner ids are a URL path segment on the list routes
			if f.Name == FieldOwnerID && (str == "." || str == "..") {
				problems = append(problems, FieldProblem{Field: f.Name, Reason: reasonOwnerDot})
				continue
			}
			vals.text[f.Name] = str
		case Number:
			n, ok := toNumber(val)
			if !ok {
				problems = append(problems, FieldProblem{Field: f.Name, Reason: reasonNumber})
				continue
			}
			vals.number[f.Name] = n
		}
	}

	if len(problems) > 0 {
		return Values{}, &ValidationError{Kind: s.Kind, Problems: problems}
	}
	return vals, nil
}

// lookup treats a JSON null the same as an absent key.
func lookup(raw map[string]any, name string) (any, bool) {
	val, ok := raw[name]
	if (!ok || val == nil) && name == FieldOwnerID {
		val, ok = raw[legacyOwnerKey]
	}
	if !ok || val == nil {
		return nil, false
	}
	return val, true
}

func toNumber(v any) (float64, bool) {
	var n float64
	switch val := v.(type) {
	case float64:
		n = val
	case float32:
		n = float64(val)
	case int:
		n = float64(val)
	case int64:
		n = float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
