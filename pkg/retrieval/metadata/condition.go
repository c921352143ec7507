package metadata

import (
	"strconv"
)

// ComparisonOperator is the closed set of comparisons a filter condition can
// carry. Anything outside this set compiles to a no-op.
type ComparisonOperator string

const (
	OpContains       ComparisonOperator = "contains"
	OpNotContains    ComparisonOperator = "not contains"
	OpStartsWith     ComparisonOperator = "start with"
	OpEndsWith       ComparisonOperator = "end with"
	OpEquals         ComparisonOperator = "="
	OpNotEquals      ComparisonOperator = "is not"
	OpEmpty          ComparisonOperator = "empty"
	OpNotEmpty       ComparisonOperator = "not empty"
	OpLessThan       ComparisonOperator = "<"
	OpGreaterThan    ComparisonOperator = ">"
	OpLessOrEqual    ComparisonOperator = "<="
	OpGreaterOrEqual ComparisonOperator = ">="
)

// operatorAliases maps the spellings found in stored configurations and model
// output onto canonical operators.
var operatorAliases = map[string]ComparisonOperator{
	"contains":     OpContains,
	"not contains": OpNotContains,
	"start with":   OpStartsWith,
	"starts with":  OpStartsWith,
	"end with":     OpEndsWith,
	"ends with":    OpEndsWith,
	"=":            OpEquals,
	"is":           OpEquals,
	"is not":       OpNotEquals,
	"≠":            OpNotEquals,
	"empty":        OpEmpty,
	"not empty":    OpNotEmpty,
	"<":            OpLessThan,
	"before":       OpLessThan,
	">":            OpGreaterThan,
	"after":        OpGreaterThan,
	"<=":           OpLessOrEqual,
	"≤":            OpLessOrEqual,
	">=":           OpGreaterOrEqual,
	"≥":            OpGreaterOrEqual,
}

// ParseOperator normalizes an operator spelling. ok is false for unknown
// spellings; callers keep the raw value so compilation can no-op on it.
func ParseOperator(raw string) (ComparisonOperator, bool) {
	op, ok := operatorAliases[raw]
	if !ok {
		return ComparisonOperator(raw), false
	}
	return op, true
}

// ValueKind tags the variant held by a FilterValue.
type ValueKind int

const (
	ValueAbsent ValueKind = iota
	ValueText
	ValueNumber
)

// FilterValue is the tagged scalar a condition compares against: text,
// number, or absent. Resolved once, so compilation never type-switches on
// raw interface values.
type FilterValue struct {
	kind   ValueKind
	text   string
	number float64
}

func AbsentValue() FilterValue {
	return FilterValue{kind: ValueAbsent}
}

func TextValue(s string) FilterValue {
	return FilterValue{kind: ValueText, text: s}
}

func NumberValue(f float64) FilterValue {
	return FilterValue{kind: ValueNumber, number: f}
}

// ValueFromAny converts a JSON-decoded scalar into a FilterValue. ok is false
// for unsupported types (arrays, objects, booleans).
func ValueFromAny(v interface{}) (FilterValue, bool) {
	switch val := v.(type) {
	case nil:
		return AbsentValue(), true
	case string:
		return TextValue(val), true
	case float64:
		return NumberValue(val), true
	case int:
		return NumberValue(float64(val)), true
	case int64:
		return NumberValue(float64(val)), true
	default:
		return AbsentValue(), false
	}
}

func (v FilterValue) Kind() ValueKind {
	return v.kind
}

func (v FilterValue) IsAbsent() bool {
	return v.kind == ValueAbsent
}

func (v FilterValue) Text() string {
	return v.text
}

func (v FilterValue) Number() float64 {
	return v.number
}

// AsText renders the value for substring matching, the way it would appear in
// the stored metadata text.
func (v FilterValue) AsText() string {
	switch v.kind {
	case ValueText:
		return v.text
	case ValueNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	default:
		return ""
	}
}

// FilterCondition is one authored or extracted comparison over a metadata
// field.
type FilterCondition struct {
	Name     string
	Operator ComparisonOperator
	Value    FilterValue
}

// Logical operator constants for ConditionGroup
const (
	LogicalAnd = "and"
	LogicalOr  = "or"
)

// ConditionGroup combines conditions with a logical operator. An empty group
// compiles to "no filter".
type ConditionGroup struct {
	LogicalOperator string
	Conditions      []FilterCondition
}
