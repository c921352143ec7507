package metadata

import (
	"strconv"

	"knowledge-retrieval-be/internal/repository/specification"
)

// CompileCondition translates one filter condition into a document metadata
// predicate. The switch is exhaustive over ComparisonOperator; unknown
// operators and missing values compile to NoOp rather than failing, so a
// malformed condition silently widens the filter instead of breaking
// retrieval.
func CompileCondition(cond FilterCondition) specification.Specification {
	// empty / not-empty are presence checks and ignore the value entirely.
	switch cond.Operator {
	case OpEmpty:
		return specification.MetadataAbsent{Field: cond.Name}
	case OpNotEmpty:
		return specification.MetadataPresent{Field: cond.Name}
	}

	if cond.Value.IsAbsent() {
		return specification.NoOp{}
	}

	switch cond.Operator {
	case OpContains:
		return specification.MetadataLike{Field: cond.Name, Pattern: "%" + cond.Value.AsText() + "%"}
	case OpNotContains:
		return specification.MetadataNotLike{Field: cond.Name, Pattern: "%" + cond.Value.AsText() + "%"}
	case OpStartsWith:
		return specification.MetadataLike{Field: cond.Name, Pattern: cond.Value.AsText() + "%"}
	case OpEndsWith:
		return specification.MetadataLike{Field: cond.Name, Pattern: "%" + cond.Value.AsText()}
	case OpEquals:
		if cond.Value.Kind() == ValueNumber {
			return specification.MetadataEqualsNumber{Field: cond.Name, Value: cond.Value.Number()}
		}
		return specification.MetadataEqualsText{Field: cond.Name, Value: cond.Value.Text()}
	case OpNotEquals:
		if cond.Value.Kind() == ValueNumber {
			return specification.MetadataNotEqualsNumber{Field: cond.Name, Value: cond.Value.Number()}
		}
		return specification.MetadataNotEqualsText{Field: cond.Name, Value: cond.Value.Text()}
	case OpLessThan, OpGreaterThan, OpLessOrEqual, OpGreaterOrEqual:
		value, ok := numericValue(cond.Value)
		if !ok {
			return specification.NoOp{}
		}
		return specification.MetadataCompareNumber{
			Field:      cond.Name,
			Comparator: string(cond.Operator),
			Value:      value,
		}
	default:
		return specification.NoOp{}
	}
}

func numericValue(v FilterValue) (float64, bool) {
	switch v.Kind() {
	case ValueNumber:
		return v.Number(), true
	case ValueText:
		f, err := strconv.ParseFloat(v.Text(), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// CompileGroup combines the compiled conditions with the group's logical
// operator. A group with zero conditions (or only no-op conditions) matches
// every document.
func CompileGroup(group ConditionGroup) specification.Specification {
	if len(group.Conditions) == 0 {
		return specification.NoOp{}
	}

	specs := make([]specification.Specification, 0, len(group.Conditions))
	for _, cond := range group.Conditions {
		compiled := CompileCondition(cond)
		if _, noop := compiled.(specification.NoOp); noop {
			continue
		}
		specs = append(specs, compiled)
	}
	if len(specs) == 0 {
		return specification.NoOp{}
	}

	if group.LogicalOperator == LogicalAnd {
		return specification.All{Specs: specs}
	}
	return specification.Any{Specs: specs}
}
