package metadata

import (
	"testing"

	"knowledge-retrieval-be/internal/repository/specification"
)

func TestCompileCondition(t *testing.T) {
	tests := []struct {
		name string
		cond FilterCondition
		want interface{}
	}{
		{
			name: "contains builds like pattern",
			cond: FilterCondition{Name: "category", Operator: OpContains, Value: TextValue("legal")},
			want: specification.MetadataLike{Field: "category", Pattern: "%legal%"},
		},
		{
			name: "not contains builds negated like pattern",
			cond: FilterCondition{Name: "category", Operator: OpNotContains, Value: TextValue("legal")},
			want: specification.MetadataNotLike{Field: "category", Pattern: "%legal%"},
		},
		{
			name: "start with anchors prefix",
			cond: FilterCondition{Name: "title", Operator: OpStartsWith, Value: TextValue("FAQ")},
			want: specification.MetadataLike{Field: "title", Pattern: "FAQ%"},
		},
		{
			name: "end with anchors suffix",
			cond: FilterCondition{Name: "title", Operator: OpEndsWith, Value: TextValue("2024")},
			want: specification.MetadataLike{Field: "title", Pattern: "%2024"},
		},
		{
			name: "equals text",
			cond: FilterCondition{Name: "lang", Operator: OpEquals, Value: TextValue("en")},
			want: specification.MetadataEqualsText{Field: "lang", Value: "en"},
		},
		{
			name: "equals number",
			cond: FilterCondition{Name: "year", Operator: OpEquals, Value: NumberValue(2024)},
			want: specification.MetadataEqualsNumber{Field: "year", Value: 2024},
		},
		{
			name: "is not text",
			cond: FilterCondition{Name: "lang", Operator: OpNotEquals, Value: TextValue("en")},
			want: specification.MetadataNotEqualsText{Field: "lang", Value: "en"},
		},
		{
			name: "empty ignores value",
			cond: FilterCondition{Name: "archived_by", Operator: OpEmpty, Value: TextValue("whatever")},
			want: specification.MetadataAbsent{Field: "archived_by"},
		},
		{
			name: "not empty ignores value",
			cond: FilterCondition{Name: "archived_by", Operator: OpNotEmpty},
			want: specification.MetadataPresent{Field: "archived_by"},
		},
		{
			name: "less than with number",
			cond: FilterCondition{Name: "year", Operator: OpLessThan, Value: NumberValue(2020)},
			want: specification.MetadataCompareNumber{Field: "year", Comparator: "<", Value: 2020},
		},
		{
			name: "greater or equal with numeric text",
			cond: FilterCondition{Name: "year", Operator: OpGreaterOrEqual, Value: TextValue("2020")},
			want: specification.MetadataCompareNumber{Field: "year", Comparator: ">=", Value: 2020},
		},
		{
			name: "ordered compare with non-numeric text is noop",
			cond: FilterCondition{Name: "year", Operator: OpGreaterThan, Value: TextValue("recent")},
			want: specification.NoOp{},
		},
		{
			name: "absent value is noop",
			cond: FilterCondition{Name: "lang", Operator: OpEquals, Value: AbsentValue()},
			want: specification.NoOp{},
		},
		{
			name: "unknown operator is noop",
			cond: FilterCondition{Name: "lang", Operator: ComparisonOperator("between"), Value: TextValue("x")},
			want: specification.NoOp{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompileCondition(tt.cond)
			if got != tt.want {
				t.Errorf("CompileCondition() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestCompileGroup(t *testing.T) {
	cond := FilterCondition{Name: "lang", Operator: OpEquals, Value: TextValue("en")}
	noop := FilterCondition{Name: "year", Operator: OpGreaterThan, Value: TextValue("recent")}

	t.Run("empty group matches everything", func(t *testing.T) {
		got := CompileGroup(ConditionGroup{LogicalOperator: LogicalAnd})
		if _, ok := got.(specification.NoOp); !ok {
			t.Errorf("CompileGroup() = %#v, want NoOp", got)
		}
	})

	t.Run("all-noop group matches everything", func(t *testing.T) {
		got := CompileGroup(ConditionGroup{LogicalOperator: LogicalOr, Conditions: []FilterCondition{noop}})
		if _, ok := got.(specification.NoOp); !ok {
			t.Errorf("CompileGroup() = %#v, want NoOp", got)
		}
	})

	t.Run("and group compiles to All", func(t *testing.T) {
		got := CompileGroup(ConditionGroup{LogicalOperator: LogicalAnd, Conditions: []FilterCondition{cond, cond}})
		all, ok := got.(specification.All)
		if !ok {
			t.Fatalf("CompileGroup() = %#v, want All", got)
		}
		if len(all.Specs) != 2 {
			t.Errorf("len(Specs) = %d, want 2", len(all.Specs))
		}
	})

	t.Run("or group compiles to Any and drops noops", func(t *testing.T) {
		got := CompileGroup(ConditionGroup{LogicalOperator: LogicalOr, Conditions: []FilterCondition{cond, noop}})
		any, ok := got.(specification.Any)
		if !ok {
			t.Fatalf("CompileGroup() = %#v, want Any", got)
		}
		if len(any.Specs) != 1 {
			t.Errorf("len(Specs) = %d, want 1", len(any.Specs))
		}
	})

	t.Run("unset operator defaults to Any", func(t *testing.T) {
		got := CompileGroup(ConditionGroup{Conditions: []FilterCondition{cond}})
		if _, ok := got.(specification.Any); !ok {
			t.Errorf("CompileGroup() = %#v, want Any", got)
		}
	})
}
