package metadata

import (
	"context"
	"encoding/json"
	"fmt"

	"knowledge-retrieval-be/internal/constant"
	"knowledge-retrieval-be/internal/pkg/logger"
	"knowledge-retrieval-be/pkg/llm"
	"knowledge-retrieval-be/pkg/utils"
)

// Extractor derives filter conditions from a query with a language model.
// Extraction is strictly best-effort: any failure degrades to zero
// conditions, never to a request failure.
type Extractor struct {
	logger logger.ILogger
}

func NewExtractor(log logger.ILogger) *Extractor {
	return &Extractor{logger: log}
}

// Extract returns the conditions the model inferred from the query, keeping
// only conditions over known field names. This is the single recovery
// boundary for automatic filtering: errors are logged and discarded here.
func (e *Extractor) Extract(ctx context.Context, model *llm.ModelInstance, fields []string, query string) []FilterCondition {
	conditions, err := e.extract(ctx, model, fields, query)
	if err != nil {
		e.logger.Warn("metadata-extractor", "Automatic metadata filtering degraded to no filter", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}
	return conditions
}

func (e *Extractor) extract(ctx context.Context, model *llm.ModelInstance, fields []string, query string) ([]FilterCondition, error) {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode field names: %w", err)
	}

	history := []llm.Message{
		{Role: "system", Content: constant.MetadataFilterSystemPrompt},
		{Role: "user", Content: constant.MetadataFilterUserExample1},
		{Role: "assistant", Content: constant.MetadataFilterAssistantExample1},
		{Role: "user", Content: constant.MetadataFilterUserExample2},
		{Role: "assistant", Content: constant.MetadataFilterAssistantExample2},
		{Role: "user", Content: fmt.Sprintf(constant.MetadataFilterUserPrompt, query, string(fieldsJSON))},
	}

	completion, err := model.Client.Chat(ctx, history, llm.WithTemperature(0.1))
	if err != nil {
		return nil, fmt.Errorf("invoke completion model: %w", err)
	}

	parsed, err := utils.ParseJSONMarkdown(completion)
	if err != nil {
		return nil, fmt.Errorf("parse completion: %w", err)
	}

	rawMap, ok := parsed["metadata_map"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("completion has no metadata_map list")
	}

	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f] = true
	}

	var conditions []FilterCondition
	for _, raw := range rawMap {
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := item["metadata_field_name"].(string)
		if !known[name] {
			continue
		}
		operatorRaw, _ := item["comparison_operator"].(string)
		operator, _ := ParseOperator(operatorRaw)
		value, ok := ValueFromAny(item["metadata_field_value"])
		if !ok {
			continue
		}
		conditions = append(conditions, FilterCondition{
			Name:     name,
			Operator: operator,
			Value:    value,
		})
	}
	return conditions, nil
}
