package service

import (
	"context"
	"encoding/json"
	"fmt"

	"knowledge-retrieval-be/internal/dto"
	"knowledge-retrieval-be/pkg/llm"
	"knowledge-retrieval-be/pkg/retrieval"
	"knowledge-retrieval-be/pkg/retrieval/metadata"
	"knowledge-retrieval-be/pkg/retrieval/strategy"
)

type IRetrievalService interface {
	Retrieve(ctx context.Context, req *dto.RetrieveRequest) (*dto.RetrieveResponse, error)
}

type retrievalService struct {
	orchestrator *retrieval.Orchestrator
}

func NewRetrievalService(orchestrator *retrieval.Orchestrator) IRetrievalService {
	return &retrievalService{orchestrator: orchestrator}
}

func (s *retrievalService) Retrieve(ctx context.Context, req *dto.RetrieveRequest) (*dto.RetrieveResponse, error) {
	request, err := buildRequest(req)
	if err != nil {
		return nil, err
	}

	result, err := s.orchestrator.Retrieve(ctx, request)
	if err != nil {
		return nil, err
	}

	response := &dto.RetrieveResponse{
		Result: make([]dto.RetrievedSourceResponse, 0, len(result.Sources)),
	}
	for _, source := range result.Sources {
		metadataBag, err := metadataToBag(source.Metadata)
		if err != nil {
			return nil, err
		}
		response.Result = append(response.Result, dto.RetrievedSourceResponse{
			Metadata: metadataBag,
			Title:    source.Title,
			Content:  source.Content,
		})
	}
	return response, nil
}

func buildRequest(req *dto.RetrieveRequest) (*retrieval.Request, error) {
	strategyCfg, err := buildStrategyConfig(req)
	if err != nil {
		return nil, err
	}
	filterCfg, err := buildFilterConfig(req.Filter)
	if err != nil {
		return nil, err
	}

	return &retrieval.Request{
		TenantId:      req.TenantId,
		Query:         req.Query,
		CollectionIds: req.CollectionIds,
		Strategy:      strategyCfg,
		Filter:        filterCfg,
	}, nil
}

func buildStrategyConfig(req *dto.RetrieveRequest) (strategy.Config, error) {
	cfg := strategy.Config{Mode: strategy.RetrievalMode(req.RetrievalMode)}

	switch cfg.Mode {
	case strategy.ModeSingle:
		if req.Single == nil {
			return cfg, retrieval.NewError(retrieval.ErrKindInvalidInput, "single retrieval config is required")
		}
		cfg.Single = &strategy.SingleConfig{
			Model: llm.ModelRef{Provider: req.Single.ModelProvider, Name: req.Single.ModelName},
		}
	case strategy.ModeMultiple:
		if req.Multiple == nil {
			return cfg, retrieval.NewError(retrieval.ErrKindInvalidInput, "multiple retrieval config is required")
		}
		multiple := &strategy.MultipleConfig{
			TopK:            req.Multiple.TopK,
			ScoreThreshold:  req.Multiple.ScoreThreshold,
			RerankingEnable: req.Multiple.RerankingEnable,
			RerankingMode:   strategy.RerankingMode(req.Multiple.RerankingMode),
		}
		if req.Multiple.RerankingModel != "" {
			multiple.RerankingModel = &llm.ModelRef{Name: req.Multiple.RerankingModel}
		}
		if req.Multiple.Weights != nil {
			multiple.Weights = &strategy.Weights{
				VectorSetting: strategy.VectorSetting{
					VectorWeight:      req.Multiple.Weights.VectorWeight,
					EmbeddingProvider: req.Multiple.Weights.EmbeddingProvider,
					EmbeddingModel:    req.Multiple.Weights.EmbeddingModel,
				},
				KeywordSetting: strategy.KeywordSetting{
					KeywordWeight: req.Multiple.Weights.KeywordWeight,
				},
			}
		}
		cfg.Multiple = multiple
	}
	return cfg, nil
}

func buildFilterConfig(req *dto.MetadataFilterRequest) (metadata.FilterConfig, error) {
	if req == nil {
		return metadata.FilterConfig{Mode: metadata.ModeDisabled}, nil
	}

	cfg := metadata.FilterConfig{Mode: metadata.FilteringMode(req.Mode)}

	if len(req.Conditions) > 0 || req.LogicalOperator != "" {
		group := &metadata.ConditionGroup{LogicalOperator: req.LogicalOperator}
		for _, cond := range req.Conditions {
			operator, ok := metadata.ParseOperator(cond.ComparisonOperator)
			if !ok {
				return cfg, retrieval.NewError(retrieval.ErrKindInvalidInput,
					fmt.Sprintf("unknown comparison operator %q", cond.ComparisonOperator))
			}
			value, ok := metadata.ValueFromAny(cond.Value)
			if !ok {
				return cfg, retrieval.NewError(retrieval.ErrKindInvalidInput,
					fmt.Sprintf("unsupported value type for condition %q", cond.Name))
			}
			group.Conditions = append(group.Conditions, metadata.FilterCondition{
				Name:     cond.Name,
				Operator: operator,
				Value:    value,
			})
		}
		cfg.Conditions = group
	}

	if req.ModelName != "" {
		cfg.AutomaticModel = &llm.ModelRef{Provider: req.ModelProvider, Name: req.ModelName}
	}
	return cfg, nil
}

// metadataToBag flattens the typed source metadata into the JSON shape the
// API exposes.
func metadataToBag(m interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode source metadata: %w", err)
	}
	var bag map[string]interface{}
	if err := json.Unmarshal(raw, &bag); err != nil {
		return nil, fmt.Errorf("decode source metadata: %w", err)
	}
	return bag, nil
}
