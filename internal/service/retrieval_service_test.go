package service

import (
	"testing"

	"knowledge-retrieval-be/internal/dto"
	"knowledge-retrieval-be/pkg/retrieval"
	"knowledge-retrieval-be/pkg/retrieval/metadata"
	"knowledge-retrieval-be/pkg/retrieval/strategy"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStrategyConfigSingle(t *testing.T) {
	cfg, err := buildStrategyConfig(&dto.RetrieveRequest{
		RetrievalMode: "single",
		Single:        &dto.SingleStrategyRequest{ModelProvider: "ollama", ModelName: "llama3"},
	})
	require.NoError(t, err)
	require.NotNil(t, cfg.Single)
	assert.Equal(t, strategy.ModeSingle, cfg.Mode)
	assert.Equal(t, "ollama", cfg.Single.Model.Provider)
	assert.Equal(t, "llama3", cfg.Single.Model.Name)
	assert.Nil(t, cfg.Multiple)
}

func TestBuildStrategyConfigSingleMissingBlock(t *testing.T) {
	_, err := buildStrategyConfig(&dto.RetrieveRequest{RetrievalMode: "single"})
	require.Error(t, err)
	assert.Equal(t, retrieval.ErrKindInvalidInput, retrieval.KindOf(err))
}

func TestBuildStrategyConfigMultiple(t *testing.T) {
	threshold := 0.35
	cfg, err := buildStrategyConfig(&dto.RetrieveRequest{
		RetrievalMode: "multiple",
		Multiple: &dto.MultipleStrategyRequest{
			TopK:            6,
			ScoreThreshold:  &threshold,
			RerankingEnable: true,
			RerankingMode:   "weighted_score",
			Weights: &dto.WeightsRequest{
				VectorWeight:  0.7,
				KeywordWeight: 0.3,
			},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, cfg.Multiple)
	assert.Equal(t, 6, cfg.Multiple.TopK)
	require.NotNil(t, cfg.Multiple.ScoreThreshold)
	assert.Equal(t, 0.35, *cfg.Multiple.ScoreThreshold)
	assert.Equal(t, strategy.RerankingWeightedScore, cfg.Multiple.RerankingMode)
	require.NotNil(t, cfg.Multiple.Weights)
	assert.Equal(t, 0.7, cfg.Multiple.Weights.VectorSetting.VectorWeight)
	assert.Equal(t, 0.3, cfg.Multiple.Weights.KeywordSetting.KeywordWeight)
}

func TestBuildFilterConfigNilMeansDisabled(t *testing.T) {
	cfg, err := buildFilterConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, metadata.ModeDisabled, cfg.Mode)
	assert.Nil(t, cfg.Conditions)
}

func TestBuildFilterConfigManualConditions(t *testing.T) {
	cfg, err := buildFilterConfig(&dto.MetadataFilterRequest{
		Mode:            "manual",
		LogicalOperator: "and",
		Conditions: []dto.MetadataFilterCondition{
			{Name: "category", ComparisonOperator: "is", Value: "legal"},
			{Name: "year", ComparisonOperator: ">=", Value: float64(2023)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, metadata.ModeManual, cfg.Mode)
	require.NotNil(t, cfg.Conditions)
	assert.Equal(t, "and", cfg.Conditions.LogicalOperator)
	require.Len(t, cfg.Conditions.Conditions, 2)
	assert.Equal(t, metadata.OpEquals, cfg.Conditions.Conditions[0].Operator)
	assert.Equal(t, metadata.OpGreaterOrEqual, cfg.Conditions.Conditions[1].Operator)
}

func TestBuildFilterConfigRejectsUnknownOperator(t *testing.T) {
	_, err := buildFilterConfig(&dto.MetadataFilterRequest{
		Mode: "manual",
		Conditions: []dto.MetadataFilterCondition{
			{Name: "category", ComparisonOperator: "between", Value: "a"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, retrieval.ErrKindInvalidInput, retrieval.KindOf(err))
}

func TestBuildFilterConfigRejectsUnsupportedValue(t *testing.T) {
	_, err := buildFilterConfig(&dto.MetadataFilterRequest{
		Mode: "manual",
		Conditions: []dto.MetadataFilterCondition{
			{Name: "tags", ComparisonOperator: "is", Value: []string{"a", "b"}},
		},
	})
	require.Error(t, err)
	assert.Equal(t, retrieval.ErrKindInvalidInput, retrieval.KindOf(err))
}

func TestBuildFilterConfigAutomaticModel(t *testing.T) {
	cfg, err := buildFilterConfig(&dto.MetadataFilterRequest{
		Mode:          "automatic",
		ModelProvider: "ollama",
		ModelName:     "llama3",
	})
	require.NoError(t, err)
	assert.Equal(t, metadata.ModeAutomatic, cfg.Mode)
	require.NotNil(t, cfg.AutomaticModel)
	assert.Equal(t, "llama3", cfg.AutomaticModel.Name)
}

func TestBuildRequestCarriesIdentity(t *testing.T) {
	tenantId := uuid.New()
	collectionId := uuid.New()
	req, err := buildRequest(&dto.RetrieveRequest{
		TenantId:      tenantId,
		Query:         "refund window",
		CollectionIds: []uuid.UUID{collectionId},
		RetrievalMode: "multiple",
		Multiple:      &dto.MultipleStrategyRequest{TopK: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, tenantId, req.TenantId)
	assert.Equal(t, "refund window", req.Query)
	require.Len(t, req.CollectionIds, 1)
	assert.Equal(t, collectionId, req.CollectionIds[0])
}
