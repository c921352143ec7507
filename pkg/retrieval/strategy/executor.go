package strategy

import (
	"context"
	"errors"
	"fmt"

	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/internal/pkg/logger"
	"knowledge-retrieval-be/pkg/llm"
	"knowledge-retrieval-be/pkg/retrieval/metadata"

	"github.com/google/uuid"
)

// RetrievalMode selects the retrieval strategy.
type RetrievalMode string

const (
	ModeSingle   RetrievalMode = "single"
	ModeMultiple RetrievalMode = "multiple"
)

// DefaultTopK bounds retrieval when the caller sets no limit of its own.
const DefaultTopK = 2

// RerankingMode selects how the multiple strategy orders merged results.
type RerankingMode string

const (
	RerankingModel         RerankingMode = "reranking_model"
	RerankingWeightedScore RerankingMode = "weighted_score"
)

// Configuration errors surfaced as fatal input errors by the orchestrator.
var (
	ErrInvalidRetrievalMode  = errors.New("invalid retrieval mode")
	ErrMissingSingleConfig   = errors.New("single retrieval config is required")
	ErrMissingMultipleConfig = errors.New("multiple retrieval config is required")
	ErrMissingWeights        = errors.New("weights are required for weighted score reranking")
)

// SingleConfig configures the agentic single strategy.
type SingleConfig struct {
	Model llm.ModelRef
}

// MultipleConfig configures the ranked multiple strategy.
type MultipleConfig struct {
	TopK            int
	ScoreThreshold  *float64
	RerankingEnable bool
	RerankingMode   RerankingMode
	RerankingModel  *llm.ModelRef
	Weights         *Weights
}

// Weights is the weighted-score specification: how much each retrieval
// channel contributes to the merged score.
type Weights struct {
	VectorSetting  VectorSetting
	KeywordSetting KeywordSetting
}

type VectorSetting struct {
	VectorWeight      float64
	EmbeddingProvider string
	EmbeddingModel    string
}

type KeywordSetting struct {
	KeywordWeight float64
}

// Config selects exactly one strategy; the other sub-config must be nil.
type Config struct {
	Mode     RetrievalMode
	Single   *SingleConfig
	Multiple *MultipleConfig
}

// Executor validates strategy configuration and delegates one retrieval call
// to the engine. It never ranks or deduplicates results itself.
type Executor struct {
	engine Engine
	models llm.ModelManager
	logger logger.ILogger
}

func NewExecutor(engine Engine, models llm.ModelManager, log logger.ILogger) *Executor {
	return &Executor{
		engine: engine,
		models: models,
		logger: log,
	}
}

func (e *Executor) Execute(
	ctx context.Context,
	tenantId uuid.UUID,
	collections []*entity.Collection,
	query string,
	cfg Config,
	filter *metadata.ResolvedFilter,
) ([]*ResultItem, error) {

	switch cfg.Mode {
	case ModeSingle:
		return e.executeSingle(ctx, tenantId, collections, query, cfg.Single, filter)
	case ModeMultiple:
		return e.executeMultiple(ctx, tenantId, collections, query, cfg.Multiple, filter)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidRetrievalMode, cfg.Mode)
	}
}

func (e *Executor) executeSingle(
	ctx context.Context,
	tenantId uuid.UUID,
	collections []*entity.Collection,
	query string,
	cfg *SingleConfig,
	filter *metadata.ResolvedFilter,
) ([]*ResultItem, error) {

	if cfg == nil {
		return nil, ErrMissingSingleConfig
	}

	model, err := e.models.GetModelInstance(ctx, tenantId, cfg.Model.Provider, cfg.Model.Name)
	if err != nil {
		return nil, err
	}

	planning := PlanningReactRouter
	if model.SupportsToolCall() {
		planning = PlanningRouter
	}

	return e.engine.SingleRetrieve(ctx, SingleParams{
		TenantId:         tenantId,
		Collections:      collections,
		Query:            query,
		Model:            model,
		PlanningStrategy: planning,
		Filter:           filter,
	})
}

func (e *Executor) executeMultiple(
	ctx context.Context,
	tenantId uuid.UUID,
	collections []*entity.Collection,
	query string,
	cfg *MultipleConfig,
	filter *metadata.ResolvedFilter,
) ([]*ResultItem, error) {

	if cfg == nil {
		return nil, ErrMissingMultipleConfig
	}

	var rerankingModel *llm.ModelRef
	var weights *Weights
	switch cfg.RerankingMode {
	case RerankingModel:
		rerankingModel = cfg.RerankingModel
	case RerankingWeightedScore:
		if cfg.Weights == nil {
			return nil, ErrMissingWeights
		}
		weights = cfg.Weights
	}

	threshold := 0.0
	if cfg.ScoreThreshold != nil {
		threshold = *cfg.ScoreThreshold
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	return e.engine.MultipleRetrieve(ctx, MultipleParams{
		TenantId:        tenantId,
		Collections:     collections,
		Query:           query,
		TopK:            topK,
		ScoreThreshold:  threshold,
		RerankingEnable: cfg.RerankingEnable,
		RerankingMode:   cfg.RerankingMode,
		RerankingModel:  rerankingModel,
		Weights:         weights,
		Filter:          filter,
	})
}
