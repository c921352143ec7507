package strategy

import (
	"context"

	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/pkg/llm"
	"knowledge-retrieval-be/pkg/retrieval/metadata"

	"github.com/google/uuid"
)

// Provider kinds of result items.
const (
	ProviderInternal = "internal"
	ProviderExternal = "external"
)

// PlanningStrategy picks how the single-collection agent routes the query.
type PlanningStrategy string

const (
	PlanningRouter      PlanningStrategy = "router"
	PlanningReactRouter PlanningStrategy = "react_router"
)

// ResultItem is one raw scored hit returned by a retrieval engine, before
// fusion. Internal items reference an indexed segment; external items carry
// everything in the metadata bag.
type ResultItem struct {
	Provider  string
	SegmentId uuid.UUID
	Content   string
	Score     *float64
	Metadata  map[string]interface{}
}

// SingleParams drive the agentic single-collection strategy.
type SingleParams struct {
	TenantId         uuid.UUID
	Collections      []*entity.Collection
	Query            string
	Model            *llm.ModelInstance
	PlanningStrategy PlanningStrategy
	Filter           *metadata.ResolvedFilter
}

// MultipleParams drive the ranked multi-collection strategy.
type MultipleParams struct {
	TenantId        uuid.UUID
	Collections     []*entity.Collection
	Query           string
	TopK            int
	ScoreThreshold  float64
	RerankingEnable bool
	RerankingMode   RerankingMode
	RerankingModel  *llm.ModelRef
	Weights         *Weights
	Filter          *metadata.ResolvedFilter
}

// Engine executes retrieval against the indexed and federated collections.
// Implementations own the search and reranking math; the executor only
// shapes their inputs.
type Engine interface {
	SingleRetrieve(ctx context.Context, params SingleParams) ([]*ResultItem, error)
	MultipleRetrieve(ctx context.Context, params MultipleParams) ([]*ResultItem, error)
}
