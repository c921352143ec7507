package dto

import (
	"github.com/google/uuid"
)

// MetadataFilterCondition is one authored filter condition in manual mode.
type MetadataFilterCondition struct {
	Name               string      `json:"name" validate:"required"`
	ComparisonOperator string      `json:"comparison_operator" validate:"required"`
	Value              interface{} `json:"value"`
}

type MetadataFilterRequest struct {
	Mode            string                    `json:"mode" validate:"required,oneof=disabled manual automatic"`
	LogicalOperator string                    `json:"logical_operator" validate:"omitempty,oneof=and or"`
	Conditions      []MetadataFilterCondition `json:"conditions" validate:"dive"`
	ModelProvider   string                    `json:"model_provider"`
	ModelName       string                    `json:"model_name"`
}

type WeightsRequest struct {
	VectorWeight      float64 `json:"vector_weight"`
	KeywordWeight     float64 `json:"keyword_weight"`
	EmbeddingProvider string  `json:"embedding_provider"`
	EmbeddingModel    string  `json:"embedding_model"`
}

type SingleStrategyRequest struct {
	ModelProvider string `json:"model_provider" validate:"required"`
	ModelName     string `json:"model_name" validate:"required"`
}

type MultipleStrategyRequest struct {
	TopK            int             `json:"top_k" validate:"omitempty,min=1"`
	ScoreThreshold  *float64        `json:"score_threshold"`
	RerankingEnable bool            `json:"reranking_enable"`
	RerankingMode   string          `json:"reranking_mode" validate:"omitempty,oneof=reranking_model weighted_score"`
	RerankingModel  string          `json:"reranking_model"`
	Weights         *WeightsRequest `json:"weights"`
}

type RetrieveRequest struct {
	TenantId      uuid.UUID                `json:"tenant_id" validate:"required"`
	Query         string                   `json:"query" validate:"required"`
	CollectionIds []uuid.UUID              `json:"collection_ids" validate:"required,min=1"`
	RetrievalMode string                   `json:"retrieval_mode" validate:"required,oneof=single multiple"`
	Single        *SingleStrategyRequest   `json:"single"`
	Multiple      *MultipleStrategyRequest `json:"multiple"`
	Filter        *MetadataFilterRequest   `json:"metadata_filter"`
}

type RetrievedSourceResponse struct {
	Metadata map[string]interface{} `json:"metadata"`
	Title    string                 `json:"title"`
	Content  string                 `json:"content"`
}

type RetrieveResponse struct {
	Result []RetrievedSourceResponse `json:"result"`
}

// RateLimitAuditMessage is the payload carried on the audit topic.
type RateLimitAuditMessage struct {
	TenantId         uuid.UUID `json:"tenant_id"`
	SubscriptionPlan string    `json:"subscription_plan"`
	Operation        string    `json:"operation"`
	OccurredAt       string    `json:"occurred_at"`
}
