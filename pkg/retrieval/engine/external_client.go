package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/pkg/retrieval/metadata"
)

// ExternalHit is one record returned by a federated knowledge endpoint.
type ExternalHit struct {
	Content  string                 `json:"content"`
	Score    float64                `json:"score"`
	Title    string                 `json:"title"`
	Metadata map[string]interface{} `json:"metadata"`
}

// ExternalClient fetches results from a collection's federated endpoint.
// The metadata condition travels with the request; external collections are
// narrowed remotely, not through the local document allowlist.
type ExternalClient interface {
	Retrieve(ctx context.Context, collection *entity.Collection, query string, topK int, scoreThreshold float64, condition *metadata.ConditionGroup) ([]ExternalHit, error)
}

type externalRetrievalSetting struct {
	TopK           int     `json:"top_k"`
	ScoreThreshold float64 `json:"score_threshold"`
}

type externalFilterCondition struct {
	Name               []string    `json:"name"`
	ComparisonOperator string      `json:"comparison_operator"`
	Value              interface{} `json:"value,omitempty"`
}

type externalMetadataCondition struct {
	LogicalOperator string                    `json:"logical_operator,omitempty"`
	Conditions      []externalFilterCondition `json:"conditions"`
}

type externalRetrievalRequest struct {
	KnowledgeId       string                     `json:"knowledge_id"`
	Query             string                     `json:"query"`
	RetrievalSetting  externalRetrievalSetting   `json:"retrieval_setting"`
	MetadataCondition *externalMetadataCondition `json:"metadata_condition,omitempty"`
}

// conditionPayload renders the resolved condition group in the wire shape the
// external knowledge API expects. An empty group is omitted entirely.
func conditionPayload(group *metadata.ConditionGroup) *externalMetadataCondition {
	if group == nil || len(group.Conditions) == 0 {
		return nil
	}
	out := &externalMetadataCondition{LogicalOperator: group.LogicalOperator}
	for _, cond := range group.Conditions {
		wire := externalFilterCondition{
			Name:               []string{cond.Name},
			ComparisonOperator: string(cond.Operator),
		}
		switch cond.Value.Kind() {
		case metadata.ValueText:
			wire.Value = cond.Value.Text()
		case metadata.ValueNumber:
			wire.Value = cond.Value.Number()
		}
		out.Conditions = append(out.Conditions, wire)
	}
	return out
}

type externalRetrievalResponse struct {
	Records []ExternalHit `json:"records"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// HTTPExternalClient speaks the external knowledge retrieval API: a POST to
// {endpoint}/retrieval carrying the bound knowledge id and the query.
type HTTPExternalClient struct {
	client *http.Client
}

func NewHTTPExternalClient(timeout time.Duration) *HTTPExternalClient {
	return &HTTPExternalClient{
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPExternalClient) Retrieve(ctx context.Context, collection *entity.Collection, query string, topK int, scoreThreshold float64, condition *metadata.ConditionGroup) ([]ExternalHit, error) {
	reqBody := externalRetrievalRequest{
		KnowledgeId: collection.ExternalKnowledgeId,
		Query:       query,
		RetrievalSetting: externalRetrievalSetting{
			TopK:           topK,
			ScoreThreshold: scoreThreshold,
		},
		MetadataCondition: conditionPayload(condition),
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/retrieval", collection.ExternalEndpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", collection.ExternalAPIKey))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("external knowledge request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("external knowledge api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed externalRetrievalResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("external knowledge api error: %s", parsed.Error.Message)
	}
	return parsed.Records, nil
}
