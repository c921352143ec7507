package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/pkg/retrieval/metadata"

	"github.com/google/uuid"
)

func externalCollectionFor(endpoint string) *entity.Collection {
	return &entity.Collection{
		Id:                  uuid.New(),
		Name:                "partner-kb",
		Provider:            entity.CollectionProviderExternal,
		ExternalEndpoint:    endpoint,
		ExternalAPIKey:      "secret-key",
		ExternalKnowledgeId: "kb-42",
	}
}

func TestHTTPExternalClientRetrieve(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody externalRetrievalRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(externalRetrievalResponse{
			Records: []ExternalHit{
				{Content: "answer", Score: 0.9, Title: "faq.md"},
			},
		})
	}))
	defer srv.Close()

	client := NewHTTPExternalClient(5 * time.Second)
	hits, err := client.Retrieve(context.Background(), externalCollectionFor(srv.URL), "refund window", 3, 0.4, nil)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	if gotPath != "/retrieval" {
		t.Errorf("path = %q, want /retrieval", gotPath)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody.KnowledgeId != "kb-42" || gotBody.Query != "refund window" {
		t.Errorf("request body = %+v", gotBody)
	}
	if gotBody.RetrievalSetting.TopK != 3 || gotBody.RetrievalSetting.ScoreThreshold != 0.4 {
		t.Errorf("retrieval_setting = %+v", gotBody.RetrievalSetting)
	}
	if gotBody.MetadataCondition != nil {
		t.Errorf("metadata_condition = %+v, want omitted", gotBody.MetadataCondition)
	}

	if len(hits) != 1 || hits[0].Content != "answer" || hits[0].Score != 0.9 {
		t.Errorf("hits = %+v", hits)
	}
}

func TestHTTPExternalClientForwardsMetadataCondition(t *testing.T) {
	var gotBody externalRetrievalRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(externalRetrievalResponse{})
	}))
	defer srv.Close()

	condition := &metadata.ConditionGroup{
		LogicalOperator: metadata.LogicalAnd,
		Conditions: []metadata.FilterCondition{
			{Name: "category", Operator: metadata.OpEquals, Value: metadata.TextValue("legal")},
			{Name: "published_year", Operator: metadata.OpGreaterThan, Value: metadata.NumberValue(2020)},
			{Name: "reviewed_at", Operator: metadata.OpNotEmpty, Value: metadata.AbsentValue()},
		},
	}

	client := NewHTTPExternalClient(5 * time.Second)
	if _, err := client.Retrieve(context.Background(), externalCollectionFor(srv.URL), "q", 2, 0, condition); err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	got := gotBody.MetadataCondition
	if got == nil {
		t.Fatal("metadata_condition missing from request body")
	}
	if got.LogicalOperator != "and" {
		t.Errorf("logical_operator = %q, want and", got.LogicalOperator)
	}
	if len(got.Conditions) != 3 {
		t.Fatalf("conditions = %d, want 3", len(got.Conditions))
	}
	first := got.Conditions[0]
	if len(first.Name) != 1 || first.Name[0] != "category" || first.ComparisonOperator != "=" || first.Value != "legal" {
		t.Errorf("first condition = %+v", first)
	}
	second := got.Conditions[1]
	if second.ComparisonOperator != ">" || second.Value != 2020.0 {
		t.Errorf("second condition = %+v", second)
	}
	third := got.Conditions[2]
	if third.ComparisonOperator != "not empty" || third.Value != nil {
		t.Errorf("third condition = %+v", third)
	}
}

func TestHTTPExternalClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "knowledge base not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewHTTPExternalClient(5 * time.Second)
	_, err := client.Retrieve(context.Background(), externalCollectionFor(srv.URL), "q", 2, 0, nil)
	if err == nil {
		t.Fatal("Retrieve() succeeded on a 404 response")
	}
}

func TestHTTPExternalClientErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"records": [], "error": {"message": "invalid api key"}}`))
	}))
	defer srv.Close()

	client := NewHTTPExternalClient(5 * time.Second)
	_, err := client.Retrieve(context.Background(), externalCollectionFor(srv.URL), "q", 2, 0, nil)
	if err == nil {
		t.Fatal("Retrieve() succeeded despite an error envelope")
	}
}
