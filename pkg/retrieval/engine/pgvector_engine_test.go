package engine

import (
	"context"
	"math"
	"testing"

	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/internal/repository/contract"
	"knowledge-retrieval-be/pkg/llm"
	"knowledge-retrieval-be/pkg/retrieval/metadata"
	"knowledge-retrieval-be/pkg/retrieval/strategy"

	"github.com/google/uuid"
)

func newEngine(uow *fakeUow, embedder *fakeEmbedder, external *fakeExternalClient, reranker *fakeReranker) *PgVectorEngine {
	return NewPgVectorEngine(uow, embedder, external, reranker, nopLogger{})
}

func internalCollection(name string) *entity.Collection {
	return &entity.Collection{Id: uuid.New(), Name: name, Provider: entity.CollectionProviderInternal}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMultipleRetrieveInternalSortsAndTruncates(t *testing.T) {
	segments := &fakeSegmentRepo{
		vectorHits: []*contract.ScoredSegment{
			segmentHit("low", 0.3),
			segmentHit("high", 0.9),
			segmentHit("mid", 0.6),
		},
	}
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2}}
	e := newEngine(&fakeUow{segments: segments}, embedder, &fakeExternalClient{}, nil)

	items, err := e.MultipleRetrieve(context.Background(), strategy.MultipleParams{
		Collections: []*entity.Collection{internalCollection("policies")},
		Query:       "refund window",
		TopK:        2,
	})
	if err != nil {
		t.Fatalf("MultipleRetrieve() error = %v", err)
	}
	if embedder.calls != 1 {
		t.Errorf("embedder calls = %d, want 1", embedder.calls)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Content != "high" || items[1].Content != "mid" {
		t.Errorf("order = [%q, %q], want descending by score", items[0].Content, items[1].Content)
	}
	if items[0].Provider != strategy.ProviderInternal {
		t.Errorf("Provider = %q", items[0].Provider)
	}
	if len(segments.vectorCalls) != 1 {
		t.Fatalf("vector searches = %d, want 1", len(segments.vectorCalls))
	}
	if segments.vectorCalls[0].limit != 2 {
		t.Errorf("search limit = %d, want 2", segments.vectorCalls[0].limit)
	}
	if len(segments.keywordCalls) != 0 {
		t.Errorf("keyword searches = %d, want 0 without weighted scoring", len(segments.keywordCalls))
	}
}

func TestMultipleRetrieveForwardsAllowlist(t *testing.T) {
	coll := internalCollection("policies")
	allowed := []uuid.UUID{uuid.New(), uuid.New()}
	segments := &fakeSegmentRepo{}
	e := newEngine(&fakeUow{segments: segments}, &fakeEmbedder{vector: []float32{0.5}}, &fakeExternalClient{}, nil)

	_, err := e.MultipleRetrieve(context.Background(), strategy.MultipleParams{
		Collections: []*entity.Collection{coll},
		Query:       "q",
		TopK:        4,
		Filter: &metadata.ResolvedFilter{
			DocumentIDsByCollection: map[uuid.UUID][]uuid.UUID{coll.Id: allowed},
		},
	})
	if err != nil {
		t.Fatalf("MultipleRetrieve() error = %v", err)
	}
	if len(segments.vectorCalls) != 1 {
		t.Fatalf("vector searches = %d, want 1", len(segments.vectorCalls))
	}
	got := segments.vectorCalls[0].documentIds
	if len(got) != len(allowed) || got[0] != allowed[0] || got[1] != allowed[1] {
		t.Errorf("documentIds = %v, want %v", got, allowed)
	}
}

func TestMultipleRetrieveConstrainedEmptySkipsCollection(t *testing.T) {
	coll := internalCollection("policies")
	segments := &fakeSegmentRepo{}
	embedder := &fakeEmbedder{vector: []float32{0.5}}
	e := newEngine(&fakeUow{segments: segments}, embedder, &fakeExternalClient{}, nil)

	items, err := e.MultipleRetrieve(context.Background(), strategy.MultipleParams{
		Collections: []*entity.Collection{coll},
		Query:       "q",
		TopK:        4,
		// Constraint applies but nothing matched: zero eligible documents.
		Filter: &metadata.ResolvedFilter{
			DocumentIDsByCollection: map[uuid.UUID][]uuid.UUID{},
		},
	})
	if err != nil {
		t.Fatalf("MultipleRetrieve() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(items))
	}
	if embedder.calls != 0 {
		t.Errorf("embedder calls = %d, want 0 when nothing is eligible", embedder.calls)
	}
	if len(segments.vectorCalls) != 0 {
		t.Errorf("vector searches = %d, want 0", len(segments.vectorCalls))
	}
}

func TestMultipleRetrieveWeightedMerge(t *testing.T) {
	a := segmentHit("a", 0.8)
	b := segmentHit("b", 0.4)
	bKeyword := &contract.ScoredSegment{Segment: b.Segment, Score: 100}
	c := segmentHit("c", 50)

	segments := &fakeSegmentRepo{
		vectorHits:  []*contract.ScoredSegment{a, b},
		keywordHits: []*contract.ScoredSegment{bKeyword, c},
	}
	e := newEngine(&fakeUow{segments: segments}, &fakeEmbedder{vector: []float32{0.5}}, &fakeExternalClient{}, nil)

	items, err := e.MultipleRetrieve(context.Background(), strategy.MultipleParams{
		Collections:    []*entity.Collection{internalCollection("policies")},
		Query:          "q",
		TopK:           10,
		ScoreThreshold: 0.2,
		RerankingMode:  strategy.RerankingWeightedScore,
		Weights: &strategy.Weights{
			VectorSetting:  strategy.VectorSetting{VectorWeight: 0.7},
			KeywordSetting: strategy.KeywordSetting{KeywordWeight: 0.3},
		},
	})
	if err != nil {
		t.Fatalf("MultipleRetrieve() error = %v", err)
	}
	if len(segments.keywordCalls) != 1 {
		t.Fatalf("keyword searches = %d, want 1", len(segments.keywordCalls))
	}

	// Channel maxima are 0.8 (vector) and 100 (keyword):
	//   a = 0.7*(0.8/0.8)            = 0.70
	//   b = 0.7*(0.4/0.8) + 0.3*1.0  = 0.65
	//   c = 0.3*(50/100)             = 0.15  -> below the 0.2 threshold
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2 (threshold drops c)", len(items))
	}
	byContent := map[string]float64{}
	for _, item := range items {
		byContent[item.Content] = *item.Score
	}
	if !almostEqual(byContent["a"], 0.7) {
		t.Errorf("score(a) = %v, want 0.7", byContent["a"])
	}
	if !almostEqual(byContent["b"], 0.65) {
		t.Errorf("score(b) = %v, want 0.65", byContent["b"])
	}
}

func TestMultipleRetrieveExternal(t *testing.T) {
	coll := &entity.Collection{
		Id:       uuid.New(),
		Name:     "partner-kb",
		Provider: entity.CollectionProviderExternal,
	}
	external := &fakeExternalClient{
		hits: []ExternalHit{
			{Content: "external answer", Score: 0.82, Title: "faq.md", Metadata: map[string]interface{}{"lang": "en"}},
		},
	}
	e := newEngine(&fakeUow{segments: &fakeSegmentRepo{}}, &fakeEmbedder{}, external, nil)

	items, err := e.MultipleRetrieve(context.Background(), strategy.MultipleParams{
		Collections:    []*entity.Collection{coll},
		Query:          "how?",
		TopK:           3,
		ScoreThreshold: 0.5,
	})
	if err != nil {
		t.Fatalf("MultipleRetrieve() error = %v", err)
	}
	if len(external.calls) != 1 {
		t.Fatalf("external calls = %d, want 1", len(external.calls))
	}
	call := external.calls[0]
	if call.topK != 3 || call.threshold != 0.5 || call.query != "how?" {
		t.Errorf("external call = %+v", call)
	}

	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	item := items[0]
	if item.Provider != strategy.ProviderExternal {
		t.Errorf("Provider = %q", item.Provider)
	}
	if *item.Score != 0.82 {
		t.Errorf("Score = %v", *item.Score)
	}
	if item.Metadata["collection_id"] != coll.Id.String() ||
		item.Metadata["collection_name"] != "partner-kb" ||
		item.Metadata["title"] != "faq.md" ||
		item.Metadata["lang"] != "en" {
		t.Errorf("metadata bag = %v", item.Metadata)
	}
}

func TestMultipleRetrieveForwardsConditionToExternal(t *testing.T) {
	coll := &entity.Collection{
		Id:       uuid.New(),
		Name:     "partner-kb",
		Provider: entity.CollectionProviderExternal,
	}
	external := &fakeExternalClient{}
	e := newEngine(&fakeUow{segments: &fakeSegmentRepo{}}, &fakeEmbedder{}, external, nil)

	condition := &metadata.ConditionGroup{
		LogicalOperator: metadata.LogicalAnd,
		Conditions: []metadata.FilterCondition{
			{Name: "category", Operator: metadata.OpEquals, Value: metadata.TextValue("legal")},
		},
	}
	_, err := e.MultipleRetrieve(context.Background(), strategy.MultipleParams{
		Collections: []*entity.Collection{coll},
		Query:       "q",
		TopK:        3,
		Filter:      &metadata.ResolvedFilter{Condition: condition},
	})
	if err != nil {
		t.Fatalf("MultipleRetrieve() error = %v", err)
	}
	if len(external.calls) != 1 {
		t.Fatalf("external calls = %d, want 1", len(external.calls))
	}
	if external.calls[0].condition != condition {
		t.Errorf("condition not forwarded to the external endpoint")
	}
}

func TestMultipleRetrieveModelReranking(t *testing.T) {
	segments := &fakeSegmentRepo{
		vectorHits: []*contract.ScoredSegment{
			segmentHit("first", 0.5),
			segmentHit("second", 0.4),
			segmentHit("third", 0.3),
		},
	}
	reranker := &fakeReranker{
		ranked: []RankedDocument{
			{Index: 2, Score: 0.95},
			{Index: 0, Score: 0.60},
			{Index: 1, Score: 0.10}, // below threshold
			{Index: 9, Score: 0.99}, // out of range, ignored
		},
	}
	e := newEngine(&fakeUow{segments: segments}, &fakeEmbedder{vector: []float32{0.5}}, &fakeExternalClient{}, reranker)

	items, err := e.MultipleRetrieve(context.Background(), strategy.MultipleParams{
		Collections:     []*entity.Collection{internalCollection("policies")},
		Query:           "q",
		TopK:            5,
		ScoreThreshold:  0.5,
		RerankingEnable: true,
		RerankingMode:   strategy.RerankingModel,
		RerankingModel:  &llm.ModelRef{Provider: "jina", Name: "jina-reranker-v2-base-multilingual"},
	})
	if err != nil {
		t.Fatalf("MultipleRetrieve() error = %v", err)
	}
	if reranker.calls != 1 {
		t.Fatalf("reranker calls = %d, want 1", reranker.calls)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Content != "third" || !almostEqual(*items[0].Score, 0.95) {
		t.Errorf("items[0] = %q (%v)", items[0].Content, *items[0].Score)
	}
	if items[1].Content != "first" || !almostEqual(*items[1].Score, 0.60) {
		t.Errorf("items[1] = %q (%v)", items[1].Content, *items[1].Score)
	}
}

func TestSingleRetrieveShortcutsLoneCollection(t *testing.T) {
	segments := &fakeSegmentRepo{
		vectorHits: []*contract.ScoredSegment{segmentHit("only", 0.7)},
	}
	client := &fakeLLMClient{reply: `{"collection_id": "ignored"}`}
	e := newEngine(&fakeUow{segments: segments}, &fakeEmbedder{vector: []float32{0.5}}, &fakeExternalClient{}, nil)

	items, err := e.SingleRetrieve(context.Background(), strategy.SingleParams{
		Collections: []*entity.Collection{internalCollection("policies")},
		Query:       "q",
		Model:       &llm.ModelInstance{Client: client},
	})
	if err != nil {
		t.Fatalf("SingleRetrieve() error = %v", err)
	}
	if client.calls != 0 {
		t.Errorf("model consulted %d times for a lone collection", client.calls)
	}
	if len(items) != 1 || items[0].Content != "only" {
		t.Errorf("items = %v", items)
	}
	if len(segments.vectorCalls) != 1 || segments.vectorCalls[0].limit != strategy.DefaultTopK {
		t.Errorf("vector calls = %+v, want one with the default limit", segments.vectorCalls)
	}
}

func TestSingleRetrieveRoutesViaModel(t *testing.T) {
	first := internalCollection("billing")
	second := internalCollection("policies")
	segments := &fakeSegmentRepo{
		vectorHits: []*contract.ScoredSegment{segmentHit("routed", 0.7)},
	}
	client := &fakeLLMClient{reply: "```json\n{\"collection_id\": \"" + second.Id.String() + "\"}\n```"}
	e := newEngine(&fakeUow{segments: segments}, &fakeEmbedder{vector: []float32{0.5}}, &fakeExternalClient{}, nil)

	items, err := e.SingleRetrieve(context.Background(), strategy.SingleParams{
		Collections:      []*entity.Collection{first, second},
		Query:            "what is the refund window?",
		Model:            &llm.ModelInstance{Client: client},
		PlanningStrategy: strategy.PlanningRouter,
	})
	if err != nil {
		t.Fatalf("SingleRetrieve() error = %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("model calls = %d, want 1", client.calls)
	}
	if len(client.lastHistory) != 2 || client.lastHistory[0].Role != "system" {
		t.Errorf("history = %+v", client.lastHistory)
	}
	if len(items) != 1 || items[0].Content != "routed" {
		t.Errorf("items = %v", items)
	}
	if segments.vectorCalls[0].collectionIds[0] != second.Id {
		t.Errorf("searched collection %v, want %v", segments.vectorCalls[0].collectionIds, second.Id)
	}
}

func TestSingleRetrieveRoutingMissYieldsNothing(t *testing.T) {
	first := internalCollection("billing")
	second := internalCollection("policies")

	tests := []struct {
		name  string
		reply string
	}{
		{name: "unparseable reply", reply: "I cannot decide."},
		{name: "unknown collection id", reply: `{"collection_id": "` + uuid.New().String() + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments := &fakeSegmentRepo{}
			client := &fakeLLMClient{reply: tt.reply}
			e := newEngine(&fakeUow{segments: segments}, &fakeEmbedder{vector: []float32{0.5}}, &fakeExternalClient{}, nil)

			items, err := e.SingleRetrieve(context.Background(), strategy.SingleParams{
				Collections: []*entity.Collection{first, second},
				Query:       "q",
				Model:       &llm.ModelInstance{Client: client},
			})
			if err != nil {
				t.Fatalf("SingleRetrieve() error = %v", err)
			}
			if items != nil {
				t.Errorf("items = %v, want nil on a routing miss", items)
			}
			if len(segments.vectorCalls) != 0 {
				t.Errorf("vector searches = %d, want 0", len(segments.vectorCalls))
			}
		})
	}
}
