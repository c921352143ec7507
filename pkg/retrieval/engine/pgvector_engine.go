package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/internal/pkg/logger"
	"knowledge-retrieval-be/internal/repository/contract"
	"knowledge-retrieval-be/internal/repository/unitofwork"
	"knowledge-retrieval-be/pkg/embedding"
	"knowledge-retrieval-be/pkg/llm"
	"knowledge-retrieval-be/pkg/retrieval/metadata"
	"knowledge-retrieval-be/pkg/retrieval/strategy"
	"knowledge-retrieval-be/pkg/utils"

	"github.com/google/uuid"
)

const embeddingTaskQuery = "retrieval_query"

// PgVectorEngine retrieves from internally indexed collections through the
// pgvector segment index and from external collections through their
// federated endpoints.
type PgVectorEngine struct {
	uow      unitofwork.UnitOfWork
	embedder embedding.EmbeddingProvider
	external ExternalClient
	reranker Reranker
	logger   logger.ILogger
}

func NewPgVectorEngine(
	uow unitofwork.UnitOfWork,
	embedder embedding.EmbeddingProvider,
	external ExternalClient,
	reranker Reranker,
	log logger.ILogger,
) *PgVectorEngine {
	return &PgVectorEngine{
		uow:      uow,
		embedder: embedder,
		external: external,
		reranker: reranker,
		logger:   log,
	}
}

// SingleRetrieve asks the planning model to route the query to the one most
// relevant collection, then retrieves from it with default limits. A routing
// miss (no usable choice from the model) yields no results, not an error.
func (e *PgVectorEngine) SingleRetrieve(ctx context.Context, params strategy.SingleParams) ([]*strategy.ResultItem, error) {
	chosen := e.routeCollection(ctx, params)
	if chosen == nil {
		return nil, nil
	}

	if chosen.Provider == entity.CollectionProviderExternal {
		return e.retrieveExternal(ctx, chosen, params.Query, strategy.DefaultTopK, 0.0, params.Filter)
	}
	return e.retrieveInternal(ctx, chosen, params.Query, strategy.DefaultTopK, 0.0, nil, params.Filter)
}

// MultipleRetrieve queries every eligible collection, merges the candidates,
// optionally reranks, and truncates to the caller's top K.
func (e *PgVectorEngine) MultipleRetrieve(ctx context.Context, params strategy.MultipleParams) ([]*strategy.ResultItem, error) {
	var items []*strategy.ResultItem

	for _, coll := range params.Collections {
		if coll.Provider == entity.CollectionProviderExternal {
			hits, err := e.retrieveExternal(ctx, coll, params.Query, params.TopK, params.ScoreThreshold, params.Filter)
			if err != nil {
				return nil, err
			}
			items = append(items, hits...)
			continue
		}

		var weights *strategy.Weights
		if params.RerankingMode == strategy.RerankingWeightedScore {
			weights = params.Weights
		}
		hits, err := e.retrieveInternal(ctx, coll, params.Query, params.TopK, params.ScoreThreshold, weights, params.Filter)
		if err != nil {
			return nil, err
		}
		items = append(items, hits...)
	}

	if params.RerankingEnable && params.RerankingMode == strategy.RerankingModel && e.reranker != nil && params.RerankingModel != nil {
		return e.rerank(ctx, params.RerankingModel.Name, params.Query, items, params.TopK, params.ScoreThreshold)
	}

	sortByScore(items)
	if len(items) > params.TopK {
		items = items[:params.TopK]
	}
	return items, nil
}

// retrieveInternal runs the vector channel against one collection, adding the
// keyword channel when weighted scoring is configured. A filter allowlist that
// matched zero documents short-circuits to no results.
func (e *PgVectorEngine) retrieveInternal(
	ctx context.Context,
	coll *entity.Collection,
	query string,
	topK int,
	threshold float64,
	weights *strategy.Weights,
	filter *metadata.ResolvedFilter,
) ([]*strategy.ResultItem, error) {

	allowedDocs, constrained := filter.AllowedDocumentIDs(coll.Id)
	if constrained && len(allowedDocs) == 0 {
		return nil, nil
	}
	if !constrained {
		allowedDocs = nil
	}

	resp, err := e.embedder.Generate(query, embeddingTaskQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVector := resp.Embedding.Values

	collectionIds := []uuid.UUID{coll.Id}
	vectorHits, err := e.uow.SegmentRepository().SearchSimilarWithScore(ctx, queryVector, topK, collectionIds, threshold, allowedDocs)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	if weights == nil {
		return internalItems(vectorHits), nil
	}

	keywordHits, err := e.uow.SegmentRepository().SearchKeywordWithScore(ctx, query, topK, collectionIds, allowedDocs)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	merged := mergeWeighted(vectorHits, keywordHits, weights)
	filtered := merged[:0]
	for _, hit := range merged {
		if hit.Score >= threshold {
			filtered = append(filtered, hit)
		}
	}
	return internalItems(filtered), nil
}

// retrieveExternal forwards the query and the metadata condition to the
// collection's federated endpoint; the remote side owns the narrowing.
func (e *PgVectorEngine) retrieveExternal(ctx context.Context, coll *entity.Collection, query string, topK int, threshold float64, filter *metadata.ResolvedFilter) ([]*strategy.ResultItem, error) {
	var condition *metadata.ConditionGroup
	if filter != nil {
		condition = filter.Condition
	}
	hits, err := e.external.Retrieve(ctx, coll, query, topK, threshold, condition)
	if err != nil {
		return nil, fmt.Errorf("external retrieval for collection %s: %w", coll.Id, err)
	}

	items := make([]*strategy.ResultItem, 0, len(hits))
	for _, hit := range hits {
		score := hit.Score
		bag := make(map[string]interface{}, len(hit.Metadata)+3)
		for k, v := range hit.Metadata {
			bag[k] = v
		}
		bag["collection_id"] = coll.Id.String()
		bag["collection_name"] = coll.Name
		bag["title"] = hit.Title

		items = append(items, &strategy.ResultItem{
			Provider: strategy.ProviderExternal,
			Content:  hit.Content,
			Score:    &score,
			Metadata: bag,
		})
	}
	return items, nil
}

// routeCollection asks the planning model which collection should answer the
// query. Router-capable models get a terse JSON instruction; the ReAct
// variant reasons first and answers last. Either way the reply must contain a
// JSON object with a collection_id.
func (e *PgVectorEngine) routeCollection(ctx context.Context, params strategy.SingleParams) *entity.Collection {
	byId := make(map[string]*entity.Collection, len(params.Collections))
	var lines []string
	for _, coll := range params.Collections {
		byId[coll.Id.String()] = coll
		lines = append(lines, fmt.Sprintf("- id: %s | name: %s | description: %s", coll.Id, coll.Name, coll.Description))
	}
	if len(byId) == 1 {
		for _, coll := range byId {
			return coll
		}
	}

	system := "You route user queries to the single most relevant knowledge collection. " +
		"Reply with a JSON object of the form {\"collection_id\": \"<id>\"} and nothing else."
	if params.PlanningStrategy == strategy.PlanningReactRouter {
		system = "You route user queries to the single most relevant knowledge collection. " +
			"Think step by step about which collection fits, then finish your reply with a JSON object " +
			"of the form {\"collection_id\": \"<id>\"}."
	}

	history := []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: fmt.Sprintf("Collections:\n%s\n\nQuery: %s", strings.Join(lines, "\n"), params.Query)},
	}

	reply, err := params.Model.Client.Chat(ctx, history, llm.WithTemperature(0.2))
	if err != nil {
		e.logger.Warn("engine", "collection routing failed", map[string]interface{}{"error": err.Error()})
		return nil
	}

	parsed, err := utils.ParseJSONMarkdown(reply)
	if err != nil {
		e.logger.Warn("engine", "unparseable routing reply", map[string]interface{}{"reply": reply})
		return nil
	}
	collectionId, _ := parsed["collection_id"].(string)
	return byId[collectionId]
}

func (e *PgVectorEngine) rerank(ctx context.Context, model, query string, items []*strategy.ResultItem, topK int, threshold float64) ([]*strategy.ResultItem, error) {
	if len(items) == 0 {
		return nil, nil
	}

	documents := make([]string, len(items))
	for i, item := range items {
		documents[i] = item.Content
	}
	ranked, err := e.reranker.Rerank(ctx, model, query, documents, topK)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	var out []*strategy.ResultItem
	for _, doc := range ranked {
		if doc.Index < 0 || doc.Index >= len(items) {
			continue
		}
		if doc.Score < threshold {
			continue
		}
		item := items[doc.Index]
		score := doc.Score
		item.Score = &score
		out = append(out, item)
	}
	return out, nil
}

func internalItems(hits []*contract.ScoredSegment) []*strategy.ResultItem {
	items := make([]*strategy.ResultItem, 0, len(hits))
	for _, hit := range hits {
		score := hit.Score
		items = append(items, &strategy.ResultItem{
			Provider:  strategy.ProviderInternal,
			SegmentId: hit.Segment.Id,
			Content:   hit.Segment.Content,
			Score:     &score,
		})
	}
	return items
}

// mergeWeighted combines the two channels per segment. Keyword ranks are
// unbounded, so each channel is normalized by its own maximum before the
// weights apply.
func mergeWeighted(vector, keyword []*contract.ScoredSegment, weights *strategy.Weights) []*contract.ScoredSegment {
	vectorMax := maxScore(vector)
	keywordMax := maxScore(keyword)

	type partial struct {
		segment *entity.DocumentSegment
		score   float64
	}
	order := make([]uuid.UUID, 0, len(vector)+len(keyword))
	bySegment := make(map[uuid.UUID]*partial)

	add := func(hits []*contract.ScoredSegment, max, weight float64) {
		for _, hit := range hits {
			normalized := 0.0
			if max > 0 {
				normalized = hit.Score / max
			}
			p, ok := bySegment[hit.Segment.Id]
			if !ok {
				p = &partial{segment: hit.Segment}
				bySegment[hit.Segment.Id] = p
				order = append(order, hit.Segment.Id)
			}
			p.score += weight * normalized
		}
	}
	add(vector, vectorMax, weights.VectorSetting.VectorWeight)
	add(keyword, keywordMax, weights.KeywordSetting.KeywordWeight)

	merged := make([]*contract.ScoredSegment, 0, len(order))
	for _, id := range order {
		p := bySegment[id]
		merged = append(merged, &contract.ScoredSegment{Segment: p.segment, Score: p.score})
	}
	return merged
}

func maxScore(hits []*contract.ScoredSegment) float64 {
	max := 0.0
	for _, hit := range hits {
		if hit.Score > max {
			max = hit.Score
		}
	}
	return max
}

func sortByScore(items []*strategy.ResultItem) {
	sort.SliceStable(items, func(i, j int) bool {
		var si, sj float64
		if items[i].Score != nil {
			si = *items[i].Score
		}
		if items[j].Score != nil {
			sj = *items[j].Score
		}
		return si > sj
	})
}
