package engine

import (
	"context"

	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/internal/repository/contract"
	"knowledge-retrieval-be/internal/repository/specification"
	"knowledge-retrieval-be/pkg/embedding"
	"knowledge-retrieval-be/pkg/llm"
	"knowledge-retrieval-be/pkg/retrieval/metadata"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (e *fakeEmbedder) Generate(string, string) (*embedding.EmbeddingResponse, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: e.vector},
	}, nil
}

type segmentSearchCall struct {
	collectionIds []uuid.UUID
	documentIds   []uuid.UUID
	limit         int
	threshold     float64
}

type fakeSegmentRepo struct {
	vectorHits  []*contract.ScoredSegment
	keywordHits []*contract.ScoredSegment

	vectorCalls  []segmentSearchCall
	keywordCalls []segmentSearchCall
}

func (r *fakeSegmentRepo) Create(context.Context, *entity.DocumentSegment) error { return nil }
func (r *fakeSegmentRepo) Update(context.Context, *entity.DocumentSegment) error { return nil }
func (r *fakeSegmentRepo) Delete(context.Context, uuid.UUID) error               { return nil }

func (r *fakeSegmentRepo) FindOne(context.Context, ...specification.Specification) (*entity.DocumentSegment, error) {
	return nil, nil
}

func (r *fakeSegmentRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.DocumentSegment, error) {
	return nil, nil
}

func (r *fakeSegmentRepo) SearchSimilarWithScore(_ context.Context, _ []float32, limit int, collectionIds []uuid.UUID, threshold float64, documentIds []uuid.UUID) ([]*contract.ScoredSegment, error) {
	r.vectorCalls = append(r.vectorCalls, segmentSearchCall{
		collectionIds: collectionIds,
		documentIds:   documentIds,
		limit:         limit,
		threshold:     threshold,
	})
	return r.vectorHits, nil
}

func (r *fakeSegmentRepo) SearchKeywordWithScore(_ context.Context, _ string, limit int, collectionIds []uuid.UUID, documentIds []uuid.UUID) ([]*contract.ScoredSegment, error) {
	r.keywordCalls = append(r.keywordCalls, segmentSearchCall{
		collectionIds: collectionIds,
		documentIds:   documentIds,
		limit:         limit,
	})
	return r.keywordHits, nil
}

type fakeUow struct {
	segments *fakeSegmentRepo
}

func (u *fakeUow) Begin(context.Context) error { return nil }
func (u *fakeUow) Commit() error               { return nil }
func (u *fakeUow) Rollback() error             { return nil }

func (u *fakeUow) CollectionRepository() contract.CollectionRepository       { return nil }
func (u *fakeUow) DocumentRepository() contract.DocumentRepository           { return nil }
func (u *fakeUow) SegmentRepository() contract.SegmentRepository             { return u.segments }
func (u *fakeUow) MetadataFieldRepository() contract.MetadataFieldRepository { return nil }
func (u *fakeUow) RateLimitLogRepository() contract.RateLimitLogRepository   { return nil }

type externalCall struct {
	collection *entity.Collection
	query      string
	topK       int
	threshold  float64
	condition  *metadata.ConditionGroup
}

type fakeExternalClient struct {
	hits  []ExternalHit
	err   error
	calls []externalCall
}

func (c *fakeExternalClient) Retrieve(_ context.Context, collection *entity.Collection, query string, topK int, threshold float64, condition *metadata.ConditionGroup) ([]ExternalHit, error) {
	c.calls = append(c.calls, externalCall{collection: collection, query: query, topK: topK, threshold: threshold, condition: condition})
	return c.hits, c.err
}

type fakeReranker struct {
	ranked []RankedDocument
	err    error
	calls  int
}

func (r *fakeReranker) Rerank(context.Context, string, string, []string, int) ([]RankedDocument, error) {
	r.calls++
	return r.ranked, r.err
}

type fakeLLMClient struct {
	reply       string
	err         error
	lastHistory []llm.Message
	calls       int
}

func (c *fakeLLMClient) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	c.calls++
	c.lastHistory = history
	return c.reply, c.err
}

func (c *fakeLLMClient) Generate(_ context.Context, _ string, _ ...llm.Option) (string, error) {
	return c.reply, c.err
}

func segmentHit(content string, score float64) *contract.ScoredSegment {
	return &contract.ScoredSegment{
		Segment: &entity.DocumentSegment{Id: uuid.New(), Content: content},
		Score:   score,
	}
}
