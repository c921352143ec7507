package metadata

import (
	"context"

	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/internal/repository/contract"
	"knowledge-retrieval-be/internal/repository/specification"
	"knowledge-retrieval-be/pkg/llm"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type fakeLLMClient struct {
	reply       string
	err         error
	lastHistory []llm.Message
}

func (c *fakeLLMClient) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	c.lastHistory = history
	return c.reply, c.err
}

func (c *fakeLLMClient) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return c.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

type fakeModelManager struct {
	instance *llm.ModelInstance
	err      error
}

func (m *fakeModelManager) GetModelInstance(context.Context, uuid.UUID, string, string) (*llm.ModelInstance, error) {
	return m.instance, m.err
}

// fakeUow serves canned data and records which repositories were hit.
type fakeUow struct {
	documents    []*entity.Document
	fieldNames   []string
	documentsErr error

	documentQueries int
}

func (u *fakeUow) Begin(context.Context) error { return nil }
func (u *fakeUow) Commit() error               { return nil }
func (u *fakeUow) Rollback() error             { return nil }

func (u *fakeUow) CollectionRepository() contract.CollectionRepository {
	return fakeCollectionRepo{}
}

func (u *fakeUow) DocumentRepository() contract.DocumentRepository {
	return &fakeDocumentRepo{uow: u}
}

func (u *fakeUow) SegmentRepository() contract.SegmentRepository {
	return fakeSegmentRepo{}
}

func (u *fakeUow) MetadataFieldRepository() contract.MetadataFieldRepository {
	return &fakeMetadataFieldRepo{uow: u}
}

func (u *fakeUow) RateLimitLogRepository() contract.RateLimitLogRepository {
	return fakeRateLimitLogRepo{}
}

type fakeDocumentRepo struct {
	uow *fakeUow
}

func (r *fakeDocumentRepo) Create(context.Context, *entity.Document) error { return nil }
func (r *fakeDocumentRepo) Update(context.Context, *entity.Document) error { return nil }
func (r *fakeDocumentRepo) Delete(context.Context, uuid.UUID) error        { return nil }

func (r *fakeDocumentRepo) FindOne(context.Context, ...specification.Specification) (*entity.Document, error) {
	return nil, nil
}

func (r *fakeDocumentRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.Document, error) {
	r.uow.documentQueries++
	return r.uow.documents, r.uow.documentsErr
}

func (r *fakeDocumentRepo) Count(context.Context, ...specification.Specification) (int64, error) {
	return int64(len(r.uow.documents)), nil
}

type fakeMetadataFieldRepo struct {
	uow *fakeUow
}

func (r *fakeMetadataFieldRepo) Create(context.Context, *entity.MetadataField) error { return nil }
func (r *fakeMetadataFieldRepo) Delete(context.Context, uuid.UUID) error             { return nil }

func (r *fakeMetadataFieldRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.MetadataField, error) {
	return nil, nil
}

func (r *fakeMetadataFieldRepo) DistinctNames(context.Context, []uuid.UUID) ([]string, error) {
	return r.uow.fieldNames, nil
}

type fakeCollectionRepo struct{}

func (fakeCollectionRepo) Create(context.Context, *entity.Collection) error { return nil }
func (fakeCollectionRepo) Update(context.Context, *entity.Collection) error { return nil }
func (fakeCollectionRepo) Delete(context.Context, uuid.UUID) error          { return nil }

func (fakeCollectionRepo) FindOne(context.Context, ...specification.Specification) (*entity.Collection, error) {
	return nil, nil
}

func (fakeCollectionRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.Collection, error) {
	return nil, nil
}

func (fakeCollectionRepo) FindAvailable(context.Context, uuid.UUID, []uuid.UUID) ([]*entity.Collection, error) {
	return nil, nil
}

type fakeSegmentRepo struct{}

func (fakeSegmentRepo) Create(context.Context, *entity.DocumentSegment) error { return nil }
func (fakeSegmentRepo) Update(context.Context, *entity.DocumentSegment) error { return nil }
func (fakeSegmentRepo) Delete(context.Context, uuid.UUID) error               { return nil }

func (fakeSegmentRepo) FindOne(context.Context, ...specification.Specification) (*entity.DocumentSegment, error) {
	return nil, nil
}

func (fakeSegmentRepo) FindAll(context.Context, ...specification.Specification) ([]*entity.DocumentSegment, error) {
	return nil, nil
}

func (fakeSegmentRepo) SearchSimilarWithScore(context.Context, []float32, int, []uuid.UUID, float64, []uuid.UUID) ([]*contract.ScoredSegment, error) {
	return nil, nil
}

func (fakeSegmentRepo) SearchKeywordWithScore(context.Context, string, int, []uuid.UUID, []uuid.UUID) ([]*contract.ScoredSegment, error) {
	return nil, nil
}

type fakeRateLimitLogRepo struct{}

func (fakeRateLimitLogRepo) Create(context.Context, *entity.RateLimitLog) error { return nil }
