package fusion

import (
	"context"
	"fmt"
	"sort"

	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/internal/pkg/logger"
	"knowledge-retrieval-be/internal/repository/specification"
	"knowledge-retrieval-be/internal/repository/unitofwork"
	"knowledge-retrieval-be/pkg/retrieval/strategy"

	"github.com/google/uuid"
)

const (
	sourceKnowledge = "knowledge"
	retrieverFrom   = "api"
)

// SourceMetadata is the metadata block of a normalized retrieval result.
// Segment fields are populated for internally indexed documents only.
type SourceMetadata struct {
	Source         string                 `json:"_source"`
	CollectionId   string                 `json:"collection_id"`
	CollectionName string                 `json:"collection_name"`
	DocumentId     string                 `json:"document_id"`
	DocumentName   string                 `json:"document_name"`
	DataSourceType string                 `json:"data_source_type"`
	RetrieverFrom  string                 `json:"retriever_from"`
	Score          float64                `json:"score"`
	DocMetadata    map[string]interface{} `json:"doc_metadata,omitempty"`

	SegmentId            string `json:"segment_id,omitempty"`
	SegmentHitCount      int    `json:"segment_hit_count,omitempty"`
	SegmentWordCount     int    `json:"segment_word_count,omitempty"`
	SegmentPosition      int    `json:"segment_position,omitempty"`
	SegmentIndexNodeHash string `json:"segment_index_node_hash,omitempty"`

	Position int `json:"position"`
}

// RetrievedSource is one ranked output record. Immutable once built; the
// final Position is assigned after sorting.
type RetrievedSource struct {
	Metadata SourceMetadata `json:"metadata"`
	Title    string         `json:"title"`
	Content  string         `json:"content"`
}

// Ranker merges heterogeneous result items into one uniform ranked list.
type Ranker struct {
	logger logger.ILogger
}

func NewRanker(log logger.ILogger) *Ranker {
	return &Ranker{logger: log}
}

// Rank partitions raw items by provider kind, normalizes each into a
// RetrievedSource, sorts descending by score, and assigns 1-based positions.
//
// Equal scores keep encounter order (externals first, then internals, each in
// engine order): the sort is stable, so ranking is deterministic.
func (r *Ranker) Rank(ctx context.Context, uow unitofwork.UnitOfWork, items []*strategy.ResultItem) ([]*RetrievedSource, error) {
	var external, internal []*strategy.ResultItem
	for _, item := range items {
		switch item.Provider {
		case strategy.ProviderExternal:
			external = append(external, item)
		case strategy.ProviderInternal:
			internal = append(internal, item)
		}
	}

	sources := make([]*RetrievedSource, 0, len(items))
	for _, item := range external {
		sources = append(sources, buildExternalSource(item))
	}

	internalSources, err := r.buildInternalSources(ctx, uow, internal)
	if err != nil {
		return nil, err
	}
	sources = append(sources, internalSources...)

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Metadata.Score > sources[j].Metadata.Score
	})
	for i, source := range sources {
		source.Metadata.Position = i + 1
	}
	return sources, nil
}

func buildExternalSource(item *strategy.ResultItem) *RetrievedSource {
	title := stringFromBag(item.Metadata, "title")
	documentId := stringFromBag(item.Metadata, "document_id")
	if documentId == "" {
		documentId = title
	}

	return &RetrievedSource{
		Metadata: SourceMetadata{
			Source:         sourceKnowledge,
			CollectionId:   stringFromBag(item.Metadata, "collection_id"),
			CollectionName: stringFromBag(item.Metadata, "collection_name"),
			DocumentId:     documentId,
			DocumentName:   title,
			DataSourceType: "external",
			RetrieverFrom:  retrieverFrom,
			Score:          scoreOf(item),
			DocMetadata:    item.Metadata,
		},
		Title:   title,
		Content: item.Content,
	}
}

// buildInternalSources batch-resolves each item's segment/document/collection
// triple. Items whose owners no longer resolve (deleted or disabled since the
// search ran) are dropped silently; that race is expected, not an error.
func (r *Ranker) buildInternalSources(ctx context.Context, uow unitofwork.UnitOfWork, items []*strategy.ResultItem) ([]*RetrievedSource, error) {
	if len(items) == 0 {
		return nil, nil
	}

	segmentIds := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		segmentIds = append(segmentIds, item.SegmentId)
	}

	segments, err := uow.SegmentRepository().FindAll(ctx, specification.ByIDs{IDs: segmentIds})
	if err != nil {
		return nil, fmt.Errorf("resolve segments: %w", err)
	}
	segmentById := make(map[uuid.UUID]*entity.DocumentSegment, len(segments))
	documentIds := make([]uuid.UUID, 0, len(segments))
	collectionIds := make([]uuid.UUID, 0, len(segments))
	for _, seg := range segments {
		segmentById[seg.Id] = seg
		documentIds = append(documentIds, seg.DocumentId)
		collectionIds = append(collectionIds, seg.CollectionId)
	}

	documentById := make(map[uuid.UUID]*entity.Document)
	if len(documentIds) > 0 {
		documents, err := uow.DocumentRepository().FindAll(ctx,
			specification.ByIDs{IDs: documentIds},
			specification.DocumentEnabledNotArchived{},
		)
		if err != nil {
			return nil, fmt.Errorf("resolve documents: %w", err)
		}
		for _, doc := range documents {
			documentById[doc.Id] = doc
		}
	}

	collectionById := make(map[uuid.UUID]*entity.Collection)
	if len(collectionIds) > 0 {
		collections, err := uow.CollectionRepository().FindAll(ctx, specification.ByIDs{IDs: collectionIds})
		if err != nil {
			return nil, fmt.Errorf("resolve collections: %w", err)
		}
		for _, coll := range collections {
			collectionById[coll.Id] = coll
		}
	}

	var sources []*RetrievedSource
	for _, item := range items {
		segment, ok := segmentById[item.SegmentId]
		if !ok {
			continue
		}
		document, ok := documentById[segment.DocumentId]
		if !ok {
			continue
		}
		collection, ok := collectionById[segment.CollectionId]
		if !ok {
			continue
		}

		content := segment.Content
		if segment.Answer != "" {
			content = fmt.Sprintf("question:%s\nanswer:%s", segment.Content, segment.Answer)
		}

		sources = append(sources, &RetrievedSource{
			Metadata: SourceMetadata{
				Source:               sourceKnowledge,
				CollectionId:         collection.Id.String(),
				CollectionName:       collection.Name,
				DocumentId:           document.Id.String(),
				DocumentName:         document.Name,
				DataSourceType:       document.DataSourceType,
				RetrieverFrom:        retrieverFrom,
				Score:                scoreOf(item),
				DocMetadata:          document.DocMetadata,
				SegmentId:            segment.Id.String(),
				SegmentHitCount:      segment.HitCount,
				SegmentWordCount:     segment.WordCount,
				SegmentPosition:      segment.Position,
				SegmentIndexNodeHash: segment.IndexNodeHash,
			},
			Title:   document.Name,
			Content: content,
		})
	}
	return sources, nil
}

func scoreOf(item *strategy.ResultItem) float64 {
	if item.Score == nil {
		return 0.0
	}
	return *item.Score
}

func stringFromBag(bag map[string]interface{}, key string) string {
	if bag == nil {
		return ""
	}
	if v, ok := bag[key].(string); ok {
		return v
	}
	return ""
}
