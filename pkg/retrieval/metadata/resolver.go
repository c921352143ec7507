package metadata

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"knowledge-retrieval-be/internal/entity"
	"knowledge-retrieval-be/internal/pkg/logger"
	"knowledge-retrieval-be/internal/repository/specification"
	"knowledge-retrieval-be/internal/repository/unitofwork"
	"knowledge-retrieval-be/pkg/llm"

	"github.com/google/uuid"
)

// FilteringMode selects how the metadata filter is built.
type FilteringMode string

const (
	ModeDisabled  FilteringMode = "disabled"
	ModeManual    FilteringMode = "manual"
	ModeAutomatic FilteringMode = "automatic"
)

// Configuration errors surfaced as fatal input errors by the orchestrator.
var (
	ErrInvalidFilteringMode = errors.New("invalid metadata filtering mode")
	ErrMissingModelConfig   = errors.New("metadata model config is required")
	ErrInvalidTemplateValue = errors.New("invalid expected metadata value type")
)

// FilterConfig is the caller-supplied metadata filtering configuration.
type FilterConfig struct {
	Mode FilteringMode

	// Conditions holds the authored conditions in manual mode. In automatic
	// mode only its logical operator is consulted, defaulting to OR.
	Conditions *ConditionGroup

	// AutomaticModel references the extraction model, required in automatic
	// mode.
	AutomaticModel *llm.ModelRef
}

// VariablePool resolves template references inside authored condition values.
// It is owned by the calling workflow runtime.
type VariablePool interface {
	ConvertTemplate(ctx context.Context, value string) (interface{}, error)
}

// ResolvedFilter is the output of filter resolution.
//
// A nil DocumentIDsByCollection means no metadata constraint narrows the
// document set. A non-nil map constrains retrieval to the listed documents;
// collections missing from the map (or mapped to empty lists) have zero
// eligible documents. The two cases are deliberately distinct.
type ResolvedFilter struct {
	DocumentIDsByCollection map[uuid.UUID][]uuid.UUID

	// Condition carries the resolved group for federated endpoints, which
	// apply the metadata narrowing remotely instead of through the allowlist.
	Condition *ConditionGroup
}

// AllowedDocumentIDs returns the allowlist for one collection, and whether a
// constraint applies at all.
func (f *ResolvedFilter) AllowedDocumentIDs(collectionId uuid.UUID) ([]uuid.UUID, bool) {
	if f == nil || f.DocumentIDsByCollection == nil {
		return nil, false
	}
	return f.DocumentIDsByCollection[collectionId], true
}

var templateWhitespace = regexp.MustCompile(`[\r\n\t]+`)

// Resolver orchestrates manual and automatic metadata filter building.
type Resolver struct {
	manager   llm.ModelManager
	extractor *Extractor
	logger    logger.ILogger
}

func NewResolver(manager llm.ModelManager, extractor *Extractor, log logger.ILogger) *Resolver {
	return &Resolver{
		manager:   manager,
		extractor: extractor,
		logger:    log,
	}
}

// Resolve builds the metadata constraint for the given eligible collections.
func (r *Resolver) Resolve(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	tenantId uuid.UUID,
	collections []*entity.Collection,
	query string,
	cfg FilterConfig,
	vars VariablePool,
) (*ResolvedFilter, error) {

	switch cfg.Mode {
	case ModeDisabled:
		return &ResolvedFilter{}, nil
	case ModeManual:
		return r.resolveManual(ctx, uow, collections, cfg, vars)
	case ModeAutomatic:
		return r.resolveAutomatic(ctx, uow, tenantId, collections, query, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilteringMode, cfg.Mode)
	}
}

func (r *Resolver) resolveManual(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	collections []*entity.Collection,
	cfg FilterConfig,
	vars VariablePool,
) (*ResolvedFilter, error) {

	if cfg.Conditions == nil || len(cfg.Conditions.Conditions) == 0 {
		return &ResolvedFilter{}, nil
	}

	resolved := make([]FilterCondition, 0, len(cfg.Conditions.Conditions))
	for _, cond := range cfg.Conditions.Conditions {
		value := cond.Value
		if cond.Operator != OpEmpty && cond.Operator != OpNotEmpty && value.Kind() == ValueText {
			substituted, err := r.substitute(ctx, value.Text(), vars)
			if err != nil {
				return nil, err
			}
			value = substituted
		}
		resolved = append(resolved, FilterCondition{
			Name:     cond.Name,
			Operator: cond.Operator,
			Value:    value,
		})
	}

	group := &ConditionGroup{
		LogicalOperator: cfg.Conditions.LogicalOperator,
		Conditions:      resolved,
	}
	return r.materialize(ctx, uow, collections, group)
}

// substitute resolves template references in an authored text value and
// coerces the result: numbers stay numeric, strings are whitespace-normalized,
// anything else is rejected.
func (r *Resolver) substitute(ctx context.Context, raw string, vars VariablePool) (FilterValue, error) {
	if vars == nil {
		return TextValue(normalizeText(raw)), nil
	}

	substituted, err := vars.ConvertTemplate(ctx, raw)
	if err != nil {
		return AbsentValue(), fmt.Errorf("resolve condition value: %w", err)
	}

	switch v := substituted.(type) {
	case string:
		return TextValue(normalizeText(v)), nil
	case float64:
		return NumberValue(v), nil
	case int:
		return NumberValue(float64(v)), nil
	case int64:
		return NumberValue(float64(v)), nil
	case nil:
		return AbsentValue(), nil
	default:
		return AbsentValue(), fmt.Errorf("%w: %T", ErrInvalidTemplateValue, substituted)
	}
}

func normalizeText(s string) string {
	return strings.TrimSpace(templateWhitespace.ReplaceAllString(s, " "))
}

func (r *Resolver) resolveAutomatic(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	tenantId uuid.UUID,
	collections []*entity.Collection,
	query string,
	cfg FilterConfig,
) (*ResolvedFilter, error) {

	if cfg.AutomaticModel == nil {
		return nil, ErrMissingModelConfig
	}

	collectionIds := collectionIDs(collections)
	fields, err := uow.MetadataFieldRepository().DistinctNames(ctx, collectionIds)
	if err != nil {
		return nil, fmt.Errorf("load metadata fields: %w", err)
	}

	model, err := r.manager.GetModelInstance(ctx, tenantId, cfg.AutomaticModel.Provider, cfg.AutomaticModel.Name)
	if err != nil {
		return nil, err
	}

	conditions := r.extractor.Extract(ctx, model, fields, query)
	if len(conditions) == 0 {
		return &ResolvedFilter{}, nil
	}

	logicalOperator := LogicalOr
	if cfg.Conditions != nil && cfg.Conditions.LogicalOperator != "" {
		logicalOperator = cfg.Conditions.LogicalOperator
	}

	group := &ConditionGroup{
		LogicalOperator: logicalOperator,
		Conditions:      conditions,
	}
	return r.materialize(ctx, uow, collections, group)
}

// materialize compiles the condition group, loads the documents it matches,
// and groups their ids per collection.
func (r *Resolver) materialize(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	collections []*entity.Collection,
	group *ConditionGroup,
) (*ResolvedFilter, error) {

	compiled := CompileGroup(*group)
	if _, noop := compiled.(specification.NoOp); noop {
		// Every condition degenerated to a no-op; the group is kept for
		// downstream consumers but nothing narrows the document set.
		return &ResolvedFilter{Condition: group}, nil
	}

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByCollectionIDs{CollectionIDs: collectionIDs(collections)},
		specification.DocumentQueryable{},
		compiled,
	)
	if err != nil {
		return nil, fmt.Errorf("query filtered documents: %w", err)
	}

	// Present-but-empty map: the constraint exists and matched nothing.
	byCollection := make(map[uuid.UUID][]uuid.UUID)
	for _, doc := range documents {
		byCollection[doc.CollectionId] = append(byCollection[doc.CollectionId], doc.Id)
	}

	return &ResolvedFilter{
		DocumentIDsByCollection: byCollection,
		Condition:               group,
	}, nil
}

func collectionIDs(collections []*entity.Collection) []uuid.UUID {
	ids := make([]uuid.UUID, len(collections))
	for i, c := range collections {
		ids[i] = c.Id
	}
	return ids
}
