package factory

import (
	"context"
	"fmt"

	"knowledge-retrieval-be/pkg/llm"

	"github.com/google/uuid"
)

// Model status values in the catalog.
const (
	ModelStatusActive        = "active"
	ModelStatusNoConfigure   = "no_configure"
	ModelStatusNoPermission  = "no_permission"
	ModelStatusQuotaExceeded = "quota_exceeded"
)

// CatalogEntry describes one configured model.
type CatalogEntry struct {
	Provider string
	Model    string
	Status   string
	Features []llm.ModelFeature
	BaseURL  string
	APIKey   string
}

// CatalogModelManager resolves model references against a static catalog
// built from configuration at startup.
type CatalogModelManager struct {
	entries map[string]CatalogEntry
}

func NewCatalogModelManager(entries []CatalogEntry) *CatalogModelManager {
	indexed := make(map[string]CatalogEntry, len(entries))
	for _, e := range entries {
		indexed[catalogKey(e.Provider, e.Model)] = e
	}
	return &CatalogModelManager{entries: indexed}
}

func catalogKey(provider, model string) string {
	return provider + "/" + model
}

func (m *CatalogModelManager) GetModelInstance(ctx context.Context, tenantId uuid.UUID, provider, model string) (*llm.ModelInstance, error) {
	entry, ok := m.entries[catalogKey(provider, model)]
	if !ok {
		return nil, fmt.Errorf("model %s: %w", model, llm.ErrModelNotExist)
	}

	switch entry.Status {
	case ModelStatusNoConfigure:
		return nil, fmt.Errorf("model %s: %w", model, llm.ErrCredentialsNotInitialized)
	case ModelStatusNoPermission:
		return nil, fmt.Errorf("model %s: %w", model, llm.ErrModelNotSupported)
	case ModelStatusQuotaExceeded:
		return nil, fmt.Errorf("provider %s: %w", provider, llm.ErrProviderQuotaExceeded)
	}

	client, err := NewLLMProvider(entry.Provider, entry.Model, entry.BaseURL, entry.APIKey)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", model, llm.ErrModelNotExist)
	}

	return &llm.ModelInstance{
		Provider: entry.Provider,
		Model:    entry.Model,
		Features: entry.Features,
		Client:   client,
	}, nil
}
