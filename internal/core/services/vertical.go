package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driven"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driving"
	"github.com/orbital-labs/corpus-cli/internal/logger"
)

// VerticalManager provisions the four-resource indexing pipeline for a
// prefix: data source, skillset, index, indexer, in that order.
//
// Apply is resumable, not transactional. Each resource is brought to its
// intended definition independently, so a call interrupted after resource
// k picks up where it left off on the next invocation with identical
// inputs.
type VerticalManager struct {
	builder  driven.DefinitionBuilder
	client   driven.ResourceClient
	indexers driven.IndexerClient
	records  driven.RecordStore
}

var _ driving.VerticalManager = (*VerticalManager)(nil)

// NewVerticalManager wires a definition builder and search clients over a
// record store used as the last-applied hash cache.
func NewVerticalManager(
	builder driven.DefinitionBuilder,
	client driven.ResourceClient,
	indexers driven.IndexerClient,
	records driven.RecordStore,
) *VerticalManager {
	return &VerticalManager{
		builder:  builder,
		client:   client,
		indexers: indexers,
		records:  records,
	}
}

// Apply creates or updates the vertical's resources in dependency order,
// then triggers one indexer run so freshly staged content is ingested
// without a separate step.
//
// Idempotency is hash-based: the intended definition is hashed and
// compared against the cached last-applied hash. A resource whose hash
// matches and which still exists live is left untouched. A failure on any
// resource aborts the remaining steps; resources already applied stay in
// place.
func (m *VerticalManager) Apply(ctx context.Context, cfg domain.VerticalConfig) ([]domain.ResourceState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	names := domain.DeriveNames(cfg.Prefix, cfg.Kind)
	definitions, err := m.builder.Build(cfg, names)
	if err != nil {
		return nil, fmt.Errorf("build definitions for %q: %w", cfg.Prefix, err)
	}

	states := make([]domain.ResourceState, 0, len(definitions))
	for _, definition := range definitions {
		state, err := m.applyOne(ctx, cfg.Prefix, definition)
		states = append(states, state)
		if err != nil {
			return states, fmt.Errorf("apply %s %q: %w", definition.Type, definition.Name, err)
		}
	}

	if err := m.indexers.Trigger(ctx, names.Indexer); err != nil {
		return states, fmt.Errorf("trigger indexer %q: %w", names.Indexer, err)
	}
	logger.Info("Applied vertical %q (%s) and triggered %s", cfg.Prefix, cfg.Kind, names.Indexer)

	return states, nil
}

// applyOne brings a single resource to its intended definition.
func (m *VerticalManager) applyOne(ctx context.Context, prefix string, definition driven.Definition) (domain.ResourceState, error) {
	state := domain.ResourceState{
		Type: definition.Type,
		Name: definition.Name,
	}

	hash, err := domain.DefinitionHash(definition.Body)
	if err != nil {
		state.Action = domain.ActionFailed
		state.Err = err
		return state, err
	}
	state.DefinitionHash = hash

	cached, err := m.records.GetResourceHash(ctx, prefix, definition.Type)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		state.Action = domain.ActionFailed
		state.Err = err
		return state, err
	}

	exists, err := m.exists(ctx, definition.Type, definition.Name)
	if err != nil {
		state.Action = domain.ActionFailed
		state.Err = err
		return state, err
	}

	if exists && cached == hash {
		logger.Debug("%s %q already matches intended definition", definition.Type, definition.Name)
		state.Action = domain.ActionUnchanged
		return state, nil
	}

	if err := m.client.Upsert(ctx, definition.Type, definition.Name, definition.Body); err != nil {
		state.Action = domain.ActionFailed
		state.Err = err
		return state, err
	}

	if err := m.records.SaveResourceHash(ctx, prefix, definition.Type, hash); err != nil {
		// The resource is live; a stale cache only costs one redundant
		// upsert next run.
		logger.Debug("Failed to cache hash for %s %q: %v", definition.Type, definition.Name, err)
	}

	if exists {
		state.Action = domain.ActionUpdated
	} else {
		state.Action = domain.ActionCreated
	}
	return state, nil
}

// exists checks live resource presence, distinguishing absence from a
// service failure.
func (m *VerticalManager) exists(ctx context.Context, typ domain.ResourceType, name string) (bool, error) {
	_, err := m.client.Get(ctx, typ, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Teardown deletes the vertical's resources in reverse dependency order.
//
// Deletions are attempted independently: a missing resource counts as
// already absent, and one failure does not stop the remaining deletions.
// A run with any failed deletion returns domain.ErrPartialFailure
// alongside the full result set.
func (m *VerticalManager) Teardown(ctx context.Context, prefix string, kind domain.VerticalKind) ([]domain.ResourceState, error) {
	if err := domain.ValidatePrefix(prefix); err != nil {
		return nil, err
	}

	names := domain.DeriveNames(prefix, kind)
	states := make([]domain.ResourceState, 0, len(domain.TeardownOrder))
	failed := 0

	for _, typ := range domain.TeardownOrder {
		name := names.Name(typ)
		state := domain.ResourceState{Type: typ, Name: name}

		err := m.client.Delete(ctx, typ, name)
		switch {
		case err == nil:
			state.Action = domain.ActionDeleted
		case errors.Is(err, domain.ErrNotFound):
			state.Action = domain.ActionAbsent
		default:
			state.Action = domain.ActionFailed
			state.Err = err
			failed++
		}

		if state.Action != domain.ActionFailed {
			if err := m.records.DeleteResourceHash(ctx, prefix, typ); err != nil {
				logger.Debug("Failed to drop cached hash for %s %q: %v", typ, name, err)
			}
		}
		states = append(states, state)
	}

	if failed > 0 {
		return states, fmt.Errorf("%w: %d of %d deletions failed for %q",
			domain.ErrPartialFailure, failed, len(states), prefix)
	}
	logger.Info("Tore down vertical %q (%s)", prefix, kind)
	return states, nil
}
