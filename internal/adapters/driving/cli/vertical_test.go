package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
)

func applyStates(action domain.ResourceAction) []domain.ResourceState {
	names := domain.DeriveNames("bo", domain.KindGeneral)
	states := make([]domain.ResourceState, 0, len(domain.CreationOrder))
	for _, typ := range domain.CreationOrder {
		states = append(states, domain.ResourceState{Type: typ, Name: names.Name(typ), Action: action})
	}
	return states
}

func TestApplyVerticalCommand(t *testing.T) {
	fake := &fakeVerticals{states: applyStates(domain.ActionCreated)}
	setServices(t, &fakeSyncer{}, fake, &fakeMonitor{}, nil)

	out, err := runCommand(t, "apply-vertical", "bo",
		"--container", "staged-content", "--chunk-size", "2000", "--overlap", "100")
	require.NoError(t, err)

	require.Len(t, fake.applied, 1)
	cfg := fake.applied[0]
	assert.Equal(t, "bo", cfg.Prefix)
	assert.Equal(t, domain.KindGeneral, cfg.Kind)
	assert.Equal(t, "staged-content", cfg.Container)
	assert.Equal(t, 2000, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.Overlap)

	assert.Contains(t, out, "ds-bo")
	assert.Contains(t, out, "ix-bo")
	assert.Contains(t, out, "created")
	assert.Contains(t, out, "indexer run triggered")
}

func TestApplyVerticalCommandStructuredKind(t *testing.T) {
	fake := &fakeVerticals{states: nil}
	setServices(t, &fakeSyncer{}, fake, &fakeMonitor{}, nil)

	_, err := runCommand(t, "apply-vertical", "inv", "--kind", "structured")
	require.NoError(t, err)

	require.Len(t, fake.applied, 1)
	assert.Equal(t, domain.KindStructured, fake.applied[0].Kind)
}

func TestApplyVerticalCommandUnknownKind(t *testing.T) {
	fake := &fakeVerticals{}
	setServices(t, &fakeSyncer{}, fake, &fakeMonitor{}, nil)

	_, err := runCommand(t, "apply-vertical", "bo", "--kind", "vectorized")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, fake.applied)
}

func TestApplyVerticalCommandFailureShowsPartialStates(t *testing.T) {
	states := applyStates(domain.ActionCreated)[:2]
	states = append(states, domain.ResourceState{
		Type:   domain.ResourceIndex,
		Name:   "idx-bo",
		Action: domain.ActionFailed,
		Err:    errors.New("quota exceeded"),
	})
	fake := &fakeVerticals{states: states, applyErr: errors.New("quota exceeded")}
	setServices(t, &fakeSyncer{}, fake, &fakeMonitor{}, nil)

	out, err := runCommand(t, "apply-vertical", "bo")
	require.Error(t, err)

	assert.Contains(t, out, "ds-bo")
	assert.Contains(t, out, "quota exceeded")
	assert.NotContains(t, out, "indexer run triggered")
}

func TestDeleteVerticalCommand(t *testing.T) {
	fake := &fakeVerticals{states: applyStates(domain.ActionDeleted)}
	setServices(t, &fakeSyncer{}, fake, &fakeMonitor{}, nil)

	out, err := runCommand(t, "delete-vertical", "bo")
	require.NoError(t, err)

	assert.Equal(t, []string{"bo"}, fake.tornDown)
	assert.Contains(t, out, "deleted")
	assert.Contains(t, out, `Vertical "bo" torn down.`)
}

func TestDeleteVerticalCommandPartialFailure(t *testing.T) {
	fake := &fakeVerticals{
		states:      applyStates(domain.ActionDeleted)[:1],
		teardownErr: domain.ErrPartialFailure,
	}
	setServices(t, &fakeSyncer{}, fake, &fakeMonitor{}, nil)

	_, err := runCommand(t, "delete-vertical", "bo")
	require.ErrorIs(t, err, domain.ErrPartialFailure)
}
