package projector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepLabelProjectorReplacesExistingStepLabel(t *testing.T) {
	plat := newMockPlatform()
	plat.labels[1] = []string{"bug", "step/awaiting-review"}
	p := NewStepLabelProjector(plat)

	label, err := p.Project(context.Background(), stateAllGood())
	require.NoError(t, err)

	assert.Equal(t, "awaiting-merge", label)
	assert.Equal(t, []string{"bug", "step/awaiting-merge"}, plat.labels[1])
}

func TestStepLabelProjectorAddsLabelWhenNoneExists(t *testing.T) {
	plat := newMockPlatform()
	p := NewStepLabelProjector(plat)

	label, err := p.Project(context.Background(), stateAllGood())
	require.NoError(t, err)
	assert.Equal(t, "awaiting-merge", label)
	assert.Equal(t, []string{"step/awaiting-merge"}, plat.labels[1])
}

func TestStepLabelProjectorPropagatesListError(t *testing.T) {
	plat := newMockPlatform()
	plat.listLabelsErr = assert.AnError
	p := NewStepLabelProjector(plat)

	_, err := p.Project(context.Background(), stateAllGood())
	assert.Error(t, err)
}
