package cmd

import (
	"errors"
	"testing"

	"github.com/bnema/family-draft-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionProgressNamesTheAction(t *testing.T) {
	labels := actionProgress(domain.ActionSetStatus)

	assert.Equal(t, "Submitting set status...", labels.Running)
	assert.Equal(t, "Submitted set status", labels.Done)
	assert.Equal(t, "Set status failed", labels.Failed)
}

func TestProgressModelKeepsOutcomeLine(t *testing.T) {
	m := newProgressModel(actionProgress(domain.ActionPick), nil)
	assert.Contains(t, m.View(), "Submitting pick...")

	next, cmd := m.Update(requestDoneMsg{})
	require.NotNil(t, cmd)
	assert.Contains(t, next.View(), "✓ Submitted pick")

	next, _ = m.Update(requestDoneMsg{err: errors.New("offline")})
	assert.Contains(t, next.View(), "✗ Pick failed")
	assert.Equal(t, "offline", next.(progressModel).err.Error())
}
