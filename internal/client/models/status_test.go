package models

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInProgress_ClampsFraction(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"negative", -0.5, 0},
		{"nan", math.NaN(), 0},
		{"inside", 0.4, 0.4},
		{"above one", 1.7, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := InProgress(tt.in)
			assert.Equal(t, PhaseInProgress, s.Phase)
			assert.InDelta(t, tt.want, s.Fraction, 1e-9)
		})
	}
}

func TestSamePhase_IgnoresFractionAndCause(t *testing.T) {
	assert.True(t, InProgress(0).SamePhase(InProgress(0.9)))
	assert.True(t, Failed(nil).SamePhase(Failed(errors.New("boom"))))
	assert.False(t, AwaitingInteraction().SamePhase(InProgress(0)))
	assert.False(t, Succeeded().SamePhase(Failed(nil)))
}

func TestTerminalAndActive(t *testing.T) {
	assert.False(t, AwaitingInteraction().IsTerminal())
	assert.False(t, InProgress(0.3).IsTerminal())
	assert.True(t, Succeeded().IsTerminal())
	assert.True(t, Failed(nil).IsTerminal())

	assert.True(t, AwaitingInteraction().IsActive())
	assert.True(t, InProgress(0.3).IsActive())
	assert.False(t, Succeeded().IsActive())
	assert.False(t, Failed(nil).IsActive())
}

func TestPhase_RoundTripCodes(t *testing.T) {
	for _, p := range []Phase{PhaseAwaitingInteraction, PhaseInProgress, PhaseSuccess, PhaseFailed} {
		got, err := ParsePhase(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := ParsePhase("paused")
	require.Error(t, err)
}

func TestUploadStatus_String(t *testing.T) {
	assert.Equal(t, "awaiting", AwaitingInteraction().String())
	assert.Equal(t, "progress(40%)", InProgress(0.4).String())
	assert.Equal(t, "success", Succeeded().String())
	assert.Equal(t, "failed", Failed(nil).String())
	assert.Equal(t, "failed(offline)", Failed(errors.New("offline")).String())
}

func TestNewDocument_LinksPages(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))

	doc, pages := NewDocument("type-1", "folder-1", now, 3)

	require.NotEmpty(t, doc.ID)
	assert.Equal(t, now.UTC(), doc.CreatedAt)
	require.Len(t, pages, 3)
	require.Len(t, doc.PageIDs, 3)
	for i, p := range pages {
		assert.Equal(t, doc.ID, p.DocumentID)
		assert.Equal(t, i, p.Index)
		assert.Equal(t, doc.PageIDs[i], p.ID)
		assert.Equal(t, doc.ID+"/"+p.ID, p.ImageRef)
	}
}
