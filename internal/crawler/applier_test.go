package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyNoApplyAction(t *testing.T) {
	board := newFakeBoard(map[int][]string{1: {"1"}})
	board.postings["1"] = JobPosting{ID: "1", Description: "text", HasApplyAction: false}
	drafter := &fakeDrafter{}

	outcome, err := NewApplier(board, drafter, false, nil).Apply(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, StatusNoApply, outcome.Status)
	assert.Zero(t, board.forms)
	assert.Empty(t, drafter.descriptions)
	assert.Empty(t, board.filled)
	assert.Zero(t, board.submitted)
}

func TestApplySubmits(t *testing.T) {
	board := newFakeBoard(map[int][]string{1: {"1"}})
	drafter := &fakeDrafter{}

	outcome, err := NewApplier(board, drafter, false, nil).Apply(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, outcome.Status)
	assert.Equal(t, "Dear team, I am interested.", outcome.Motivation)
	assert.Equal(t, []string{"Go developer 1"}, drafter.descriptions)
	assert.Equal(t, []string{"Dear team, I am interested."}, board.filled)
	assert.Equal(t, 1, board.submitted)
}

func TestApplyDryRun(t *testing.T) {
	board := newFakeBoard(map[int][]string{1: {"1"}})

	outcome, err := NewApplier(board, &fakeDrafter{}, true, nil).Apply(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, StatusDryRun, outcome.Status)
	assert.Len(t, board.filled, 1)
	assert.Zero(t, board.submitted)
}

func TestApplyMissingFieldAndSubmit(t *testing.T) {
	board := newFakeBoard(map[int][]string{1: {"1"}})
	board.motivation = false
	board.submit = false
	drafter := &fakeDrafter{}

	outcome, err := NewApplier(board, drafter, false, nil).Apply(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, StatusNoSubmit, outcome.Status)
	assert.Equal(t, 1, board.forms)
	assert.Empty(t, drafter.descriptions)
	assert.Zero(t, board.submitted)
}

func TestApplyDraftError(t *testing.T) {
	board := newFakeBoard(map[int][]string{1: {"1"}})
	boom := errors.New("model down")

	_, err := NewApplier(board, &fakeDrafter{err: boom}, false, nil).Apply(context.Background(), "1")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, board.filled)
	assert.Zero(t, board.submitted)
}
