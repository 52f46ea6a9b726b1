package crawler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobAgent/internal/browser"
	"jobAgent/internal/dedup"
	"jobAgent/internal/llm"
)

func openStore(t *testing.T, path string) *dedup.FileStore {
	t.Helper()
	store, err := dedup.OpenFile(path)
	require.NoError(t, err)
	return store
}

func TestRunIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_jobs.json")
	pages := map[int][]string{1: {"10", "11"}, 2: {"12"}}

	board := newFakeBoard(pages)
	c := New(board, NewApplier(board, &fakeDrafter{}, false, nil), openStore(t, path), nil, Config{MaxPages: 3}, nil)
	res, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, 3, res.Handled)
	assert.Equal(t, 3, board.submitted)
	assert.Equal(t, []string{"10", "11", "12"}, board.opened)
	assert.NotEmpty(t, res.RunID)

	again := newFakeBoard(pages)
	c = New(again, NewApplier(again, &fakeDrafter{}, false, nil), openStore(t, path), nil, Config{MaxPages: 3}, nil)
	res, err = c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Skipped)
	assert.Zero(t, res.Handled)
	assert.Empty(t, again.opened)
	assert.Zero(t, again.submitted)
}

func TestRunHandlesDuplicatesOnce(t *testing.T) {
	board := newFakeBoard(map[int][]string{1: {"7", "7"}, 2: {"7", "8"}})
	store := openStore(t, filepath.Join(t.TempDir(), "p.json"))

	res, err := New(board, NewApplier(board, &fakeDrafter{}, false, nil), store, nil, Config{MaxPages: 2}, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"7", "8"}, board.opened)
	assert.Equal(t, 2, board.submitted)
	assert.Equal(t, 2, res.Seen)
	assert.Equal(t, 2, store.Len())
}

func TestRunPerJobErrorLeavesJobUnmarked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	board := newFakeBoard(map[int][]string{1: {"1", "2", "3"}})
	board.openErr["2"] = &browser.Error{Kind: browser.KindSelectorNotFound, Op: "open_job", Err: errors.New("no title")}
	journal := &recordingJournal{}

	res, err := New(board, NewApplier(board, &fakeDrafter{}, false, nil), openStore(t, path), journal, Config{}, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Handled)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []int{1, 1, 1}, board.restored)

	store := openStore(t, path)
	assert.True(t, store.Contains("1"))
	assert.False(t, store.Contains("2"))
	assert.True(t, store.Contains("3"))

	require.Len(t, journal.started, 1)
	assert.Equal(t, journal.started[0], res.RunID)
	require.Len(t, journal.outcomes, 2)
	assert.Equal(t, StatusSubmitted, journal.outcomes[0].Status)
	require.NotNil(t, journal.result)
	assert.Equal(t, 2, journal.result.Handled)
	assert.NoError(t, journal.runErr)
}

func TestRunFatalErrorAborts(t *testing.T) {
	board := newFakeBoard(map[int][]string{1: {"1", "2", "3"}})
	board.openErr["2"] = &browser.Error{Kind: browser.KindClosed, Op: "click", Err: errors.New("target closed")}
	journal := &recordingJournal{}
	store := openStore(t, filepath.Join(t.TempDir(), "p.json"))

	res, err := New(board, NewApplier(board, &fakeDrafter{}, false, nil), store, journal, Config{}, nil).Run(context.Background())
	require.Error(t, err)
	assert.True(t, browser.IsFatal(err))
	assert.Equal(t, []string{"1", "2"}, board.opened)
	assert.Equal(t, 1, res.Handled)
	assert.True(t, store.Contains("1"))
	assert.False(t, store.Contains("2"))
	assert.ErrorIs(t, journal.runErr, err)
}

func TestRunStopsOnRateLimit(t *testing.T) {
	board := newFakeBoard(map[int][]string{1: {"1", "2", "3"}})
	drafter := &fakeDrafter{err: fmt.Errorf("turn 1: %w: 60 RPM", llm.ErrRateLimited)}
	journal := &recordingJournal{}
	store := openStore(t, filepath.Join(t.TempDir(), "p.json"))

	res, err := New(board, NewApplier(board, drafter, false, nil), store, journal, Config{}, nil).Run(context.Background())
	require.ErrorIs(t, err, llm.ErrRateLimited)
	assert.Equal(t, []string{"1"}, board.opened)
	assert.Zero(t, res.Handled)
	assert.Zero(t, res.Failed)
	assert.False(t, store.Contains("1"))
	assert.ErrorIs(t, journal.runErr, llm.ErrRateLimited)
}

func TestRunBoardErrors(t *testing.T) {
	timeout := &browser.Error{Kind: browser.KindTimeout, Op: "wait", Selector: "[id^='job-item-']"}

	board := newFakeBoard(map[int][]string{1: {"1"}})
	board.boardErr[1] = timeout
	_, err := New(board, NewApplier(board, &fakeDrafter{}, false, nil), openStore(t, filepath.Join(t.TempDir(), "p.json")), nil, Config{}, nil).Run(context.Background())
	assert.True(t, browser.IsTimeout(err))
	assert.Empty(t, board.opened)

	board = newFakeBoard(map[int][]string{1: {"1"}})
	board.loginErr = timeout
	_, err = New(board, NewApplier(board, &fakeDrafter{}, false, nil), openStore(t, filepath.Join(t.TempDir(), "p.json")), nil, Config{}, nil).Run(context.Background())
	assert.ErrorIs(t, err, timeout)
}

func TestRunCanceled(t *testing.T) {
	board := newFakeBoard(map[int][]string{1: {"1", "2"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(board, NewApplier(board, &fakeDrafter{}, false, nil), openStore(t, filepath.Join(t.TempDir(), "p.json")), nil, Config{}, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, board.opened)
}
