package crawler

import (
	"context"
	"errors"
	"fmt"
)

type fakeBoard struct {
	pages      map[int][]string
	postings   map[string]JobPosting
	openErr    map[string]error
	boardErr   map[int]error
	loginErr   error
	motivation bool
	submit     bool

	opened    []string
	forms     int
	filled    []string
	submitted int
	restored  []int
}

func newFakeBoard(pages map[int][]string) *fakeBoard {
	b := &fakeBoard{
		pages:      pages,
		postings:   make(map[string]JobPosting),
		openErr:    make(map[string]error),
		boardErr:   make(map[int]error),
		motivation: true,
		submit:     true,
	}
	for _, ids := range pages {
		for _, id := range ids {
			b.postings[id] = JobPosting{ID: id, Description: "Go developer " + id, HasApplyAction: true}
		}
	}
	return b
}

func (b *fakeBoard) Login(context.Context) error { return b.loginErr }

func (b *fakeBoard) OpenBoard(_ context.Context, page int) ([]string, error) {
	if err := b.boardErr[page]; err != nil {
		return nil, err
	}
	return b.pages[page], nil
}

func (b *fakeBoard) OpenJob(_ context.Context, id string) (JobPosting, error) {
	b.opened = append(b.opened, id)
	if err := b.openErr[id]; err != nil {
		return JobPosting{}, err
	}
	p, ok := b.postings[id]
	if !ok {
		return JobPosting{}, fmt.Errorf("no posting %s", id)
	}
	return p, nil
}

func (b *fakeBoard) OpenApplyForm(context.Context) error {
	b.forms++
	return nil
}

func (b *fakeBoard) MotivationVisible(context.Context) (bool, error) { return b.motivation, nil }

func (b *fakeBoard) FillMotivation(_ context.Context, text string) error {
	b.filled = append(b.filled, text)
	return nil
}

func (b *fakeBoard) SubmitVisible(context.Context) (bool, error) { return b.submit, nil }

func (b *fakeBoard) Submit(context.Context) error {
	b.submitted++
	return nil
}

func (b *fakeBoard) Restore(_ context.Context, page int) error {
	b.restored = append(b.restored, page)
	return nil
}

type fakeDrafter struct {
	descriptions []string
	err          error
}

func (d *fakeDrafter) Draft(_ context.Context, description string) (string, error) {
	d.descriptions = append(d.descriptions, description)
	if d.err != nil {
		return "", d.err
	}
	return "Dear team, I am interested.", nil
}

type recordingJournal struct {
	started  []string
	outcomes []Outcome
	result   *Result
	runErr   error
}

func (j *recordingJournal) StartRun(_ context.Context, runID string, _ bool) error {
	j.started = append(j.started, runID)
	return nil
}

func (j *recordingJournal) RecordApplication(_ context.Context, _ string, o Outcome) error {
	j.outcomes = append(j.outcomes, o)
	return nil
}

func (j *recordingJournal) FinishRun(_ context.Context, r Result, err error) error {
	j.result = &r
	j.runErr = err
	return errors.New("journal offline")
}
