package djinni

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobAgent/internal/browser"
	"jobAgent/internal/config"
)

type fakePage struct {
	url      string
	visible  map[string]bool
	text     map[string]string
	attrs    []string
	waitErr  map[string]error
	clickErr map[string]error

	navigated []string
	waited    []string
	clicked   []string
	filled    map[string]string
	paused    []time.Duration
}

func newFakePage() *fakePage {
	return &fakePage{
		visible:  make(map[string]bool),
		text:     make(map[string]string),
		waitErr:  make(map[string]error),
		clickErr: make(map[string]error),
		filled:   make(map[string]string),
	}
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.navigated = append(p.navigated, url)
	p.url = url
	return nil
}

func (p *fakePage) WaitFor(_ context.Context, selector string, _ time.Duration) error {
	p.waited = append(p.waited, selector)
	return p.waitErr[selector]
}

func (p *fakePage) Click(_ context.Context, selector string) error {
	p.clicked = append(p.clicked, selector)
	return p.clickErr[selector]
}

func (p *fakePage) Fill(_ context.Context, selector, text string) error {
	p.filled[selector] = text
	return nil
}

func (p *fakePage) IsVisible(_ context.Context, selector string) (bool, error) {
	return p.visible[selector], nil
}

func (p *fakePage) InnerText(_ context.Context, selector string) (string, error) {
	return p.text[selector], nil
}

func (p *fakePage) Attributes(context.Context, string, string) ([]string, error) {
	return p.attrs, nil
}

func (p *fakePage) URL() string { return p.url }

func (p *fakePage) Pause(_ context.Context, d time.Duration) error {
	p.paused = append(p.paused, d)
	return nil
}

type fakeAuth struct {
	form  browser.LoginForm
	creds config.Credentials
}

func (a *fakeAuth) Login(_ context.Context, form browser.LoginForm, creds config.Credentials) error {
	a.form = form
	a.creds = creds
	return nil
}

func newBoard(page *fakePage, auth Authenticator) *Board {
	return New(page, auth, Config{
		BaseURL:     "https://djinni.test/",
		SettleDelay: 5 * time.Second,
		SubmitDelay: 3 * time.Second,
		Credentials: config.Credentials{Email: "me@example.com", Password: "secret"},
	}, nil)
}

func TestJobID(t *testing.T) {
	id, ok := JobID("job-item-12345")
	assert.True(t, ok)
	assert.Equal(t, "12345", id)

	for _, bad := range []string{"", "job-item-", "item-1", "12345"} {
		_, ok := JobID(bad)
		assert.False(t, ok, bad)
	}
}

func TestURLs(t *testing.T) {
	assert.Equal(t, "https://djinni.co/my/dashboard/?page=2", BoardURL(DefaultBaseURL, 2))

	form := LoginForm("https://djinni.co/", DefaultSelectors)
	assert.Equal(t, "https://djinni.co/login", form.URL)
	assert.Equal(t, "input[name='email']", form.EmailSelector)
	assert.Equal(t, "input[name='password']", form.PasswordSelector)
	assert.Equal(t, "button[type='submit']", form.SubmitSelector)
	assert.Equal(t, "a[href='/my/inbox/']", form.ConfirmSelector)
}

func TestLogin(t *testing.T) {
	auth := &fakeAuth{}
	require.NoError(t, newBoard(newFakePage(), auth).Login(context.Background()))
	assert.Equal(t, "https://djinni.test/login", auth.form.URL)
	assert.Equal(t, "me@example.com", auth.creds.Email)
}

func TestOpenBoard(t *testing.T) {
	page := newFakePage()
	page.attrs = []string{"job-item-1", "banner", "job-item-2"}

	ids, err := newBoard(page, &fakeAuth{}).OpenBoard(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids)
	assert.Equal(t, []string{"https://djinni.test/my/dashboard/?page=1"}, page.navigated)
	assert.Equal(t, []string{DefaultSelectors.JobItem}, page.waited)
	assert.Equal(t, []time.Duration{5 * time.Second}, page.paused)
}

func TestOpenBoardTimeout(t *testing.T) {
	page := newFakePage()
	page.waitErr[DefaultSelectors.JobItem] = &browser.Error{Kind: browser.KindTimeout, Op: "wait_for"}
	b := newBoard(page, &fakeAuth{})

	_, err := b.OpenBoard(context.Background(), 1)
	assert.True(t, browser.IsTimeout(err))

	ids, err := b.OpenBoard(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestOpenBoardOtherErrorOnLaterPage(t *testing.T) {
	page := newFakePage()
	page.waitErr[DefaultSelectors.JobItem] = &browser.Error{Kind: browser.KindClosed, Op: "wait_for"}

	_, err := newBoard(page, &fakeAuth{}).OpenBoard(context.Background(), 3)
	assert.True(t, browser.IsFatal(err))
}

func TestOpenJob(t *testing.T) {
	page := newFakePage()
	page.text[DefaultSelectors.Description] = "We need a Go developer"
	page.visible[DefaultSelectors.ApplyToggle] = true

	posting, err := newBoard(page, &fakeAuth{}).OpenJob(context.Background(), "77")
	require.NoError(t, err)
	assert.Equal(t, "77", posting.ID)
	assert.Equal(t, "We need a Go developer", posting.Description)
	assert.True(t, posting.HasApplyAction)
	assert.Equal(t, []string{"[id='job-item-77'] a.job-item__title-link"}, page.clicked)
	assert.Equal(t, []string{DefaultSelectors.Description}, page.waited)
}

func TestOpenJobClickError(t *testing.T) {
	page := newFakePage()
	boom := errors.New("detached")
	page.clickErr["[id='job-item-5'] a.job-item__title-link"] = boom

	_, err := newBoard(page, &fakeAuth{}).OpenJob(context.Background(), "5")
	assert.ErrorIs(t, err, boom)
}

func TestApplyFlow(t *testing.T) {
	page := newFakePage()
	page.visible[DefaultSelectors.Motivation] = true
	b := newBoard(page, &fakeAuth{})
	ctx := context.Background()

	require.NoError(t, b.OpenApplyForm(ctx))
	visible, err := b.MotivationVisible(ctx)
	require.NoError(t, err)
	assert.True(t, visible)
	require.NoError(t, b.FillMotivation(ctx, "hello"))
	canSubmit, err := b.SubmitVisible(ctx)
	require.NoError(t, err)
	assert.False(t, canSubmit)
	require.NoError(t, b.Submit(ctx))

	assert.Equal(t, []string{DefaultSelectors.ApplyToggle, DefaultSelectors.Submit}, page.clicked)
	assert.Equal(t, "hello", page.filled[DefaultSelectors.Motivation])
	assert.Equal(t, []time.Duration{3 * time.Second}, page.paused)
}

func TestRestore(t *testing.T) {
	page := newFakePage()
	b := newBoard(page, &fakeAuth{})
	ctx := context.Background()

	page.url = "https://djinni.test/my/dashboard/?page=2"
	require.NoError(t, b.Restore(ctx, 2))
	assert.Empty(t, page.navigated)

	page.url = "https://djinni.test/jobs/77-go-developer/"
	require.NoError(t, b.Restore(ctx, 2))
	assert.Equal(t, []string{"https://djinni.test/my/dashboard/?page=2"}, page.navigated)
	assert.Equal(t, []string{DefaultSelectors.JobItem}, page.waited)
}
