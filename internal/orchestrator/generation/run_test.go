package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"boothdesk/internal/config"
	ai "boothdesk/internal/generation"
	"boothdesk/internal/model"
	"boothdesk/internal/pubsub"
	"boothdesk/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContents struct {
	repository.ContentRepository
	items     map[string]*model.Content
	getErr    error
	markErr   error
	generated map[string]*model.GeneratedContent
	failed    map[string]string
}

func newFakeContents(cs ...model.Content) *fakeContents {
	f := &fakeContents{
		items:     map[string]*model.Content{},
		generated: map[string]*model.GeneratedContent{},
		failed:    map[string]string{},
	}
	for i := range cs {
		f.items[cs[i].ID] = &cs[i]
	}
	return f
}

func (f *fakeContents) Get(_ context.Context, id string) (*model.Content, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	c, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeContents) MarkGenerated(_ context.Context, id string, g *model.GeneratedContent) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.generated[id] = g
	f.items[id].Status = model.ContentStatusGenerated
	return nil
}

func (f *fakeContents) MarkFailed(_ context.Context, id, details string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.failed[id] = details
	f.items[id].Status = model.ContentStatusFailed
	return nil
}

type scriptedClient struct {
	results []error
	calls   int
}

func (c *scriptedClient) Generate(context.Context, model.GenerationRequest) (*model.GeneratedContent, error) {
	i := c.calls
	c.calls++
	if i < len(c.results) && c.results[i] != nil {
		return nil, c.results[i]
	}
	return &model.GeneratedContent{Titulo: "Post"}, nil
}

func newTestProcessor(contents repository.ContentRepository, client ai.Client) (*Processor, *[]time.Duration) {
	cfg := &config.Config{
		GenerationMaxRetries:     4,
		GenerationBackoffInitial: time.Second,
		GenerationBackoffMax:     3 * time.Second,
	}
	p := NewProcessor(cfg, contents, client, zerolog.Nop())
	var slept []time.Duration
	p.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return p, &slept
}

func pending(id string) model.Content {
	return model.Content{ID: id, UserID: "u1", Status: model.ContentStatusPending, ContentType: "reel"}
}

func jobMessage(contentID string) *pubsub.Message {
	return &pubsub.Message{ID: "m1", Data: []byte(`{"content_id":"` + contentID + `","user_id":"u1"}`)}
}

func TestHandle_GeneratesPendingContent(t *testing.T) {
	contents := newFakeContents(pending("c1"))
	client := &scriptedClient{}
	p, slept := newTestProcessor(contents, client)

	require.NoError(t, p.Handle(context.Background(), jobMessage("c1")))
	assert.Equal(t, "Post", contents.generated["c1"].Titulo)
	assert.Equal(t, 1, client.calls)
	assert.Empty(t, *slept)
}

func TestHandle_RetriesWithCappedBackoff(t *testing.T) {
	contents := newFakeContents(pending("c1"))
	transient := &ai.StatusError{StatusCode: 503}
	client := &scriptedClient{results: []error{transient, transient, transient}}
	p, slept := newTestProcessor(contents, client)

	require.NoError(t, p.Handle(context.Background(), jobMessage("c1")))
	assert.Equal(t, 4, client.calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, *slept)
	assert.Contains(t, contents.generated, "c1")
}

func TestHandle_ExhaustedRetriesMarkFailedAndAck(t *testing.T) {
	contents := newFakeContents(pending("c1"))
	transient := &ai.StatusError{StatusCode: 500, Body: "down"}
	client := &scriptedClient{results: []error{transient, transient, transient, transient}}
	p, _ := newTestProcessor(contents, client)

	require.NoError(t, p.Handle(context.Background(), jobMessage("c1")))
	assert.Equal(t, 4, client.calls)
	assert.Contains(t, contents.failed["c1"], "status 500")
	assert.Equal(t, model.ContentStatusFailed, contents.items["c1"].Status)
}

func TestHandle_ClientErrorIsNotRetried(t *testing.T) {
	contents := newFakeContents(pending("c1"))
	client := &scriptedClient{results: []error{&ai.StatusError{StatusCode: 400, Body: "bad"}}}
	p, slept := newTestProcessor(contents, client)

	require.NoError(t, p.Handle(context.Background(), jobMessage("c1")))
	assert.Equal(t, 1, client.calls)
	assert.Empty(t, *slept)
	assert.Contains(t, contents.failed, "c1")
}

func TestHandle_DropsStaleJobs(t *testing.T) {
	done := pending("c2")
	done.Status = model.ContentStatusGenerated
	contents := newFakeContents(done)
	client := &scriptedClient{}
	p, _ := newTestProcessor(contents, client)

	assert.NoError(t, p.Handle(context.Background(), jobMessage("c2")))
	assert.NoError(t, p.Handle(context.Background(), jobMessage("deleted")))
	assert.Zero(t, client.calls)
}

func TestHandle_NacksBadPayloadAndStorageErrors(t *testing.T) {
	contents := newFakeContents(pending("c1"))
	p, _ := newTestProcessor(contents, &scriptedClient{})
	ctx := context.Background()

	assert.Error(t, p.Handle(ctx, &pubsub.Message{ID: "m", Data: []byte("not json")}))
	assert.Error(t, p.Handle(ctx, &pubsub.Message{ID: "m", Data: []byte(`{"user_id":"u1"}`)}))

	contents.getErr = errors.New("connection reset")
	assert.Error(t, p.Handle(ctx, jobMessage("c1")))

	contents.getErr = nil
	contents.markErr = errors.New("connection reset")
	assert.Error(t, p.Handle(ctx, jobMessage("c1")))
}

type fakeSubscriber struct {
	msgs []*pubsub.Message
	errs []error
}

func (s *fakeSubscriber) Receive(ctx context.Context, _ string, h pubsub.Handler) error {
	for _, m := range s.msgs {
		s.errs = append(s.errs, h(ctx, m))
	}
	return nil
}

func TestRun_DispatchesMessages(t *testing.T) {
	contents := newFakeContents(pending("c1"), pending("c2"))
	p, _ := newTestProcessor(contents, &scriptedClient{})
	sub := &fakeSubscriber{msgs: []*pubsub.Message{jobMessage("c1"), jobMessage("c2")}}

	require.NoError(t, Run(context.Background(), zerolog.Nop(), &config.Config{}, sub, p))
	assert.Equal(t, []error{nil, nil}, sub.errs)
	assert.Len(t, contents.generated, 2)
}
