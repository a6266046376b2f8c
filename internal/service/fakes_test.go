package service

import (
	"context"
	"sync"
	"time"

	"boothdesk/internal/access"
	"boothdesk/internal/model"
	"boothdesk/internal/repository"

	"github.com/google/uuid"
)

// stubAccess answers every access check from a fixed Info.
type stubAccess struct {
	info access.Info
}

func proAccess() *stubAccess {
	return &stubAccess{info: access.Evaluate(&access.Account{CreatedAt: time.Now(), IsPremium: true}, time.Now())}
}

func limitedAccess() *stubAccess {
	return &stubAccess{info: access.Evaluate(nil, time.Now())}
}

func (s *stubAccess) GetAccessInfo(context.Context, string) (access.Info, error) {
	return s.info, nil
}

func (s *stubAccess) Require(_ context.Context, _ string, check func(access.Info) bool) error {
	if !check(s.info) {
		return ErrLimitReached
	}
	return nil
}

func (s *stubAccess) RequireFeature(_ context.Context, _ string, check func(access.Info) bool) error {
	if !check(s.info) {
		return ErrFeatureLocked
	}
	return nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]model.Profile
	err      error
}

func newFakeProfiles(ps ...model.Profile) *fakeProfiles {
	f := &fakeProfiles{profiles: map[string]model.Profile{}}
	for _, p := range ps {
		f.profiles[p.UserID] = p
	}
	return f
}

func (f *fakeProfiles) GetByID(_ context.Context, userID string) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProfiles) Upsert(_ context.Context, p *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.profiles[p.UserID]
	if !ok {
		cur = model.Profile{UserID: p.UserID, CreatedAt: time.Now()}
	}
	cur.BusinessName, cur.Email = p.BusinessName, p.Email
	f.profiles[p.UserID] = cur
	*p = cur
	return nil
}

func (f *fakeProfiles) SetStripeCustomerID(_ context.Context, userID, customerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return repository.ErrNotFound
	}
	p.StripeCustomerID = &customerID
	f.profiles[userID] = p
	return nil
}

func (f *fakeProfiles) SetPremium(_ context.Context, userID string, premium bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsPremium = premium
	f.profiles[userID] = p
	return nil
}

func (f *fakeProfiles) SetPremiumByCustomer(_ context.Context, customerID string, premium bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, p := range f.profiles {
		if p.StripeCustomerID != nil && *p.StripeCustomerID == customerID {
			p.IsPremium = premium
			f.profiles[id] = p
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeEvents struct {
	mu     sync.Mutex
	events map[string]model.Event
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{events: map[string]model.Event{}}
}

func (f *fakeEvents) List(_ context.Context, userID, status string) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Event{}
	for _, e := range f.events {
		if e.UserID == userID && (status == "" || e.Status == status) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvents) GetByID(_ context.Context, userID, eventID string) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok || e.UserID != userID {
		return nil, repository.ErrEventNotFound
	}
	return &e, nil
}

func (f *fakeEvents) Create(_ context.Context, e *model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = uuid.NewString()
	e.CreatedAt, e.UpdatedAt = time.Now(), time.Now()
	f.events[e.ID] = *e
	return nil
}

func (f *fakeEvents) Update(_ context.Context, userID, eventID string, patch model.EventPatch) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok || e.UserID != userID {
		return nil, repository.ErrEventNotFound
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Status != nil {
		e.Status = *patch.Status
	}
	if patch.StartsAt != nil {
		e.StartsAt = *patch.StartsAt
	}
	f.events[eventID] = e
	return &e, nil
}

func (f *fakeEvents) Delete(_ context.Context, userID, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok || e.UserID != userID {
		return repository.ErrEventNotFound
	}
	delete(f.events, eventID)
	return nil
}

func (f *fakeEvents) CountActive(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.UserID == userID && e.IsActive() {
			n++
		}
	}
	return n, nil
}

func (f *fakeEvents) SetContractPath(_ context.Context, userID, eventID string, path *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok || e.UserID != userID {
		return repository.ErrEventNotFound
	}
	e.ContractPath = path
	f.events[eventID] = e
	return nil
}

type fakeLeads struct {
	mu    sync.Mutex
	leads []model.Lead
}

func (f *fakeLeads) List(_ context.Context, userID string) ([]model.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Lead{}
	for _, l := range f.leads {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLeads) Create(_ context.Context, l *model.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.ID = uuid.NewString()
	f.leads = append(f.leads, *l)
	return nil
}

func (f *fakeLeads) Update(_ context.Context, userID, leadID string, patch model.LeadPatch) (*model.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.leads {
		if l.ID == leadID && l.UserID == userID {
			if patch.Status != nil {
				l.Status = *patch.Status
			}
			if patch.Notes != nil {
				l.Notes = *patch.Notes
			}
			f.leads[i] = l
			return &l, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeLeads) Delete(_ context.Context, userID, leadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.leads {
		if l.ID == leadID && l.UserID == userID {
			f.leads = append(f.leads[:i], f.leads[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeLeads) Count(ctx context.Context, userID string) (int, error) {
	leads, _ := f.List(ctx, userID)
	return len(leads), nil
}

type fakeContents struct {
	mu       sync.Mutex
	contents map[string]model.Content
}

func newFakeContents() *fakeContents {
	return &fakeContents{contents: map[string]model.Content{}}
}

func (f *fakeContents) ListMonth(_ context.Context, userID string, from, to time.Time) ([]model.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Content{}
	for _, c := range f.contents {
		if c.UserID == userID && !c.ScheduledFor.Before(from) && c.ScheduledFor.Before(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContents) GetByID(_ context.Context, userID, contentID string) (*model.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contents[contentID]
	if !ok || c.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (f *fakeContents) Create(_ context.Context, c *model.Content) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.NewString()
	f.contents[c.ID] = *c
	return nil
}

func (f *fakeContents) Update(_ context.Context, userID, contentID string, patch model.ContentPatch) (*model.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contents[contentID]
	if !ok || c.UserID != userID {
		return nil, repository.ErrNotFound
	}
	if patch.Status != nil {
		c.Status = *patch.Status
	}
	if patch.Objective != nil {
		c.Objective = *patch.Objective
	}
	f.contents[contentID] = c
	return &c, nil
}

func (f *fakeContents) Delete(_ context.Context, userID, contentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contents[contentID]
	if !ok || c.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.contents, contentID)
	return nil
}

func (f *fakeContents) CountBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	cs, _ := f.ListMonth(ctx, userID, from, to)
	return len(cs), nil
}

func (f *fakeContents) MarkPending(_ context.Context, userID, contentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contents[contentID]
	if !ok || c.UserID != userID {
		return repository.ErrNotFound
	}
	c.Status, c.ErrorDetails = model.ContentStatusPending, nil
	f.contents[contentID] = c
	return nil
}

func (f *fakeContents) MarkGenerated(_ context.Context, contentID string, generated *model.GeneratedContent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contents[contentID]
	if !ok {
		return repository.ErrNotFound
	}
	c.Status, c.Generated, c.ErrorDetails = model.ContentStatusGenerated, generated, nil
	f.contents[contentID] = c
	return nil
}

func (f *fakeContents) MarkFailed(_ context.Context, contentID, details string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contents[contentID]
	if !ok {
		return repository.ErrNotFound
	}
	c.Status, c.ErrorDetails = model.ContentStatusFailed, &details
	f.contents[contentID] = c
	return nil
}

func (f *fakeContents) Get(_ context.Context, contentID string) (*model.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contents[contentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

type published struct {
	topic      string
	payload    []byte
	attributes map[string]string
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, topic string, payload []byte, attributes map[string]string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.msgs = append(f.msgs, published{topic: topic, payload: payload, attributes: attributes})
	return "msg-1", nil
}

type fakeGenerator struct {
	out  *model.GeneratedContent
	err  error
	reqs []model.GenerationRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req model.GenerationRequest) (*model.GeneratedContent, error) {
	f.reqs = append(f.reqs, req)
	return f.out, f.err
}

type fakeStore struct {
	objects map[string]bool
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]bool{}}
}

func (f *fakeStore) PresignPut(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://storage.test/put/" + key, nil
}

func (f *fakeStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://storage.test/get/" + key, nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	return f.objects[key], nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeDLQ struct {
	saved []model.DeadLetterMessage
}

func (f *fakeDLQ) Create(_ context.Context, m *model.DeadLetterMessage) error {
	f.saved = append(f.saved, *m)
	return nil
}
