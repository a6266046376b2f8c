package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"boothdesk/internal/cache"
	"boothdesk/internal/model"
	"boothdesk/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner  = "user-1"
	event1 = "event-1"
	event2 = "event-2"
)

func newChecklistFixture(t *testing.T, acc AccessService) (ChecklistService, *repository.MemoryChecklistRepo) {
	t.Helper()
	repo := repository.NewMemoryChecklistRepo()
	repo.AddEvent(owner, event1)
	repo.AddEvent(owner, event2)
	if acc == nil {
		acc = proAccess()
	}
	return NewChecklistService(repo, acc, cache.NewMemory(), time.Minute, zerolog.Nop()), repo
}

func partition(items []model.ChecklistItem, phase model.Phase) []model.ChecklistItem {
	out := []model.ChecklistItem{}
	for _, it := range items {
		if it.Phase == phase {
			out = append(out, it)
		}
	}
	return out
}

func ids(items []model.ChecklistItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestChecklist_AddAppendsPerPartition(t *testing.T) {
	svc, _ := newChecklistFixture(t, nil)
	ctx := context.Background()

	a, err := svc.Add(ctx, owner, event1, model.PhasePre, "Confirm venue")
	require.NoError(t, err)
	b, err := svc.Add(ctx, owner, event1, model.PhasePre, "Pack props")
	require.NoError(t, err)
	c, err := svc.Add(ctx, owner, event1, model.PhaseDuring, "Setup booth")
	require.NoError(t, err)

	assert.Equal(t, 0, a.Position)
	assert.Equal(t, 1, b.Position)
	assert.Equal(t, 0, c.Position)
	assert.False(t, a.Completed)
}

func TestChecklist_NAddsGiveDistinctPositions(t *testing.T) {
	svc, _ := newChecklistFixture(t, nil)
	ctx := context.Background()

	const n = 12
	for i := 0; i < n; i++ {
		_, err := svc.Add(ctx, owner, event1, model.PhasePost, "task")
		require.NoError(t, err)
	}
	items, err := svc.List(ctx, owner, event1)
	require.NoError(t, err)
	require.Len(t, items, n)

	seen := map[int]bool{}
	for _, it := range items {
		assert.False(t, seen[it.Position], "duplicate position %d", it.Position)
		seen[it.Position] = true
	}
}

func TestChecklist_ListOrdersByPhaseThenPosition(t *testing.T) {
	svc, _ := newChecklistFixture(t, nil)
	ctx := context.Background()

	_, _ = svc.Add(ctx, owner, event1, model.PhasePost, "post-0")
	_, _ = svc.Add(ctx, owner, event1, model.PhasePre, "pre-0")
	_, _ = svc.Add(ctx, owner, event1, model.PhaseDuring, "during-0")
	_, _ = svc.Add(ctx, owner, event1, model.PhasePre, "pre-1")

	items, err := svc.List(ctx, owner, event1)
	require.NoError(t, err)
	texts := []string{}
	for _, it := range items {
		texts = append(texts, it.Text)
	}
	assert.Equal(t, []string{"pre-0", "pre-1", "during-0", "post-0"}, texts)
}

func TestChecklist_ReorderPermutation(t *testing.T) {
	svc, _ := newChecklistFixture(t, nil)
	ctx := context.Background()
	for _, text := range []string{"a", "b", "c", "d"} {
		_, err := svc.Add(ctx, owner, event1, model.PhasePre, text)
		require.NoError(t, err)
	}
	before, err := svc.List(ctx, owner, event1)
	require.NoError(t, err)
	cur := ids(before)
	// arrayMove(0 -> 2)
	want := []string{cur[1], cur[2], cur[0], cur[3]}

	require.NoError(t, svc.Reorder(ctx, owner, event1, model.PhasePre, want))

	after, err := svc.List(ctx, owner, event1)
	require.NoError(t, err)
	assert.Equal(t, want, ids(partition(after, model.PhasePre)))
	for i, it := range after {
		assert.Equal(t, i, it.Position)
	}
}

func TestChecklist_ReorderMismatchLeavesPositions(t *testing.T) {
	svc, _ := newChecklistFixture(t, nil)
	ctx := context.Background()
	a, _ := svc.Add(ctx, owner, event1, model.PhasePre, "a")
	b, _ := svc.Add(ctx, owner, event1, model.PhasePre, "b")
	other, _ := svc.Add(ctx, owner, event1, model.PhaseDuring, "x")

	cases := map[string][]string{
		"missing id":    {b.ID},
		"duplicate id":  {b.ID, b.ID},
		"foreign phase": {b.ID, other.ID},
		"unknown id":    {b.ID, a.ID, "nope"},
	}
	for name, order := range cases {
		t.Run(name, func(t *testing.T) {
			err := svc.Reorder(ctx, owner, event1, model.PhasePre, order)
			require.ErrorIs(t, err, ErrReorderMismatch)

			items, err := svc.List(ctx, owner, event1)
			require.NoError(t, err)
			assert.Equal(t, []string{a.ID, b.ID}, ids(partition(items, model.PhasePre)))
		})
	}
}

func TestChecklist_RemoveKeepsSiblingPositions(t *testing.T) {
	svc, _ := newChecklistFixture(t, nil)
	ctx := context.Background()
	a, _ := svc.Add(ctx, owner, event1, model.PhasePre, "a")
	b, _ := svc.Add(ctx, owner, event1, model.PhasePre, "b")
	c, _ := svc.Add(ctx, owner, event1, model.PhasePre, "c")

	require.NoError(t, svc.Remove(ctx, owner, b.ID))

	items, err := svc.List(ctx, owner, event1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, a.ID, items[0].ID)
	assert.Equal(t, 0, items[0].Position)
	assert.Equal(t, c.ID, items[1].ID)
	assert.Equal(t, 2, items[1].Position)

	err = svc.Remove(ctx, owner, b.ID)
	assert.ErrorIs(t, err, ErrChecklistItemNotFound)
}

func TestChecklist_AddAfterGapUsesMax(t *testing.T) {
	svc, _ := newChecklistFixture(t, nil)
	ctx := context.Background()
	a, _ := svc.Add(ctx, owner, event1, model.PhasePre, "a")
	_, _ = svc.Add(ctx, owner, event1, model.PhasePre, "b")
	_, _ = svc.Add(ctx, owner, event1, model.PhasePre, "c")
	require.NoError(t, svc.Remove(ctx, owner, a.ID))

	d, err := svc.Add(ctx, owner, event1, model.PhasePre, "d")
	require.NoError(t, err)
	assert.Equal(t, 3, d.Position)
}

func TestChecklist_RemoveAll(t *testing.T) {
	svc, _ := newChecklistFixture(t, nil)
	ctx := context.Background()
	_, _ = svc.Add(ctx, owner, event1, model.PhasePre, "a")
	_, _ = svc.Add(ctx, owner, event1, model.PhasePost, "b")
	_, _ = svc.Add(ctx, owner, event2, model.PhasePre, "kept")

	require.NoError(t, svc.RemoveAll(ctx, owner, event1))

	items, err := svc.List(ctx, owner, event1)
	require.NoError(t, err)
	assert.Empty(t, items)
	others, err := svc.List(ctx, owner, event2)
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestChecklist_UpdateAndToggle(t *testing.T) {
	svc, _ := newChecklistFixture(t, nil)
	ctx := context.Background()
	_, _ = svc.Add(ctx, owner, event1, model.PhasePre, "a")
	it, _ := svc.Add(ctx, owner, event1, model.PhasePre, "b")

	text := "  Confirm parking  "
	updated, err := svc.Update(ctx, owner, it.ID, model.ChecklistPatch{Text: &text})
	require.NoError(t, err)
	assert.Equal(t, "Confirm parking", updated.Text)
	assert.Equal(t, 1, updated.Position)
	assert.False(t, updated.Completed)

	toggled, err := svc.Toggle(ctx, owner, it.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	toggled, err = svc.Toggle(ctx, owner, it.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)

	blank := " "
	_, err = svc.Update(ctx, owner, it.ID, model.ChecklistPatch{Text: &blank})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestChecklist_Validation(t *testing.T) {
	svc, _ := newChecklistFixture(t, nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, owner, event1, model.Phase("setup"), "a")
	assert.ErrorIs(t, err, ErrInvalidPhase)

	_, err = svc.Add(ctx, owner, event1, model.PhasePre, "   ")
	assert.ErrorIs(t, err, ErrEmptyText)

	err = svc.Reorder(ctx, owner, event1, model.Phase("PRE"), nil)
	assert.ErrorIs(t, err, ErrInvalidPhase)

	_, err = svc.ApplyBulk(ctx, owner, event1, []model.ChecklistSeed{{Phase: model.PhasePre, Text: "ok"}, {Phase: "later", Text: "x"}}, false)
	assert.ErrorIs(t, err, ErrInvalidPhase)
	items, _ := svc.List(ctx, owner, event1)
	assert.Empty(t, items)
}

func TestChecklist_TenantScoping(t *testing.T) {
	svc, _ := newChecklistFixture(t, nil)
	ctx := context.Background()
	it, err := svc.Add(ctx, owner, event1, model.PhasePre, "mine")
	require.NoError(t, err)

	_, err = svc.Add(ctx, "intruder", event1, model.PhasePre, "x")
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = svc.Toggle(ctx, "intruder", it.ID)
	assert.ErrorIs(t, err, ErrChecklistItemNotFound)

	items, err := svc.List(ctx, "intruder", event1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestChecklist_ErrorsAreChecklistErrors(t *testing.T) {
	svc, _ := newChecklistFixture(t, nil)
	_, err := svc.Toggle(context.Background(), owner, "missing")

	var cerr *ChecklistError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "toggle", cerr.Op)
	assert.ErrorIs(t, cerr, ErrChecklistItemNotFound)
}

func TestChecklist_ListIsCachedAndInvalidated(t *testing.T) {
	svc, repo := newChecklistFixture(t, nil)
	ctx := context.Background()
	_, err := svc.Add(ctx, owner, event1, model.PhasePre, "a")
	require.NoError(t, err)

	first, err := svc.List(ctx, owner, event1)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Write behind the service's back: the cached read must not see it.
	_, err = repo.Append(ctx, owner, event1, []model.ChecklistSeed{{Phase: model.PhasePre, Text: "hidden"}}, false, -1)
	require.NoError(t, err)
	cached, err := svc.List(ctx, owner, event1)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	// Any mutation through the service drops the entry.
	_, err = svc.Add(ctx, owner, event1, model.PhasePost, "b")
	require.NoError(t, err)
	fresh, err := svc.List(ctx, owner, event1)
	require.NoError(t, err)
	assert.Len(t, fresh, 3)
}

func TestChecklist_FreeTierTaskCap(t *testing.T) {
	svc, _ := newChecklistFixture(t, limitedAccess())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Add(ctx, owner, event1, model.PhasePre, "task")
		require.NoError(t, err)
	}
	_, err := svc.Add(ctx, owner, event1, model.PhasePre, "one too many")
	assert.ErrorIs(t, err, ErrLimitReached)

	_, err = svc.ApplyTemplate(ctx, owner, event2, "totem", false)
	assert.ErrorIs(t, err, ErrLimitReached, "totem template has more than five items")

	seeds := []model.ChecklistSeed{{Phase: model.PhasePre, Text: "a"}, {Phase: model.PhasePost, Text: "b"}}
	created, err := svc.ApplyBulk(ctx, owner, event1, seeds, true)
	require.NoError(t, err, "replace does not count the items it removes")
	assert.Len(t, created, 2)
}

func TestChecklist_ApplyTemplate(t *testing.T) {
	svc, _ := newChecklistFixture(t, nil)
	ctx := context.Background()
	_, _ = svc.Add(ctx, owner, event1, model.PhasePre, "existing")

	created, err := svc.ApplyTemplate(ctx, owner, event1, "photo_booth", false)
	require.NoError(t, err)
	tpl, ok := findTemplate("photo_booth")
	require.True(t, ok)
	assert.Len(t, created, len(tpl.Items))
	assert.Equal(t, 1, created[0].Position, "appended after the existing pre item")

	_, err = svc.ApplyTemplate(ctx, owner, event1, "drone_show", false)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestChecklist_CopyEvent(t *testing.T) {
	svc, _ := newChecklistFixture(t, nil)
	ctx := context.Background()
	_, _ = svc.Add(ctx, owner, event1, model.PhasePre, "a")
	_, _ = svc.Add(ctx, owner, event1, model.PhaseDuring, "b")
	_, _ = svc.Add(ctx, owner, event2, model.PhasePre, "old")

	source, err := svc.CopyFrom(ctx, owner, event1)
	require.NoError(t, err)
	assert.Len(t, source, 2)

	created, err := svc.CopyEvent(ctx, owner, event1, event2, true)
	require.NoError(t, err)
	require.Len(t, created, 2)

	items, err := svc.List(ctx, owner, event2)
	require.NoError(t, err)
	texts := []string{}
	for _, it := range items {
		texts = append(texts, it.Text)
		assert.Equal(t, 0, it.Position)
	}
	assert.Equal(t, []string{"a", "b"}, texts)

	src, err := svc.List(ctx, owner, event1)
	require.NoError(t, err)
	assert.Len(t, src, 2, "source is not modified")
}

func TestChecklist_CopyFromMissingSourceKeepsTarget(t *testing.T) {
	svc, repo := newChecklistFixture(t, nil)
	repo.AddEvent("intruder", "event-x")
	ctx := context.Background()
	_, _ = svc.Add(ctx, owner, event1, model.PhasePre, "a")
	_, _ = svc.Add(ctx, owner, event1, model.PhasePre, "b")

	_, err := svc.CopyFrom(ctx, owner, "no-such-event")
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = svc.CopyEvent(ctx, owner, "no-such-event", event1, true)
	assert.ErrorIs(t, err, ErrEventNotFound)

	// Someone else's event is treated like a missing one.
	_, err = svc.CopyEvent(ctx, owner, "event-x", event1, true)
	assert.ErrorIs(t, err, ErrEventNotFound)

	items, err := svc.List(ctx, owner, event1)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

// racingRepo runs onList once, after the read and before the service fills
// its cache.
type racingRepo struct {
	*repository.MemoryChecklistRepo
	onList func()
}

func (r *racingRepo) ListByEvent(ctx context.Context, userID, eventID string) ([]model.ChecklistItem, error) {
	items, err := r.MemoryChecklistRepo.ListByEvent(ctx, userID, eventID)
	if r.onList != nil {
		hook := r.onList
		r.onList = nil
		hook()
	}
	return items, err
}

func TestChecklist_ListFillRacingRemoveIsNotServed(t *testing.T) {
	repo := &racingRepo{MemoryChecklistRepo: repository.NewMemoryChecklistRepo()}
	repo.AddEvent(owner, event1)
	svc := NewChecklistService(repo, proAccess(), cache.NewMemory(), time.Minute, zerolog.Nop())
	ctx := context.Background()

	it, err := svc.Add(ctx, owner, event1, model.PhasePre, "a")
	require.NoError(t, err)

	repo.onList = func() {
		require.NoError(t, svc.Remove(ctx, owner, it.ID))
	}
	stale, err := svc.List(ctx, owner, event1)
	require.NoError(t, err)
	assert.Len(t, stale, 1, "the racing read itself saw the item")

	items, err := svc.List(ctx, owner, event1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestChecklist_TaskCapIsEnforcedByRepository(t *testing.T) {
	svc, repo := newChecklistFixture(t, limitedAccess())
	ctx := context.Background()

	// Items written elsewhere count against the cap at insert time.
	seeds := make([]model.ChecklistSeed, 4)
	for i := range seeds {
		seeds[i] = model.ChecklistSeed{Phase: model.PhasePre, Text: "task"}
	}
	_, err := repo.Append(ctx, owner, event1, seeds, false, -1)
	require.NoError(t, err)

	_, err = svc.Add(ctx, owner, event1, model.PhasePre, "fifth")
	require.NoError(t, err)
	_, err = svc.Add(ctx, owner, event1, model.PhasePre, "sixth")
	assert.ErrorIs(t, err, ErrLimitReached)

	_, err = svc.ApplyBulk(ctx, owner, event1, []model.ChecklistSeed{{Phase: model.PhasePost, Text: "x"}}, false)
	assert.ErrorIs(t, err, ErrLimitReached)

	items, err := svc.List(ctx, owner, event1)
	require.NoError(t, err)
	assert.Len(t, items, 5)
}
