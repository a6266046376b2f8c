package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"boothdesk/internal/cache"
	"boothdesk/internal/model"
	"boothdesk/internal/repository"

	"github.com/rs/zerolog"
)

// ChecklistError is the single failure shape of checklist operations. Err is
// one of the package sentinels, or the underlying storage error.
type ChecklistError struct {
	Op  string
	Err error
}

func (e *ChecklistError) Error() string {
	return fmt.Sprintf("checklist %s: %v", e.Op, e.Err)
}

func (e *ChecklistError) Unwrap() error { return e.Err }

// ChecklistService owns the lifecycle of the checklist items of an event.
// Items are partitioned by phase and ordered by position inside a partition.
type ChecklistService interface {
	List(ctx context.Context, userID, eventID string) ([]model.ChecklistItem, error)
	// Add appends an item at the end of its phase partition.
	Add(ctx context.Context, userID, eventID string, phase model.Phase, text string) (*model.ChecklistItem, error)
	Update(ctx context.Context, userID, itemID string, patch model.ChecklistPatch) (*model.ChecklistItem, error)
	Toggle(ctx context.Context, userID, itemID string) (*model.ChecklistItem, error)
	// Remove deletes one item. Positions of the remaining items are unchanged.
	Remove(ctx context.Context, userID, itemID string) error
	RemoveAll(ctx context.Context, userID, eventID string) error
	// Reorder assigns position = index to orderedIDs, which must be exactly
	// the ids of the partition.
	Reorder(ctx context.Context, userID, eventID string, phase model.Phase, orderedIDs []string) error
	// CopyFrom reads the items of another event for use as seeds. It writes
	// nothing and fails with ErrEventNotFound unless the event is the caller's.
	CopyFrom(ctx context.Context, userID, sourceEventID string) ([]model.ChecklistItem, error)
	ApplyBulk(ctx context.Context, userID, eventID string, items []model.ChecklistSeed, replace bool) ([]model.ChecklistItem, error)
	CopyEvent(ctx context.Context, userID, sourceEventID, targetEventID string, replace bool) ([]model.ChecklistItem, error)
	ApplyTemplate(ctx context.Context, userID, eventID, templateKey string, replace bool) ([]model.ChecklistItem, error)
}

type checklistService struct {
	repo     repository.ChecklistRepository
	access   AccessService
	cache    cache.Cache
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewChecklistService creates a ChecklistService.
func NewChecklistService(
	repo repository.ChecklistRepository,
	accessSvc AccessService,
	c cache.Cache,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) ChecklistService {
	return &checklistService{
		repo:     repo,
		access:   accessSvc,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("service", "ChecklistService").Logger(),
	}
}

func checklistKey(userID, eventID string) string {
	return "checklist:" + userID + ":" + eventID
}

func checklistVersionKey(userID, eventID string) string {
	return checklistKey(userID, eventID) + ":version"
}

// checklistCacheKey returns the entry key for the current version of an
// event's checklist. A value written under an older version is never read
// again, so a fill that races an invalidation cannot resurrect stale rows.
func checklistCacheKey(ctx context.Context, c cache.Cache, userID, eventID string) (string, error) {
	var version int64
	if _, err := c.Get(ctx, checklistVersionKey(userID, eventID), &version); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", checklistKey(userID, eventID), version), nil
}

// invalidateChecklist bumps the version of an event's checklist and drops
// the entry of the previous version.
func invalidateChecklist(ctx context.Context, c cache.Cache, userID, eventID string) error {
	version, err := c.Incr(ctx, checklistVersionKey(userID, eventID))
	if err != nil {
		return err
	}
	return c.Delete(ctx, fmt.Sprintf("%s:v%d", checklistKey(userID, eventID), version-1))
}

// fail converts a repository error into a ChecklistError and logs storage failures.
func (s *checklistService) fail(op string, err error, fields map[string]any) error {
	switch {
	case errors.Is(err, repository.ErrEventNotFound):
		err = ErrEventNotFound
	case errors.Is(err, repository.ErrNotFound):
		err = ErrChecklistItemNotFound
	case errors.Is(err, repository.ErrPartitionMismatch):
		err = ErrReorderMismatch
	case errors.Is(err, repository.ErrCapacityExceeded):
		err = ErrLimitReached
	case isChecklistSentinel(err):
	default:
		s.logger.Error().Err(err).Fields(fields).Str("op", op).Msg("Checklist operation failed")
	}
	return &ChecklistError{Op: op, Err: err}
}

func isChecklistSentinel(err error) bool {
	for _, target := range []error{ErrInvalidPhase, ErrEmptyText, ErrUnknownTemplate, ErrLimitReached, ErrFeatureLocked} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *checklistService) invalidate(ctx context.Context, userID, eventID string) {
	if err := invalidateChecklist(ctx, s.cache, userID, eventID); err != nil {
		s.logger.Warn().Err(err).Str("event_id", eventID).Msg("Failed to invalidate checklist cache")
	}
}

func (s *checklistService) List(ctx context.Context, userID, eventID string) ([]model.ChecklistItem, error) {
	// The key is resolved before the query; see checklistCacheKey.
	key, err := checklistCacheKey(ctx, s.cache, userID, eventID)
	if err != nil {
		s.logger.Warn().Err(err).Str("event_id", eventID).Msg("Checklist cache read failed")
		key = ""
	}
	if key != "" {
		var cached []model.ChecklistItem
		if ok, err := s.cache.Get(ctx, key, &cached); err != nil {
			s.logger.Warn().Err(err).Str("event_id", eventID).Msg("Checklist cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	items, err := s.repo.ListByEvent(ctx, userID, eventID)
	if err != nil {
		return nil, s.fail("list", err, map[string]any{"user_id": userID, "event_id": eventID})
	}
	if key != "" {
		if err := s.cache.Set(ctx, key, items, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("event_id", eventID).Msg("Checklist cache write failed")
		}
	}
	return items, nil
}

func cleanSeed(seed model.ChecklistSeed) (model.ChecklistSeed, error) {
	if !seed.Phase.Valid() {
		return seed, ErrInvalidPhase
	}
	seed.Text = strings.TrimSpace(seed.Text)
	if seed.Text == "" {
		return seed, ErrEmptyText
	}
	return seed, nil
}

func (s *checklistService) Add(ctx context.Context, userID, eventID string, phase model.Phase, text string) (*model.ChecklistItem, error) {
	fields := map[string]any{"user_id": userID, "event_id": eventID}
	seed, err := cleanSeed(model.ChecklistSeed{Phase: phase, Text: text})
	if err != nil {
		return nil, s.fail("add", err, fields)
	}
	maxItems, err := s.taskLimit(ctx, userID)
	if err != nil {
		return nil, s.fail("add", err, fields)
	}

	created, err := s.repo.Append(ctx, userID, eventID, []model.ChecklistSeed{seed}, false, maxItems)
	if err != nil {
		return nil, s.fail("add", err, fields)
	}
	s.invalidate(ctx, userID, eventID)
	return &created[0], nil
}

// taskLimit returns the per-event item cap of the user's plan, or -1 when
// the plan has none. The repository enforces it under the event row lock.
func (s *checklistService) taskLimit(ctx context.Context, userID string) (int, error) {
	info, err := s.access.GetAccessInfo(ctx, userID)
	if err != nil {
		return 0, err
	}
	if info.IsPro || info.Limits.MaxTasksPerEvent.IsUnlimited() {
		return -1, nil
	}
	return int(info.Limits.MaxTasksPerEvent), nil
}

func (s *checklistService) Update(ctx context.Context, userID, itemID string, patch model.ChecklistPatch) (*model.ChecklistItem, error) {
	fields := map[string]any{"user_id": userID, "item_id": itemID}
	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return nil, s.fail("update", ErrEmptyText, fields)
		}
		patch.Text = &text
	}
	it, err := s.repo.Update(ctx, userID, itemID, patch)
	if err != nil {
		return nil, s.fail("update", err, fields)
	}
	s.invalidate(ctx, userID, it.EventID)
	return it, nil
}

func (s *checklistService) Toggle(ctx context.Context, userID, itemID string) (*model.ChecklistItem, error) {
	fields := map[string]any{"user_id": userID, "item_id": itemID}
	cur, err := s.repo.GetByID(ctx, userID, itemID)
	if err != nil {
		return nil, s.fail("toggle", err, fields)
	}
	next := !cur.Completed
	it, err := s.repo.Update(ctx, userID, itemID, model.ChecklistPatch{Completed: &next})
	if err != nil {
		return nil, s.fail("toggle", err, fields)
	}
	s.invalidate(ctx, userID, it.EventID)
	return it, nil
}

func (s *checklistService) Remove(ctx context.Context, userID, itemID string) error {
	it, err := s.repo.Delete(ctx, userID, itemID)
	if err != nil {
		return s.fail("remove", err, map[string]any{"user_id": userID, "item_id": itemID})
	}
	s.invalidate(ctx, userID, it.EventID)
	return nil
}

func (s *checklistService) RemoveAll(ctx context.Context, userID, eventID string) error {
	if _, err := s.repo.DeleteByEvent(ctx, userID, eventID); err != nil {
		return s.fail("remove_all", err, map[string]any{"user_id": userID, "event_id": eventID})
	}
	s.invalidate(ctx, userID, eventID)
	return nil
}

func (s *checklistService) Reorder(ctx context.Context, userID, eventID string, phase model.Phase, orderedIDs []string) error {
	fields := map[string]any{"user_id": userID, "event_id": eventID}
	if !phase.Valid() {
		return s.fail("reorder", ErrInvalidPhase, fields)
	}
	if err := s.repo.Reorder(ctx, userID, eventID, phase, orderedIDs); err != nil {
		return s.fail("reorder", err, fields)
	}
	s.invalidate(ctx, userID, eventID)
	return nil
}

func (s *checklistService) CopyFrom(ctx context.Context, userID, sourceEventID string) ([]model.ChecklistItem, error) {
	items, err := s.repo.Snapshot(ctx, userID, sourceEventID)
	if err != nil {
		return nil, s.fail("copy_from", err, map[string]any{"user_id": userID, "event_id": sourceEventID})
	}
	return items, nil
}

func (s *checklistService) ApplyBulk(ctx context.Context, userID, eventID string, items []model.ChecklistSeed, replace bool) ([]model.ChecklistItem, error) {
	fields := map[string]any{"user_id": userID, "event_id": eventID}
	clean := make([]model.ChecklistSeed, 0, len(items))
	for _, it := range items {
		seed, err := cleanSeed(it)
		if err != nil {
			return nil, s.fail("apply_bulk", err, fields)
		}
		clean = append(clean, seed)
	}
	maxItems, err := s.taskLimit(ctx, userID)
	if err != nil {
		return nil, s.fail("apply_bulk", err, fields)
	}

	created, err := s.repo.Append(ctx, userID, eventID, clean, replace, maxItems)
	if err != nil {
		return nil, s.fail("apply_bulk", err, fields)
	}
	s.invalidate(ctx, userID, eventID)
	s.logger.Debug().Str("event_id", eventID).Int("count", len(created)).Bool("replace", replace).Msg("Applied checklist items")
	return created, nil
}

func (s *checklistService) CopyEvent(ctx context.Context, userID, sourceEventID, targetEventID string, replace bool) ([]model.ChecklistItem, error) {
	items, err := s.CopyFrom(ctx, userID, sourceEventID)
	if err != nil {
		return nil, err
	}
	seeds := make([]model.ChecklistSeed, len(items))
	for i, it := range items {
		seeds[i] = model.ChecklistSeed{Phase: it.Phase, Text: it.Text}
	}
	return s.ApplyBulk(ctx, userID, targetEventID, seeds, replace)
}

func (s *checklistService) ApplyTemplate(ctx context.Context, userID, eventID, templateKey string, replace bool) ([]model.ChecklistItem, error) {
	t, ok := findTemplate(templateKey)
	if !ok {
		return nil, s.fail("apply_template", ErrUnknownTemplate, map[string]any{"template": templateKey})
	}
	return s.ApplyBulk(ctx, userID, eventID, t.Items, replace)
}
