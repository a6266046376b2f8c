package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"boothdesk/internal/dbx"
	"boothdesk/internal/model"
)

// ChecklistRepository persists checklist items. Every query is scoped by the
// owning user id.
type ChecklistRepository interface {
	ListByEvent(ctx context.Context, userID, eventID string) ([]model.ChecklistItem, error)
	// Snapshot is ListByEvent for an event that must exist and belong to
	// userID; otherwise it returns ErrEventNotFound.
	Snapshot(ctx context.Context, userID, eventID string) ([]model.ChecklistItem, error)
	GetByID(ctx context.Context, userID, itemID string) (*model.ChecklistItem, error)
	CountByEvent(ctx context.Context, userID, eventID string) (int, error)
	// Append inserts seeds at the end of their phase partitions in one transaction.
	// With replace set, the event's existing items are deleted first. A
	// non-negative maxItems caps the event's item count after the insert;
	// going over it returns ErrCapacityExceeded and writes nothing.
	Append(ctx context.Context, userID, eventID string, seeds []model.ChecklistSeed, replace bool, maxItems int) ([]model.ChecklistItem, error)
	Update(ctx context.Context, userID, itemID string, patch model.ChecklistPatch) (*model.ChecklistItem, error)
	// Delete removes one item and returns it. Sibling positions are left as they are.
	Delete(ctx context.Context, userID, itemID string) (*model.ChecklistItem, error)
	DeleteByEvent(ctx context.Context, userID, eventID string) (int64, error)
	// Reorder sets position = index for every id of the partition.
	Reorder(ctx context.Context, userID, eventID string, phase model.Phase, orderedIDs []string) error
}

type checklistRepo struct {
	db *sql.DB
}

// NewChecklistRepo creates a new ChecklistRepository.
func NewChecklistRepo(db *sql.DB) ChecklistRepository {
	return &checklistRepo{db: db}
}

const checklistColumns = `id, event_id, user_id, phase, text, completed, position, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChecklistItem(row rowScanner) (*model.ChecklistItem, error) {
	var it model.ChecklistItem
	if err := row.Scan(
		&it.ID,
		&it.EventID,
		&it.UserID,
		&it.Phase,
		&it.Text,
		&it.Completed,
		&it.Position,
		&it.CreatedAt,
		&it.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *checklistRepo) ListByEvent(ctx context.Context, userID, eventID string) ([]model.ChecklistItem, error) {
	return listItems(ctx, r.db, userID, eventID)
}

func (r *checklistRepo) Snapshot(ctx context.Context, userID, eventID string) ([]model.ChecklistItem, error) {
	var items []model.ChecklistItem
	err := dbx.WithTx(ctx, r.db, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx dbx.DBTX) error {
		var id string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM events WHERE id = $1 AND user_id = $2`,
			eventID, userID,
		).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		if err != nil {
			return fmt.Errorf("looking up event %s: %w", eventID, err)
		}
		items, err = listItems(ctx, tx, userID, eventID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func listItems(ctx context.Context, q dbx.DBTX, userID, eventID string) ([]model.ChecklistItem, error) {
	query := `
		SELECT ` + checklistColumns + `
		FROM checklist_items
		WHERE event_id = $1 AND user_id = $2
		ORDER BY phase ASC, position ASC
	`
	rows, err := q.QueryContext(ctx, query, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("querying checklist items for event %s: %w", eventID, err)
	}
	defer rows.Close()

	items := []model.ChecklistItem{}
	for rows.Next() {
		it, err := scanChecklistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning checklist item: %w", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating checklist items: %w", err)
	}
	return items, nil
}

func (r *checklistRepo) GetByID(ctx context.Context, userID, itemID string) (*model.ChecklistItem, error) {
	query := `SELECT ` + checklistColumns + ` FROM checklist_items WHERE id = $1 AND user_id = $2`
	it, err := scanChecklistItem(r.db.QueryRowContext(ctx, query, itemID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting checklist item %s: %w", itemID, err)
	}
	return it, nil
}

func (r *checklistRepo) CountByEvent(ctx context.Context, userID, eventID string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM checklist_items WHERE event_id = $1 AND user_id = $2`
	if err := r.db.QueryRowContext(ctx, query, eventID, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting checklist items for event %s: %w", eventID, err)
	}
	return n, nil
}

// lockEvent takes a row lock on the parent event, serialising writers of the
// same checklist, and verifies tenant ownership.
func lockEvent(ctx context.Context, tx dbx.DBTX, userID, eventID string) error {
	var id string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM events WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		eventID, userID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("locking event %s: %w", eventID, err)
	}
	return nil
}

func (r *checklistRepo) Append(ctx context.Context, userID, eventID string, seeds []model.ChecklistSeed, replace bool, maxItems int) ([]model.ChecklistItem, error) {
	created := make([]model.ChecklistItem, 0, len(seeds))
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := lockEvent(ctx, tx, userID, eventID); err != nil {
			return err
		}
		if replace {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM checklist_items WHERE event_id = $1 AND user_id = $2`,
				eventID, userID,
			); err != nil {
				return fmt.Errorf("clearing checklist of event %s: %w", eventID, err)
			}
		}
		if maxItems >= 0 {
			var n int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM checklist_items WHERE event_id = $1`,
				eventID,
			).Scan(&n); err != nil {
				return fmt.Errorf("counting checklist items for event %s: %w", eventID, err)
			}
			if n+len(seeds) > maxItems {
				return ErrCapacityExceeded
			}
		}

		next, err := nextPositions(ctx, tx, eventID)
		if err != nil {
			return err
		}

		insert := `
			INSERT INTO checklist_items (event_id, user_id, phase, text, completed, position)
			VALUES ($1, $2, $3, $4, FALSE, $5)
			RETURNING ` + checklistColumns
		for _, s := range seeds {
			pos := next[s.Phase]
			it, err := scanChecklistItem(tx.QueryRowContext(ctx, insert, eventID, userID, string(s.Phase), s.Text, pos))
			if err != nil {
				return fmt.Errorf("inserting checklist item: %w", err)
			}
			next[s.Phase] = pos + 1
			created = append(created, *it)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// nextPositions returns max(position)+1 per phase; phases absent from the
// result start at 0.
func nextPositions(ctx context.Context, tx dbx.DBTX, eventID string) (map[model.Phase]int, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT phase, MAX(position)
		FROM checklist_items
		WHERE event_id = $1
		GROUP BY phase
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("reading partition positions: %w", err)
	}
	defer rows.Close()

	next := make(map[model.Phase]int, len(model.Phases))
	for rows.Next() {
		var phase model.Phase
		var maxPos int
		if err := rows.Scan(&phase, &maxPos); err != nil {
			return nil, fmt.Errorf("scanning partition position: %w", err)
		}
		next[phase] = maxPos + 1
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating partition positions: %w", err)
	}
	return next, nil
}

func (r *checklistRepo) Update(ctx context.Context, userID, itemID string, patch model.ChecklistPatch) (*model.ChecklistItem, error) {
	sets := []string{}
	args := []any{}
	if patch.Text != nil {
		args = append(args, *patch.Text)
		sets = append(sets, fmt.Sprintf("text = $%d", len(args)))
	}
	if patch.Completed != nil {
		args = append(args, *patch.Completed)
		sets = append(sets, fmt.Sprintf("completed = $%d", len(args)))
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, userID, itemID)
	}
	args = append(args, itemID, userID)
	query := fmt.Sprintf(`
		UPDATE checklist_items
		SET %s, updated_at = NOW()
		WHERE id = $%d AND user_id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), len(args)-1, len(args), checklistColumns)

	it, err := scanChecklistItem(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating checklist item %s: %w", itemID, err)
	}
	return it, nil
}

func (r *checklistRepo) Delete(ctx context.Context, userID, itemID string) (*model.ChecklistItem, error) {
	query := `DELETE FROM checklist_items WHERE id = $1 AND user_id = $2 RETURNING ` + checklistColumns
	it, err := scanChecklistItem(r.db.QueryRowContext(ctx, query, itemID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("deleting checklist item %s: %w", itemID, err)
	}
	return it, nil
}

func (r *checklistRepo) DeleteByEvent(ctx context.Context, userID, eventID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM checklist_items WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting checklist of event %s: %w", eventID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading deleted checklist rows: %w", err)
	}
	return n, nil
}

func (r *checklistRepo) Reorder(ctx context.Context, userID, eventID string, phase model.Phase, orderedIDs []string) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := lockEvent(ctx, tx, userID, eventID); err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT id FROM checklist_items
			WHERE event_id = $1 AND user_id = $2 AND phase = $3
		`, eventID, userID, string(phase))
		if err != nil {
			return fmt.Errorf("reading partition ids: %w", err)
		}
		current := map[string]bool{}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("scanning partition id: %w", err)
			}
			current[id] = true
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating partition ids: %w", err)
		}

		if !SamePartition(current, orderedIDs) {
			return ErrPartitionMismatch
		}

		for i, id := range orderedIDs {
			if _, err := tx.ExecContext(ctx,
				`UPDATE checklist_items SET position = $1, updated_at = NOW() WHERE id = $2`,
				i, id,
			); err != nil {
				return fmt.Errorf("setting position of %s: %w", id, err)
			}
		}
		return nil
	})
}

// SamePartition reports whether ids is a permutation of the current id set.
func SamePartition(current map[string]bool, ids []string) bool {
	if len(ids) != len(current) {
		return false
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !current[id] || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}
