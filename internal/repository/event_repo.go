package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"boothdesk/internal/model"
)

type EventRepository interface {
	// List returns the user's events by start date. An empty status lists all.
	List(ctx context.Context, userID, status string) ([]model.Event, error)
	GetByID(ctx context.Context, userID, eventID string) (*model.Event, error)
	Create(ctx context.Context, e *model.Event) error
	Update(ctx context.Context, userID, eventID string, patch model.EventPatch) (*model.Event, error)
	Delete(ctx context.Context, userID, eventID string) error
	CountActive(ctx context.Context, userID string) (int, error)
	SetContractPath(ctx context.Context, userID, eventID string, path *string) error
}

type eventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) EventRepository {
	return &eventRepo{db: db}
}

const eventColumns = `id, user_id, title, event_type, client_name, location, starts_at, status, notes, contract_path, created_at, updated_at`

func scanEvent(row rowScanner) (*model.Event, error) {
	var e model.Event
	if err := row.Scan(
		&e.ID, &e.UserID, &e.Title, &e.EventType, &e.ClientName, &e.Location,
		&e.StartsAt, &e.Status, &e.Notes, &e.ContractPath, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepo) List(ctx context.Context, userID, status string) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE user_id = $1`
	args := []any{userID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY starts_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) GetByID(ctx context.Context, userID, eventID string) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND user_id = $2`
	e, err := scanEvent(r.db.QueryRowContext(ctx, query, eventID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting event %s: %w", eventID, err)
	}
	return e, nil
}

func (r *eventRepo) Create(ctx context.Context, e *model.Event) error {
	query := `
		INSERT INTO events (user_id, title, event_type, client_name, location, starts_at, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + eventColumns
	saved, err := scanEvent(r.db.QueryRowContext(ctx, query,
		e.UserID, e.Title, e.EventType, e.ClientName, e.Location, e.StartsAt, e.Status, e.Notes,
	))
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	*e = *saved
	return nil
}

func (r *eventRepo) Update(ctx context.Context, userID, eventID string, patch model.EventPatch) (*model.Event, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.EventType != nil {
		add("event_type", *patch.EventType)
	}
	if patch.ClientName != nil {
		add("client_name", *patch.ClientName)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.StartsAt != nil {
		add("starts_at", *patch.StartsAt)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, userID, eventID)
	}
	args = append(args, eventID, userID)
	query := fmt.Sprintf(`
		UPDATE events
		SET %s, updated_at = NOW()
		WHERE id = $%d AND user_id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), len(args)-1, len(args), eventColumns)

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating event %s: %w", eventID, err)
	}
	return e, nil
}

func (r *eventRepo) Delete(ctx context.Context, userID, eventID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return fmt.Errorf("deleting event %s: %w", eventID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("deleting event %s: %w", eventID, err)
	} else if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *eventRepo) CountActive(ctx context.Context, userID string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM events WHERE user_id = $1 AND status IN ('planned', 'confirmed')`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting active events: %w", err)
	}
	return n, nil
}

func (r *eventRepo) SetContractPath(ctx context.Context, userID, eventID string, path *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET contract_path = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
		path, eventID, userID,
	)
	if err != nil {
		return fmt.Errorf("setting contract path of event %s: %w", eventID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("setting contract path of event %s: %w", eventID, err)
	} else if n == 0 {
		return ErrEventNotFound
	}
	return nil
}
