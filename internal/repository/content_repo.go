package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"boothdesk/internal/model"
)

type ContentRepository interface {
	// ListMonth returns entries scheduled in [from, to), ordered by date.
	ListMonth(ctx context.Context, userID string, from, to time.Time) ([]model.Content, error)
	GetByID(ctx context.Context, userID, contentID string) (*model.Content, error)
	Create(ctx context.Context, c *model.Content) error
	Update(ctx context.Context, userID, contentID string, patch model.ContentPatch) (*model.Content, error)
	Delete(ctx context.Context, userID, contentID string) error
	CountBetween(ctx context.Context, userID string, from, to time.Time) (int, error)

	// Generation job state. These are called by the worker and are not tenant scoped.
	MarkPending(ctx context.Context, userID, contentID string) error
	MarkGenerated(ctx context.Context, contentID string, generated *model.GeneratedContent) error
	MarkFailed(ctx context.Context, contentID, details string) error
	Get(ctx context.Context, contentID string) (*model.Content, error)
}

type contentRepo struct {
	db *sql.DB
}

func NewContentRepo(db *sql.DB) ContentRepository {
	return &contentRepo{db: db}
}

const contentColumns = `id, user_id, scheduled_for, content_type, event_type, objective, main_idea, status, generated, error_details, created_at, updated_at`

func scanContent(row rowScanner) (*model.Content, error) {
	var c model.Content
	var generated []byte
	if err := row.Scan(
		&c.ID, &c.UserID, &c.ScheduledFor, &c.ContentType, &c.EventType, &c.Objective,
		&c.MainIdea, &c.Status, &generated, &c.ErrorDetails, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(generated) > 0 {
		var g model.GeneratedContent
		if err := json.Unmarshal(generated, &g); err != nil {
			return nil, fmt.Errorf("decoding generated content: %w", err)
		}
		c.Generated = &g
	}
	return &c, nil
}

func encodeGenerated(g *model.GeneratedContent) (any, error) {
	if g == nil {
		return nil, nil
	}
	b, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encoding generated content: %w", err)
	}
	return string(b), nil
}

func (r *contentRepo) ListMonth(ctx context.Context, userID string, from, to time.Time) ([]model.Content, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM contents
		WHERE user_id = $1 AND scheduled_for >= $2 AND scheduled_for < $3
		ORDER BY scheduled_for ASC, created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("querying contents: %w", err)
	}
	defer rows.Close()

	contents := []model.Content{}
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning content: %w", err)
		}
		contents = append(contents, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contents: %w", err)
	}
	return contents, nil
}

func (r *contentRepo) GetByID(ctx context.Context, userID, contentID string) (*model.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM contents WHERE id = $1 AND user_id = $2`
	return r.getOne(ctx, query, contentID, userID)
}

func (r *contentRepo) Get(ctx context.Context, contentID string) (*model.Content, error) {
	return r.getOne(ctx, `SELECT `+contentColumns+` FROM contents WHERE id = $1`, contentID)
}

func (r *contentRepo) getOne(ctx context.Context, query string, args ...any) (*model.Content, error) {
	c, err := scanContent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting content: %w", err)
	}
	return c, nil
}

func (r *contentRepo) Create(ctx context.Context, c *model.Content) error {
	generated, err := encodeGenerated(c.Generated)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO contents (user_id, scheduled_for, content_type, event_type, objective, main_idea, status, generated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + contentColumns
	saved, err := scanContent(r.db.QueryRowContext(ctx, query,
		c.UserID, c.ScheduledFor, c.ContentType, c.EventType, c.Objective, c.MainIdea, c.Status, generated,
	))
	if err != nil {
		return fmt.Errorf("inserting content: %w", err)
	}
	*c = *saved
	return nil
}

func (r *contentRepo) Update(ctx context.Context, userID, contentID string, patch model.ContentPatch) (*model.Content, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.ScheduledFor != nil {
		add("scheduled_for", *patch.ScheduledFor)
	}
	if patch.ContentType != nil {
		add("content_type", *patch.ContentType)
	}
	if patch.EventType != nil {
		add("event_type", *patch.EventType)
	}
	if patch.Objective != nil {
		add("objective", *patch.Objective)
	}
	if patch.MainIdea != nil {
		add("main_idea", *patch.MainIdea)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Generated != nil {
		g, err := encodeGenerated(patch.Generated)
		if err != nil {
			return nil, err
		}
		add("generated", g)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, userID, contentID)
	}
	args = append(args, contentID, userID)
	query := fmt.Sprintf(`
		UPDATE contents
		SET %s, updated_at = NOW()
		WHERE id = $%d AND user_id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), len(args)-1, len(args), contentColumns)

	c, err := scanContent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating content %s: %w", contentID, err)
	}
	return c, nil
}

func (r *contentRepo) Delete(ctx context.Context, userID, contentID string) error {
	return r.execOne(ctx, "deleting content",
		`DELETE FROM contents WHERE id = $1 AND user_id = $2`, contentID, userID)
}

func (r *contentRepo) CountBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM contents WHERE user_id = $1 AND scheduled_for >= $2 AND scheduled_for < $3`
	if err := r.db.QueryRowContext(ctx, query, userID, from, to).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting contents: %w", err)
	}
	return n, nil
}

func (r *contentRepo) MarkPending(ctx context.Context, userID, contentID string) error {
	return r.execOne(ctx, "marking content pending",
		`UPDATE contents SET status = 'pending', error_details = NULL, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
		contentID, userID)
}

func (r *contentRepo) MarkGenerated(ctx context.Context, contentID string, generated *model.GeneratedContent) error {
	g, err := encodeGenerated(generated)
	if err != nil {
		return err
	}
	return r.execOne(ctx, "storing generated content",
		`UPDATE contents SET status = 'generated', generated = $1, error_details = NULL, updated_at = NOW() WHERE id = $2`,
		g, contentID)
}

func (r *contentRepo) MarkFailed(ctx context.Context, contentID, details string) error {
	return r.execOne(ctx, "marking content failed",
		`UPDATE contents SET status = 'failed', error_details = $1, updated_at = NOW() WHERE id = $2`,
		details, contentID)
}

func (r *contentRepo) execOne(ctx context.Context, what, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
