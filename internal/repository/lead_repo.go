package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"boothdesk/internal/model"
)

type LeadRepository interface {
	List(ctx context.Context, userID string) ([]model.Lead, error)
	Create(ctx context.Context, l *model.Lead) error
	Update(ctx context.Context, userID, leadID string, patch model.LeadPatch) (*model.Lead, error)
	Delete(ctx context.Context, userID, leadID string) error
	Count(ctx context.Context, userID string) (int, error)
}

type leadRepo struct {
	db *sql.DB
}

func NewLeadRepo(db *sql.DB) LeadRepository {
	return &leadRepo{db: db}
}

const leadColumns = `id, user_id, name, email, phone, event_type, event_date, status, notes, created_at, updated_at`

func scanLead(row rowScanner) (*model.Lead, error) {
	var l model.Lead
	if err := row.Scan(
		&l.ID, &l.UserID, &l.Name, &l.Email, &l.Phone, &l.EventType,
		&l.EventDate, &l.Status, &l.Notes, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *leadRepo) List(ctx context.Context, userID string) ([]model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying leads: %w", err)
	}
	defer rows.Close()

	leads := []model.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning lead: %w", err)
		}
		leads = append(leads, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating leads: %w", err)
	}
	return leads, nil
}

func (r *leadRepo) Create(ctx context.Context, l *model.Lead) error {
	query := `
		INSERT INTO leads (user_id, name, email, phone, event_type, event_date, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + leadColumns
	saved, err := scanLead(r.db.QueryRowContext(ctx, query,
		l.UserID, l.Name, l.Email, l.Phone, l.EventType, l.EventDate, l.Status, l.Notes,
	))
	if err != nil {
		return fmt.Errorf("inserting lead: %w", err)
	}
	*l = *saved
	return nil
}

func (r *leadRepo) Update(ctx context.Context, userID, leadID string, patch model.LeadPatch) (*model.Lead, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.EventType != nil {
		add("event_type", *patch.EventType)
	}
	if patch.EventDate != nil {
		add("event_date", *patch.EventDate)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}

	var row rowScanner
	if len(sets) == 0 {
		row = r.db.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1 AND user_id = $2`, leadID, userID)
	} else {
		args = append(args, leadID, userID)
		query := fmt.Sprintf(`
			UPDATE leads
			SET %s, updated_at = NOW()
			WHERE id = $%d AND user_id = $%d
			RETURNING %s
		`, strings.Join(sets, ", "), len(args)-1, len(args), leadColumns)
		row = r.db.QueryRowContext(ctx, query, args...)
	}

	l, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating lead %s: %w", leadID, err)
	}
	return l, nil
}

func (r *leadRepo) Delete(ctx context.Context, userID, leadID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1 AND user_id = $2`, leadID, userID)
	if err != nil {
		return fmt.Errorf("deleting lead %s: %w", leadID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("deleting lead %s: %w", leadID, err)
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *leadRepo) Count(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting leads: %w", err)
	}
	return n, nil
}
