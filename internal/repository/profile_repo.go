package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"boothdesk/internal/model"
)

type ProfileRepository interface {
	// GetByID returns ErrNotFound when the user has no profile yet.
	GetByID(ctx context.Context, userID string) (*model.Profile, error)
	// Upsert creates the profile or updates its editable fields. created_at is
	// never touched once set.
	Upsert(ctx context.Context, p *model.Profile) error
	SetStripeCustomerID(ctx context.Context, userID, customerID string) error
	SetPremium(ctx context.Context, userID string, premium bool) error
	SetPremiumByCustomer(ctx context.Context, customerID string, premium bool) error
}

type profileRepo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) ProfileRepository {
	return &profileRepo{db: db}
}

const profileColumns = `user_id, business_name, email, is_premium, stripe_customer_id, created_at, updated_at`

func scanProfile(row rowScanner) (*model.Profile, error) {
	var p model.Profile
	if err := row.Scan(&p.UserID, &p.BusinessName, &p.Email, &p.IsPremium, &p.StripeCustomerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) GetByID(ctx context.Context, userID string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile %s: %w", userID, err)
	}
	return p, nil
}

func (r *profileRepo) Upsert(ctx context.Context, p *model.Profile) error {
	query := `
		INSERT INTO profiles (user_id, business_name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET business_name = EXCLUDED.business_name,
		    email = EXCLUDED.email,
		    updated_at = NOW()
		RETURNING ` + profileColumns
	saved, err := scanProfile(r.db.QueryRowContext(ctx, query, p.UserID, p.BusinessName, p.Email))
	if err != nil {
		return fmt.Errorf("upserting profile %s: %w", p.UserID, err)
	}
	*p = *saved
	return nil
}

func (r *profileRepo) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	return r.exec(ctx, "setting stripe customer",
		`UPDATE profiles SET stripe_customer_id = $1, updated_at = NOW() WHERE user_id = $2`,
		customerID, userID)
}

func (r *profileRepo) SetPremium(ctx context.Context, userID string, premium bool) error {
	return r.exec(ctx, "setting premium flag",
		`UPDATE profiles SET is_premium = $1, updated_at = NOW() WHERE user_id = $2`,
		premium, userID)
}

func (r *profileRepo) SetPremiumByCustomer(ctx context.Context, customerID string, premium bool) error {
	return r.exec(ctx, "setting premium flag by customer",
		`UPDATE profiles SET is_premium = $1, updated_at = NOW() WHERE stripe_customer_id = $2`,
		premium, customerID)
}

// exec runs a single-row update and maps "no row touched" to ErrNotFound.
func (r *profileRepo) exec(ctx context.Context, what, query string, args ...any) error {
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
