package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"boothdesk/internal/access"
	"boothdesk/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessService_EvaluatesProfileAtClock(t *testing.T) {
	created := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	profiles := newFakeProfiles(model.Profile{UserID: "u1", CreatedAt: created})
	now := created.Add(40 * 24 * time.Hour)
	svc := NewAccessService(profiles, func() time.Time { return now }, zerolog.Nop())

	info, err := svc.GetAccessInfo(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, access.PhaseWarning, info.Phase)
	assert.Equal(t, access.Quota(5), info.DaysRemaining)
	assert.Equal(t, access.ProLimits, info.Limits)
}

func TestAccessService_MissingProfileIsLimited(t *testing.T) {
	svc := NewAccessService(newFakeProfiles(), nil, zerolog.Nop())

	info, err := svc.GetAccessInfo(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, access.PhaseLimited, info.Phase)
	assert.Equal(t, access.FreeLimits, info.Limits)
}

func TestAccessService_StorageErrorPropagates(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.err = errors.New("db down")
	svc := NewAccessService(profiles, nil, zerolog.Nop())

	_, err := svc.GetAccessInfo(context.Background(), "u1")
	assert.Error(t, err)
	assert.ErrorIs(t, svc.Require(context.Background(), "u1", func(access.Info) bool { return true }), profiles.err)
}

func TestAccessService_Require(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	profiles := newFakeProfiles(
		model.Profile{UserID: "old", CreatedAt: created},
		model.Profile{UserID: "pro", CreatedAt: created, IsPremium: true},
	)
	now := created.AddDate(0, 6, 0)
	svc := NewAccessService(profiles, func() time.Time { return now }, zerolog.Nop())
	ctx := context.Background()

	canAddFourth := func(i access.Info) bool { return i.CanAddEvent(3) }
	assert.ErrorIs(t, svc.Require(ctx, "old", canAddFourth), ErrLimitReached)
	assert.NoError(t, svc.Require(ctx, "pro", canAddFourth))

	export := func(i access.Info) bool { return i.CanExport() }
	assert.ErrorIs(t, svc.RequireFeature(ctx, "old", export), ErrFeatureLocked)
	assert.NoError(t, svc.RequireFeature(ctx, "pro", export))
}
