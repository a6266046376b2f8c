package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"boothdesk/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadService_CapOnLimitedAccount(t *testing.T) {
	svc := NewLeadService(&fakeLeads{}, limitedAccess(), zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		l, err := svc.Create(ctx, &model.Lead{UserID: owner, Name: "Ana"})
		require.NoError(t, err)
		assert.Equal(t, model.LeadStatusNew, l.Status)
	}
	_, err := svc.Create(ctx, &model.Lead{UserID: owner, Name: "Eleventh"})
	assert.ErrorIs(t, err, ErrLimitReached)

	// the cap is per tenant
	_, err = svc.Create(ctx, &model.Lead{UserID: "other", Name: "Bia"})
	assert.NoError(t, err)
}

func TestLeadService_UpdateAndDeleteMissing(t *testing.T) {
	svc := NewLeadService(&fakeLeads{}, proAccess(), zerolog.Nop())
	ctx := context.Background()

	status := model.LeadStatusWon
	_, err := svc.Update(ctx, owner, "missing", model.LeadPatch{Status: &status})
	assert.ErrorIs(t, err, ErrLeadNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, owner, "missing"), ErrLeadNotFound)

	l, err := svc.Create(ctx, &model.Lead{UserID: owner, Name: "Ana"})
	require.NoError(t, err)
	updated, err := svc.Update(ctx, owner, l.ID, model.LeadPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.LeadStatusWon, updated.Status)
	assert.NoError(t, svc.Delete(ctx, owner, l.ID))
}

func TestLeadService_ExportCSV(t *testing.T) {
	repo := &fakeLeads{}
	svc := NewLeadService(repo, proAccess(), zerolog.Nop())
	ctx := context.Background()

	date := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	created := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	repo.leads = []model.Lead{
		{UserID: owner, Name: "Ana, Eventos", Email: "ana@example.com", Phone: "1199", EventType: "wedding", EventDate: &date, Status: "new", Notes: "call back", CreatedAt: created},
		{UserID: owner, Name: "Bia", Status: "lost", CreatedAt: created},
		{UserID: "other", Name: "Hidden", CreatedAt: created},
	}

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, owner, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, leadCSVHeader, records[0])
	assert.Equal(t, []string{"Ana, Eventos", "ana@example.com", "1199", "wedding", "2025-06-14", "new", "call back", "2025-01-02T10:00:00Z"}, records[1])
	assert.Equal(t, "", records[2][4])
}

func TestLeadService_ExportLockedOnLimitedAccount(t *testing.T) {
	svc := NewLeadService(&fakeLeads{}, limitedAccess(), zerolog.Nop())

	var buf bytes.Buffer
	err := svc.ExportCSV(context.Background(), owner, &buf)
	assert.ErrorIs(t, err, ErrFeatureLocked)
	assert.Zero(t, buf.Len())
}
