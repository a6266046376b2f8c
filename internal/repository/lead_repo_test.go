package repository

import (
	"context"
	"testing"
	"time"

	"boothdesk/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var leadCols = []string{"id", "user_id", "name", "email", "phone", "event_type", "event_date", "status", "notes", "created_at", "updated_at"}

func TestLeadRepo_CreateAndList(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewLeadRepo(db)
	now := time.Now()
	date := time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO leads`).
		WithArgs("u1", "Bia", "bia@x.com", "", "party", date, model.LeadStatusNew, "").
		WillReturnRows(sqlmock.NewRows(leadCols).
			AddRow("l1", "u1", "Bia", "bia@x.com", "", "party", date, "new", "", now, now))

	l := &model.Lead{UserID: "u1", Name: "Bia", Email: "bia@x.com", EventType: "party", EventDate: &date, Status: model.LeadStatusNew}
	require.NoError(t, repo.Create(context.Background(), l))
	assert.Equal(t, "l1", l.ID)
	require.NotNil(t, l.EventDate)

	mock.ExpectQuery(`FROM leads WHERE user_id = \$1 ORDER BY created_at DESC`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(leadCols).
			AddRow("l1", "u1", "Bia", "bia@x.com", "", "party", nil, "new", "", now, now))
	leads, err := repo.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Nil(t, leads[0].EventDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepo_UpdateMissing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewLeadRepo(db)
	status := model.LeadStatusWon

	mock.ExpectQuery(`UPDATE leads\s+SET status = \$1`).
		WithArgs(status, "l9", "u1").
		WillReturnRows(sqlmock.NewRows(leadCols))

	_, err = repo.Update(context.Background(), "u1", "l9", model.LeadPatch{Status: &status})
	assert.ErrorIs(t, err, ErrNotFound)
}
