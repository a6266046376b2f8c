package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"boothdesk/internal/access"
	"boothdesk/internal/model"
	"boothdesk/internal/repository"

	"github.com/rs/zerolog"
)

type LeadService interface {
	List(ctx context.Context, userID string) ([]model.Lead, error)
	Create(ctx context.Context, l *model.Lead) (*model.Lead, error)
	Update(ctx context.Context, userID, leadID string, patch model.LeadPatch) (*model.Lead, error)
	Delete(ctx context.Context, userID, leadID string) error
	// ExportCSV writes every lead of the user as CSV. Export is a paid feature.
	ExportCSV(ctx context.Context, userID string, w io.Writer) error
}

type leadService struct {
	repo   repository.LeadRepository
	access AccessService
	logger zerolog.Logger
}

func NewLeadService(repo repository.LeadRepository, accessSvc AccessService, logger zerolog.Logger) LeadService {
	return &leadService{
		repo:   repo,
		access: accessSvc,
		logger: logger.With().Str("service", "LeadService").Logger(),
	}
}

func (s *leadService) List(ctx context.Context, userID string) ([]model.Lead, error) {
	leads, err := s.repo.List(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list leads")
		return nil, fmt.Errorf("listing leads: %w", err)
	}
	return leads, nil
}

func (s *leadService) Create(ctx context.Context, l *model.Lead) (*model.Lead, error) {
	n, err := s.repo.Count(ctx, l.UserID)
	if err != nil {
		return nil, fmt.Errorf("counting leads: %w", err)
	}
	if err := s.access.Require(ctx, l.UserID, func(i access.Info) bool { return i.CanAddLead(n) }); err != nil {
		return nil, err
	}
	if l.Status == "" {
		l.Status = model.LeadStatusNew
	}
	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error().Err(err).Str("user_id", l.UserID).Msg("Failed to create lead")
		return nil, fmt.Errorf("creating lead: %w", err)
	}
	return l, nil
}

func (s *leadService) Update(ctx context.Context, userID, leadID string, patch model.LeadPatch) (*model.Lead, error) {
	l, err := s.repo.Update(ctx, userID, leadID, patch)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Str("lead_id", leadID).Msg("Failed to update lead")
		return nil, fmt.Errorf("updating lead: %w", err)
	}
	return l, nil
}

func (s *leadService) Delete(ctx context.Context, userID, leadID string) error {
	err := s.repo.Delete(ctx, userID, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrLeadNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Str("lead_id", leadID).Msg("Failed to delete lead")
		return fmt.Errorf("deleting lead: %w", err)
	}
	return nil
}

var leadCSVHeader = []string{"name", "email", "phone", "event_type", "event_date", "status", "notes", "created_at"}

func (s *leadService) ExportCSV(ctx context.Context, userID string, w io.Writer) error {
	if err := s.access.RequireFeature(ctx, userID, access.Info.CanExport); err != nil {
		return err
	}
	leads, err := s.List(ctx, userID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(leadCSVHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, l := range leads {
		eventDate := ""
		if l.EventDate != nil {
			eventDate = l.EventDate.Format(time.DateOnly)
		}
		record := []string{l.Name, l.Email, l.Phone, l.EventType, eventDate, l.Status, l.Notes, l.CreatedAt.Format(time.RFC3339)}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
