package service

import (
	"context"
	"fmt"
	"time"

	"boothdesk/internal/access"
	"boothdesk/internal/repository"
	"boothdesk/internal/storage"

	"github.com/rs/zerolog"
)

const contractContentType = "application/pdf"

// ContractURL is a presigned URL to an event's contract file.
type ContractURL struct {
	URL       string    `json:"url"`
	Path      string    `json:"path"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ContractService stores the signed contract PDF of an event.
type ContractService interface {
	// UploadURL returns a presigned PUT URL and records the contract path on the event.
	UploadURL(ctx context.Context, userID, eventID string) (*ContractURL, error)
	DownloadURL(ctx context.Context, userID, eventID string) (*ContractURL, error)
	// Confirm checks that the uploaded object exists. A missing object clears the path.
	Confirm(ctx context.Context, userID, eventID string) error
	Remove(ctx context.Context, userID, eventID string) error
}

type contractService struct {
	events repository.EventRepository
	access AccessService
	store  storage.ObjectStore
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// NewContractService creates a ContractService. A nil store disables contracts.
func NewContractService(events repository.EventRepository, accessSvc AccessService, store storage.ObjectStore, ttl time.Duration, logger zerolog.Logger) ContractService {
	return &contractService{
		events: events,
		access: accessSvc,
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: logger.With().Str("service", "ContractService").Logger(),
	}
}

// ContractPath is the object key of an event's contract.
func ContractPath(userID, eventID string) string {
	return fmt.Sprintf("contracts/%s/%s/contract.pdf", userID, eventID)
}

func (s *contractService) UploadURL(ctx context.Context, userID, eventID string) (*ContractURL, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	if err := s.access.RequireFeature(ctx, userID, access.Info.CanUploadContracts); err != nil {
		return nil, err
	}
	if _, err := s.events.GetByID(ctx, userID, eventID); err != nil {
		return nil, mapEventErr(err)
	}

	// 1. Presign the upload
	path := ContractPath(userID, eventID)
	expires := s.now().Add(s.ttl)
	url, err := s.store.PresignPut(ctx, path, contractContentType, s.ttl)
	if err != nil {
		s.logger.Error().Err(err).Str("event_id", eventID).Msg("Failed to generate presigned PUT URL")
		return nil, fmt.Errorf("presigning contract upload: %w", err)
	}

	// 2. Record the path on the event
	if err := s.events.SetContractPath(ctx, userID, eventID, &path); err != nil {
		s.logger.Error().Err(err).Str("event_id", eventID).Msg("Failed to store contract path")
		return nil, fmt.Errorf("storing contract path: %w", mapEventErr(err))
	}
	return &ContractURL{URL: url, Path: path, ExpiresAt: expires}, nil
}

func (s *contractService) contractPath(ctx context.Context, userID, eventID string) (string, error) {
	e, err := s.events.GetByID(ctx, userID, eventID)
	if err != nil {
		return "", mapEventErr(err)
	}
	if e.ContractPath == nil || *e.ContractPath == "" {
		return "", ErrContractNotUploaded
	}
	return *e.ContractPath, nil
}

func (s *contractService) DownloadURL(ctx context.Context, userID, eventID string) (*ContractURL, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	path, err := s.contractPath(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	expires := s.now().Add(s.ttl)
	url, err := s.store.PresignGet(ctx, path, s.ttl)
	if err != nil {
		s.logger.Error().Err(err).Str("event_id", eventID).Msg("Failed to generate presigned GET URL")
		return nil, fmt.Errorf("presigning contract download: %w", err)
	}
	return &ContractURL{URL: url, Path: path, ExpiresAt: expires}, nil
}

func (s *contractService) Confirm(ctx context.Context, userID, eventID string) error {
	if s.store == nil {
		return ErrStorageDisabled
	}
	path, err := s.contractPath(ctx, userID, eventID)
	if err != nil {
		return err
	}
	ok, err := s.store.Exists(ctx, path)
	if err != nil {
		return fmt.Errorf("checking contract object: %w", err)
	}
	if !ok {
		if err := s.events.SetContractPath(ctx, userID, eventID, nil); err != nil {
			s.logger.Warn().Err(err).Str("event_id", eventID).Msg("Failed to clear dangling contract path")
		}
		return ErrContractNotUploaded
	}
	return nil
}

func (s *contractService) Remove(ctx context.Context, userID, eventID string) error {
	if s.store == nil {
		return ErrStorageDisabled
	}
	path, err := s.contractPath(ctx, userID, eventID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, path); err != nil {
		return fmt.Errorf("deleting contract object: %w", err)
	}
	if err := s.events.SetContractPath(ctx, userID, eventID, nil); err != nil {
		return fmt.Errorf("clearing contract path: %w", mapEventErr(err))
	}
	return nil
}
