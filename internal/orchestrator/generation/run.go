// Package generation runs the worker that fills content calendar entries
// from queued AI generation jobs.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"boothdesk/internal/config"
	ai "boothdesk/internal/generation"
	"boothdesk/internal/model"
	"boothdesk/internal/pubsub"
	"boothdesk/internal/repository"

	"github.com/rs/zerolog"
)

// Processor handles one generation job per message.
type Processor struct {
	contents       repository.ContentRepository
	client         ai.Client
	maxRetries     int
	backoffInitial time.Duration
	backoffMax     time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
	logger         zerolog.Logger
}

func NewProcessor(cfg *config.Config, contents repository.ContentRepository, client ai.Client, logger zerolog.Logger) *Processor {
	retries := cfg.GenerationMaxRetries
	if retries < 1 {
		retries = 1
	}
	return &Processor{
		contents:       contents,
		client:         client,
		maxRetries:     retries,
		backoffInitial: cfg.GenerationBackoffInitial,
		backoffMax:     cfg.GenerationBackoffMax,
		sleep:          sleepCtx,
		logger:         logger.With().Str("orchestrator", "generation").Logger(),
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Handle processes a job message. A returned error nacks the message so
// Pub/Sub redelivers it and, once attempts run out, dead-letters it.
func (p *Processor) Handle(ctx context.Context, msg *pubsub.Message) error {
	log := p.logger.With().Str("message_id", msg.ID).Logger()

	// 1. Parse payload
	var job model.GenerationJob
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		log.Error().Err(err).Msg("Invalid generation payload; leaving it for the dead-letter topic")
		return fmt.Errorf("invalid generation payload: %w", err)
	}
	if job.ContentID == "" {
		log.Error().Msg("Generation payload without content_id; leaving it for the dead-letter topic")
		return errors.New("generation payload without content_id")
	}
	log = log.With().Str("content_id", job.ContentID).Logger()

	// 2. Load the entry; deleted or already processed entries are dropped
	c, err := p.contents.Get(ctx, job.ContentID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn().Msg("Content no longer exists; dropping job")
		return nil
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to load content; will retry")
		return err
	}
	if c.Status != model.ContentStatusPending {
		log.Info().Str("status", c.Status).Msg("Content is not pending; dropping duplicate job")
		return nil
	}

	// 3. Call the AI endpoint with retry/backoff
	out, genErr := p.generate(ctx, log, c.GenerationRequest())
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if genErr != nil {
		if err := p.contents.MarkFailed(ctx, c.ID, genErr.Error()); err != nil {
			log.Error().Err(err).Msg("Failed to mark content failed; will retry")
			return err
		}
		log.Warn().Err(genErr).Int("attempts", p.maxRetries).Msg("Generation failed; content marked failed")
		return nil
	}

	// 4. Store the post
	if err := p.contents.MarkGenerated(ctx, c.ID, out); err != nil {
		log.Error().Err(err).Msg("Failed to store generated content; will retry")
		return err
	}
	log.Info().Msg("Content generated")
	return nil
}

func (p *Processor) generate(ctx context.Context, log zerolog.Logger, req model.GenerationRequest) (*model.GeneratedContent, error) {
	backoff := p.backoffInitial
	var lastErr error
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		start := time.Now()
		out, err := p.client.Generate(ctx, req)
		if err == nil {
			log.Info().Str("duration", time.Since(start).String()).Int("attempt", attempt).Msg("Generation endpoint succeeded")
			return out, nil
		}
		lastErr = err
		if !ai.IsRetryable(err) {
			log.Error().Err(err).Int("attempt", attempt).Msg("Generation rejected; not retrying")
			break
		}
		if attempt == p.maxRetries {
			break
		}
		log.Error().Err(err).Int("attempt", attempt).Msg("Generation endpoint call failed, retrying")
		if err := p.sleep(ctx, backoff); err != nil {
			return nil, err
		}
		backoff *= 2
		if backoff > p.backoffMax {
			backoff = p.backoffMax
		}
	}
	return nil, fmt.Errorf("generation failed: %w", lastErr)
}

// Run starts the generation orchestrator and blocks until ctx is done.
func Run(ctx context.Context, logger zerolog.Logger, cfg *config.Config, sub pubsub.Subscriber, p *Processor) error {
	logger.Info().
		Str("subscription", cfg.PubSubGenerationSubscription).
		Int("max_outstanding", cfg.GenerationMaxOutstanding).
		Msg("Starting generation orchestrator")

	err := sub.Receive(ctx, cfg.PubSubGenerationSubscription, p.Handle)
	if err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info().Msg("Shutting down generation orchestrator")
	return nil
}
