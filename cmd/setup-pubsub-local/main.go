package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"boothdesk/internal/config"
	"boothdesk/internal/logger"

	"cloud.google.com/go/pubsub"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// 'host.docker.internal' lets the emulator reach the API running on the host.
const dlqPushEndpointLocal = "http://host.docker.internal:8080/v1/dlq"

func main() {
	reset := flag.Bool("reset", false, "Delete every topic and subscription in the emulator first")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, relying on system environment variables.")
	}

	logger := logger.New()
	logger.Info().Msg("Starting Pub/Sub setup for the local environment.")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Failed to load config: %v", err)
	}
	if cfg.GCPProjectID == "" {
		logger.Fatal().Msg("GCP_PROJECT_ID is not set in the environment.")
	}
	if cfg.PubSubEmulatorHost == "" {
		logger.Fatal().Msg("PUBSUB_EMULATOR_HOST must be set for local environment.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := pubsub.NewClient(ctx, cfg.GCPProjectID,
		option.WithEndpoint(cfg.PubSubEmulatorHost),
		option.WithoutAuthentication(),
	)
	if err != nil {
		logger.Fatal().Msgf("Failed to create Pub/Sub client: %v", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error().Msgf("Failed to close pubsub client: %v", err)
		}
	}()

	if *reset {
		resetLocalEmulator(ctx, client, logger)
	}
	if err := ensureGenerationResources(ctx, client, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("Pub/Sub setup failed")
	}

	logger.Info().Msg("Pub/Sub setup for local environment complete.")
}

// resetLocalEmulator deletes all topics and subscriptions. Emulator only.
func resetLocalEmulator(ctx context.Context, client *pubsub.Client, logger zerolog.Logger) {
	subs := client.Subscriptions(ctx)
	for {
		sub, err := subs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Fatal().Msgf("Failed to list subscriptions: %v", err)
		}
		logger.Info().Msgf("Deleting subscription: %s", sub.ID())
		if err := sub.Delete(ctx); err != nil {
			logger.Warn().Msgf("Failed to delete subscription %s: %v", sub.ID(), err)
		}
	}

	topics := client.Topics(ctx)
	for {
		topic, err := topics.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Fatal().Msgf("Failed to list topics: %v", err)
		}
		logger.Info().Msgf("Deleting topic: %s", topic.ID())
		if err := topic.Delete(ctx); err != nil {
			logger.Warn().Msgf("Failed to delete topic %s: %v", topic.ID(), err)
		}
	}
}

// ensureGenerationResources creates the generation topic with its pull
// subscription for the worker, and the dead-letter topic pushed to /v1/dlq.
func ensureGenerationResources(ctx context.Context, client *pubsub.Client, cfg *config.Config, logger zerolog.Logger) error {
	sevenDays := 7 * 24 * time.Hour
	topicID := cfg.PubSubGenerationTopic
	dlqTopicID := topicID + "-dlq"

	dlqTopic, err := ensureTopic(ctx, client, logger, dlqTopicID, sevenDays)
	if err != nil {
		return err
	}
	mainTopic, err := ensureTopic(ctx, client, logger, topicID, sevenDays)
	if err != nil {
		return err
	}

	retry := &pubsub.RetryPolicy{
		MinimumBackoff: 10 * time.Second,
		MaximumBackoff: 600 * time.Second,
	}

	if err := ensureSubscription(ctx, client, logger, cfg.PubSubGenerationSubscription, pubsub.SubscriptionConfig{
		Topic:       mainTopic,
		AckDeadline: 180 * time.Second,
		RetryPolicy: retry,
		DeadLetterPolicy: &pubsub.DeadLetterPolicy{
			DeadLetterTopic:     dlqTopic.String(),
			MaxDeliveryAttempts: 5,
		},
	}); err != nil {
		return err
	}

	return ensureSubscription(ctx, client, logger, dlqTopicID+"-sub", pubsub.SubscriptionConfig{
		Topic:       dlqTopic,
		PushConfig:  pubsub.PushConfig{Endpoint: dlqPushEndpointLocal},
		AckDeadline: 60 * time.Second,
		RetryPolicy: retry,
	})
}

func ensureTopic(ctx context.Context, client *pubsub.Client, logger zerolog.Logger, topicID string, retention time.Duration) (*pubsub.Topic, error) {
	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking topic %s: %w", topicID, err)
	}
	if exists {
		logger.Info().Msgf("Topic %s already exists", topicID)
		return topic, nil
	}

	logger.Info().Msgf("Creating topic: %s with %v retention", topicID, retention)
	topic, err = client.CreateTopicWithConfig(ctx, topicID, &pubsub.TopicConfig{RetentionDuration: retention})
	if err != nil {
		return nil, fmt.Errorf("creating topic %s: %w", topicID, err)
	}
	return topic, nil
}

func ensureSubscription(ctx context.Context, client *pubsub.Client, logger zerolog.Logger, subID string, want pubsub.SubscriptionConfig) error {
	sub := client.Subscription(subID)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return fmt.Errorf("checking subscription %s: %w", subID, err)
	}

	if !exists {
		logger.Info().Msgf("Creating subscription %s", subID)
		if _, err := client.CreateSubscription(ctx, subID, want); err != nil {
			return fmt.Errorf("creating subscription %s: %w", subID, err)
		}
		return nil
	}

	have, err := sub.Config(ctx)
	if err != nil {
		return fmt.Errorf("reading subscription %s: %w", subID, err)
	}
	if have.PushConfig.Endpoint == want.PushConfig.Endpoint && have.AckDeadline == want.AckDeadline {
		logger.Info().Msgf("Subscription %s is up to date", subID)
		return nil
	}

	logger.Info().Msgf("Updating subscription %s", subID)
	_, err = sub.Update(ctx, pubsub.SubscriptionConfigToUpdate{
		PushConfig:  &want.PushConfig,
		AckDeadline: want.AckDeadline,
		RetryPolicy: want.RetryPolicy,
	})
	if err != nil {
		return fmt.Errorf("updating subscription %s: %w", subID, err)
	}
	return nil
}
