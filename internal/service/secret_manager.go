package service

import (
	"context"
	"fmt"
	"strings"

	"boothdesk/internal/config"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

// SecretManagerService reads deployment secrets such as the AI provider key.
type SecretManagerService interface {
	GetSecret(ctx context.Context, secretID string) (string, error)
	Close() error
}

type secretManagerService struct {
	client    *secretmanager.Client
	projectID string
}

func NewSecretManagerService(ctx context.Context, cfg *config.Config, opts ...option.ClientOption) (SecretManagerService, error) {
	if cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("GCP project id is not set")
	}

	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}

	return &secretManagerService{
		client:    client,
		projectID: cfg.GCPProjectID,
	}, nil
}

// SecretVersionName resolves a secret id to its latest version resource name.
// Fully qualified names are returned unchanged.
func SecretVersionName(projectID, secretID string) string {
	if strings.HasPrefix(secretID, "projects/") {
		if strings.Contains(secretID, "/versions/") {
			return secretID
		}
		return secretID + "/versions/latest"
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, secretID)
}

func (s *secretManagerService) GetSecret(ctx context.Context, secretID string) (string, error) {
	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: SecretVersionName(s.projectID, secretID),
	}

	result, err := s.client.AccessSecretVersion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to access secret version: %w", err)
	}

	return strings.TrimSpace(string(result.Payload.Data)), nil
}

func (s *secretManagerService) Close() error {
	return s.client.Close()
}

// ResolveAIKey returns the inline AI key, or reads it from Secret Manager
// when only the secret id is configured.
func ResolveAIKey(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.AIAPIKey != "" || cfg.AIAPIKeySecret == "" {
		return cfg.AIAPIKey, nil
	}
	sm, err := NewSecretManagerService(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer sm.Close()
	key, err := sm.GetSecret(ctx, cfg.AIAPIKeySecret)
	if err != nil {
		return "", fmt.Errorf("reading AI key secret: %w", err)
	}
	return key, nil
}
