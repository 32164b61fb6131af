package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cliprelay/publishbot/config"
	"github.com/cliprelay/publishbot/tiktok"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	log "github.com/sirupsen/logrus"
)

// TikTokService owns the API client and the current credential. The
// credential itself is an immutable value; this service is the single
// writer that swaps it on refresh, and readers always get a copy.
type TikTokService struct {
	config config.TikTokConfig
	client *tiktok.Client

	clientKey    string
	clientSecret string

	mu   sync.RWMutex
	cred tiktok.Credential
}

func NewTikTokService(ctx context.Context, cfg config.Config, secretsManagerClient *secretsmanager.Client) *TikTokService {
	// Get the TikTok secrets from AWS Secrets Manager
	result, err := secretsManagerClient.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(cfg.TikTok.SecretPath)})
	if err != nil {
		log.Fatal(err.Error())
	}
	var tiktokSecrets config.TikTokSecretData
	err = json.Unmarshal([]byte(*result.SecretString), &tiktokSecrets)
	if err != nil {
		log.Panicf("tiktok secrets read error: %v", err)
	}

	client := tiktok.NewClient(cfg.TikTok.ApiURL)
	log.Infof("TikTok client initialized. Host: %s", cfg.TikTok.ApiURL.String())

	s := &TikTokService{
		config:       cfg.TikTok,
		client:       client,
		clientKey:    tiktokSecrets.ClientKey,
		clientSecret: tiktokSecrets.ClientSecret,
		cred:         tiktok.Credential{RefreshToken: tiktokSecrets.RefreshToken},
	}

	// The stored secret only carries a refresh token; trade it for an
	// access token up front so the first publish doesn't have to.
	if err := s.RefreshCredential(ctx); err != nil {
		log.Fatalf("initial token refresh failed: %v", err)
	}
	return s
}

// Credential returns a copy of the current credential, refreshing it first
// if it has expired.
func (s *TikTokService) Credential(ctx context.Context) (tiktok.Credential, error) {
	s.mu.RLock()
	cred := s.cred
	s.mu.RUnlock()
	if !cred.Expired() {
		return cred, nil
	}
	if err := s.RefreshCredential(ctx); err != nil {
		return tiktok.Credential{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred, nil
}

// RefreshCredential swaps in a freshly minted credential. In-flight calls
// keep using the copy they already hold.
func (s *TikTokService) RefreshCredential(ctx context.Context) error {
	s.mu.RLock()
	cred := s.cred
	s.mu.RUnlock()

	fresh, err := s.client.RefreshCredential(ctx, s.clientKey, s.clientSecret, cred)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cred = fresh
	s.mu.Unlock()
	log.WithField("expiresAt", fresh.ExpiresAt).Debug("refreshed TikTok credential")
	return nil
}

func (s *TikTokService) Client() *tiktok.Client {
	return s.client
}

func (s *TikTokService) SubmitInterval() time.Duration {
	return s.config.SubmitInterval
}

func (s *TikTokService) PollInterval() time.Duration {
	return s.config.PollInterval
}

func (s *TikTokService) PollTimeout() time.Duration {
	return s.config.PollTimeout
}
