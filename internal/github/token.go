package github

import (
	"context"

	"github.com/octotrack/octotrack-api/internal/config"
	"github.com/octotrack/octotrack-api/internal/user"
)

// TokenProvider resolves the caller's GitHub access token. An absent or
// unreadable token is reported as ErrNoProviderToken so handlers can answer
// 401 instead of 500.
type TokenProvider interface {
	ProviderToken(ctx context.Context, userID string) (string, error)
}

type storeTokenProvider struct {
	userRepo user.UserRepository
}

func NewTokenProvider(userRepo user.UserRepository) TokenProvider {
	return &storeTokenProvider{userRepo: userRepo}
}

func (p *storeTokenProvider) ProviderToken(ctx context.Context, userID string) (string, error) {
	log := config.WithContext(ctx)

	u, err := p.userRepo.GetByID(userID)
	if err != nil {
		log.WithError(err).Error("Failed to load user for token resolution")
		return "", err
	}
	if u == nil || u.EncryptedGithubAccessToken == "" {
		return "", ErrNoProviderToken
	}

	token, err := config.Decrypt(u.EncryptedGithubAccessToken)
	if err != nil {
		log.WithError(err).Warn("Failed to decrypt stored GitHub token")
		return "", ErrNoProviderToken
	}
	return token, nil
}
