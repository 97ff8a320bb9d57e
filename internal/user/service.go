package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/octotrack/octotrack-api/internal/auth"
	"github.com/octotrack/octotrack-api/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrExchangeFailed = errors.New("failed to exchange authorization code")
)

const (
	sessionTTL = 24 * time.Hour
	refreshTTL = 30 * 24 * time.Hour
)

type UserService interface {
	GithubLogin(ctx context.Context, code string) (*LoginResult, error)
	RefreshSession(ctx context.Context, refreshToken string) (string, error)
	CurrentUser(ctx context.Context) (*User, error)
}

type userService struct {
	repo        UserRepository
	oauthConfig *oauth2.Config
}

func NewService(repo UserRepository) UserService {
	return &userService{
		repo: repo,
		oauthConfig: &oauth2.Config{
			ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
			ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("GITHUB_REDIRECT_URL"),
			Scopes:       []string{"read:user", "repo"},
			Endpoint:     github.Endpoint,
		},
	}
}

type githubProfile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

func (s *userService) fetchProfile(ctx context.Context, token *oauth2.Token) (*githubProfile, error) {
	client := s.oauthConfig.Client(ctx, token)
	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github user endpoint returned status %d", resp.StatusCode)
	}

	var profile githubProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *userService) GithubLogin(ctx context.Context, code string) (*LoginResult, error) {
	log := config.WithContext(ctx)

	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		log.WithError(err).Warn("GitHub code exchange failed")
		return nil, ErrExchangeFailed
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		log.WithError(err).Error("Failed to fetch GitHub profile after exchange")
		return nil, err
	}

	encryptedToken, err := config.Encrypt(token.AccessToken)
	if err != nil {
		log.WithError(err).Error("Failed to encrypt GitHub access token")
		return nil, err
	}

	u := &User{
		GithubID:                   profile.ID,
		Login:                      profile.Login,
		Name:                       profile.Name,
		Email:                      profile.Email,
		AvatarURL:                  profile.AvatarURL,
		Role:                       "user",
		EncryptedGithubAccessToken: encryptedToken,
	}
	if err := s.repo.Upsert(u); err != nil {
		log.WithError(err).Error("Failed to upsert user")
		return nil, err
	}

	// Reload to get the persisted id on the conflict path.
	u, err = s.repo.GetByGithubID(profile.ID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	sessionToken, err := auth.GenerateJWT(u.ID.String(), u.Login, u.Role, sessionTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := auth.GenerateJWT(u.ID.String(), u.Login, "refresh", refreshTTL)
	if err != nil {
		return nil, err
	}

	log.WithField("user_id", u.ID).Info("User logged in with GitHub")
	return &LoginResult{User: u, SessionToken: sessionToken, RefreshToken: refreshToken}, nil
}

func (s *userService) RefreshSession(ctx context.Context, refreshToken string) (string, error) {
	claims, err := auth.ValidateJWT(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.Role != "refresh" {
		return "", auth.ErrInvalidToken
	}

	u, err := s.repo.GetByID(claims.UserID)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrUserNotFound
	}

	return auth.GenerateJWT(u.ID.String(), u.Login, u.Role, sessionTTL)
}

func (s *userService) CurrentUser(ctx context.Context) (*User, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
