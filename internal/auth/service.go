// internal/auth/service.go
// Authentication business logic

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"
	oauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/skillbarter/backend/internal/common/utils"
	"github.com/skillbarter/backend/internal/config"
	"github.com/skillbarter/backend/internal/users"
)

// Common errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrSessionNotFound    = errors.New("session not found")
	ErrGoogleToken        = errors.New("google token verification failed")
)

// Service defines authentication operations
type Service interface {
	Signup(ctx context.Context, req *SignupRequest, userAgent, ip string) (*AuthResponse, error)
	Signin(ctx context.Context, req *SigninRequest, userAgent, ip string) (*AuthResponse, error)
	GoogleSignin(ctx context.Context, req *GoogleSigninRequest, userAgent, ip string) (*AuthResponse, error)
	Refresh(ctx context.Context, req *RefreshRequest) (*TokenPair, error)
	Signout(ctx context.Context, refreshToken string) error
	SignoutAll(ctx context.Context, userID int64) error
}

// authService implements Service
type authService struct {
	repo     Repository
	userRepo users.Repository
	redis    *redis.Client
	cfg      *config.Config
}

// NewService creates an auth service
func NewService(repo Repository, userRepo users.Repository, redisClient *redis.Client, cfg *config.Config) Service {
	return &authService{repo: repo, userRepo: userRepo, redis: redisClient, cfg: cfg}
}

func (s *authService) Signup(ctx context.Context, req *SignupRequest, userAgent, ip string) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, users.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &users.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		City:         strings.TrimSpace(req.City),
		State:        strings.TrimSpace(req.State),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, user, userAgent, ip)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, Tokens: *tokens}, nil
}

func (s *authService) Signin(ctx context.Context, req *SigninRequest, userAgent, ip string) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user, userAgent, ip)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, Tokens: *tokens}, nil
}

// GoogleSignin verifies a Google ID token and signs the user in, creating
// an account on first use.
func (s *authService) GoogleSignin(ctx context.Context, req *GoogleSigninRequest, userAgent, ip string) (*AuthResponse, error) {
	svc, err := oauth2.NewService(ctx, option.WithoutAuthentication())
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth2 service: %w", err)
	}

	info, err := svc.Tokeninfo().IdToken(req.IDToken).Context(ctx).Do()
	if err != nil {
		return nil, ErrGoogleToken
	}
	if info.Email == "" || !info.VerifiedEmail {
		return nil, ErrGoogleToken
	}

	email := strings.ToLower(info.Email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, users.ErrUserNotFound) {
		user = &users.User{
			Name:  strings.SplitN(email, "@", 2)[0],
			Email: email,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, user, userAgent, ip)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, Tokens: *tokens}, nil
}

func (s *authService) Refresh(ctx context.Context, req *RefreshRequest) (*TokenPair, error) {
	session, err := s.repo.GetSessionByTokenHash(ctx, hashToken(req.RefreshToken))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !session.Active(time.Now()) {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	// Rotate: the old refresh token dies with its session
	if err := s.repo.RevokeSession(ctx, session.ID); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user, session.UserAgent, session.IPAddress)
}

func (s *authService) Signout(ctx context.Context, refreshToken string) error {
	session, err := s.repo.GetSessionByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	return s.repo.RevokeSession(ctx, session.ID)
}

// SignoutAll revokes every session and invalidates outstanding access
// tokens by recording a cutoff timestamp in Redis. Access tokens issued
// before the cutoff fail middleware checks until they expire anyway.
func (s *authService) SignoutAll(ctx context.Context, userID int64) error {
	if err := s.repo.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}
	if s.redis != nil {
		key := revocationKey(userID)
		if err := s.redis.Set(ctx, key, time.Now().Unix(), s.cfg.AccessTokenExpiry).Err(); err != nil {
			return fmt.Errorf("failed to record token revocation: %w", err)
		}
	}
	return nil
}

// revocationKey names the per-user access token cutoff entry
func revocationKey(userID int64) string {
	return fmt.Sprintf("auth:revoked_before:%d", userID)
}

// issueTokens mints an access token and a refresh token, persisting the
// refresh token's hash as a session.
func (s *authService) issueTokens(ctx context.Context, user *users.User, userAgent, ip string) (*TokenPair, error) {
	now := time.Now()
	accessToken, err := utils.GenerateJWT(&utils.JWTClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Type:      "access",
		ExpiresAt: now.Add(s.cfg.AccessTokenExpiry).Unix(),
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
		Issuer:    "skillbarter",
		Subject:   fmt.Sprintf("%d", user.ID),
	}, s.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	refreshToken, err := randomToken()
	if err != nil {
		return nil, err
	}

	session := &Session{
		UserID:           user.ID,
		RefreshTokenHash: hashToken(refreshToken),
		UserAgent:        userAgent,
		IPAddress:        ip,
		ExpiresAt:        now.Add(s.cfg.RefreshTokenExpiry),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.AccessTokenExpiry.Seconds()),
	}, nil
}

// randomToken returns a 256-bit hex token
func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// hashToken stores refresh tokens by digest so a database leak cannot
// replay them
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
