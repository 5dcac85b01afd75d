package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	pkgauth "github.com/jwalitptl/dental-admin/pkg/auth"
	apperrors "github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
	"github.com/jwalitptl/dental-admin/pkg/security"
)

// ErrInvalidCredentials is deliberately the same for an unknown email and a
// wrong password.
var ErrInvalidCredentials = apperrors.Unauthorized("invalid email or password")

type Service struct {
	users   repository.UserRepository
	hasher  *security.Hasher
	tokens  *pkgauth.TokenManager
	revoked *cache.Cache
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(users repository.UserRepository, hasher *security.Hasher, tokens *pkgauth.TokenManager, m *metrics.Metrics) *Service {
	return &Service{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		revoked: cache.New(time.Hour, 10*time.Minute),
		metrics: m,
		now:     time.Now,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.VerifyMissing(password)
			s.count("invalid")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		s.count("invalid")
		return nil, ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Issue(user.ID, user.Email, string(user.Role), user.PatientID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	s.count("success")

	return &model.LoginResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Session:   sessionFromClaims(claims),
	}, nil
}

// ValidateToken returns the session a bearer token stands for.
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token")
	}
	if _, revoked := s.revoked.Get(claims.ID); revoked {
		return nil, apperrors.Unauthorized("token has been revoked")
	}

	role := model.Role(claims.Role)
	if role != model.RoleAdmin && role != model.RolePatient {
		return nil, apperrors.Unauthorized("invalid token")
	}

	session := sessionFromClaims(claims)
	return &session, nil
}

// Logout revokes the session's token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, session model.Session) error {
	if session.TokenID == "" {
		return apperrors.BadRequest("session has no token", nil)
	}
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	s.revoked.Set(session.TokenID, struct{}{}, ttl)
	return nil
}

func (s *Service) count(result string) {
	if s.metrics != nil {
		s.metrics.LoginAttempts.WithLabelValues(result).Inc()
	}
}

func sessionFromClaims(c *pkgauth.Claims) model.Session {
	session := model.Session{
		UserID:    c.UserID,
		Email:     c.Email,
		Role:      model.Role(c.Role),
		PatientID: c.PatientID,
		TokenID:   c.ID,
	}
	if c.ExpiresAt != nil {
		session.ExpiresAt = c.ExpiresAt.Time
	}
	return session
}
