package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"todosync/internal/domain/entity"
	repo "todosync/internal/domain/repository"
	"todosync/internal/session"
	"todosync/pkg/helpers"
	"todosync/pkg/mailer"
)

var (
	ErrMissingFields      = errors.New("missing fields")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrWeakPassword       = errors.New("password must be at least 6 characters long")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already in use")
	ErrUserNotFound       = errors.New("user not found")
)

// SessionStore is the slice of the session store the auth service needs.
type SessionStore interface {
	Put(ctx context.Context, sess session.Session) error
	Current(ctx context.Context, userID string) (*session.Session, error)
	Delete(ctx context.Context, userID string) error
}

// AuthService implements registration, login and logout against the
// identity store, issuing sessions and tokens on success.
type AuthService struct {
	Repo        repo.UserRepository
	Profiles    repo.ProfileRepository
	Sessions    SessionStore
	JWT         *helpers.JWTManager
	Pub         *helpers.RabbitPublisher
	Logger      *logrus.Logger
	MailEnabled bool
}

func NewAuthService(users repo.UserRepository, profiles repo.ProfileRepository, sessions SessionStore, jwt *helpers.JWTManager, pub *helpers.RabbitPublisher, logger *logrus.Logger, mailEnabled bool) *AuthService {
	return &AuthService{
		Repo:        users,
		Profiles:    profiles,
		Sessions:    sessions,
		JWT:         jwt,
		Pub:         pub,
		Logger:      logger,
		MailEnabled: mailEnabled,
	}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// RegisterResult carries the outcome of a registration. ProfileErr
// records the best-effort profile-document write failure; it is never
// fatal: the identity exists and the caller proceeds regardless.
type RegisterResult struct {
	Identity   *entity.Identity
	ProfileErr error
}

// Register creates an identity, then attempts the profile document and
// welcome email as secondary best-effort steps. All validation runs
// before any store access.
func (s *AuthService) Register(ctx context.Context, email, password, confirm string) (*RegisterResult, error) {
	if email == "" || password == "" || confirm == "" {
		return nil, ErrMissingFields
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &entity.Identity{Email: email, PasswordHash: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	res := &RegisterResult{Identity: u}

	// The account is usable without its profile document; readers treat
	// a missing row as an empty profile.
	p := &entity.Profile{UserID: u.ID, Email: email}
	if err := s.Profiles.Create(ctx, p); err != nil {
		res.ProfileErr = err
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("profile document create failed, continuing")
		}
	}

	if s.Pub != nil && s.MailEnabled {
		if err := s.Pub.PublishJSON(ctx, mailer.WelcomeJob(email)); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("welcome email enqueue failed")
		}
	}

	return res, nil
}

// Authenticate validates email/password and returns the identity
// without issuing tokens.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*entity.Identity, error) {
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueTokens generates an access/refresh pair and records the session,
// which publishes the signed-in transition to watchers.
func (s *AuthService) IssueTokens(ctx context.Context, u *entity.Identity) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		return TokenPair{}, err
	}

	sess := session.Session{UserID: u.ID, Email: u.Email, SID: sid, CreatedAt: time.Now().UTC()}
	if err := s.Sessions.Put(ctx, sess); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Login authenticates and issues a session. A failed attempt is
// terminal: no session is written, no retry happens here.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.Identity, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh rotates the session id and both tokens. The presented token's
// sid must match the live session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	cur, err := s.Sessions.Current(ctx, u.ID)
	if err != nil || cur == nil || cur.SID != claims.SessionID {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return TokenPair{}, "", err
	}
	return pair, u.ID, nil
}

// Logout drops the session, which publishes the signed-out transition.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.Sessions.Delete(ctx, userID)
}
