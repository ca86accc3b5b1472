package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/auth_service/internal/events"
	"github.com/Skotchmaster/auth_service/internal/hash"
	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/metrics"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/token"
)

const TokenTypeBearer = "Bearer"

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]models.User, int64, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type RevocationStore interface {
	AddRevocation(ctx context.Context, tokenStr string, expiresAt time.Time, kind token.Kind) error
	ClaimRevocation(ctx context.Context, tokenStr string, expiresAt time.Time, kind token.Kind) (bool, error)
	IsRevoked(ctx context.Context, tokenStr string) (bool, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

// AuthService issues, verifies, rotates and revokes token pairs. It keeps no
// state of its own; revocations live in the RevocationStore.
type AuthService struct {
	Users       UserRepository
	Revocations RevocationStore
	Codec       *token.Codec
	Hasher      hash.Hasher
	Events      events.Publisher
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	ExpiresIn    int
	TokenType    string
}

// Principal is the authenticated caller behind an access token.
type Principal struct {
	ID    uuid.UUID
	Email string
	Name  string
	Role  models.Role
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) publish(ctx context.Context, key string, ev events.Event) {
	if s.Events == nil {
		return
	}
	ev.OccurredAt = s.now().UTC()
	if err := s.Events.Publish(ctx, key, ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", ev.Type, "error", err)
	}
}

func Authorize(role, required models.Role) error {
	if !role.AtLeast(required) {
		return ErrForbidden
	}
	return nil
}

func (s *AuthService) Issue(user *models.User) (*TokenPair, error) {
	iat := s.now().Truncate(time.Second)
	base := token.Claims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  user.ID.String(),
			IssuedAt: jwt.NewNumericDate(iat),
		},
	}

	access := base
	access.Type = token.KindAccess
	accessToken, err := s.Codec.Sign(access, token.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh := base
	refresh.Type = token.KindRefresh
	refreshToken, err := s.Codec.Sign(refresh, token.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	s.Metrics.TokenIssued(string(token.KindAccess))
	s.Metrics.TokenIssued(string(token.KindRefresh))

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    iat.Add(token.AccessTTL),
		RefreshExp:   iat.Add(token.RefreshTTL),
		ExpiresIn:    int(token.AccessTTL.Seconds()),
		TokenType:    TokenTypeBearer,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	pwHash, err := s.Hasher.Hash(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		Name:         name,
		Role:         models.RoleUser,
	}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			l.Warn("register_error", "reason", "email already registered")
			return nil, ErrDuplicateEmail
		}
		l.Error("register_error", "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.publish(ctx, user.ID.String(), events.Event{Type: events.TypeUserRegistered, UserID: user.ID.String(), Email: user.Email})
	return user, nil
}

// Authenticate checks the credentials and issues a fresh pair. Both failure
// causes match ErrInvalidCredentials; the wrapped cause tells them apart.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*TokenPair, error) {
	email = normalizeEmail(email)
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "reason", "user not found")
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, ErrUserNotFound)
		}
		l.Error("login_failed", "error", err)
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.Hasher.Verify(password, user.PasswordHash) {
		l.Warn("login_failed", "reason", "invalid password", "user_id", user.ID)
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, ErrInvalidPassword)
	}

	pair, err := s.Issue(user)
	if err != nil {
		l.Error("login_failed", "error", err)
		return nil, err
	}

	s.publish(ctx, user.ID.String(), events.Event{Type: events.TypeUserLoggedIn, UserID: user.ID.String(), Email: user.Email})
	return pair, nil
}

func (s *AuthService) VerifyAccess(ctx context.Context, accessToken string) (*Principal, error) {
	if accessToken == "" {
		return nil, ErrTokenNotPresented
	}

	claims, err := s.Codec.Verify(accessToken)
	if err != nil {
		s.Metrics.VerifyFailed("access", token.Reason(err))
		return nil, err
	}
	if claims.Type != token.KindAccess {
		s.Metrics.VerifyFailed("access", "kind")
		return nil, ErrWrongTokenKind
	}

	revoked, err := s.Revocations.IsRevoked(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		s.Metrics.VerifyFailed("access", "revoked")
		return nil, ErrTokenRevoked
	}

	user, err := s.userFromSubject(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	return &Principal{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}, nil
}

func (s *AuthService) userFromSubject(ctx context.Context, subject string) (*models.User, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, token.ErrMalformed
	}
	user, err := s.Users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Rotate exchanges a valid refresh token (and its companion access token)
// for a new pair. Every failure is reported as ErrInvalidRefreshToken.
func (s *AuthService) Rotate(ctx context.Context, refreshToken, accessToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	pair, user, err := s.rotate(ctx, refreshToken, accessToken)
	if err != nil {
		s.Metrics.VerifyFailed("rotate", rotateReason(err))
		l.Warn("rotate_failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidRefreshToken, err)
	}

	s.publish(ctx, user.ID.String(), events.Event{Type: events.TypeTokensRotated, UserID: user.ID.String()})
	return pair, nil
}

func (s *AuthService) rotate(ctx context.Context, refreshToken, accessToken string) (*TokenPair, *models.User, error) {
	if refreshToken == "" || accessToken == "" {
		return nil, nil, ErrTokenNotPresented
	}

	rc, err := s.Codec.Verify(refreshToken)
	if err != nil {
		return nil, nil, err
	}
	if rc.Type != token.KindRefresh {
		return nil, nil, ErrWrongTokenKind
	}

	revoked, err := s.Revocations.IsRevoked(ctx, refreshToken)
	if err != nil {
		return nil, nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, nil, ErrTokenRevoked
	}

	user, err := s.userFromSubject(ctx, rc.Subject)
	if err != nil {
		return nil, nil, err
	}

	ac, err := s.Codec.Inspect(accessToken)
	if err != nil {
		return nil, nil, err
	}
	if ac.Type != token.KindAccess {
		return nil, nil, ErrWrongTokenKind
	}
	if ac.Subject != rc.Subject {
		return nil, nil, ErrTokenPairMismatch
	}

	// Both writes run to completion even if the other fails. The refresh
	// entry is a claim so that concurrent rotations of one token have a
	// single winner.
	var g errgroup.Group
	g.Go(func() error {
		created, err := s.Revocations.ClaimRevocation(ctx, refreshToken, rc.ExpiresAt.Time, token.KindRefresh)
		if err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}
		if !created {
			return ErrTokenRevoked
		}
		s.Metrics.TokenRevoked(string(token.KindRefresh))
		return nil
	})
	g.Go(func() error {
		return s.revoke(ctx, accessToken, ac)
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	pair, err := s.Issue(user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// revoke records tok until its own expiry. Tokens already past expiry are
// unusable anyway and get no entry.
func (s *AuthService) revoke(ctx context.Context, tok string, claims *token.Claims) error {
	if !claims.ExpiresAt.Time.After(s.now()) {
		return nil
	}
	if err := s.Revocations.AddRevocation(ctx, tok, claims.ExpiresAt.Time, claims.Type); err != nil {
		return fmt.Errorf("revoke %s token: %w", claims.Type, err)
	}
	s.Metrics.TokenRevoked(string(claims.Type))
	return nil
}

// Logout revokes both tokens. Calling it again with the same tokens succeeds.
func (s *AuthService) Logout(ctx context.Context, refreshToken, accessToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	subject, err := s.logout(ctx, refreshToken, accessToken)
	if err != nil {
		l.Warn("logout_failed", "error", err)
		return fmt.Errorf("%w: %w", ErrInvalidRefreshToken, err)
	}

	s.publish(ctx, subject, events.Event{Type: events.TypeUserLoggedOut, UserID: subject})
	return nil
}

func (s *AuthService) logout(ctx context.Context, refreshToken, accessToken string) (string, error) {
	if refreshToken == "" || accessToken == "" {
		return "", ErrTokenNotPresented
	}

	rc, err := s.Codec.Inspect(refreshToken)
	if err != nil {
		return "", err
	}
	if rc.Type != token.KindRefresh {
		return "", ErrWrongTokenKind
	}
	ac, err := s.Codec.Inspect(accessToken)
	if err != nil {
		return "", err
	}
	if ac.Type != token.KindAccess {
		return "", ErrWrongTokenKind
	}
	if ac.Subject != rc.Subject {
		return "", ErrTokenPairMismatch
	}

	var g errgroup.Group
	g.Go(func() error { return s.revoke(ctx, refreshToken, rc) })
	g.Go(func() error { return s.revoke(ctx, accessToken, ac) })
	if err := g.Wait(); err != nil {
		return "", err
	}
	return rc.Subject, nil
}

// Cleanup purges expired revocations on behalf of an ADMIN-or-above caller.
func (s *AuthService) Cleanup(ctx context.Context, caller Principal) (int64, error) {
	l := logging.FromContext(ctx).With("svc", "auth.cleanup")

	if err := Authorize(caller.Role, models.RoleAdmin); err != nil {
		l.Warn("cleanup_denied", "user_id", caller.ID, "role", caller.Role)
		return 0, err
	}

	n, err := s.Revocations.PurgeExpired(ctx)
	if err != nil {
		l.Error("cleanup_failed", "error", err)
		return 0, fmt.Errorf("purge revocations: %w", err)
	}
	s.Metrics.Purged(n)
	l.Info("cleanup_done", "deleted", n, "user_id", caller.ID)

	s.publish(ctx, caller.ID.String(), events.Event{Type: events.TypeRevocationsPurged, UserID: caller.ID.String(), Count: n})
	return n, nil
}

func rotateReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenNotPresented):
		return "missing"
	case errors.Is(err, ErrWrongTokenKind):
		return "kind"
	case errors.Is(err, ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, ErrUserNotFound):
		return "user"
	case errors.Is(err, ErrTokenPairMismatch):
		return "mismatch"
	case errors.Is(err, token.ErrExpired), errors.Is(err, token.ErrSignatureInvalid), errors.Is(err, token.ErrMalformed):
		return token.Reason(err)
	default:
		return "store"
	}
}
