package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/taskwave/backend/domain"
	"github.com/taskwave/backend/repository"
	"github.com/taskwave/backend/usecase"
	apptoken "github.com/taskwave/backend/pkg/token"
)

// ProviderTokens is the relevant subset of the provider's token-endpoint
// response.
type ProviderTokens struct {
	AccessToken string
	IDToken     string
	ExpiresIn   int
}

// TokenExchanger models the OAuth provider's token endpoint.
type TokenExchanger interface {
	Exchange(ctx context.Context, code string) (ProviderTokens, error)
}

// Result is what a successful callback hands back to the client.
type Result struct {
	Token     string       `json:"token"`
	User      *domain.User `json:"user"`
	ExpiresIn int          `json:"expires_in"`
}

// UseCase turns a provider authorization code into an application session:
// code exchange, identity extraction, user upsert, app token issuance.
type UseCase struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	exchanger TokenExchanger
	tokens    *apptoken.Manager
	activity  usecase.ActivityRecorder
	logger    *zap.Logger
	now       func() time.Time
}

func New(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	exchanger TokenExchanger,
	tokens *apptoken.Manager,
	activity usecase.ActivityRecorder,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:     users,
		sessions:  sessions,
		exchanger: exchanger,
		tokens:    tokens,
		activity:  activity,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	if now != nil {
		uc.now = now
	}
	return uc
}

// HandleCallback completes the authorization-code flow and returns an app
// bearer token together with the authenticated user.
func (uc *UseCase) HandleCallback(ctx context.Context, code string) (*Result, error) {
	if strings.TrimSpace(code) == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "authorization code missing")
	}

	provider, err := uc.exchanger.Exchange(ctx, code)
	if err != nil {
		uc.logger.Warn("token exchange failed", zap.Error(err))
		return nil, domain.WrapError(domain.ErrCodeInvalid, "authorization code could not be exchanged", err)
	}

	identity, ok := identityFromIDToken(provider.IDToken)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	user, err := uc.upsertUser(ctx, identity)
	if err != nil {
		uc.logger.Error("user upsert failed", zap.Error(err))
		return nil, domain.WrapError(domain.ErrCodeInternal, "internal error", err)
	}

	signed, jti, expiresAt, err := uc.tokens.Issue(user, uc.now())
	if err != nil {
		uc.logger.Error("token issue failed", zap.Error(err))
		return nil, domain.WrapError(domain.ErrCodeInternal, "internal error", err)
	}

	session := &domain.Session{
		ID:        jti,
		UserID:    user.ID,
		CreatedAt: uc.now(),
		ExpiresAt: expiresAt,
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		uc.logger.Error("session save failed", zap.Error(err))
		return nil, domain.WrapError(domain.ErrCodeInternal, "internal error", err)
	}

	if uc.activity != nil {
		if err := uc.activity.Record(ctx, user.ID, usecase.EntityUser, usecase.ActionLogin, user.Email); err != nil {
			uc.logger.Warn("activity recording failed", zap.Error(err))
		}
	}

	return &Result{
		Token:     signed,
		User:      user,
		ExpiresIn: int(uc.tokens.Expiry().Seconds()),
	}, nil
}

// RevokeSession drops the Redis session for an issued token ID.
func (uc *UseCase) RevokeSession(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

func (uc *UseCase) upsertUser(ctx context.Context, identity providerIdentity) (*domain.User, error) {
	loginAt := uc.now()

	existing, err := uc.users.GetByID(ctx, identity.ID)
	switch {
	case err == nil:
		if err := uc.users.TouchLastLogin(ctx, identity.ID, loginAt); err != nil {
			return nil, err
		}
		existing.LastLoginAt = &loginAt
		return existing, nil
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		user := &domain.User{
			ID:          identity.ID,
			Name:        identity.Name,
			Email:       identity.Email,
			Role:        domain.DefaultRole,
			Active:      true,
			CreatedAt:   loginAt,
			LastLoginAt: &loginAt,
		}
		if err := uc.users.Upsert(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	default:
		return nil, err
	}
}

type providerIdentity struct {
	ID    string
	Name  string
	Email string
}

// identityFromIDToken reads the self-asserted claims of the provider ID
// token. The provider signature is not verified here; the app-issued token
// is the one checked on every subsequent request.
func identityFromIDToken(idToken string) (providerIdentity, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return providerIdentity{}, false
	}

	id := firstClaim(claims, "oid", "sub")
	if id == "" {
		return providerIdentity{}, false
	}

	name := firstClaim(claims, "name")
	if name == "" {
		name = strings.TrimSpace(firstClaim(claims, "given_name") + " " + firstClaim(claims, "family_name"))
	}

	return providerIdentity{
		ID:    id,
		Name:  name,
		Email: firstClaim(claims, "email", "preferred_username"),
	}, true
}

func firstClaim(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
