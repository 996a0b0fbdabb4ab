package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/taskwave/backend/domain"
	apptoken "github.com/taskwave/backend/pkg/token"
)

type fakeExchanger struct {
	tokens ProviderTokens
	err    error
	code   string
}

func (f *fakeExchanger) Exchange(_ context.Context, code string) (ProviderTokens, error) {
	f.code = code
	if f.err != nil {
		return ProviderTokens{}, f.err
	}
	return f.tokens, nil
}

type fakeUserRepo struct {
	users map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.User)}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeUserRepo) Upsert(_ context.Context, user *domain.User) error {
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.LastLoginAt = &at
	r.users[id] = u
	return nil
}

type fakeSessionRepo struct {
	sessions map[string]domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]domain.Session)}
}

func (r *fakeSessionRepo) Get(_ context.Context, id string) (*domain.Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (r *fakeSessionRepo) Save(_ context.Context, session *domain.Session) error {
	r.sessions[session.ID] = *session
	return nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

func providerIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("provider-secret"))
	if err != nil {
		t.Fatalf("sign id token: %v", err)
	}
	return signed
}

func newTestUseCase(exchanger TokenExchanger) (*UseCase, *fakeUserRepo, *fakeSessionRepo) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	tokens := apptoken.NewManager(apptoken.Config{
		Secret:   "app-secret",
		Issuer:   "taskwave",
		Audience: "taskwave-api",
		Expiry:   time.Hour,
	})
	uc := New(users, sessions, exchanger, tokens, nil, nil)
	return uc, users, sessions
}

func TestHandleCallbackFirstLogin(t *testing.T) {
	idToken := providerIDToken(t, jwt.MapClaims{
		"oid":   "prov-123",
		"name":  "Alice Example",
		"email": "alice@example.com",
	})
	exchanger := &fakeExchanger{tokens: ProviderTokens{AccessToken: "at", IDToken: idToken, ExpiresIn: 3600}}
	uc, users, sessions := newTestUseCase(exchanger)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	uc.WithClock(func() time.Time { return now })

	result, err := uc.HandleCallback(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if exchanger.code != "the-code" {
		t.Errorf("exchanged code = %q", exchanger.code)
	}
	if result.Token == "" {
		t.Error("result must carry an app token")
	}
	if result.ExpiresIn != 3600 {
		t.Errorf("expires_in = %d, want 3600", result.ExpiresIn)
	}

	stored, ok := users.users["prov-123"]
	if !ok {
		t.Fatal("first login must create the user")
	}
	if stored.Role != domain.DefaultRole || !stored.Active {
		t.Errorf("new user = %+v, want default role and active", stored)
	}
	if stored.Name != "Alice Example" || stored.Email != "alice@example.com" {
		t.Errorf("identity not taken from id token: %+v", stored)
	}
	if stored.LastLoginAt == nil || !stored.LastLoginAt.Equal(now) {
		t.Errorf("last_login_at = %v, want %v", stored.LastLoginAt, now)
	}

	if len(sessions.sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions.sessions))
	}
	for _, s := range sessions.sessions {
		if s.UserID != "prov-123" {
			t.Errorf("session user = %q", s.UserID)
		}
		if !s.ExpiresAt.Equal(now.Add(time.Hour)) {
			t.Errorf("session expiry = %v, want token expiry", s.ExpiresAt)
		}
	}
}

func TestHandleCallbackReturningUserKeepsRole(t *testing.T) {
	idToken := providerIDToken(t, jwt.MapClaims{"sub": "prov-9", "name": "Bob", "email": "bob@example.com"})
	exchanger := &fakeExchanger{tokens: ProviderTokens{IDToken: idToken}}
	uc, users, _ := newTestUseCase(exchanger)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	uc.WithClock(func() time.Time { return now })

	created := now.Add(-30 * 24 * time.Hour)
	users.users["prov-9"] = domain.User{
		ID: "prov-9", Name: "Bob", Email: "bob@example.com",
		Role: "Admin", Department: "Ops", Active: true, CreatedAt: created,
	}

	result, err := uc.HandleCallback(context.Background(), "code")
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if result.User.Role != "Admin" || result.User.Department != "Ops" {
		t.Errorf("returning user fields overwritten: %+v", result.User)
	}
	stored := users.users["prov-9"]
	if stored.Role != "Admin" {
		t.Errorf("stored role = %q, repeat login must not reset it", stored.Role)
	}
	if stored.LastLoginAt == nil || !stored.LastLoginAt.Equal(now) {
		t.Errorf("last_login_at = %v, want %v", stored.LastLoginAt, now)
	}
}

func TestHandleCallbackFailures(t *testing.T) {
	validIDToken := providerIDToken(t, jwt.MapClaims{"sub": "u"})

	cases := []struct {
		name      string
		code      string
		exchanger *fakeExchanger
		wantCode  domain.ErrorCode
	}{
		{
			name:      "empty code",
			code:      "  ",
			exchanger: &fakeExchanger{tokens: ProviderTokens{IDToken: validIDToken}},
			wantCode:  domain.ErrCodeInvalid,
		},
		{
			name:      "exchange rejected",
			code:      "code",
			exchanger: &fakeExchanger{err: errors.New("invalid_grant")},
			wantCode:  domain.ErrCodeInvalid,
		},
		{
			name:      "garbage id token",
			code:      "code",
			exchanger: &fakeExchanger{tokens: ProviderTokens{IDToken: "not-a-jwt"}},
			wantCode:  domain.ErrCodeUnauthorized,
		},
		{
			name:      "id token without subject",
			code:      "code",
			exchanger: &fakeExchanger{tokens: ProviderTokens{IDToken: providerIDToken(t, jwt.MapClaims{"name": "x"})}},
			wantCode:  domain.ErrCodeUnauthorized,
		},
	}
	for _, tc := range cases {
		uc, _, _ := newTestUseCase(tc.exchanger)
		_, err := uc.HandleCallback(context.Background(), tc.code)
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !domain.IsDomainError(err, tc.wantCode) {
			t.Errorf("%s: err = %v, want code %s", tc.name, err, tc.wantCode)
		}
	}
}

func TestHandleCallbackNameFallback(t *testing.T) {
	idToken := providerIDToken(t, jwt.MapClaims{
		"sub":                "prov-2",
		"given_name":         "Ana",
		"family_name":        "Souza",
		"preferred_username": "ana@example.com",
	})
	uc, users, _ := newTestUseCase(&fakeExchanger{tokens: ProviderTokens{IDToken: idToken}})

	if _, err := uc.HandleCallback(context.Background(), "code"); err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	stored := users.users["prov-2"]
	if stored.Name != "Ana Souza" {
		t.Errorf("name = %q, want given+family fallback", stored.Name)
	}
	if stored.Email != "ana@example.com" {
		t.Errorf("email = %q, want preferred_username fallback", stored.Email)
	}
}

func TestRevokeSession(t *testing.T) {
	uc, _, sessions := newTestUseCase(&fakeExchanger{})
	sessions.sessions["jti-1"] = domain.Session{ID: "jti-1", UserID: "u"}

	if err := uc.RevokeSession(context.Background(), "jti-1"); err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}
	if _, ok := sessions.sessions["jti-1"]; ok {
		t.Error("session must be gone")
	}
}
