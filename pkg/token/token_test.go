package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/taskwave/backend/domain"
)

var testConfig = Config{
	Secret:   "test-secret",
	Issuer:   "taskwave",
	Audience: "taskwave-api",
	Expiry:   time.Hour,
}

func testUser() *domain.User {
	return &domain.User{ID: "user-1", Name: "Alice", Email: "alice@example.com", Role: "User"}
}

func TestIssueValidateRoundTrip(t *testing.T) {
	m := NewManager(testConfig)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	signed, jti, expiresAt, err := m.Issue(testUser(), now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if jti == "" {
		t.Error("jti must be set")
	}
	if !expiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("expiresAt = %v, want now+1h", expiresAt)
	}

	identity, ok := m.ValidateAt(signed, now.Add(30*time.Minute))
	if !ok {
		t.Fatal("a freshly issued token must validate")
	}
	if identity.UserID != "user-1" || identity.Name != "Alice" || identity.Email != "alice@example.com" || identity.Role != "User" {
		t.Errorf("identity = %+v", identity)
	}
}

func TestValidateRejections(t *testing.T) {
	m := NewManager(testConfig)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	signed, _, _, err := m.Issue(testUser(), now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	sign := func(claims jwt.MapClaims, secret string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub": "user-1",
			"iss": testConfig.Issuer,
			"aud": testConfig.Audience,
			"exp": now.Add(time.Hour).Unix(),
		}
	}

	wrongIssuer := base()
	wrongIssuer["iss"] = "someone-else"
	wrongAudience := base()
	wrongAudience["aud"] = "other-api"
	noSubject := base()
	delete(noSubject, "sub")
	expired := base()
	expired["exp"] = now.Add(-time.Minute).Unix()
	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, base()).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	cases := []struct {
		name string
		raw  string
	}{
		{"malformed", "not.a.token"},
		{"empty", ""},
		{"wrong signature", sign(base(), "other-secret")},
		{"wrong issuer", sign(wrongIssuer, testConfig.Secret)},
		{"wrong audience", sign(wrongAudience, testConfig.Secret)},
		{"missing subject", sign(noSubject, testConfig.Secret)},
		{"expired", sign(expired, testConfig.Secret)},
		{"none algorithm", noneAlg},
		{"truncated", signed[:len(signed)-5]},
	}
	for _, tc := range cases {
		if identity, ok := m.ValidateAt(tc.raw, now); ok {
			t.Errorf("%s: token accepted, identity = %+v", tc.name, identity)
		}
	}
}

func TestValidateExpiryBoundaryAndSkew(t *testing.T) {
	m := NewManager(testConfig)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	signed, _, expiresAt, err := m.Issue(testUser(), now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, ok := m.ValidateAt(signed, expiresAt.Add(-time.Second)); !ok {
		t.Error("token must be valid just before expiry")
	}
	if _, ok := m.ValidateAt(signed, expiresAt.Add(time.Second)); ok {
		t.Error("token must be rejected past expiry with zero skew")
	}

	lenient := NewManager(Config{
		Secret:   testConfig.Secret,
		Issuer:   testConfig.Issuer,
		Audience: testConfig.Audience,
		Expiry:   time.Hour,
		Skew:     2 * time.Minute,
	})
	if _, ok := lenient.ValidateAt(signed, expiresAt.Add(time.Minute)); !ok {
		t.Error("skew must tolerate a slightly stale token")
	}
	if _, ok := lenient.ValidateAt(signed, expiresAt.Add(3*time.Minute)); ok {
		t.Error("skew window exceeded, token must be rejected")
	}
}

func TestSubjectClaimFallback(t *testing.T) {
	m := NewManager(testConfig)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	sign := func(claims jwt.MapClaims) string {
		claims["iss"] = testConfig.Issuer
		claims["aud"] = testConfig.Audience
		claims["exp"] = now.Add(time.Hour).Unix()
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testConfig.Secret))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}

	cases := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{"sub wins", jwt.MapClaims{"sub": "a", "oid": "b", "user_id": "c"}, "a"},
		{"oid fallback", jwt.MapClaims{"oid": "b", "user_id": "c"}, "b"},
		{"user_id fallback", jwt.MapClaims{"user_id": "c"}, "c"},
	}
	for _, tc := range cases {
		identity, ok := m.ValidateAt(sign(tc.claims), now)
		if !ok {
			t.Errorf("%s: token rejected", tc.name)
			continue
		}
		if identity.UserID != tc.want {
			t.Errorf("%s: UserID = %q, want %q", tc.name, identity.UserID, tc.want)
		}
	}
}

func TestDefaultExpiry(t *testing.T) {
	m := NewManager(Config{Secret: "s"})
	if m.Expiry() != time.Hour {
		t.Errorf("default expiry = %v, want 1h", m.Expiry())
	}
}
