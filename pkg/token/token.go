package token

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/taskwave/backend/domain"
)

// Config carries the signing material and the expected token envelope.
// Skew is the clock-skew leeway applied to expiry checks; it defaults to
// zero, meaning an expired token is rejected the moment it expires.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	Expiry   time.Duration
	Skew     time.Duration
}

// Identity is the verified subject extracted from a valid credential.
type Identity struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

// Manager issues and validates HMAC-signed bearer tokens.
type Manager struct {
	cfg Config
}

func NewManager(cfg Config) *Manager {
	if cfg.Expiry <= 0 {
		cfg.Expiry = time.Hour
	}
	return &Manager{cfg: cfg}
}

// Expiry returns the configured token lifetime.
func (m *Manager) Expiry() time.Duration {
	return m.cfg.Expiry
}

// Issue signs a token for the user and returns the compact form together
// with the token ID and expiry.
func (m *Manager) Issue(user *domain.User, now time.Time) (string, string, time.Time, error) {
	if now.IsZero() {
		now = time.Now()
	}
	jti := uuid.NewString()
	expiresAt := now.Add(m.cfg.Expiry)

	claims := jwt.MapClaims{
		"sub":   user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
		"jti":   jti,
		"iss":   m.cfg.Issuer,
		"aud":   m.cfg.Audience,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", "", time.Time{}, err
	}
	return signed, jti, expiresAt, nil
}

// Validate verifies the credential and extracts the caller identity. Every
// failure subtype (malformed, bad signature, expired, wrong issuer or
// audience, missing subject) collapses into ok == false; callers must not
// be able to tell them apart.
func (m *Manager) Validate(raw string) (Identity, bool) {
	return m.ValidateAt(raw, time.Now())
}

// ValidateAt is Validate with an explicit reference time.
func (m *Manager) ValidateAt(raw string, now time.Time) (Identity, bool) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	parsed, err := parser.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(m.cfg.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, false
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, false
	}
	if !claims.VerifyIssuer(m.cfg.Issuer, true) {
		return Identity{}, false
	}
	if !claims.VerifyAudience(m.cfg.Audience, true) {
		return Identity{}, false
	}
	if !claims.VerifyExpiresAt(now.Add(-m.cfg.Skew).Unix(), true) {
		return Identity{}, false
	}

	userID := subjectClaim(claims)
	if userID == "" {
		return Identity{}, false
	}

	return Identity{
		UserID: userID,
		Name:   stringClaim(claims, "name"),
		Email:  stringClaim(claims, "email"),
		Role:   stringClaim(claims, "role"),
	}, true
}

// subjectClaim tries the primary subject claim first, then the alternates
// used by other token issuers.
func subjectClaim(claims jwt.MapClaims) string {
	for _, key := range []string{"sub", "oid", "user_id"} {
		if v := stringClaim(claims, key); v != "" {
			return v
		}
	}
	return ""
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
