package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/bookrental/internal/domain/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sampleProfile() user.Profile {
	return user.User{
		ID:       7,
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice Liddell",
		Plan:     "Silver",
	}.Profile()
}

func TestNewManager_RejectsEmptySecret(t *testing.T) {
	_, err := NewManager("")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	m, err := NewManager("super-secret")
	require.NoError(t, err)

	profile := sampleProfile()

	tok, err := m.Issue(profile)
	require.NoError(t, err)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, profile, claims.CurrentUser)
}

func TestIssue_ExpiryIsExactly24hAfterIssuance(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 9, 30, 15, 987654321, time.UTC)
	m, err := NewManager("secret", WithClock(fixedClock(issuedAt)))
	require.NoError(t, err)

	tok, err := m.Issue(sampleProfile())
	require.NoError(t, err)

	claims, err := m.Verify(tok)
	require.NoError(t, err)

	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.Equal(t, issuedAt.Unix()+86400, claims.ExpiresAt.Unix())
	assert.Equal(t, int64(86400), claims.ExpiresAt.Unix()-claims.IssuedAt.Unix())
}

func TestIssue_PayloadHasNoPassword(t *testing.T) {
	m, err := NewManager("secret")
	require.NoError(t, err)

	u := user.User{ID: 1, Username: "bob", PasswordHash: "$2a$10$hash", Plan: "Gold"}
	tok, err := m.Issue(u.Profile())
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &payload))

	var current map[string]any
	require.NoError(t, json.Unmarshal(payload["currentUser"], &current))
	for _, field := range []string{"password", "passwordHash", "createdAt", "updatedAt"} {
		_, present := current[field]
		assert.Falsef(t, present, "field %q must not be in claims", field)
	}
	assert.NotContains(t, string(raw), "$2a$10$hash")
}

func TestVerify_Expired(t *testing.T) {
	issuedAt := time.Now().Add(-25 * time.Hour)
	issuer, err := NewManager("secret", WithClock(fixedClock(issuedAt)))
	require.NoError(t, err)

	tok, err := issuer.Issue(sampleProfile())
	require.NoError(t, err)

	verifier, err := NewManager("secret")
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer, _ := NewManager("right-secret")
	verifier, _ := NewManager("wrong-secret")

	tok, err := issuer.Issue(sampleProfile())
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_Malformed(t *testing.T) {
	m, _ := NewManager("secret")

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := m.Verify(tok)
		assert.ErrorIsf(t, err, ErrTokenInvalid, "token %q", tok)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	m, _ := NewManager("secret")

	claims := Claims{
		CurrentUser: sampleProfile(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_RequiresExpiry(t *testing.T) {
	m, _ := NewManager("secret")

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{CurrentUser: sampleProfile()}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
