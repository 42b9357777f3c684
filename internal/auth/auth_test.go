package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/vocapp/internal/apperr"
	"github.com/example/vocapp/internal/clock"
)

func newTestManager(clk clock.Clock) *Manager {
	return NewManager("test-secret", time.Hour, clk).WithCost(bcrypt.MinCost)
}

func TestPasswordHashing(t *testing.T) {
	m := newTestManager(nil)

	hash, err := m.HashPassword("s3cret!pw")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!pw", hash)

	assert.True(t, m.CheckPassword(hash, "s3cret!pw"))
	assert.False(t, m.CheckPassword(hash, "wrong"))
	assert.False(t, m.CheckPassword("not-a-hash", "s3cret!pw"))
}

func TestTokenRoundTrip(t *testing.T) {
	clk := clock.NewManual(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	m := newTestManager(clk)

	token, err := m.IssueToken(42)
	require.NoError(t, err)

	id, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	id, err = m.ParseToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestTokensAreUnique(t *testing.T) {
	m := newTestManager(clock.NewManual(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)))

	a, err := m.IssueToken(1)
	require.NoError(t, err)
	b, err := m.IssueToken(1)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTokenExpires(t *testing.T) {
	clk := clock.NewManual(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	m := newTestManager(clk)

	token, err := m.IssueToken(7)
	require.NoError(t, err)

	clk.Advance(2 * time.Hour)
	_, err = m.ParseToken(token)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	assert.Equal(t, "Signature has expired", apperr.Message(err))
}

func TestParseTokenRejects(t *testing.T) {
	clk := clock.NewManual(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	m := newTestManager(clk)

	other, err := NewManager("other-secret", time.Hour, clk).IssueToken(1)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(clk.Now().Add(time.Hour)),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(clk.Now().Add(time.Hour)),
	})
	wrongAlg, err := hs512.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"})
	withoutExpiry, err := noExp.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	badSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(clk.Now().Add(time.Hour)),
	})
	badSubject, err := badSub.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":           "",
		"bearer only":     "Bearer ",
		"garbage":         "not.a.token",
		"other secret":    other,
		"alg none":        unsigned,
		"wrong algorithm": wrongAlg,
		"no expiry":       withoutExpiry,
		"non-numeric sub": badSubject,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.ParseToken(token)
			assert.True(t, apperr.Is(err, apperr.KindUnauthorized), "got %v", err)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"abc123!x", true},
		{"Passw0rd$", true},
		{"short1!", false},
		{"longpassword!", false},
		{"12345678!", false},
		{"password123", false},
		{"", false},
	}
	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if tt.valid {
			assert.NoError(t, err, tt.password)
		} else {
			assert.True(t, apperr.Is(err, apperr.KindInputValidation), tt.password)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ada@example.com"))

	for _, bad := range []string{"", "ada", "ada@", "@example.com", "Ada <ada@example.com>", "ada@localhost"} {
		assert.True(t, apperr.Is(ValidateEmail(bad), apperr.KindInputValidation), bad)
	}
}
