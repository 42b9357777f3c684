package auth

import (
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/vocapp/internal/apperr"
	"github.com/example/vocapp/internal/clock"
)

// DefaultTokenTTL is how long an access token stays valid.
const DefaultTokenTTL = 24 * time.Hour

const passwordPolicy = "Password must be at least 8 characters and contain at least one letter, number and special character"

type Claims struct {
	jwt.RegisteredClaims
}

// Manager hashes passwords and issues access tokens for learners.
type Manager struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
	cost   int
}

func NewManager(secret string, ttl time.Duration, clk clock.Clock) *Manager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Manager{secret: []byte(secret), ttl: ttl, clock: clk, cost: bcrypt.DefaultCost}
}

// WithCost returns a copy of m that hashes with the given bcrypt cost.
func (m *Manager) WithCost(cost int) *Manager {
	cp := *m
	cp.cost = cost
	return &cp
}

func (m *Manager) TTL() time.Duration { return m.ttl }

func (m *Manager) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches the stored hash.
func (m *Manager) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken signs an HS256 token whose subject is the learner id.
func (m *Manager) IssueToken(learnerID int64) (string, error) {
	now := m.clock.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(learnerID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// ParseToken validates a token and returns the learner id it was issued for.
// A leading "Bearer " is accepted.
func (m *Manager) ParseToken(tokenString string) (int64, error) {
	tokenString = strings.TrimSpace(tokenString)
	if scheme, rest, ok := strings.Cut(tokenString, " "); ok && strings.EqualFold(scheme, "Bearer") {
		tokenString = strings.TrimSpace(rest)
	}
	if tokenString == "" {
		return 0, apperr.Unauthorized("Not authenticated")
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return 0, &apperr.Error{Kind: apperr.KindUnauthorized, Msg: "Signature has expired", Err: err}
	}
	if err != nil {
		return 0, &apperr.Error{Kind: apperr.KindUnauthorized, Msg: "Invalid token", Err: err}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return 0, apperr.Unauthorized("Invalid token")
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, &apperr.Error{Kind: apperr.KindUnauthorized, Msg: "Invalid token", Err: err}
	}
	return id, nil
}

// ValidatePassword enforces the registration password policy.
func ValidatePassword(password string) error {
	var letter, digit, punct bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		case r < unicode.MaxASCII && (unicode.IsPunct(r) || unicode.IsSymbol(r)):
			punct = true
		}
	}
	if len([]rune(password)) < 8 || !letter || !digit || !punct {
		return apperr.Validation(passwordPolicy)
	}
	return nil
}

// ValidateEmail accepts a bare address such as "ada@example.com".
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@"):], ".") {
		return apperr.Validation("Invalid email")
	}
	return nil
}
