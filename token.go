package bookden

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStatus is the outcome of verifying a token. Expired and invalid are
// distinct: an expired token was well-formed and correctly signed, so the
// caller may offer a refresh; an invalid one is rejected outright.
type TokenStatus int

const (
	TokenValid TokenStatus = iota
	TokenExpired
	TokenInvalid
)

// TokenClaims is the signed payload carried by a session token.
type TokenClaims struct {
	Username      string `json:"username"`
	Administrator int    `json:"administrator"`
	Expire        int64  `json:"expire"`
}

func (c *TokenClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Expire, 0)), nil
}

func (c *TokenClaims) GetIssuedAt() (*jwt.NumericDate, error)  { return nil, nil }
func (c *TokenClaims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (c *TokenClaims) GetIssuer() (string, error)              { return "", nil }
func (c *TokenClaims) GetSubject() (string, error)             { return "", nil }
func (c *TokenClaims) GetAudience() (jwt.ClaimStrings, error)  { return nil, nil }

// TokenService issues and checks session tokens. It holds no state beyond the
// secret, the signing method and a clock.
type TokenService struct {
	secret   []byte
	method   jwt.SigningMethod
	lifetime time.Duration
	now      func() time.Time
}

func NewTokenService(cfg Config) (*TokenService, error) {
	method := jwt.GetSigningMethod(cfg.TokenAlgorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown token algorithm %q", cfg.TokenAlgorithm)
	}
	if cfg.TokenLifetime <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", cfg.TokenLifetime)
	}
	return &TokenService{
		secret:   []byte(cfg.TokenSecret),
		method:   method,
		lifetime: cfg.TokenLifetime,
		now:      time.Now,
	}, nil
}

// Issue signs a token for the given identity, expiring one lifetime from now.
func (s *TokenService) Issue(username string, administrator bool) (string, error) {
	admin := 0
	if administrator {
		admin = 1
	}
	claims := &TokenClaims{
		Username:      username,
		Administrator: admin,
		Expire:        s.now().Add(s.lifetime).Unix(),
	}
	token, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("error sign token for username=%s: %w", username, err)
	}
	return token, nil
}

// Verify decodes token and returns its claims when valid. Only the configured
// signing method is accepted.
func (s *TokenService) Verify(token string) (*TokenClaims, TokenStatus) {
	var claims TokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, TokenExpired
		}
		return nil, TokenInvalid
	}
	return &claims, TokenValid
}

// Refresh re-issues a fresh token for the same identity if token is still
// valid. The error is only non-nil on signing failure, never for a bad token.
func (s *TokenService) Refresh(token string) (string, TokenStatus, error) {
	claims, status := s.Verify(token)
	if status != TokenValid {
		return "", status, nil
	}
	fresh, err := s.Issue(claims.Username, claims.Administrator == 1)
	if err != nil {
		return "", TokenValid, err
	}
	return fresh, TokenValid, nil
}
