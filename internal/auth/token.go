package auth

import (
	"time"

	"procurement/pkg/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type constants. Access tokens authorize API calls; refresh tokens are
// only ever exchanged for a new pair and never resolve an identity.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the signed token payload.
type Claims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService issues and validates signed, expiring identity tokens. It is
// stateless: nothing is persisted per issued token.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService builds a TokenService from injected settings.
func NewTokenService(secret []byte, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Issue produces a signed token encoding subject, type and expiry.
func (s *TokenService) Issue(accountID uuid.UUID, tokenType string) (string, error) {
	var ttl time.Duration
	switch tokenType {
	case TokenTypeAccess:
		ttl = s.accessTTL
	case TokenTypeRefresh:
		ttl = s.refreshTTL
	default:
		return "", apperr.Validationf("unknown token type %q", tokenType)
	}

	now := s.now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// IssuePair mints one access and one refresh token for the account.
func (s *TokenService) IssuePair(accountID uuid.UUID) (access string, refresh string, err error) {
	if access, err = s.Issue(accountID, TokenTypeAccess); err != nil {
		return "", "", err
	}
	if refresh, err = s.Issue(accountID, TokenTypeRefresh); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Validate checks signature, expiry and payload shape. Every failure collapses
// to ErrUnauthenticated so no signing detail reaches the caller.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, apperr.ErrUnauthenticated
	}
	if claims.Subject == "" || claims.TokenType == "" {
		return nil, apperr.ErrUnauthenticated
	}
	return claims, nil
}
