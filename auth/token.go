package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	DefaultResetTTL   = time.Hour
	MinSecretLength   = 32
)

var (
	ErrMissingSecret = errors.New("jwt secret is not configured")
	ErrWeakSecret    = fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
	ErrInvalidToken  = errors.New("invalid or expired token")
)

type TokenKind string

const (
	KindSession TokenKind = "session"
	KindReset   TokenKind = "reset"
)

type SessionClaims struct {
	Kind       TokenKind `json:"kind"`
	AdminID    uint      `json:"adminId"`
	AdminEmail string    `json:"adminEmail"`
	AdminName  string    `json:"adminName"`
	jwt.RegisteredClaims
}

type ResetClaims struct {
	Kind    TokenKind `json:"kind"`
	AdminID uint      `json:"adminId"`
	Email   string    `json:"email"`
	jwt.RegisteredClaims
}

// SessionIdentity is the subject of a session token.
type SessionIdentity struct {
	AdminID uint
	Email   string
	Name    string
}

type TokenConfig struct {
	Secret     string
	Issuer     string
	SessionTTL time.Duration
	ResetTTL   time.Duration
	// StrictSecret enforces MinSecretLength (production).
	StrictSecret bool
}

type TokenService struct {
	secret     []byte
	issuer     string
	sessionTTL time.Duration
	resetTTL   time.Duration
	now        func() time.Time
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.StrictSecret && len(cfg.Secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = DefaultResetTTL
	}
	return &TokenService{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		sessionTTL: cfg.SessionTTL,
		resetTTL:   cfg.ResetTTL,
		now:        time.Now,
	}, nil
}

func (s *TokenService) SessionTTL() time.Duration { return s.sessionTTL }

func (s *TokenService) registered(adminID uint, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now().UTC()
	return jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(adminID), 10),
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *TokenService) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) IssueSessionToken(id SessionIdentity) (string, error) {
	return s.sign(SessionClaims{
		Kind:             KindSession,
		AdminID:          id.AdminID,
		AdminEmail:       id.Email,
		AdminName:        id.Name,
		RegisteredClaims: s.registered(id.AdminID, s.sessionTTL),
	})
}

func (s *TokenService) IssueResetToken(adminID uint, email string) (string, error) {
	return s.sign(ResetClaims{
		Kind:             KindReset,
		AdminID:          adminID,
		Email:            email,
		RegisteredClaims: s.registered(adminID, s.resetTTL),
	})
}

func (s *TokenService) parse(tokenString string, claims jwt.Claims) error {
	if tokenString == "" {
		return ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// VerifySessionToken returns ErrInvalidToken for any malformed, forged,
// expired or non-session token.
func (s *TokenService) VerifySessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Kind != KindSession || claims.AdminID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) VerifyResetToken(tokenString string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Kind != KindReset || claims.AdminID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
