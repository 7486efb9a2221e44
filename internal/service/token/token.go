package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the verified identity carried by an access token.
type Claims struct {
	UserID uint
	Role   string
}

// Service signs and verifies the access/refresh token pair. It is
// constructed once at startup and shared by handlers; the pair is
// stateless, there is no server-side revocation list.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewService(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *Service {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &Service{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *Service) IssuePair(userID uint, role string) (access, refresh string, err error) {
	access, err = s.signAccess(userID, role)
	if err != nil {
		return "", "", err
	}

	refreshClaims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(s.refreshTTL).Unix(),
		"typ":  "refresh",
		"jti":  uuid.NewString(),
	}
	refresh, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(s.refreshSecret)
	if err != nil {
		return "", "", err
	}

	return access, refresh, nil
}

// ParseAccess verifies signature and expiry of an access token and
// returns its claims.
func (s *Service) ParseAccess(raw string) (*Claims, error) {
	claims, err := parse(raw, s.accessSecret)
	if err != nil {
		return nil, err
	}
	if typ, ok := claims["typ"]; ok && typ == "refresh" {
		return nil, ErrInvalidToken
	}
	return extract(claims)
}

// Refresh mints a new access token from a valid refresh token.
func (s *Service) Refresh(rawRefresh string) (string, error) {
	claims, err := parse(rawRefresh, s.refreshSecret)
	if err != nil {
		return "", err
	}
	if typ, ok := claims["typ"]; !ok || typ != "refresh" {
		return "", ErrInvalidToken
	}
	c, err := extract(claims)
	if err != nil {
		return "", err
	}
	return s.signAccess(c.UserID, c.Role)
}

func (s *Service) signAccess(userID uint, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(s.accessTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
}

func parse(raw string, secret []byte) (jwt.MapClaims, error) {
	t, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !t.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func extract(claims jwt.MapClaims) (*Claims, error) {
	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	role, ok := claims["role"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	return &Claims{UserID: uint(sub), Role: role}, nil
}
