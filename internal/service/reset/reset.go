package reset

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DefaultTTL = 24 * time.Hour

var ErrInvalidUID = errors.New("invalid uid")

// Service issues and checks password-reset tokens. A token is an HMAC
// over {user id, current password hash, issuance time}, so changing
// the password invalidates every token issued before the change; no
// token state is stored.
type Service struct {
	secret []byte
	ttl    time.Duration

	// Now is overridable in tests.
	Now func() time.Time
}

func NewService(secret []byte, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: secret, ttl: ttl, Now: time.Now}
}

// EncodeUID renders a user id as the opaque uid fragment of a reset
// link.
func EncodeUID(id uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(id), 10)))
}

func DecodeUID(fragment string) (uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(fragment)
	if err != nil {
		return 0, ErrInvalidUID
	}
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidUID
	}
	return uint(id), nil
}

func (s *Service) MakeToken(userID uint, passwordHash string) string {
	ts := s.Now().Unix()
	return strconv.FormatInt(ts, 36) + "-" + s.signature(userID, passwordHash, ts)
}

// CheckToken reports whether token is authentic for the user's current
// password hash and still inside the expiry window.
func (s *Service) CheckToken(userID uint, passwordHash, token string) bool {
	tsPart, sig, found := strings.Cut(token, "-")
	if !found {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil {
		return false
	}

	issued := time.Unix(ts, 0)
	now := s.Now()
	if issued.After(now) || now.Sub(issued) > s.ttl {
		return false
	}

	want := s.signature(userID, passwordHash, ts)
	return hmac.Equal([]byte(want), []byte(sig))
}

func (s *Service) signature(userID uint, passwordHash string, ts int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%d:%s:%d", userID, passwordHash, ts)
	return hex.EncodeToString(mac.Sum(nil)[:20])
}
