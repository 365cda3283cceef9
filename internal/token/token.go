package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired indicates the token was well-formed but is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid indicates the token is malformed or its signature does not verify.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrKindMismatch indicates a valid token of the wrong kind was presented.
	ErrKindMismatch = errors.New("token kind mismatch")
)

// Kind distinguishes the three credentials issued by the service.
type Kind string

const (
	KindAccess   Kind = "access"
	KindRefresh  Kind = "refresh"
	KindPlayback Kind = "playback"
)

// Claims is the signed claim set carried by every StreamGate token.
type Claims struct {
	UserID  string `json:"user_id"`
	VideoID string `json:"video_id,omitempty"`
	Kind    string `json:"type"`
	jwt.RegisteredClaims
}

// Service issues and verifies HMAC-SHA256 signed tokens. Verification is
// stateless; there is no revocation list, so logout is a client-side discard.
type Service struct {
	secret      []byte
	accessTTL   time.Duration
	refreshTTL  time.Duration
	playbackTTL time.Duration

	// NowFunc allows tests to override the time source.
	NowFunc func() time.Time
}

// NewService constructs a token service. The signing secret must not be empty.
func NewService(secret string, accessTTL, refreshTTL, playbackTTL time.Duration) (*Service, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret must not be empty")
	}
	return &Service{
		secret:      []byte(secret),
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
		playbackTTL: playbackTTL,
	}, nil
}

// IssueAccess mints a short-lived access token for the user.
func (s *Service) IssueAccess(userID string) (string, time.Time, error) {
	return s.issue(Claims{UserID: userID, Kind: string(KindAccess)}, s.accessTTL)
}

// IssueRefresh mints a long-lived refresh token for the user.
func (s *Service) IssueRefresh(userID string) (string, time.Time, error) {
	return s.issue(Claims{UserID: userID, Kind: string(KindRefresh)}, s.refreshTTL)
}

// IssuePlayback mints a playback token bound to a single video/user pair.
func (s *Service) IssuePlayback(videoID, userID string) (string, time.Time, error) {
	return s.issue(Claims{UserID: userID, VideoID: videoID, Kind: string(KindPlayback)}, s.playbackTTL)
}

func (s *Service) issue(claims Claims, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", claims.Kind, err)
	}

	return signed, expiresAt, nil
}

// Verify checks the signature and expiry of the presented token and that its
// kind matches the caller's expectation. Expiry is strict: no clock skew
// leeway is applied.
func (s *Service) Verify(tokenStr string, expected Kind) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, ErrTokenInvalid
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}

	if claims.Kind != string(expected) {
		return Claims{}, ErrKindMismatch
	}

	return *claims, nil
}

func (s *Service) now() time.Time {
	if s.NowFunc != nil {
		return s.NowFunc().UTC()
	}
	return time.Now().UTC()
}
