package utils // package utils provides helper functions for token handling

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrInvalidToken is returned when a presented token fails signature or
// claim validation for any reason.  Callers map it to 401.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are short-lived and encoded
// in the Authorization header when calling protected endpoints, or in
// the join frame when authenticating a websocket room subscription.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the user ID, the user's role, and a TTL in minutes.  The
// JWT includes standard claims: subject (sub), role, expiration (exp) and
// issued at (iat).  Token issuance itself lives in the identity service;
// this helper exists for integration tests and local tooling.
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  userID,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken validates a raw HS256 JWT against the secret and
// returns the numeric subject and role claims.  The subject arrives as
// a JSON number (float64) after decoding; it is normalized to uint64 so
// downstream code never deals with claim typing.  Any validation
// failure collapses into ErrInvalidToken.
func ParseAccessToken(secret, raw string) (uint64, string, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return 0, "", ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return 0, "", ErrInvalidToken
    }
    sub, ok := claims["sub"].(float64)
    if !ok || sub < 1 {
        return 0, "", ErrInvalidToken
    }
    role, _ := claims["role"].(string)
    return uint64(sub), role, nil
}
