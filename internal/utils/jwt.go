package utils // package utils provides helper functions for token creation and hashing

import (
    "errors" // sentinel errors for token validation
    "time"   // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// UnlockScope is the scope claim carried by tokens that unlock the
// authorized (mood and note) view of a user's stamp history.
const UnlockScope = "history"

// ErrInvalidToken is returned when a token is malformed, expired, signed
// with another key or algorithm, or carries an unexpected scope.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT along with its expiry.  The Token
// field contains the JWT string and Exp the UTC expiration timestamp.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewUnlockToken builds and signs an HS256 JWT proving that the caller
// knew the PIN of username at issue time.  The subject is the username so
// history handlers can compare it to the path parameter directly.
func NewUnlockToken(secret, username string, ttlMin int, now time.Time) (AccessToken, error) {
    now = now.UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":   username,
        "scope": UnlockScope,
        "exp":   exp.Unix(),
        "iat":   now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseUnlockToken validates raw and returns the username it was issued for.
func ParseUnlockToken(secret, raw string) (string, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject anything that is not HMAC signed.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return "", ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return "", ErrInvalidToken
    }
    if scope, _ := claims["scope"].(string); scope != UnlockScope {
        return "", ErrInvalidToken
    }
    sub, _ := claims["sub"].(string)
    if sub == "" {
        return "", ErrInvalidToken
    }
    return sub, nil
}
