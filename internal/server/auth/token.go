package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an issued session token stays valid.
const DefaultTokenTTL = 24 * time.Hour

var signingMethod = jwt.SigningMethodHS256

// TokenIssuer signs and verifies session tokens with a shared HMAC secret.
//
// Tokens are compact JWTs (HS256) carrying the subject, issued-at and expiry
// claims. Nothing is stored server side: a token stays valid until it expires
// and may be verified any number of times. The secret is copied at
// construction and never changes afterwards, so a TokenIssuer is safe for
// concurrent use.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer fails closed: an empty secret yields ErrMissingSecret and a
// non-positive ttl yields ErrInvalidTTL.
func NewTokenIssuer(secret []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	return &TokenIssuer{secret: append([]byte(nil), secret...), ttl: ttl}, nil
}

// TTL returns the lifetime given to every issued token.
func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

// Issue returns a token for subjectID that expires at now+TTL.
func (i *TokenIssuer) Issue(subjectID string, now time.Time) (string, error) {
	if subjectID == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidInput)
	}

	token := jwt.NewWithClaims(signingMethod, jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	})

	s, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Verify checks tokenString at time now and returns its subject.
//
// Checks run in a fixed order and each has its own error:
//  1. structure: three non-empty base64url segments (ErrMalformed);
//  2. HMAC over header.claims (ErrInvalidSignature);
//  3. header: a JSON object naming HS256, anything else is ErrInvalidSignature
//     and an undecodable header is ErrMalformed;
//  4. claims: subject and expiry present (ErrMalformed);
//  5. expiry: now after exp is ErrExpired.
//
// The signature is checked before anything is decoded, so a change to any
// byte of a well-formed token is reported as ErrInvalidSignature.
func (i *TokenIssuer) Verify(tokenString string, now time.Time) (string, error) {
	header, claims, signature, ok := splitToken(tokenString)
	if !ok {
		return "", ErrMalformed
	}

	expected, err := signingMethod.Sign(header+"."+claims, i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(signature), []byte(base64.RawURLEncoding.EncodeToString(expected))) != 1 {
		return "", ErrInvalidSignature
	}

	alg, err := headerAlg(header)
	if err != nil {
		return "", ErrMalformed
	}
	if alg != signingMethod.Alg() {
		return "", ErrInvalidSignature
	}

	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &rc); err != nil {
		return "", ErrMalformed
	}
	if rc.Subject == "" || rc.ExpiresAt == nil {
		return "", ErrMalformed
	}

	if now.After(rc.ExpiresAt.Time) {
		return "", ErrExpired
	}

	return rc.Subject, nil
}

// splitToken returns the three segments of s if each is non-empty and
// uses only the base64url alphabet.
func splitToken(s string) (header, claims, signature string, ok bool) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return "", "", "", false
	}
	for _, p := range parts {
		if p == "" || !isBase64URL(p) {
			return "", "", "", false
		}
	}
	return parts[0], parts[1], parts[2], true
}

func isBase64URL(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

func headerAlg(segment string) (string, error) {
	raw, err := base64.RawURLEncoding.Strict().DecodeString(segment)
	if err != nil {
		return "", err
	}
	var h map[string]any
	if err := json.Unmarshal(raw, &h); err != nil {
		return "", err
	}
	alg, ok := h["alg"].(string)
	if !ok {
		return "", fmt.Errorf("missing alg")
	}
	return alg, nil
}
