package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bitacora/internal/db"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails to verify.
var ErrInvalidToken = errors.New("invalid confirmation token")

type confirmationClaims struct {
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies account confirmation tokens.
//
// The fp claim hashes the account state that activation changes, so a token
// stops verifying once the account has been confirmed.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer signing with secret; tokens expire after ttl.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token bound to the current state of account.
func (t *TokenIssuer) Issue(account *db.Account) (string, error) {
	if account == nil || account.ID == 0 {
		return "", errors.New("token: account without id")
	}

	now := t.now().UTC()
	claims := confirmationClaims{
		Fingerprint: fingerprint(account),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(account.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Check verifies that token was issued for account in its current state.
func (t *TokenIssuer) Check(account *db.Account, token string) error {
	if account == nil || token == "" {
		return ErrInvalidToken
	}

	var claims confirmationClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject != strconv.FormatUint(uint64(account.ID), 10) {
		return ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(claims.Fingerprint), []byte(fingerprint(account))) != 1 {
		return ErrInvalidToken
	}
	return nil
}

func fingerprint(account *db.Account) string {
	var lastLogin int64
	if account.LastLogin != nil {
		lastLogin = account.LastLogin.UTC().Unix()
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%t|%d", account.ID, account.Password, account.IsActive, lastLogin)))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// EncodeAccountID renders id the way it travels in confirmation links.
func EncodeAccountID(id uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(id), 10)))
}

// DecodeAccountID reverses EncodeAccountID. Padded input is accepted too.
func DecodeAccountID(encoded string) (uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(trimPadding(encoded))
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, errors.New("account id must be positive")
	}
	return uint(id), nil
}

func trimPadding(s string) string {
	for len(s) > 0 && s[len(s)-1] == '=' {
		s = s[:len(s)-1]
	}
	return s
}
