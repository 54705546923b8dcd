package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

const (
	accessTokenSize  = 32
	refreshTokenSize = 48
	csrfTokenSize    = 32

	accessTokenPrefix  = "ast_"
	refreshTokenPrefix = "asr_"
)

var errTokenSize = errors.New("invalid token size")

// RandomToken returns size random bytes encoded as unpadded base64url.
func RandomToken(size int) (string, error) {
	if size <= 0 {
		return "", errTokenSize
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewAccessToken returns an opaque access token. It carries no claims and
// is only meaningful to the token store that issued it.
func NewAccessToken() (string, error) {
	tok, err := RandomToken(accessTokenSize)
	if err != nil {
		return "", err
	}
	return accessTokenPrefix + tok, nil
}

func NewRefreshToken() (string, error) {
	tok, err := RandomToken(refreshTokenSize)
	if err != nil {
		return "", err
	}
	return refreshTokenPrefix + tok, nil
}

func NewCSRFToken() (string, error) {
	return RandomToken(csrfTokenSize)
}

// HashToken returns the hex SHA-256 of token, used as a storage key so raw
// tokens never appear in Redis key names.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
