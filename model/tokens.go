package model

import (
	"crypto/sha256"
	"encoding/hex"
)

type (
	// TokenService issues and resolves API tokens. Only the SHA-256 digest of
	// a token is ever persisted; the plaintext is returned once at issuance.
	TokenService interface {
		Issue(userID int64) (string, error)
		GetUserByToken(token string) (User, error)
		RevokeForUser(userID int64) error
	}
)

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
