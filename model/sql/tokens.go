package sql

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"

	"github.com/jheinrichs/remindme/logger"
	"github.com/jheinrichs/remindme/model"
)

type tokenService struct {
	*sqlx.DB
	log *logger.Logger
}

func NewTokenService(db *sqlx.DB) *tokenService {
	return &tokenService{
		DB:  db,
		log: logger.New("tokenService"),
	}
}

// Issue replaces any existing token for the user and returns the new
// plaintext. Only the SHA-256 digest is stored.
func (db *tokenService) Issue(userID int64) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	tx, err := db.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tokens WHERE user_id = ?`, userID); err != nil {
		return "", err
	}
	if _, err := tx.Exec(`INSERT INTO tokens (token_hash, user_id) VALUES (?, ?)`, model.HashToken(token), userID); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}

	return token, nil
}

func (db *tokenService) GetUserByToken(token string) (model.User, error) {
	const query = `SELECT u.id, u.email, u.name, u.password_hash, u.is_active, u.created_at, u.updated_at
    FROM tokens t
    JOIN users u ON u.id = t.user_id
    WHERE t.token_hash = ? AND u.is_active = true`
	var user model.User
	err := db.Get(&user, query, model.HashToken(token))
	if errors.Is(err, sql.ErrNoRows) {
		return user, model.ErrNotFound
	}
	return user, err
}

func (db *tokenService) RevokeForUser(userID int64) error {
	const query = `DELETE FROM tokens WHERE user_id = ?`
	_, err := db.Exec(query, userID)
	return err
}

// newToken combines 24 random bytes with an xid so even a broken entropy
// source cannot produce colliding tokens.
func newToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf) + xid.New().String(), nil
}
