package sql

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/jheinrichs/remindme/logger"
	"github.com/jheinrichs/remindme/model"
)

type userService struct {
	*sqlx.DB
	log *logger.Logger
}

func NewUserService(db *sqlx.DB) *userService {
	return &userService{
		DB:  db,
		log: logger.New("userService"),
	}
}

func (db *userService) Create(email, name string, passwordHash []byte) (int64, error) {
	const query = `INSERT INTO users (email, name, password_hash) VALUES (?, ?, ?)`
	res, err := db.Exec(query, email, name, passwordHash)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return 0, model.ErrAlreadyExists
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (db *userService) GetByEmail(email string) (model.User, error) {
	const query = `SELECT id, email, name, password_hash, is_active, created_at, updated_at
    FROM users WHERE email = ?`
	var user model.User
	err := db.Get(&user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return user, model.ErrNotFound
	}
	return user, err
}

func (db *userService) GetByID(id int64) (model.User, error) {
	const query = `SELECT id, email, name, password_hash, is_active, created_at, updated_at
    FROM users WHERE id = ?`
	var user model.User
	err := db.Get(&user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return user, model.ErrNotFound
	}
	return user, err
}

func (db *userService) Update(user *model.User) error {
	const query = `UPDATE users SET email = ?, name = ? WHERE id = ?`
	_, err := db.Exec(query, user.Email, user.Name, user.ID)
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return model.ErrAlreadyExists
	}
	return err
}

func (db *userService) UpdatePassword(id int64, passwordHash []byte) error {
	const query = `UPDATE users SET password_hash = ? WHERE id = ?`
	_, err := db.Exec(query, passwordHash, id)
	return err
}

func (db *userService) Delete(id int64) error {
	const query = `DELETE FROM users WHERE id = ?`
	res, err := db.Exec(query, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return model.ErrNotFound
	}
	return nil
}
