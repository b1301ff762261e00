package model

import (
	"time"
)

type (
	UserService interface {
		Create(email, name string, passwordHash []byte) (int64, error)
		GetByEmail(email string) (User, error)
		GetByID(id int64) (User, error)
		Update(user *User) error
		UpdatePassword(id int64, passwordHash []byte) error
		Delete(id int64) error
	}

	User struct {
		ID           int64     `db:"id"`
		Email        string    `db:"email"`
		Name         string    `db:"name"`
		PasswordHash []byte    `db:"password_hash"`
		IsActive     bool      `db:"is_active"`
		CreatedAt    time.Time `db:"created_at"`
		UpdatedAt    time.Time `db:"updated_at"`
	}
)
