package sql

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/jheinrichs/remindme/logger"
	"github.com/jheinrichs/remindme/model"
)

type tagService struct {
	*sqlx.DB
	log *logger.Logger
}

func NewTagService(db *sqlx.DB) *tagService {
	return &tagService{
		DB:  db,
		log: logger.New("tagService"),
	}
}

func (db *tagService) Create(userID int64, name string) (int64, error) {
	const query = `INSERT INTO tags (user_id, name) VALUES (?, ?)`
	res, err := db.Exec(query, userID, strings.TrimSpace(name))
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return 0, model.ErrAlreadyExists
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (db *tagService) GetByUser(userID int64) ([]model.Tag, error) {
	const query = `SELECT id, user_id, name FROM tags WHERE user_id = ? ORDER BY name`
	var tags []model.Tag
	err := db.Select(&tags, query, userID)
	return tags, err
}

func (db *tagService) Rename(userID, id int64, name string) error {
	const query = `UPDATE tags SET name = ? WHERE id = ? AND user_id = ?`
	res, err := db.Exec(query, strings.TrimSpace(name), id, userID)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return model.ErrAlreadyExists
		}
		return err
	}
	return requireRow(res)
}

func (db *tagService) Delete(userID, id int64) error {
	const query = `DELETE FROM tags WHERE id = ? AND user_id = ?`
	res, err := db.Exec(query, id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (db *tagService) GetForReminder(reminderID int64) ([]model.Tag, error) {
	const query = `SELECT t.id, t.user_id, t.name FROM tags t
    JOIN reminders_tags rt ON rt.tag_id = t.id
    WHERE rt.reminder_id = ?
    ORDER BY t.name`
	var tags []model.Tag
	err := db.Select(&tags, query, reminderID)
	return tags, err
}

// SetForReminder replaces the tag set of a reminder, creating missing tags
// for the owner on the fly.
func (db *tagService) SetForReminder(userID, reminderID int64, names []string) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM reminders_tags WHERE reminder_id = ?`, reminderID); err != nil {
		return err
	}

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		tagID, err := getOrCreateTagTx(tx, userID, name)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT IGNORE INTO reminders_tags (reminder_id, tag_id) VALUES (?, ?)`, reminderID, tagID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func getOrCreateTagTx(tx *sqlx.Tx, userID int64, name string) (int64, error) {
	var tagID int64
	err := tx.Get(&tagID, `SELECT id FROM tags WHERE user_id = ? AND name = ?`, userID, name)
	if err == nil {
		return tagID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	res, err := tx.Exec(`INSERT INTO tags (user_id, name) VALUES (?, ?)`, userID, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
