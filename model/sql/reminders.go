package sql

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jheinrichs/remindme/logger"
	"github.com/jheinrichs/remindme/model"
)

type reminderService struct {
	*sqlx.DB
	log *logger.Logger
}

func NewReminderService(db *sqlx.DB) *reminderService {
	return &reminderService{
		DB:  db,
		log: logger.New("reminderService"),
	}
}

func (db *reminderService) Create(reminder *model.Reminder) (int64, error) {
	const query = `INSERT INTO reminders (user_id, title, description, due_date, permanent, notification_tier)
    VALUES (?, ?, ?, ?, ?, ?)`
	res, err := db.Exec(
		query,
		reminder.UserID,
		reminder.Title,
		reminder.Description,
		reminder.DueDate.Format(time.DateOnly),
		reminder.Permanent,
		model.TierNone,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (db *reminderService) GetByID(userID, id int64) (model.Reminder, error) {
	const query = `SELECT id, user_id, title, description, due_date, permanent, notification_tier, created_at, updated_at
    FROM reminders WHERE id = ? AND user_id = ?`
	var reminder model.Reminder
	err := db.Get(&reminder, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return reminder, model.ErrNotFound
	}
	return reminder, err
}

func (db *reminderService) GetByUser(userID int64, tag string) ([]model.Reminder, error) {
	var reminders []model.Reminder
	var err error
	if tag == "" {
		const query = `SELECT id, user_id, title, description, due_date, permanent, notification_tier, created_at, updated_at
        FROM reminders WHERE user_id = ? ORDER BY due_date, id`
		err = db.Select(&reminders, query, userID)
	} else {
		const query = `SELECT r.id, r.user_id, r.title, r.description, r.due_date, r.permanent, r.notification_tier, r.created_at, r.updated_at
        FROM reminders r
        JOIN reminders_tags rt ON rt.reminder_id = r.id
        JOIN tags t ON t.id = rt.tag_id
        WHERE r.user_id = ? AND t.name = ?
        ORDER BY r.due_date, r.id`
		err = db.Select(&reminders, query, userID, tag)
	}
	return reminders, err
}

func (db *reminderService) Update(reminder *model.Reminder) error {
	const query = `UPDATE reminders SET title = ?, description = ?, due_date = ?, permanent = ?
    WHERE id = ? AND user_id = ?`
	res, err := db.Exec(
		query,
		reminder.Title,
		reminder.Description,
		reminder.DueDate.Format(time.DateOnly),
		reminder.Permanent,
		reminder.ID,
		reminder.UserID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (db *reminderService) Delete(userID, id int64) error {
	const query = `DELETE FROM reminders WHERE id = ? AND user_id = ?`
	res, err := db.Exec(query, id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (db *reminderService) ListDueCandidates(maxDueDate time.Time) ([]model.DueReminder, error) {
	const query = `SELECT r.id, r.user_id, r.title, r.description, r.due_date, r.permanent, r.notification_tier,
        r.created_at, r.updated_at, u.email, u.name
    FROM reminders r
    JOIN users u ON u.id = r.user_id
    WHERE r.due_date <= ? AND u.is_active = true
    ORDER BY r.due_date, r.id`
	var reminders []model.DueReminder
	err := db.Select(&reminders, query, maxDueDate.Format(time.DateOnly))
	return reminders, err
}

// AdvanceTier moves the notification tier forward, conditional on the tier
// still matching the value read during the sweep.
func (db *reminderService) AdvanceTier(id int64, from, to model.Tier) error {
	const query = `UPDATE reminders SET notification_tier = ? WHERE id = ? AND notification_tier = ?`
	res, err := db.Exec(query, to, id, from)
	if err != nil {
		return err
	}
	return requireFreshRow(res)
}

// Renew rolls a permanent reminder over to its next due date and resets the
// tier, conditional on the tier being unchanged since read.
func (db *reminderService) Renew(id int64, from model.Tier, nextDue time.Time) error {
	const query = `UPDATE reminders SET due_date = ?, notification_tier = ? WHERE id = ? AND notification_tier = ?`
	res, err := db.Exec(query, nextDue.Format(time.DateOnly), model.TierNone, id, from)
	if err != nil {
		return err
	}
	return requireFreshRow(res)
}

func (db *reminderService) DeleteByID(id int64) error {
	const query = `DELETE FROM reminders WHERE id = ?`
	_, err := db.Exec(query, id)
	return err
}

func (db *reminderService) DeleteStale(before time.Time) (int64, error) {
	const query = `DELETE FROM reminders WHERE due_date < ? AND permanent = false`
	res, err := db.Exec(query, before.Format(time.DateOnly))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return model.ErrNotFound
	}
	return nil
}

func requireFreshRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return model.ErrStale
	}
	return nil
}
