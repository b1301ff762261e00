package model

import (
	"time"

	"golang.org/x/exp/slices"
)

// Tier is the notification checkpoint most recently mailed out for the
// current due-date cycle of a reminder. Tiers only ever move forward through
// the ordering none < month < week < three_days < one_day and reset to
// TierNone when a permanent reminder is rolled over to the next year.
type Tier string

const (
	TierNone      Tier = "none"
	TierMonth     Tier = "month"
	TierWeek      Tier = "week"
	TierThreeDays Tier = "three_days"
	TierOneDay    Tier = "one_day"
)

var tierOrder = []Tier{TierNone, TierMonth, TierWeek, TierThreeDays, TierOneDay}

// Rank returns the position of the tier in the forward ordering, or -1 for
// an unknown value.
func (t Tier) Rank() int {
	return slices.Index(tierOrder, t)
}

func (t Tier) Valid() bool {
	return slices.Contains(tierOrder, t)
}

type (
	ReminderService interface {
		Create(reminder *Reminder) (int64, error)
		GetByID(userID, id int64) (Reminder, error)
		GetByUser(userID int64, tag string) ([]Reminder, error)
		Update(reminder *Reminder) error
		Delete(userID, id int64) error

		// Scheduler-facing operations.
		ListDueCandidates(maxDueDate time.Time) ([]DueReminder, error)
		AdvanceTier(id int64, from, to Tier) error
		Renew(id int64, from Tier, nextDue time.Time) error
		DeleteByID(id int64) error
		DeleteStale(before time.Time) (int64, error)
	}

	Reminder struct {
		ID          int64     `db:"id"`
		UserID      int64     `db:"user_id"`
		Title       string    `db:"title"`
		Description string    `db:"description"`
		DueDate     time.Time `db:"due_date"`
		Permanent   bool      `db:"permanent"`
		Tier        Tier      `db:"notification_tier"`
		CreatedAt   time.Time `db:"created_at"`
		UpdatedAt   time.Time `db:"updated_at"`
		Tags        []Tag     `db:"-"`
	}

	// DueReminder is a reminder joined with its owner's contact fields, as
	// returned by ListDueCandidates.
	DueReminder struct {
		Reminder
		Email string `db:"email"`
		Name  string `db:"name"`
	}
)
