package scheduler

import (
	"time"

	"github.com/jheinrichs/remindme/model"
)

type Action int

const (
	// ActionNone means the tier for the current window was already sent.
	ActionNone Action = iota
	// ActionSend means a notification for Decision.Tier is due.
	ActionSend
	// ActionFinalize means the final "today" notice is due, after which the
	// reminder is renewed (permanent) or deleted.
	ActionFinalize
)

type Decision struct {
	Action Action
	Tier   model.Tier
}

// Classify maps the days remaining until a reminder's due date and the tier
// already sent for this cycle to the next action. It is total and performs
// no I/O. Tiers never move backward, so a window whose tier (or a later one)
// was already sent yields ActionNone; the final notice fires for any
// non-positive day count regardless of tier.
func Classify(daysUntilDue int, current model.Tier) Decision {
	if daysUntilDue <= 0 {
		return Decision{Action: ActionFinalize}
	}

	var target model.Tier
	switch {
	case daysUntilDue == 1:
		target = model.TierOneDay
	case daysUntilDue <= 3:
		target = model.TierThreeDays
	case daysUntilDue <= 7:
		target = model.TierWeek
	default:
		target = model.TierMonth
	}

	if current.Rank() >= target.Rank() {
		return Decision{Action: ActionNone}
	}
	return Decision{Action: ActionSend, Tier: target}
}

// DaysUntil counts calendar days from today to the due date, ignoring
// time-of-day and timezone offsets on either side.
func DaysUntil(dueDate, today time.Time) int {
	due := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, time.UTC)
	now := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(due.Sub(now).Hours() / 24)
}
