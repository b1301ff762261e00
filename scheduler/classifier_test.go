package scheduler

import (
	"testing"
	"time"

	"github.com/jheinrichs/remindme/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		days    int
		current model.Tier
		action  Action
		tier    model.Tier
	}{
		{"far out, nothing sent yet", 30, model.TierNone, ActionSend, model.TierMonth},
		{"far out, month already sent", 30, model.TierMonth, ActionNone, ""},
		{"eight days is still month", 8, model.TierNone, ActionSend, model.TierMonth},
		{"seven days", 7, model.TierNone, ActionSend, model.TierWeek},
		{"seven days after month", 7, model.TierMonth, ActionSend, model.TierWeek},
		{"four days", 4, model.TierMonth, ActionSend, model.TierWeek},
		{"week already sent", 5, model.TierWeek, ActionNone, ""},
		{"three days", 3, model.TierWeek, ActionSend, model.TierThreeDays},
		{"two days", 2, model.TierNone, ActionSend, model.TierThreeDays},
		{"one day", 1, model.TierThreeDays, ActionSend, model.TierOneDay},
		{"one day already sent", 1, model.TierOneDay, ActionNone, ""},
		{"due today", 0, model.TierOneDay, ActionFinalize, ""},
		{"due today, nothing sent before", 0, model.TierNone, ActionFinalize, ""},
		{"overdue", -12, model.TierWeek, ActionFinalize, ""},
		{"skips straight to week", 5, model.TierNone, ActionSend, model.TierWeek},
		{"never regresses after date edit", 20, model.TierOneDay, ActionNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Classify(tt.days, tt.current)
			if decision.Action != tt.action {
				t.Errorf("Classify(%d, %q).Action = %v, want %v", tt.days, tt.current, decision.Action, tt.action)
			}
			if tt.action == ActionSend && decision.Tier != tt.tier {
				t.Errorf("Classify(%d, %q).Tier = %q, want %q", tt.days, tt.current, decision.Tier, tt.tier)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	for days := -40; days <= 60; days++ {
		for _, tier := range []model.Tier{model.TierNone, model.TierMonth, model.TierWeek, model.TierThreeDays, model.TierOneDay} {
			first := Classify(days, tier)
			second := Classify(days, tier)
			if first != second {
				t.Fatalf("Classify(%d, %q) not deterministic: %+v vs %+v", days, tier, first, second)
			}
		}
	}
}

// Walking a reminder through a shrinking day count must advance the tier
// forward only, each tier signalled exactly once.
func TestClassifyMonotonicity(t *testing.T) {
	days := []int{40, 25, 10, 5, 2, 1}
	tier := model.TierNone
	var sent []model.Tier

	for _, d := range days {
		decision := Classify(d, tier)
		if decision.Action != ActionSend {
			continue
		}
		if decision.Tier.Rank() <= tier.Rank() {
			t.Fatalf("tier regressed from %q to %q at %d days", tier, decision.Tier, d)
		}
		for _, seen := range sent {
			if seen == decision.Tier {
				t.Fatalf("tier %q signalled twice", seen)
			}
		}
		sent = append(sent, decision.Tier)
		tier = decision.Tier

		// Same day count again must be a no-op now.
		if again := Classify(d, tier); again.Action != ActionNone {
			t.Fatalf("repeat Classify(%d, %q) = %+v, want no-op", d, tier, again)
		}
	}

	if final := Classify(0, tier); final.Action != ActionFinalize {
		t.Fatalf("Classify(0, %q) = %+v, want finalize", tier, final)
	}
}

func TestDaysUntil(t *testing.T) {
	tests := []struct {
		name  string
		due   time.Time
		today time.Time
		want  int
	}{
		{
			"ten days ahead",
			time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			10,
		},
		{
			"same day ignores time of day",
			time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 15, 23, 30, 0, 0, time.Local),
			0,
		},
		{
			"past date is negative",
			time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC),
			-5,
		},
		{
			"across a month boundary",
			time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC),
			3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysUntil(tt.due, tt.today); got != tt.want {
				t.Errorf("DaysUntil() = %d, want %d", got, tt.want)
			}
		})
	}
}
