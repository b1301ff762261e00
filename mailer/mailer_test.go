package mailer

import (
	"strings"
	"testing"
	"time"

	"github.com/jheinrichs/remindme/model"
)

func dueReminder(title, description string, permanent bool) model.DueReminder {
	return model.DueReminder{
		Reminder: model.Reminder{
			ID:          1,
			Title:       title,
			Description: description,
			DueDate:     time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			Permanent:   permanent,
		},
		Email: "anna@example.com",
		Name:  "Anna",
	}
}

func TestRenderSubject(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "Dentist happens today"},
		{-3, "Dentist happens today"},
		{1, "Dentist happens tomorrow"},
		{2, "Dentist happens in 2 days"},
		{25, "Dentist happens in 25 days"},
	}

	for _, tt := range tests {
		subject, _ := Render(dueReminder("Dentist", "", true), tt.days)
		if subject != tt.want {
			t.Errorf("Render(days=%d) subject = %q, want %q", tt.days, subject, tt.want)
		}
	}
}

func TestRenderBody(t *testing.T) {
	_, body := Render(dueReminder("Car inspection", "Bring the service booklet.", true), 7)

	for _, want := range []string{
		"Hi Anna!",
		"Car inspection happens in 7 days, on 2026-06-01.",
		"Reminder description\nBring the service booklet.",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}

	if strings.Contains(body, "not permanent") {
		t.Errorf("permanent reminder body carries the deletion warning:\n%s", body)
	}
}

func TestRenderBodyNonPermanentWarning(t *testing.T) {
	_, body := Render(dueReminder("Concert", "", false), 1)

	if !strings.Contains(body, "This reminder is not permanent and will be deleted") {
		t.Errorf("non-permanent body lacks the deletion warning:\n%s", body)
	}
}

func TestRenderBodySkipsEmptyDescription(t *testing.T) {
	_, body := Render(dueReminder("Concert", "", true), 3)

	if strings.Contains(body, "Reminder description") {
		t.Errorf("body contains description block for empty description:\n%s", body)
	}
}
