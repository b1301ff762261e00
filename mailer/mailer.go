package mailer

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/jheinrichs/remindme/logger"
	"github.com/jheinrichs/remindme/model"
)

// Mailer delivers reminder notifications over SMTP.
type Mailer struct {
	client *mail.Client
	from   string
	log    *logger.Logger
}

// NewFromEnv builds a Mailer from the SMTP_* environment variables.
func NewFromEnv() (*Mailer, error) {
	host := strings.TrimSpace(os.Getenv("SMTP_HOST"))
	if host == "" {
		return nil, fmt.Errorf("SMTP_HOST is not set")
	}
	from := strings.TrimSpace(os.Getenv("SMTP_FROM"))
	if from == "" {
		return nil, fmt.Errorf("SMTP_FROM is not set")
	}

	port := 587
	if v := strings.TrimSpace(os.Getenv("SMTP_PORT")); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
		port = p
	}

	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(30 * time.Second),
	}

	user := strings.TrimSpace(os.Getenv("SMTP_USER"))
	if user != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(user),
			mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		)
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, err
	}

	return &Mailer{
		client: client,
		from:   from,
		log:    logger.New("mailer"),
	}, nil
}

// SendDueReminder renders and delivers the notification for one reminder.
// The context bounds the whole dial-and-send exchange.
func (m *Mailer) SendDueReminder(ctx context.Context, reminder model.DueReminder, daysUntilDue int) error {
	subject, body := Render(reminder, daysUntilDue)

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(reminder.Email); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return err
	}

	m.log.Debug().
		Int64("id", reminder.ID).
		Int("days_until_due", daysUntilDue).
		Msg("Reminder mail sent")
	return nil
}

// Render produces subject and body for a reminder notification.
func Render(reminder model.DueReminder, daysUntilDue int) (subject, body string) {
	when := whenPhrase(daysUntilDue)
	subject = fmt.Sprintf("%s happens %s", reminder.Title, when)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Hi %s!\n", reminder.Name))
	sb.WriteString(fmt.Sprintf(
		"We wanted to remind you, that %s happens %s, on %s.\n",
		reminder.Title,
		when,
		reminder.DueDate.Format(time.DateOnly),
	))

	if reminder.Description != "" {
		sb.WriteString("\nReminder description\n")
		sb.WriteString(reminder.Description)
		sb.WriteString("\n")
	}

	if !reminder.Permanent {
		sb.WriteString("\nImportant Note: This reminder is not permanent and will be deleted after the date of the reminder.\n")
	}

	return subject, sb.String()
}

func whenPhrase(daysUntilDue int) string {
	switch {
	case daysUntilDue < 1:
		return "today"
	case daysUntilDue == 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", daysUntilDue)
	}
}
