package model

type (
	TagService interface {
		Create(userID int64, name string) (int64, error)
		GetByUser(userID int64) ([]Tag, error)
		Rename(userID, id int64, name string) error
		Delete(userID, id int64) error

		GetForReminder(reminderID int64) ([]Tag, error)
		SetForReminder(userID, reminderID int64, names []string) error
	}

	Tag struct {
		ID     int64  `db:"id"`
		UserID int64  `db:"user_id"`
		Name   string `db:"name"`
	}
)
