package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jheinrichs/remindme/model"
)

type (
	reminderRequest struct {
		Title       *string   `json:"title"`
		Description *string   `json:"description"`
		DueDate     *string   `json:"due_date"`
		Permanent   *bool     `json:"permanent"`
		Tags        *[]string `json:"tags"`
	}

	reminderListItem struct {
		ID        int64  `json:"id"`
		Title     string `json:"title"`
		DueDate   string `json:"due_date"`
		Permanent bool   `json:"permanent"`
	}

	reminderDetail struct {
		reminderListItem
		Description string   `json:"description"`
		Tags        []string `json:"tags"`
	}
)

func (h *handler) listReminders(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	reminders, err := h.reminders.GetByUser(user.ID, strings.TrimSpace(r.URL.Query().Get("tag")))
	if err != nil {
		respondInternalError(w, h.log, err)
		return
	}

	items := make([]reminderListItem, 0, len(reminders))
	for _, reminder := range reminders {
		items = append(items, listItem(reminder))
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *handler) createReminder(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "could not parse request body")
		return
	}

	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		respondError(w, http.StatusBadRequest, "invalid_title", "title is required")
		return
	}
	if req.DueDate == nil {
		respondError(w, http.StatusBadRequest, "invalid_due_date", "due_date is required")
		return
	}
	dueDate, err := parseDueDate(*req.DueDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_due_date", err.Error())
		return
	}

	reminder := model.Reminder{
		UserID:  user.ID,
		Title:   strings.TrimSpace(*req.Title),
		DueDate: dueDate,
		Tier:    model.TierNone,
	}
	if req.Description != nil {
		reminder.Description = *req.Description
	}
	if req.Permanent != nil {
		reminder.Permanent = *req.Permanent
	}

	id, err := h.reminders.Create(&reminder)
	if err != nil {
		respondInternalError(w, h.log, err)
		return
	}
	reminder.ID = id

	if req.Tags != nil {
		if err := h.tags.SetForReminder(user.ID, id, *req.Tags); err != nil {
			respondInternalError(w, h.log, err)
			return
		}
	}

	h.respondReminderDetail(w, http.StatusCreated, reminder)
}

func (h *handler) getReminder(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	id, ok := reminderID(w, r)
	if !ok {
		return
	}

	reminder, err := h.reminders.GetByID(user.ID, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "reminder not found")
			return
		}
		respondInternalError(w, h.log, err)
		return
	}

	h.respondReminderDetail(w, http.StatusOK, reminder)
}

func (h *handler) updateReminder(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	id, ok := reminderID(w, r)
	if !ok {
		return
	}

	reminder, err := h.reminders.GetByID(user.ID, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "reminder not found")
			return
		}
		respondInternalError(w, h.log, err)
		return
	}

	var req reminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "could not parse request body")
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			respondError(w, http.StatusBadRequest, "invalid_title", "title must not be empty")
			return
		}
		reminder.Title = title
	}
	if req.Description != nil {
		reminder.Description = *req.Description
	}
	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_due_date", err.Error())
			return
		}
		reminder.DueDate = dueDate
	}
	if req.Permanent != nil {
		reminder.Permanent = *req.Permanent
	}

	if err := h.reminders.Update(&reminder); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "reminder not found")
			return
		}
		respondInternalError(w, h.log, err)
		return
	}

	if req.Tags != nil {
		if err := h.tags.SetForReminder(user.ID, id, *req.Tags); err != nil {
			respondInternalError(w, h.log, err)
			return
		}
	}

	h.respondReminderDetail(w, http.StatusOK, reminder)
}

func (h *handler) deleteReminder(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	id, ok := reminderID(w, r)
	if !ok {
		return
	}

	if err := h.reminders.Delete(user.ID, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "reminder not found")
			return
		}
		respondInternalError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (h *handler) respondReminderDetail(w http.ResponseWriter, status int, reminder model.Reminder) {
	tags, err := h.tags.GetForReminder(reminder.ID)
	if err != nil {
		respondInternalError(w, h.log, err)
		return
	}

	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}

	respondJSON(w, status, reminderDetail{
		reminderListItem: listItem(reminder),
		Description:      reminder.Description,
		Tags:             names,
	})
}

func listItem(reminder model.Reminder) reminderListItem {
	return reminderListItem{
		ID:        reminder.ID,
		Title:     reminder.Title,
		DueDate:   reminder.DueDate.Format(time.DateOnly),
		Permanent: reminder.Permanent,
	}
}

func reminderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "reminder not found")
		return 0, false
	}
	return id, true
}

// parseDueDate accepts a YYYY-MM-DD date that lies strictly in the future,
// i.e. tomorrow at the earliest.
func parseDueDate(value string) (time.Time, error) {
	dueDate, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, errors.New("due_date must be formatted as YYYY-MM-DD")
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !dueDate.After(today) {
		return time.Time{}, errors.New("due_date cannot be set in the past and needs to be set at least at tomorrow")
	}
	return dueDate, nil
}
