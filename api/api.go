package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jheinrichs/remindme/logger"
	"github.com/jheinrichs/remindme/model"
)

type handler struct {
	users     model.UserService
	tokens    model.TokenService
	reminders model.ReminderService
	tags      model.TagService
	log       *logger.Logger
}

// New builds the HTTP router. Registration and token issuance are public;
// everything else requires a valid API token.
func New(
	users model.UserService,
	tokens model.TokenService,
	reminders model.ReminderService,
	tags model.TagService,
) *chi.Mux {
	h := &handler{
		users:     users,
		tokens:    tokens,
		reminders: reminders,
		tags:      tags,
		log:       logger.New("api"),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", h.register)
		r.Post("/users/token", h.issueToken)

		r.Group(func(r chi.Router) {
			r.Use(tokenAuth(tokens))

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", h.getMe)
				r.Patch("/", h.updateMe)
				r.Delete("/", h.deleteMe)
				r.Patch("/password", h.changePassword)
			})

			r.Route("/reminders", func(r chi.Router) {
				r.Get("/", h.listReminders)
				r.Post("/", h.createReminder)

				r.Route("/tags", func(r chi.Router) {
					r.Get("/", h.listTags)
					r.Post("/", h.createTag)
					r.Patch("/{id}", h.renameTag)
					r.Delete("/{id}", h.deleteTag)
				})

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.getReminder)
					r.Patch("/", h.updateReminder)
					r.Put("/", h.updateReminder)
					r.Delete("/", h.deleteReminder)
				})
			})
		})
	})

	return r
}
