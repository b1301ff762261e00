package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jheinrichs/remindme/model"
)

type (
	tagRequest struct {
		Name string `json:"name"`
	}

	tagResponse struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
)

func (h *handler) listTags(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	tags, err := h.tags.GetByUser(user.ID)
	if err != nil {
		respondInternalError(w, h.log, err)
		return
	}

	items := make([]tagResponse, 0, len(tags))
	for _, tag := range tags {
		items = append(items, tagResponse{ID: tag.ID, Name: tag.Name})
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *handler) createTag(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	name, ok := tagName(w, r)
	if !ok {
		return
	}

	id, err := h.tags.Create(user.ID, name)
	if err != nil {
		if errors.Is(err, model.ErrAlreadyExists) {
			respondError(w, http.StatusConflict, "tag_exists", "a tag with this name already exists")
			return
		}
		respondInternalError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, tagResponse{ID: id, Name: name})
}

func (h *handler) renameTag(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	id, ok := tagID(w, r)
	if !ok {
		return
	}
	name, ok := tagName(w, r)
	if !ok {
		return
	}

	if err := h.tags.Rename(user.ID, id, name); err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			respondError(w, http.StatusNotFound, "not_found", "tag not found")
		case errors.Is(err, model.ErrAlreadyExists):
			respondError(w, http.StatusConflict, "tag_exists", "a tag with this name already exists")
		default:
			respondInternalError(w, h.log, err)
		}
		return
	}

	respondJSON(w, http.StatusOK, tagResponse{ID: id, Name: name})
}

func (h *handler) deleteTag(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	id, ok := tagID(w, r)
	if !ok {
		return
	}

	if err := h.tags.Delete(user.ID, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "tag not found")
			return
		}
		respondInternalError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func tagName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "could not parse request body")
		return "", false
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(w, http.StatusBadRequest, "invalid_name", "name is required")
		return "", false
	}
	return name, true
}

func tagID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "tag not found")
		return 0, false
	}
	return id, true
}
