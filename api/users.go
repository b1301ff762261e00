package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jheinrichs/remindme/model"
)

type (
	registerRequest struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}

	tokenRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	updateUserRequest struct {
		Email *string `json:"email"`
		Name  *string `json:"name"`
	}

	changePasswordRequest struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}

	userResponse struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
)

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "could not parse request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondError(w, http.StatusBadRequest, "invalid_email", "a valid email address is required")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_name", "name is required")
		return
	}
	if err := validatePassword(req.Password); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_password", err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondInternalError(w, h.log, err)
		return
	}

	id, err := h.users.Create(req.Email, req.Name, hash)
	if err != nil {
		if errors.Is(err, model.ErrAlreadyExists) {
			respondError(w, http.StatusConflict, "email_taken", "a user with this email already exists")
			return
		}
		respondInternalError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, userResponse{ID: id, Email: req.Email, Name: req.Name})
}

func (h *handler) issueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "could not parse request body")
		return
	}

	user, err := h.users.GetByEmail(strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respondError(w, http.StatusUnauthorized, "invalid_credentials", "wrong email or password")
			return
		}
		respondInternalError(w, h.log, err)
		return
	}

	if !user.IsActive || bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid_credentials", "wrong email or password")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		respondInternalError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *handler) getMe(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	respondJSON(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}

func (h *handler) updateMe(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "could not parse request body")
		return
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" || !strings.Contains(email, "@") {
			respondError(w, http.StatusBadRequest, "invalid_email", "a valid email address is required")
			return
		}
		user.Email = email
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			respondError(w, http.StatusBadRequest, "invalid_name", "name must not be empty")
			return
		}
		user.Name = name
	}

	if err := h.users.Update(&user); err != nil {
		if errors.Is(err, model.ErrAlreadyExists) {
			respondError(w, http.StatusConflict, "email_taken", "a user with this email already exists")
			return
		}
		respondInternalError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}

func (h *handler) deleteMe(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	if err := h.users.Delete(user.ID); err != nil {
		respondInternalError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *handler) changePassword(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "could not parse request body")
		return
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.OldPassword)) != nil {
		respondError(w, http.StatusBadRequest, "wrong_password", "old password is not correct")
		return
	}
	if err := validatePassword(req.NewPassword); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_password", err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondInternalError(w, h.log, err)
		return
	}
	if err := h.users.UpdatePassword(user.ID, hash); err != nil {
		respondInternalError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
