package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/xid"

	"github.com/jheinrichs/remindme/logger"
)

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

// respondInternalError hides the cause from the client but logs it with a
// GUID that is echoed back for correlation.
func respondInternalError(w http.ResponseWriter, log *logger.Logger, err error) {
	guid := xid.New().String()
	log.Err(err).
		Str("guid", guid).
		Msg("Internal error")
	respondError(w, http.StatusInternalServerError, "internal_error", "internal error, reference "+guid)
}
