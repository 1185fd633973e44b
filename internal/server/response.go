package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/licensetower/pkg/errors"
)

type errorBody struct {
	Error     errorDetail `json:"error"`
	RequestID string      `json:"requestId,omitempty"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// writeError maps err to a status through its code. Uncoded errors are
// reported as INTERNAL_ERROR.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeErrorStatus(w, r, errors.HTTPStatus(err), err)
}

func writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{
		Error:     errorDetail{Code: code, Message: errors.UserMessage(err)},
		RequestID: RequestID(r.Context()),
	})
}
