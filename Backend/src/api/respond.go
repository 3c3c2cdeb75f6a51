package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

// writeError renders err in the API's error format. Internal errors keep
// their detail out of the response body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := fault.HTTPStatus(err)
	msg := fault.Message(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		if code == "INTERNAL" {
			msg = "internal server error"
		}
	}
	writeJSON(w, status, errorBody{Code: code, Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return fault.InvalidArgument("invalid JSON body: %v", err)
	}
	return nil
}
