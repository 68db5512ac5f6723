package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// JSON writes v with the given status. Encoding failures are logged, not
// surfaced; the status line has already gone out.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	JSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	JSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	JSON(w, http.StatusNotFound, errorBody{Error: msg})
}

func Conflict(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("conflict", "message", msg, "error", err)
	} else {
		slog.Warn("conflict", "message", msg)
	}
	JSON(w, http.StatusConflict, errorBody{Error: msg})
}
