package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"bnpl/internal/models"
)

// sendJSON writes a JSON response with the given status code
func (s *Server) sendJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// sendError writes a JSON error response
func (s *Server) sendError(w http.ResponseWriter, message string, status int) {
	s.sendJSON(w, status, models.ErrorResponse{
		Error: message,
		Code:  status,
	})
}

// sendInternalError maps an unexpected failure to a 500 response.
// The underlying message is only revealed in development mode.
func (s *Server) sendInternalError(w http.ResponseWriter, err error) {
	slog.Error("Internal error", "error", err)

	message := "Something went wrong"
	if s.development {
		message = err.Error()
	}
	s.sendJSON(w, http.StatusInternalServerError, models.ErrorResponse{
		Error:   "Internal server error",
		Message: message,
		Code:    http.StatusInternalServerError,
	})
}

// decodeBody parses a JSON request body, preserving numeric precision
func decodeBody(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// asString normalizes a JSON value to a string. Clients send amounts both
// as strings and as numbers; numbers keep their decimal representation.
func asString(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case json.Number:
		return value.String()
	case float64:
		return fmt.Sprintf("%g", value)
	default:
		return ""
	}
}

// asInt normalizes a JSON value (string or number) to an int.
// Returns 0 when the value is absent or not a whole number.
func asInt(v interface{}) int {
	switch value := v.(type) {
	case json.Number:
		i, err := value.Int64()
		if err != nil {
			return 0
		}
		return int(i)
	case float64:
		return int(value)
	case string:
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

// asCustomerData extracts an opaque JSON object, defaulting to empty
func asCustomerData(v interface{}) map[string]interface{} {
	if data, ok := v.(map[string]interface{}); ok {
		return data
	}
	return map[string]interface{}{}
}
