package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ericfisherdev/speeddial/internal/domain/model"
	"github.com/ericfisherdev/speeddial/internal/domain/port/driven"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// upstreamErrorResponse keeps the list wrapper so browser code that reads
// "response" still finds an array.
type upstreamErrorResponse struct {
	Error    string `json:"error"`
	Response []any  `json:"response"`
}

// ListResponse mirrors Linkwarden's {"response": [...]} wrapper.
type ListResponse struct {
	Response []model.Record `json:"response"`
}

// TilesResponse is the assembled grid split into its two groups.
type TilesResponse struct {
	Pinned []model.Tile `json:"pinned"`
	Tiles  []model.Tile `json:"tiles"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Mode   string `json:"mode"`
	Time   string `json:"time"`
}

// RestoreRequest is the JSON body of the session restore endpoint.
type RestoreRequest struct {
	BaseURL string `json:"base_url"`
	Token   string `json:"token"`
}

// OKResponse acknowledges a state change.
type OKResponse struct {
	OK bool `json:"ok"`
}

// IsNotAuthenticated reports whether err means the caller must (re)authenticate.
func IsNotAuthenticated(err error) bool {
	return errors.Is(err, driven.ErrConfiguration) ||
		errors.Is(err, driven.ErrAuthentication) ||
		errors.Is(err, driven.ErrAuthorization)
}

// IsUpstreamFailure reports whether err came from an unreachable or failing upstream.
func IsUpstreamFailure(err error) bool {
	return errors.Is(err, driven.ErrTransport) || errors.Is(err, driven.ErrUpstream)
}

// statusFor maps a service error to the HTTP status the API answers with.
func statusFor(err error) int {
	switch {
	case IsNotAuthenticated(err):
		return http.StatusUnauthorized
	case IsUpstreamFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
