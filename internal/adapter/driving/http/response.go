package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/passkeep/internal/domain/model"
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
	w.Header().Set("Cache-Control", "no-store")
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

// SaveCredentialsRequest is the JSON body for saving credentials.
type SaveCredentialsRequest struct {
	Website  string `json:"website"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// WebsitesResponse lists the indexed websites.
type WebsitesResponse struct {
	Websites []string `json:"websites"`
}

// SavedResponse acknowledges a save.
type SavedResponse struct {
	Website string `json:"website"`
}

// CredentialsResponse is the JSON representation of a stored record.
type CredentialsResponse struct {
	Website  string `json:"website"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// CopyResponse carries the text that was placed on the clipboard.
type CopyResponse struct {
	Payload string `json:"payload"`
}

// PasswordResponse carries a generated password.
type PasswordResponse struct {
	Password string `json:"password"`
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status   string   `json:"status"`
	Time     string   `json:"time"`
	Websites int      `json:"websites"`
	Dangling []string `json:"dangling"`
}

func toCredentialsResponse(website string, rec model.CredentialRecord) CredentialsResponse {
	return CredentialsResponse{
		Website:  website,
		Username: rec.Username,
		Password: rec.Password,
	}
}
