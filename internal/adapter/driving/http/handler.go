package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/passkeep/internal/application"
)

// Handler is the HTTP driving adapter that serves the JSON API.
type Handler struct {
	credentialSvc  *application.CredentialService
	healthSvc      *application.HealthService
	passwordLength int
	logger         *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. healthSvc may
// be nil, in which case the health endpoint reports liveness only.
func NewHandler(
	credentialSvc *application.CredentialService,
	healthSvc *application.HealthService,
	passwordLength int,
	logger *slog.Logger,
) *Handler {
	if passwordLength <= 0 {
		passwordLength = application.DefaultPasswordLength
	}
	return &Handler{
		credentialSvc:  credentialSvc,
		healthSvc:      healthSvc,
		passwordLength: passwordLength,
		logger:         logger,
	}
}

// RegisterAPIRoutes registers the /api/v1 routes and /metrics on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/websites", h.ListWebsites)
	mux.HandleFunc("POST /api/v1/credentials", h.SaveCredentials)
	mux.HandleFunc("GET /api/v1/credentials/{website}", h.GetCredentials)
	mux.HandleFunc("DELETE /api/v1/credentials/{website}", h.DeleteCredentials)
	mux.HandleFunc("POST /api/v1/credentials/{website}/copy", h.CopyCredentials)
	mux.HandleFunc("GET /api/v1/password", h.GeneratePassword)
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())
}

// NewServeMux creates an http.Handler with the API routes registered and
// wrapped with the standard middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger)
}

// ListWebsites returns the website index.
func (h *Handler) ListWebsites(w http.ResponseWriter, r *http.Request) {
	websites, err := h.credentialSvc.Load(r.Context())
	if err != nil {
		h.logger.Error("failed to load websites", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, WebsitesResponse{Websites: websites})
}

// SaveCredentials stores or replaces the credentials for a website.
func (h *Handler) SaveCredentials(w http.ResponseWriter, r *http.Request) {
	var req SaveCredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	website := strings.TrimSpace(req.Website)
	if website == "" {
		writeError(w, http.StatusBadRequest, "website is required")
		return
	}

	if err := h.credentialSvc.Save(r.Context(), website, req.Username, req.Password); err != nil {
		h.writeServiceError(w, "failed to save credentials", website, err)
		return
	}

	writeJSON(w, http.StatusCreated, SavedResponse{Website: website})
}

// GetCredentials returns the stored credentials for a website.
func (h *Handler) GetCredentials(w http.ResponseWriter, r *http.Request) {
	website := r.PathValue("website")

	rec, ok, err := h.credentialSvc.Retrieve(r.Context(), website)
	if err != nil {
		h.writeServiceError(w, "failed to retrieve credentials", website, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "credentials not found")
		return
	}

	writeJSON(w, http.StatusOK, toCredentialsResponse(website, rec))
}

// DeleteCredentials removes the credentials for a website. Deleting an
// unknown website succeeds.
func (h *Handler) DeleteCredentials(w http.ResponseWriter, r *http.Request) {
	website := r.PathValue("website")

	if err := h.credentialSvc.Delete(r.Context(), website); err != nil {
		h.writeServiceError(w, "failed to delete credentials", website, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CopyCredentials places the credentials on the host clipboard and echoes
// the payload so a browser client can copy it locally as well.
func (h *Handler) CopyCredentials(w http.ResponseWriter, r *http.Request) {
	website := r.PathValue("website")

	payload, ok, err := h.credentialSvc.Copy(r.Context(), website)
	if err != nil {
		h.writeServiceError(w, "failed to copy credentials", website, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "credentials not found")
		return
	}

	writeJSON(w, http.StatusOK, CopyResponse{Payload: payload})
}

// GeneratePassword returns a random password. The optional length query
// parameter defaults to the configured length.
func (h *Handler) GeneratePassword(w http.ResponseWriter, r *http.Request) {
	length := h.passwordLength
	if v := r.URL.Query().Get("length"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > application.MaxPasswordLength {
			writeError(w, http.StatusBadRequest, "length must be an integer between 1 and "+strconv.Itoa(application.MaxPasswordLength))
			return
		}
		length = n
	}

	writeJSON(w, http.StatusOK, PasswordResponse{Password: application.GeneratePassword(length)})
}

// Health reports liveness and, when a HealthService is wired, the state of
// the website index.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Time:     time.Now().UTC().Format(time.RFC3339),
		Dangling: []string{},
	}

	if h.healthSvc != nil {
		report, err := h.healthSvc.CheckConsistency(r.Context())
		if err != nil {
			h.logger.Error("health check failed", "error", err)
			resp.Status = "unavailable"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp.Websites = len(report.Websites)
		resp.Dangling = report.Dangling
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeServiceError maps a CredentialService error onto a response. Storage
// failures are logged in full but reported with a generic message.
func (h *Handler) writeServiceError(w http.ResponseWriter, msg, website string, err error) {
	if errors.Is(err, application.ErrReservedWebsite) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error(msg, "website", website, "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
