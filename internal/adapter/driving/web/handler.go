// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ericfisherdev/passkeep/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/passkeep/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/passkeep/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/passkeep/internal/application"
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	credentialSvc  *application.CredentialService
	passwordLength int
	showPayload    bool
	logger         *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. showPayload
// is set when the clipboard discards writes, so Copy displays the
// credentials on the screen instead.
func NewHandler(
	credentialSvc *application.CredentialService,
	passwordLength int,
	showPayload bool,
	logger *slog.Logger,
) *Handler {
	if passwordLength <= 0 {
		passwordLength = application.DefaultPasswordLength
	}
	return &Handler{
		credentialSvc:  credentialSvc,
		passwordLength: passwordLength,
		showPayload:    showPayload,
		logger:         logger,
	}
}

// Index renders the credentials screen. Outcomes of earlier form posts
// arrive as a notice in the query string.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, vm.CredentialForm{}, noticeFromQuery(r.URL.Query()))
}

// Save stores the submitted credentials and redirects back to the screen.
// Validation and storage failures re-render the form with the entered values.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	form := formFromRequest(r)

	if form.Website == "" {
		h.renderPage(w, r, http.StatusBadRequest, form, errorNotice("Website is required."))
		return
	}

	if err := h.credentialSvc.Save(r.Context(), form.Website, form.Username, form.Password); err != nil {
		if errors.Is(err, application.ErrReservedWebsite) {
			msg := fmt.Sprintf("%q is reserved and cannot be used as a website.", form.Website)
			h.renderPage(w, r, http.StatusBadRequest, form, errorNotice(msg))
			return
		}
		h.logger.Error("failed to save credentials", "website", form.Website, "error", err)
		h.renderPage(w, r, http.StatusInternalServerError, form, errorNotice("Could not save credentials."))
		return
	}

	redirectWithNotice(w, r, noticeSaved, form.Website)
}

// Generate fills the form's password field with a fresh random password,
// keeping the website and username already entered.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	form := formFromRequest(r)
	form.Password = application.GeneratePassword(h.passwordLength)

	h.renderPage(w, r, http.StatusOK, form, nil)
}

// Copy places the credentials for the posted website on the clipboard. Without
// a clipboard the payload is rendered in the notice, never in a redirect URL.
func (h *Handler) Copy(w http.ResponseWriter, r *http.Request) {
	website := r.PostFormValue("website")

	payload, ok, err := h.credentialSvc.Copy(r.Context(), website)
	switch {
	case err != nil:
		h.logger.Error("failed to copy credentials", "website", website, "error", err)
		redirectWithNotice(w, r, noticeFailed, website)
	case !ok:
		redirectWithNotice(w, r, noticeNotFound, website)
	case h.showPayload:
		h.renderPage(w, r, http.StatusOK, vm.CredentialForm{}, successNotice("Clipboard unavailable. "+payload))
	default:
		redirectWithNotice(w, r, noticeCopied, website)
	}
}

// Delete removes the credentials for the posted website.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	website := r.PostFormValue("website")

	if err := h.credentialSvc.Delete(r.Context(), website); err != nil {
		h.logger.Error("failed to delete credentials", "website", website, "error", err)
		redirectWithNotice(w, r, noticeFailed, website)
		return
	}

	redirectWithNotice(w, r, noticeDeleted, website)
}

// renderPage loads the website list and renders the full screen. A load
// failure is shown as a notice over an empty list.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, form vm.CredentialForm, notice *vm.Notice) {
	token := csrfToken(w, r)

	websites, err := h.credentialSvc.Load(r.Context())
	if err != nil {
		h.logger.Error("failed to load websites", "error", err)
		websites = nil
		notice = errorNotice("Could not load saved credentials.")
		if status == http.StatusOK {
			status = http.StatusInternalServerError
		}
	}

	page := toCredentialsPage(websites, form, notice, token)
	layout := templates.Layout("Saved Credentials", pages.Credentials(page))

	// Pages can contain generated passwords.
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := layout.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render credentials page", "error", err)
	}
}

func formFromRequest(r *http.Request) vm.CredentialForm {
	return vm.CredentialForm{
		Website:  strings.TrimSpace(r.PostFormValue("website")),
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
		Open:     true,
	}
}

// redirectWithNotice sends a 303 back to the screen so a reload does not
// repeat the POST.
func redirectWithNotice(w http.ResponseWriter, r *http.Request, notice, website string) {
	q := url.Values{}
	q.Set("notice", notice)
	if website != "" {
		q.Set("website", website)
	}
	http.Redirect(w, r, "/?"+q.Encode(), http.StatusSeeOther)
}
