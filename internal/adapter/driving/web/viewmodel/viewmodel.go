// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// Notice kinds, used by the stylesheet to pick a colour.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// CredentialsPage holds everything the single credentials screen renders.
type CredentialsPage struct {
	Websites  []string
	Form      CredentialForm
	Notice    *Notice
	CSRFToken string
}

// CredentialForm holds the values of the add-credentials form. Open keeps
// the form expanded, e.g. after a validation error or a generated password.
type CredentialForm struct {
	Website  string
	Username string
	Password string
	Open     bool
}

// Notice is a one-line status message shown above the form.
type Notice struct {
	Kind    string
	Message string
}
