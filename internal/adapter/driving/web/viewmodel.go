package web

import (
	"fmt"
	"net/url"

	vm "github.com/ericfisherdev/passkeep/internal/adapter/driving/web/viewmodel"
)

// Notice codes carried in the redirect query string after a POST.
const (
	noticeSaved    = "saved"
	noticeCopied   = "copied"
	noticeDeleted  = "deleted"
	noticeNotFound = "notfound"
	noticeFailed   = "error"
)

// toCredentialsPage assembles the page view model. A nil websites slice is
// normalized to empty so the template renders the empty state.
func toCredentialsPage(websites []string, form vm.CredentialForm, notice *vm.Notice, token string) vm.CredentialsPage {
	if websites == nil {
		websites = []string{}
	}
	return vm.CredentialsPage{
		Websites:  websites,
		Form:      form,
		Notice:    notice,
		CSRFToken: token,
	}
}

// noticeFromQuery maps the notice and website query parameters set by
// redirectWithNotice back to a displayable message. Unknown codes yield nil.
func noticeFromQuery(q url.Values) *vm.Notice {
	website := q.Get("website")

	switch q.Get("notice") {
	case noticeSaved:
		return successNotice("Credentials saved successfully!")
	case noticeCopied:
		return successNotice("Credentials copied to clipboard!")
	case noticeDeleted:
		return successNotice("Credentials deleted successfully!")
	case noticeNotFound:
		return errorNotice(fmt.Sprintf("No credentials saved for %s.", website))
	case noticeFailed:
		return errorNotice("Something went wrong.")
	default:
		return nil
	}
}

func successNotice(msg string) *vm.Notice {
	return &vm.Notice{Kind: vm.NoticeSuccess, Message: msg}
}

func errorNotice(msg string) *vm.Notice {
	return &vm.Notice{Kind: vm.NoticeError, Message: msg}
}
