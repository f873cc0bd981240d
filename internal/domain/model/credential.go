package model

import "fmt"

// IndexKey is the reserved store key holding the serialized WebsiteIndex.
// No website identifier may use it.
const IndexKey = "websites"

// CredentialRecord holds the username/password pair stored for one website.
// A record is only ever replaced as a whole.
type CredentialRecord struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ClipboardPayload formats the record as the text placed on the clipboard.
func (c CredentialRecord) ClipboardPayload() string {
	return fmt.Sprintf("Username: %s, Password: %s", c.Username, c.Password)
}
