package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWebsiteIndex_Dedupes(t *testing.T) {
	idx := NewWebsiteIndex([]string{"a.com", "b.com", "a.com", "c.com", "b.com"})
	assert.Equal(t, WebsiteIndex{"a.com", "b.com", "c.com"}, idx)
}

func TestNewWebsiteIndex_NilInputIsEmptyNotNil(t *testing.T) {
	idx := NewWebsiteIndex(nil)
	assert.NotNil(t, idx)
	assert.Empty(t, idx)
}

func TestWebsiteIndex_With(t *testing.T) {
	tests := []struct {
		name    string
		idx     WebsiteIndex
		website string
		want    WebsiteIndex
	}{
		{name: "empty", idx: WebsiteIndex{}, website: "ex.com", want: WebsiteIndex{"ex.com"}},
		{name: "append", idx: WebsiteIndex{"a.com"}, website: "b.com", want: WebsiteIndex{"a.com", "b.com"}},
		{name: "already present", idx: WebsiteIndex{"a.com", "b.com"}, website: "a.com", want: WebsiteIndex{"a.com", "b.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.idx.With(tt.website))
		})
	}
}

func TestWebsiteIndex_WithDoesNotAliasReceiver(t *testing.T) {
	base := make(WebsiteIndex, 1, 4)
	base[0] = "a.com"

	first := base.With("b.com")
	second := base.With("c.com")

	assert.Equal(t, WebsiteIndex{"a.com", "b.com"}, first)
	assert.Equal(t, WebsiteIndex{"a.com", "c.com"}, second)
}

func TestWebsiteIndex_Without(t *testing.T) {
	idx := WebsiteIndex{"a.com", "b.com", "c.com"}

	assert.Equal(t, WebsiteIndex{"b.com", "c.com"}, idx.Without("a.com"))
	assert.Equal(t, WebsiteIndex{"a.com", "b.com", "c.com"}, idx.Without("missing.com"))
	assert.Equal(t, WebsiteIndex{"a.com", "b.com", "c.com"}, idx, "receiver must be unchanged")
}

func TestCredentialRecord_ClipboardPayload(t *testing.T) {
	rec := CredentialRecord{Username: "alice", Password: "p1"}
	assert.Equal(t, "Username: alice, Password: p1", rec.ClipboardPayload())
}
