package model

// WebsiteIndex is the insertion-ordered, duplicate-free list of website
// identifiers that have a stored CredentialRecord.
type WebsiteIndex []string

// NewWebsiteIndex builds an index from raw entries, dropping repeats while
// keeping the first occurrence of each. The result is never nil.
func NewWebsiteIndex(entries []string) WebsiteIndex {
	idx := make(WebsiteIndex, 0, len(entries))
	for _, e := range entries {
		idx = idx.With(e)
	}
	return idx
}

// Contains reports whether website is present in the index.
func (idx WebsiteIndex) Contains(website string) bool {
	for _, w := range idx {
		if w == website {
			return true
		}
	}
	return false
}

// With returns an index that includes website, appended at the end when it
// was not already present. The receiver is not modified.
func (idx WebsiteIndex) With(website string) WebsiteIndex {
	if idx.Contains(website) {
		return idx
	}
	out := make(WebsiteIndex, len(idx), len(idx)+1)
	copy(out, idx)
	return append(out, website)
}

// Without returns an index with every occurrence of website removed.
// The receiver is not modified.
func (idx WebsiteIndex) Without(website string) WebsiteIndex {
	out := make(WebsiteIndex, 0, len(idx))
	for _, w := range idx {
		if w != website {
			out = append(out, w)
		}
	}
	return out
}
