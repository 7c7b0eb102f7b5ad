package api

import "strconv"

// Ref addresses a debate on the backend. Owned debates are addressed by
// numeric ID; shared debates by an opaque share token, which uses a
// different route so the server can skip the ownership check.
type Ref struct {
	ID    string
	Token string
}

// ParseRef classifies a raw reference string. A purely numeric string is a
// debate ID; anything else is treated as a share token.
func ParseRef(raw string) Ref {
	if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Ref{ID: raw}
	}
	return Ref{Token: raw}
}

// IsToken reports whether the reference is a share token.
func (r Ref) IsToken() bool { return r.Token != "" }

// Path returns the debate's base API path.
func (r Ref) Path() string {
	if r.IsToken() {
		return "/debates/t/" + r.Token
	}
	return "/debates/" + r.ID
}

// String returns the raw reference value.
func (r Ref) String() string {
	if r.IsToken() {
		return r.Token
	}
	return r.ID
}
