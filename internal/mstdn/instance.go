package mstdn

import "strings"

// Instance is a bound request target: a base URL plus an optional bearer
// credential. Values are immutable; derive with WithAuthorizationToken.
type Instance struct {
	BaseURL   string
	AuthToken string
}

// NewInstance normalizes baseURL (no trailing slash) into an anonymous Instance.
func NewInstance(baseURL string) Instance {
	return Instance{BaseURL: strings.TrimRight(baseURL, "/")}
}

// WithAuthorizationToken returns a copy of the instance bound to token. The
// receiver is left untouched so instances can be shared across concurrent
// requests.
func (i Instance) WithAuthorizationToken(token string) Instance {
	i.AuthToken = token
	return i
}

// Anonymous reports whether the instance carries no credential.
func (i Instance) Anonymous() bool { return i.AuthToken == "" }
