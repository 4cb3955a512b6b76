package model

import "time"

// AccountField is one profile metadata row (name/value, optionally verified
// by the remote instance).
type AccountField struct {
	Name       string `json:"name"`
	Value      string `json:"value"`
	VerifiedAt string `json:"verified_at,omitempty"`
}

// Account represents a subset of the API account entity used by the client.
type Account struct {
	ID             string         `json:"id"`
	Acct           string         `json:"acct"`
	Username       string         `json:"username"`
	DisplayName    string         `json:"display_name"`
	Avatar         string         `json:"avatar"`
	Header         string         `json:"header"`
	Note           string         `json:"note"`
	Fields         []AccountField `json:"fields"`
	StatusesCount  int            `json:"statuses_count"`
	FollowingCount int            `json:"following_count"`
	FollowersCount int            `json:"followers_count"`
}

// IsRemote reports whether the account lives on another instance.
// Local accounts have acct == username; remote ones carry a domain part.
func (a Account) IsRemote() bool { return a.Username != a.Acct }

// Application identifies the client software a status was posted with.
type Application struct {
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
}

// Status is one timeline entry, decoded from an API response and never
// mutated afterwards.
type Status struct {
	ID          string       `json:"id"`
	Account     Account      `json:"account"`
	Content     string       `json:"content"`
	SpoilerText string       `json:"spoiler_text,omitempty"`
	Text        string       `json:"text,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	Application *Application `json:"application,omitempty"`
}

// CursorKey is the pagination token meaning "everything before this status".
func (s Status) CursorKey() string { return s.ID }
