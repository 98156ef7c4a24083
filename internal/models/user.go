package models

// LocalOwner is the owner used when no identity provider is configured
const LocalOwner = "local"

// User represents the authenticated principal. ID is the identity provider
// subject and doubles as the task namespace.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}
